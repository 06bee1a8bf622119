// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ptimer times one compilation unit's pass through the pipeline,
// phase by phase. The orchestrator opens a span per phase as it runs; the
// finished breakdown feeds the progress log and lets a run's summary name
// the slow phase of a slow unit instead of one opaque total.
package ptimer

import "time"

// Span is one finished phase interval: which phase ran and how long it
// took.
type Span struct {
	Phase   string
	Elapsed time.Duration
}

// Phases accumulates the spans of one compilation unit in the order its
// phases ran. The zero value is ready to use. Not safe for concurrent
// use: each unit owns its own Phases, the same way it owns its
// diagnostics log.
type Phases struct {
	spans []Span
	cur   string
	start time.Time
}

// Begin opens a span for the named phase, closing any still-open span
// first so a caller that forgets End never loses time.
func (p *Phases) Begin(phase string) {
	p.closeCur()
	p.cur = phase
	p.start = time.Now()
}

// End closes the open span and returns its duration, or zero if no span
// is open.
func (p *Phases) End() time.Duration {
	return p.closeCur()
}

func (p *Phases) closeCur() time.Duration {
	if p.cur == "" {
		return 0
	}
	iv := time.Since(p.start)
	p.spans = append(p.spans, Span{Phase: p.cur, Elapsed: iv})
	p.cur = ""
	return iv
}

// Spans returns the finished spans in the order the phases ran.
func (p *Phases) Spans() []Span {
	out := make([]Span, len(p.spans))
	copy(out, p.spans)
	return out
}

// Total sums every finished span: the unit's wall-clock cost across the
// whole pipeline.
func (p *Phases) Total() time.Duration {
	var total time.Duration
	for _, s := range p.spans {
		total += s.Elapsed
	}
	return total
}

// Slowest returns the phase that took the longest, or "" when nothing has
// finished. Repeated phases of the same name are compared per span, not
// summed.
func (p *Phases) Slowest() (string, time.Duration) {
	var name string
	var max time.Duration
	for _, s := range p.spans {
		if name == "" || s.Elapsed > max {
			name = s.Phase
			max = s.Elapsed
		}
	}
	return name, max
}
