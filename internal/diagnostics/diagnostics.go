// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diagnostics is the append-only, thread-safe diagnostics collector
// shared across all phases of a compilation run. Every phase reports
// through a Log scoped to one compilation unit; the orchestrator merges
// per-unit logs into one ordered report at the end of a run.
package diagnostics

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Severity orders diagnostics from least to most serious. Ordering matters:
// Log.MaxSeverity and the exit-code computation both rely on int comparison.
type Severity int

const (
	INFO Severity = iota
	WARN
	ERROR
	FATAL
)

func (s Severity) String() string {
	switch s {
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// SourceRange is a half-open [Start,End) span of source positions, one-based
// line/column following the convention of token.Position.
type SourceRange struct {
	Filename  string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

func (r SourceRange) String() string {
	if r.Filename == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", r.Filename, r.StartLine, r.StartCol)
}

// Diagnostic is one reportable event: a lexical/syntax error, a name
// resolution failure, a unit/type mismatch, a failed context condition, or
// an ODE-analysis problem. Code is a short stable identifier
// (e.g. "CoCoConvolveNotCorrectlyProvided") so tests can assert on which
// rule fired without depending on message text.
type Diagnostic struct {
	ID       string
	Severity Severity
	Code     string
	Range    SourceRange
	Message  string
	// Unit is the artifact name of the compilation unit this diagnostic
	// belongs to; set by Log so a merged, multi-unit report stays
	// attributable.
	Unit string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s: %s", d.Severity, d.Code, d.Range, d.Message)
}

// Log accumulates diagnostics for exactly one compilation unit. Append is
// safe for concurrent use so a unit's own phases never need external
// locking; the orchestrator gives each unit its own Log and merges them
// after every unit finishes.
type Log struct {
	mu    sync.Mutex
	unit  string
	items []Diagnostic
}

// NewLog creates a Log scoped to the named compilation unit (its artifact
// name, for attribution in merged reports).
func NewLog(unit string) *Log {
	return &Log{unit: unit}
}

// Add appends a diagnostic, stamping it with a fresh ID and this log's unit
// name. Source order is preserved because callers append in traversal
// order within a phase, and phases run strictly in sequence.
func (l *Log) Add(sev Severity, code string, rng SourceRange, format string, args ...any) Diagnostic {
	d := Diagnostic{
		ID:       uuid.NewString(),
		Severity: sev,
		Code:     code,
		Range:    rng,
		Message:  fmt.Sprintf(format, args...),
		Unit:     l.unit,
	}
	l.mu.Lock()
	l.items = append(l.items, d)
	l.mu.Unlock()
	return d
}

func (l *Log) Info(code string, rng SourceRange, format string, args ...any) Diagnostic {
	return l.Add(INFO, code, rng, format, args...)
}

func (l *Log) Warn(code string, rng SourceRange, format string, args ...any) Diagnostic {
	return l.Add(WARN, code, rng, format, args...)
}

func (l *Log) Error(code string, rng SourceRange, format string, args ...any) Diagnostic {
	return l.Add(ERROR, code, rng, format, args...)
}

func (l *Log) Fatal(code string, rng SourceRange, format string, args ...any) Diagnostic {
	return l.Add(FATAL, code, rng, format, args...)
}

// Items returns a snapshot of the diagnostics recorded so far, in the order
// they were added.
func (l *Log) Items() []Diagnostic {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	return out
}

// MaxSeverity reports the most severe diagnostic recorded, or INFO if the
// log is empty. The orchestrator uses this to decide whether to gate
// downstream phases for this unit.
func (l *Log) MaxSeverity() Severity {
	l.mu.Lock()
	defer l.mu.Unlock()
	max := INFO
	for _, d := range l.items {
		if d.Severity > max {
			max = d.Severity
		}
	}
	return max
}

// HasErrorOrWorse reports whether any diagnostic at ERROR or FATAL has been
// recorded.
func (l *Log) HasErrorOrWorse() bool {
	return l.MaxSeverity() >= ERROR
}

// Counts tallies diagnostics by severity.
func (l *Log) Counts() map[Severity]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	counts := map[Severity]int{}
	for _, d := range l.items {
		counts[d.Severity]++
	}
	return counts
}

// Report merges several per-unit logs into one ordered summary. Units are
// ordered by the order they were merged in (the orchestrator merges in
// discovery order); within a unit, diagnostics keep their recorded order.
type Report struct {
	Units []UnitReport
}

// UnitReport is one compilation unit's diagnostics, plus its final
// severity-derived status.
type UnitReport struct {
	Unit        string
	Diagnostics []Diagnostic
	MaxSeverity Severity
}

// Merge combines logs into a Report. The input order is preserved: the
// orchestrator passes logs in discovery order, which keeps the merged
// report deterministic regardless of which unit finished first.
func Merge(logs []*Log) Report {
	r := Report{Units: make([]UnitReport, 0, len(logs))}
	for _, l := range logs {
		r.Units = append(r.Units, UnitReport{
			Unit:        l.unit,
			Diagnostics: l.Items(),
			MaxSeverity: l.MaxSeverity(),
		})
	}
	return r
}

// TotalCounts tallies diagnostics by severity across every unit.
func (r Report) TotalCounts() map[Severity]int {
	counts := map[Severity]int{}
	for _, u := range r.Units {
		for _, d := range u.Diagnostics {
			counts[d.Severity]++
		}
	}
	return counts
}

// ExitCode is 0 on success, 1 on any ERROR, 2 on FATAL/internal error.
func (r Report) ExitCode() int {
	counts := r.TotalCounts()
	if counts[FATAL] > 0 {
		return 2
	}
	if counts[ERROR] > 0 {
		return 1
	}
	return 0
}
