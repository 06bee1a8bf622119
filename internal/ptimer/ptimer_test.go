// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ptimer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpansRecordPhaseOrder(t *testing.T) {
	var p Phases
	p.Begin("parse")
	p.End()
	p.Begin("symtab")
	p.End()

	spans := p.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, "parse", spans[0].Phase)
	assert.Equal(t, "symtab", spans[1].Phase)
}

func TestBeginClosesOpenSpan(t *testing.T) {
	var p Phases
	p.Begin("parse")
	p.Begin("symtab") // parse never End()ed explicitly
	p.End()

	spans := p.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, "parse", spans[0].Phase)
}

func TestEndWithoutBeginIsZero(t *testing.T) {
	var p Phases
	assert.Equal(t, time.Duration(0), p.End())
	assert.Empty(t, p.Spans())
}

func TestTotalSumsSpans(t *testing.T) {
	var p Phases
	p.Begin("parse")
	time.Sleep(time.Millisecond)
	p.End()
	p.Begin("solver")
	time.Sleep(time.Millisecond)
	p.End()

	var sum time.Duration
	for _, s := range p.Spans() {
		sum += s.Elapsed
	}
	assert.Equal(t, sum, p.Total())
	assert.Greater(t, p.Total(), time.Duration(0))
}

func TestSlowestNamesTheLongestPhase(t *testing.T) {
	var p Phases
	p.Begin("parse")
	p.End()
	p.Begin("solver")
	time.Sleep(2 * time.Millisecond)
	p.End()

	name, elapsed := p.Slowest()
	assert.Equal(t, "solver", name)
	assert.GreaterOrEqual(t, elapsed, 2*time.Millisecond)
}

func TestSlowestOnEmptyPhases(t *testing.T) {
	var p Phases
	name, elapsed := p.Slowest()
	assert.Equal(t, "", name)
	assert.Equal(t, time.Duration(0), elapsed)
}
