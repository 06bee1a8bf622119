// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emer/nestml/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestTokenizeNeuronHeader(t *testing.T) {
	l := New("t.nestml", []byte("neuron N:\nend\n"))
	toks := l.Tokenize()
	assert.Equal(t, []token.Kind{token.NEURON, token.IDENT, token.COLON, token.NEWLINE, token.END, token.NEWLINE, token.EOF}, kinds(toks))
	assert.Empty(t, l.Errors)
}

func TestTokenizeDerivative(t *testing.T) {
	l := New("t.nestml", []byte("V_m'' = -convolve(g_ex, spikeExc) / C_m\n"))
	toks := l.Tokenize()
	assert.Equal(t, token.IDENT, toks[0].Kind)
	assert.Equal(t, token.PRIME, toks[1].Kind)
	assert.Equal(t, token.PRIME, toks[2].Kind)
	assert.Equal(t, token.ASSIGN, toks[3].Kind)
}

func TestTokenizeUnitExpr(t *testing.T) {
	l := New("t.nestml", []byte("g_ex nS/ms = 0 nS/ms\n"))
	toks := l.Tokenize()
	lits := make([]string, 0, len(toks))
	for _, tk := range toks {
		if tk.Kind != token.NEWLINE && tk.Kind != token.EOF {
			lits = append(lits, tk.Literal)
		}
	}
	assert.Equal(t, []string{"g_ex", "nS", "/", "ms", "=", "0", "nS", "/", "ms"}, lits)
}

func TestTokenizeComment(t *testing.T) {
	l := New("t.nestml", []byte("# a comment\nstate:\nend\n"))
	toks := l.Tokenize()
	assert.Equal(t, token.NEWLINE, toks[0].Kind)
	assert.Equal(t, token.STATE, toks[1].Kind)
}

func TestUnterminatedString(t *testing.T) {
	l := New("t.nestml", []byte(`"abc`))
	l.Tokenize()
	assert.NotEmpty(t, l.Errors)
}

func TestArrowAndComparisons(t *testing.T) {
	l := New("t.nestml", []byte("spikeExc <- excitatory spike\nif a <= b and c >= d:\nend\n"))
	toks := l.Tokenize()
	assert.Contains(t, kinds(toks), token.ARROW)
	assert.Contains(t, kinds(toks), token.LE)
	assert.Contains(t, kinds(toks), token.GE)
}
