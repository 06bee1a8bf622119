// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package units

// baseUnit describes one recognized SI-derived unit symbol: its dimension
// vector and its scale relative to the pure SI combination of base
// dimensions (e.g. "V" has scale 1; "mV" is produced by combining "V" with
// the milli prefix at parse time, below).
type baseUnit struct {
	name string
	vec  Vector
}

func dim(l, m, t, i, k, n, j int64) [numDimensions]Fraction {
	return [numDimensions]Fraction{Int(l), Int(m), Int(t), Int(i), Int(k), Int(n), Int(j)}
}

// knownBases is the fixed table the unit algebra evaluates unit symbols
// against. It is a process-wide read-only
// singleton.
var knownBases = map[string]baseUnit{
	"m":   {"m", Vector{Exp: dim(1, 0, 0, 0, 0, 0, 0), Scale: 1}},
	"g":   {"g", Vector{Exp: dim(0, 1, 0, 0, 0, 0, 0), Scale: 1e-3}},
	"s":   {"s", Vector{Exp: dim(0, 0, 1, 0, 0, 0, 0), Scale: 1}},
	"A":   {"A", Vector{Exp: dim(0, 0, 0, 1, 0, 0, 0), Scale: 1}},
	"K":   {"K", Vector{Exp: dim(0, 0, 0, 0, 1, 0, 0), Scale: 1}},
	"mol": {"mol", Vector{Exp: dim(0, 0, 0, 0, 0, 1, 0), Scale: 1}},
	"cd":  {"cd", Vector{Exp: dim(0, 0, 0, 0, 0, 0, 1), Scale: 1}},

	// derived SI units, scale 1 relative to pure SI combination
	"Hz": {"Hz", Vector{Exp: dim(0, 0, -1, 0, 0, 0, 0), Scale: 1}},
	"N":  {"N", Vector{Exp: dim(1, 1, -2, 0, 0, 0, 0), Scale: 1}},
	"Pa": {"Pa", Vector{Exp: dim(-1, 1, -2, 0, 0, 0, 0), Scale: 1}},
	"J":  {"J", Vector{Exp: dim(2, 1, -2, 0, 0, 0, 0), Scale: 1}},
	"W":  {"W", Vector{Exp: dim(2, 1, -3, 0, 0, 0, 0), Scale: 1}},
	"C":  {"C", Vector{Exp: dim(0, 0, 1, 1, 0, 0, 0), Scale: 1}},
	"V":  {"V", Vector{Exp: dim(2, 1, -3, -1, 0, 0, 0), Scale: 1}},
	"F":  {"F", Vector{Exp: dim(-2, -1, 4, 2, 0, 0, 0), Scale: 1}},
	"Ohm": {"Ohm", Vector{Exp: dim(2, 1, -3, -2, 0, 0, 0), Scale: 1}},
	"S":  {"S", Vector{Exp: dim(-2, -1, 3, 2, 0, 0, 0), Scale: 1}},
	"L":  {"L", Vector{Exp: dim(3, 0, 0, 0, 0, 0, 0), Scale: 1e-3}},
}

// prefixes are the metric scale prefixes recognized before a base symbol.
// They are tried in list order; every entry is a single character, so no
// prefix shadows another.
var prefixes = []struct {
	sym   string
	scale float32
}{
	{"p", 1e-12},
	{"n", 1e-9},
	{"u", 1e-6},
	{"µ", 1e-6},
	{"m", 1e-3},
	{"c", 1e-2},
	{"d", 1e-1},
	{"k", 1e3},
	{"M", 1e6},
	{"G", 1e9},
}

// lookupSymbol resolves a single unit symbol (with optional metric prefix)
// to a Vector. It tries the bare symbol first so that single-letter bases
// like "s" and multi-letter bases like "mol" are never mistaken for a
// prefixed form ("m"+"ol" is not a thing, but the order still matters for
// ones like "m" + "s" vs a hypothetical bare "ms" base).
func lookupSymbol(sym string) (Vector, bool) {
	if b, ok := knownBases[sym]; ok {
		return b.vec, true
	}
	for _, p := range prefixes {
		if len(sym) <= len(p.sym) {
			continue
		}
		if sym[:len(p.sym)] != p.sym {
			continue
		}
		rest := sym[len(p.sym):]
		if b, ok := knownBases[rest]; ok {
			v := b.vec
			v.Scale *= p.scale
			return v, true
		}
	}
	return Vector{}, false
}
