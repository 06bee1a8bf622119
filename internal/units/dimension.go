// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package units

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// Dimension indexes the seven SI base dimensions.
type Dimension int

const (
	Length Dimension = iota
	Mass
	Time
	Current
	Temperature
	Amount
	Luminosity
	numDimensions
)

var dimensionSymbols = [numDimensions]string{"m", "kg", "s", "A", "K", "mol", "cd"}

// Vector is a physical unit: a rational exponent per SI base dimension
// plus a scale factor relative to the pure-SI combination of those
// dimensions. Scale is carried as float32, matching the numeric type the
// downstream C++ generator uses for the folded constants.
type Vector struct {
	Exp   [numDimensions]Fraction
	Scale float32
}

// Dimensionless is the unit of plain real/integer values: no dimension,
// scale 1.
func Dimensionless() Vector {
	v := Vector{Scale: 1}
	for i := range v.Exp {
		v.Exp[i] = Int(0)
	}
	return v
}

// IsDimensionless reports whether every exponent is zero. Scale need not be
// 1 (e.g. a percentage is dimensionless with a non-unit scale).
func (v Vector) IsDimensionless() bool {
	for _, e := range v.Exp {
		if !e.IsZero() {
			return false
		}
	}
	return true
}

// SameDimension reports whether v and o have identical exponent vectors,
// ignoring scale. This is the "dimensions must match" test used by +, -,
// comparisons.
func (v Vector) SameDimension(o Vector) bool {
	for i := range v.Exp {
		if v.Exp[i].Reduce() != o.Exp[i].Reduce() {
			return false
		}
	}
	return true
}

// Mul combines two units by multiplication: dimensions add, scales
// multiply.
func (v Vector) Mul(o Vector) Vector {
	var r Vector
	for i := range v.Exp {
		r.Exp[i] = v.Exp[i].Add(o.Exp[i])
	}
	r.Scale = v.Scale * o.Scale
	return r
}

// Div combines two units by division: dimensions subtract, scales divide.
func (v Vector) Div(o Vector) Vector {
	var r Vector
	for i := range v.Exp {
		r.Exp[i] = v.Exp[i].Sub(o.Exp[i])
	}
	if o.Scale == 0 {
		r.Scale = 0
	} else {
		r.Scale = v.Scale / o.Scale
	}
	return r
}

// Pow raises v to a rational power: dimension exponents and the scale's
// log both multiply by n. Used by "**"; non-integer n is only valid when v
// is dimensionless per the caller.
func (v Vector) Pow(n Fraction) Vector {
	var r Vector
	for i := range v.Exp {
		r.Exp[i] = v.Exp[i].MulFrac(n)
	}
	if n.Den == 1 {
		r.Scale = ipow(v.Scale, n.Num)
	} else {
		r.Scale = math32.Pow(v.Scale, float32(n.Num)/float32(n.Den))
	}
	return r
}

func ipow(base float32, n int64) float32 {
	neg := n < 0
	if neg {
		n = -n
	}
	r := float32(1)
	for ; n > 0; n-- {
		r *= base
	}
	if neg {
		return 1 / r
	}
	return r
}

// ScaleRatio returns v's scale relative to o, assuming v.SameDimension(o).
// A ratio != 1 means an implicit conversion factor must be recorded on the
// expression node by the type checker.
func (v Vector) ScaleRatio(o Vector) float32 {
	if o.Scale == 0 {
		return 0
	}
	return v.Scale / o.Scale
}

// Canonical renders a stable, human-readable unit string for diagnostics,
// e.g. "nS^2*ms^-1". Dimensionless returns "1".
func (v Vector) Canonical() string {
	if v.IsDimensionless() {
		return "1"
	}
	var parts []string
	for i, e := range v.Exp {
		if e.IsZero() {
			continue
		}
		if e.IsInteger() && e.Reduce().Num == 1 {
			parts = append(parts, dimensionSymbols[i])
		} else {
			parts = append(parts, fmt.Sprintf("%s^%s", dimensionSymbols[i], e.String()))
		}
	}
	return strings.Join(parts, "*")
}

func (v Vector) String() string {
	return fmt.Sprintf("%s (scale %g)", v.Canonical(), v.Scale)
}

// Equal reports whether two units are identical including scale, within a
// small float tolerance.
func (v Vector) Equal(o Vector) bool {
	if !v.SameDimension(o) {
		return false
	}
	d := v.Scale - o.Scale
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
