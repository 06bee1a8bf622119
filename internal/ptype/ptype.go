// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ptype defines the physical type vocabulary shared by the parser,
// the type checker, and the symbol table: a numeric base crossed with a
// units.Vector. It is a leaf package near the bottom of the module's
// dependency graph, importing only the unit algebra.
package ptype

import (
	"fmt"

	"github.com/emer/nestml/internal/units"
)

// Base is the numeric base of a physical type.
type Base int

const (
	Real Base = iota
	Integer
	Boolean
	Void
	String
	// Error is a sentinel used by the type checker to type an expression
	// whose type could not be determined, so that checking a sibling
	// expression never cascades a single failure into many.
	Error
)

func (b Base) String() string {
	switch b {
	case Real:
		return "real"
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	case Void:
		return "void"
	case String:
		return "string"
	case Error:
		return "<error>"
	default:
		return "<unknown>"
	}
}

// Type is a fully resolved physical type: a numeric base plus its unit.
// Every expression node has exactly one of these once the type checker
// has run.
type Type struct {
	Base Base
	Unit units.Vector
}

// ErrorType is the sentinel type assigned to expressions the checker could
// not resolve, to suppress cascades.
func ErrorType() Type { return Type{Base: Error} }

// IsError reports whether t is the error sentinel.
func (t Type) IsError() bool { return t.Base == Error }

// Dimensionless builds a plain real/integer/boolean/void/string type with
// no physical unit (scale 1).
func Dimensionless(b Base) Type {
	return Type{Base: b, Unit: units.Dimensionless()}
}

// WithUnit builds a type of base b carrying the given unit. Only `real`
// and `integer` bases may carry a non-dimensionless unit.
func WithUnit(b Base, u units.Vector) Type {
	return Type{Base: b, Unit: u}
}

// Compatible reports whether two types share a numeric base family
// (real/integer are mutually unifiable; everything else must match base
// exactly) and unit dimension.
func (t Type) Compatible(o Type) bool {
	if t.IsError() || o.IsError() {
		return true // suppress cascades
	}
	if !numericFamilyMatch(t.Base, o.Base) {
		return false
	}
	return t.Unit.SameDimension(o.Unit)
}

func numericFamilyMatch(a, b Base) bool {
	if a == b {
		return true
	}
	isNum := func(x Base) bool { return x == Real || x == Integer }
	return isNum(a) && isNum(b)
}

// Promote applies the integer -> real promotion rule:
// "integer -> real when combined with real or with any non-dimensionless
// unit."
func Promote(a, b Type) Base {
	if a.Base == Real || b.Base == Real {
		return Real
	}
	if a.Base == Integer && b.Base == Integer {
		if !a.Unit.IsDimensionless() || !b.Unit.IsDimensionless() {
			return Real
		}
		return Integer
	}
	return a.Base
}

func (t Type) String() string {
	if t.IsError() {
		return "<error>"
	}
	if t.Unit.IsDimensionless() && t.Unit.Scale == 1 {
		return t.Base.String()
	}
	return fmt.Sprintf("%s (%s)", t.Base, t.Unit.Canonical())
}
