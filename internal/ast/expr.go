// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

import (
	"github.com/emer/nestml/internal/ptype"
	"github.com/emer/nestml/internal/token"
)

// Expr is any NESTML expression node: literal, variable reference,
// function call, unary/binary arithmetic, comparison, logical connective,
// conditional, differential-quotient reference, or convolve.
type Expr interface {
	Position() token.Position
	// ResolvedType returns the type the checker decorated this node with; callers
	// must not read it before type checking has run.
	ResolvedType() ptype.Type
	setType(ptype.Type)
	exprNode()
}

type exprBase struct {
	Pos  token.Position
	Type ptype.Type
}

func (e *exprBase) Position() token.Position { return e.Pos }
func (e *exprBase) ResolvedType() ptype.Type { return e.Type }
func (e *exprBase) setType(t ptype.Type)     { e.Type = t }
func (e *exprBase) exprNode()                {}

// SetType lets the type checker (the only legitimate caller) decorate an
// expression node with its resolved type.
func SetType(e Expr, t ptype.Type) { e.setType(t) }

// LiteralKind distinguishes the three literal forms.
type LiteralKind int

const (
	NumberLiteral LiteralKind = iota
	StringLiteral
	BoolLiteral
)

// Literal is a number (with optional unit suffix), string, or bool literal.
type Literal struct {
	exprBase
	Kind     LiteralKind
	Text     string // raw numeric text, for round-trip printing
	Value    float64
	IsInt    bool
	BoolVal  bool
	StrVal   string
	UnitText string // empty if no unit suffix was written
}

// VariableRef is a reference to a declared variable, parameter, or
// internal.
type VariableRef struct {
	exprBase
	Name string
	// Sym is attached during symbol resolution; nil until resolved (or
	// unresolved -> diagnostic).
	Sym *Symbol
}

// Call is a call to a built-in or user-defined function.
type Call struct {
	exprBase
	FuncName string
	Args     []Expr
	Sym      *Symbol // set for user-defined functions; nil for built-ins
}

// Unary is a unary operator expression: -x, not x.
type Unary struct {
	exprBase
	Op token.Kind
	X  Expr
}

// Binary covers arithmetic (+ - * / **), comparison, and logical (and/or)
// binary operators. ConvFactor is set by the type checker when the two
// sides have the same dimension but different scales.
type Binary struct {
	exprBase
	Op         token.Kind
	X, Y       Expr
	ConvFactor float32
	ConvOnLHS  bool // true if the conversion applies to X rather than Y
}

// Conditional is a ternary-style conditional expression.
type Conditional struct {
	exprBase
	Cond, Then, Else Expr
}

// DiffQuotient is a differential-quotient reference (x', x'') appearing
// on the LHS of an equation or, read-only, within a shape/ODE RHS.
type DiffQuotient struct {
	exprBase
	Name  string
	Order int // 1 for x', 2 for x''
	Sym   *Symbol
}

// Convolve is the special form convolve(shape, spike_port).
type Convolve struct {
	exprBase
	ShapeName string
	PortName  string
	ShapeSym  *Symbol
	PortSym   *Symbol
}
