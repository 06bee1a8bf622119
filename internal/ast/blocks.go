// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

import (
	"github.com/emer/nestml/internal/ptype"
	"github.com/emer/nestml/internal/token"
)

// ShapeKind classifies a shape by its defining form.
type ShapeKind int

const (
	DirectShape ShapeKind = iota
	OdeShape
	DeltaShape
)

func (k ShapeKind) String() string {
	switch k {
	case DirectShape:
		return "direct"
	case OdeShape:
		return "ode-shape"
	case DeltaShape:
		return "delta"
	default:
		return "?"
	}
}

// ShapeDef is a `shape` form inside an `equations` block: a direct
// closed-form kernel, an ODE-defined kernel of order 1 or 2, or a delta
// kernel.
type ShapeDef struct {
	Name  string
	Pos   token.Position
	Kind  ShapeKind
	Order int // 0 for direct/delta; 1 or 2 for ode-shape, matching the LHS prime count
	Expr  Expr
	Sym   *Symbol

	Resolved ptype.Type // attached by the type checker

	// filled by the equations analyzer
	Linear bool
}

// ODEDef is a row inside `equations` that is not a `shape`: either a
// `y' = ...`/`y'' = ...` differential equation over a state variable
// declared in `state`/`initial_values`, or (Order == 0) a plain algebraic
// alias recomputed from its RHS on every reference.
type ODEDef struct {
	Pos      token.Position
	Variable string
	Order    int
	UnitText string // only meaningful when Order == 0 (algebraic alias)
	HasUnit  bool
	RHS      Expr
	Sym      *Symbol

	Resolved ptype.Type // attached by the type checker

	Linear bool
}

// EquationsBlock holds the raw shape/ODE declarations as parsed, and the
// canonicalized form the equations analyzer produces from them.
type EquationsBlock struct {
	Pos    token.Position
	Shapes []*ShapeDef
	Odes   []*ODEDef
	Scope  *Scope

	// Convolves indexes every convolve(shape, port) occurrence found
	// while walking the block, so the solver driver can swap each one
	// without a second traversal.
	Convolves []ConvolveRef

	// SolverStatus records the ODE analysis outcome for this block: ""
	// before the driver runs (and after a malformed solver reply),
	// otherwise "analytical" or "numeric". An analytical outcome means Shapes
	// and Convolves have been emptied in favor of generated state/internals
	// declarations on the owning Neuron.
	SolverStatus string
}

// ConvolveRef locates one convolve(...) occurrence for the solver driver
// to replace.
type ConvolveRef struct {
	Node      *Convolve
	ShapeName string
	PortName  string
}

// PortKind distinguishes spike and current input ports.
type PortKind int

const (
	SpikePort PortKind = iota
	CurrentPort
)

func (k PortKind) String() string {
	if k == CurrentPort {
		return "current"
	}
	return "spike"
}

// SpikeSign marks a spike port as inhibitory-only, excitatory-only, or
// unsigned (plain `spike`).
type SpikeSign int

const (
	NoSign SpikeSign = iota
	Inhibitory
	Excitatory
)

// InputPort is one `name unit <- [inhibitory|excitatory] spike` or
// `name unit <- current` declaration.
type InputPort struct {
	Name     string
	Pos      token.Position
	UnitText string
	HasUnit  bool
	Kind     PortKind
	Sign     SpikeSign
	Sym      *Symbol

	Resolved ptype.Type // attached by the type checker
}

// InputBlock is the neuron's `input:` block.
type InputBlock struct {
	Pos   token.Position
	Ports []*InputPort
}

// OutputBlock is the neuron's `output:` block, declaring exactly one
// port kind, always `spike` in practice.
type OutputBlock struct {
	Pos  token.Position
	Kind PortKind
}

// Param is one formal parameter of a `function` definition.
type Param struct {
	Name     string
	UnitText string
	HasUnit  bool
	Base     ptype.Base
	Sym      *Symbol // attached during symbol resolution

	Resolved ptype.Type // attached by the type checker
}

// FunctionDef is a user-defined `function`. A
// function-tagged alias in a declaration block such as `initial_values`
// reuses Declaration with Flags.Function set, and an algebraic alias in
// `equations` is an order-0 ODEDef; this type is reserved for full
// function definitions with parameters and a body.
type FunctionDef struct {
	Name           string
	Pos            token.Position
	Params         []*Param
	ReturnUnitText string
	ReturnHasUnit  bool
	ReturnBase     ptype.Base
	Body           *StatementBlock
	Sym            *Symbol
}
