// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ast defines the NESTML abstract syntax tree and the
// symbol/type annotations later phases attach to it in place: the symbol
// table builder attaches Symbol pointers, the type checker attaches
// resolved ptype.Type values, the equations analyzer normalizes the
// equations block, and the solver driver substitutes analysis results.
// Diagnostics are never stored on the tree; they live in the diagnostics
// package, keyed by SourceRange.
package ast

import (
	"github.com/emer/nestml/internal/ptype"
	"github.com/emer/nestml/internal/token"
)

// CompilationUnit is a named ordered sequence of Neuron declarations plus
// the package/artifact naming derived from the source path.
type CompilationUnit struct {
	Filename     string
	PackageName  string
	ArtifactName string
	Neurons      []*Neuron
}

// BlockKind names the nine optional blocks a Neuron may declare, plus the
// pseudo-kinds used to tag a declaration's provenance for CoCo purposes.
type BlockKind int

const (
	BlockState BlockKind = iota
	BlockInitialValues
	BlockParameters
	BlockInternals
	BlockEquations
	BlockInput
	BlockOutput
	BlockUpdate
	BlockFunction
	BlockLocal // let-bindings inside statements, not a top-level block
)

func (k BlockKind) String() string {
	switch k {
	case BlockState:
		return "state"
	case BlockInitialValues:
		return "initial_values"
	case BlockParameters:
		return "parameters"
	case BlockInternals:
		return "internals"
	case BlockEquations:
		return "equations"
	case BlockInput:
		return "input"
	case BlockOutput:
		return "output"
	case BlockUpdate:
		return "update"
	case BlockFunction:
		return "function"
	case BlockLocal:
		return "local"
	default:
		return "?"
	}
}

// Neuron is one `neuron` (or `synapse`) declaration: a name and nine
// optional blocks.
type Neuron struct {
	Name          string
	Pos           token.Position
	IsSynapse     bool
	State         *DeclBlock
	InitialValues *DeclBlock
	Parameters    *DeclBlock
	Internals     *DeclBlock
	Equations     *EquationsBlock
	Input         *InputBlock
	Output        *OutputBlock
	Update        *StatementBlock
	Functions     []*FunctionDef

	Scope *Scope // attached during symbol resolution
}

// DeclBlock is a list of declarations belonging to one of state,
// initial_values, parameters, internals.
type DeclBlock struct {
	Kind  BlockKind
	Pos   token.Position
	Decls []*Declaration
}

// DeclFlags are the per-declaration modifier flags.
type DeclFlags struct {
	Recordable bool
	// Function marks a `function`-tagged alias: recomputed on every
	// reference, never stored as state.
	Function bool
}

// Declaration maps a variable name to (physical type, initializer
// expression?, declaration flags).
type Declaration struct {
	Name     string
	Pos      token.Position
	Block    BlockKind
	UnitText string // raw unit-expression text as written, e.g. "nS/ms"
	HasUnit  bool
	Base     ptype.Base // default numeric base, always Real from the parser; a base keyword written in the unit slot stays in UnitText for the type checker
	Init     Expr       // nil if no initializer
	Flags    DeclFlags

	Resolved ptype.Type // attached by the type checker
	Sym      *Symbol    // attached during symbol resolution

	// Update is the discrete per-step update rule the solver driver
	// generates for a state variable folded out of a solved shape. Nil
	// for every declaration that isn't an analytic-rewrite product.
	Update Expr
}

// SymbolKind enumerates the symbol kinds the table installs.
type SymbolKind int

const (
	VariableSym SymbolKind = iota
	FunctionSym
	ShapeSym
	InputPortSym
	NeuronSym
	UnitSym
)

func (k SymbolKind) String() string {
	switch k {
	case VariableSym:
		return "VARIABLE"
	case FunctionSym:
		return "FUNCTION"
	case ShapeSym:
		return "SHAPE"
	case InputPortSym:
		return "INPUT_PORT"
	case NeuronSym:
		return "NEURON"
	case UnitSym:
		return "UNIT"
	default:
		return "?"
	}
}

// Symbol is installed in a Scope during symbol resolution and referenced
// by every AST node that names it thereafter.
type Symbol struct {
	Name       string
	Kind       SymbolKind
	Type       ptype.Type
	DeclPos    token.Position
	Origin     BlockKind
	Referenced bool
	// Node points back at the declaring AST node (*Declaration,
	// *FunctionDef, *ShapeDef, *InputPort, or *Neuron) for diagnostics
	// that need to report "declared here".
	Node any
}
