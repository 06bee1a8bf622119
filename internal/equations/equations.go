// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package equations implements the equations analyzer: canonicalizing a
// neuron's equations block for the ODE analysis driver. The parser has
// already classified each shape by its defining form
// (direct/ode-shape/delta) and indexed every convolve(...) occurrence
// (EquationsBlock.Convolves); what remains here is linearity detection
// over the shape-ODE and state-ODE rows, inlining function aliases at
// reference sites. Only the analysis inlines them - the original alias
// declarations remain in the IR for code generation.
package equations

import (
	"github.com/emer/nestml/internal/ast"
	"github.com/emer/nestml/internal/diagnostics"
	"github.com/emer/nestml/internal/token"
)

// Analyze walks every neuron's equations block, setting ShapeDef.Linear
// and ODEDef.Linear. It does not rewrite the tree; the solver driver
// consumes Linear to decide whether to offer a subsystem to the solver as
// a linear (propagator-eligible) system.
func Analyze(u *ast.CompilationUnit, log *diagnostics.Log) {
	for _, n := range u.Neurons {
		if n.Equations == nil {
			continue
		}
		analyzeNeuron(n.Equations, log)
	}
}

func analyzeNeuron(eq *ast.EquationsBlock, log *diagnostics.Log) {
	// The set of names whose appearance in an RHS makes that RHS
	// dependent on "the" dynamical system rather than a constant: every
	// shape and every state variable that has its own differential
	// equation (order > 0).
	vars := map[string]bool{}
	for _, s := range eq.Shapes {
		vars[s.Name] = true
	}
	for _, o := range eq.Odes {
		if o.Order > 0 {
			vars[o.Variable] = true
		}
	}

	for _, s := range eq.Shapes {
		if s.Kind != ast.OdeShape {
			continue // linearity only meaningful for ode-shape rows
		}
		linear, _ := exprLinearity(s.Expr, vars, map[string]bool{})
		s.Linear = linear
	}
	for _, o := range eq.Odes {
		if o.Order == 0 {
			continue // algebraic alias, not an ODE
		}
		linear, _ := exprLinearity(o.RHS, vars, map[string]bool{})
		o.Linear = linear
	}
}

// exprLinearity classifies e as (linear, constant) with respect to vars,
// inlining any function-tagged alias Declaration it references; constant
// implies linear. A cyclic alias chain is treated as nonlinear here; the
// cycle itself is reported by internal/coco, which runs the same inlining
// walk to find it.
func exprLinearity(e ast.Expr, vars map[string]bool, visiting map[string]bool) (linear, constant bool) {
	switch x := e.(type) {
	case nil:
		return true, true
	case *ast.Literal:
		return true, true
	case *ast.VariableRef:
		if vars[x.Name] {
			return true, false
		}
		if x.Sym != nil {
			if d, ok := x.Sym.Node.(*ast.Declaration); ok && d.Flags.Function {
				if visiting[x.Name] {
					return false, false
				}
				visiting[x.Name] = true
				l, c := exprLinearity(d.Init, vars, visiting)
				delete(visiting, x.Name)
				return l, c
			}
		}
		return true, true // parameter/internal: constant over one integration step
	case *ast.DiffQuotient:
		return true, false
	case *ast.Convolve:
		// Opaque at this stage: post-fold, a convolve becomes a plain
		// reference to a generated state variable, so it is treated as a
		// linear occurrence of its shape for the purposes of this pass.
		return true, false
	case *ast.Unary:
		if x.Op == token.MINUS {
			return exprLinearity(x.X, vars, visiting)
		}
		return false, false
	case *ast.Binary:
		return binaryLinearity(x, vars, visiting)
	case *ast.Conditional:
		return false, false // branch-dependent RHS has no single affine form
	case *ast.Call:
		return callLinearity(x, vars, visiting)
	default:
		return false, false
	}
}

func binaryLinearity(x *ast.Binary, vars map[string]bool, visiting map[string]bool) (linear, constant bool) {
	switch x.Op {
	case token.PLUS, token.MINUS:
		l1, c1 := exprLinearity(x.X, vars, visiting)
		l2, c2 := exprLinearity(x.Y, vars, visiting)
		return l1 && l2, c1 && c2
	case token.STAR:
		l1, c1 := exprLinearity(x.X, vars, visiting)
		l2, c2 := exprLinearity(x.Y, vars, visiting)
		switch {
		case c1 && c2:
			return true, true
		case c1 && l2:
			return true, false
		case c2 && l1:
			return true, false
		default:
			return false, false // variable * variable
		}
	case token.SLASH:
		l1, c1 := exprLinearity(x.X, vars, visiting)
		_, c2 := exprLinearity(x.Y, vars, visiting)
		if !c2 {
			return false, false // division by a non-constant
		}
		return l1, c1
	case token.POW:
		_, c1 := exprLinearity(x.X, vars, visiting)
		_, c2 := exprLinearity(x.Y, vars, visiting)
		return c1 && c2, c1 && c2
	default:
		return false, false // comparisons/logical connectives have no place in a numeric RHS
	}
}

func callLinearity(c *ast.Call, vars map[string]bool, visiting map[string]bool) (linear, constant bool) {
	allConstant := true
	for _, a := range c.Args {
		_, ac := exprLinearity(a, vars, visiting)
		if !ac {
			allConstant = false
		}
	}
	if allConstant {
		return true, true
	}
	// A nonlinear built-in (exp, sin, ...) applied to a non-constant
	// argument breaks affineness; this also covers user functions, which
	// the checker cannot inline without their own body analysis.
	return false, false
}
