// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coco implements the fixed battery of whole-program context
// conditions, applied after the type checker has decorated every node.
// Each rule is independent and only reports diagnostics; none of them
// rewrite the tree. A few context conditions are intentionally not
// duplicated here because an earlier phase already enforces them where it
// is structurally cheaper to do so: "at most one of each block kind" is
// caught by the
// parser (ast.BlockKind collision, CoCoEachBlockUniqueAndCorrectNumberOfTimes),
// "convolve's second argument must resolve to a spike input port" is
// caught by symtab while resolving the Convolve node, since the
// symbol kind is already known there (CoCoConvolveNotCorrectlyProvided),
// and "an ode-defined shape's kernel must have an initial value in
// state/initial_values" is caught by symtab while installing shape
// symbols, since that is where the kernel's symbol is bound
// (CoCoStateVariablesInitialized).
package coco

import (
	"github.com/emer/nestml/internal/ast"
	"github.com/emer/nestml/internal/diagnostics"
	"github.com/emer/nestml/internal/token"
	"github.com/emer/nestml/internal/units"
)

// builtinFuncs mirrors symtab's table: these names never resolve to a
// user Symbol, so reserved-name and call-site checks need their own
// closed list rather than a scope lookup.
var builtinFuncs = map[string]bool{
	"exp": true, "ln": true, "log10": true,
	"sin": true, "cos": true, "tan": true, "sqrt": true, "abs": true,
	"min": true, "max": true,
	"steps": true, "resolution": true,
	"random_normal": true, "random_uniform": true,
	"emit_spike": true, "integrate_odes": true,
	"delta": true,
}

// Check runs every context condition over every neuron in u, reporting
// into log. dev relaxes the initial_values-alias-references-state rule to
// a warning.
func Check(u *ast.CompilationUnit, log *diagnostics.Log, dev bool) {
	for _, n := range u.Neurons {
		checkNeuron(n, log, dev)
	}
}

func checkNeuron(n *ast.Neuron, log *diagnostics.Log, dev bool) {
	checkDerivativeOrigin(n, log)
	checkInitialValuesAliases(n, log, dev)
	checkOutputPort(n, log)
	checkCallsOnlyInUpdate(n, log)
	checkParametersConstant(n, log)
	checkInputPortSigns(n, log)
	checkNoCircularAliases(n, log)
	checkReservedNames(n, log)
	checkUnusedDeclarations(n, log)
}

func rangeOf(pos token.Position) diagnostics.SourceRange {
	return diagnostics.SourceRange{Filename: pos.Filename, StartLine: pos.Line, StartCol: pos.Col, EndLine: pos.Line, EndCol: pos.Col}
}

// checkDerivativeOrigin enforces: every variable on the LHS of a
// differential quotient in equations must be declared in state or
// initial_values.
func checkDerivativeOrigin(n *ast.Neuron, log *diagnostics.Log) {
	if n.Equations == nil {
		return
	}
	for _, o := range n.Equations.Odes {
		if o.Order == 0 || o.Sym == nil {
			continue
		}
		if o.Sym.Origin != ast.BlockState && o.Sym.Origin != ast.BlockInitialValues {
			log.Error("CoCoStateVariablesInitialized", rangeOf(o.Pos),
				"%q is used as a differential quotient but is declared in %s, not state or initial_values",
				o.Variable, o.Sym.Origin)
		}
	}
}

// checkInitialValuesAliases enforces: initial_values entries must declare
// either plain values or function aliases; alias RHS may reference
// parameters and other initial values but not state or itself.
func checkInitialValuesAliases(n *ast.Neuron, log *diagnostics.Log, dev bool) {
	if n.InitialValues == nil {
		return
	}
	for _, d := range n.InitialValues.Decls {
		if !d.Flags.Function || d.Init == nil {
			continue
		}
		walkVarRefs(d.Init, func(name string, pos token.Position) {
			if name == d.Name {
				log.Error("CoCoNoSelfReference", rangeOf(d.Pos),
					"alias %q cannot reference itself", d.Name)
				return
			}
			sym, ok := n.Scope.Lookup(name)
			if !ok || sym.Origin != ast.BlockState {
				return
			}
			if dev {
				log.Warn("CoCoInitialValuesReference", rangeOf(d.Pos),
					"alias %q references state variable %q (relaxed: --dev)", d.Name, name)
				return
			}
			log.Error("CoCoInitialValuesReference", rangeOf(d.Pos),
				"alias %q cannot reference state variable %q", d.Name, name)
		})
	}
}

// checkOutputPort enforces: output: declares exactly one port kind
// (spike). The parser's block-uniqueness rule already guarantees at most
// one output: block exists; this checks it both exists and is spike-kind.
func checkOutputPort(n *ast.Neuron, log *diagnostics.Log) {
	if n.Output == nil {
		log.Error("CoCoOutputPortDefined", rangeOf(n.Pos),
			"neuron %q declares no output block", n.Name)
		return
	}
	if n.Output.Kind != ast.SpikePort {
		log.Error("CoCoOutputPortDefined", rangeOf(n.Output.Pos),
			"output port must be of kind spike")
	}
}

// checkCallsOnlyInUpdate enforces: integrate_odes() and emit_spike() are
// callable only inside update.
func checkCallsOnlyInUpdate(n *ast.Neuron, log *diagnostics.Log) {
	report := func(e ast.Expr) {
		walkCalls(e, func(c *ast.Call) {
			if c.FuncName == "integrate_odes" || c.FuncName == "emit_spike" {
				log.Error("CoCoFunctionCallsOnlyInUpdate", rangeOf(c.Position()),
					"%s() may only be called inside update", c.FuncName)
			}
		})
	}
	forEachDeclBlock(n, func(d *ast.Declaration) { report(d.Init) })
	if n.Equations != nil {
		for _, s := range n.Equations.Shapes {
			report(s.Expr)
		}
		for _, o := range n.Equations.Odes {
			report(o.RHS)
		}
	}
	for _, f := range n.Functions {
		walkStmtExprs(f.Body, report)
	}
}

// checkParametersConstant enforces: all parameters are initialized with a
// constant expression (no references to non-parameter variables).
func checkParametersConstant(n *ast.Neuron, log *diagnostics.Log) {
	if n.Parameters == nil {
		return
	}
	for _, d := range n.Parameters.Decls {
		if d.Init == nil {
			continue
		}
		walkVarRefs(d.Init, func(name string, pos token.Position) {
			sym, ok := n.Scope.Lookup(name)
			if !ok || sym.Origin == ast.BlockParameters {
				return
			}
			log.Error("CoCoParametersAssignedOnlyConstants", rangeOf(d.Pos),
				"parameter %q must be a constant expression, but references %q (%s)",
				d.Name, name, sym.Origin)
		})
	}
}

// checkInputPortSigns enforces: inhibitory and excitatory spike ports, if
// both present, must share a unit.
func checkInputPortSigns(n *ast.Neuron, log *diagnostics.Log) {
	if n.Input == nil {
		return
	}
	var inhib, excit *ast.InputPort
	for _, p := range n.Input.Ports {
		if p.Kind != ast.SpikePort {
			continue
		}
		switch p.Sign {
		case ast.Inhibitory:
			inhib = p
		case ast.Excitatory:
			excit = p
		}
	}
	if inhib == nil || excit == nil {
		return
	}
	if inhib.Resolved.IsError() || excit.Resolved.IsError() {
		return
	}
	if !inhib.Resolved.Unit.SameDimension(excit.Resolved.Unit) {
		log.Error("CoCoInputPortsSameUnit", rangeOf(excit.Pos),
			"inhibitory port %q (%s) and excitatory port %q (%s) must share a unit",
			inhib.Name, inhib.Resolved, excit.Name, excit.Resolved)
	}
}

// checkNoCircularAliases enforces: no cyclic dependency among
// function-aliases in initial_values/equations, using iterative
// depth-first marking.
func checkNoCircularAliases(n *ast.Neuron, log *diagnostics.Log) {
	aliasExpr := map[string]ast.Expr{}
	aliasPos := map[string]token.Position{}
	if n.InitialValues != nil {
		for _, d := range n.InitialValues.Decls {
			if d.Flags.Function {
				aliasExpr[d.Name] = d.Init
				aliasPos[d.Name] = d.Pos
			}
		}
	}
	if n.Equations != nil {
		for _, o := range n.Equations.Odes {
			if o.Order == 0 {
				aliasExpr[o.Variable] = o.RHS
				aliasPos[o.Variable] = o.Pos
			}
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	reported := map[string]bool{}

	var dfs func(name string) bool
	dfs = func(name string) bool {
		switch color[name] {
		case black:
			return false
		case gray:
			return true
		}
		color[name] = gray
		cyc := false
		walkVarRefs(aliasExpr[name], func(ref string, _ token.Position) {
			if cyc {
				return
			}
			if _, ok := aliasExpr[ref]; !ok {
				return
			}
			if dfs(ref) {
				cyc = true
			}
		})
		color[name] = black
		return cyc
	}

	for name := range aliasExpr {
		if color[name] != white {
			continue
		}
		if dfs(name) && !reported[name] {
			reported[name] = true
			log.Error("CoCoNoCircularAliases", rangeOf(aliasPos[name]),
				"%q participates in a circular alias dependency", name)
		}
	}
}

// checkReservedNames enforces: reserved names (unit symbols, built-ins)
// may not be redeclared.
func checkReservedNames(n *ast.Neuron, log *diagnostics.Log) {
	if n.Scope == nil {
		return
	}
	for _, sym := range n.Scope.All() {
		if builtinFuncs[sym.Name] || units.IsKnownSymbol(sym.Name) {
			log.Error("CoCoReservedName", rangeOf(sym.DeclPos),
				"%q is a reserved unit/built-in name and cannot be redeclared", sym.Name)
		}
	}
}

// checkUnusedDeclarations warns (never errors) about parameters and
// internals nothing in the neuron references.
func checkUnusedDeclarations(n *ast.Neuron, log *diagnostics.Log) {
	if n.Scope == nil {
		return
	}
	for _, sym := range n.Scope.All() {
		if sym.Kind != ast.VariableSym || sym.Referenced {
			continue
		}
		if sym.Origin != ast.BlockParameters && sym.Origin != ast.BlockInternals {
			continue
		}
		log.Warn("CoCoUnusedVariable", rangeOf(sym.DeclPos),
			"%s %q is never referenced", sym.Origin, sym.Name)
	}
}

// forEachDeclBlock calls fn for every Declaration in every decl block of
// n (state, initial_values, parameters, internals).
func forEachDeclBlock(n *ast.Neuron, fn func(*ast.Declaration)) {
	for _, blk := range []*ast.DeclBlock{n.State, n.InitialValues, n.Parameters, n.Internals} {
		if blk == nil {
			continue
		}
		for _, d := range blk.Decls {
			fn(d)
		}
	}
}

// walkVarRefs visits every VariableRef name reachable from e, depth-first.
func walkVarRefs(e ast.Expr, visit func(name string, pos token.Position)) {
	switch x := e.(type) {
	case nil:
		return
	case *ast.VariableRef:
		visit(x.Name, x.Position())
	case *ast.Binary:
		walkVarRefs(x.X, visit)
		walkVarRefs(x.Y, visit)
	case *ast.Unary:
		walkVarRefs(x.X, visit)
	case *ast.Conditional:
		walkVarRefs(x.Cond, visit)
		walkVarRefs(x.Then, visit)
		walkVarRefs(x.Else, visit)
	case *ast.Call:
		for _, a := range x.Args {
			walkVarRefs(a, visit)
		}
	}
}

// walkCalls visits every Call node reachable from e, depth-first,
// including through its own arguments.
func walkCalls(e ast.Expr, visit func(*ast.Call)) {
	switch x := e.(type) {
	case nil:
		return
	case *ast.Call:
		visit(x)
		for _, a := range x.Args {
			walkCalls(a, visit)
		}
	case *ast.Binary:
		walkCalls(x.X, visit)
		walkCalls(x.Y, visit)
	case *ast.Unary:
		walkCalls(x.X, visit)
	case *ast.Conditional:
		walkCalls(x.Cond, visit)
		walkCalls(x.Then, visit)
		walkCalls(x.Else, visit)
	}
}

// walkStmtExprs visits every expression reachable from every statement in
// blk, recursing into nested if/for bodies.
func walkStmtExprs(blk *ast.StatementBlock, visit func(ast.Expr)) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stmts {
		switch st := s.(type) {
		case *ast.DeclStmt:
			visit(st.Decl.Init)
		case *ast.ExprStmt:
			visit(st.X)
		case *ast.AssignStmt:
			visit(st.Value)
		case *ast.IfStmt:
			visit(st.If.Cond)
			walkStmtExprs(st.If.Body, visit)
			for _, e := range st.Elif {
				visit(e.Cond)
				walkStmtExprs(e.Body, visit)
			}
			walkStmtExprs(st.Else, visit)
		case *ast.ForStmt:
			visit(st.Start)
			visit(st.Stop)
			visit(st.Step)
			walkStmtExprs(st.Body, visit)
		case *ast.ReturnStmt:
			visit(st.Value)
		}
	}
}
