// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package symtab builds the scope/symbol tree for a parsed compilation
// unit: a declaration pass that installs every name in its scope,
// followed by a reference pass that resolves every use against the
// scopes the first pass built. The data types the tree is made of
// (ast.Scope, ast.Symbol) live in package ast to avoid an ast<->symtab
// import cycle; this package holds only the two-pass algorithm.
package symtab

import (
	"github.com/emer/nestml/internal/ast"
	"github.com/emer/nestml/internal/diagnostics"
	"github.com/emer/nestml/internal/token"
)

// builtinFuncs lists NESTML's predefined functions; calls to these never
// need a Symbol.
var builtinFuncs = map[string]bool{
	"exp": true, "ln": true, "log10": true,
	"sin": true, "cos": true, "tan": true, "sqrt": true, "abs": true,
	"min": true, "max": true,
	"steps": true, "resolution": true,
	"random_normal": true, "random_uniform": true,
	"emit_spike": true, "integrate_odes": true,
	"delta": true,
}

// Build runs the two-pass symbol resolution over every neuron in u,
// reporting into log. It attaches Neuron.Scope and every node's Sym field
// in place; it does not attach types (that is the type checker's job).
func Build(u *ast.CompilationUnit, log *diagnostics.Log) {
	for _, n := range u.Neurons {
		buildNeuron(n, log)
	}
}

func buildNeuron(n *ast.Neuron, log *diagnostics.Log) {
	scope := ast.NewScope(nil, ast.BlockState)
	n.Scope = scope

	declareBlocks(n, scope, log)
	resolveBlocks(n, scope, log)
}

// declareBlocks is pass 1: install every declared name (variables, shapes,
// input ports, functions) into the neuron's flat scope. NESTML gives
// state/initial_values/parameters/internals/equations-shapes/input-ports/
// functions one shared namespace per neuron.
func declareBlocks(n *ast.Neuron, scope *ast.Scope, log *diagnostics.Log) {
	declareDeclBlock(n.State, scope, log)
	declareDeclBlock(n.InitialValues, scope, log)
	declareDeclBlock(n.Parameters, scope, log)
	declareDeclBlock(n.Internals, scope, log)

	if n.Equations != nil {
		for _, s := range n.Equations.Shapes {
			if s.Order > 0 {
				// An ODE-defined shape introduces no new name: it gives
				// dynamics to a kernel whose initial value must already be
				// declared in state or initial_values. The existing symbol
				// is re-tagged as the shape, so convolve() resolution and
				// the solver fold both see one symbol for the kernel.
				existing, ok := scope.LookupLocal(s.Name)
				switch {
				case ok && existing.Kind == ast.VariableSym &&
					(existing.Origin == ast.BlockState || existing.Origin == ast.BlockInitialValues):
					existing.Kind = ast.ShapeSym
					existing.Node = s
					s.Sym = existing
				case ok:
					log.Error("CoCoVariableOnceScope", rangeOf(s.Pos),
						"%q already declared at %s", s.Name, rangeOf(existing.DeclPos))
				default:
					log.Error("CoCoStateVariablesInitialized", rangeOf(s.Pos),
						"ode-defined shape %q has no initial value declared in state or initial_values", s.Name)
				}
				continue
			}
			sym := &ast.Symbol{Name: s.Name, Kind: ast.ShapeSym, DeclPos: s.Pos, Origin: ast.BlockEquations, Node: s}
			declareOne(scope, sym, log)
			s.Sym = sym
		}
		// Order-0 rows are algebraic aliases (e.g. "I_syn pA = convolve(...)")
		// and declare a new name; order>0 rows are derivatives of a state
		// variable that must already exist, checked in pass 2.
		for _, o := range n.Equations.Odes {
			if o.Order != 0 {
				continue
			}
			sym := &ast.Symbol{Name: o.Variable, Kind: ast.VariableSym, DeclPos: o.Pos, Origin: ast.BlockEquations, Node: o}
			declareOne(scope, sym, log)
			o.Sym = sym
		}
	}
	if n.Input != nil {
		for _, p := range n.Input.Ports {
			sym := &ast.Symbol{Name: p.Name, Kind: ast.InputPortSym, DeclPos: p.Pos, Origin: ast.BlockInput, Node: p}
			declareOne(scope, sym, log)
			p.Sym = sym
		}
	}
	for _, f := range n.Functions {
		sym := &ast.Symbol{Name: f.Name, Kind: ast.FunctionSym, DeclPos: f.Pos, Origin: ast.BlockFunction, Node: f}
		declareOne(scope, sym, log)
		f.Sym = sym
	}
}

func declareDeclBlock(blk *ast.DeclBlock, scope *ast.Scope, log *diagnostics.Log) {
	if blk == nil {
		return
	}
	for _, d := range blk.Decls {
		sym := &ast.Symbol{Name: d.Name, Kind: ast.VariableSym, DeclPos: d.Pos, Origin: d.Block, Node: d}
		declareOne(scope, sym, log)
		d.Sym = sym
	}
}

// declareOne installs sym, reporting a diagnostic on duplicate declaration
// in the same scope.
func declareOne(scope *ast.Scope, sym *ast.Symbol, log *diagnostics.Log) {
	if existing, ok := scope.LookupLocal(sym.Name); ok {
		log.Error("CoCoVariableOnceScope", rangeOf(sym.DeclPos),
			"%q already declared at %s", sym.Name, rangeOf(existing.DeclPos))
		return
	}
	scope.Declare(sym)
}

// rangeOf converts a single source position into a zero-width SourceRange.
func rangeOf(pos token.Position) diagnostics.SourceRange {
	return diagnostics.SourceRange{Filename: pos.Filename, StartLine: pos.Line, StartCol: pos.Col, EndLine: pos.Line, EndCol: pos.Col}
}

// resolveBlocks is pass 2: resolve every reference against the scopes pass
// 1 built, including forward-reference legality.
func resolveBlocks(n *ast.Neuron, scope *ast.Scope, log *diagnostics.Log) {
	resolveDeclBlockRefs(n.State, scope, log, false)
	resolveDeclBlockRefs(n.InitialValues, scope, log, true)
	resolveDeclBlockRefs(n.Parameters, scope, log, true)
	resolveDeclBlockRefs(n.Internals, scope, log, false)

	if n.Equations != nil {
		for _, s := range n.Equations.Shapes {
			resolveExpr(s.Expr, scope, log)
		}
		for _, o := range n.Equations.Odes {
			if o.Order == 0 {
				// already declared in declareBlocks; just mark referenced
				// once its RHS (which may recursively mention it) is walked.
				resolveExpr(o.RHS, scope, log)
				continue
			}
			if sym, ok := scope.Lookup(o.Variable); ok {
				o.Sym = sym
				sym.Referenced = true
			} else {
				log.Error("CoCoVariableDefinedAfterUse", rangeOf(o.Pos),
					"derivative refers to undeclared variable %q", o.Variable)
			}
			resolveExpr(o.RHS, scope, log)
		}
	}
	for _, f := range n.Functions {
		resolveFunction(f, scope, log)
	}
	if n.Update != nil {
		resolveStatementBlock(n.Update, scope, log)
	}
}

// resolveDeclBlockRefs resolves every declaration's initializer in blk.
// allowForward permits a reference to a symbol declared later in the same
// block (parameters/initial_values); when false (state/internals), such a
// reference is a diagnostic.
func resolveDeclBlockRefs(blk *ast.DeclBlock, scope *ast.Scope, log *diagnostics.Log, allowForward bool) {
	if blk == nil {
		return
	}
	indexOf := map[string]int{}
	for i, d := range blk.Decls {
		indexOf[d.Name] = i
	}
	for i, d := range blk.Decls {
		if d.Init == nil {
			continue
		}
		resolveExpr(d.Init, scope, log)
		if allowForward {
			continue
		}
		pos := d.Pos
		walkRefs(d.Init, func(name string) {
			if j, ok := indexOf[name]; ok && j > i {
				log.Error("CoCoVariableDefinedAfterUse", rangeOf(pos),
					"%q is used before it is declared in %s", name, blk.Kind)
			}
		})
	}
}

// walkRefs visits every VariableRef name reachable from e.
func walkRefs(e ast.Expr, visit func(name string)) {
	switch x := e.(type) {
	case nil:
		return
	case *ast.VariableRef:
		visit(x.Name)
	case *ast.Binary:
		walkRefs(x.X, visit)
		walkRefs(x.Y, visit)
	case *ast.Unary:
		walkRefs(x.X, visit)
	case *ast.Conditional:
		walkRefs(x.Cond, visit)
		walkRefs(x.Then, visit)
		walkRefs(x.Else, visit)
	case *ast.Call:
		for _, a := range x.Args {
			walkRefs(a, visit)
		}
	}
}

func resolveFunction(f *ast.FunctionDef, parent *ast.Scope, log *diagnostics.Log) {
	scope := ast.NewScope(parent, ast.BlockFunction)
	for _, p := range f.Params {
		sym := &ast.Symbol{Name: p.Name, Kind: ast.VariableSym, Origin: ast.BlockFunction}
		declareOne(scope, sym, log)
		p.Sym = sym
	}
	if f.Body != nil {
		resolveStatementBlock(f.Body, scope, log)
	}
}

func resolveStatementBlock(blk *ast.StatementBlock, parent *ast.Scope, log *diagnostics.Log) {
	scope := ast.NewScope(parent, ast.BlockLocal)
	blk.Scope = scope
	for _, s := range blk.Stmts {
		resolveStmt(s, scope, log)
	}
}

func resolveStmt(s ast.Stmt, scope *ast.Scope, log *diagnostics.Log) {
	switch st := s.(type) {
	case *ast.DeclStmt:
		resolveExpr(st.Decl.Init, scope, log)
		sym := &ast.Symbol{Name: st.Decl.Name, Kind: ast.VariableSym, DeclPos: st.Decl.Pos, Origin: ast.BlockLocal, Node: st.Decl}
		if _, shadowed := scope.Lookup(st.Decl.Name); shadowed {
			log.Warn("CoCoVariableOnceScope", rangeOf(st.Decl.Pos),
				"local %q shadows an outer declaration", st.Decl.Name)
		}
		declareOne(scope, sym, log)
		st.Decl.Sym = sym
	case *ast.ExprStmt:
		resolveExpr(st.X, scope, log)
	case *ast.AssignStmt:
		if sym, ok := scope.Lookup(st.Target.Name); ok {
			st.Target.Sym = sym
			sym.Referenced = true
		} else {
			log.Error("CoCoVariableDefinedAfterUse", rangeOf(st.Target.Position()),
				"assignment to undeclared variable %q", st.Target.Name)
		}
		resolveExpr(st.Value, scope, log)
	case *ast.IfStmt:
		resolveExpr(st.If.Cond, scope, log)
		resolveStatementBlock(st.If.Body, scope, log)
		for _, e := range st.Elif {
			resolveExpr(e.Cond, scope, log)
			resolveStatementBlock(e.Body, scope, log)
		}
		if st.Else != nil {
			resolveStatementBlock(st.Else, scope, log)
		}
	case *ast.ForStmt:
		resolveExpr(st.Start, scope, log)
		resolveExpr(st.Stop, scope, log)
		resolveExpr(st.Step, scope, log)
		loopScope := ast.NewScope(scope, ast.BlockLocal)
		sym := &ast.Symbol{Name: st.Var, Kind: ast.VariableSym, Origin: ast.BlockLocal}
		loopScope.Declare(sym)
		st.Sym = sym
		if st.Body != nil {
			st.Body.Scope = loopScope
			for _, inner := range st.Body.Stmts {
				resolveStmt(inner, loopScope, log)
			}
		}
	case *ast.ReturnStmt:
		resolveExpr(st.Value, scope, log)
	}
}

// resolveExpr resolves every name appearing in e against scope, attaching
// Sym fields in place. It is nil-safe so callers can pass an optional
// Step/Value/Init without a separate nil check.
func resolveExpr(e ast.Expr, scope *ast.Scope, log *diagnostics.Log) {
	switch x := e.(type) {
	case nil:
		return
	case *ast.Literal:
		return
	case *ast.VariableRef:
		if sym, ok := scope.Lookup(x.Name); ok {
			x.Sym = sym
			sym.Referenced = true
		} else {
			log.Error("CoCoVariableDefinedAfterUse", rangeOf(x.Position()),
				"reference to undeclared variable %q", x.Name)
		}
	case *ast.DiffQuotient:
		if sym, ok := scope.Lookup(x.Name); ok {
			x.Sym = sym
			sym.Referenced = true
		} else {
			log.Error("CoCoVariableDefinedAfterUse", rangeOf(x.Position()),
				"derivative of undeclared variable %q", x.Name)
		}
	case *ast.Convolve:
		if sym, ok := scope.Lookup(x.ShapeName); ok && sym.Kind == ast.ShapeSym {
			x.ShapeSym = sym
			sym.Referenced = true
		} else {
			log.Error("CoCoConvolveNotCorrectlyProvided", rangeOf(x.Position()),
				"convolve refers to unknown shape %q", x.ShapeName)
		}
		if sym, ok := scope.Lookup(x.PortName); ok && sym.Kind == ast.InputPortSym {
			if port, ok := sym.Node.(*ast.InputPort); ok && port.Kind != ast.SpikePort {
				log.Error("CoCoConvolveNotCorrectlyProvided", rangeOf(x.Position()),
					"convolve's second argument %q must be a spike input port, not current", x.PortName)
			} else {
				x.PortSym = sym
				sym.Referenced = true
			}
		} else {
			log.Error("CoCoConvolveNotCorrectlyProvided", rangeOf(x.Position()),
				"convolve refers to unknown input port %q", x.PortName)
		}
	case *ast.Call:
		resolveCall(x, scope, log)
	case *ast.Unary:
		resolveExpr(x.X, scope, log)
	case *ast.Binary:
		resolveExpr(x.X, scope, log)
		resolveExpr(x.Y, scope, log)
	case *ast.Conditional:
		resolveExpr(x.Cond, scope, log)
		resolveExpr(x.Then, scope, log)
		resolveExpr(x.Else, scope, log)
	}
}

func resolveCall(c *ast.Call, scope *ast.Scope, log *diagnostics.Log) {
	for _, a := range c.Args {
		resolveExpr(a, scope, log)
	}
	if builtinFuncs[c.FuncName] {
		return
	}
	if sym, ok := scope.Lookup(c.FuncName); ok && sym.Kind == ast.FunctionSym {
		c.Sym = sym
		sym.Referenced = true
		return
	}
	log.Error("CoCoVariableDefinedAfterUse", rangeOf(c.Position()),
		"call to unknown function %q", c.FuncName)
}
