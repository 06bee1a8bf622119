// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/emer/nestml/internal/ast"
	"github.com/emer/nestml/internal/diagnostics"
	"github.com/emer/nestml/internal/parser"
	"github.com/emer/nestml/internal/ptype"
)

// DefaultTimeout is the per-request budget for the external solver round
// trip.
const DefaultTimeout = 60 * time.Second

// Driver runs the ODE analysis over a compilation unit: for every neuron
// with an equations block that has shapes or a state ODE, it builds a
// Request, invokes a Transport, and folds the Reply back into the IR.
type Driver struct {
	Transport Transport
	Timeout   time.Duration
}

// NewDriver builds a Driver. A zero Timeout is replaced with
// DefaultTimeout.
func NewDriver(transport Transport, timeout time.Duration) *Driver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Driver{Transport: transport, Timeout: timeout}
}

// Run analyzes every neuron in u, recording diagnostics to log. It never
// returns an error itself: solver failures are reported as WARN (fallback
// to numeric mode) or ERROR (malformed/inconsistent reply) diagnostics.
func (d *Driver) Run(ctx context.Context, u *ast.CompilationUnit, log *diagnostics.Log) {
	for _, n := range u.Neurons {
		d.runNeuron(ctx, n, log)
	}
}

func (d *Driver) runNeuron(ctx context.Context, n *ast.Neuron, log *diagnostics.Log) {
	eq := n.Equations
	if eq == nil || (len(eq.Shapes) == 0 && !hasStateOde(eq)) {
		return
	}

	rng := diagnostics.SourceRange{Filename: eq.Pos.Filename, StartLine: eq.Pos.Line, StartCol: eq.Pos.Col}
	req := buildRequest(n)

	cctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()
	reply, err := d.Transport.Solve(cctx, req)
	if err != nil {
		var synErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &synErr) || errors.As(err, &typeErr) {
			log.Error("SolverReplyMalformed", rng, "neuron %q: %s", n.Name, err)
			return
		}
		if cctx.Err() == context.DeadlineExceeded {
			log.Warn("SolverTimedOut", rng, "solver request for neuron %q timed out after %s; falling back to numeric mode", n.Name, d.Timeout)
		} else {
			log.Warn("SolverUnavailable", rng, "solver unavailable for neuron %q (%s); falling back to numeric mode", n.Name, err)
		}
		eq.SolverStatus = "numeric"
		return
	}

	switch reply.Status {
	case StatusFailure:
		log.Warn("SolverDeclinedAnalytic", rng, "solver declined an analytic solution for neuron %q; falling back to numeric mode", n.Name)
		eq.SolverStatus = "numeric"
	case StatusSuccess, StatusPartial:
		if reply.Solver == SolverNumeric {
			eq.SolverStatus = "numeric"
			return
		}
		if err := d.applyAnalytic(n, reply); err != nil {
			log.Error("SolverReplyMalformed", rng, "neuron %q: %s", n.Name, err)
			return
		}
		eq.SolverStatus = "analytical"
	default:
		log.Error("SolverReplyMalformed", rng, "neuron %q: unrecognized solver status %q", n.Name, reply.Status)
		return
	}

	if reply.Stiff {
		log.Info("SolverStiffnessObserved", rng, "neuron %q: solver reported a stiff subsystem", n.Name)
	}
}

func hasStateOde(eq *ast.EquationsBlock) bool {
	for _, o := range eq.Odes {
		if o.Order > 0 {
			return true
		}
	}
	return false
}

// buildRequest serializes a neuron's shapes and state ODEs into the
// solver's request protocol. Expressions and initial values are rendered
// via ast.PrintExpr, so literal unit suffixes (e.g. "-70 mV") are sent as
// written; the declared unit of each row is not sent, and no unit scale is
// folded into the numbers.
func buildRequest(n *ast.Neuron) Request {
	eq := n.Equations

	initText := map[string]string{}
	collectInit := func(blk *ast.DeclBlock) {
		if blk == nil {
			return
		}
		for _, decl := range blk.Decls {
			if decl.Init != nil {
				initText[decl.Name] = ast.PrintExpr(decl.Init)
			}
		}
	}
	collectInit(n.State)
	collectInit(n.InitialValues)

	req := Request{Options: Options{SimTimeResolutionMs: 0.1}}
	for _, s := range eq.Shapes {
		init := initText[s.Name]
		if init == "" {
			init = "0"
		}
		req.Dynamics = append(req.Dynamics, DynamicsEntry{
			Name:         s.Name,
			Expression:   ast.PrintExpr(s.Expr),
			InitialValue: init,
			Order:        s.Order,
		})
	}
	for _, o := range eq.Odes {
		if o.Order == 0 {
			continue
		}
		init := initText[o.Variable]
		if init == "" {
			init = "0"
		}
		req.Dynamics = append(req.Dynamics, DynamicsEntry{
			Name:         o.Variable,
			Expression:   ast.PrintExpr(o.RHS),
			InitialValue: init,
			Order:        o.Order,
		})
	}
	if n.Parameters != nil {
		for _, decl := range n.Parameters.Decls {
			if lit, ok := decl.Init.(*ast.Literal); ok && lit.Kind == ast.NumberLiteral {
				req.Parameters = append(req.Parameters, ParameterEntry{Name: decl.Name, Value: lit.Value})
			}
		}
	}
	return req
}

// applyAnalytic folds an analytic Reply back into the neuron's IR: every
// name in reply.StateVariables becomes a generated state declaration
// (replacing the shape of the same name, if there was one) carrying its
// own discrete-step update rule from reply.UpdateExpressions in
// Declaration.Update, every propagator entry becomes a generated internals
// constant, and every convolve(...) occurrence naming a replaced shape is
// rewritten to a plain reference to the generated state variable. After
// this, the equations block carries no shapes and no convolves.
func (d *Driver) applyAnalytic(n *ast.Neuron, reply Reply) error {
	eq := n.Equations
	if len(reply.StateVariables) == 0 {
		return fmt.Errorf("analytic reply named no state_variables")
	}
	if n.State == nil {
		n.State = &ast.DeclBlock{Kind: ast.BlockState, Pos: eq.Pos}
	}
	if n.Internals == nil {
		n.Internals = &ast.DeclBlock{Kind: ast.BlockInternals, Pos: eq.Pos}
	}

	shapeByName := make(map[string]*ast.ShapeDef, len(eq.Shapes))
	for _, s := range eq.Shapes {
		shapeByName[s.Name] = s
	}

	replacement := make(map[*ast.Convolve]ast.Expr)
	var pendingUpdates []*ast.Declaration
	for _, name := range reply.StateVariables {
		shape := shapeByName[name]
		typ := ptype.Dimensionless(ptype.Real)
		if shape != nil {
			// The kernel's value type lives on its symbol (declared in
			// state/initial_values for ode-shapes); Resolved is only the
			// defining expression's type.
			typ = shape.Resolved
			if shape.Sym != nil && !shape.Sym.Type.IsError() {
				typ = shape.Sym.Type
			}
		}

		decl := &ast.Declaration{
			Name:    name,
			Pos:     eq.Pos,
			Block:   ast.BlockState,
			HasUnit: !typ.IsError() && !typ.Unit.IsDimensionless(),
		}
		if decl.HasUnit {
			decl.UnitText = typ.Unit.Canonical()
		}
		decl.Init = literal(eq, reply.InitialValues[name], typ)
		decl.Resolved = typ
		n.State.Decls = append(n.State.Decls, decl)

		var sym *ast.Symbol
		if shape != nil && shape.Sym != nil {
			sym = shape.Sym
			sym.Kind = ast.VariableSym
			sym.Origin = ast.BlockState
			sym.Type = typ
			sym.Node = decl
		} else if n.Scope != nil {
			sym = &ast.Symbol{Name: name, Kind: ast.VariableSym, DeclPos: eq.Pos, Origin: ast.BlockState, Type: typ, Node: decl}
			n.Scope.Declare(sym)
		}
		decl.Sym = sym

		ref := ast.NewVariableRef(eq.Pos, name)
		ref.Sym = sym
		ast.SetType(ref, typ)

		for _, cv := range eq.Convolves {
			if cv.ShapeName == name {
				replacement[cv.Node] = ref
			}
		}

		if text := reply.UpdateExpressions[name]; text != "" {
			expr, err := parseGeneratedExpr(eq, name, text)
			if err != nil {
				return err
			}
			ast.SetType(expr, typ)
			decl.Update = expr
			pendingUpdates = append(pendingUpdates, decl)
		}
	}

	for key, coeffs := range reply.Propagator {
		var val float64
		if len(coeffs) > 0 {
			val = coeffs[0]
		}
		name := "__P_" + key
		typ := ptype.Dimensionless(ptype.Real)
		decl := &ast.Declaration{Name: name, Pos: eq.Pos, Block: ast.BlockInternals}
		decl.Init = literal(eq, strconv.FormatFloat(val, 'g', -1, 64), typ)
		decl.Resolved = typ
		n.Internals.Decls = append(n.Internals.Decls, decl)

		if n.Scope != nil {
			sym := &ast.Symbol{Name: name, Kind: ast.VariableSym, DeclPos: eq.Pos, Origin: ast.BlockInternals, Type: typ, Node: decl}
			n.Scope.Declare(sym)
			decl.Sym = sym
		}
	}

	// Resolve only once every generated state variable and propagator
	// internal has a Symbol in n.Scope, since an update expression may
	// name either (e.g. "g_ex * __P_g_ex").
	for _, decl := range pendingUpdates {
		resolveGeneratedRefs(n.Scope, decl.Update)
	}

	rewriteNeuron(n, replacement)

	eq.Shapes = nil
	eq.Convolves = nil
	return nil
}

// parseGeneratedExpr parses one solver-supplied update-expression string
// into an ast.Expr via the normal expression parser,
// surfacing a lexical/syntactic failure as the "malformed reply" error the
// caller already reports as an ERROR diagnostic.
func parseGeneratedExpr(eq *ast.EquationsBlock, name, text string) (ast.Expr, error) {
	tmp := diagnostics.NewLog("")
	expr := parser.ParseExprText(eq.Pos.Filename, text, tmp)
	if tmp.HasErrorOrWorse() {
		return nil, fmt.Errorf("update expression for %q (%q): %s", name, text, tmp.Items()[0].Message)
	}
	return expr, nil
}

// resolveGeneratedRefs resolves every variable reference in a freshly
// parsed update expression against scope, the same way the symbol table
// builder resolves
// ordinary source references, so every variable reference in the
// generated IR still points at exactly one symbol as far as a
// post-resolution rewrite reasonably can.
func resolveGeneratedRefs(scope *ast.Scope, e ast.Expr) {
	if scope == nil {
		return
	}
	switch x := e.(type) {
	case nil:
	case *ast.VariableRef:
		if sym, ok := scope.Lookup(x.Name); ok {
			x.Sym = sym
			sym.Referenced = true
		}
	case *ast.Unary:
		resolveGeneratedRefs(scope, x.X)
	case *ast.Binary:
		resolveGeneratedRefs(scope, x.X)
		resolveGeneratedRefs(scope, x.Y)
	case *ast.Conditional:
		resolveGeneratedRefs(scope, x.Cond)
		resolveGeneratedRefs(scope, x.Then)
		resolveGeneratedRefs(scope, x.Else)
	case *ast.Call:
		for _, a := range x.Args {
			resolveGeneratedRefs(scope, a)
		}
	}
}

func literal(eq *ast.EquationsBlock, text string, typ ptype.Type) *ast.Literal {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		v, text = 0, "0"
	}
	lit := ast.NewLiteral(eq.Pos, ast.NumberLiteral)
	lit.Value = v
	lit.Text = text
	if !typ.IsError() && !typ.Unit.IsDimensionless() {
		lit.UnitText = typ.Unit.Canonical()
	}
	ast.SetType(lit, typ)
	return lit
}

// rewriteNeuron replaces every convolve(...) node in replacement wherever
// it occurs across the neuron's ODE right-hand sides, update statements,
// and function bodies.
func rewriteNeuron(n *ast.Neuron, replacement map[*ast.Convolve]ast.Expr) {
	if len(replacement) == 0 {
		return
	}
	if n.Equations != nil {
		for _, o := range n.Equations.Odes {
			o.RHS = rewriteExpr(o.RHS, replacement)
		}
	}
	rewriteBlock(n.Update, replacement)
	for _, f := range n.Functions {
		rewriteBlock(f.Body, replacement)
	}
}

func rewriteBlock(blk *ast.StatementBlock, replacement map[*ast.Convolve]ast.Expr) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stmts {
		rewriteStmt(s, replacement)
	}
}

func rewriteStmt(s ast.Stmt, replacement map[*ast.Convolve]ast.Expr) {
	switch st := s.(type) {
	case *ast.DeclStmt:
		st.Decl.Init = rewriteExpr(st.Decl.Init, replacement)
	case *ast.ExprStmt:
		st.X = rewriteExpr(st.X, replacement)
	case *ast.AssignStmt:
		st.Value = rewriteExpr(st.Value, replacement)
	case *ast.IfStmt:
		st.If.Cond = rewriteExpr(st.If.Cond, replacement)
		rewriteBlock(st.If.Body, replacement)
		for i := range st.Elif {
			st.Elif[i].Cond = rewriteExpr(st.Elif[i].Cond, replacement)
			rewriteBlock(st.Elif[i].Body, replacement)
		}
		rewriteBlock(st.Else, replacement)
	case *ast.ForStmt:
		st.Start = rewriteExpr(st.Start, replacement)
		st.Stop = rewriteExpr(st.Stop, replacement)
		st.Step = rewriteExpr(st.Step, replacement)
		rewriteBlock(st.Body, replacement)
	case *ast.ReturnStmt:
		st.Value = rewriteExpr(st.Value, replacement)
	}
}

// rewriteExpr reconstructs e with every *ast.Convolve key of replacement
// swapped for its mapped Expr, leaving untouched subtrees shared with the
// original.
func rewriteExpr(e ast.Expr, replacement map[*ast.Convolve]ast.Expr) ast.Expr {
	switch x := e.(type) {
	case nil:
		return nil
	case *ast.Convolve:
		if r, ok := replacement[x]; ok {
			return r
		}
		return x
	case *ast.Literal, *ast.VariableRef, *ast.DiffQuotient:
		return x
	case *ast.Unary:
		nx := rewriteExpr(x.X, replacement)
		if nx == x.X {
			return x
		}
		n := ast.NewUnary(x.Position(), x.Op, nx)
		ast.SetType(n, x.ResolvedType())
		return n
	case *ast.Binary:
		nx := rewriteExpr(x.X, replacement)
		ny := rewriteExpr(x.Y, replacement)
		if nx == x.X && ny == x.Y {
			return x
		}
		n := ast.NewBinary(x.Position(), x.Op, nx, ny)
		n.ConvFactor = x.ConvFactor
		n.ConvOnLHS = x.ConvOnLHS
		ast.SetType(n, x.ResolvedType())
		return n
	case *ast.Conditional:
		nc := rewriteExpr(x.Cond, replacement)
		nt := rewriteExpr(x.Then, replacement)
		ne := rewriteExpr(x.Else, replacement)
		if nc == x.Cond && nt == x.Then && ne == x.Else {
			return x
		}
		n := ast.NewConditional(x.Position(), nc, nt, ne)
		ast.SetType(n, x.ResolvedType())
		return n
	case *ast.Call:
		changed := false
		args := make([]ast.Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = rewriteExpr(a, replacement)
			if args[i] != a {
				changed = true
			}
		}
		if !changed {
			return x
		}
		n := ast.NewCall(x.Position(), x.FuncName, args)
		n.Sym = x.Sym
		ast.SetType(n, x.ResolvedType())
		return n
	default:
		return e
	}
}
