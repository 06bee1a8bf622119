// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package typecheck decorates every expression in a compilation unit with
// a resolved physical type: a bottom-up pass that evaluates each declared
// unit-expression text through the unit algebra, propagates types through
// operators, and records the scale-conversion factor on a Binary node
// when its two sides share a dimension but differ in scale. It assumes
// the symbol table builder has already run: every VariableRef,
// DiffQuotient, Convolve, and Call already carries the Symbol it resolves
// to, or is left unresolved because symbol resolution already reported it.
package typecheck

import (
	"github.com/emer/nestml/internal/ast"
	"github.com/emer/nestml/internal/diagnostics"
	"github.com/emer/nestml/internal/ptype"
	"github.com/emer/nestml/internal/token"
	"github.com/emer/nestml/internal/units"
)

// baseKeywords lets a declaration spell its base type directly ("a integer
// = 0") instead of a physical unit; the parser cannot tell these apart
// from a unit symbol (both are bare identifiers), so the distinction is
// made here.
var baseKeywords = map[string]ptype.Base{
	"real":    ptype.Real,
	"integer": ptype.Integer,
	"boolean": ptype.Boolean,
	"string":  ptype.String,
}

// Check runs the type/unit checker over every neuron in u, reporting into
// log. It decorates every ast.Expr node (via ast.SetType) and every
// Declaration/InputPort/Param/ShapeDef/ODEDef's Resolved field.
func Check(u *ast.CompilationUnit, log *diagnostics.Log) {
	for _, n := range u.Neurons {
		checkNeuron(n, log)
	}
}

func checkNeuron(n *ast.Neuron, log *diagnostics.Log) {
	checkDeclBlock(n.State, log)
	checkDeclBlock(n.InitialValues, log)
	checkDeclBlock(n.Parameters, log)
	checkDeclBlock(n.Internals, log)

	if n.Input != nil {
		for _, p := range n.Input.Ports {
			checkInputPort(p, log)
		}
	}
	if n.Equations != nil {
		checkEquations(n.Equations, log)
	}
	for _, f := range n.Functions {
		checkFunction(f, log)
	}
	if n.Update != nil {
		checkStatementBlock(n.Update, ptype.Dimensionless(ptype.Void), log)
	}
}

// resolveDeclaredType turns a declaration's raw UnitText into a physical
// type. defaultBase is what a bare (unitless) declaration gets; an
// explicit base keyword ("real"/"integer"/"boolean"/"string") overrides it
// even though it was parsed through the same unit-expression path as a
// real unit symbol like "mV".
func resolveDeclaredType(unitText string, hasUnit bool, defaultBase ptype.Base, log *diagnostics.Log, pos token.Position) ptype.Type {
	if !hasUnit {
		return ptype.Dimensionless(defaultBase)
	}
	if b, ok := baseKeywords[unitText]; ok {
		return ptype.Dimensionless(b)
	}
	v, err := units.ParseExpr(unitText)
	if err != nil {
		log.Error("UnknownUnit", rangeOf(pos), "%s", err)
		return ptype.ErrorType()
	}
	return ptype.WithUnit(defaultBase, v)
}

func rangeOf(pos token.Position) diagnostics.SourceRange {
	return diagnostics.SourceRange{Filename: pos.Filename, StartLine: pos.Line, StartCol: pos.Col, EndLine: pos.Line, EndCol: pos.Col}
}

func checkDeclBlock(blk *ast.DeclBlock, log *diagnostics.Log) {
	if blk == nil {
		return
	}
	for _, d := range blk.Decls {
		checkDecl(d, log)
	}
}

func checkDecl(d *ast.Declaration, log *diagnostics.Log) {
	d.Resolved = resolveDeclaredType(d.UnitText, d.HasUnit, d.Base, log, d.Pos)
	if d.Sym != nil {
		d.Sym.Type = d.Resolved
	}
	if d.Init == nil {
		return
	}
	initType := checkExpr(d.Init, log)
	if d.Resolved.IsError() || initType.IsError() {
		return
	}
	if !d.Resolved.Compatible(initType) {
		log.Error("UnitMismatch", rangeOf(d.Pos),
			"%q declared as %s but initialized with %s", d.Name, d.Resolved, initType)
	}
}

func checkInputPort(p *ast.InputPort, log *diagnostics.Log) {
	p.Resolved = resolveDeclaredType(p.UnitText, p.HasUnit, ptype.Real, log, p.Pos)
	if p.Sym != nil {
		p.Sym.Type = p.Resolved
	}
}

// checkEquations types shapes before ODE rows, since an ODE row's RHS may
// convolve() a shape declared earlier in the same block and needs its
// type already attached.
func checkEquations(eq *ast.EquationsBlock, log *diagnostics.Log) {
	for _, s := range eq.Shapes {
		s.Resolved = checkExpr(s.Expr, log)
		// An ode-shape's symbol keeps the kernel's own declared type (from
		// its state/initial_values entry); Resolved holds the RHS type. A
		// direct or delta shape IS its defining expression, so the symbol
		// takes that type.
		if s.Sym != nil && s.Kind != ast.OdeShape {
			s.Sym.Type = s.Resolved
		}
	}
	for _, o := range eq.Odes {
		checkODE(o, log)
	}
}

func checkODE(o *ast.ODEDef, log *diagnostics.Log) {
	rhsType := checkExpr(o.RHS, log)
	if o.Order == 0 {
		if o.HasUnit {
			declared := resolveDeclaredType(o.UnitText, true, ptype.Real, log, o.Pos)
			if !declared.IsError() && !rhsType.IsError() && !declared.Compatible(rhsType) {
				log.Error("UnitMismatch", rangeOf(o.Pos),
					"%q declared as %s but its defining expression has type %s", o.Variable, declared, rhsType)
			}
			o.Resolved = declared
		} else {
			o.Resolved = rhsType
		}
		if o.Sym != nil {
			o.Sym.Type = o.Resolved
		}
		return
	}
	// A true derivative's physical type is the state variable's own
	// declared type, already resolved while checking state/initial_values;
	// no dimensional check against the RHS is made here (a rigorous
	// derivative-vs-integral dimensional analysis is out of scope for the
	// front end, which only needs every node typed for the later analysis
	// phases to consume).
	if o.Sym != nil {
		o.Resolved = o.Sym.Type
	} else {
		o.Resolved = ptype.ErrorType()
	}
}

func checkFunction(f *ast.FunctionDef, log *diagnostics.Log) {
	for _, p := range f.Params {
		p.Resolved = resolveDeclaredType(p.UnitText, p.HasUnit, p.Base, log, f.Pos)
		if p.Sym != nil {
			p.Sym.Type = p.Resolved
		}
	}
	base := f.ReturnBase
	if !f.ReturnHasUnit {
		base = ptype.Void
	}
	returnType := resolveDeclaredType(f.ReturnUnitText, f.ReturnHasUnit, base, log, f.Pos)
	if f.Sym != nil {
		f.Sym.Type = returnType
	}
	if f.Body != nil {
		checkStatementBlock(f.Body, returnType, log)
	}
}

func checkStatementBlock(blk *ast.StatementBlock, returnType ptype.Type, log *diagnostics.Log) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stmts {
		checkStmt(s, returnType, log)
	}
}

func checkStmt(s ast.Stmt, returnType ptype.Type, log *diagnostics.Log) {
	switch st := s.(type) {
	case *ast.DeclStmt:
		checkDecl(st.Decl, log)
	case *ast.ExprStmt:
		checkExpr(st.X, log)
	case *ast.AssignStmt:
		checkAssign(st, log)
	case *ast.IfStmt:
		checkIf(st, returnType, log)
	case *ast.ForStmt:
		checkFor(st, returnType, log)
	case *ast.ReturnStmt:
		checkReturn(st, returnType, log)
	}
}

func checkAssign(st *ast.AssignStmt, log *diagnostics.Log) {
	targetType := ptype.ErrorType()
	if st.Target.Sym != nil {
		targetType = st.Target.Sym.Type
	}
	ast.SetType(st.Target, targetType)
	valType := checkExpr(st.Value, log)
	if targetType.IsError() || valType.IsError() {
		return
	}
	if !targetType.Compatible(valType) {
		log.Error("UnitMismatch", rangeOf(st.Position()),
			"cannot assign %s to %q (%s)", valType, st.Target.Name, targetType)
	}
}

func checkIf(st *ast.IfStmt, returnType ptype.Type, log *diagnostics.Log) {
	checkCond(st.If.Cond, log)
	checkStatementBlock(st.If.Body, returnType, log)
	for _, e := range st.Elif {
		checkCond(e.Cond, log)
		checkStatementBlock(e.Body, returnType, log)
	}
	if st.Else != nil {
		checkStatementBlock(st.Else, returnType, log)
	}
}

func checkCond(e ast.Expr, log *diagnostics.Log) {
	t := checkExpr(e, log)
	if !t.IsError() && t.Base != ptype.Boolean {
		log.Error("TypeMismatch", rangeOf(e.Position()), "condition must be boolean, got %s", t)
	}
}

func checkFor(st *ast.ForStmt, returnType ptype.Type, log *diagnostics.Log) {
	startType := checkExpr(st.Start, log)
	stopType := checkExpr(st.Stop, log)
	var stepType ptype.Type
	if st.Step != nil {
		stepType = checkExpr(st.Step, log)
	} else {
		stepType = ptype.Dimensionless(ptype.Integer)
	}
	if !startType.IsError() && !stopType.IsError() && !startType.Compatible(stopType) {
		log.Error("UnitMismatch", rangeOf(st.Position()),
			"for loop bounds must share a dimension, got %s and %s", startType, stopType)
	}
	if !startType.IsError() && !stepType.IsError() && !startType.Compatible(stepType) {
		log.Error("UnitMismatch", rangeOf(st.Position()),
			"for loop step must share the bounds' dimension, got %s", stepType)
	}
	if st.Sym != nil {
		loopType := ptype.Dimensionless(ptype.Integer)
		if !startType.IsError() {
			loopType = startType
		}
		st.Sym.Type = loopType
	}
	checkStatementBlock(st.Body, returnType, log)
}

func checkReturn(st *ast.ReturnStmt, returnType ptype.Type, log *diagnostics.Log) {
	if st.Value == nil {
		if !returnType.IsError() && returnType.Base != ptype.Void {
			log.Error("TypeMismatch", rangeOf(st.Position()),
				"missing return value, function returns %s", returnType)
		}
		return
	}
	valType := checkExpr(st.Value, log)
	if returnType.Base == ptype.Void {
		log.Error("TypeMismatch", rangeOf(st.Position()), "return with a value is not allowed here")
		return
	}
	if returnType.IsError() || valType.IsError() {
		return
	}
	if !returnType.Compatible(valType) {
		log.Error("UnitMismatch", rangeOf(st.Position()),
			"return type %s does not match returned %s", returnType, valType)
	}
}

// checkExpr types e bottom-up and decorates it via ast.SetType, returning
// the resolved type for the caller's own decision-making.
func checkExpr(e ast.Expr, log *diagnostics.Log) ptype.Type {
	if e == nil {
		return ptype.ErrorType()
	}
	var t ptype.Type
	switch x := e.(type) {
	case *ast.Literal:
		t = checkLiteral(x, log)
	case *ast.VariableRef:
		t = checkVariableRef(x)
	case *ast.Call:
		t = checkCall(x, log)
	case *ast.Unary:
		t = checkUnary(x, log)
	case *ast.Binary:
		t = checkBinary(x, log)
	case *ast.Conditional:
		t = checkConditional(x, log)
	case *ast.DiffQuotient:
		t = checkDiffQuotient(x)
	case *ast.Convolve:
		t = checkConvolve(x)
	default:
		t = ptype.ErrorType()
	}
	ast.SetType(e, t)
	return t
}

func checkLiteral(l *ast.Literal, log *diagnostics.Log) ptype.Type {
	switch l.Kind {
	case ast.StringLiteral:
		return ptype.Dimensionless(ptype.String)
	case ast.BoolLiteral:
		return ptype.Dimensionless(ptype.Boolean)
	}
	base := ptype.Real
	if l.IsInt {
		base = ptype.Integer
	}
	if l.UnitText == "" {
		return ptype.Dimensionless(base)
	}
	v, err := units.ParseExpr(l.UnitText)
	if err != nil {
		log.Error("UnknownUnit", rangeOf(l.Position()), "%s", err)
		return ptype.ErrorType()
	}
	if !v.IsDimensionless() {
		base = ptype.Real // integer promotes to real with any non-dimensionless unit
	}
	return ptype.WithUnit(base, v)
}

func checkVariableRef(v *ast.VariableRef) ptype.Type {
	if v.Sym == nil {
		return ptype.ErrorType() // already reported during symbol resolution
	}
	return v.Sym.Type
}

func checkDiffQuotient(d *ast.DiffQuotient) ptype.Type {
	if d.Sym == nil {
		return ptype.ErrorType()
	}
	return d.Sym.Type
}

// checkConvolve types a convolve(shape, port) as its shape's type:
// opaque but annotated, since the kernel/port unit product is not modeled
// any further at the front-end level.
func checkConvolve(c *ast.Convolve) ptype.Type {
	if c.ShapeSym == nil || c.PortSym == nil {
		return ptype.ErrorType()
	}
	return c.ShapeSym.Type
}

func checkUnary(u *ast.Unary, log *diagnostics.Log) ptype.Type {
	t := checkExpr(u.X, log)
	if t.IsError() {
		return ptype.ErrorType()
	}
	switch u.Op {
	case token.NOT:
		if t.Base != ptype.Boolean {
			log.Error("TypeMismatch", rangeOf(u.Position()), "'not' requires a boolean operand, got %s", t)
			return ptype.ErrorType()
		}
		return ptype.Dimensionless(ptype.Boolean)
	case token.MINUS:
		if !isNumeric(t.Base) {
			log.Error("TypeMismatch", rangeOf(u.Position()), "unary '-' requires a numeric operand, got %s", t)
			return ptype.ErrorType()
		}
		return t
	default:
		return ptype.ErrorType()
	}
}

func isNumeric(b ptype.Base) bool { return b == ptype.Real || b == ptype.Integer }

func checkBinary(b *ast.Binary, log *diagnostics.Log) ptype.Type {
	xt := checkExpr(b.X, log)
	yt := checkExpr(b.Y, log)
	if xt.IsError() || yt.IsError() {
		return ptype.ErrorType()
	}
	switch b.Op {
	case token.PLUS, token.MINUS, token.PERCENT:
		return checkAdditive(b, xt, yt, log)
	case token.STAR:
		if !isNumeric(xt.Base) || !isNumeric(yt.Base) {
			log.Error("TypeMismatch", rangeOf(b.Position()), "'*' requires numeric operands, got %s and %s", xt, yt)
			return ptype.ErrorType()
		}
		return ptype.WithUnit(ptype.Promote(xt, yt), xt.Unit.Mul(yt.Unit))
	case token.SLASH:
		if !isNumeric(xt.Base) || !isNumeric(yt.Base) {
			log.Error("TypeMismatch", rangeOf(b.Position()), "'/' requires numeric operands, got %s and %s", xt, yt)
			return ptype.ErrorType()
		}
		return ptype.WithUnit(ptype.Promote(xt, yt), xt.Unit.Div(yt.Unit))
	case token.POW:
		return checkPow(b, xt, yt, log)
	case token.LT, token.GT, token.LE, token.GE, token.EQ, token.NE:
		if !xt.Compatible(yt) {
			log.Error("UnitMismatch", rangeOf(b.Position()), "cannot compare %s and %s", xt, yt)
			return ptype.ErrorType()
		}
		return ptype.Dimensionless(ptype.Boolean)
	case token.AND, token.OR:
		if xt.Base != ptype.Boolean || yt.Base != ptype.Boolean {
			log.Error("TypeMismatch", rangeOf(b.Position()), "'%s' requires boolean operands, got %s and %s", b.Op, xt, yt)
			return ptype.ErrorType()
		}
		return ptype.Dimensionless(ptype.Boolean)
	default:
		return ptype.ErrorType()
	}
}

func checkAdditive(b *ast.Binary, xt, yt ptype.Type, log *diagnostics.Log) ptype.Type {
	if !isNumeric(xt.Base) || !isNumeric(yt.Base) {
		log.Error("TypeMismatch", rangeOf(b.Position()), "'%s' requires numeric operands, got %s and %s", b.Op, xt, yt)
		return ptype.ErrorType()
	}
	if !xt.Unit.SameDimension(yt.Unit) {
		log.Error("UnitMismatch", rangeOf(b.Position()), "cannot combine %s and %s: dimensions differ", xt, yt)
		return ptype.ErrorType()
	}
	if ratio := yt.Unit.ScaleRatio(xt.Unit); ratio != 1 {
		b.ConvFactor = ratio
		b.ConvOnLHS = false
	}
	return ptype.WithUnit(ptype.Promote(xt, yt), xt.Unit)
}

func checkPow(b *ast.Binary, xt, yt ptype.Type, log *diagnostics.Log) ptype.Type {
	if n, ok := intExponent(b.Y); ok {
		return ptype.WithUnit(xt.Base, xt.Unit.Pow(units.Int(n)))
	}
	if !xt.Unit.IsDimensionless() {
		log.Error("UnitMismatch", rangeOf(b.Position()),
			"a non-constant-integer exponent requires a dimensionless base, got %s", xt)
		return ptype.ErrorType()
	}
	return ptype.Dimensionless(ptype.Real)
}

// intExponent recognizes a constant integer exponent, including a negated
// literal such as -2 (which parses as Unary(MINUS, Literal)).
func intExponent(e ast.Expr) (int64, bool) {
	switch x := e.(type) {
	case *ast.Literal:
		if x.Kind == ast.NumberLiteral && x.IsInt {
			return int64(x.Value), true
		}
	case *ast.Unary:
		if x.Op == token.MINUS {
			if n, ok := intExponent(x.X); ok {
				return -n, true
			}
		}
	}
	return 0, false
}

func checkConditional(c *ast.Conditional, log *diagnostics.Log) ptype.Type {
	condType := checkExpr(c.Cond, log)
	thenType := checkExpr(c.Then, log)
	elseType := checkExpr(c.Else, log)
	if !condType.IsError() && condType.Base != ptype.Boolean {
		log.Error("TypeMismatch", rangeOf(c.Position()), "conditional test must be boolean, got %s", condType)
	}
	if thenType.IsError() || elseType.IsError() {
		return ptype.ErrorType()
	}
	if !thenType.Compatible(elseType) {
		log.Error("UnitMismatch", rangeOf(c.Position()),
			"conditional branches have incompatible types %s and %s", thenType, elseType)
		return ptype.ErrorType()
	}
	return ptype.WithUnit(ptype.Promote(thenType, elseType), thenType.Unit)
}

func checkCall(c *ast.Call, log *diagnostics.Log) ptype.Type {
	argTypes := make([]ptype.Type, len(c.Args))
	for i, a := range c.Args {
		argTypes[i] = checkExpr(a, log)
	}
	if c.Sym != nil {
		return checkUserCall(c, argTypes, log)
	}
	switch c.FuncName {
	case "exp", "ln", "log10", "sin", "cos", "tan":
		return checkUnaryMathFunc(c, argTypes, log)
	case "sqrt":
		return checkSqrt(c, argTypes, log)
	case "abs":
		return checkAbs(c, argTypes, log)
	case "min", "max":
		return checkMinMax(c, argTypes, log)
	case "random_normal", "random_uniform":
		return checkRandom(c, argTypes, log)
	case "steps":
		return checkSteps(c, argTypes, log)
	case "resolution":
		return resolutionType()
	case "emit_spike", "integrate_odes":
		return ptype.Dimensionless(ptype.Void)
	case "delta":
		return checkDelta(c, argTypes, log)
	default:
		// symbol resolution already reported the unknown call; don't
		// cascade a second error.
		return ptype.ErrorType()
	}
}

func resolutionType() ptype.Type {
	v, err := units.ParseExpr("ms")
	if err != nil {
		return ptype.ErrorType()
	}
	return ptype.WithUnit(ptype.Real, v)
}

func wrongArgCount(c *ast.Call, want int, got int, log *diagnostics.Log) {
	log.Error("WrongArgCount", rangeOf(c.Position()),
		"%s expects %d argument(s), got %d", c.FuncName, want, got)
}

func checkUnaryMathFunc(c *ast.Call, args []ptype.Type, log *diagnostics.Log) ptype.Type {
	if len(args) != 1 {
		wrongArgCount(c, 1, len(args), log)
		return ptype.ErrorType()
	}
	t := args[0]
	if !t.IsError() && !t.Unit.IsDimensionless() {
		log.Error("UnitMismatch", rangeOf(c.Position()), "%s expects a dimensionless argument, got %s", c.FuncName, t)
	}
	return ptype.Dimensionless(ptype.Real)
}

func checkSqrt(c *ast.Call, args []ptype.Type, log *diagnostics.Log) ptype.Type {
	if len(args) != 1 {
		wrongArgCount(c, 1, len(args), log)
		return ptype.ErrorType()
	}
	if args[0].IsError() {
		return ptype.ErrorType()
	}
	return ptype.WithUnit(ptype.Real, args[0].Unit.Pow(units.Fraction{Num: 1, Den: 2}))
}

func checkAbs(c *ast.Call, args []ptype.Type, log *diagnostics.Log) ptype.Type {
	if len(args) != 1 {
		wrongArgCount(c, 1, len(args), log)
		return ptype.ErrorType()
	}
	t := args[0]
	if t.IsError() {
		return ptype.ErrorType()
	}
	if !isNumeric(t.Base) {
		log.Error("TypeMismatch", rangeOf(c.Position()), "abs expects a numeric argument, got %s", t)
		return ptype.ErrorType()
	}
	return t
}

func checkMinMax(c *ast.Call, args []ptype.Type, log *diagnostics.Log) ptype.Type {
	if len(args) != 2 {
		wrongArgCount(c, 2, len(args), log)
		return ptype.ErrorType()
	}
	a, b := args[0], args[1]
	if a.IsError() || b.IsError() {
		return ptype.ErrorType()
	}
	if !a.Compatible(b) {
		log.Error("UnitMismatch", rangeOf(c.Position()), "%s expects compatible arguments, got %s and %s", c.FuncName, a, b)
		return ptype.ErrorType()
	}
	return ptype.WithUnit(ptype.Promote(a, b), a.Unit)
}

func checkRandom(c *ast.Call, args []ptype.Type, log *diagnostics.Log) ptype.Type {
	if len(args) != 2 {
		wrongArgCount(c, 2, len(args), log)
		return ptype.ErrorType()
	}
	a, b := args[0], args[1]
	if a.IsError() || b.IsError() {
		return ptype.ErrorType()
	}
	if !a.Compatible(b) {
		log.Error("UnitMismatch", rangeOf(c.Position()), "%s expects compatible arguments, got %s and %s", c.FuncName, a, b)
		return ptype.ErrorType()
	}
	return ptype.WithUnit(ptype.Real, a.Unit)
}

func checkSteps(c *ast.Call, args []ptype.Type, log *diagnostics.Log) ptype.Type {
	if len(args) != 1 {
		wrongArgCount(c, 1, len(args), log)
		return ptype.ErrorType()
	}
	return ptype.Dimensionless(ptype.Integer)
}

// checkDelta types delta(t) and delta(t, tau): a unit pulse whose value has
// the reciprocal dimension of its time argument.
func checkDelta(c *ast.Call, args []ptype.Type, log *diagnostics.Log) ptype.Type {
	if len(args) != 1 && len(args) != 2 {
		wrongArgCount(c, 1, len(args), log)
		return ptype.ErrorType()
	}
	t := args[0]
	if t.IsError() {
		return ptype.ErrorType()
	}
	if len(args) == 2 {
		tau := args[1]
		if tau.IsError() {
			return ptype.ErrorType()
		}
		if !t.Compatible(tau) {
			log.Error("UnitMismatch", rangeOf(c.Position()),
				"delta(t, tau) requires t and tau to share a dimension, got %s and %s", t, tau)
			return ptype.ErrorType()
		}
		t = tau
	}
	return ptype.WithUnit(ptype.Real, units.Dimensionless().Div(t.Unit))
}

func checkUserCall(c *ast.Call, argTypes []ptype.Type, log *diagnostics.Log) ptype.Type {
	fn, ok := c.Sym.Node.(*ast.FunctionDef)
	if !ok {
		return c.Sym.Type
	}
	if len(argTypes) != len(fn.Params) {
		wrongArgCount(c, len(fn.Params), len(argTypes), log)
		return c.Sym.Type
	}
	for i, p := range fn.Params {
		want, got := p.Resolved, argTypes[i]
		if want.IsError() || got.IsError() {
			continue
		}
		if !want.Compatible(got) {
			log.Error("UnitMismatch", rangeOf(c.Position()),
				"argument %d to %s: expected %s, got %s", i+1, fn.Name, want, got)
		}
	}
	return c.Sym.Type
}
