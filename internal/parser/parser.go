// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parser turns a NESTML token stream into a compilation-unit AST
//. Recovery is best-effort: on a syntax error the parser
// skips to the next "end" or the next "neuron"/"synapse" keyword so a
// single malformed block never prevents the rest of the file from being
// checked.
package parser

import (
	"strconv"
	"strings"

	"github.com/emer/nestml/internal/ast"
	"github.com/emer/nestml/internal/diagnostics"
	"github.com/emer/nestml/internal/lexer"
	"github.com/emer/nestml/internal/ptype"
	"github.com/emer/nestml/internal/token"
)

// Parse lexes and parses src into a CompilationUnit. packageName and
// artifactName come from the caller, derived from the source path; on a
// syntax error the returned unit still carries whatever neurons were
// recovered, and diagnostics are appended to log.
func Parse(filename string, src []byte, packageName, artifactName string, log *diagnostics.Log) *ast.CompilationUnit {
	lx := lexer.New(filename, src)
	toks := lx.Tokenize()
	for _, e := range lx.Errors {
		log.Error("LexicalError", toRange(filename, e.Pos), "%s", e.Msg)
	}

	p := &parser{toks: toks, filename: filename, log: log}
	u := &ast.CompilationUnit{Filename: filename, PackageName: packageName, ArtifactName: artifactName}
	p.skipNewlines()
	for !p.atEOF() {
		if p.cur().Kind == token.NEURON || p.cur().Kind == token.SYNAPSE {
			if n := p.parseNeuron(); n != nil {
				u.Neurons = append(u.Neurons, n)
			}
		} else {
			p.errorf("expected 'neuron' or 'synapse', got %s", p.cur().Kind)
			p.recoverToNeuron()
		}
		p.skipNewlines()
	}
	return u
}

// ParseExprText parses a single standalone expression, such as a solver-
// generated discrete-step update rule, rather than a whole
// compilation unit. Diagnostics are appended to log the same way Parse
// does; a caller that wants a "malformed reply" diagnostic instead of this
// one should check log for new ERROR-or-worse entries itself.
func ParseExprText(filename, text string, log *diagnostics.Log) ast.Expr {
	lx := lexer.New(filename, []byte(text))
	toks := lx.Tokenize()
	for _, e := range lx.Errors {
		log.Error("LexicalError", toRange(filename, e.Pos), "%s", e.Msg)
	}
	p := &parser{toks: toks, filename: filename, log: log}
	p.skipNewlines()
	return p.parseExpr()
}

type parser struct {
	toks     []token.Token
	pos      int
	filename string
	log      *diagnostics.Log
}

func toRange(filename string, pos token.Position) diagnostics.SourceRange {
	return diagnostics.SourceRange{Filename: filename, StartLine: pos.Line, StartCol: pos.Col, EndLine: pos.Line, EndCol: pos.Col}
}

func (p *parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *parser) curRange() diagnostics.SourceRange { return toRange(p.filename, p.cur().Pos) }

func (p *parser) atEOF() bool { return p.cur().Kind == token.EOF }

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errorf(format string, args ...any) {
	p.log.Error("SyntaxError", p.curRange(), format, args...)
}

func (p *parser) skipNewlines() {
	for p.cur().Kind == token.NEWLINE {
		p.advance()
	}
}

// expect consumes a token of the given kind, reporting a diagnostic and
// NOT advancing if it doesn't match (so the caller's recovery logic still
// sees the offending token).
func (p *parser) expect(k token.Kind) (token.Token, bool) {
	if p.cur().Kind == k {
		return p.advance(), true
	}
	p.errorf("expected %s, got %s %q", k, p.cur().Kind, p.cur().Literal)
	return token.Token{}, false
}

// recoverToNeuron skips tokens until the next 'neuron'/'synapse' keyword
// or EOF.
func (p *parser) recoverToNeuron() {
	for !p.atEOF() && p.cur().Kind != token.NEURON && p.cur().Kind != token.SYNAPSE {
		p.advance()
	}
}

// recoverToEnd skips tokens until the next 'end' keyword (consumed) or
// EOF, for recovering within a malformed block.
func (p *parser) recoverToEnd() {
	for !p.atEOF() && p.cur().Kind != token.END {
		if p.cur().Kind == token.NEURON || p.cur().Kind == token.SYNAPSE {
			return
		}
		p.advance()
	}
	if p.cur().Kind == token.END {
		p.advance()
	}
}

func (p *parser) parseNeuron() *ast.Neuron {
	isSynapse := p.cur().Kind == token.SYNAPSE
	p.advance() // neuron|synapse
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.recoverToNeuron()
		return nil
	}
	if _, ok := p.expect(token.COLON); !ok {
		p.recoverToNeuron()
		return nil
	}
	p.skipNewlines()

	n := &ast.Neuron{Name: nameTok.Literal, Pos: nameTok.Pos, IsSynapse: isSynapse}

	seen := map[ast.BlockKind]bool{}
	for !p.atEOF() && p.cur().Kind != token.END {
		switch p.cur().Kind {
		case token.STATE:
			n.State = p.parseDeclBlock(ast.BlockState, seen)
		case token.INITIAL_VALUES:
			n.InitialValues = p.parseDeclBlock(ast.BlockInitialValues, seen)
		case token.PARAMETERS:
			n.Parameters = p.parseDeclBlock(ast.BlockParameters, seen)
		case token.INTERNALS:
			n.Internals = p.parseDeclBlock(ast.BlockInternals, seen)
		case token.EQUATIONS:
			n.Equations = p.parseEquations(seen)
		case token.INPUT:
			n.Input = p.parseInput(seen)
		case token.OUTPUT:
			n.Output = p.parseOutput(seen)
		case token.UPDATE:
			n.Update = p.parseUpdate(seen)
		case token.FUNCTION:
			n.Functions = append(n.Functions, p.parseFunction())
		case token.NEURON, token.SYNAPSE:
			p.errorf("missing 'end' for neuron %s", n.Name)
			return n
		default:
			p.errorf("unexpected token %s %q inside neuron %s", p.cur().Kind, p.cur().Literal, n.Name)
			p.advance()
		}
		p.skipNewlines()
	}
	if _, ok := p.expect(token.END); !ok {
		p.recoverToNeuron()
	}
	return n
}

func (p *parser) markSeen(seen map[ast.BlockKind]bool, k ast.BlockKind, pos token.Position) {
	if seen[k] {
		p.log.Error("CoCoEachBlockUniqueAndCorrectNumberOfTimes", toRange(p.filename, pos),
			"block %q declared more than once", k)
	}
	seen[k] = true
}

func (p *parser) parseDeclBlock(kind ast.BlockKind, seen map[ast.BlockKind]bool) *ast.DeclBlock {
	pos := p.cur().Pos
	p.markSeen(seen, kind, pos)
	p.advance() // keyword
	if _, ok := p.expect(token.COLON); !ok {
		p.recoverToEnd()
		return &ast.DeclBlock{Kind: kind, Pos: pos}
	}
	p.skipNewlines()
	blk := &ast.DeclBlock{Kind: kind, Pos: pos}
	for !p.atEOF() && p.cur().Kind != token.END {
		d := p.parseDeclaration(kind)
		if d != nil {
			blk.Decls = append(blk.Decls, d)
		}
		p.skipNewlines()
	}
	p.expect(token.END)
	return blk
}

func (p *parser) parseDeclaration(block ast.BlockKind) *ast.Declaration {
	pos := p.cur().Pos
	flags := ast.DeclFlags{}
	for {
		switch p.cur().Kind {
		case token.RECORDABLE:
			flags.Recordable = true
			p.advance()
			continue
		case token.FUNCTION:
			flags.Function = true
			p.advance()
			continue
		}
		break
	}
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.recoverStatement()
		return nil
	}
	d := &ast.Declaration{Name: nameTok.Literal, Pos: pos, Block: block, Flags: flags, Base: ptype.Real}
	if p.looksLikeUnitStart() {
		d.UnitText = p.parseUnitExprText()
		d.HasUnit = true
	}
	if p.cur().Kind == token.ASSIGN {
		p.advance()
		d.Init = p.parseExpr()
	}
	if p.cur().Kind != token.NEWLINE && p.cur().Kind != token.END {
		p.errorf("expected end of declaration, got %s", p.cur().Kind)
	}
	return d
}

// looksLikeUnitStart reports whether the current token can begin a unit
// expression: an identifier that isn't immediately an assignment/newline,
// or the literal "1" inside a quotient like 1/ms.
func (p *parser) looksLikeUnitStart() bool {
	return p.cur().Kind == token.IDENT || (p.cur().Kind == token.INT && p.cur().Literal == "1" && p.peekIs(1, token.SLASH))
}

func (p *parser) peekIs(n int, k token.Kind) bool {
	if p.pos+n >= len(p.toks) {
		return false
	}
	return p.toks[p.pos+n].Kind == k
}

// parseUnitExprText consumes a unit-expression token run (ident/int ('*'|'/')
// ident/int ('**' int)? ...) and reconstructs its source text for the unit
// algebra to evaluate later.
func (p *parser) parseUnitExprText() string {
	var b strings.Builder
	writeTerm := func() bool {
		switch p.cur().Kind {
		case token.IDENT, token.INT:
			b.WriteString(p.advance().Literal)
			if p.cur().Kind == token.POW {
				b.WriteString(p.advance().Literal)
				if p.cur().Kind == token.INT {
					b.WriteString(p.advance().Literal)
				}
			}
			return true
		default:
			return false
		}
	}
	if !writeTerm() {
		return ""
	}
	for p.cur().Kind == token.STAR || p.cur().Kind == token.SLASH {
		b.WriteString(p.advance().Literal)
		writeTerm()
	}
	return b.String()
}

func (p *parser) recoverStatement() {
	for !p.atEOF() && p.cur().Kind != token.NEWLINE && p.cur().Kind != token.END {
		p.advance()
	}
}

// --- equations ---

func (p *parser) parseEquations(seen map[ast.BlockKind]bool) *ast.EquationsBlock {
	pos := p.cur().Pos
	p.markSeen(seen, ast.BlockEquations, pos)
	p.advance()
	if _, ok := p.expect(token.COLON); !ok {
		p.recoverToEnd()
		return &ast.EquationsBlock{Pos: pos}
	}
	p.skipNewlines()
	eq := &ast.EquationsBlock{Pos: pos}
	for !p.atEOF() && p.cur().Kind != token.END {
		if p.cur().Kind == token.SHAPE {
			eq.Shapes = append(eq.Shapes, p.parseShape())
		} else {
			eq.Odes = append(eq.Odes, p.parseODE())
		}
		p.skipNewlines()
	}
	p.expect(token.END)
	p.collectConvolves(eq)
	return eq
}

func (p *parser) parseShape() *ast.ShapeDef {
	pos := p.cur().Pos
	p.advance() // 'shape'
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.recoverStatement()
		return &ast.ShapeDef{Pos: pos}
	}
	order := p.consumePrimes()
	if _, ok := p.expect(token.ASSIGN); !ok {
		p.recoverStatement()
		return &ast.ShapeDef{Name: nameTok.Literal, Pos: pos, Order: order}
	}
	expr := p.parseExpr()
	kind := ast.DirectShape
	if order > 0 {
		kind = ast.OdeShape
	} else if isDeltaCall(expr) {
		kind = ast.DeltaShape
	}
	return &ast.ShapeDef{Name: nameTok.Literal, Pos: pos, Kind: kind, Order: order, Expr: expr}
}

func isDeltaCall(e ast.Expr) bool {
	c, ok := e.(*ast.Call)
	return ok && c.FuncName == "delta"
}

func (p *parser) parseODE() *ast.ODEDef {
	pos := p.cur().Pos
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.recoverStatement()
		return &ast.ODEDef{Pos: pos}
	}
	def := &ast.ODEDef{Variable: nameTok.Literal, Pos: pos}
	// order 0 is a plain algebraic alias row (e.g. "I_syn pA = convolve(...)"),
	// recomputed from its RHS rather than integrated, and may carry its own
	// unit; order 1/2 is a true differential equation over a state variable
	// whose unit is already fixed by its declaration.
	if p.looksLikeUnitStart() {
		def.UnitText = p.parseUnitExprText()
		def.HasUnit = true
	}
	def.Order = p.consumePrimes()
	if _, ok := p.expect(token.ASSIGN); !ok {
		p.recoverStatement()
		return def
	}
	def.RHS = p.parseExpr()
	return def
}

func (p *parser) consumePrimes() int {
	n := 0
	for p.cur().Kind == token.PRIME {
		n++
		p.advance()
	}
	return n
}

func (p *parser) collectConvolves(eq *ast.EquationsBlock) {
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch x := e.(type) {
		case nil:
			return
		case *ast.Convolve:
			eq.Convolves = append(eq.Convolves, ast.ConvolveRef{Node: x, ShapeName: x.ShapeName, PortName: x.PortName})
		case *ast.Binary:
			walk(x.X)
			walk(x.Y)
		case *ast.Unary:
			walk(x.X)
		case *ast.Call:
			for _, a := range x.Args {
				walk(a)
			}
		case *ast.Conditional:
			walk(x.Cond)
			walk(x.Then)
			walk(x.Else)
		}
	}
	for _, s := range eq.Shapes {
		walk(s.Expr)
	}
	for _, o := range eq.Odes {
		walk(o.RHS)
	}
}

// --- input / output ---

func (p *parser) parseInput(seen map[ast.BlockKind]bool) *ast.InputBlock {
	pos := p.cur().Pos
	p.markSeen(seen, ast.BlockInput, pos)
	p.advance()
	if _, ok := p.expect(token.COLON); !ok {
		p.recoverToEnd()
		return &ast.InputBlock{Pos: pos}
	}
	p.skipNewlines()
	in := &ast.InputBlock{Pos: pos}
	for !p.atEOF() && p.cur().Kind != token.END {
		in.Ports = append(in.Ports, p.parsePort())
		p.skipNewlines()
	}
	p.expect(token.END)
	return in
}

func (p *parser) parsePort() *ast.InputPort {
	pos := p.cur().Pos
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.recoverStatement()
		return &ast.InputPort{Pos: pos}
	}
	port := &ast.InputPort{Name: nameTok.Literal, Pos: pos}
	if p.looksLikeUnitStart() {
		port.UnitText = p.parseUnitExprText()
		port.HasUnit = true
	}
	if _, ok := p.expect(token.ARROW); !ok {
		p.recoverStatement()
		return port
	}
	switch p.cur().Kind {
	case token.INHIBITORY:
		port.Sign = ast.Inhibitory
		p.advance()
	case token.EXCITATORY:
		port.Sign = ast.Excitatory
		p.advance()
	}
	switch p.cur().Kind {
	case token.SPIKE:
		port.Kind = ast.SpikePort
		p.advance()
	case token.CURRENT:
		port.Kind = ast.CurrentPort
		p.advance()
	default:
		p.errorf("expected 'spike' or 'current' in input port %s, got %s", port.Name, p.cur().Kind)
	}
	return port
}

func (p *parser) parseOutput(seen map[ast.BlockKind]bool) *ast.OutputBlock {
	pos := p.cur().Pos
	p.markSeen(seen, ast.BlockOutput, pos)
	p.advance()
	if _, ok := p.expect(token.COLON); !ok {
		p.recoverStatement()
		return &ast.OutputBlock{Pos: pos}
	}
	out := &ast.OutputBlock{Pos: pos, Kind: ast.SpikePort}
	if p.cur().Kind == token.SPIKE {
		p.advance()
	} else if p.cur().Kind == token.CURRENT {
		out.Kind = ast.CurrentPort
		p.advance()
	} else {
		p.errorf("expected output port kind, got %s", p.cur().Kind)
	}
	return out
}

// --- functions & update ---

func (p *parser) parseFunction() *ast.FunctionDef {
	pos := p.cur().Pos
	p.advance() // 'function'
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.recoverToEnd()
		return &ast.FunctionDef{Pos: pos}
	}
	f := &ast.FunctionDef{Name: nameTok.Literal, Pos: pos}
	if _, ok := p.expect(token.LPAREN); ok {
		for p.cur().Kind != token.RPAREN && !p.atEOF() {
			pn, ok := p.expect(token.IDENT)
			if !ok {
				break
			}
			param := &ast.Param{Name: pn.Literal}
			if p.looksLikeUnitStart() {
				param.UnitText = p.parseUnitExprText()
				param.HasUnit = true
			}
			f.Params = append(f.Params, param)
			if p.cur().Kind == token.COMMA {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RPAREN)
	}
	if p.looksLikeUnitStart() {
		f.ReturnUnitText = p.parseUnitExprText()
		f.ReturnHasUnit = true
	}
	if _, ok := p.expect(token.COLON); !ok {
		p.recoverToEnd()
		return f
	}
	p.skipNewlines()
	f.Body = p.parseStatementBlock()
	p.expect(token.END)
	return f
}

func (p *parser) parseUpdate(seen map[ast.BlockKind]bool) *ast.StatementBlock {
	pos := p.cur().Pos
	p.markSeen(seen, ast.BlockUpdate, pos)
	p.advance()
	if _, ok := p.expect(token.COLON); !ok {
		p.recoverToEnd()
		return &ast.StatementBlock{Pos: pos}
	}
	p.skipNewlines()
	blk := p.parseStatementBlock()
	blk.Pos = pos
	p.expect(token.END)
	return blk
}

func (p *parser) parseStatementBlock() *ast.StatementBlock {
	blk := &ast.StatementBlock{Pos: p.cur().Pos}
	for !p.atEOF() && p.cur().Kind != token.END && p.cur().Kind != token.ELIF && p.cur().Kind != token.ELSE {
		s := p.parseStmt()
		if s != nil {
			blk.Stmts = append(blk.Stmts, s)
		}
		p.skipNewlines()
	}
	return blk
}

func (p *parser) parseStmt() ast.Stmt {
	pos := p.cur().Pos
	switch p.cur().Kind {
	case token.IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		p.advance()
		var v ast.Expr
		if p.cur().Kind != token.NEWLINE && p.cur().Kind != token.END {
			v = p.parseExpr()
		}
		return ast.NewReturnStmt(pos, v)
	case token.IDENT:
		return p.parseIdentStmt(pos)
	default:
		p.errorf("unexpected token %s %q in statement", p.cur().Kind, p.cur().Literal)
		p.recoverStatement()
		return nil
	}
}

func (p *parser) parseIdentStmt(pos token.Position) ast.Stmt {
	save := p.pos
	nameTok := p.advance()

	// local declaration: IDENT unit-expr (= expr)?  where a unit-expr
	// token run follows directly (never for bare assignment, which goes
	// straight to an operator).
	if p.looksLikeUnitStart() {
		unitText := p.parseUnitExprText()
		d := &ast.Declaration{Name: nameTok.Literal, Pos: pos, Block: ast.BlockLocal, UnitText: unitText, HasUnit: true, Base: ptype.Real}
		if p.cur().Kind == token.ASSIGN {
			p.advance()
			d.Init = p.parseExpr()
		}
		return ast.NewDeclStmt(pos, d)
	}

	switch p.cur().Kind {
	case token.ASSIGN, token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ:
		op := p.advance().Kind
		val := p.parseExpr()
		target := ast.NewVariableRef(pos, nameTok.Literal)
		return ast.NewAssignStmt(pos, target, op, val)
	default:
		// expression statement: rewind and parse a full expression
		// (covers bare calls like integrate_odes(), emit_spike()).
		p.pos = save
		e := p.parseExpr()
		return ast.NewExprStmt(pos, e)
	}
}

func (p *parser) parseIf() ast.Stmt {
	pos := p.cur().Pos
	p.advance() // if
	cond := p.parseExpr()
	p.expect(token.COLON)
	p.skipNewlines()
	body := p.parseStatementBlock()
	st := ast.NewIfStmt(pos, ast.IfClause{Cond: cond, Body: body})
	for p.cur().Kind == token.ELIF {
		p.advance()
		c := p.parseExpr()
		p.expect(token.COLON)
		p.skipNewlines()
		b := p.parseStatementBlock()
		st.Elif = append(st.Elif, ast.IfClause{Cond: c, Body: b})
	}
	if p.cur().Kind == token.ELSE {
		p.advance()
		p.expect(token.COLON)
		p.skipNewlines()
		st.Else = p.parseStatementBlock()
	}
	p.expect(token.END)
	return st
}

func (p *parser) parseFor() ast.Stmt {
	pos := p.cur().Pos
	p.advance() // for
	nameTok, _ := p.expect(token.IDENT)
	// `for i in start...stop [step step]:`
	p.expectIdentLiteral("in")
	start := p.parseExpr()
	p.expectDots()
	stop := p.parseExpr()
	var step ast.Expr
	if p.cur().Kind == token.IDENT && p.cur().Literal == "step" {
		p.advance()
		step = p.parseExpr()
	}
	p.expect(token.COLON)
	p.skipNewlines()
	body := p.parseStatementBlock()
	p.expect(token.END)
	return ast.NewForStmt(pos, nameTok.Literal, start, stop, step, body)
}

// expectIdentLiteral consumes an IDENT token whose literal text matches
// lit (used for the contextual keyword "in" in for-loops, which is not a
// reserved word elsewhere in the grammar).
func (p *parser) expectIdentLiteral(lit string) {
	if p.cur().Kind == token.IDENT && p.cur().Literal == lit {
		p.advance()
		return
	}
	p.errorf("expected %q, got %s %q", lit, p.cur().Kind, p.cur().Literal)
}

// expectDots consumes the "..." range separator in a for-loop header,
// tokenized as three consecutive DOT tokens.
func (p *parser) expectDots() {
	for i := 0; i < 3; i++ {
		if p.cur().Kind == token.DOT {
			p.advance()
		}
	}
}

// --- expressions ---

// parseExpr parses a full expression, with the conditional form
// `test ? ifTrue : ifNot` binding loosest of all and associating to the
// right.
func (p *parser) parseExpr() ast.Expr {
	x := p.parseOr()
	if p.cur().Kind != token.QUESTION {
		return x
	}
	pos := p.cur().Pos
	p.advance()
	then := p.parseExpr()
	p.expect(token.COLON)
	els := p.parseExpr()
	return ast.NewConditional(pos, x, then, els)
}

func (p *parser) parseOr() ast.Expr {
	x := p.parseAnd()
	for p.cur().Kind == token.OR {
		pos := p.cur().Pos
		p.advance()
		y := p.parseAnd()
		x = ast.NewBinary(pos, token.OR, x, y)
	}
	return x
}

func (p *parser) parseAnd() ast.Expr {
	x := p.parseNot()
	for p.cur().Kind == token.AND {
		pos := p.cur().Pos
		p.advance()
		y := p.parseNot()
		x = ast.NewBinary(pos, token.AND, x, y)
	}
	return x
}

func (p *parser) parseNot() ast.Expr {
	if p.cur().Kind == token.NOT {
		pos := p.cur().Pos
		p.advance()
		x := p.parseNot()
		return ast.NewUnary(pos, token.NOT, x)
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() ast.Expr {
	x := p.parseAdditive()
	switch p.cur().Kind {
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE:
		op := p.cur().Kind
		pos := p.cur().Pos
		p.advance()
		y := p.parseAdditive()
		return ast.NewBinary(pos, op, x, y)
	}
	return x
}

func (p *parser) parseAdditive() ast.Expr {
	x := p.parseMultiplicative()
	for p.cur().Kind == token.PLUS || p.cur().Kind == token.MINUS {
		op := p.cur().Kind
		pos := p.cur().Pos
		p.advance()
		y := p.parseMultiplicative()
		x = ast.NewBinary(pos, op, x, y)
	}
	return x
}

func (p *parser) parseMultiplicative() ast.Expr {
	x := p.parsePower()
	for p.cur().Kind == token.STAR || p.cur().Kind == token.SLASH || p.cur().Kind == token.PERCENT {
		op := p.cur().Kind
		pos := p.cur().Pos
		p.advance()
		y := p.parsePower()
		x = ast.NewBinary(pos, op, x, y)
	}
	return x
}

func (p *parser) parsePower() ast.Expr {
	x := p.parseUnary()
	if p.cur().Kind == token.POW {
		pos := p.cur().Pos
		p.advance()
		y := p.parsePower() // right-associative
		return ast.NewBinary(pos, token.POW, x, y)
	}
	return x
}

func (p *parser) parseUnary() ast.Expr {
	if p.cur().Kind == token.MINUS {
		pos := p.cur().Pos
		p.advance()
		x := p.parseUnary()
		return ast.NewUnary(pos, token.MINUS, x)
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() ast.Expr {
	t := p.cur()
	switch t.Kind {
	case token.INT, token.FLOAT:
		p.advance()
		lit := ast.NewLiteral(t.Pos, ast.NumberLiteral)
		lit.Text = t.Literal
		lit.IsInt = t.Kind == token.INT
		if t.Kind == token.INT {
			n, _ := strconv.ParseInt(t.Literal, 10, 64)
			lit.Value = float64(n)
		} else {
			f, _ := strconv.ParseFloat(t.Literal, 64)
			lit.Value = f
		}
		// "step" after a for-loop bound opens the step clause, not a unit.
		if p.cur().Kind == token.IDENT && p.cur().Literal != "step" {
			lit.UnitText = p.parseUnitExprText()
		}
		return lit
	case token.STRING:
		p.advance()
		lit := ast.NewLiteral(t.Pos, ast.StringLiteral)
		lit.StrVal = t.Literal
		return lit
	case token.TRUE, token.FALSE:
		p.advance()
		lit := ast.NewLiteral(t.Pos, ast.BoolLiteral)
		lit.BoolVal = t.Kind == token.TRUE
		return lit
	case token.LPAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(token.RPAREN)
		return e
	case token.IDENT:
		return p.parseIdentPrimary()
	default:
		p.errorf("unexpected token %s %q in expression", t.Kind, t.Literal)
		p.advance()
		return ast.NewLiteral(t.Pos, ast.NumberLiteral)
	}
}

func (p *parser) parseIdentPrimary() ast.Expr {
	t := p.advance()
	if p.cur().Kind == token.LPAREN {
		return p.parseCallOrConvolve(t)
	}
	if p.cur().Kind == token.PRIME {
		order := p.consumePrimes()
		return ast.NewDiffQuotient(t.Pos, t.Literal, order)
	}
	return ast.NewVariableRef(t.Pos, t.Literal)
}

func (p *parser) parseCallOrConvolve(nameTok token.Token) ast.Expr {
	p.advance() // (
	if nameTok.Literal == "convolve" {
		shapeTok, _ := p.expect(token.IDENT)
		p.expect(token.COMMA)
		portTok, _ := p.expect(token.IDENT)
		p.expect(token.RPAREN)
		return ast.NewConvolve(nameTok.Pos, shapeTok.Literal, portTok.Literal)
	}
	var args []ast.Expr
	for p.cur().Kind != token.RPAREN && !p.atEOF() {
		args = append(args, p.parseExpr())
		if p.cur().Kind == token.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return ast.NewCall(nameTok.Pos, nameTok.Literal, args)
}
