// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

import "github.com/emer/nestml/internal/token"

// Stmt is any statement appearing in an `update` or `function` body.
type Stmt interface {
	Position() token.Position
	stmtNode()
}

type stmtBase struct {
	Pos token.Position
}

func (s *stmtBase) Position() token.Position { return s.Pos }
func (s *stmtBase) stmtNode()                {}

// StatementBlock is a list of statements, used for `update`, function
// bodies, and the arms of if/elif/else/for.
type StatementBlock struct {
	Pos   token.Position
	Stmts []Stmt
	Scope *Scope
}

// DeclStmt declares a local variable inside a statement block.
type DeclStmt struct {
	stmtBase
	Decl *Declaration
}

// ExprStmt is an expression evaluated for effect, typically a call such as
// integrate_odes() or emit_spike().
type ExprStmt struct {
	stmtBase
	X Expr
}

// AssignStmt assigns (or compound-assigns) to an already-declared
// variable.
type AssignStmt struct {
	stmtBase
	Target *VariableRef
	Op     token.Kind // ASSIGN, PLUS_EQ, MINUS_EQ, STAR_EQ, SLASH_EQ
	Value  Expr
}

// IfClause is one `if`/`elif` condition-and-body pair.
type IfClause struct {
	Cond Expr
	Body *StatementBlock
}

// IfStmt is `if ... (elif ...)* (else ...)? end`.
type IfStmt struct {
	stmtBase
	If   IfClause
	Elif []IfClause
	Else *StatementBlock // nil if no else
}

// ForStmt is a bounded numeric loop.
type ForStmt struct {
	stmtBase
	Var               string
	Start, Stop, Step Expr
	Body              *StatementBlock
	Sym               *Symbol
}

// ReturnStmt returns from a `function` body.
type ReturnStmt struct {
	stmtBase
	Value Expr // nil for bare `return`
}
