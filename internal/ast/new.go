// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

import "github.com/emer/nestml/internal/token"

// This file collects constructors for node types whose embedded base
// structs are unexported. The parser (and any other out-of-package
// builder) uses these instead of composite literals naming the embedded
// field directly.

func NewLiteral(pos token.Position, kind LiteralKind) *Literal {
	return &Literal{exprBase: exprBase{Pos: pos}, Kind: kind}
}

func NewVariableRef(pos token.Position, name string) *VariableRef {
	return &VariableRef{exprBase: exprBase{Pos: pos}, Name: name}
}

func NewCall(pos token.Position, funcName string, args []Expr) *Call {
	return &Call{exprBase: exprBase{Pos: pos}, FuncName: funcName, Args: args}
}

func NewUnary(pos token.Position, op token.Kind, x Expr) *Unary {
	return &Unary{exprBase: exprBase{Pos: pos}, Op: op, X: x}
}

func NewBinary(pos token.Position, op token.Kind, x, y Expr) *Binary {
	return &Binary{exprBase: exprBase{Pos: pos}, Op: op, X: x, Y: y}
}

func NewConditional(pos token.Position, cond, then, els Expr) *Conditional {
	return &Conditional{exprBase: exprBase{Pos: pos}, Cond: cond, Then: then, Else: els}
}

func NewDiffQuotient(pos token.Position, name string, order int) *DiffQuotient {
	return &DiffQuotient{exprBase: exprBase{Pos: pos}, Name: name, Order: order}
}

func NewConvolve(pos token.Position, shapeName, portName string) *Convolve {
	return &Convolve{exprBase: exprBase{Pos: pos}, ShapeName: shapeName, PortName: portName}
}

func NewDeclStmt(pos token.Position, decl *Declaration) *DeclStmt {
	return &DeclStmt{stmtBase: stmtBase{Pos: pos}, Decl: decl}
}

func NewExprStmt(pos token.Position, x Expr) *ExprStmt {
	return &ExprStmt{stmtBase: stmtBase{Pos: pos}, X: x}
}

func NewAssignStmt(pos token.Position, target *VariableRef, op token.Kind, value Expr) *AssignStmt {
	return &AssignStmt{stmtBase: stmtBase{Pos: pos}, Target: target, Op: op, Value: value}
}

func NewIfStmt(pos token.Position, ifClause IfClause) *IfStmt {
	return &IfStmt{stmtBase: stmtBase{Pos: pos}, If: ifClause}
}

func NewForStmt(pos token.Position, v string, start, stop, step Expr, body *StatementBlock) *ForStmt {
	return &ForStmt{stmtBase: stmtBase{Pos: pos}, Var: v, Start: start, Stop: stop, Step: step, Body: body}
}

func NewReturnStmt(pos token.Position, value Expr) *ReturnStmt {
	return &ReturnStmt{stmtBase: stmtBase{Pos: pos}, Value: value}
}
