// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

import (
	"fmt"
	"strings"

	"github.com/emer/nestml/internal/token"
)

// Print renders a CompilationUnit back to NESTML source text. It is
// intentionally fully parenthesized and canonically spaced rather than
// layout-preserving, so that Print(Parse(Print(u))) is structurally equal
// to Print(u) even though it may differ from the original formatting.
func Print(u *CompilationUnit) string {
	var b strings.Builder
	for _, n := range u.Neurons {
		printNeuron(&b, n)
	}
	return b.String()
}

// PrintExpr renders a single expression the same way Print renders one
// inline, for callers (the ODE analysis driver) that need expression
// text outside the context of a whole compilation unit.
func PrintExpr(e Expr) string {
	var b strings.Builder
	printExpr(&b, e)
	return b.String()
}

func printNeuron(b *strings.Builder, n *Neuron) {
	kw := "neuron"
	if n.IsSynapse {
		kw = "synapse"
	}
	fmt.Fprintf(b, "%s %s:\n", kw, n.Name)
	printDeclBlock(b, n.State)
	printDeclBlock(b, n.InitialValues)
	printDeclBlock(b, n.Parameters)
	printDeclBlock(b, n.Internals)
	printEquations(b, n.Equations)
	printInput(b, n.Input)
	printOutput(b, n.Output)
	for _, f := range n.Functions {
		printFunction(b, f)
	}
	printUpdate(b, n.Update)
	b.WriteString("end\n")
}

func printDeclBlock(b *strings.Builder, blk *DeclBlock) {
	if blk == nil {
		return
	}
	fmt.Fprintf(b, "  %s:\n", blk.Kind)
	for _, d := range blk.Decls {
		printDecl(b, d)
	}
	b.WriteString("  end\n")
}

func printDecl(b *strings.Builder, d *Declaration) {
	b.WriteString("    ")
	if d.Flags.Recordable {
		b.WriteString("recordable ")
	}
	if d.Flags.Function {
		b.WriteString("function ")
	}
	b.WriteString(d.Name)
	if d.HasUnit {
		b.WriteString(" ")
		b.WriteString(d.UnitText)
	}
	if d.Init != nil {
		b.WriteString(" = ")
		printExpr(b, d.Init)
	}
	b.WriteString("\n")
}

func printEquations(b *strings.Builder, eq *EquationsBlock) {
	if eq == nil {
		return
	}
	b.WriteString("  equations:\n")
	for _, s := range eq.Shapes {
		b.WriteString("    shape ")
		b.WriteString(s.Name)
		b.WriteString(strings.Repeat("'", s.Order))
		b.WriteString(" = ")
		printExpr(b, s.Expr)
		b.WriteString("\n")
	}
	for _, o := range eq.Odes {
		b.WriteString("    ")
		b.WriteString(o.Variable)
		if o.HasUnit {
			b.WriteString(" ")
			b.WriteString(o.UnitText)
		}
		b.WriteString(strings.Repeat("'", o.Order))
		b.WriteString(" = ")
		printExpr(b, o.RHS)
		b.WriteString("\n")
	}
	b.WriteString("  end\n")
}

func printInput(b *strings.Builder, in *InputBlock) {
	if in == nil {
		return
	}
	b.WriteString("  input:\n")
	for _, p := range in.Ports {
		b.WriteString("    ")
		b.WriteString(p.Name)
		if p.HasUnit {
			b.WriteString(" ")
			b.WriteString(p.UnitText)
		}
		b.WriteString(" <- ")
		switch p.Sign {
		case Inhibitory:
			b.WriteString("inhibitory ")
		case Excitatory:
			b.WriteString("excitatory ")
		}
		b.WriteString(p.Kind.String())
		b.WriteString("\n")
	}
	b.WriteString("  end\n")
}

func printOutput(b *strings.Builder, out *OutputBlock) {
	if out == nil {
		return
	}
	fmt.Fprintf(b, "  output: %s\n", out.Kind)
}

func printFunction(b *strings.Builder, f *FunctionDef) {
	b.WriteString("  function ")
	b.WriteString(f.Name)
	b.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		if p.HasUnit {
			b.WriteString(" ")
			b.WriteString(p.UnitText)
		}
	}
	b.WriteString(")")
	if f.ReturnHasUnit {
		b.WriteString(" ")
		b.WriteString(f.ReturnUnitText)
	}
	b.WriteString(":\n")
	printStmts(b, f.Body, 2)
	b.WriteString("  end\n")
}

func printUpdate(b *strings.Builder, u *StatementBlock) {
	if u == nil {
		return
	}
	b.WriteString("  update:\n")
	printStmts(b, u, 2)
	b.WriteString("  end\n")
}

func printStmts(b *strings.Builder, blk *StatementBlock, indent int) {
	if blk == nil {
		return
	}
	pad := strings.Repeat("  ", indent+1)
	for _, s := range blk.Stmts {
		printStmt(b, s, pad)
	}
}

func printStmt(b *strings.Builder, s Stmt, pad string) {
	switch st := s.(type) {
	case *DeclStmt:
		b.WriteString(pad)
		printDeclInline(b, st.Decl)
	case *ExprStmt:
		b.WriteString(pad)
		printExpr(b, st.X)
		b.WriteString("\n")
	case *AssignStmt:
		b.WriteString(pad)
		b.WriteString(st.Target.Name)
		fmt.Fprintf(b, " %s ", st.Op)
		printExpr(b, st.Value)
		b.WriteString("\n")
	case *IfStmt:
		b.WriteString(pad)
		b.WriteString("if ")
		printExpr(b, st.If.Cond)
		b.WriteString(":\n")
		printStmtsPadded(b, st.If.Body, pad)
		for _, e := range st.Elif {
			b.WriteString(pad)
			b.WriteString("elif ")
			printExpr(b, e.Cond)
			b.WriteString(":\n")
			printStmtsPadded(b, e.Body, pad)
		}
		if st.Else != nil {
			b.WriteString(pad)
			b.WriteString("else:\n")
			printStmtsPadded(b, st.Else, pad)
		}
		b.WriteString(pad)
		b.WriteString("end\n")
	case *ForStmt:
		b.WriteString(pad)
		fmt.Fprintf(b, "for %s in ", st.Var)
		printExpr(b, st.Start)
		b.WriteString("...")
		printExpr(b, st.Stop)
		if st.Step != nil {
			b.WriteString(" step ")
			printExpr(b, st.Step)
		}
		b.WriteString(":\n")
		printStmtsPadded(b, st.Body, pad)
		b.WriteString(pad)
		b.WriteString("end\n")
	case *ReturnStmt:
		b.WriteString(pad)
		b.WriteString("return")
		if st.Value != nil {
			b.WriteString(" ")
			printExpr(b, st.Value)
		}
		b.WriteString("\n")
	}
}

func printDeclInline(b *strings.Builder, d *Declaration) {
	if d.Flags.Recordable {
		b.WriteString("recordable ")
	}
	b.WriteString(d.Name)
	if d.HasUnit {
		b.WriteString(" ")
		b.WriteString(d.UnitText)
	}
	if d.Init != nil {
		b.WriteString(" = ")
		printExpr(b, d.Init)
	}
	b.WriteString("\n")
}

func printStmtsPadded(b *strings.Builder, blk *StatementBlock, outerPad string) {
	if blk == nil {
		return
	}
	pad := outerPad + "  "
	for _, s := range blk.Stmts {
		printStmt(b, s, pad)
	}
}

func printExpr(b *strings.Builder, e Expr) {
	switch x := e.(type) {
	case *Literal:
		switch x.Kind {
		case StringLiteral:
			fmt.Fprintf(b, "%q", x.StrVal)
		case BoolLiteral:
			if x.BoolVal {
				b.WriteString("true")
			} else {
				b.WriteString("false")
			}
		default:
			b.WriteString(x.Text)
			if x.UnitText != "" {
				b.WriteString(" ")
				b.WriteString(x.UnitText)
			}
		}
	case *VariableRef:
		b.WriteString(x.Name)
	case *Call:
		b.WriteString(x.FuncName)
		b.WriteString("(")
		for i, a := range x.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			printExpr(b, a)
		}
		b.WriteString(")")
	case *Unary:
		b.WriteString("(")
		b.WriteString(opText(x.Op))
		printExpr(b, x.X)
		b.WriteString(")")
	case *Binary:
		b.WriteString("(")
		printExpr(b, x.X)
		fmt.Fprintf(b, " %s ", opText(x.Op))
		printExpr(b, x.Y)
		b.WriteString(")")
	case *Conditional:
		b.WriteString("(")
		printExpr(b, x.Cond)
		b.WriteString(" ? ")
		printExpr(b, x.Then)
		b.WriteString(" : ")
		printExpr(b, x.Else)
		b.WriteString(")")
	case *DiffQuotient:
		b.WriteString(x.Name)
		b.WriteString(strings.Repeat("'", x.Order))
	case *Convolve:
		fmt.Fprintf(b, "convolve(%s, %s)", x.ShapeName, x.PortName)
	}
}

func opText(k token.Kind) string {
	switch k {
	case token.NOT:
		return "not "
	default:
		return k.String()
	}
}
