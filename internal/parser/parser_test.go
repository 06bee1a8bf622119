// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emer/nestml/internal/ast"
	"github.com/emer/nestml/internal/diagnostics"
)

func parse(t *testing.T, src string) (*ast.CompilationUnit, *diagnostics.Log) {
	t.Helper()
	log := diagnostics.NewLog("t")
	u := Parse("t.nestml", []byte(src), "", "t", log)
	return u, log
}

const minimalNeuron = `
neuron iaf_minimal:
  state:
    V_m mV = -70 mV
  end

  parameters:
    tau_m ms = 10 ms
  end

  equations:
    V_m' = -V_m / tau_m
  end

  input:
    spikeExc <- excitatory spike
  end

  output: spike

  update:
    integrate_odes()
  end
end
`

func TestParseMinimalNeuron(t *testing.T) {
	u, log := parse(t, minimalNeuron)
	assert.Empty(t, log.Items())
	require.Len(t, u.Neurons, 1)
	n := u.Neurons[0]
	assert.Equal(t, "iaf_minimal", n.Name)
	require.NotNil(t, n.State)
	require.Len(t, n.State.Decls, 1)
	assert.Equal(t, "V_m", n.State.Decls[0].Name)
	assert.Equal(t, "mV", n.State.Decls[0].UnitText)
	require.NotNil(t, n.Equations)
	require.Len(t, n.Equations.Odes, 1)
	assert.Equal(t, "V_m", n.Equations.Odes[0].Variable)
	assert.Equal(t, 1, n.Equations.Odes[0].Order)
	require.Len(t, n.Input.Ports, 1)
	assert.Equal(t, ast.Excitatory, n.Input.Ports[0].Sign)
	require.NotNil(t, n.Output)
	assert.Equal(t, ast.SpikePort, n.Output.Kind)
}

func TestParseUnitMismatchInitializerStillParses(t *testing.T) {
	// The parser only records raw unit text; unit-mismatch detection is
	// the type checker's job, so this must parse cleanly with no diagnostics here.
	src := `
neuron bad_init:
  state:
    V_m mV = 5 pA
  end
end
`
	u, log := parse(t, src)
	assert.Empty(t, log.Items())
	require.Len(t, u.Neurons, 1)
	d := u.Neurons[0].State.Decls[0]
	assert.Equal(t, "mV", d.UnitText)
	lit, ok := d.Init.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "pA", lit.UnitText)
}

func TestParseUndeclaredShapeDerivative(t *testing.T) {
	// `shape f' = 0` with no prior declaration of f: this is a valid parse
	// (the shape IS the declaration); symbol resolution happens in symtab.
	src := `
neuron has_shape:
  equations:
    shape f' = 0
  end
end
`
	u, log := parse(t, src)
	assert.Empty(t, log.Items())
	require.Len(t, u.Neurons[0].Equations.Shapes, 1)
	sh := u.Neurons[0].Equations.Shapes[0]
	assert.Equal(t, "f", sh.Name)
	assert.Equal(t, 1, sh.Order)
	assert.Equal(t, ast.OdeShape, sh.Kind)
}

func TestParseDeltaShape(t *testing.T) {
	src := `
neuron has_delta:
  equations:
    shape f = delta(t, tau)
  end
end
`
	u, _ := parse(t, src)
	sh := u.Neurons[0].Equations.Shapes[0]
	assert.Equal(t, ast.DeltaShape, sh.Kind)
}

func TestParseConvolveCollected(t *testing.T) {
	src := `
neuron uses_convolve:
  equations:
    I_syn pA = convolve(g_ex, spikeExc) - convolve(g_in, spikeInh)
  end
end
`
	u, _ := parse(t, src)
	eq := u.Neurons[0].Equations
	require.Len(t, eq.Odes, 1)
	require.Len(t, eq.Convolves, 2)
	assert.Equal(t, "g_ex", eq.Convolves[0].ShapeName)
	assert.Equal(t, "spikeExc", eq.Convolves[0].PortName)
	assert.Equal(t, "g_in", eq.Convolves[1].ShapeName)
}

func TestParseFunctionDef(t *testing.T) {
	src := `
neuron has_fn:
  function clip(x mV, lo mV, hi mV) mV:
    if x < lo:
      return lo
    elif x > hi:
      return hi
    else:
      return x
    end
  end
end
`
	u, log := parse(t, src)
	assert.Empty(t, log.Items())
	require.Len(t, u.Neurons[0].Functions, 1)
	fn := u.Neurons[0].Functions[0]
	assert.Equal(t, "clip", fn.Name)
	require.Len(t, fn.Params, 3)
	assert.Equal(t, "mV", fn.ReturnUnitText)
	require.Len(t, fn.Body.Stmts, 1)
	ifs, ok := fn.Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	assert.Len(t, ifs.Elif, 1)
	require.NotNil(t, ifs.Else)
}

func TestParseForLoopAndAssignment(t *testing.T) {
	src := `
neuron loopy:
  state:
    acc real = 0
  end
  update:
    for i in 0 ... 10 step 1:
      acc += i
    end
  end
end
`
	u, log := parse(t, src)
	assert.Empty(t, log.Items())
	require.Len(t, u.Neurons[0].Update.Stmts, 1)
	fs, ok := u.Neurons[0].Update.Stmts[0].(*ast.ForStmt)
	require.True(t, ok)
	assert.Equal(t, "i", fs.Var)
	require.Len(t, fs.Body.Stmts, 1)
	as, ok := fs.Body.Stmts[0].(*ast.AssignStmt)
	require.True(t, ok)
	assert.Equal(t, "acc", as.Target.Name)
}

func TestParseLocalDeclInUpdate(t *testing.T) {
	src := `
neuron has_local:
  update:
    tmp mV = V_m * 2
  end
end
`
	u, log := parse(t, src)
	assert.Empty(t, log.Items())
	require.Len(t, u.Neurons[0].Update.Stmts, 1)
	ds, ok := u.Neurons[0].Update.Stmts[0].(*ast.DeclStmt)
	require.True(t, ok)
	assert.Equal(t, "tmp", ds.Decl.Name)
	assert.Equal(t, ast.BlockLocal, ds.Decl.Block)
}

func TestParseExpressionPrecedence(t *testing.T) {
	src := `
neuron expr_test:
  update:
    x real = 1 + 2 * 3 ** 2
  end
end
`
	u, log := parse(t, src)
	assert.Empty(t, log.Items())
	ds := u.Neurons[0].Update.Stmts[0].(*ast.DeclStmt)
	top, ok := ds.Decl.Init.(*ast.Binary)
	require.True(t, ok)
	// top-level op must be '+' (lowest precedence), with '3 ** 2' binding
	// tighter than '2 * 3 ** 2' binding tighter than '1 + ...'
	rhs, ok := top.Y.(*ast.Binary)
	require.True(t, ok)
	_, ok = rhs.Y.(*ast.Binary)
	require.True(t, ok)
}

func TestParseDuplicateBlockIsDiagnostic(t *testing.T) {
	src := `
neuron dup:
  state:
    a real = 0
  end
  state:
    b real = 0
  end
end
`
	_, log := parse(t, src)
	require.NotEmpty(t, log.Items())
	assert.Equal(t, "CoCoEachBlockUniqueAndCorrectNumberOfTimes", log.Items()[0].Code)
}

func TestParseSyntaxErrorRecoversToNextNeuron(t *testing.T) {
	src := `
neuron broken:
  state:
    a real =
  end
end

neuron fine:
end
`
	u, log := parse(t, src)
	require.NotEmpty(t, log.Items())
	require.Len(t, u.Neurons, 2)
	assert.Equal(t, "fine", u.Neurons[1].Name)
}

func TestParseConditionalExpression(t *testing.T) {
	src := `
neuron cond:
  update:
    x real = a > b ? 1 : 0
  end
end
`
	u, log := parse(t, src)
	assert.Empty(t, log.Items())
	ds := u.Neurons[0].Update.Stmts[0].(*ast.DeclStmt)
	c, ok := ds.Decl.Init.(*ast.Conditional)
	require.True(t, ok)
	_, ok = c.Cond.(*ast.Binary)
	assert.True(t, ok)
}

// Pretty-printing an accepted AST and re-parsing must yield a structurally
// equal AST; structural equality is asserted by comparing the canonical
// print of both trees, which is stable by construction.
func TestPrintParseRoundTrip(t *testing.T) {
	srcs := []string{minimalNeuron, `
neuron round_trip:
  state:
    V_m mV = -70 mV
  end
  initial_values:
    function V_reset mV = V_m_init + 5 mV
    V_m_init mV = -70 mV
  end
  equations:
    shape g_ex' = -g_ex / tau_syn_ex
    V_m' = -V_m / tau_m + convolve(g_ex, spikeExc) / C_m
  end
  input:
    spikeExc nS <- excitatory spike
    I_stim pA <- current
  end
  output: spike
  update:
    if V_m > 0 mV:
      emit_spike()
      V_m = -70 mV
    else:
      integrate_odes()
    end
  end
end
`}
	for _, src := range srcs {
		u1, log := parse(t, src)
		require.Empty(t, log.Items())
		printed := ast.Print(u1)

		log2 := diagnostics.NewLog("t")
		u2 := Parse("t.nestml", []byte(printed), "", "t", log2)
		require.Empty(t, log2.Items(), "canonical print must re-parse cleanly:\n%s", printed)
		assert.Equal(t, printed, ast.Print(u2))
	}
}

func TestParseSynapseKeyword(t *testing.T) {
	src := `
synapse static_synapse:
  parameters:
    w real = 1
  end
end
`
	u, log := parse(t, src)
	assert.Empty(t, log.Items())
	assert.True(t, u.Neurons[0].IsSynapse)
}
