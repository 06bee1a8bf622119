// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emer/nestml/internal/ast"
	"github.com/emer/nestml/internal/diagnostics"
	"github.com/emer/nestml/internal/parser"
)

func build(t *testing.T, src string) (*ast.CompilationUnit, *diagnostics.Log) {
	t.Helper()
	log := diagnostics.NewLog("t")
	u := parser.Parse("t.nestml", []byte(src), "", "t", log)
	Build(u, log)
	return u, log
}

func TestResolvesStateAndUpdateReferences(t *testing.T) {
	src := `
neuron iaf:
  state:
    V_m mV = -70 mV
  end
  parameters:
    tau_m ms = 10 ms
  end
  equations:
    V_m' = -V_m / tau_m
  end
  update:
    V_m = V_m + 1 mV
  end
end
`
	u, log := build(t, src)
	for _, d := range log.Items() {
		t.Logf("unexpected diagnostic: %s", d)
	}
	assert.Empty(t, log.Items())
	n := u.Neurons[0]
	ode := n.Equations.Odes[0]
	require.NotNil(t, ode.Sym)
	assert.Equal(t, ast.VariableSym, ode.Sym.Kind)
	assert.True(t, n.State.Decls[0].Sym.Referenced)
}

func TestUndeclaredReferenceIsError(t *testing.T) {
	src := `
neuron bad:
  update:
    x = y + 1
  end
end
`
	_, log := build(t, src)
	require.NotEmpty(t, log.Items())
	assert.Equal(t, diagnostics.ERROR, log.MaxSeverity())
}

func TestDuplicateDeclarationInScope(t *testing.T) {
	src := `
neuron dup:
  state:
    a real = 0
    a real = 1
  end
end
`
	_, log := build(t, src)
	require.NotEmpty(t, log.Items())
	found := false
	for _, d := range log.Items() {
		if d.Code == "CoCoVariableOnceScope" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestForwardReferenceAllowedInParameters(t *testing.T) {
	src := `
neuron fwd_ok:
  parameters:
    a real = b
    b real = 1
  end
end
`
	_, log := build(t, src)
	assert.Empty(t, log.Items())
}

func TestForwardReferenceRejectedInState(t *testing.T) {
	src := `
neuron fwd_bad:
  state:
    a real = b
    b real = 1
  end
end
`
	_, log := build(t, src)
	require.NotEmpty(t, log.Items())
}

func TestConvolveResolvesShapeAndPort(t *testing.T) {
	src := `
neuron conv:
  state:
    V_m mV = 0 mV
  end
  equations:
    shape g_ex = 1
    V_m' = convolve(g_ex, spikeExc)
  end
  input:
    spikeExc <- excitatory spike
  end
end
`
	u, log := build(t, src)
	assert.Empty(t, log.Items())
	eq := u.Neurons[0].Equations
	require.Len(t, eq.Convolves, 1)
	cv := eq.Convolves[0].Node
	require.NotNil(t, cv.ShapeSym)
	require.NotNil(t, cv.PortSym)
	assert.Equal(t, ast.ShapeSym, cv.ShapeSym.Kind)
	assert.Equal(t, ast.InputPortSym, cv.PortSym.Kind)
}

func TestConvolveRejectsCurrentPort(t *testing.T) {
	src := `
neuron conv_current:
  state:
    V_m mV = 0 mV
  end
  equations:
    shape g_ex = 1
    V_m' = convolve(g_ex, curr)
  end
  input:
    curr pA <- current
  end
end
`
	u, log := build(t, src)
	eq := u.Neurons[0].Equations
	require.Len(t, eq.Convolves, 1)
	cv := eq.Convolves[0].Node
	require.NotNil(t, cv.ShapeSym)
	assert.Nil(t, cv.PortSym, "convolve's second argument must not resolve to a current port")

	var found bool
	for _, d := range log.Items() {
		if d.Code == "CoCoConvolveNotCorrectlyProvided" {
			found = true
		}
	}
	assert.True(t, found, "expected CoCoConvolveNotCorrectlyProvided for a current-port convolve")
}

func TestOdeShapeReusesInitialValueSymbol(t *testing.T) {
	src := `
neuron psc:
  initial_values:
    g_ex nS = 0 nS
  end
  equations:
    shape g_ex' = -g_ex / tau
  end
  parameters:
    tau ms = 2 ms
  end
end
`
	u, log := build(t, src)
	assert.Empty(t, log.Items())
	sh := u.Neurons[0].Equations.Shapes[0]
	require.NotNil(t, sh.Sym)
	assert.Equal(t, ast.ShapeSym, sh.Sym.Kind)
	assert.Equal(t, ast.BlockInitialValues, sh.Sym.Origin)
	assert.Same(t, sh.Sym, u.Neurons[0].InitialValues.Decls[0].Sym)
}

func TestOdeShapeWithoutInitialValueIsError(t *testing.T) {
	src := `
neuron bad_shape:
  equations:
    shape f' = 0
  end
end
`
	_, log := build(t, src)
	require.NotEmpty(t, log.Items())
	assert.Equal(t, "CoCoStateVariablesInitialized", log.Items()[0].Code)
}

func TestLoopVariableScopedToBody(t *testing.T) {
	src := `
neuron loopy:
  update:
    for i in 0 ... 10 step 1:
      x real = i
    end
  end
end
`
	u, log := build(t, src)
	assert.Empty(t, log.Items())
	fs := u.Neurons[0].Update.Stmts[0].(*ast.ForStmt)
	require.NotNil(t, fs.Sym)
	assert.Equal(t, "i", fs.Sym.Name)
}

func TestFunctionParamsScopedToBody(t *testing.T) {
	src := `
neuron has_fn:
  function id(x mV) mV:
    return x
  end
end
`
	_, log := build(t, src)
	assert.Empty(t, log.Items())
}

func TestUnknownFunctionCallIsError(t *testing.T) {
	src := `
neuron bad_call:
  update:
    frobnicate(1)
  end
end
`
	_, log := build(t, src)
	require.NotEmpty(t, log.Items())
}

func TestBuiltinCallsNeedNoSymbol(t *testing.T) {
	src := `
neuron fine_call:
  update:
    integrate_odes()
  end
end
`
	_, log := build(t, src)
	assert.Empty(t, log.Items())
}
