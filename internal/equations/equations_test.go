// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emer/nestml/internal/ast"
	"github.com/emer/nestml/internal/diagnostics"
	"github.com/emer/nestml/internal/parser"
	"github.com/emer/nestml/internal/symtab"
	"github.com/emer/nestml/internal/typecheck"
)

func build(t *testing.T, src string) *ast.CompilationUnit {
	t.Helper()
	log := diagnostics.NewLog("t")
	u := parser.Parse("t.nestml", []byte(src), "", "t", log)
	symtab.Build(u, log)
	typecheck.Check(u, log)
	Analyze(u, log)
	return u
}

func TestLinearOdeShapeIsLinear(t *testing.T) {
	src := `
neuron iaf:
  state:
    g_ex nS = 0 nS
  end
  initial_values:
    kernel nS = 0 nS
  end
  input:
    spikeExc nS <- excitatory spike
  end
  output: spike
  equations:
    shape kernel' = -kernel / tau_syn_ex
    g_ex' = -convolve(kernel, spikeExc) / C_m
  end
  parameters:
    tau_syn_ex ms = 2 ms
    C_m pF = 250 pF
  end
  update:
  end
end
`
	u := build(t, src)
	eq := u.Neurons[0].Equations
	require.Len(t, eq.Shapes, 1)
	assert.True(t, eq.Shapes[0].Linear)
}

func TestNonlinearOdeShapeIsDetected(t *testing.T) {
	src := `
neuron nonlin:
  state:
    g_ex nS = 0 nS
  end
  initial_values:
    kernel nS = 0 nS
  end
  equations:
    shape kernel' = -kernel * kernel / tau_syn_ex
  end
  parameters:
    tau_syn_ex ms = 2 ms
  end
  update:
  end
end
`
	u := build(t, src)
	eq := u.Neurons[0].Equations
	require.Len(t, eq.Shapes, 1)
	assert.False(t, eq.Shapes[0].Linear)
}

func TestDirectShapeLinearityNotEvaluated(t *testing.T) {
	src := `
neuron direct:
  equations:
    shape g_ex = exp(-t / tau_syn_ex)
  end
  parameters:
    tau_syn_ex ms = 2 ms
  end
  update:
  end
end
`
	u := build(t, src)
	eq := u.Neurons[0].Equations
	require.Len(t, eq.Shapes, 1)
	assert.False(t, eq.Shapes[0].Linear) // direct shapes are never classified linear/nonlinear
}

func TestFunctionAliasIsInlinedForLinearity(t *testing.T) {
	src := `
neuron aliased:
  state:
    g_ex nS = 0 nS
  end
  initial_values:
    kernel nS = 0 nS
    function rate_const real = 1 / tau_syn_ex
  end
  equations:
    shape kernel' = -kernel * rate_const
  end
  parameters:
    tau_syn_ex ms = 2 ms
  end
  update:
  end
end
`
	u := build(t, src)
	eq := u.Neurons[0].Equations
	require.Len(t, eq.Shapes, 1)
	assert.True(t, eq.Shapes[0].Linear)
}

func TestStateOdeLinearity(t *testing.T) {
	src := `
neuron state_ode:
  state:
    V_m mV = -70 mV
  end
  equations:
    V_m' = (-70 mV - V_m) / tau_m
  end
  parameters:
    tau_m ms = 10 ms
  end
  update:
  end
end
`
	u := build(t, src)
	eq := u.Neurons[0].Equations
	require.Len(t, eq.Odes, 1)
	assert.True(t, eq.Odes[0].Linear)
}
