// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emer/nestml/internal/ast"
	"github.com/emer/nestml/internal/diagnostics"
	"github.com/emer/nestml/internal/equations"
	"github.com/emer/nestml/internal/parser"
	"github.com/emer/nestml/internal/symtab"
	"github.com/emer/nestml/internal/typecheck"
)

const iafPscExp = `
neuron iaf_psc_exp:
  state:
    V_m mV = -70 mV
  end
  initial_values:
    g_ex pA = 0 pA
  end
  input:
    spikeExc nS <- excitatory spike
  end
  output: spike
  equations:
    shape g_ex' = -g_ex / tau_syn_ex
    V_m' = (-70 mV - V_m) / tau_m + convolve(g_ex, spikeExc) / C_m
  end
  parameters:
    tau_m ms = 10 ms
    tau_syn_ex ms = 2 ms
    C_m pF = 250 pF
  end
  update:
    integrate_odes()
  end
end
`

func build(t *testing.T, src string) (*ast.CompilationUnit, *diagnostics.Log) {
	t.Helper()
	log := diagnostics.NewLog("t")
	u := parser.Parse("t.nestml", []byte(src), "", "t", log)
	symtab.Build(u, log)
	typecheck.Check(u, log)
	equations.Analyze(u, log)
	require.Empty(t, log.Items())
	return u, log
}

func TestUnavailableTransportFallsBackToNumeric(t *testing.T) {
	u, log := build(t, iafPscExp)
	d := NewDriver(Unavailable{}, time.Second)
	d.Run(context.Background(), u, log)

	eq := u.Neurons[0].Equations
	assert.Equal(t, "numeric", eq.SolverStatus)
	assert.Len(t, eq.Shapes, 1, "numeric fallback must leave shapes untouched")
	assert.Len(t, eq.Convolves, 1, "numeric fallback must leave convolve occurrences untouched")

	codes := map[string]bool{}
	for _, item := range log.Items() {
		codes[item.Code] = true
	}
	assert.True(t, codes["SolverUnavailable"])
}

func TestFailureReplyFallsBackToNumeric(t *testing.T) {
	u, log := build(t, iafPscExp)
	d := NewDriver(StubTransport{Reply: Reply{Status: StatusFailure}}, time.Second)
	d.Run(context.Background(), u, log)

	eq := u.Neurons[0].Equations
	assert.Equal(t, "numeric", eq.SolverStatus)
	assert.Len(t, eq.Shapes, 1)
}

func TestAnalyticReplyRewritesConvolveToGeneratedState(t *testing.T) {
	u, log := build(t, iafPscExp)
	reply := Reply{
		Status:            StatusSuccess,
		Solver:            SolverAnalytical,
		StateVariables:    []string{"g_ex"},
		InitialValues:     map[string]string{"g_ex": "0"},
		Propagator:        map[string][]float64{"g_ex": {0.9048}},
		UpdateExpressions: map[string]string{"g_ex": "g_ex * __P_g_ex"},
	}
	d := NewDriver(StubTransport{Reply: reply}, time.Second)
	d.Run(context.Background(), u, log)

	n := u.Neurons[0]
	eq := n.Equations
	assert.Equal(t, "analytical", eq.SolverStatus)
	assert.Empty(t, eq.Shapes, "analytic rewrite must remove the folded shape")
	assert.Empty(t, eq.Convolves, "analytic rewrite must remove every convolve occurrence")

	var genDecl *ast.Declaration
	for _, decl := range n.State.Decls {
		if decl.Name == "g_ex" {
			genDecl = decl
		}
	}
	require.NotNil(t, genDecl, "expected a generated state variable named g_ex")
	require.NotNil(t, genDecl.Update, "expected the generated state variable to carry its discrete-step update rule")
	assert.Equal(t, "(g_ex * __P_g_ex)", ast.PrintExpr(genDecl.Update))

	updBin, ok := genDecl.Update.(*ast.Binary)
	require.True(t, ok)
	lhsRef, ok := updBin.X.(*ast.VariableRef)
	require.True(t, ok)
	assert.NotNil(t, lhsRef.Sym, "update expression's own state-variable reference should resolve")
	rhsRef, ok := updBin.Y.(*ast.VariableRef)
	require.True(t, ok)
	assert.NotNil(t, rhsRef.Sym, "update expression's propagator reference should resolve")

	var propFound bool
	for _, decl := range n.Internals.Decls {
		if decl.Name == "__P_g_ex" {
			propFound = true
		}
	}
	assert.True(t, propFound, "expected a generated propagator internal")

	// The membrane ODE's RHS referenced convolve(g_ex, spikeExc); after the
	// rewrite it must reference the generated variable directly instead.
	require.Len(t, eq.Odes, 1)
	assert.NotContains(t, ast.PrintExpr(eq.Odes[0].RHS), "convolve")
}

func TestTimeoutFallsBackToNumeric(t *testing.T) {
	u, log := build(t, iafPscExp)
	d := NewDriver(slowTransport{delay: 50 * time.Millisecond}, 1*time.Millisecond)
	d.Run(context.Background(), u, log)

	eq := u.Neurons[0].Equations
	assert.Equal(t, "numeric", eq.SolverStatus)

	codes := map[string]bool{}
	for _, item := range log.Items() {
		codes[item.Code] = true
	}
	assert.True(t, codes["SolverTimedOut"])
}

type slowTransport struct {
	delay time.Duration
}

func (s slowTransport) Solve(ctx context.Context, req Request) (Reply, error) {
	select {
	case <-time.After(s.delay):
		return Reply{Status: StatusSuccess, Solver: SolverNumeric}, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}
