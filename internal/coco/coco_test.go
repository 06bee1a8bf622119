// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coco

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emer/nestml/internal/diagnostics"
	"github.com/emer/nestml/internal/parser"
	"github.com/emer/nestml/internal/symtab"
	"github.com/emer/nestml/internal/typecheck"
)

func build(t *testing.T, src string, dev bool) *diagnostics.Log {
	t.Helper()
	log := diagnostics.NewLog("t")
	u := parser.Parse("t.nestml", []byte(src), "", "t", log)
	symtab.Build(u, log)
	typecheck.Check(u, log)
	Check(u, log, dev)
	return log
}

func codes(log *diagnostics.Log) []string {
	var out []string
	for _, d := range log.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestValidNeuronHasNoCoCoErrors(t *testing.T) {
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
  output: spike
  update:
    integrate_odes()
  end
end
`
	log := build(t, src, false)
	assert.Empty(t, log.Items())
}

func TestUnusedParameterWarnsButDoesNotError(t *testing.T) {
	src := `
neuron dusty:
  parameters:
    tau_m ms = 10 ms
  end
  output: spike
  update:
  end
end
`
	log := build(t, src, false)
	assert.Contains(t, codes(log), "CoCoUnusedVariable")
	assert.Equal(t, diagnostics.WARN, log.MaxSeverity())
}

func TestDerivativeOfNonStateVariableIsError(t *testing.T) {
	src := `
neuron bad:
  parameters:
    tau_m ms = 10 ms
  end
  equations:
    tau_m' = 1 ms
  end
  output: spike
  update:
  end
end
`
	log := build(t, src, false)
	assert.Contains(t, codes(log), "CoCoStateVariablesInitialized")
}

func TestMissingOutputBlockIsError(t *testing.T) {
	src := `
neuron noout:
  state:
    V_m mV = 0 mV
  end
  update:
  end
end
`
	log := build(t, src, false)
	assert.Contains(t, codes(log), "CoCoOutputPortDefined")
}

func TestEmitSpikeOutsideUpdateIsError(t *testing.T) {
	src := `
neuron bad:
  function helper():
    emit_spike()
  end
  output: spike
  update:
  end
end
`
	log := build(t, src, false)
	assert.Contains(t, codes(log), "CoCoFunctionCallsOnlyInUpdate")
}

func TestParameterReferencingStateIsError(t *testing.T) {
	src := `
neuron bad:
  state:
    V_m mV = 0 mV
  end
  parameters:
    thresh mV = V_m
  end
  output: spike
  update:
  end
end
`
	log := build(t, src, false)
	assert.Contains(t, codes(log), "CoCoParametersAssignedOnlyConstants")
}

func TestInitialValuesAliasSelfReferenceIsError(t *testing.T) {
	src := `
neuron bad:
  initial_values:
    function looped real = looped + 1
  end
  output: spike
  update:
  end
end
`
	log := build(t, src, false)
	assert.Contains(t, codes(log), "CoCoNoSelfReference")
}

func TestInitialValuesAliasReferencingStateIsErrorUnlessDev(t *testing.T) {
	src := `
neuron bad:
  state:
    V_m mV = 0 mV
  end
  initial_values:
    function mirrored mV = V_m
  end
  output: spike
  update:
  end
end
`
	strictLog := build(t, src, false)
	assert.Contains(t, codes(strictLog), "CoCoInitialValuesReference")

	devLog := build(t, src, true)
	found := false
	for _, d := range devLog.Items() {
		if d.Code == "CoCoInitialValuesReference" {
			assert.Equal(t, diagnostics.WARN, d.Severity)
			found = true
		}
	}
	assert.True(t, found)
}

func TestMismatchedInputPortSignUnitsIsError(t *testing.T) {
	src := `
neuron bad:
  input:
    g_in nS <- inhibitory spike
    g_ex pA <- excitatory spike
  end
  output: spike
  update:
  end
end
`
	log := build(t, src, false)
	assert.Contains(t, codes(log), "CoCoInputPortsSameUnit")
}

func TestCircularAliasIsDetected(t *testing.T) {
	src := `
neuron bad:
  initial_values:
    function a real = b + 1
    function b real = a + 1
  end
  output: spike
  update:
  end
end
`
	log := build(t, src, false)
	assert.Contains(t, codes(log), "CoCoNoCircularAliases")
}

func TestReservedUnitNameCannotBeRedeclared(t *testing.T) {
	src := `
neuron bad:
  state:
    mV real = 0
  end
  output: spike
  update:
  end
end
`
	log := build(t, src, false)
	assert.Contains(t, codes(log), "CoCoReservedName")
}
