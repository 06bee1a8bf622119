// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emer/nestml/internal/diagnostics"
)

func TestDeriveNamingWithModelRoot(t *testing.T) {
	pkg, artifact := DeriveNaming("/models/a/b/c.nestml", "/models")
	assert.Equal(t, "a.b", pkg)
	assert.Equal(t, "c", artifact)
}

func TestDeriveNamingWithModelRootAtTopLevel(t *testing.T) {
	pkg, artifact := DeriveNaming("/models/c.nestml", "/models")
	assert.Equal(t, "", pkg)
	assert.Equal(t, "c", artifact)
}

func TestDeriveNamingWithoutModelRootUsesDottedStem(t *testing.T) {
	pkg, artifact := DeriveNaming("/tmp/iaf.psc.exp.nestml", "")
	assert.Equal(t, "iaf.psc", pkg)
	assert.Equal(t, "exp", artifact)
}

func TestDeriveNamingWithoutModelRootNoDotsInStem(t *testing.T) {
	pkg, artifact := DeriveNaming("/tmp/iaf.nestml", "")
	assert.Equal(t, "", pkg)
	assert.Equal(t, "iaf", artifact)
}

func TestDeriveNamingOutsideModelRootFallsBackToStem(t *testing.T) {
	pkg, artifact := DeriveNaming("/other/a.b.nestml", "/models")
	assert.Equal(t, "a", pkg)
	assert.Equal(t, "b", artifact)
}

const validNeuron = `
neuron valid:
  state:
    V_m mV = 0 mV
  end
  output: spike
  update:
  end
end
`

const neuronWithUnitMismatch = `
neuron bad:
  state:
    V_m mV = 0 pA
  end
  output: spike
  update:
  end
end
`

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunFilesAcceptsValidModel(t *testing.T) {
	dir := t.TempDir()
	f := writeTemp(t, dir, "valid.nestml", validNeuron)

	results, report, err := RunFiles(context.Background(), []string{f}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, report.ExitCode())
}

func TestRunFilesReportsUnitMismatch(t *testing.T) {
	dir := t.TempDir()
	f := writeTemp(t, dir, "bad.nestml", neuronWithUnitMismatch)

	_, report, err := RunFiles(context.Background(), []string{f}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.ExitCode())
}

func TestCleanUnitSkipsOnlyTheErroredNeuron(t *testing.T) {
	src := neuronWithUnitMismatch + validNeuron
	dir := t.TempDir()
	f := writeTemp(t, dir, "mixed.nestml", src)

	results, _, err := RunFiles(context.Background(), []string{f}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Unit.Neurons, 2)

	var errCount int
	for _, d := range results[0].Log.Items() {
		if d.Severity >= diagnostics.ERROR {
			errCount++
		}
	}
	assert.Equal(t, 1, errCount, "exactly one neuron should have failed")
}

func TestReportPreservesDiscoveryOrder(t *testing.T) {
	// Discovery sorts by full path, but artifact names come from the file
	// stem alone: b.nestml discovers before dir/a.nestml even though its
	// unit name sorts after. The merged report must keep discovery order.
	dir := t.TempDir()
	sub := filepath.Join(dir, "dir")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeTemp(t, dir, "b.nestml", validNeuron)
	writeTemp(t, sub, "a.nestml", validNeuron)

	files, err := Discover([]string{dir})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "b.nestml"), filepath.Join(sub, "a.nestml")}, files)

	_, report, err := RunFiles(context.Background(), files, Options{Concurrency: 2})
	require.NoError(t, err)
	require.Len(t, report.Units, 2)
	assert.Equal(t, "b", report.Units[0].Unit)
	assert.Equal(t, "a", report.Units[1].Unit)
}

func TestUnitResultCarriesPhaseBreakdown(t *testing.T) {
	dir := t.TempDir()
	f := writeTemp(t, dir, "valid.nestml", validNeuron)

	results, _, err := RunFiles(context.Background(), []string{f}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	var names []string
	var sum time.Duration
	for _, s := range results[0].Phases {
		names = append(names, s.Phase)
		sum += s.Elapsed
	}
	assert.Equal(t, []string{"read", "parse", "symtab", "typecheck", "coco", "equations", "solver"}, names)
	assert.Equal(t, sum, results[0].Elapsed)
}

func TestProcessesMultipleFilesConcurrently(t *testing.T) {
	dir := t.TempDir()
	f1 := writeTemp(t, dir, "one.nestml", validNeuron)
	f2 := writeTemp(t, dir, "two.nestml", validNeuron)

	results, report, err := RunFiles(context.Background(), []string{f1, f2}, Options{Concurrency: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Len(t, report.Units, 2)
}
