// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline implements the orchestrator: it discovers compilation
// units, runs every phase over each (concurrently, bounded by a worker
// pool), gates the ODE-analysis phases on whether the earlier phases
// stayed clean, and merges every unit's diagnostics into one ordered
// report.
package pipeline

import (
	"context"
	"math"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/emer/nestml/internal/ast"
	"github.com/emer/nestml/internal/coco"
	"github.com/emer/nestml/internal/diagnostics"
	"github.com/emer/nestml/internal/equations"
	"github.com/emer/nestml/internal/nlog"
	"github.com/emer/nestml/internal/parser"
	"github.com/emer/nestml/internal/ptimer"
	"github.com/emer/nestml/internal/solver"
	"github.com/emer/nestml/internal/symtab"
	"github.com/emer/nestml/internal/typecheck"
)

// Options configures a Run.
type Options struct {
	// ModelRoot is the directory DeriveNaming treats as ROOT.
	ModelRoot string
	// Concurrency bounds the number of units processed at once. <= 0 means
	// runtime.GOMAXPROCS(0).
	Concurrency int
	// Dev relaxes some CoCos.
	Dev bool
	// CheckOnly stops after the context conditions, skipping equations
	// analysis and the solver entirely (the `check` subcommand).
	CheckOnly bool
	// Transport reaches the external solver. A nil Transport
	// defaults to solver.Unavailable{}, which always falls back to
	// numeric mode.
	Transport solver.Transport
	// SolverTimeout bounds one unit's whole solver phase, and each
	// neuron's round trip within it. <= 0 means solver.DefaultTimeout.
	SolverTimeout time.Duration
}

// UnitResult is one compilation unit's outcome.
type UnitResult struct {
	Filename string
	Unit     *ast.CompilationUnit
	Log      *diagnostics.Log
	Elapsed  time.Duration
	// Phases is the per-phase wall-clock breakdown of Elapsed, in the
	// order the phases ran.
	Phases []ptimer.Span
}

// Run discovers and compiles every .nestml file named or contained in
// paths, processing units concurrently, and returns each unit's result
// alongside the merged diagnostics report, in discovery order.
func Run(ctx context.Context, paths []string, opts Options) ([]UnitResult, diagnostics.Report, error) {
	files, err := Discover(paths)
	if err != nil {
		return nil, diagnostics.Report{}, err
	}
	return RunFiles(ctx, files, opts)
}

// RunFiles is Run without file discovery, for callers (tests, `--watch`)
// that already have a concrete file list.
func RunFiles(ctx context.Context, files []string, opts Options) ([]UnitResult, diagnostics.Report, error) {
	opts = withDefaults(opts)

	results := make([]UnitResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			results[i] = processFile(gctx, f, opts)
			return nil
		})
	}
	_ = g.Wait() // processFile never returns a Go error; failures become diagnostics

	// results is indexed by file, so merging in slice order keeps the
	// report in discovery order no matter which unit finished first.
	logs := make([]*diagnostics.Log, len(results))
	for i, r := range results {
		logs[i] = r.Log
	}
	return results, diagnostics.Merge(logs), nil
}

func withDefaults(opts Options) Options {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	if opts.Transport == nil {
		opts.Transport = solver.Unavailable{}
	}
	if opts.SolverTimeout <= 0 {
		opts.SolverTimeout = solver.DefaultTimeout
	}
	return opts
}

// processFile runs the full phase sequence for one file, returning its
// result. It never returns a Go error: I/O and internal failures are
// recorded as FATAL diagnostics instead, so one unit's catastrophic
// failure never aborts sibling units.
func processFile(ctx context.Context, filename string, opts Options) UnitResult {
	pkg, artifact := DeriveNaming(filename, opts.ModelRoot)
	log := diagnostics.NewLog(artifact)

	// phase narrates and times one span of this unit's pass.
	var tr ptimer.Phases
	phase := func(name string, fn func()) {
		tr.Begin(name)
		nlog.PhaseStart(artifact, name)
		fn()
		nlog.PhaseDone(artifact, name, tr.End().Seconds()*1000)
	}
	done := func(u *ast.CompilationUnit) UnitResult {
		slowest, _ := tr.Slowest()
		nlog.UnitDone(artifact, log.MaxSeverity().String(), tr.Total().Seconds()*1000, slowest)
		return UnitResult{Filename: filename, Unit: u, Log: log, Elapsed: tr.Total(), Phases: tr.Spans()}
	}

	var src []byte
	var readErr error
	phase("read", func() { src, readErr = os.ReadFile(filename) })
	if readErr != nil {
		log.Fatal("IOError", diagnostics.SourceRange{Filename: filename}, "reading %s: %s", filename, readErr)
		return done(nil)
	}

	// Lexing happens inside the parser; the unit table is a process-wide
	// read-only singleton, not a per-unit phase. Symbol resolution, type
	// checking and the context conditions always run, even over a
	// syntactically damaged unit, so a single invocation surfaces as many
	// diagnostics as possible.
	var u *ast.CompilationUnit
	phase("parse", func() { u = parser.Parse(filename, src, pkg, artifact, log) })
	phase("symtab", func() { symtab.Build(u, log) })
	phase("typecheck", func() { typecheck.Check(u, log) })
	phase("coco", func() { coco.Check(u, log, opts.Dev) })

	if !opts.CheckOnly {
		if clean := cleanUnit(u, log); len(clean.Neurons) > 0 {
			phase("equations", func() { equations.Analyze(clean, log) })
			phase("solver", func() {
				sctx, cancel := context.WithTimeout(ctx, opts.SolverTimeout)
				defer cancel()
				solver.NewDriver(opts.Transport, opts.SolverTimeout).Run(sctx, clean, log)
			})
		}
	}

	return done(u)
}

// cleanUnit returns a shallow CompilationUnit view containing only the
// neurons with no ERROR-or-worse diagnostic in their own source range.
// Neurons share their underlying pointers with u, so running the analysis
// and solver phases over this view mutates exactly the same Neuron values
// u.Neurons already holds: one bad neuron in a multi-neuron file never
// stops its siblings from reaching the solver.
func cleanUnit(u *ast.CompilationUnit, log *diagnostics.Log) *ast.CompilationUnit {
	items := log.Items()
	var kept []*ast.Neuron
	for i, n := range u.Neurons {
		end := math.MaxInt
		if i+1 < len(u.Neurons) {
			end = u.Neurons[i+1].Pos.Line
		}
		if !neuronHasError(items, n.Pos.Line, end) {
			kept = append(kept, n)
		}
	}
	return &ast.CompilationUnit{Filename: u.Filename, PackageName: u.PackageName, ArtifactName: u.ArtifactName, Neurons: kept}
}

func neuronHasError(items []diagnostics.Diagnostic, startLine, endLine int) bool {
	for _, d := range items {
		if d.Severity < diagnostics.ERROR {
			continue
		}
		if d.Range.StartLine >= startLine && d.Range.StartLine < endLine {
			return true
		}
	}
	return false
}

// ExitCode mirrors diagnostics.Report.ExitCode, named here too so
// cmd/nestmlc doesn't need to import internal/diagnostics just for this.
func ExitCode(r diagnostics.Report) int { return r.ExitCode() }
