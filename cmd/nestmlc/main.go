// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command nestmlc is the NESTML front-end CLI: it wires configuration,
// logging, file discovery and the compiler pipeline together and reports a
// diagnostics summary, exiting 0 on success, 1 on any error diagnostic,
// and 2 on a fatal/internal failure.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/emer/nestml/internal/config"
	"github.com/emer/nestml/internal/diagnostics"
	"github.com/emer/nestml/internal/nlog"
	"github.com/emer/nestml/internal/pipeline"
	"github.com/emer/nestml/internal/solver"
)

// flags mirrors the recognized configuration options one-to-one.
var flags struct {
	targetPath    string
	loggingLevel  string
	moduleName    string
	suffix        string
	dev           bool
	storeLog      string
	solverAddr    string
	solverTimeout time.Duration
	modelRoot     string
	watch         bool
}

func main() {
	root := &cobra.Command{
		Use:   "nestmlc",
		Short: "NESTML front-end: lex, parse, type-check and ODE-analyze .nestml models",
	}
	root.PersistentFlags().StringVar(&flags.targetPath, "target-path", "", "output directory for downstream code generation")
	root.PersistentFlags().StringVar(&flags.loggingLevel, "logging-level", "", "INFO, WARN, or ERROR (progress narration, not diagnostics)")
	root.PersistentFlags().StringVar(&flags.moduleName, "module-name", "", "override the generated module name")
	root.PersistentFlags().StringVar(&flags.suffix, "suffix", "", "suffix appended to generated artifact names")
	root.PersistentFlags().BoolVar(&flags.dev, "dev", false, "relax some context conditions")
	root.PersistentFlags().StringVar(&flags.storeLog, "store-log", "", "persist the diagnostics report to this file")
	root.PersistentFlags().StringVar(&flags.solverAddr, "solver-addr", "", "path to the external ODE solver binary; omit to run in numeric-only mode")
	root.PersistentFlags().DurationVar(&flags.solverTimeout, "solver-timeout", 0, "per-unit solver round-trip budget (default 60s)")
	root.PersistentFlags().StringVar(&flags.modelRoot, "model-root", "", "model root used to derive package/artifact names")

	buildCmd := &cobra.Command{
		Use:   "build [paths...]",
		Short: "run the full pipeline and print the diagnostics report",
		Args:  cobra.MinimumNArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return runBuild(cmd, args, false) },
	}
	buildCmd.Flags().BoolVar(&flags.watch, "watch", false, "re-run the pipeline whenever a .nestml file changes")

	checkCmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "parse and check only, skipping the ODE analysis / solver round-trip",
		Args:  cobra.MinimumNArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return runBuild(cmd, args, true) },
	}

	root.AddCommand(buildCmd, checkCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}

func runBuild(cmd *cobra.Command, paths []string, checkOnly bool) error {
	cfgMgr := config.NewManager()
	userPath, err := config.UserConfigPath()
	if err != nil {
		return fmt.Errorf("resolving user config path: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	if err := cfgMgr.Load(userPath, config.ProjectConfigPath(wd)); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfgMgr.SetFlags(config.Config{
		TargetPath:           flags.targetPath,
		LoggingLevel:         flags.loggingLevel,
		ModuleName:           flags.moduleName,
		Suffix:               flags.suffix,
		Dev:                  flags.dev,
		StoreLog:             flags.storeLog != "",
		SolverAddr:           flags.solverAddr,
		SolverTimeoutSeconds: int(flags.solverTimeout.Seconds()),
	})
	cfg := cfgMgr.Get()

	if err := nlog.Init(cfg.LoggingLevel, ""); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	opts := pipeline.Options{
		ModelRoot:     flags.modelRoot,
		Dev:           cfg.Dev,
		CheckOnly:     checkOnly,
		Transport:     resolveTransport(cfg.SolverAddr),
		SolverTimeout: time.Duration(cfg.SolverTimeoutSeconds) * time.Second,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	run := func() int {
		_, report, err := pipeline.Run(ctx, paths, opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 2
		}
		printReport(report)
		if flags.storeLog != "" {
			if werr := writeReport(flags.storeLog, report); werr != nil {
				fmt.Fprintln(os.Stderr, "Error writing --store-log:", werr)
			}
		}
		return pipeline.ExitCode(report)
	}

	if flags.watch {
		err := pipeline.Watch(ctx, paths, func() { run() })
		if err != nil && err != context.Canceled {
			return err
		}
		return nil
	}

	code := run()
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

func resolveTransport(solverAddr string) solver.Transport {
	if solverAddr == "" {
		return solver.Unavailable{}
	}
	return solver.NewPipeTransport(solverAddr)
}

func printReport(report diagnostics.Report) {
	for _, u := range report.Units {
		for _, d := range u.Diagnostics {
			fmt.Println(d.String())
		}
	}
	counts := report.TotalCounts()
	fmt.Printf("\n%d unit(s): %d info, %d warn, %d error, %d fatal\n",
		len(report.Units), counts[diagnostics.INFO], counts[diagnostics.WARN],
		counts[diagnostics.ERROR], counts[diagnostics.FATAL])
}

func writeReport(path string, report diagnostics.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, u := range report.Units {
		for _, d := range u.Diagnostics {
			if _, err := fmt.Fprintln(f, d.String()); err != nil {
				return err
			}
		}
	}
	return nil
}
