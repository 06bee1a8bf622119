// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nlog is the orchestrator's structured progress logger: a
// package-level *slog.Logger every phase narrates through on entry/exit
// (unit name, elapsed time). It is deliberately separate from
// internal/diagnostics, which is the compiler's user-facing, severity-leveled
// output contract and must stay stable regardless of logging_level; nlog
// is operator-facing noise that can be turned up or down freely.
package nlog

import (
	"io"
	"log/slog"
	"os"
)

// Log is the package-level logger every phase writes through. Init
// replaces it; until Init is called it discards everything, so packages
// that log opportunistically (e.g. in tests) never panic on a nil logger.
var Log = slog.New(slog.NewTextHandler(io.Discard, nil))

// Init builds the process-wide logger from a level name and an optional log
// file path. Output always goes to stdout; when logFile is non-empty it
// also goes there.
func Init(level, logFile string) error {
	var logLevel slog.Level
	switch level {
	case "debug", "DEBUG":
		logLevel = slog.LevelDebug
	case "info", "INFO", "":
		logLevel = slog.LevelInfo
	case "warn", "WARN", "warning", "WARNING":
		logLevel = slog.LevelWarn
	case "error", "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	writers := []io.Writer{os.Stdout}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("time", a.Value.Time().Format("15:04:05"))
			}
			return a
		},
	})
	Log = slog.New(handler)
	return nil
}

// PhaseStart logs phase entry at Debug level, named for the unit's artifact
// and the phase that is about to run.
func PhaseStart(unit, phase string) {
	Log.Debug("phase start", "unit", unit, "phase", phase)
}

// PhaseDone logs phase completion at Debug level with its wall-clock cost.
func PhaseDone(unit, phase string, elapsedMS float64) {
	Log.Debug("phase done", "unit", unit, "phase", phase, "elapsed_ms", elapsedMS)
}

// UnitDone logs a compilation unit's final outcome at Info level,
// including which phase dominated its wall-clock cost.
func UnitDone(unit string, maxSeverity string, elapsedMS float64, slowestPhase string) {
	Log.Info("unit done", "unit", unit, "max_severity", maxSeverity, "elapsed_ms", elapsedMS, "slowest_phase", slowestPhase)
}
