// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config is the layered configuration manager for nestmlc: it loads
// a user config file, a project config file, and flag overrides, and merges
// them with flags winning over the project file winning over the user file
// winning over built-in defaults.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every recognized nestmlc option.
type Config struct {
	InputPath    string `yaml:"input_path,omitempty"`
	TargetPath   string `yaml:"target_path,omitempty"`
	LoggingLevel string `yaml:"logging_level,omitempty"`
	ModuleName   string `yaml:"module_name,omitempty"`
	Suffix       string `yaml:"suffix,omitempty"`
	Dev          bool   `yaml:"dev,omitempty"`
	StoreLog     bool   `yaml:"store_log,omitempty"`
	SolverAddr   string `yaml:"solver_addr,omitempty"`
	// SolverTimeoutSeconds bounds one unit's solver round trip; 0 means
	// "use solver.DefaultTimeout".
	SolverTimeoutSeconds int `yaml:"solver_timeout_seconds,omitempty"`
}

// Manager loads and merges the three layers. The zero Manager is usable;
// Load populates it.
type Manager struct {
	userConfig    Config
	projectConfig Config
	flagConfig    Config
	merged        Config
}

// NewManager returns an empty Manager with built-in defaults already
// merged in, so Get is meaningful even before Load is called.
func NewManager() *Manager {
	m := &Manager{}
	m.merge()
	return m
}

// Load reads the user config file (userConfigPath) and the project config
// file (projectConfigPath), then re-merges. A missing file at either path
// is not an error; every option is optional.
func (m *Manager) Load(userConfigPath, projectConfigPath string) error {
	if err := loadYAML(userConfigPath, &m.userConfig); err != nil {
		return err
	}
	if err := loadYAML(projectConfigPath, &m.projectConfig); err != nil {
		return err
	}
	m.merge()
	return nil
}

// SetFlags records the CLI flag layer, which always wins over both config
// files. Callers pass only the flags the user actually set; Config's
// zero values mean "not set" at this layer by convention, same as the
// other two layers.
func (m *Manager) SetFlags(c Config) {
	m.flagConfig = c
	m.merge()
}

func loadYAML(path string, into *Config) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, into)
}

func (m *Manager) merge() {
	d := defaults()
	m.merged = Config{
		InputPath:            firstNonEmpty(m.flagConfig.InputPath, m.projectConfig.InputPath, m.userConfig.InputPath, d.InputPath),
		TargetPath:           firstNonEmpty(m.flagConfig.TargetPath, m.projectConfig.TargetPath, m.userConfig.TargetPath, d.TargetPath),
		LoggingLevel:         firstNonEmpty(m.flagConfig.LoggingLevel, m.projectConfig.LoggingLevel, m.userConfig.LoggingLevel, d.LoggingLevel),
		ModuleName:           firstNonEmpty(m.flagConfig.ModuleName, m.projectConfig.ModuleName, m.userConfig.ModuleName, d.ModuleName),
		Suffix:               firstNonEmpty(m.flagConfig.Suffix, m.projectConfig.Suffix, m.userConfig.Suffix, d.Suffix),
		Dev:                  firstTrue(m.flagConfig.Dev, m.projectConfig.Dev, m.userConfig.Dev, d.Dev),
		StoreLog:             firstTrue(m.flagConfig.StoreLog, m.projectConfig.StoreLog, m.userConfig.StoreLog, d.StoreLog),
		SolverAddr:           firstNonEmpty(m.flagConfig.SolverAddr, m.projectConfig.SolverAddr, m.userConfig.SolverAddr, d.SolverAddr),
		SolverTimeoutSeconds: firstNonZero(m.flagConfig.SolverTimeoutSeconds, m.projectConfig.SolverTimeoutSeconds, m.userConfig.SolverTimeoutSeconds, d.SolverTimeoutSeconds),
	}
}

// defaults returns the built-in defaults, the lowest-precedence layer.
func defaults() Config {
	return Config{
		LoggingLevel:         "INFO",
		SolverTimeoutSeconds: 60,
	}
}

// Get returns the merged configuration.
func (m *Manager) Get() Config {
	return m.merged
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

// firstTrue returns the highest-precedence true flag, since a bool config
// layer has no clean "unset" sentinel: any layer setting true wins.
func firstTrue(vals ...bool) bool {
	for _, v := range vals {
		if v {
			return true
		}
	}
	return false
}
