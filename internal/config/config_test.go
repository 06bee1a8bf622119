// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	m := NewManager()
	c := m.Get()
	require.Equal(t, "INFO", c.LoggingLevel)
	require.Equal(t, 60, c.SolverTimeoutSeconds)
	require.False(t, c.Dev)
}

func TestLoadPrecedenceProjectOverUser(t *testing.T) {
	dir := t.TempDir()
	userPath := filepath.Join(dir, "user.yaml")
	projectPath := filepath.Join(dir, "project.yaml")

	require.NoError(t, os.WriteFile(userPath, []byte("logging_level: WARN\nmodule_name: user_module\n"), 0o644))
	require.NoError(t, os.WriteFile(projectPath, []byte("logging_level: ERROR\n"), 0o644))

	m := NewManager()
	require.NoError(t, m.Load(userPath, projectPath))
	c := m.Get()
	require.Equal(t, "ERROR", c.LoggingLevel, "project config must win over user config")
	require.Equal(t, "user_module", c.ModuleName, "user config still applies where project is silent")
}

func TestFlagsOverrideBoth(t *testing.T) {
	dir := t.TempDir()
	userPath := filepath.Join(dir, "user.yaml")
	projectPath := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(userPath, []byte("logging_level: WARN\n"), 0o644))
	require.NoError(t, os.WriteFile(projectPath, []byte("logging_level: ERROR\n"), 0o644))

	m := NewManager()
	require.NoError(t, m.Load(userPath, projectPath))
	m.SetFlags(Config{LoggingLevel: "debug"})
	require.Equal(t, "debug", m.Get().LoggingLevel, "a flag must win over both config files")
}

func TestMissingConfigFilesAreNotErrors(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Load("/nonexistent/user.yaml", "/nonexistent/project.yaml"))
	require.Equal(t, "INFO", m.Get().LoggingLevel)
}

func TestProjectConfigPath(t *testing.T) {
	require.Equal(t, filepath.Join("/repo", "nestml.yaml"), ProjectConfigPath("/repo"))
}
