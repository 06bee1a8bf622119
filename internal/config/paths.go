// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns $XDG_CONFIG_HOME/nestml/config.yaml, falling back
// to $HOME/.config/nestml/config.yaml when XDG_CONFIG_HOME is unset
//.
func UserConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "nestml", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "nestml", "config.yaml"), nil
}

// ProjectConfigPath returns ./nestml.yaml relative to dir.
func ProjectConfigPath(dir string) string {
	return filepath.Join(dir, "nestml.yaml")
}
