// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"path/filepath"
	"strings"
)

// DeriveNaming maps a source path to its package/artifact names: given
// FILE=ROOT/a/b/c.nestml with model root ROOT, the package name is "a.b"
// and the artifact name is "c". Without a model root (or when path falls
// outside it), the rule falls back to the full path stem's
// longest-dotted-prefix / final-segment split.
func DeriveNaming(path, modelRoot string) (packageName, artifactName string) {
	path = filepath.ToSlash(filepath.Clean(path))

	if modelRoot != "" {
		root := filepath.ToSlash(filepath.Clean(modelRoot))
		if rel, err := filepath.Rel(root, path); err == nil && rel != ".." && !strings.HasPrefix(rel, "../") {
			rel = filepath.ToSlash(rel)
			dir, file := splitLast(rel)
			stem := strings.TrimSuffix(file, filepath.Ext(file))
			if dir == "" {
				return "", stem
			}
			return strings.ReplaceAll(dir, "/", "."), stem
		}
	}

	_, file := splitLast(path)
	stem := strings.TrimSuffix(file, filepath.Ext(file))
	idx := strings.LastIndex(stem, ".")
	if idx < 0 {
		return "", stem
	}
	return stem[:idx], stem[idx+1:]
}

// splitLast splits a slash-separated path into its directory (without a
// trailing slash) and final segment.
func splitLast(p string) (dir, file string) {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return "", p
	}
	return p[:idx], p[idx+1:]
}
