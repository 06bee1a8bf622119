// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Discover expands paths (a mix of .nestml files and directories) into a
// sorted, de-duplicated list of .nestml files, recursing into directories.
// This discovery order is the order the merged diagnostics report keeps,
// no matter which unit finishes first when units run concurrently.
func Discover(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			addFile(&out, seen, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".nestml" {
				return nil
			}
			addFile(&out, seen, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}

func addFile(out *[]string, seen map[string]bool, path string) {
	if seen[path] {
		return
	}
	seen[path] = true
	*out = append(*out, path)
}
