// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

/* ------------ logging helpers (stderr) ------------ */

func Infof(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "[INFO] "+format+"\n", a...)
}
func Warnf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "[WARN] "+format+"\n", a...)
}

/* ------------ local file enumeration ------------ */

// IterFiles walks root and returns every regular file, skipping paths
// that match any of the exclude glob patterns. Patterns are matched
// against the base name and against the slash-separated path relative
// to root.
func IterFiles(root string, exclude []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("walk error: %w", walkErr)
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path error: %w", err)
		}
		if matchesAny(exclude, filepath.ToSlash(rel), d.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func matchesAny(patterns []string, rel, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
		if ok, _ := filepath.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// MakeObjectKey computes the object key for file relative to root,
// keeping the root directory name as the top-level folder
// (e.g. /path/to/data_dir/a/b.txt -> data_dir/a/b.txt).
func MakeObjectKey(file, root string) (string, error) {
	rootName := filepath.Base(filepath.Clean(root))
	if rootName == "." || rootName == string(os.PathSeparator) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return "", fmt.Errorf("cannot resolve root: %w", err)
		}
		rootName = filepath.Base(abs)
	}
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", fmt.Errorf("relative path error: %w", err)
	}
	return rootName + "/" + filepath.ToSlash(rel), nil
}
