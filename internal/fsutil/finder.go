// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// FindFiles resolves paths into a flat list of files whose extension is one
// of extensions. Directories are walked recursively in lexical order; plain
// files are kept in the order given. Each file appears once.
func FindFiles(paths []string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		panic("fsutil: at least one extension is required")
	}

	var files []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if !slices.Contains(extensions, filepath.Ext(p)) {
			return
		}
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		files = append(files, clean)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
