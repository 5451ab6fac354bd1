// Package scan discovers source files for a generation run.
package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// skipDirs are VCS and dependency directories never worth descending into.
var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	".build":       {},
	"node_modules": {},
	"Pods":         {},
	"Carthage":     {},
	"DerivedData":  {},
}

// SourceFiles walks root recursively and returns the sorted absolute paths
// of every file with the given extension (e.g. ".swift"). Sorting keeps
// file order stable across runs, which resume keys rely on for sane logs.
func SourceFiles(root, ext string) ([]string, error) {
	ext = strings.ToLower(ext)
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if _, skip := skipDirs[filepath.Base(path)]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) == ext {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
