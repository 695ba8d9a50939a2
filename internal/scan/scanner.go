// Package scan enumerates candidate source files for the pipeline.
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Scanner finds mutation candidates under a target directory. Test files
// are excluded from the candidate set but remain on disk where the
// iteration controller can locate them as validation companions.
type Scanner struct {
	extension string
}

// NewScanner creates a Scanner for the given source extension (".py" when
// empty).
func NewScanner(extension string) *Scanner {
	if extension == "" {
		extension = ".py"
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return &Scanner{extension: extension}
}

// Scan walks the full subtree under targetDir and returns candidate file
// paths sorted lexically so reruns are reproducible. An empty result is not
// an error: the caller treats it as a clean exit.
func (s *Scanner) Scan(targetDir string) ([]string, error) {
	var candidates []string

	err := filepath.WalkDir(targetDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if skippableDir(entry.Name()) && path != targetDir {
				return filepath.SkipDir
			}
			return nil
		}
		name := entry.Name()
		if !strings.HasSuffix(name, s.extension) {
			return nil
		}
		if IsTestFile(name) {
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", targetDir, err)
	}

	sort.Strings(candidates)
	return candidates, nil
}

// IsTestFile reports whether a file name follows the test naming
// convention: a "test_" prefix or a "_test" suffix on the stem.
func IsTestFile(name string) bool {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.HasPrefix(stem, "test_") || strings.HasSuffix(stem, "_test")
}

func skippableDir(name string) bool {
	if name == "__pycache__" || name == "node_modules" {
		return true
	}
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
