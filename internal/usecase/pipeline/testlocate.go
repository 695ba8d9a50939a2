package pipeline

import (
	"os"
	"path/filepath"
	"strings"
)

// LocateCompanionTest returns the path of the test file paired with a source
// file, checking the conventional locations in order:
//
//	test_<name>.py        (same directory)
//	<name>_test.py        (same directory)
//	tests/test_<name>.py  (tests subdirectory)
//
// The first existing candidate wins. An empty string means no companion test
// exists, which puts validation in score-only mode.
func LocateCompanionTest(file string) string {
	dir := filepath.Dir(file)
	base := filepath.Base(file)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	candidates := []string{
		filepath.Join(dir, "test_"+base),
		filepath.Join(dir, stem+"_test"+filepath.Ext(base)),
		filepath.Join(dir, "tests", "test_"+base),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
