// Package testutil provides shared test helpers for the ctxpack test suite.
// Helpers in this package are intended to be used from *_test.go files across
// all internal packages.
package testutil

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

// update controls whether golden files are regenerated instead of compared.
// Pass -update on the test binary command line to regenerate every golden
// file in one pass:
//
//	go test ./... -update
var update = flag.Bool("update", false, "regenerate golden files")

// Golden compares actual byte-for-byte against the golden file stored at
// testdata/golden/<name>.golden relative to the calling test's working
// directory. A mismatch fails the test with the first differing line and
// both full documents; the renderer tests rely on this to pin exact output
// rather than spot-checking substrings.
//
// When the -update flag is set, Golden writes actual to the golden file and
// returns without comparing, so intentional output changes can be committed
// in a single pass. The golden directory is created as needed.
func Golden(t *testing.T, name string, actual []byte) {
	t.Helper()

	path := filepath.Join("testdata", "golden", name+".golden")

	if *update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("golden: create dir for %s: %v", path, err)
		}
		if err := os.WriteFile(path, actual, 0o644); err != nil {
			t.Fatalf("golden: write %s: %v", path, err)
		}
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("golden: read %s: %v (run with -update to generate)", path, err)
	}

	if !bytes.Equal(actual, expected) {
		t.Errorf("golden mismatch for %s, first difference at line %d\n--- want\n%s\n--- got\n%s",
			name, firstDiffLine(expected, actual), expected, actual)
	}
}

// GoldenString is Golden for callers holding a string.
func GoldenString(t *testing.T, name string, actual string) {
	t.Helper()
	Golden(t, name, []byte(actual))
}

// firstDiffLine returns the 1-based line number of the first line on which
// want and got differ, counting a missing trailing line as a difference.
func firstDiffLine(want, got []byte) int {
	wl := bytes.Split(want, []byte("\n"))
	gl := bytes.Split(got, []byte("\n"))
	for i := 0; i < len(wl) && i < len(gl); i++ {
		if !bytes.Equal(wl[i], gl[i]) {
			return i + 1
		}
	}
	return min(len(wl), len(gl)) + 1
}
