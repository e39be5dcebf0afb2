// Package testutil holds helpers shared by twsdash tests.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Usage: go test ./... -update
var update = flag.Bool("update", false, "update golden files")

// GoldenPath returns the path of a golden file under testdata/.
func GoldenPath(name string) string {
	return filepath.Join("testdata", name)
}

// AssertGolden compares got with testdata/<name>, or rewrites the file
// when -update is set. Line endings are normalized before comparing.
func AssertGolden(t testing.TB, got, name string) {
	t.Helper()

	path := GoldenPath(name)

	if *update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create testdata directory: %v", err)
		}

		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("update golden file %s: %v", path, err)
		}

		t.Logf("updated golden file: %s", path)

		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file %s does not exist; run with -update to create it", path)
		}

		t.Fatalf("read golden file %s: %v", path, err)
	}

	if normalize(got) != normalize(string(want)) {
		t.Errorf("output mismatch for %s\n\ngot:\n%s\n\nwant:\n%s\n\nrun with -update to refresh golden files", path, got, want)
	}
}

func normalize(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// IsolateUserDirs points HOME and the XDG roots at fresh temp directories
// and clears TWSDASH_* variables, so tests never read or write the real
// user config. It returns the temp HOME.
func IsolateUserDirs(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))

	// --api-url exports TWSDASH_API_URL, so it is always registered for
	// restore even when unset now.
	keys := []string{"TWSDASH_API_URL", "TWSDASH_DISPLAY_TIMEZONE"}

	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, "TWSDASH_") {
			keys = append(keys, key)
		}
	}

	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	return home
}
