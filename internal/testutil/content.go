package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// ContentDir creates a temporary content directory populated with the
// given Markdown files, keyed by file name. Cleanup rides on t.TempDir.
func ContentDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		WriteFile(t, dir, name, body)
	}
	return dir
}

// WriteFile creates or overwrites one file inside dir.
func WriteFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// Touch pins a file's modification time so change detection can be
// exercised deterministically.
func Touch(t *testing.T, dir, name string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(filepath.Join(dir, name), mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}
}
