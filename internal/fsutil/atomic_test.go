package fsutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readString(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func assertNoTemp(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), TempFilePrefix) {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "game.hep")

	for _, body := range []string{"first", "second, longer than the first"} {
		if err := WriteFile(target, []byte(body), 0644); err != nil {
			t.Fatalf("WriteFile(%q): %v", body, err)
		}
		if got := readString(t, target); got != body {
			t.Errorf("content = %q, want %q", got, body)
		}
	}
	assertNoTemp(t, dir)
}

func TestWriteFileAtomicFailures(t *testing.T) {
	t.Run("Writer Error Keeps Target", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "game.hep")
		if err := os.WriteFile(target, []byte("v1"), 0644); err != nil {
			t.Fatal(err)
		}

		boom := errors.New("encoder failed")
		err := WriteFileAtomic(target, 0644, func(w io.Writer) error {
			_, _ = io.WriteString(w, "half a zip")
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want wrapped %v", err, boom)
		}
		if got := readString(t, target); got != "v1" {
			t.Errorf("target changed to %q", got)
		}
		assertNoTemp(t, dir)
	})

	t.Run("Missing Directory", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "nope", "game.hep")
		if err := WriteFile(target, []byte("x"), 0644); err == nil {
			t.Error("expected an error for a missing directory")
		}
	})
}
