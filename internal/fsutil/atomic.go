// Package fsutil holds filesystem helpers shared by the adapters.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TempFilePrefix marks in-flight writes. Watchers and globbing skip it.
const TempFilePrefix = ".hockey-tmp-"

// WriteFileAtomic streams content produced by write into a temp file next to
// filename and renames it into place. On any failure the target is untouched
// and the temp file is removed.
func WriteFileAtomic(filename string, perm os.FileMode, write func(w io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	name := tmp.Name()
	closed := false
	defer func() {
		if !closed {
			tmp.Close()
		}
		if err != nil {
			os.Remove(name)
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", filename, err)
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(name, perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err = os.Rename(name, filename); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filename, err)
	}
	return nil
}

// WriteFile writes data atomically.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	return WriteFileAtomic(filename, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
