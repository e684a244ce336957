package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/hockey/pkg/adapters/archive"
)

// ErrAmbiguous is returned when a directory holds more than one project.
var ErrAmbiguous = errors.New("more than one project found")

// FindProject resolves a project file argument.
// A path to an existing file is returned as is; a path without extension
// is tried with .hep appended. For a directory, FindProject looks upwards
// for the first directory containing .hep files and returns the single
// project found there.
func FindProject(arg string) (string, error) {
	if arg == "" {
		arg = "."
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err == nil && !info.IsDir() {
		return abs, nil
	}
	if err != nil {
		withExt := archive.EnsureExt(abs)
		if hasFile(withExt) {
			return withExt, nil
		}
		return "", fmt.Errorf("project not found: %s", arg)
	}

	dir := abs
	for {
		matches, err := doublestar.Glob(os.DirFS(dir), "*"+archive.Ext)
		if err != nil {
			return "", err
		}
		matches = dropHidden(matches)
		switch len(matches) {
		case 0:
		case 1:
			return filepath.Join(dir, matches[0]), nil
		default:
			return "", fmt.Errorf("%w in %s: %s", ErrAmbiguous, dir, strings.Join(matches, ", "))
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no project found from %s", arg)
}

func dropHidden(names []string) []string {
	out := names[:0]
	for _, n := range names {
		if !strings.HasPrefix(n, ".") {
			out = append(out, n)
		}
	}
	return out
}

func hasFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
