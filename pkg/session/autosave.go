package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
)

// RecoveryKeep is how many recovery files are kept per project.
const RecoveryKeep = 5

// ErrNoRecoveryDir is returned by Autosave when no recovery directory is set.
var ErrNoRecoveryDir = errors.New("no recovery directory configured")

func (e *Editor) startAutosave() {
	interval := e.settings.AutosaveInterval
	lifecycle.Go(e.ctx, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if !e.Dirty() {
					continue
				}
				if _, err := e.Autosave(ctx); err != nil && e.logger != nil {
					e.logger.Error("autosave failed", "error", err)
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		if e.logger != nil {
			e.logger.Error("autosave worker panic", "error", err)
		}
	}))
}

// Autosave writes a recovery copy of the project into the recovery directory
// and returns its path. The project's own path and dirty state are unchanged.
func (e *Editor) Autosave(ctx context.Context) (string, error) {
	if e.store == nil {
		return "", ErrNoStore
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return "", ErrClosed
	}
	dir := e.settings.RecoveryDir
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if dir == "" {
		return "", ErrNoRecoveryDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create recovery directory: %w", err)
	}

	prefix := recoveryPrefix(snap.Name)
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.hep", prefix, time.Now().Format("20060102_150405.000")))
	snap.FilePath = ""
	if err := e.store.Save(ctx, snap, path); err != nil {
		return "", err
	}

	e.mu.Lock()
	e.autosaves++
	e.lastAuto = path
	e.mu.Unlock()

	if e.logger != nil {
		e.logger.Info("autosaved", "path", path)
	}
	pruneRecovery(dir, prefix, RecoveryKeep)
	return path, nil
}

// recoveryPrefix reduces a project name to a file-name and glob safe token.
func recoveryPrefix(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "project"
	}
	return b.String()
}

// pruneRecovery keeps the newest keep recovery files for prefix. The
// timestamp suffix sorts chronologically.
func pruneRecovery(dir, prefix string, keep int) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, prefix+"_*.hep"))
	if err != nil || len(matches) <= keep {
		return
	}
	slices.Sort(matches)
	for _, old := range matches[:len(matches)-keep] {
		_ = os.Remove(old)
	}
}

// LatestRecovery returns the most recently written recovery file in dir.
func LatestRecovery(dir string) (string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, "*.hep"))
	if err != nil {
		return "", err
	}
	var (
		best    string
		bestMod time.Time
	)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestMod) {
			best, bestMod = m, info.ModTime()
		}
	}
	if best == "" {
		return "", os.ErrNotExist
	}
	return best, nil
}
