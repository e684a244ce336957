// Package archive stores projects as .hep files: a ZIP archive holding a
// single project.json manifest.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/hockey/internal/fsutil"
	"github.com/aretw0/hockey/pkg/core"
)

// maxManifestSize bounds the manifest read from an archive.
const maxManifestSize = 64 << 20

// Report describes compatibility notes gathered while loading a project.
type Report struct {
	// ManifestVersion is the version declared by the file. Empty for bare JSON projects.
	ManifestVersion string
	// Bare is set when the file was a plain JSON project rather than an archive.
	Bare bool
	// Legacy counts markers translated from the point-marker format.
	Legacy int
	// Warnings lists non-fatal problems.
	Warnings []string
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Store implements core.ProjectStore on the local filesystem.
type Store struct {
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	saves    int
	loads    int
	lastPath string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the time source used to stamp modified_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ core.ProjectStore = (*Store)(nil)

// EnsureExt returns path with the archive extension appended if missing.
func EnsureExt(path string) string {
	if strings.EqualFold(filepath.Ext(path), Ext) {
		return path
	}
	return path + Ext
}

// Save writes p to path atomically. The archive extension is enforced, and on
// success p.ModifiedAt and p.FilePath are updated.
func (s *Store) Save(ctx context.Context, p *core.Project, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == nil {
		return core.ErrNoProject
	}
	path = EnsureExt(path)
	now := s.now()

	data, err := json.MarshalIndent(encodeProject(p, now), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", core.ErrFormat, path, err)
	}

	err = fsutil.WriteFileAtomic(path, 0644, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		f, err := zw.Create(ManifestFile)
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			return err
		}
		return zw.Close()
	})
	if err != nil {
		return fmt.Errorf("%w: save %s: %v", core.ErrIO, path, err)
	}

	p.ModifiedAt = now
	p.FilePath = path

	s.mu.Lock()
	s.saves++
	s.lastPath = path
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("project saved", "path", path, "markers", len(p.Markers))
	}
	return nil
}

// Load reads the project at path, logging any compatibility warnings.
func (s *Store) Load(ctx context.Context, path string) (*core.Project, error) {
	p, rep, err := s.LoadWithReport(ctx, path)
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		for _, w := range rep.Warnings {
			s.logger.Warn("project load", "path", path, "warning", w)
		}
		if rep.Legacy > 0 {
			s.logger.Info("converted legacy markers", "path", path, "count", rep.Legacy)
		}
	}
	return p, nil
}

// LoadWithReport reads the project at path and returns the compatibility
// notes gathered along the way.
func (s *Store) LoadWithReport(ctx context.Context, path string) (*core.Project, Report, error) {
	var rep Report
	if err := ctx.Err(); err != nil {
		return nil, rep, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, rep, fmt.Errorf("%w: %v", core.ErrIO, err)
	}

	var data []byte
	zr, zerr := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	switch {
	case zerr == nil:
		data, err = readManifest(zr)
		if err != nil {
			return nil, rep, err
		}
	case looksLikeJSON(raw):
		data = raw
		rep.Bare = true
	default:
		return nil, rep, fmt.Errorf("%w: %s is not a project archive: %v", core.ErrIO, path, zerr)
	}

	var p *core.Project
	if rep.Bare {
		var doc projectDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, rep, fmt.Errorf("%w: %v", core.ErrFormat, err)
		}
		p, err = decodeProject(&doc, &rep)
	} else {
		var m manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, rep, fmt.Errorf("%w: %v", core.ErrFormat, err)
		}
		rep.ManifestVersion = m.Version
		if m.Version != core.ManifestVersion {
			rep.warn("manifest version %q differs from %q", m.Version, core.ManifestVersion)
		}
		p, err = decodeProject(m.Project, &rep)
	}
	if err != nil {
		return nil, rep, err
	}
	p.FilePath = path

	s.mu.Lock()
	s.loads++
	s.lastPath = path
	s.mu.Unlock()

	return p, rep, nil
}

func readManifest(zr *zip.Reader) ([]byte, error) {
	f, err := zr.Open(ManifestFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: archive has no %s", core.ErrFormat, ManifestFile)
		}
		return nil, fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxManifestSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", core.ErrIO, ManifestFile, err)
	}
	return data, nil
}

func looksLikeJSON(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}
