package source

import (
	"errors"
	"fmt"
	"os"

	"github.com/rideinsights/backend/internal/dataset"
	"github.com/rideinsights/backend/internal/normalize"
	"github.com/rideinsights/backend/pkg/config"
	"github.com/rideinsights/backend/pkg/logger"
)

// ErrSourceUnavailable means neither a canonical cache nor a raw source
// file exists. Callers must halt rather than proceed with no data.
var ErrSourceUnavailable = errors.New("neither canonical cache nor raw source available")

// Loader produces the canonical dataset: cache first, raw workbook as
// fallback. The cache is keyed only by its fixed path; unless CompareModTime
// is set, a stale cache wins over a newer source file.
type Loader struct {
	SourcePath     string
	SheetName      string
	CachePath      string
	CompareModTime bool

	// Stat is injectable so the rebuild-vs-reuse decision is testable.
	Stat func(string) (os.FileInfo, error)

	normalizer *normalize.Normalizer
	logger     *logger.Logger
}

// NewLoader creates a loader from the data config
func NewLoader(cfg config.DataConfig, norm *normalize.Normalizer, log *logger.Logger) *Loader {
	return &Loader{
		SourcePath:     cfg.SourcePath,
		SheetName:      cfg.SheetName,
		CachePath:      cfg.CachePath,
		CompareModTime: cfg.CompareModTime,
		Stat:           os.Stat,
		normalizer:     norm,
		logger:         log,
	}
}

// Load returns the canonical dataset. A usable cache skips the raw read
// entirely; otherwise the raw workbook is read, normalized, and written
// back to the cache. A failed cache write is a warning, not an error: the
// in-memory dataset is still returned.
func (l *Loader) Load() (*dataset.Table, error) {
	if l.cacheUsable() {
		t, err := ReadCSV(l.CachePath)
		if err == nil {
			l.logger.WithFields(map[string]interface{}{
				"path": l.CachePath,
				"rows": t.NumRows(),
			}).Info("Loaded canonical dataset from cache")
			return l.normalizer.Normalize(t)
		}
		l.logger.WithError(err).Warn("Cache unreadable, falling back to raw source")
	}

	return l.Rebuild()
}

// Rebuild reads the raw workbook unconditionally, normalizes it, and
// rewrites the cache. Used by Load on a cache miss and by the refresh paths
// to force a rebuild.
func (l *Loader) Rebuild() (*dataset.Table, error) {
	if l.SourcePath == "" {
		return nil, ErrSourceUnavailable
	}
	if _, err := l.Stat(l.SourcePath); err != nil {
		return nil, fmt.Errorf("%w: checked %s and %s", ErrSourceUnavailable, l.CachePath, l.SourcePath)
	}

	raw, err := ReadWorkbook(l.SourcePath, l.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw source: %w", err)
	}

	canonical, err := l.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}

	if l.CachePath != "" {
		if err := WriteCSV(l.CachePath, canonical); err != nil {
			// Cache write failure is recoverable: proceed in-memory.
			l.logger.WithError(err).Warn("Could not write canonical cache")
		} else {
			l.logger.WithFields(map[string]interface{}{
				"path": l.CachePath,
				"rows": canonical.NumRows(),
			}).Info("Canonical cache written")
		}
	}

	return canonical, nil
}

// SourceNewerThanCache reports whether both files exist and the raw source
// has a later modification time than the cache. The refresh job uses this
// as its staleness signal.
func (l *Loader) SourceNewerThanCache() bool {
	if l.SourcePath == "" || l.CachePath == "" {
		return false
	}
	srcInfo, err := l.Stat(l.SourcePath)
	if err != nil {
		return false
	}
	cacheInfo, err := l.Stat(l.CachePath)
	if err != nil {
		return false
	}
	return srcInfo.ModTime().After(cacheInfo.ModTime())
}

// cacheUsable decides reuse-vs-rebuild. The cache must exist; with
// CompareModTime set it must also be at least as fresh as the source.
func (l *Loader) cacheUsable() bool {
	if l.CachePath == "" {
		return false
	}
	if _, err := l.Stat(l.CachePath); err != nil {
		return false
	}
	if l.CompareModTime && l.SourceNewerThanCache() {
		l.logger.Info("Source file newer than cache, rebuilding")
		return false
	}
	return true
}
