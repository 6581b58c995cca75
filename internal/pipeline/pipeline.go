package pipeline

import (
	"context"
	"errors"

	"github.com/rideinsights/backend/internal/engine"
	"github.com/rideinsights/backend/internal/source"
	"github.com/rideinsights/backend/pkg/logger"
)

// Pipeline ties the source layer to the query engine: one normalization
// pass, one load, then queries run until the next refresh. Single-threaded
// by design; callers serialize access.
type Pipeline struct {
	Loader *source.Loader
	Engine *engine.Engine

	logger *logger.Logger
}

// New creates a new pipeline
func New(loader *source.Loader, eng *engine.Engine, log *logger.Logger) *Pipeline {
	return &Pipeline{Loader: loader, Engine: eng, logger: log}
}

// Bootstrap loads the canonical dataset (cache first) and fills the store.
// A missing input of any kind is fatal and returned as ErrSourceUnavailable;
// a store write failure is logged and absorbed, matching the original
// pipeline, and queries surface their own errors until a refresh succeeds.
func (p *Pipeline) Bootstrap(ctx context.Context) error {
	t, err := p.Loader.Load()
	if err != nil {
		return err
	}

	if err := p.Engine.Load(ctx, t); err != nil {
		p.logger.WithError(err).Warn("Could not write dataset to store; queries will fail until a refresh succeeds")
	}
	return nil
}

// Refresh rebuilds the canonical dataset from the raw source and reloads
// the store, bypassing the cache-reuse decision.
func (p *Pipeline) Refresh(ctx context.Context) error {
	t, err := p.Loader.Rebuild()
	if err != nil {
		return err
	}
	return p.Engine.Load(ctx, t)
}

// RefreshIfStale refreshes only when the raw source is newer than the
// cache. Returns whether a refresh ran.
func (p *Pipeline) RefreshIfStale(ctx context.Context) (bool, error) {
	if !p.Loader.SourceNewerThanCache() {
		return false, nil
	}
	p.logger.Info("Source file changed, rebuilding canonical dataset")
	return true, p.Refresh(ctx)
}

// IsSourceUnavailable reports whether err is the fatal no-input condition.
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, source.ErrSourceUnavailable)
}
