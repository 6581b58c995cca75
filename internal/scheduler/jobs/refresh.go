package jobs

import (
	"context"

	"github.com/rideinsights/backend/internal/pipeline"
	"github.com/rideinsights/backend/pkg/logger"
)

// RefreshJob re-checks the raw source's modification time and rebuilds the
// canonical cache and the store when the source has changed. This is the
// cache-invalidation hook for the otherwise path-keyed cache.
type RefreshJob struct {
	pipeline *pipeline.Pipeline
	schedule string
	logger   *logger.Logger
}

// NewRefreshJob creates a new refresh job
func NewRefreshJob(p *pipeline.Pipeline, schedule string, log *logger.Logger) *RefreshJob {
	return &RefreshJob{pipeline: p, schedule: schedule, logger: log}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "dataset-refresh"
}

// Schedule returns the cron schedule expression
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run performs the staleness check and, if needed, the rebuild
func (j *RefreshJob) Run(ctx context.Context) error {
	refreshed, err := j.pipeline.RefreshIfStale(ctx)
	if err != nil {
		return err
	}
	if refreshed {
		j.logger.Info("Dataset refreshed from source")
	}
	return nil
}
