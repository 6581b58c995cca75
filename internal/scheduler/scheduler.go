package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rideinsights/backend/pkg/logger"
)

// Job represents a scheduled job
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron schedule expression (with seconds),
	// e.g. "0 */5 * * * *" for every five minutes.
	Schedule() string
}

// JobResult records one execution.
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	cron   *cron.Cron
	logger *logger.Logger
	jobs   map[string]Job
	last   map[string]JobResult
	mu     sync.RWMutex
}

// New creates a new scheduler
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		logger: log,
		jobs:   make(map[string]Job),
		last:   make(map[string]JobResult),
	}
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobName := job.Name()
	if _, exists := s.jobs[jobName]; exists {
		return fmt.Errorf("job %s already exists", jobName)
	}

	_, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", jobName, err)
	}

	s.jobs[jobName] = job

	s.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// LastResult returns the most recent result for a job
func (s *Scheduler) LastResult(jobName string) (JobResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.last[jobName]
	return result, ok
}

// runJob executes a job and records its result
func (s *Scheduler) runJob(job Job) {
	jobName := job.Name()
	startTime := time.Now()

	s.logger.WithField("job", jobName).Debug("Job started")

	err := job.Run(context.Background())
	duration := time.Since(startTime)

	result := JobResult{
		JobName:   jobName,
		StartTime: startTime,
		Duration:  duration,
		Success:   err == nil,
	}
	if err != nil {
		result.Error = err.Error()
	}

	s.mu.Lock()
	s.last[jobName] = result
	s.mu.Unlock()

	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"job":      jobName,
			"duration": duration,
			"error":    err.Error(),
		}).Error("Job failed")
		return
	}

	s.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"duration": duration,
	}).Debug("Job completed")
}
