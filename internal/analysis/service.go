// Package analysis orchestrates the analysis pipeline: accept a submission,
// sanitize the logs, call the report generator, and publish the outcome for
// polling.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"postmortem-analysis/internal/jobstore"
	"postmortem-analysis/internal/models"
	"postmortem-analysis/internal/redactor"
	"postmortem-analysis/internal/telemetry"
	"postmortem-analysis/internal/worker"
)

// ReportGenerator produces a markdown postmortem from a snapshot and its
// sanitized log text.
type ReportGenerator interface {
	Generate(ctx context.Context, snapshot models.IncidentSnapshot, sanitizedLog string) (string, error)
}

// Service drives job lifecycles end to end. Exactly one background task owns
// a job after Submit; failures are recorded on the job and never propagate to
// the submitter.
type Service struct {
	store     *jobstore.Store
	redactor  *redactor.Redactor
	generator ReportGenerator
	pool      *worker.Pool

	retention     time.Duration
	sweepInterval time.Duration
	log           *slog.Logger
}

func New(store *jobstore.Store, red *redactor.Redactor, gen ReportGenerator, pool *worker.Pool, retention, sweepInterval time.Duration, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:         store,
		redactor:      red,
		generator:     gen,
		pool:          pool,
		retention:     retention,
		sweepInterval: sweepInterval,
		log:           log,
	}
}

// Submit creates a job for the snapshot, schedules its background analysis
// and returns the job ID immediately. This is the sole entry point for
// starting analysis.
func (s *Service) Submit(snapshot models.IncidentSnapshot) uuid.UUID {
	jobID := s.store.Create(snapshot)
	telemetry.JobsSubmitted.Inc()
	telemetry.ActiveJobsGauge.Set(float64(s.store.ActiveCount()))

	s.pool.Submit(func(ctx context.Context) {
		s.process(ctx, jobID)
	})
	return jobID
}

// Result returns the polling view of a job.
func (s *Service) Result(jobID uuid.UUID) (models.JobResult, bool) {
	return s.store.Get(jobID)
}

// Health reports active (non-terminal) and total job counts.
func (s *Service) Health() (active, total int) {
	return s.store.ActiveCount(), s.store.TotalCount()
}

// process runs exactly once per job. Any error, including a panic inside the
// pipeline, terminates only this job.
func (s *Service) process(ctx context.Context, jobID uuid.UUID) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("analysis panicked", "job_id", jobID, "panic", r)
			s.fail(jobID, "internal error during analysis")
		}
	}()

	s.log.Info("starting analysis", "job_id", jobID)
	s.store.MarkProcessing(jobID)

	snapshot, ok := s.store.Snapshot(jobID)
	if !ok {
		s.fail(jobID, "internal consistency error: job snapshot missing")
		return
	}

	result := s.redactor.Sanitize(snapshot.LogContent)
	telemetry.PIIMasked.Add(float64(result.TotalMasked))

	report, err := s.generator.Generate(ctx, snapshot, result.Sanitized)
	if err != nil {
		s.fail(jobID, fmt.Sprintf("report generation failed: %v", err))
		return
	}

	s.store.MarkCompleted(jobID, report, result.TotalMasked)
	telemetry.JobsCompleted.Inc()
	telemetry.ActiveJobsGauge.Set(float64(s.store.ActiveCount()))
	s.log.Info("analysis completed", "job_id", jobID, "pii_masked", result.TotalMasked)
}

func (s *Service) fail(jobID uuid.UUID, msg string) {
	s.store.MarkFailed(jobID, msg)
	telemetry.JobsFailed.Inc()
	telemetry.ActiveJobsGauge.Set(float64(s.store.ActiveCount()))
	s.log.Error("analysis failed", "job_id", jobID, "reason", msg)
}

// RunSweeper removes expired terminal jobs on a fixed schedule until ctx is
// cancelled.
func (s *Service) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.store.SweepExpired(s.retention, time.Now()); removed > 0 {
				telemetry.JobsSwept.Add(float64(removed))
				s.log.Info("retention sweep removed jobs", "removed", removed, "retention", s.retention)
			}
		}
	}
}
