// Package jobstore keeps analysis job records in memory. Records are
// immutable values replaced whole on every transition, so readers never
// observe a partially built record and the one-writer-per-job invariant
// stays auditable.
package jobstore

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"postmortem-analysis/internal/models"
)

// Store is a concurrency-safe table of job ID -> job record.
type Store struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]models.Job
	log  *slog.Logger
}

func New(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		jobs: make(map[uuid.UUID]models.Job),
		log:  log,
	}
}

// Create inserts a QUEUED job for the snapshot and returns its fresh ID.
// It never fails.
func (s *Store) Create(snapshot models.IncidentSnapshot) uuid.UUID {
	id := uuid.New()
	job := models.Job{
		ID:         id,
		IncidentID: snapshot.IncidentID,
		Snapshot:   snapshot,
		Status:     models.StatusQueued,
		CreatedAt:  time.Now(),
	}

	s.mu.Lock()
	s.jobs[id] = job
	s.mu.Unlock()

	s.log.Info("created analysis job", "job_id", id, "incident_id", snapshot.IncidentID)
	return id
}

// MarkProcessing transitions QUEUED -> PROCESSING. Unknown IDs are a no-op;
// the orchestrator owns the job so this only guards against a sweep race.
func (s *Store) MarkProcessing(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return
	}
	job.Status = models.StatusProcessing
	s.jobs[id] = job
}

// MarkCompleted records the terminal COMPLETED state with the generated
// report and the number of PII entities masked during sanitization.
func (s *Store) MarkCompleted(id uuid.UUID, report string, masked int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return
	}
	now := time.Now()
	job.Status = models.StatusCompleted
	job.MarkdownReport = report
	job.ErrorMessage = ""
	job.PIIEntitiesMasked = masked
	job.CompletedAt = &now
	s.jobs[id] = job
}

// MarkFailed records the terminal FAILED state with a human-readable reason.
// The masked count is reset and no report is kept.
func (s *Store) MarkFailed(id uuid.UUID, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return
	}
	now := time.Now()
	job.Status = models.StatusFailed
	job.MarkdownReport = ""
	job.ErrorMessage = errMsg
	job.PIIEntitiesMasked = 0
	job.CompletedAt = &now
	s.jobs[id] = job
}

// Get returns a non-blocking snapshot view of the job, or false when the ID
// is unknown or already swept.
func (s *Store) Get(id uuid.UUID) (models.JobResult, bool) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return models.JobResult{}, false
	}

	result := models.JobResult{
		JobID:             job.ID,
		IncidentID:        job.IncidentID,
		Status:            job.Status,
		CreatedAt:         job.CreatedAt,
		CompletedAt:       job.CompletedAt,
		PIIEntitiesMasked: job.PIIEntitiesMasked,
	}
	if job.MarkdownReport != "" {
		report := job.MarkdownReport
		result.MarkdownReport = &report
	}
	if job.ErrorMessage != "" {
		errMsg := job.ErrorMessage
		result.ErrorMessage = &errMsg
	}
	return result, true
}

// Snapshot returns the job's input snapshot for the background task.
func (s *Store) Snapshot(id uuid.UUID) (models.IncidentSnapshot, bool) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return models.IncidentSnapshot{}, false
	}
	return job.Snapshot, true
}

// SweepExpired removes terminal jobs created before now-retention and returns
// the removed count. QUEUED and PROCESSING jobs are never removed regardless
// of age; an in-flight job must stay visible to polling.
func (s *Store) SweepExpired(retention time.Duration, now time.Time) int {
	cutoff := now.Add(-retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if job.Status.Terminal() && job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// ActiveCount returns the number of non-terminal jobs.
func (s *Store) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := 0
	for _, job := range s.jobs {
		if !job.Status.Terminal() {
			active++
		}
	}
	return active
}

// TotalCount returns the number of jobs currently held.
func (s *Store) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
