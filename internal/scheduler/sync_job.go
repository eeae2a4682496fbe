package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerlink-dev/ledgerlink/internal/syncer"
)

// syncRunner is the engine surface the job needs.
type syncRunner interface {
	SyncAll(ctx context.Context) ([]syncer.Result, error)
}

// SyncJob runs a batch sync across all references.
type SyncJob struct {
	engine  syncRunner
	timeout time.Duration
	log     zerolog.Logger
}

// NewSyncJob creates the periodic sync job.
func NewSyncJob(engine syncRunner, log zerolog.Logger) *SyncJob {
	return &SyncJob{
		engine:  engine,
		timeout: 15 * time.Minute,
		log:     log.With().Str("job", "sync").Logger(),
	}
}

// Name returns the job name.
func (j *SyncJob) Name() string {
	return "sync"
}

// Run syncs every reference and logs each outcome. The job errors only when
// all references failed; isolated failures retry on the next run.
func (j *SyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	results, err := j.engine.SyncAll(ctx)
	if err != nil {
		return fmt.Errorf("batch sync failed: %w", err)
	}

	failed := 0
	for _, result := range results {
		event := j.log.Info()
		if result.Status == syncer.StatusFailed {
			failed++
			event = j.log.Error().Err(result.Err)
		}
		event.
			Str("reference", result.Name).
			Str("status", string(result.Status)).
			Int("created", result.Created).
			Int("duplicates", result.Duplicates).
			Msg("Reference synced")
	}

	if len(results) > 0 && failed == len(results) {
		return fmt.Errorf("all %d references failed to sync", failed)
	}
	return nil
}
