package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ledgerlink-dev/ledgerlink/internal/database"
)

// CheckpointJob periodically forces a WAL checkpoint so the write-ahead log
// does not grow unbounded between backups.
type CheckpointJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewCheckpointJob creates the WAL maintenance job.
func NewCheckpointJob(db *database.DB, log zerolog.Logger) *CheckpointJob {
	return &CheckpointJob{
		db:  db,
		log: log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name.
func (j *CheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run checkpoints the database in TRUNCATE mode, resetting the WAL file.
func (j *CheckpointJob) Run() error {
	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		return fmt.Errorf("wal checkpoint failed for %s: %w", j.db.Name(), err)
	}
	j.log.Debug().Str("database", j.db.Name()).Msg("WAL checkpoint complete")
	return nil
}
