package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// backupService is the reliability surface the job needs.
type backupService interface {
	RunBackup(ctx context.Context) (string, error)
	PruneBackups(ctx context.Context) error
}

// BackupJob snapshots the databases, uploads the archive, and prunes old
// remote backups.
type BackupJob struct {
	service backupService
	timeout time.Duration
	log     zerolog.Logger
}

// NewBackupJob creates the periodic backup job.
func NewBackupJob(service backupService, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service: service,
		timeout: 10 * time.Minute,
		log:     log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name.
func (j *BackupJob) Name() string {
	return "backup"
}

// Run performs a backup cycle. A pruning failure is logged but does not
// fail the job; the backup itself already landed.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	key, err := j.service.RunBackup(ctx)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	j.log.Info().Str("key", key).Msg("Backup uploaded")

	if err := j.service.PruneBackups(ctx); err != nil {
		j.log.Warn().Err(err).Msg("Failed to prune old backups")
	}
	return nil
}
