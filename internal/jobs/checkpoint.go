package jobs

import (
	"context"
	"log/slog"
)

// Checkpointer folds the sqlite write-ahead log into the database file.
type Checkpointer interface {
	CheckpointWAL(mode string) error
}

// CheckpointJob keeps the WAL from growing between collection pipeline writes.
type CheckpointJob struct {
	db     Checkpointer
	logger *slog.Logger
}

func NewCheckpointJob(db Checkpointer, logger *slog.Logger) *CheckpointJob {
	return &CheckpointJob{db: db, logger: logger}
}

func (j *CheckpointJob) Name() string { return "wal_checkpoint" }

// Run checkpoints in PASSIVE mode, which never blocks readers.
func (j *CheckpointJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := j.db.CheckpointWAL("PASSIVE"); err != nil {
		return err
	}
	j.logger.Debug("WAL checkpoint completed")
	return nil
}
