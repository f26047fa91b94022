package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner removes indexed passages older than a retention window.
type Cleaner interface {
	DeleteOlderThan(ctx context.Context, days int) (int, error)
}

// TokenPruner removes expired token revocation entries.
type TokenPruner interface {
	Prune(ctx context.Context) (int64, error)
}

// Janitor periodically enforces the retention policy on the search
// index and prunes expired revoked tokens.
type Janitor struct {
	cleaner       Cleaner
	tokens        TokenPruner
	retentionDays int
	interval      time.Duration
	logger        *slog.Logger
}

func New(cleaner Cleaner, tokens TokenPruner, retentionDays int, interval time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		cleaner:       cleaner,
		tokens:        tokens,
		retentionDays: retentionDays,
		interval:      interval,
		logger:        logger,
	}
}

func (j *Janitor) Start() {
	j.logger.Info("Starting retention janitor",
		slog.Int("retention_days", j.retentionDays),
		slog.Duration("interval", j.interval))

	for {
		j.runOnce()
		time.Sleep(j.interval)
	}
}

func (j *Janitor) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	deleted, err := j.cleaner.DeleteOlderThan(ctx, j.retentionDays)
	if err != nil {
		j.logger.Error("Retention cleanup failed", slog.String("error", err.Error()))
	} else if deleted > 0 {
		j.logger.Info("Removed expired passages", slog.Int("deleted", deleted))
	}

	pruned, err := j.tokens.Prune(ctx)
	if err != nil {
		j.logger.Error("Token pruning failed", slog.String("error", err.Error()))
	} else if pruned > 0 {
		j.logger.Info("Pruned expired token revocations", slog.Int64("pruned", pruned))
	}
}
