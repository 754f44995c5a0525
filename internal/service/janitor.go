package service

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"mockinterview/internal/artifact"
	"mockinterview/internal/repository"
)

const sweepTimeout = 5 * time.Minute

// Janitor periodically removes leftovers: audio whose session is gone and,
// when staleAfter is set, unfinished sessions nobody touched for that long.
type Janitor struct {
	cron       *cron.Cron
	svc        *InterviewService
	schedule   string
	staleAfter time.Duration
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewJanitor creates a janitor running on a standard cron schedule
func NewJanitor(svc *InterviewService, schedule string, staleAfter time.Duration, logger *zap.Logger) *Janitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Janitor{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		svc:        svc,
		schedule:   schedule,
		staleAfter: staleAfter,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start registers the sweep and starts the scheduler. An empty schedule disables it.
func (j *Janitor) Start() error {
	if j.schedule == "" {
		j.logger.Info("janitor disabled")
		return nil
	}

	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(j.ctx, sweepTimeout)
		defer cancel()
		if err := j.Sweep(ctx); err != nil {
			j.logger.Error("janitor sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("janitor started", zap.String("schedule", j.schedule), zap.Duration("stale_after", j.staleAfter))
	return nil
}

// Stop waits for a running sweep to finish
func (j *Janitor) Stop() {
	j.cancel()
	<-j.cron.Stop().Done()
	j.logger.Info("janitor stopped")
}

// Sweep runs one cleanup pass
func (j *Janitor) Sweep(ctx context.Context) error {
	var errs []error

	if j.staleAfter > 0 {
		n, err := j.svc.PurgeStale(ctx, j.svc.now().UTC().Add(-j.staleAfter))
		if err != nil {
			errs = append(errs, err)
		}
		if n > 0 {
			j.logger.Info("stale sessions removed", zap.Int("count", n))
		}
	}

	n, err := j.svc.SweepOrphanArtifacts(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	if n > 0 {
		j.logger.Info("orphan audio removed", zap.Int("count", n))
	}

	return errors.Join(errs...)
}

// SweepOrphanArtifacts deletes audio belonging to sessions that no longer exist
func (s *InterviewService) SweepOrphanArtifacts(ctx context.Context) (int, error) {
	keys, err := s.artifacts.List(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool)
	removed := 0
	for _, key := range keys {
		sessionID, _, ok := artifact.ParseKey(key)
		if !ok || seen[sessionID] {
			continue
		}
		seen[sessionID] = true

		exists, err := s.store.SessionExists(ctx, sessionID)
		if err != nil {
			return removed, err
		}
		if exists {
			continue
		}
		n, err := s.artifacts.DeleteSession(ctx, sessionID)
		removed += n
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// PurgeStale deletes unfinished sessions last updated before idleSince.
// Sessions busy with a submission are skipped until the next pass.
func (s *InterviewService) PurgeStale(ctx context.Context, idleSince time.Time) (int, error) {
	stale, err := s.store.ListStaleSessions(ctx, idleSince)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, sess := range stale {
		ok, err := s.purge(ctx, sess.ID, idleSince)
		if errors.Is(err, ErrSessionBusy) {
			continue
		}
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

func (s *InterviewService) purge(ctx context.Context, sessionID string, idleSince time.Time) (bool, error) {
	release, err := s.acquire(ctx, sessionID)
	if err != nil {
		return false, err
	}
	defer release()

	deleted := false
	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		deleted = false
		sess, err := tx.GetSession(ctx, sessionID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if sess.Completed || !sess.UpdatedAt.Before(idleSince) {
			return nil
		}
		if err := tx.DeleteSession(ctx, sessionID); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if deleted {
		s.afterDelete(ctx, sessionID)
		s.logger.Info("stale session expired", zap.String("session_id", sessionID))
	}
	return deleted, nil
}
