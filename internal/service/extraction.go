package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"mockinterview/internal/audio"
)

// ExtractionPool runs audio feature extraction on a bounded set of
// goroutines, away from the request goroutine.
type ExtractionPool struct {
	sem     *semaphore.Weighted
	timeout time.Duration
	logger  *zap.Logger
}

func NewExtractionPool(workers int, timeout time.Duration, logger *zap.Logger) *ExtractionPool {
	if workers < 1 {
		workers = 1
	}
	return &ExtractionPool{
		sem:     semaphore.NewWeighted(int64(workers)),
		timeout: timeout,
		logger:  logger,
	}
}

type extractResult struct {
	features *audio.Features
	err      error
}

// Extract decodes a wav payload and computes its features. Waiting for a
// worker counts against the same timeout as the work itself.
func (p *ExtractionPool) Extract(ctx context.Context, wav []byte) (*audio.Features, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("no extraction worker available: %w", err)
	}

	done := make(chan extractResult, 1)
	go func() {
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				done <- extractResult{err: fmt.Errorf("extraction panic: %v", r)}
			}
		}()

		start := time.Now()
		sig, err := audio.Decode(bytes.NewReader(wav))
		if err != nil {
			done <- extractResult{err: err}
			return
		}
		f, err := audio.Extract(ctx, sig)
		p.logger.Debug("audio features extracted",
			zap.Duration("took", time.Since(start)),
			zap.Float64("seconds", sig.Duration()),
			zap.Error(err),
		)
		done <- extractResult{features: f, err: err}
	}()

	select {
	case res := <-done:
		return res.features, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("audio extraction abandoned: %w", ctx.Err())
	}
}
