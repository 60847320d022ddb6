package confirm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tokenforge/asset-gateway/internal/metrics"
	apperrors "github.com/tokenforge/asset-gateway/pkg/app/errors"
)

// Default index-wait parameters. Retries use a fixed delay, not exponential
// backoff; changing that is a product decision, not an optimization to make
// silently.
const (
	DefaultIndexAttempts = 30
	DefaultIndexDelay    = 2 * time.Second
)

// Probe checks whether the expected record has appeared in the read model.
type Probe func(ctx context.Context) (bool, error)

// IndexWaiter polls the indexed read model until an expected record appears
// or the attempt budget is exhausted.
type IndexWaiter struct {
	attempts int
	delay    time.Duration
	logger   *zap.Logger
}

// NewIndexWaiter creates an index waiter. Non-positive attempts or delay fall
// back to the defaults (30 attempts, 2s apart).
func NewIndexWaiter(attempts int, delay time.Duration, logger *zap.Logger) *IndexWaiter {
	if attempts <= 0 {
		attempts = DefaultIndexAttempts
	}
	if delay <= 0 {
		delay = DefaultIndexDelay
	}
	return &IndexWaiter{
		attempts: attempts,
		delay:    delay,
		logger:   logger,
	}
}

// Wait runs the probe up to the attempt budget with a fixed delay between
// attempts, strictly one probe in flight at a time. It returns the number of
// attempts made. Probe errors count as failed attempts rather than aborting:
// the read model is eventually consistent and a transient miss is expected.
// Exhaustion yields an index timeout carrying the attempt count.
func (w *IndexWaiter) Wait(ctx context.Context, probe Probe) (int, error) {
	var attempt int
	for attempt = 1; attempt <= w.attempts; attempt++ {
		found, err := probe(ctx)
		if err != nil {
			w.logger.Warn("index probe failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		} else if found {
			metrics.IndexWaitAttempts.Observe(float64(attempt))
			return attempt, nil
		}

		if attempt == w.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return attempt, apperrors.UnavailableError(ctx.Err(), "index wait canceled")
		case <-time.After(w.delay):
		}
	}

	metrics.IndexWaitAttempts.Observe(float64(w.attempts))
	return w.attempts, apperrors.IndexTimeoutError(nil,
		fmt.Sprintf("record not indexed after %d attempts", w.attempts)).
		WithMeta("attempts", w.attempts).
		WithMeta("delay", w.delay.String())
}
