package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryConfig bounds the attempts made to open a camera device.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxElapsed      time.Duration
}

// DefaultRetryConfig returns the retry policy used on Start.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 250 * time.Millisecond,
		MaxElapsed:      5 * time.Second,
	}
}

// OpenWithRetry opens cam, retrying with exponential backoff while the
// device is busy or still initializing. It gives up after cfg.MaxRetries
// retries or when ctx is done.
func OpenWithRetry(ctx context.Context, cam Camera, cfg RetryConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	ebo := backoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		ebo.InitialInterval = cfg.InitialInterval
	}
	ebo.MaxElapsedTime = cfg.MaxElapsed
	ebo.Reset()

	var b backoff.BackOff = ebo
	if cfg.MaxRetries >= 0 {
		b = backoff.WithMaxRetries(ebo, uint64(cfg.MaxRetries))
	}

	attempt := 0
	op := func() error {
		attempt++
		return cam.Open()
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("camera open failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return fmt.Errorf("open camera after %d attempts: %w", attempt, err)
	}
	return nil
}
