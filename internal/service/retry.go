package service

import (
	"context"
	"math/rand"
	"time"
)

const (
	retryAttempts    = 3
	retryBaseBackoff = 100 * time.Millisecond
)

// retryTransient reintenta escrituras simples contra el store con backoff
// exponencial y jitter. Las escrituras de trust y memorias no necesitan orden
// estricto pero no se pueden perder por un fallo transitorio.
func retryTransient(ctx context.Context, fn func() error) error {
	var err error
	backoff := retryBaseBackoff
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		jitter := time.Duration(rand.Int63n(int64(backoff) / 2))
		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return err
}
