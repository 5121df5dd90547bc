// retry.go retries whole transactions on transient SQLite errors.
//
// The busy_timeout pragma absorbs most SQLITE_BUSY waits at the connection
// level, but WAL-mode SQLite can still surface SQLITE_LOCKED or a short
// read (522) when a second process (for example `cdx serve` next to a CLI
// invocation) touches the same file. Those are safe to retry because the
// failed transaction was rolled back.
package store

import (
	"context"
	"math/rand"
	"strings"
	"time"
)

type retryConfig struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

var defaultRetryConfig = retryConfig{
	maxRetries: 3,
	baseDelay:  25 * time.Millisecond,
	maxDelay:   400 * time.Millisecond,
}

// transientMarkers are substrings modernc.org/sqlite puts in its messages
// for errors that resolve on their own.
var transientMarkers = []string{
	"SQLITE_BUSY",
	"SQLITE_LOCKED",
	"IOERR_SHORT_READ",
	"database is locked",
	"database table is locked",
	"(5)",
	"(6)",
	"(522)",
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func retryOnContention(ctx context.Context, fn func() error) error {
	return retryWith(ctx, defaultRetryConfig, fn)
}

// retryWith runs fn until it succeeds, fails permanently, runs out of
// attempts, or ctx is done. The last error is returned.
func retryWith(ctx context.Context, cfg retryConfig, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil || !isTransient(err) || attempt >= cfg.maxRetries {
			return err
		}
		timer := time.NewTimer(backoff(cfg, attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

// backoff is baseDelay*2^attempt capped at maxDelay, plus up to half a
// baseDelay of jitter.
func backoff(cfg retryConfig, attempt int) time.Duration {
	d := cfg.baseDelay << uint(attempt)
	if d > cfg.maxDelay || d <= 0 {
		d = cfg.maxDelay
	}
	if half := int64(cfg.baseDelay / 2); half > 0 {
		d += time.Duration(rand.Int63n(half))
	}
	return d
}
