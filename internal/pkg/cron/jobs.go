package cron

import (
	"context"
	"log/slog"
	"time"
)

// RevocationPurger drops revoked tokens past their expiry.
type RevocationPurger interface {
	PurgeExpired(now time.Time) int
}

// PurgeRevokedTokens returns a job that keeps the logout revocation list bounded.
func PurgeRevokedTokens(purger RevocationPurger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if n := purger.PurgeExpired(time.Now()); n > 0 {
			slog.Info("Purged expired token revocations", "count", n)
		}
		return nil
	}
}

// StreamCounter reports open live-tick streams.
type StreamCounter interface {
	TotalSubscribers() int
}

// ReportOpenStreams returns a job that logs how many live streams are open.
func ReportOpenStreams(counter StreamCounter) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		slog.Info("Live shift streams", "open", counter.TotalSubscribers())
		return nil
	}
}
