package utils

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry configures the global Sentry hub. An empty dsn leaves it disabled.
func InitSentry(dsn, environment, release string) error {
	if dsn == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          "studio-desk@" + release,
		TracesSampleRate: 0.2,
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	return nil
}

// FlushSentry waits for buffered events before the program exits.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
