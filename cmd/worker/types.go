package main

import (
	"context"

	"github.com/wtaconnect/backoffice/internal/audit"
)

// eventRecorder persists one audit event; false means it was already recorded.
type eventRecorder interface {
	Record(ctx context.Context, ev audit.Event) (bool, error)
}

// batchStats summarizes one SQS batch for the log line.
type batchStats struct {
	Recorded   int
	Duplicates int
	Failed     int
}
