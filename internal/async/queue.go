package async

import (
	"context"
	"time"
)

// Job is one file waiting to be analyzed.
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Handler processes a single job. Errors are logged by the queue, never retried.
type Handler func(ctx context.Context, job Job) error
