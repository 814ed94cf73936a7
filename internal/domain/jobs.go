package domain

import (
	"context"
	"time"
)

// CompileJobCause describes what requested an edition compile.
type CompileJobCause string

const (
	// CompileCauseScheduled means the bot's nightly timer enqueued the job.
	CompileCauseScheduled CompileJobCause = "scheduled"
	// CompileCauseManual means an operator re-triggered the compile out-of-band.
	CompileCauseManual CompileJobCause = "manual"
)

// CompileJob asks the compiler worker to build one day's edition.
type CompileJob struct {
	ID          string          `json:"job_id"`
	Date        string          `json:"date"`
	Cause       CompileJobCause `json:"cause"`
	RequestedAt time.Time       `json:"requested_at"`
}

// CompileAckFunc confirms processing or requests redelivery of a job.
type CompileAckFunc func(success bool) error

// CompileQueue transports edition compile jobs between the bot and the worker.
type CompileQueue interface {
	Enqueue(ctx context.Context, job CompileJob) error
	Receive(ctx context.Context) (CompileJob, CompileAckFunc, error)
}
