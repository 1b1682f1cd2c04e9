package app

import (
	"time"

	"github.com/google/uuid"
)

// Operation identifies a single CLI invocation. Every log line carries the
// operation ID so interleaved runs can be told apart in the shared log file.
type Operation struct {
	ID         string
	Name       string
	Parameters string
	Status     string // "success" or "error"
	Started    time.Time
}

// NewOperation creates an operation with a fresh random ID.
func NewOperation(name, parameters string) *Operation {
	return &Operation{
		ID:         uuid.NewString(),
		Name:       name,
		Parameters: parameters,
		Status:     "success",
		Started:    time.Now().UTC(),
	}
}

// Fail marks the operation as failed for the closing log line.
func (op *Operation) Fail() {
	op.Status = "error"
}

// Elapsed returns the time since the operation started.
func (op *Operation) Elapsed() time.Duration {
	return time.Since(op.Started)
}
