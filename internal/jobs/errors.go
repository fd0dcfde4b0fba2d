package jobs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNoImagesFound = errors.New("no images found")
	ErrNotFound      = errors.New("job not found")
	ErrQueueFull     = errors.New("job queue is full")
	ErrShuttingDown  = errors.New("job manager is shutting down")

	errJobTerminal = errors.New("job already finished")
)

// Phase names one step of the run sequence.
type Phase string

const (
	PhaseDiscover Phase = "discover"
	PhaseDescribe Phase = "describe"
	PhaseGroup    Phase = "group"
	PhaseOrganize Phase = "organize"
	PhaseWorker   Phase = "worker"
)

// ErrorKind is the failure taxonomy exposed as Job.ErrorKind.
type ErrorKind string

const (
	KindInvalidInput     ErrorKind = "InvalidInput"
	KindNoImagesFound    ErrorKind = "NoImagesFound"
	KindEmbeddingBackend ErrorKind = "EmbeddingBackendError"
	KindGrouping         ErrorKind = "GroupingError"
	KindOrganize         ErrorKind = "OrganizeError"
	KindInternal         ErrorKind = "Internal"
)

// PhaseError is returned by every job-fatal failure of the pipeline.
type PhaseError struct {
	Phase Phase
	Kind  ErrorKind
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

func phaseError(phase Phase, kind ErrorKind, err error) *PhaseError {
	return &PhaseError{Phase: phase, Kind: kind, Err: err}
}

// kindOf returns the taxonomy label for err, defaulting to KindInternal.
func kindOf(err error) ErrorKind {
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}
