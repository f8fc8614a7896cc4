package domain

import (
	"errors"
	"fmt"
)

// ErrKind is the closed set of pipeline failure classifications. Transport
// layers switch on the kind, never on message text.
type ErrKind int

const (
	// ErrKindUnknown is the zero value for errors that carry no classification.
	ErrKindUnknown ErrKind = iota
	// ErrKindConfig marks a missing credential or broken template. Not
	// retryable; the same outcome repeats until an operator fixes it.
	ErrKindConfig
	// ErrKindRetrieval marks an embedding or vector-store call failure.
	ErrKindRetrieval
	// ErrKindGeneration marks a generation-provider call failure.
	ErrKindGeneration
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindConfig:
		return "configuration"
	case ErrKindRetrieval:
		return "retrieval"
	case ErrKindGeneration:
		return "generation"
	default:
		return "unknown"
	}
}

// PipelineError tags a cause with its failure classification.
type PipelineError struct {
	Kind ErrKind
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// ConfigError wraps err as a configuration failure.
func ConfigError(err error) error {
	return &PipelineError{Kind: ErrKindConfig, Err: err}
}

// ConfigErrorf formats a configuration failure.
func ConfigErrorf(format string, args ...any) error {
	return &PipelineError{Kind: ErrKindConfig, Err: fmt.Errorf(format, args...)}
}

// RetrievalError wraps err as a retrieval failure.
func RetrievalError(err error) error {
	return &PipelineError{Kind: ErrKindRetrieval, Err: err}
}

// RetrievalErrorf formats a retrieval failure.
func RetrievalErrorf(format string, args ...any) error {
	return &PipelineError{Kind: ErrKindRetrieval, Err: fmt.Errorf(format, args...)}
}

// GenerationError wraps err as a generation failure.
func GenerationError(err error) error {
	return &PipelineError{Kind: ErrKindGeneration, Err: err}
}

// GenerationErrorf formats a generation failure.
func GenerationErrorf(format string, args ...any) error {
	return &PipelineError{Kind: ErrKindGeneration, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the classification of err, unwrapping as needed.
// Unclassified errors report ErrKindUnknown.
func KindOf(err error) ErrKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrKindUnknown
}
