package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a step could not be bound or run.
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindUndefined
	KindScopeMismatch
	KindAmbiguous
	KindConversion
	KindConfiguration
)

func (k ErrorKind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindScopeMismatch:
		return "scope mismatch"
	case KindAmbiguous:
		return "ambiguous"
	case KindConversion:
		return "conversion"
	case KindConfiguration:
		return "configuration"
	default:
		return "generic"
	}
}

var (
	// ErrPending is returned by a step handler that is not implemented yet.
	ErrPending = errors.New("step is pending")

	// ErrRegistryFrozen is returned when a binding is registered after matching started.
	ErrRegistryFrozen = errors.New("binding registry is frozen")
)

// Error is the base error type with context.
type Error struct {
	Kind       ErrorKind
	Phase      string // "config", "scan", "parse", "discover", "match", "convert", "skeleton", "run"
	File       string
	LineNumber int
	Message    string
	Suggestion string
	Cause      error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("[%s]", e.Phase)
	if e.File != "" {
		s += fmt.Sprintf(" %s", e.File)
	}
	if e.LineNumber > 0 {
		s += fmt.Sprintf(":%d", e.LineNumber)
	}
	s += fmt.Sprintf(": %s", e.Message)
	if e.Cause != nil {
		s += fmt.Sprintf(": %v", e.Cause)
	}
	if e.Suggestion != "" {
		s += fmt.Sprintf(" (hint: %s)", e.Suggestion)
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error of KindGeneric.
func NewError(phase, file string, line int, message string, cause error) *Error {
	return &Error{
		Kind:       KindGeneric,
		Phase:      phase,
		File:       file,
		LineNumber: line,
		Message:    message,
		Cause:      cause,
	}
}

// NewErrorWithSuggestion creates a new Error that tells the user how to fix it.
func NewErrorWithSuggestion(phase, file string, line int, message, suggestion string, cause error) *Error {
	e := NewError(phase, file, line, message, cause)
	e.Suggestion = suggestion
	return e
}

// NewKindError creates a new Error of the given kind.
func NewKindError(kind ErrorKind, phase, message string, cause error) *Error {
	e := NewError(phase, "", 0, message, cause)
	e.Kind = kind
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or KindGeneric.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGeneric
}
