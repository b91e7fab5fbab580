package platform

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning is an error returned when poll can't be started because previous poll of the dataset is not finished yet.
var ErrAlreadyRunning = errors.New("poll already running for this dataset")

// ErrorKind is a category of ingestion failure.
type ErrorKind string

const (
	KindMalformedDate               ErrorKind = "MalformedDate"
	KindUnknownSchema               ErrorKind = "UnknownSchema"
	KindMissingRequiredField        ErrorKind = "MissingRequiredField"
	KindUpstreamUnavailable         ErrorKind = "UpstreamUnavailable"
	KindConnectionAcquisitionFailed ErrorKind = "ConnectionAcquisitionFailed"
	KindWriteFailed                 ErrorKind = "WriteFailed"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrMalformedDate               = &Error{Kind: KindMalformedDate}
	ErrUnknownSchema               = &Error{Kind: KindUnknownSchema}
	ErrMissingRequiredField        = &Error{Kind: KindMissingRequiredField}
	ErrUpstreamUnavailable         = &Error{Kind: KindUpstreamUnavailable}
	ErrConnectionAcquisitionFailed = &Error{Kind: KindConnectionAcquisitionFailed}
	ErrWriteFailed                 = &Error{Kind: KindWriteFailed}
)

// Error is an ingestion error tagged with its kind.
type Error struct {
	Kind ErrorKind
	Err  error
}

// NewError returns new Error of provided kind with formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// WrapError tags err with provided kind.
func WrapError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an Error of the same kind.
// It makes kind sentinels like ErrWriteFailed usable with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns kind of the outermost Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}
