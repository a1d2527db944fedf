package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers that need to react to it
// (HTTP status mapping, CLI exit messages, tests).
type Kind int

const (
	KindUnknown Kind = iota
	GenerationFailed
	PayloadNotFound
	MalformedPayload
	InvalidShape
	Unauthorized
	StorageFailure
	InvalidInput
)

func (k Kind) String() string {
	switch k {
	case GenerationFailed:
		return "generation_failed"
	case PayloadNotFound:
		return "payload_not_found"
	case MalformedPayload:
		return "malformed_payload"
	case InvalidShape:
		return "invalid_shape"
	case Unauthorized:
		return "unauthorized"
	case StorageFailure:
		return "storage_failure"
	case InvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Op names the operation that failed,
// e.g. "contentgen.GenerateQuiz".
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrGenerationFailed = &Error{Kind: GenerationFailed}
	ErrPayloadNotFound  = &Error{Kind: PayloadNotFound}
	ErrMalformedPayload = &Error{Kind: MalformedPayload}
	ErrInvalidShape     = &Error{Kind: InvalidShape}
	ErrUnauthorized     = &Error{Kind: Unauthorized}
	ErrStorageFailure   = &Error{Kind: StorageFailure}
	ErrInvalidInput     = &Error{Kind: InvalidInput}
)

// E builds a classified error.
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a classified error with a formatted cause.
func Errorf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a bare sentinel of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the Kind of the outermost *Error in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
