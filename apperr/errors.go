// Package apperr defines the error taxonomy shared by the ingestion pipeline.
// Every error that crosses a component boundary carries a Kind so callers can
// tell "site too slow" from "content too short" from "AI quota exceeded".
package apperr

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	KindUnknown            Kind = ""
	KindSourceUnavailable  Kind = "source_unavailable"
	KindUnparsableContent  Kind = "unparsable_content"
	KindUpstreamModel      Kind = "upstream_model_error"
	KindModelOutputInvalid Kind = "model_output_invalid"
	KindStoreUnavailable   Kind = "store_unavailable"
	KindTimeout            Kind = "timeout"
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
)

// Sentinels wrapped inside Error for finer-grained checks with errors.Is.
var (
	ErrTimeout          = errors.New("timed out")
	ErrContentTooShort  = errors.New("content too short (SPA or anti-bot page)")
	ErrEmptyContent     = errors.New("model returned empty content")
	ErrUnparsableOutput = errors.New("model output is not valid JSON")
	ErrNotFound         = errors.New("not found")
	ErrNotConfigured    = errors.New("store not configured")
)

// Error is a classified failure scoped to one operation and target.
type Error struct {
	Kind   Kind
	Op     string
	Target string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
	}
	if e.Target != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(e.Target)
	}
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	if b.Len() == 0 {
		return string(e.Kind)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error.
func New(kind Kind, op, target string, err error) *Error {
	return &Error{Kind: kind, Op: op, Target: target, Err: err}
}

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsTimeout reports whether err was caused by a deadline or a network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Message returns the innermost human readable message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}
