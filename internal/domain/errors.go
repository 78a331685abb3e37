package domain

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation  Kind = "validation"
	KindExtraction  Kind = "extraction"
	KindAuth        Kind = "auth"
	KindUpstream    Kind = "upstream"
	KindParse       Kind = "parse"
	KindConsistency Kind = "consistency"
	KindRender      Kind = "render"
	KindStorage     Kind = "storage"
	KindInternal    Kind = "internal"
)

var ErrNotFound = errors.New("not found")

// Error is the typed pipeline error; Message is safe to show to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func ValidationError(msg string) error { return newError(KindValidation, msg, nil) }

func ExtractionError(msg string, err error) error { return newError(KindExtraction, msg, err) }

func AuthError(msg string, err error) error { return newError(KindAuth, msg, err) }

func UpstreamError(msg string, err error) error { return newError(KindUpstream, msg, err) }

func ParseError(msg string, err error) error { return newError(KindParse, msg, err) }

func ConsistencyError(msg string) error { return newError(KindConsistency, msg, nil) }

func RenderError(msg string, err error) error { return newError(KindRender, msg, err) }

func StorageError(msg string, err error) error { return newError(KindStorage, msg, err) }

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
