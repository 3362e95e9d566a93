package core

import (
	"errors"
	"fmt"
)

// Kind classifies an Error. Only the API boundary turns a Kind into a status code.
type Kind int

const (
	KindInternal Kind = iota
	// KindClientInput covers malformed JSON, missing or invalid fields and invalid filenames.
	KindClientInput
	// KindConfiguration means a required secret or setting is absent.
	KindConfiguration
	// KindNotFound covers unknown providers, asset classes and missing files.
	KindNotFound
	// KindRangeNotSatisfiable is returned for Range headers that cannot be served.
	KindRangeNotSatisfiable
)

func (k Kind) String() string {
	switch k {
	case KindClientInput:
		return "client_input"
	case KindConfiguration:
		return "configuration"
	case KindNotFound:
		return "not_found"
	case KindRangeNotSatisfiable:
		return "range_not_satisfiable"
	default:
		return "internal"
	}
}

// Error is a typed error carrying a caller-facing message.
// Message must never contain secret values; Err may hold details for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error

	// Size is set for KindRangeNotSatisfiable so the response can report the resource length.
	Size int64
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ClientInput(msg string) *Error {
	return &Error{Kind: KindClientInput, Message: msg}
}

// Required is the client input error for a missing field.
func Required(field string) *Error {
	return ClientInput(field + " is required")
}

func Configuration(msg string) *Error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

func NotFound(msg string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Err: err}
}

func RangeNotSatisfiable(size int64, err error) *Error {
	return &Error{Kind: KindRangeNotSatisfiable, Message: "Range Not Satisfiable", Err: err, Size: size}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
