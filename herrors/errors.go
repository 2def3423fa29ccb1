// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package herrors is the closed error taxonomy of the federation core
// (SPEC_FULL.md §9, spec.md §7). Every federation-level failure a
// caller can observe is one of these six kinds; nothing else escapes
// the core as a distinguished error type.
package herrors

import "fmt"

// Kind identifies which of the six taxonomy members an error is.
type Kind int

const (
	// KindRegistrationFailure: duplicate name, unavailable core,
	// too-late registration.
	KindRegistrationFailure Kind = iota
	// KindInvalidParameter: bad option value, unknown property, bad index.
	KindInvalidParameter
	// KindInvalidFunctionCall: operation not valid in current state.
	KindInvalidFunctionCall
	// KindConnectionFailure: required interface with no match; broker
	// unreachable; bad network parameters.
	KindConnectionFailure
	// KindFunctionExecutionFailure: counterpart peer disconnected
	// during a blocking call.
	KindFunctionExecutionFailure
	// KindSystemFailure: internal invariant violated; always fatal.
	KindSystemFailure
)

func (k Kind) String() string {
	switch k {
	case KindRegistrationFailure:
		return "RegistrationFailure"
	case KindInvalidParameter:
		return "InvalidParameter"
	case KindInvalidFunctionCall:
		return "InvalidFunctionCall"
	case KindConnectionFailure:
		return "ConnectionFailure"
	case KindFunctionExecutionFailure:
		return "FunctionExecutionFailure"
	case KindSystemFailure:
		return "SystemFailure"
	default:
		return "Unknown"
	}
}

// Error is the single concrete error type for every taxonomy member;
// Kind distinguishes them the way the original HelicsException
// subclasses did, without the subclass hierarchy (spec.md §9 calls
// for result types over exception hierarchies).
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets errors.Is match on Kind alone, e.g. errors.Is(err, herrors.RegistrationFailure("")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// RegistrationFailure constructs a KindRegistrationFailure error.
func RegistrationFailure(format string, args ...any) *Error {
	return newf(KindRegistrationFailure, format, args...)
}

// InvalidParameter constructs a KindInvalidParameter error.
func InvalidParameter(format string, args ...any) *Error {
	return newf(KindInvalidParameter, format, args...)
}

// InvalidFunctionCall constructs a KindInvalidFunctionCall error.
func InvalidFunctionCall(format string, args ...any) *Error {
	return newf(KindInvalidFunctionCall, format, args...)
}

// ConnectionFailure constructs a KindConnectionFailure error.
func ConnectionFailure(format string, args ...any) *Error {
	return newf(KindConnectionFailure, format, args...)
}

// FunctionExecutionFailure constructs a KindFunctionExecutionFailure error.
func FunctionExecutionFailure(format string, args ...any) *Error {
	return newf(KindFunctionExecutionFailure, format, args...)
}

// SystemFailure constructs a KindSystemFailure error. Always fatal:
// callers that see one should tear the federate down.
func SystemFailure(format string, args ...any) *Error {
	return newf(KindSystemFailure, format, args...)
}

// Of reports the Kind of err if it is one of ours.
func Of(err error) (Kind, bool) {
	e, ok := err.(*Error)
	if !ok {
		return 0, false
	}
	return e.Kind, true
}
