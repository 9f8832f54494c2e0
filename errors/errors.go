// Package errors is the error toolkit used across forge.
//
// It re-exports github.com/cockroachdb/errors so every package gets stack
// traces, wrapping, user-facing hints and safe details from one import:
//
//	if err := store.UpsertGraph(ctx, doc); err != nil {
//	    return errors.Wrap(err, "save graph")
//	}
//
//	return errors.WithHint(err, "remove one of the connections on this handle")
//
// Sentinels below are matched with errors.Is and mapped to HTTP status codes
// by the server package.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// Hints and details shown to players and operators
var (
	WithHint       = crdb.WithHint
	WithHintf      = crdb.WithHintf
	WithDetail     = crdb.WithDetail
	WithDetailf    = crdb.WithDetailf
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
	Join      = crdb.Join
)

// GetStack returns the reportable stack trace attached to err, if any.
var GetStack = crdb.GetReportableStackTrace

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

// Sentinel errors shared by storage, the HTTP API and the raid relay.
var (
	// ErrNotFound indicates the requested graph, artifact or raid room does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates a malformed request body or parameter
	ErrInvalidRequest = New("invalid request")

	// ErrConflict indicates the request collides with existing state
	// (a handle already connected, a full raid room)
	ErrConflict = New("conflict")

	// ErrServiceUnavailable indicates a dependency such as NATS is not reachable
	ErrServiceUnavailable = New("service unavailable")
)

// IsNotFoundError reports whether err is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError reports whether err is or wraps ErrInvalidRequest.
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// IsConflictError reports whether err is or wraps ErrConflict.
func IsConflictError(err error) bool {
	return err != nil && Is(err, ErrConflict)
}

// NewNotFoundError creates a not-found error with a formatted message.
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrapf(ErrNotFound, format, args...)
}

// NewInvalidRequestError creates an invalid-request error with a formatted message.
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrapf(ErrInvalidRequest, format, args...)
}

// NewConflictError creates a conflict error with a formatted message.
func NewConflictError(format string, args ...interface{}) error {
	return Wrapf(ErrConflict, format, args...)
}
