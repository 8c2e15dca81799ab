// Package apperrors defines the error taxonomy shared by the session
// pipeline. Handlers map each class to an HTTP status; the pipeline
// decides per class whether the session moves to Failed or stays put.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports a malformed request, e.g. a missing upload
// file. It never changes session state.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// OrderingError reports a date-axis integrity violation between the
// historical and forecast segments. It is a fatal upload failure.
type OrderingError struct {
	Msg string
}

func (e *OrderingError) Error() string { return e.Msg }

// Ordering builds an OrderingError.
func Ordering(format string, args ...any) error {
	return &OrderingError{Msg: fmt.Sprintf(format, args...)}
}

// StateError reports an operation attempted in the wrong lifecycle
// phase, e.g. chatting before the dataset is ready, or a stale write
// arriving after a newer upload superseded its session token.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

// State builds a StateError.
func State(format string, args ...any) error {
	return &StateError{Msg: fmt.Sprintf(format, args...)}
}

// PreconditionError reports a derived artifact requested before its
// inputs exist, e.g. a CSV export with no series loaded.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// Precondition builds a PreconditionError.
func Precondition(format string, args ...any) error {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}

// CollaboratorError wraps a failure from an external service (the
// forecasting model or the assistant backend).
type CollaboratorError struct {
	Service string
	Err     error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Service, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// Collaborator wraps err as a CollaboratorError for the named service.
func Collaborator(service string, err error) error {
	return &CollaboratorError{Service: service, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsOrdering reports whether err is an OrderingError.
func IsOrdering(err error) bool {
	var e *OrderingError
	return errors.As(err, &e)
}

// IsState reports whether err is a StateError.
func IsState(err error) bool {
	var e *StateError
	return errors.As(err, &e)
}

// IsPrecondition reports whether err is a PreconditionError.
func IsPrecondition(err error) bool {
	var e *PreconditionError
	return errors.As(err, &e)
}

// IsCollaborator reports whether err is a CollaboratorError.
func IsCollaborator(err error) bool {
	var e *CollaboratorError
	return errors.As(err, &e)
}

// HTTPStatus maps an error to the status code its class is surfaced
// with. Unrecognized errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsState(err):
		return http.StatusConflict
	case IsPrecondition(err):
		return http.StatusUnprocessableEntity
	case IsOrdering(err):
		return http.StatusUnprocessableEntity
	case IsCollaborator(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
