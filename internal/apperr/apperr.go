// Package apperr holds the error kinds the gym tracker core reports to its callers.
// All of them are expected outcomes of caller input or storage state; none is retried.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	DuplicateAccount   Kind = "DuplicateAccount"
	InvalidCredentials Kind = "InvalidCredentials"
	InvalidToken       Kind = "InvalidToken"
	UnknownAccount     Kind = "UnknownAccount"
	DuplicateExercise  Kind = "DuplicateExercise"
	ExerciseNotFound   Kind = "ExerciseNotFound"
	IndexOutOfRange    Kind = "IndexOutOfRange"
	DuplicateTemplate  Kind = "DuplicateTemplate"
	TemplateNotFound   Kind = "TemplateNotFound"
	NoData             Kind = "NoData"
	InvalidInput       Kind = "InvalidInput"

	StorageUnavailable  Kind = "StorageUnavailable"
	ConstraintViolation Kind = "ConstraintViolation"
	RouteNotFound       Kind = "RouteNotFound"
	Internal            Kind = "Internal"
)

// sentinels, to be used with errors.Is
var (
	ErrDuplicateAccount    = &Error{Kind: DuplicateAccount}
	ErrInvalidCredentials  = &Error{Kind: InvalidCredentials}
	ErrInvalidToken        = &Error{Kind: InvalidToken}
	ErrUnknownAccount      = &Error{Kind: UnknownAccount}
	ErrDuplicateExercise   = &Error{Kind: DuplicateExercise}
	ErrExerciseNotFound    = &Error{Kind: ExerciseNotFound}
	ErrIndexOutOfRange     = &Error{Kind: IndexOutOfRange}
	ErrDuplicateTemplate   = &Error{Kind: DuplicateTemplate}
	ErrTemplateNotFound    = &Error{Kind: TemplateNotFound}
	ErrNoData              = &Error{Kind: NoData}
	ErrInvalidInput        = &Error{Kind: InvalidInput}
	ErrStorageUnavailable  = &Error{Kind: StorageUnavailable}
	ErrConstraintViolation = &Error{Kind: ConstraintViolation}
)

type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
		Err:    err,
	}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, regardless of its detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, Internal otherwise.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// IsAuthFailure reports whether err must be surfaced as an authentication failure.
func IsAuthFailure(err error) bool {
	switch KindOf(err) {
	case InvalidCredentials, InvalidToken, UnknownAccount:
		return true
	default:
		return false
	}
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case InvalidCredentials, InvalidToken, UnknownAccount:
		return http.StatusUnauthorized
	case ExerciseNotFound, TemplateNotFound, NoData, RouteNotFound:
		return http.StatusNotFound
	case DuplicateAccount, DuplicateExercise, DuplicateTemplate, ConstraintViolation:
		return http.StatusConflict
	case IndexOutOfRange, InvalidInput:
		return http.StatusBadRequest
	case StorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
