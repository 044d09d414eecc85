package core

import "github.com/pkg/errors"

// Result statuses
const (
	StatusSuccess = "SUCCESS"
	StatusWarning = "WARNING"
	StatusError   = "ERROR"
)

// Result is the uniform outcome reported for every mutating action.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func Success(msg string) Result { return Result{Status: StatusSuccess, Message: msg} }
func Failure(msg string) Result { return Result{Status: StatusError, Message: msg} }

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// NotFoundError is a user-correctable precondition failure (missing sheet, no templates..).
// Operations returning it abort before any mutation.
type NotFoundError struct {
	message string
}

func NewNotFoundError(msg string) error {
	return &NotFoundError{message: msg}
}

func (e NotFoundError) Error() string {
	return e.message
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

// Warning is a recoverable, non-blocking failure: the action did not fully apply
// but nothing is broken and the user only needs to be told.
type Warning struct {
	message string
}

func NewWarning(msg string) *Warning {
	return &Warning{message: msg}
}

func (w Warning) Error() string {
	return w.message
}

func IsWarning(err error) bool {
	_, ok := errors.Cause(err).(*Warning)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
