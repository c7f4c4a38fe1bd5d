package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable error class that handlers map to an HTTP status.
type Code string

const (
	CodeInternal     Code = "internal"
	CodeInvalid      Code = "invalid"
	CodeBadRequest   Code = "bad_request"
	CodeReference    Code = "reference"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeSchema       Code = "schema"
)

// FieldErrors holds validation messages keyed by JSON field name.
type FieldErrors map[string][]string

// Add appends msg to the messages of field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// AppError carries a code, a user-facing message, the wrapped cause and,
// for CodeInvalid, the per-field messages.
type AppError struct {
	Code    Code
	Message string
	Err     error
	Fields  FieldErrors
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Status is the HTTP status for the error's code.
func (e *AppError) Status() int {
	switch e.Code {
	case CodeInvalid:
		return http.StatusUnprocessableEntity
	case CodeBadRequest, CodeReference:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code Code, message string) *AppError {
	if err == nil {
		return New(code, message)
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// Validation builds a CodeInvalid error from field messages.
func Validation(fields FieldErrors) *AppError {
	return &AppError{Code: CodeInvalid, Message: "Validation failed", Fields: fields}
}

// From returns the AppError inside err, or wraps err as CodeInternal.
func From(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return Wrap(err, CodeInternal, err.Error())
}

// IsCode checks if an error has the provided code (through unwrapping).
func IsCode(err error, code Code) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
