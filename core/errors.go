package core

import "github.com/pkg/errors"

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
		return ""
	}
	return err.Err.Error()
}

// notFound marks an error as "referenced entity does not exist".
type notFound struct {
	err error
}

func NewNotFoundError(err error) error { return &notFound{err: err} }
func (e notFound) Error() string       { return e.err.Error() }
func (e notFound) Unwrap() error       { return e.err }

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*notFound)
	return ok
}

// conflict marks an error as "entity already exists / duplicate write".
type conflict struct {
	err error
}

func NewConflictError(err error) error { return &conflict{err: err} }
func (e conflict) Error() string       { return e.err.Error() }
func (e conflict) Unwrap() error       { return e.err }

func IsConflict(err error) bool {
	_, ok := errors.Cause(err).(*conflict)
	return ok
}

// invalidInput marks an error as "request is well-formed but unprocessable".
type invalidInput struct {
	err error
}

func NewInvalidInputError(err error) error { return &invalidInput{err: err} }
func (e invalidInput) Error() string       { return e.err.Error() }
func (e invalidInput) Unwrap() error       { return e.err }

func IsInvalidInput(err error) bool {
	_, ok := errors.Cause(err).(*invalidInput)
	return ok
}

// forbidden marks an error as "authenticated but not allowed".
type forbidden struct {
	err error
}

func NewForbiddenError(err error) error { return &forbidden{err: err} }
func (e forbidden) Error() string       { return e.err.Error() }
func (e forbidden) Unwrap() error       { return e.err }

func IsForbidden(err error) bool {
	_, ok := errors.Cause(err).(*forbidden)
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
