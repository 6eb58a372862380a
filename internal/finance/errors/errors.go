package errors

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

var ErrInvalidCategory = NewValidationError("Invalid category")
var ErrInvalidSubCategory = NewValidationError("Invalid sub-category")
var ErrSubCategoryMismatch = NewValidationError("Sub-category does not belong to the selected category")

// DataAccessError wraps a failed read. Callers keep their previous state and
// surface a retryable failure.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access failed: %s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

func NewDataAccessError(op string, err error) error {
	return &DataAccessError{Op: op, Err: err}
}

func IsDataAccessError(err error) bool {
	var dataAccessError *DataAccessError
	return errors.As(err, &dataAccessError)
}

// WriteError wraps a create request rejected by the database. The caller's
// form state is preserved so the user may retry.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func NewWriteError(err error) error {
	return &WriteError{Err: err}
}

func IsWriteError(err error) bool {
	var writeError *WriteError
	return errors.As(err, &writeError)
}
