package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCount       = errors.New("invalid installment count")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidInterval    = errors.New("invalid installment interval")
	ErrInvalidPaymentType = errors.New("invalid payment type")
	ErrInvalidStatus      = errors.New("invalid project status")
	ErrInvalidCNPJ        = errors.New("invalid cnpj")
	ErrInvalidCursor      = errors.New("invalid cursor")
	ErrEmptyField         = errors.New("empty field")
	ErrNotFound           = errors.New("not found")
)

// InvalidInputError reports a rejected argument. errors.Is(err,
// ErrInvalidInput) holds for every instance, and the underlying cause, when
// present, is reachable as well.
type InvalidInputError struct {
	Field  string
	Reason string
	Err    error
}

func NewInvalidInputError(field, reason string, err error) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: reason, Err: err}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidInput}
	}
	return []error{ErrInvalidInput, e.Err}
}

// SkippedRecordWarning is produced for every record left out of a summary.
type SkippedRecordWarning struct {
	RecordID string
	Reason   string
}

func (w SkippedRecordWarning) String() string {
	return fmt.Sprintf("record %s skipped: %s", w.RecordID, w.Reason)
}
