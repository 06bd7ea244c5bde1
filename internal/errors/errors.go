// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrTradeNotFound   = errors.New("trade not found")
	ErrTradeClosed     = errors.New("trade already closed")
	ErrEntryNotFound   = errors.New("journal entry not found")
	ErrDataNotFound    = errors.New("data not found")
	ErrDatabaseError   = errors.New("database error")
	ErrConfigInvalid   = errors.New("invalid configuration")
	ErrNoAPIKey        = errors.New("no API key configured")
	ErrRateLimited     = errors.New("rate limited")
	ErrTimeout         = errors.New("operation timed out")
	ErrInputValidation = errors.New("input validation failed")
)

// StoreError represents an error from the persistence layer.
type StoreError struct {
	Operation string
	Entity    string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s] %s: %v", e.Operation, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(operation, entity string, err error) *StoreError {
	return &StoreError{
		Operation: operation,
		Entity:    entity,
		Err:       err,
	}
}

// ImportError represents an error while importing broker data.
type ImportError struct {
	File    string
	Row     int
	Message string
	Err     error
}

func (e *ImportError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("import error [%s] row %d: %s: %v", e.File, e.Row, e.Message, e.Err)
	}
	return fmt.Sprintf("import error [%s]: %s: %v", e.File, e.Message, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// NewImportError creates a new ImportError.
func NewImportError(file string, row int, message string, err error) *ImportError {
	return &ImportError{
		File:    file,
		Row:     row,
		Message: message,
		Err:     err,
	}
}

// InsightError represents an error from the AI insight generator.
type InsightError struct {
	TradeID   string
	Operation string
	Err       error
}

func (e *InsightError) Error() string {
	return fmt.Sprintf("insight error [%s] %s: %v", e.TradeID, e.Operation, e.Err)
}

func (e *InsightError) Unwrap() error {
	return e.Err
}

// NewInsightError creates a new InsightError.
func NewInsightError(tradeID, operation string, err error) *InsightError {
	return &InsightError{
		TradeID:   tradeID,
		Operation: operation,
		Err:       err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
