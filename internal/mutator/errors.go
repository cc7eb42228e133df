package mutator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrWriteExhausted = errors.New("all write attempts failed")
	ErrConfirmation   = errors.New("confirmation failed")
)

// ValidationError lists the offending fields of a payload that was never sent.
type ValidationError struct {
	FieldErrors map[string]string
}

func (e *ValidationError) add(field, message string) {
	if e.FieldErrors == nil {
		e.FieldErrors = make(map[string]string)
	}
	if _, exists := e.FieldErrors[field]; !exists {
		e.FieldErrors[field] = message
	}
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.FieldErrors) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.FieldErrors))
	for field := range e.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.FieldErrors[field])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// TransportError describes the last write attempt once every verb has failed.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s %s: %v", ErrWriteExhausted, e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: status code: %d: %s", ErrWriteExhausted, e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrWriteExhausted, e.Err}
	}
	return []error{ErrWriteExhausted}
}

// ConfirmationError means the write was accepted but the record could not be read back.
type ConfirmationError struct {
	IDs []string
	Err error
}

func (e *ConfirmationError) Error() string {
	msg := fmt.Sprintf("%s: record %s not found after a successful write", ErrConfirmation, strings.Join(e.IDs, ", "))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfirmationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfirmation, e.Err}
	}
	return []error{ErrConfirmation}
}
