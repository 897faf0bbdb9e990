// Package errors provides custom error types for the modelscout
// collector. They enable programmatic error checking with errors.Is
// across the fetch, adapter, and store layers.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors.
var (
	// ErrNotFound indicates an upstream resource or organization is
	// absent. Callers treat this as an empty result, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates the upstream rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates an upstream is temporarily unavailable.
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrAlreadyExists indicates a row already exists. Task enqueue
	// treats this as success by contract.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidConfig indicates the run cannot proceed because
	// required configuration is missing or malformed.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// APIError represents a non-2xx response from an upstream source.
type APIError struct {
	Source     string
	StatusCode int
	Message    string
	URL        string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Source, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support based on the HTTP status class.
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 404:
		return target == ErrNotFound
	case e.StatusCode == 429:
		return target == ErrRateLimited
	case e.StatusCode == 503 || e.StatusCode >= 500:
		return target == ErrUnavailable
	}
	return false
}

// NewAPIError creates a new APIError.
func NewAPIError(source string, statusCode int, message string) *APIError {
	return &APIError{
		Source:     source,
		StatusCode: statusCode,
		Message:    message,
	}
}

// Retryable reports whether the status code indicates a transient
// condition worth retrying with backoff.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode == 503
}

// ConfigError represents a configuration error. Missing datastore
// configuration is the one error category allowed to abort a run.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// StoreError represents a persistence failure for a row or batch.
type StoreError struct {
	Operation string // "save", "upsert", "enqueue", "query"
	Table     string
	Key       string
	Err       error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store error during %s of %s %q: %v", e.Operation, e.Table, e.Key, e.Err)
	}
	return fmt.Sprintf("store error during %s of %s: %v", e.Operation, e.Table, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// WrapStore wraps an error as a StoreError.
func WrapStore(operation, table, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Operation: operation, Table: table, Key: key, Err: err}
}

// ParseError represents a malformed upstream payload. Adapters catch
// these at their boundary and degrade to an empty listing set.
type ParseError struct {
	Source  string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error from %s: %s", e.Source, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapParse wraps an error as a ParseError.
func WrapParse(source string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Source: source, Message: err.Error(), Err: err}
}

// Helper functions for error checking.

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited checks if an error is a rate limit error.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsAlreadyExists checks if an error is an already exists error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidConfig checks if an error is a fatal configuration error.
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
