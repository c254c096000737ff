package config

import (
	"errors"
	"fmt"
)

var (// ErrConfigNotFound indicates the project configuration file was not found.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidYAML indicates YAML parsing failed.
	ErrInvalidYAML = errors.New("invalid YAML syntax")

	// ErrValidationFailed indicates configuration validation failed.
	ErrValidationFailed = errors.New("configuration validation failed")

	// ErrInvalidReference indicates an invalid cross-reference in configuration
	// (e.g. a model role naming an undeclared provider).
	ErrInvalidReference = errors.New("invalid configuration reference")

	// ErrMissingRequiredField indicates a required field is missing.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrInvalidValue indicates a field has an invalid value.
	ErrInvalidValue = errors.New("invalid field value")

	// ErrExcludeOverrideConflict indicates an application registry extension
	// both excludes and overrides the same component name. leaves
	// this ambiguous in the original source; this implementation treats it
	// as a load-time error rather than guessing precedence.
	ErrExcludeOverrideConflict = errors.New("component name is both excluded and overridden"))

// ValidationError wraps a configuration validation failure with context
// about which component and field produced it.
type ValidationError struct {
	Component string // e.g. "models", "approval", "retention"
	Field string // field name, optional
	Err error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
 return fmt.Sprintf("%s: field %q: %v", e.Component, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Component, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError creates a new validation error.
func NewValidationError(component, field string, err error) *ValidationError {
	return &ValidationError{Component: component, Field: field, Err: err}
}

// LoadError wraps a configuration file load failure with file context.
type LoadError struct {
	File string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// NewLoadError creates a new load error.
func NewLoadError(file string, err error) *LoadError {
	return &LoadError{File: file, Err: err}
}
