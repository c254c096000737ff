package registry

import (
	"errors"
	"fmt"
)

// ErrRegistryNotInitialized is returned by any lookup performed before Init
// succeeds (failure modes).
var ErrRegistryNotInitialized = errors.New("registry: not initialized")

// ComponentNotFoundError is returned when a lookup name has no registration
// of the given kind.
type ComponentNotFoundError struct {
	Kind Kind
	Name string
}

func (e *ComponentNotFoundError) Error() string {
	return fmt.Sprintf("registry: no %s registered as %q", e.Kind, e.Name)
}

// ComponentNotFound constructs a ComponentNotFoundError.
func ComponentNotFound(kind Kind, name string) error {
	return &ComponentNotFoundError{Kind: kind, Name: name}
}

// DuplicateRegistrationError is returned when two application entries of
// the same kind declare the same name without one of them being a
// recognized override.
type DuplicateRegistrationError struct {
	Kind Kind
	Name string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("registry: duplicate %s registration for %q", e.Kind, e.Name)
}

// DuplicateRegistration constructs a DuplicateRegistrationError.
func DuplicateRegistration(kind Kind, name string) error {
	return &DuplicateRegistrationError{Kind: kind, Name: name}
}

// InvalidRegistrationError is returned when a Factory fails or an
// instantiated component fails a caller's type assertion — module
// resolution failed, or the resolved type lacks the required interface.
type InvalidRegistrationError struct {
	Kind Kind
	Name string
	Err error
}

func (e *InvalidRegistrationError) Error() string {
	return fmt.Sprintf("registry: invalid %s registration %q: %v", e.Kind, e.Name, e.Err)
}

func (e *InvalidRegistrationError) Unwrap() error { return e.Err }

// InvalidRegistration constructs an InvalidRegistrationError.
func InvalidRegistration(kind Kind, name string, err error) error {
	return &InvalidRegistrationError{Kind: kind, Name: name, Err: err}
}

// ErrExcludeOverrideConflict is returned at merge time when an application
// extension both excludes and overrides the same name for the same kind.
// documents this case inconsistently in the original source;
// this implementation resolves the open question by treating it as a
// load-time error instead of guessing precedence.
var ErrExcludeOverrideConflict = errors.New("registry: name is both excluded and overridden")

// ExcludeOverrideConflictError names the kind and name that triggered
// ErrExcludeOverrideConflict.
type ExcludeOverrideConflictError struct {
	Kind Kind
	Name string
}

func (e *ExcludeOverrideConflictError) Error() string {
	return fmt.Sprintf("registry: %s %q is both excluded and overridden", e.Kind, e.Name)
}

func (e *ExcludeOverrideConflictError) Unwrap() error { return ErrExcludeOverrideConflict }
