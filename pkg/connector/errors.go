package connector

import "fmt"

// ErrorKind categorizes a connector failure.
type ErrorKind string

const (
	ErrorNotFound ErrorKind = "not_found"
	ErrorPermissionDenied ErrorKind = "permission_denied"
	ErrorInvalidValue ErrorKind = "invalid_value"
	ErrorUnavailable ErrorKind = "unavailable"
)

// Error is the categorized error every Connector method returns on
// failure, so callers (capabilities, the graph runner) can branch on Kind
// without depending on a specific connector implementation's error types.
type Error struct {
	Kind ErrorKind
	Channel string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
 return fmt.Sprintf("connector: %s (%s): %v", e.Channel, e.Kind, e.Err)
	}
	return fmt.Sprintf("connector: %s (%s)", e.Channel, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound constructs an ErrorNotFound.
func NotFound(channel string) error { return &Error{Kind: ErrorNotFound, Channel: channel} }

// PermissionDenied constructs an ErrorPermissionDenied.
func PermissionDenied(channel string) error {
	return &Error{Kind: ErrorPermissionDenied, Channel: channel}
}

// InvalidValue constructs an ErrorInvalidValue.
func InvalidValue(channel string, err error) error {
	return &Error{Kind: ErrorInvalidValue, Channel: channel, Err: err}
}

// Unavailable constructs an ErrorUnavailable.
func Unavailable(channel string, err error) error {
	return &Error{Kind: ErrorUnavailable, Channel: channel, Err: err}
}
