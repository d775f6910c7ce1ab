// Package errs holds the failure taxonomy shared by the fetch, aggregate and
// render stages. Callers match with errors.As / errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var ErrRunInProgress = errors.New("a fetch is already in progress")

// ConfigError reports missing run context (group or structure serial).
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NetworkError is returned when the platform answers with a non-success status.
type NetworkError struct {
	Endpoint string
	Status   int
	Body     string
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %v", e.Endpoint, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s request failed with status %d: %s", e.Endpoint, e.Status, e.Body)
	}
	return fmt.Sprintf("%s request failed with status %d", e.Endpoint, e.Status)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProtocolError is returned when a response does not match the expected envelope.
type ProtocolError struct {
	Endpoint string
	Err      error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s returned an unexpected response: %v", e.Endpoint, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// EmptyDataError means a stage resolved zero records. It is reported to the
// user, not treated as a crash.
type EmptyDataError struct {
	Reason string
}

func (e *EmptyDataError) Error() string { return e.Reason }

func NewEmptyData(reason string) error {
	return &EmptyDataError{Reason: reason}
}

func IsEmptyData(err error) bool {
	var target *EmptyDataError
	return errors.As(err, &target)
}

func IsConfig(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsUpstream reports whether err came from talking to the platform.
func IsUpstream(err error) bool {
	var netErr *NetworkError
	var protoErr *ProtocolError
	return errors.As(err, &netErr) || errors.As(err, &protoErr)
}
