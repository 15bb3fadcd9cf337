package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrCapacityExhausted is returned when the remote service rejects a call
	// because the caller exceeded its rate limit or quota.
	ErrCapacityExhausted = errors.New("language model capacity exhausted")

	// ErrRequestFailed is returned for any other failed remote call (network
	// error, malformed request, server error).
	ErrRequestFailed = errors.New("language model request failed")

	// ErrContentBlocked is returned when the model refuses to answer because
	// of its safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrEmptyPrompt is returned when a request carries neither text nor an image.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrInvalidImage is returned when an image payload is empty or not an image MIME type.
	ErrInvalidImage = errors.New("invalid image payload")

	// ErrInvalidConfig is returned when a model or gateway is misconfigured.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// RemoteError carries the status information of a failed remote call without
// exposing SDK types to the rest of the application.
type RemoteError struct {
	// Code is the HTTP status code reported by the service, 0 when unknown.
	Code int
	// Status is the service status string, e.g. RESOURCE_EXHAUSTED.
	Status string
	// Err is the underlying error.
	Err error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Code != 0 && e.Status != "":
		return fmt.Sprintf("remote call failed (%d %s): %v", e.Code, e.Status, e.Err)
	case e.Code != 0:
		return fmt.Sprintf("remote call failed (%d): %v", e.Code, e.Err)
	default:
		return fmt.Sprintf("remote call failed: %v", e.Err)
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
