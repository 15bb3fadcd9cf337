package gemini

import (
	"errors"

	"github.com/phrazzld/bionexus-api/internal/generation"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the service answers with no candidates.
var ErrEmptyResponse = errors.New("model returned no candidates")

// convertError maps an SDK error onto *generation.RemoteError, keeping the
// HTTP code and status so the gateway can classify it.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &generation.RemoteError{
			Code:   apiErr.Code,
			Status: apiErr.Status,
			Err:    errors.New(apiErr.Message),
		}
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &generation.RemoteError{
			Code:   apiErrPtr.Code,
			Status: apiErrPtr.Status,
			Err:    errors.New(apiErrPtr.Message),
		}
	}

	return &generation.RemoteError{Err: err}
}
