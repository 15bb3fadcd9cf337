package structured

import (
	"errors"
	"fmt"

	"github.com/phrazzld/bionexus-api/internal/redact"
)

// ErrMalformedResponse is matched by every parse failure.
var ErrMalformedResponse = errors.New("malformed structured response")

const snippetLimit = 80

// MalformedError describes why a response could not be parsed.
type MalformedError struct {
	// Reason is a short, safe description of the failure.
	Reason string
	// Snippet is the redacted start of the offending text.
	Snippet string
	// Err is the underlying decode error, if any.
	Err error
}

func newMalformed(reason, text string, err error) *MalformedError {
	snippet := text
	if len(snippet) > snippetLimit {
		snippet = snippet[:snippetLimit] + "..."
	}
	return &MalformedError{Reason: reason, Snippet: redact.String(snippet), Err: err}
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", ErrMalformedResponse, e.Reason, e.Err)
	}
	return fmt.Sprintf("%v: %s", ErrMalformedResponse, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedResponse) succeed.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}
