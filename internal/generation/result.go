package generation

// Result is the outcome of one logical gateway call: either the model's text
// (which may be empty) or a failure. It replaces returning an error message in
// place of an answer.
type Result struct {
	// Text is the model output on success.
	Text string
	// Audio is set when speech output was requested and returned.
	Audio *Audio
	// Attempts is the number of remote attempts made.
	Attempts int
	// Err is nil on success and otherwise wraps ErrCapacityExhausted,
	// ErrContentBlocked or ErrRequestFailed.
	Err error
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Kind returns the failure kind, KindNone on success.
func (r Result) Kind() FailureKind {
	if r.Err == nil {
		return KindNone
	}
	kind := Classify(r.Err)
	if kind == KindNetwork {
		return KindRequestFailed
	}
	return kind
}

// TextOr returns the model text on success, fb.Empty for an empty answer and
// the matching fallback message on failure.
func (r Result) TextOr(fb Fallbacks) string {
	switch r.Kind() {
	case KindNone:
		if r.Text == "" {
			return fb.Empty
		}
		return r.Text
	case KindCapacityExhausted:
		return fb.Quota
	default:
		return fb.Generic
	}
}
