package structured

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Outcome is the typed result of a structured parse.
type Outcome[T any] struct {
	Value T
	Err   error
}

// OK reports whether parsing succeeded.
func (o Outcome[T]) OK() bool {
	return o.Err == nil
}

// Or returns the parsed value, or prior when parsing failed.
func (o Outcome[T]) Or(prior T) T {
	if o.Err != nil {
		return prior
	}
	return o.Value
}

func failed[T any](err error) Outcome[T] {
	return Outcome[T]{Err: err}
}

// Decode parses a JSON value of type T from text, after removing code fences.
// When the text is not valid JSON as a whole, the outermost {...} or [...]
// span is tried, which tolerates prose around the payload.
func Decode[T any](text string) Outcome[T] {
	body := StripFences(text)
	if body == "" {
		return failed[T](newMalformed("empty response", text, nil))
	}

	var v T
	firstErr := json.Unmarshal([]byte(body), &v)
	if firstErr == nil {
		return Outcome[T]{Value: v}
	}

	for _, delims := range [][2]byte{{'{', '}'}, {'[', ']'}} {
		span, ok := outerSpan(body, delims[0], delims[1])
		if !ok || span == body {
			continue
		}
		var retry T
		if err := json.Unmarshal([]byte(span), &retry); err == nil {
			return Outcome[T]{Value: retry}
		}
	}

	return failed[T](newMalformed("invalid JSON", body, firstErr))
}

// DecodeArray parses a JSON array of T. Prose before or after the array is
// ignored. An empty array is a valid, empty result.
func DecodeArray[T any](text string) Outcome[[]T] {
	body := StripFences(text)
	if body == "" {
		return failed[[]T](newMalformed("empty response", text, nil))
	}

	span, ok := outerSpan(body, '[', ']')
	if !ok {
		return failed[[]T](newMalformed("no JSON array found", body, nil))
	}

	var items []T
	if err := json.Unmarshal([]byte(span), &items); err != nil {
		return failed[[]T](newMalformed("invalid JSON array", span, err))
	}
	if items == nil {
		items = []T{}
	}
	return Outcome[[]T]{Value: items}
}

// outerSpan returns text from the first open to the last close delimiter.
func outerSpan(text string, openDelim, closeDelim byte) (string, bool) {
	start := strings.IndexByte(text, openDelim)
	end := strings.LastIndexByte(text, closeDelim)
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
