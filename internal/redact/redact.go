// Package redact removes credentials and user data from strings before they
// are logged or returned in error responses. Language model SDK errors often
// echo the request URL (with its API key), inline image data, or local file
// paths, none of which may leave the process.
package redact

import (
	"regexp"
)

// Redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedURLPlaceholder        = "[REDACTED_URL]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedBlobPlaceholder       = "[REDACTED_BLOB]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules are applied in order; URLs go first so their query strings and paths
// are removed as a whole.
var rules = []rule{
	{regexp.MustCompile(`https?://[^\s"']+`), RedactedURLPlaceholder},
	{regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`), RedactedKeyPlaceholder},
	{
		regexp.MustCompile(
			`(?i)\b(api[_-]?key|x-goog-api-key|token|secret|password|authorization)\b(['"\s:=]+)(?:bearer\s+)?[A-Za-z0-9_\-.~+/]{8,}`,
		),
		RedactedCredentialPlaceholder,
	},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED_JWT]"},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), RedactedEmailPlaceholder},
	{regexp.MustCompile(`[A-Za-z0-9+/]{64,}={0,2}`), RedactedBlobPlaceholder},
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPathPlaceholder},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`), RedactedPathPlaceholder},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
