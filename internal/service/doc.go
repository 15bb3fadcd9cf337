// Package service contains the application's use cases: the consumers of the
// generation gateway.
//
// Every operation follows the same flow:
//
//  1. Dispatch a session ticket (for session-bound operations) and build the
//     prompt from an embedded text/template.
//  2. Call the generation.Generator, which retries capacity errors and never
//     returns raw SDK errors.
//  3. Render the answer (Markdown to HTML) or parse its structured payload
//     through internal/structured.
//  4. Apply the resulting state change through the ticket, which drops it if
//     the learner navigated away in the meantime.
//
// Gateway failures are reported as degraded replies carrying the localized
// fallback text; callers decide how to show them. Malformed structured
// payloads are typed errors wrapping structured.ErrMalformedResponse, and
// leave session state untouched.
package service
