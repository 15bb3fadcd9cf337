// Package api handles incoming HTTP requests, request validation and
// response formatting. It adapts the HTTP surface to the zone services.
//
// Operations whose answer is shown directly never fail because of the
// language model: a failed call is answered with 200, the localized fallback
// text and "degraded": true. Structured operations (exam generation) answer
// a malformed model response with 502 and leave session state untouched.
package api
