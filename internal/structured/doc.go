// Package structured extracts machine-readable data from free-text language
// model responses: marker-delimited sections, short delimited lists and JSON
// payloads wrapped in code fences or prose.
//
// Model output is untrusted. Every function here is total: bad input yields a
// well-defined partial result or a *MalformedError, never a panic, and no
// function mutates its input.
package structured
