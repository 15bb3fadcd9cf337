// Package gemini implements generation.Model on top of Google's genai SDK.
//
// A Client performs exactly one remote attempt per Generate call; retries and
// fallbacks belong to generation.Gateway. The package translates between the
// application's request type and the SDK:
//
//   - contents: an inline image part (when present) followed by the text part
//   - configuration: the Bio-Nexus system instruction for the request's
//     context tag, temperature, JSON schema mode and audio output
//   - responses: concatenated text parts and the first inline audio blob
//   - errors: SDK errors become *generation.RemoteError so that callers can
//     classify them without importing the SDK, and safety blocks become
//     generation.ErrContentBlocked
package gemini
