// Package generation defines the boundary between the application and the
// hosted generative-language model (Gemini). It owns the request shape sent to
// the model, the Gateway that executes one logical request with retry and
// exponential backoff on capacity exhaustion, and the small error taxonomy
// callers branch on.
//
// The Gateway never returns raw SDK errors. A call produces a Result, which is
// either the model's text (possibly empty) or a failure of one of the kinds
// declared in errors.go. Callers pick the user-facing fallback text themselves
// through Fallbacks, so policy stays out of the gateway.
//
// Concrete models live in infrastructure packages (see platform/gemini) and
// implement the single-attempt Model interface.
package generation
