package generation

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// ContextTag selects which persona / system-instruction variant governs the
// style of the model's answer.
type ContextTag int

// Supported context tags
const (
	ContextGeneral ContextTag = iota
	ContextStudent
	ContextMedPro
	ContextPatient
	ContextScholar
)

var contextLabels = map[ContextTag]string{
	ContextGeneral: "General",
	ContextStudent: "Student Mode",
	ContextMedPro:  "Med-Pro Mode",
	ContextPatient: "Patient Mode",
	ContextScholar: "Scholar Mode",
}

// String returns the label embedded in the system instruction.
func (t ContextTag) String() string {
	if label, ok := contextLabels[t]; ok {
		return label
	}
	return contextLabels[ContextGeneral]
}

// ParseContextTag accepts either a full label ("Med-Pro Mode") or a short id
// ("medpro"). Unknown or empty values yield ContextGeneral and false.
func ParseContextTag(s string) (ContextTag, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimSuffix(key, " mode")
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	switch key {
	case "student":
		return ContextStudent, true
	case "medpro":
		return ContextMedPro, true
	case "patient":
		return ContextPatient, true
	case "scholar":
		return ContextScholar, true
	case "general":
		return ContextGeneral, true
	default:
		return ContextGeneral, false
	}
}

// ModelTier picks between the configured model variants.
type ModelTier int

// Model tiers
const (
	// TierFlash is the fast default model, also used for vision requests.
	TierFlash ModelTier = iota
	// TierPro is the slower, more capable model.
	TierPro
	// TierSpeech is the text-to-speech model used for audio output.
	TierSpeech
)

// Image is an inline binary image sent alongside the prompt.
type Image struct {
	Data     []byte
	MIMEType string
}

// Audio is an inline audio payload returned by the model.
type Audio struct {
	Data     []byte
	MIMEType string
}

// Base64 returns the payload encoded the way the remote service transports it.
func (a *Audio) Base64() string {
	if a == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(a.Data)
}

// PromptRequest is a single request to the model. It is built once through
// NewPromptRequest and never modified afterwards; accessors return copies of
// any mutable data.
type PromptRequest struct {
	text       string
	image      *Image
	context    ContextTag
	tier       ModelTier
	jsonSchema map[string]any
	speech     bool
	voice      string
}

// RequestOption customizes a PromptRequest during construction.
type RequestOption func(*PromptRequest)

// WithImage attaches an inline image payload.
func WithImage(data []byte, mimeType string) RequestOption {
	return func(r *PromptRequest) {
		buf := make([]byte, len(data))
		copy(buf, data)
		r.image = &Image{Data: buf, MIMEType: strings.TrimSpace(mimeType)}
	}
}

// WithTier selects the model tier.
func WithTier(tier ModelTier) RequestOption {
	return func(r *PromptRequest) {
		r.tier = tier
	}
}

// WithJSONSchema asks the model for structured output matching schema.
// Responses must still be parsed defensively.
func WithJSONSchema(schema map[string]any) RequestOption {
	return func(r *PromptRequest) {
		r.jsonSchema = schema
	}
}

// WithSpeech requests an audio response instead of text.
func WithSpeech() RequestOption {
	return func(r *PromptRequest) {
		r.speech = true
		r.tier = TierSpeech
	}
}

// WithVoice requests an audio response spoken by the named prebuilt voice.
func WithVoice(name string) RequestOption {
	return func(r *PromptRequest) {
		r.speech = true
		r.tier = TierSpeech
		r.voice = strings.TrimSpace(name)
	}
}

// NewPromptRequest validates and builds a request. The text may only be empty
// when an image is attached.
func NewPromptRequest(text string, tag ContextTag, opts ...RequestOption) (PromptRequest, error) {
	req := PromptRequest{
		text:    strings.TrimSpace(text),
		context: tag,
	}
	for _, opt := range opts {
		opt(&req)
	}

	if req.image != nil {
		if len(req.image.Data) == 0 {
			return PromptRequest{}, fmt.Errorf("%w: image data is empty", ErrInvalidImage)
		}
		if !strings.HasPrefix(strings.ToLower(req.image.MIMEType), "image/") {
			return PromptRequest{}, fmt.Errorf("%w: unsupported MIME type %q", ErrInvalidImage, req.image.MIMEType)
		}
	}

	if req.text == "" && req.image == nil {
		return PromptRequest{}, ErrEmptyPrompt
	}

	return req, nil
}

// Text returns the prompt text.
func (r PromptRequest) Text() string { return r.text }

// Context returns the context tag.
func (r PromptRequest) Context() ContextTag { return r.context }

// Tier returns the requested model tier.
func (r PromptRequest) Tier() ModelTier { return r.tier }

// Speech reports whether an audio response is requested.
func (r PromptRequest) Speech() bool { return r.speech }

// Voice returns the requested voice, or "" for the configured default.
func (r PromptRequest) Voice() string { return r.voice }

// HasImage reports whether an image is attached.
func (r PromptRequest) HasImage() bool { return r.image != nil }

// Image returns a copy of the attached image, or nil.
func (r PromptRequest) Image() *Image {
	if r.image == nil {
		return nil
	}
	data := make([]byte, len(r.image.Data))
	copy(data, r.image.Data)
	return &Image{Data: data, MIMEType: r.image.MIMEType}
}

// JSONSchema returns the requested response schema, or nil.
func (r PromptRequest) JSONSchema() map[string]any { return r.jsonSchema }

// ModelResponse is the only contract surface of the remote service. Its text
// is untrusted and carries no schema guarantee.
type ModelResponse struct {
	Text  string
	Audio *Audio
}

// Model executes exactly one attempt against a remote model.
type Model interface {
	Generate(ctx context.Context, req PromptRequest) (ModelResponse, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, req PromptRequest) (ModelResponse, error)

// Generate implements Model.
func (f ModelFunc) Generate(ctx context.Context, req PromptRequest) (ModelResponse, error) {
	return f(ctx, req)
}
