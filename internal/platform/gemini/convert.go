package gemini

import (
	"fmt"
	"strings"

	"github.com/phrazzld/bionexus-api/internal/generation"
	"google.golang.org/genai"
)

// buildContents returns the single user turn for req: image first, then text.
func buildContents(req generation.PromptRequest) []*genai.Content {
	parts := make([]*genai.Part, 0, 2)

	if img := req.Image(); img != nil {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}

	text := req.Text()
	if text == "" && req.HasImage() {
		text = VisionInstruction
	}
	if text != "" {
		parts = append(parts, genai.NewPartFromText(text))
	}

	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// generationSettings are the client-wide knobs applied to every request.
type generationSettings struct {
	temperature float32
	voice       string
}

// buildConfig translates the request options into an SDK configuration.
// Speech requests and bare image requests carry no system instruction.
func buildConfig(req generation.PromptRequest, settings generationSettings) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	if req.Speech() {
		voice := req.Voice()
		if voice == "" {
			voice = settings.voice
		}
		cfg.ResponseModalities = []string{string(genai.ModalityAudio)}
		cfg.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		}
		return cfg
	}

	if req.HasImage() && req.Text() == "" {
		return cfg
	}

	cfg.SystemInstruction = genai.NewContentFromText(SystemInstruction(req.Context()), genai.RoleUser)
	cfg.Temperature = genai.Ptr(settings.temperature)

	if schema := req.JSONSchema(); schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseJsonSchema = schema
	}

	return cfg
}

// extractResponse collects the text and audio of the first candidate.
func extractResponse(resp *genai.GenerateContentResponse) (generation.ModelResponse, error) {
	if resp == nil {
		return generation.ModelResponse{}, &generation.RemoteError{Err: ErrEmptyResponse}
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return generation.ModelResponse{}, fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, fb.BlockReason)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return generation.ModelResponse{}, &generation.RemoteError{Err: ErrEmptyResponse}
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return generation.ModelResponse{}, fmt.Errorf("%w: response stopped by safety filters", generation.ErrContentBlocked)
	}

	var out generation.ModelResponse
	if cand.Content == nil {
		return out, nil
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
		if part.InlineData != nil && out.Audio == nil && strings.HasPrefix(part.InlineData.MIMEType, "audio/") {
			out.Audio = &generation.Audio{
				Data:     part.InlineData.Data,
				MIMEType: part.InlineData.MIMEType,
			}
		}
	}
	out.Text = sb.String()

	return out, nil
}
