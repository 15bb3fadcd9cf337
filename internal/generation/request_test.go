package generation_test

import (
	"testing"

	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPromptRequest(t *testing.T) {
	t.Parallel()

	t.Run("trims_text", func(t *testing.T) {
		req, err := generation.NewPromptRequest("  Explain ADH mechanism \n", generation.ContextStudent)
		require.NoError(t, err)
		assert.Equal(t, "Explain ADH mechanism", req.Text())
		assert.Equal(t, generation.ContextStudent, req.Context())
		assert.False(t, req.HasImage())
	})

	t.Run("empty_prompt", func(t *testing.T) {
		_, err := generation.NewPromptRequest("   ", generation.ContextGeneral)
		assert.ErrorIs(t, err, generation.ErrEmptyPrompt)
	})

	t.Run("image_only", func(t *testing.T) {
		req, err := generation.NewPromptRequest("", generation.ContextScholar,
			generation.WithImage([]byte{0x89, 0x50}, "image/png"))
		require.NoError(t, err)
		assert.True(t, req.HasImage())
		assert.Equal(t, "image/png", req.Image().MIMEType)
	})

	t.Run("rejects_non_image_mime", func(t *testing.T) {
		_, err := generation.NewPromptRequest("x", generation.ContextGeneral,
			generation.WithImage([]byte("%PDF"), "application/pdf"))
		assert.ErrorIs(t, err, generation.ErrInvalidImage)
	})

	t.Run("image_is_copied", func(t *testing.T) {
		data := []byte{1, 2, 3}
		req, err := generation.NewPromptRequest("x", generation.ContextGeneral, generation.WithImage(data, "image/jpeg"))
		require.NoError(t, err)
		data[0] = 9
		img := req.Image()
		assert.Equal(t, byte(1), img.Data[0])
		img.Data[1] = 9
		assert.Equal(t, byte(2), req.Image().Data[1])
	})

	t.Run("speech_selects_tier", func(t *testing.T) {
		req, err := generation.NewPromptRequest("say hi", generation.ContextPatient, generation.WithSpeech())
		require.NoError(t, err)
		assert.True(t, req.Speech())
		assert.Equal(t, generation.TierSpeech, req.Tier())
	})
}

func TestParseContextTag(t *testing.T) {
	t.Parallel()

	tests := map[string]generation.ContextTag{
		"Student Mode": generation.ContextStudent,
		"medpro":       generation.ContextMedPro,
		"Med-Pro Mode": generation.ContextMedPro,
		"patient":      generation.ContextPatient,
		"Scholar Mode": generation.ContextScholar,
		"General":      generation.ContextGeneral,
	}
	for input, expected := range tests {
		tag, ok := generation.ParseContextTag(input)
		assert.True(t, ok, input)
		assert.Equal(t, expected, tag, input)
		assert.NotEmpty(t, tag.String())
	}

	tag, ok := generation.ParseContextTag("astrology")
	assert.False(t, ok)
	assert.Equal(t, generation.ContextGeneral, tag)
	assert.Equal(t, "Med-Pro Mode", generation.ContextMedPro.String())
}
