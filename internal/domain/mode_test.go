package domain

import (
	"testing"

	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	for input, expected := range map[string]Mode{
		"student":      ModeStudent,
		"Med-Pro Mode": ModeMedPro,
		"PATIENT":      ModePatient,
	} {
		mode, err := ParseMode(input)
		assert.NoError(t, err, input)
		assert.Equal(t, expected, mode)
		assert.True(t, mode.Valid())
	}

	_, err := ParseMode("scholar")
	assert.ErrorIs(t, err, ErrInvalidMode)
	_, err = ParseMode("")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestModeContextTag(t *testing.T) {
	t.Parallel()

	assert.Equal(t, generation.ContextStudent, ModeStudent.ContextTag())
	assert.Equal(t, generation.ContextMedPro, ModeMedPro.ContextTag())
	assert.Equal(t, generation.ContextPatient, ModePatient.ContextTag())
	assert.Equal(t, generation.ContextGeneral, Mode("other").ContextTag())
}

func TestLanguage(t *testing.T) {
	t.Parallel()

	lang, err := ParseLanguage("")
	assert.NoError(t, err)
	assert.Equal(t, LanguageEnglish, lang)

	lang, err = ParseLanguage("VI")
	assert.NoError(t, err)
	assert.Equal(t, "Respond in Vietnamese.", lang.ResponseDirective())
	assert.Equal(t, "vi", lang.Code())
	assert.Equal(t, "xin chào", lang.Pick("hello", "xin chào"))

	assert.Equal(t, "Respond in English.", LanguageEnglish.ResponseDirective())

	_, err = ParseLanguage("fr")
	assert.ErrorIs(t, err, ErrInvalidLanguage)
}
