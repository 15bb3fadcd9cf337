package domain

import (
	"fmt"
	"strings"

	"github.com/phrazzld/bionexus-api/internal/generation"
)

// Mode is the application mode, which also selects the active zone:
// student -> scholar zone, medpro -> clinical zone, patient -> bio-digital twin.
type Mode string

// Supported modes
const (
	ModeStudent Mode = "student"
	ModeMedPro  Mode = "medpro"
	ModePatient Mode = "patient"
)

// ParseMode parses a mode id or label, case-insensitively.
func ParseMode(s string) (Mode, error) {
	tag, ok := generation.ParseContextTag(s)
	if ok {
		switch tag {
		case generation.ContextStudent:
			return ModeStudent, nil
		case generation.ContextMedPro:
			return ModeMedPro, nil
		case generation.ContextPatient:
			return ModePatient, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeStudent, ModeMedPro, ModePatient:
		return true
	default:
		return false
	}
}

// ContextTag maps the mode onto the system-instruction context.
func (m Mode) ContextTag() generation.ContextTag {
	switch m {
	case ModeStudent:
		return generation.ContextStudent
	case ModeMedPro:
		return generation.ContextMedPro
	case ModePatient:
		return generation.ContextPatient
	default:
		return generation.ContextGeneral
	}
}

// Language is the response language of a session.
type Language string

// Supported languages
const (
	LanguageEnglish    Language = "en"
	LanguageVietnamese Language = "vi"
)

// ParseLanguage parses a language code. An empty string means English.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "en", "english":
		return LanguageEnglish, nil
	case "vi", "vietnamese":
		return LanguageVietnamese, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, s)
	}
}

// Name returns the English name of the language as used in prompts.
func (l Language) Name() string {
	if l == LanguageVietnamese {
		return "Vietnamese"
	}
	return "English"
}

// ResponseDirective is the sentence appended to prompts to pin the reply language.
func (l Language) ResponseDirective() string {
	return "Respond in " + l.Name() + "."
}

// Pick returns vi for Vietnamese sessions and en otherwise.
func (l Language) Pick(en, vi string) string {
	if l == LanguageVietnamese {
		return vi
	}
	return en
}

// Code returns the language code.
func (l Language) Code() string {
	if l == LanguageVietnamese {
		return string(LanguageVietnamese)
	}
	return string(LanguageEnglish)
}
