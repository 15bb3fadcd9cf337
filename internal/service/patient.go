package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/phrazzld/bionexus-api/internal/session"
)

// Voice is a speech preset.
type Voice string

// Speech presets
const (
	// VoiceNarrator reads text as-is with the configured default voice.
	VoiceNarrator Voice = "narrator"
	// VoicePatient reads text as the simulated patient, in a pained voice.
	VoicePatient Voice = "patient"
)

type voicePreset struct {
	name  string
	style string
}

var voicePresets = map[Voice]voicePreset{
	VoiceNarrator: {},
	VoicePatient:  {name: "Puck", style: "Say in a pained, weak voice"},
}

// ParseVoice parses a preset name; "" means the narrator.
func ParseVoice(s string) (Voice, error) {
	v := Voice(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return VoiceNarrator, nil
	}
	if _, ok := voicePresets[v]; !ok {
		return "", fmt.Errorf("%w: unknown voice %q", domain.ErrValidation, s)
	}
	return v, nil
}

// SpeechReply is the outcome of a text-to-speech call.
type SpeechReply struct {
	Audio     *generation.Audio
	Degraded  bool
	ErrorKind generation.FailureKind
	Attempts  int
}

// PatientService runs the bio-digital twin zone.
type PatientService struct {
	core
	sessions SessionStore
}

// NewPatientService creates a PatientService.
func NewPatientService(
	gen generation.Generator,
	sessions SessionStore,
	logger *slog.Logger,
	opts ...Option,
) (*PatientService, error) {
	c, err := newCore("patient", gen, logger, opts)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		return nil, NewServiceError("patient", "create_service", ErrMissingDependency)
	}
	return &PatientService{core: c, sessions: sessions}, nil
}

// OrganInsight returns a health insight for organ of the default twin profile.
func (s *PatientService) OrganInsight(ctx context.Context, organ domain.Organ, lang domain.Language) (Reply, error) {
	return s.organInsight(ctx, organ, domain.DefaultTwinProfile(), lang)
}

// SelectOrgan selects organ in the session's body model and stores its insight.
func (s *PatientService) SelectOrgan(ctx context.Context, id uuid.UUID, organ domain.Organ) (Reply, error) {
	ticket, snap, err := s.sessions.Dispatch(id, domain.ModePatient)
	if err != nil {
		return Reply{}, err
	}

	out, err := s.organInsight(ctx, organ, snap.Patient.Profile, ticket.Language)
	if err != nil {
		return Reply{}, err
	}

	ok := !out.Degraded
	insight := out.Text
	out.Applied, err = s.apply(s.sessions, ticket, func(sess *session.Session) {
		sess.Patient.SelectedOrgan = organ
		if ok {
			sess.Patient.Insight = insight
		}
	})
	if err != nil {
		return Reply{}, err
	}
	return out, nil
}

func (s *PatientService) organInsight(
	ctx context.Context,
	organ domain.Organ,
	profile domain.TwinProfile,
	lang domain.Language,
) (Reply, error) {
	organ, err := domain.ParseOrgan(string(organ))
	if err != nil {
		return Reply{}, err
	}

	res, err := s.prompt(ctx, tmplOrganInsight, struct {
		Organ    domain.Organ
		Profile  domain.TwinProfile
		Language domain.Language
	}{organ, profile, lang}, generation.ContextPatient)
	if err != nil {
		return Reply{}, err
	}
	return s.reply(ctx, res, fallbacks(lang, "No data available.", "Không có dữ liệu.")), nil
}

// Speak synthesizes text with the given preset.
func (s *PatientService) Speak(ctx context.Context, text string, voice Voice) (SpeechReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return SpeechReply{}, domain.ErrEmptyContent
	}
	preset, ok := voicePresets[voice]
	if !ok {
		preset = voicePresets[VoiceNarrator]
	}

	opt := generation.WithSpeech()
	if preset.name != "" {
		opt = generation.WithVoice(preset.name)
	}

	res, err := s.prompt(ctx, tmplSpeech, struct {
		Style string
		Text  string
	}{preset.style, text}, generation.ContextPatient, opt)
	if err != nil {
		return SpeechReply{}, err
	}

	out := SpeechReply{
		Audio:     res.Audio,
		Degraded:  !res.OK(),
		ErrorKind: res.Kind(),
		Attempts:  res.Attempts,
	}
	if res.OK() && res.Audio == nil {
		s.logger.WarnContext(ctx, "speech call returned no audio", "voice", string(voice))
		out.Degraded = true
		out.ErrorKind = generation.KindRequestFailed
	}
	return out, nil
}
