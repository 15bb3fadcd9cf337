package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/phrazzld/bionexus-api/internal/session"
	"github.com/phrazzld/bionexus-api/internal/structured"
	"golang.org/x/sync/singleflight"
)

// DifferentialMarker separates the patient's reply from the updated
// differential diagnosis.
const DifferentialMarker = "[DIFFERENTIAL]"

// differentialEvery is how often, in transcript messages, the differential is
// refreshed when the patient reply carried none.
const differentialEvery = 3

// ClinicalReply is the outcome of a doctor message.
type ClinicalReply struct {
	Reply
	// Differential is the differential after the turn.
	Differential domain.Differential
	// DifferentialUpdated reports whether the turn produced a new differential.
	DifferentialUpdated bool
}

// LabReply is the outcome of a lab order.
type LabReply struct {
	Reply
	Lab domain.LabOrder
	// Cached is true when the result was already known and no call was made.
	Cached bool
}

// ClinicalService runs the simulated appendicitis encounter.
type ClinicalService struct {
	core
	sessions SessionStore
	labs     singleflight.Group
}

// NewClinicalService creates a ClinicalService.
func NewClinicalService(
	gen generation.Generator,
	sessions SessionStore,
	logger *slog.Logger,
	opts ...Option,
) (*ClinicalService, error) {
	c, err := newCore("clinical", gen, logger, opts)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		return nil, NewServiceError("clinical", "create_service", ErrMissingDependency)
	}
	return &ClinicalService{core: c, sessions: sessions}, nil
}

// SendMessage records the doctor's message and the patient's reply. The reply
// may carry an updated differential after DifferentialMarker; every third
// message without one triggers a separate differential request.
func (s *ClinicalService) SendMessage(ctx context.Context, id uuid.UUID, text string) (ClinicalReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ClinicalReply{}, domain.ErrEmptyContent
	}

	ticket, snap, err := s.sessions.Dispatch(id, domain.ModeMedPro)
	if err != nil {
		return ClinicalReply{}, err
	}
	lang := ticket.Language

	transcript := append(slices.Clone(snap.Clinical.Transcript), domain.ChatMessage{Role: domain.RoleDoctor, Text: text})

	res, err := s.prompt(ctx, tmplPatientReply, struct {
		Message  string
		Marker   string
		Language domain.Language
	}{text, DifferentialMarker, lang}, generation.ContextMedPro)
	if err != nil {
		return ClinicalReply{}, err
	}

	fb := fallbacks(lang, "No response received.", "Không có phản hồi.")
	out := ClinicalReply{Reply: s.reply(ctx, res, fb)}

	prior := snap.Clinical.Differential
	differential := prior
	var patientText string
	var split structured.Split
	if res.OK() {
		split = structured.SplitMarker(res.Text, DifferentialMarker)
		patientText = split.Primary
		differential = split.List(prior)
		if split.Found && len(structured.ParseList(split.Secondary)) == 0 {
			s.recorder.ParseFailed("differential")
		}
		if patientText != "" {
			out.Text = patientText
			out.HTML = s.html(ctx, patientText)
		}
	}

	if len(transcript)%differentialEvery == 0 && !split.Found {
		differential = s.refreshDifferential(ctx, transcript, prior)
	}

	out.Differential = slices.Clone(differential)
	out.DifferentialUpdated = !slices.Equal(differential, prior)

	out.Applied, err = s.apply(s.sessions, ticket, func(sess *session.Session) {
		sess.Clinical.Transcript = append(sess.Clinical.Transcript, domain.ChatMessage{Role: domain.RoleDoctor, Text: text})
		if patientText != "" {
			sess.Clinical.Transcript = append(sess.Clinical.Transcript, domain.ChatMessage{Role: domain.RolePatient, Text: patientText})
		}
		sess.Clinical.Differential = slices.Clone(differential)
	})
	if err != nil {
		return ClinicalReply{}, err
	}

	return out, nil
}

// refreshDifferential asks for a comma-separated differential. It returns
// prior when the call fails or yields no items.
func (s *ClinicalService) refreshDifferential(ctx context.Context, transcript domain.Transcript, prior domain.Differential) domain.Differential {
	res, err := s.prompt(ctx, tmplDifferential, struct {
		Transcript domain.Transcript
	}{transcript}, generation.ContextMedPro)
	if err != nil || !res.OK() {
		return prior
	}
	items := structured.ParseList(res.Text)
	if len(items) == 0 {
		s.recorder.ParseFailed("differential")
		return prior
	}
	return items
}

// OrderLab returns the result of a lab test, generating it on first request.
// Concurrent orders of the same lab in one session share a single call.
func (s *ClinicalService) OrderLab(ctx context.Context, id uuid.UUID, labID string) (LabReply, error) {
	ticket, snap, err := s.sessions.Dispatch(id, domain.ModeMedPro)
	if err != nil {
		return LabReply{}, err
	}

	lab, err := snap.Clinical.Lab(labID)
	if err != nil {
		return LabReply{}, err
	}

	if cached, ok := snap.Clinical.LabResults[lab.ID]; ok {
		return LabReply{
			Reply:  Reply{Text: cached, HTML: s.html(ctx, cached)},
			Lab:    lab,
			Cached: true,
		}, nil
	}

	lang := ticket.Language
	key := id.String() + "/" + lab.ID
	v, err, shared := s.labs.Do(key, func() (any, error) {
		return s.prompt(ctx, tmplLabResult, struct {
			Lab      domain.LabOrder
			Language domain.Language
		}{lab, lang}, generation.ContextMedPro)
	})
	if err != nil {
		return LabReply{}, err
	}
	res := v.(generation.Result)
	if shared {
		s.logger.DebugContext(ctx, "lab result shared with concurrent order", "lab_id", lab.ID)
	}

	out := LabReply{
		Reply: s.reply(ctx, res, fallbacks(lang, "Result pending.", "Kết quả đang chờ.")),
		Lab:   lab,
	}
	if !res.OK() {
		return out, nil
	}

	result := out.Text
	out.Applied, err = s.apply(s.sessions, ticket, func(sess *session.Session) {
		if existing, ok := sess.Clinical.LabResults[lab.ID]; ok {
			result = existing
			return
		}
		_ = sess.Clinical.CompleteLab(lab.ID, result)
	})
	if err != nil {
		return LabReply{}, err
	}
	if result != out.Text {
		out.Text = result
		out.HTML = s.html(ctx, result)
	}
	if out.Applied {
		out.Lab.Status = domain.LabReady
	}
	return out, nil
}

// Feedback analyzes the encounter so far.
func (s *ClinicalService) Feedback(ctx context.Context, id uuid.UUID) (Reply, error) {
	ticket, snap, err := s.sessions.Dispatch(id, domain.ModeMedPro)
	if err != nil {
		return Reply{}, err
	}
	lang := ticket.Language

	res, err := s.prompt(ctx, tmplClinicalFeedback, struct {
		Transcript domain.Transcript
		Language   domain.Language
	}{snap.Clinical.Transcript, lang}, generation.ContextMedPro)
	if err != nil {
		return Reply{}, err
	}

	out := s.reply(ctx, res, fallbacks(lang, "No feedback available.", "Không có phản hồi."))
	if !res.OK() {
		return out, nil
	}

	feedback := out.Text
	out.Applied, err = s.apply(s.sessions, ticket, func(sess *session.Session) {
		sess.Clinical.Feedback = feedback
	})
	if err != nil {
		return Reply{}, err
	}
	return out, nil
}
