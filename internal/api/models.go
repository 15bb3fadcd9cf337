package api

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/phrazzld/bionexus-api/internal/service"
	"github.com/phrazzld/bionexus-api/internal/session"
)

// Session requests

// CreateSessionRequest defines the payload for creating a learner session.
// Empty fields select English and the scholar zone.
type CreateSessionRequest struct {
	Language string `json:"language"`
	View     string `json:"view"`
}

// NavigateRequest defines the payload for switching the active view.
type NavigateRequest struct {
	View string `json:"view" validate:"required"`
}

// LanguageRequest defines the payload for switching the response language.
type LanguageRequest struct {
	Language string `json:"language" validate:"required"`
}

// Knowledge requests

// SearchRequest defines the payload for the knowledge hub search.
type SearchRequest struct {
	Query    string `json:"query"    validate:"required,max=2000"`
	Mode     string `json:"mode"     validate:"required"`
	Language string `json:"language"`
}

// ConceptRequest defines the payload for a knowledge graph concept explanation.
type ConceptRequest struct {
	Concept  string `json:"concept"  validate:"required,max=200"`
	Language string `json:"language"`
}

// Clinical and scholar requests

// MessageRequest defines the payload of a chat message.
type MessageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// SolveRequest defines the payload of the problem solver. Without an image
// the built-in ADH problem is solved.
type SolveRequest struct {
	ImageBase64 string `json:"image_base64" validate:"omitempty,base64"`
	MIMEType    string `json:"mime_type"    validate:"required_with=ImageBase64"`
}

// Image decodes the attached image, or returns nil when none was sent.
func (r SolveRequest) Image() (*generation.Image, error) {
	if r.ImageBase64 == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: image is not valid base64", generation.ErrInvalidImage)
	}
	return &generation.Image{Data: data, MIMEType: strings.TrimSpace(r.MIMEType)}, nil
}

// StudyGuideRequest defines the payload for a resource study guide.
type StudyGuideRequest struct {
	Title    string `json:"title"    validate:"required,max=200"`
	Level    string `json:"level"    validate:"max=100"`
	Type     string `json:"type"     validate:"max=100"`
	Language string `json:"language"`
}

// ExamRequest defines the payload for starting an exam simulation.
type ExamRequest struct {
	Level           string `json:"level"            validate:"required,oneof=olympic hsgqg"`
	Type            string `json:"type"             validate:"required,oneof=mcq essay"`
	NumQuestions    int    `json:"num_questions"    validate:"gte=1,lte=20"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=1,lte=300"`
}

// Config converts the request into an exam configuration.
func (r ExamRequest) Config() domain.ExamConfig {
	return domain.ExamConfig{
		Level:           domain.ExamLevel(r.Level),
		Type:            domain.ExamType(r.Type),
		NumQuestions:    r.NumQuestions,
		DurationMinutes: r.DurationMinutes,
	}
}

// AnswerRequest defines the payload of an exam answer: an option index for
// multiple-choice questions, text for essays.
type AnswerRequest struct {
	Answer domain.Answer `json:"answer"`
}

// Validate rejects a missing answer.
func (r AnswerRequest) Validate() error {
	if r.Answer.IsZero() {
		return fmt.Errorf("%w: answer is required", domain.ErrInvalidAnswer)
	}
	return nil
}

// Patient requests

// InsightRequest defines the optional payload of a stateless organ insight.
type InsightRequest struct {
	Language string `json:"language"`
}

// SpeechRequest defines the payload for text-to-speech.
type SpeechRequest struct {
	Text  string `json:"text"  validate:"required,max=5000"`
	Voice string `json:"voice" validate:"omitempty,oneof=narrator patient"`
}

// Responses

// ReplyResponse is the response of every operation whose answer is shown
// directly. A failed model call is answered with the localized fallback text,
// Degraded set and ErrorKind naming the failure.
type ReplyResponse struct {
	Text      string `json:"text"`
	HTML      string `json:"html"`
	Degraded  bool   `json:"degraded"`
	ErrorKind string `json:"error_kind,omitempty"`
	Applied   bool   `json:"applied"`
	Attempts  int    `json:"attempts"`
}

func toReplyResponse(r service.Reply) ReplyResponse {
	resp := ReplyResponse{
		Text:     r.Text,
		HTML:     r.HTML,
		Degraded: r.Degraded,
		Applied:  r.Applied,
		Attempts: r.Attempts,
	}
	if r.ErrorKind != generation.KindNone {
		resp.ErrorKind = r.ErrorKind.String()
	}
	return resp
}

// SessionResponse is the full state of a learner session.
type SessionResponse struct {
	*session.Session
}

// ClinicalMessageResponse is the response of a doctor message.
type ClinicalMessageResponse struct {
	ReplyResponse
	Differential        domain.Differential `json:"differential"`
	DifferentialUpdated bool                `json:"differential_updated"`
}

// LabResponse is the response of a lab order.
type LabResponse struct {
	ReplyResponse
	Lab    domain.LabOrder `json:"lab"`
	Cached bool            `json:"cached"`
}

// SolveResponse is the response of the problem solver.
type SolveResponse struct {
	ReplyResponse
	Competency domain.CompetencyMap `json:"competency"`
}

// ExamResponse is the response of starting an exam. Exam is the unchanged
// prior exam, possibly null, when the call degraded.
type ExamResponse struct {
	ReplyResponse
	Exam            *domain.Exam `json:"exam"`
	TimeLeftSeconds int          `json:"time_left_seconds"`
}

// ExamStateResponse is the response of answering an exam question.
type ExamStateResponse struct {
	Exam            *domain.Exam `json:"exam"`
	TimeLeftSeconds int          `json:"time_left_seconds"`
}

// ExamResultResponse is the response of finishing an exam. Score fields are
// only set for multiple-choice exams.
type ExamResultResponse struct {
	ReplyResponse
	Exam              *domain.Exam `json:"exam"`
	Correct           int          `json:"correct"`
	Total             int          `json:"total"`
	FeedbackMalformed bool         `json:"feedback_malformed"`
}

// SpeechResponse is the response of text-to-speech. AudioBase64 is empty when
// the call degraded.
type SpeechResponse struct {
	AudioBase64 string `json:"audio_base64"`
	MIMEType    string `json:"mime_type,omitempty"`
	Degraded    bool   `json:"degraded"`
	ErrorKind   string `json:"error_kind,omitempty"`
	Attempts    int    `json:"attempts"`
}

// HealthResponse is the response of the health check.
type HealthResponse struct {
	Status string `json:"status"`
}
