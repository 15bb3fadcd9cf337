// Package session keeps per-learner state in memory and guards it against
// stale model responses.
//
// Every state change driven by a model call follows dispatch/apply: Dispatch
// captures the active view and the session's navigation generation in a
// Ticket before the call, and Apply runs the update only if the learner has
// not navigated since. A response that arrives for a view the learner left is
// dropped instead of overwriting newer state.
package session

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bionexus-api/internal/domain"
)

// Session errors
var (
	// ErrSessionNotFound is returned for an unknown session ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrViewNotActive is returned when an operation targets a view other
	// than the session's active one.
	ErrViewNotActive = errors.New("view is not active")
)

// ScholarState is the state of the scholar zone.
type ScholarState struct {
	Competency   domain.CompetencyMap `json:"competency"`
	Solution     string               `json:"solution,omitempty"`
	LearningPath string               `json:"learning_path,omitempty"`
	Quiz         string               `json:"quiz,omitempty"`
	Mentor       domain.Transcript    `json:"mentor"`
	Exam         *domain.Exam         `json:"exam,omitempty"`
}

func (s ScholarState) clone() ScholarState {
	s.Competency = s.Competency.Clone()
	s.Mentor = slices.Clone(s.Mentor)
	s.Exam = s.Exam.Clone()
	return s
}

// PatientState is the state of the bio-digital twin zone.
type PatientState struct {
	Profile       domain.TwinProfile `json:"profile"`
	SelectedOrgan domain.Organ       `json:"selected_organ,omitempty"`
	Insight       string             `json:"insight,omitempty"`
}

// Session is one learner's state across all zones.
type Session struct {
	ID         uuid.UUID       `json:"id"`
	Language   domain.Language `json:"language"`
	ActiveView domain.Mode     `json:"active_view"`
	Generation uint64          `json:"generation"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Clinical domain.ClinicalCase `json:"clinical"`
	Scholar  ScholarState        `json:"scholar"`
	Patient  PatientState        `json:"patient"`
}

func newSession(lang domain.Language, view domain.Mode, now time.Time) *Session {
	return &Session{
		ID:         uuid.New(),
		Language:   lang,
		ActiveView: view,
		CreatedAt:  now,
		UpdatedAt:  now,
		Clinical:   domain.NewClinicalCase(lang),
		Scholar: ScholarState{
			Competency: domain.DefaultCompetencyMap(),
			Mentor:     domain.Transcript{},
		},
		Patient: PatientState{Profile: domain.DefaultTwinProfile()},
	}
}

// Clone returns a deep copy that shares no mutable state with s.
func (s *Session) Clone() *Session {
	c := *s
	c.Clinical = s.Clinical.Clone()
	c.Scholar = s.Scholar.clone()
	return &c
}

// Ticket identifies the session state a model call was dispatched against.
type Ticket struct {
	SessionID  uuid.UUID
	View       domain.Mode
	Generation uint64
	Language   domain.Language
}
