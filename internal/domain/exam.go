package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ExamLevel is the competition an exam simulates.
type ExamLevel string

// Exam levels
const (
	ExamOlympic ExamLevel = "olympic"
	ExamHSGQG   ExamLevel = "hsgqg"
)

// DisplayName returns the full competition name used in prompts.
func (l ExamLevel) DisplayName() string {
	if l == ExamHSGQG {
		return "Vietnam National Gifted Students Exam (HSGQG)"
	}
	return "International Biology Olympiad (IBO)"
}

// ExamType is the question format.
type ExamType string

// Exam types
const (
	ExamMCQ   ExamType = "mcq"
	ExamEssay ExamType = "essay"
)

// Exam limits
const (
	MaxExamQuestions   = 20
	MaxExamDurationMin = 300
)

// ExamConfig holds the learner's exam settings.
type ExamConfig struct {
	Level           ExamLevel `json:"level"`
	Type            ExamType  `json:"type"`
	NumQuestions    int       `json:"num_questions"`
	DurationMinutes int       `json:"duration_minutes"`
}

// DefaultExamConfig is five MCQs at olympiad level in sixty minutes.
func DefaultExamConfig() ExamConfig {
	return ExamConfig{Level: ExamOlympic, Type: ExamMCQ, NumQuestions: 5, DurationMinutes: 60}
}

// Validate checks the configuration ranges.
func (c ExamConfig) Validate() error {
	if c.Level != ExamOlympic && c.Level != ExamHSGQG {
		return fmt.Errorf("%w: unknown level %q", ErrInvalidExamConfig, c.Level)
	}
	if c.Type != ExamMCQ && c.Type != ExamEssay {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidExamConfig, c.Type)
	}
	if c.NumQuestions < 1 || c.NumQuestions > MaxExamQuestions {
		return fmt.Errorf("%w: number of questions must be between 1 and %d", ErrInvalidExamConfig, MaxExamQuestions)
	}
	if c.DurationMinutes < 1 || c.DurationMinutes > MaxExamDurationMin {
		return fmt.Errorf("%w: duration must be between 1 and %d minutes", ErrInvalidExamConfig, MaxExamDurationMin)
	}
	return nil
}

// Duration returns the exam time limit.
func (c ExamConfig) Duration() time.Duration {
	return time.Duration(c.DurationMinutes) * time.Minute
}

// Answer is either an option index (MCQ) or free text (essay). The zero value
// means unanswered. In JSON it is a number, a string or null.
type Answer struct {
	index   int
	text    string
	isIndex bool
	isText  bool
}

// IndexAnswer returns an MCQ answer.
func IndexAnswer(i int) Answer { return Answer{index: i, isIndex: true} }

// TextAnswer returns an essay answer.
func TextAnswer(s string) Answer { return Answer{text: s, isText: true} }

// Index returns the option index and whether the answer is an index.
func (a Answer) Index() (int, bool) { return a.index, a.isIndex }

// Text returns the free-text answer.
func (a Answer) Text() string { return a.text }

// IsZero reports whether the question is unanswered.
func (a Answer) IsZero() bool { return !a.isIndex && !a.isText }

// String renders the answer for prompts.
func (a Answer) String() string {
	switch {
	case a.isIndex:
		return strconv.Itoa(a.index)
	case a.isText:
		return a.text
	default:
		return ""
	}
}

// MarshalJSON implements json.Marshaler.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch {
	case a.isIndex:
		return json.Marshal(a.index)
	case a.isText:
		return json.Marshal(a.text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Answer{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: answer must be a number or a string", ErrInvalidAnswer)
	}
	if n != float64(int(n)) {
		return fmt.Errorf("%w: option index must be an integer", ErrInvalidAnswer)
	}
	*a = IndexAnswer(int(n))
	return nil
}

// asOptionIndex interprets a textual MCQ answer such as "2" or "C".
func (a Answer) asOptionIndex(numOptions int) (int, bool) {
	if a.isIndex {
		return a.index, a.index >= 0 && a.index < numOptions
	}
	s := strings.TrimSpace(a.text)
	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 0 && n < numOptions
	}
	if len(s) == 1 {
		n := int(strings.ToUpper(s)[0] - 'A')
		return n, n >= 0 && n < numOptions
	}
	return 0, false
}

// ExamQuestion is one generated question.
type ExamQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer Answer   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Type          ExamType `json:"type"`
}

// Normalize fills a missing type with expected and converts lettered or
// numeric-string MCQ answers into an option index.
func (q *ExamQuestion) Normalize(expected ExamType) {
	q.Question = strings.TrimSpace(q.Question)
	if q.Type == "" {
		q.Type = expected
	}
	if q.Type == ExamMCQ && !q.CorrectAnswer.isIndex && !q.CorrectAnswer.IsZero() {
		if n, ok := q.CorrectAnswer.asOptionIndex(len(q.Options)); ok {
			q.CorrectAnswer = IndexAnswer(n)
		}
	}
}

// Validate checks that the question can be presented and graded.
func (q ExamQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: question text is empty", ErrInvalidQuestion)
	}
	switch q.Type {
	case ExamMCQ:
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: multiple-choice question needs at least two options", ErrInvalidQuestion)
		}
		idx, ok := q.CorrectAnswer.Index()
		if !ok || idx < 0 || idx >= len(q.Options) {
			return fmt.Errorf("%w: correct answer is not an option index", ErrInvalidQuestion)
		}
	case ExamEssay:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, q.Type)
	}
	return nil
}

// Exam is a running or finished exam simulation.
type Exam struct {
	Config     ExamConfig     `json:"config"`
	Questions  []ExamQuestion `json:"questions"`
	Answers    []Answer       `json:"answers"`
	Feedback   []string       `json:"feedback,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	Finished   bool           `json:"finished"`
	FinishedAt time.Time      `json:"finished_at"`
}

// NewExam validates generated questions and starts the clock at now.
func NewExam(cfg ExamConfig, questions []ExamQuestion, now time.Time) (*Exam, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: exam has no questions", ErrInvalidQuestion)
	}

	qs := make([]ExamQuestion, len(questions))
	for i, q := range questions {
		q.Options = slices.Clone(q.Options)
		q.Normalize(cfg.Type)
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		qs[i] = q
	}

	return &Exam{
		Config:    cfg,
		Questions: qs,
		Answers:   make([]Answer, len(qs)),
		StartedAt: now.UTC(),
	}, nil
}

// Answer records the learner's answer to question i.
func (e *Exam) Answer(i int, a Answer) error {
	if e.Finished {
		return ErrExamFinished
	}
	if i < 0 || i >= len(e.Questions) {
		return fmt.Errorf("%w: %d", ErrQuestionIndex, i)
	}
	if e.Questions[i].Type == ExamMCQ {
		idx, ok := a.asOptionIndex(len(e.Questions[i].Options))
		if !ok {
			return fmt.Errorf("%w: expected an option index for question %d", ErrInvalidAnswer, i+1)
		}
		a = IndexAnswer(idx)
	} else if !a.isText {
		a = TextAnswer(a.String())
	}
	e.Answers[i] = a
	return nil
}

// TimeLeft returns the remaining time at now, never negative.
func (e *Exam) TimeLeft(now time.Time) time.Duration {
	left := e.Config.Duration() - now.Sub(e.StartedAt)
	if left < 0 || e.Finished {
		return 0
	}
	return left
}

// Expired reports whether the time limit has passed.
func (e *Exam) Expired(now time.Time) bool {
	return !e.Finished && e.TimeLeft(now) == 0
}

// Finish closes the exam. Finishing twice keeps the first time.
func (e *Exam) Finish(now time.Time) {
	if e.Finished {
		return
	}
	e.Finished = true
	e.FinishedAt = now.UTC()
}

// Score counts correct MCQ answers out of the MCQ questions.
func (e *Exam) Score() (correct, total int) {
	for i, q := range e.Questions {
		if q.Type != ExamMCQ {
			continue
		}
		total++
		want, _ := q.CorrectAnswer.Index()
		if got, ok := e.Answers[i].Index(); ok && got == want {
			correct++
		}
	}
	return correct, total
}

// AttachFeedback stores per-question feedback, padding with empty strings or
// dropping extras so there is exactly one entry per question.
func (e *Exam) AttachFeedback(feedback []string) {
	out := make([]string, len(e.Questions))
	copy(out, feedback)
	e.Feedback = out
}

// Clone returns a deep copy.
func (e *Exam) Clone() *Exam {
	if e == nil {
		return nil
	}
	c := *e
	c.Questions = make([]ExamQuestion, len(e.Questions))
	for i, q := range e.Questions {
		q.Options = slices.Clone(q.Options)
		c.Questions[i] = q
	}
	c.Answers = slices.Clone(e.Answers)
	c.Feedback = slices.Clone(e.Feedback)
	return &c
}
