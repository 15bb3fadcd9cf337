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
	"github.com/phrazzld/bionexus-api/internal/structured"
)

// solveImprovement is the Physiology gain of a solved problem.
const solveImprovement = 5

// Resource is an olympiad study topic.
type Resource struct {
	Title string
	Level string
	Type  string
}

// SolveReply is the outcome of the problem solver.
type SolveReply struct {
	Reply
	Competency domain.CompetencyMap
}

// ExamReply is the outcome of starting an exam.
type ExamReply struct {
	Reply
	// Exam is the new exam, or the unchanged prior exam when the call failed.
	Exam *domain.Exam
}

// ExamResult is the outcome of finishing an exam.
type ExamResult struct {
	// Reply describes the essay grading call; it is zero for MCQ exams.
	Reply
	Exam    *domain.Exam
	Correct int
	Total   int
	// FeedbackMalformed is true when grading feedback could not be parsed.
	FeedbackMalformed bool
}

// ScholarService runs the scholar zone: solver, learning path, study guides,
// quizzes, the mentor chat and exam simulations.
type ScholarService struct {
	core
	sessions SessionStore
}

// NewScholarService creates a ScholarService.
func NewScholarService(
	gen generation.Generator,
	sessions SessionStore,
	logger *slog.Logger,
	opts ...Option,
) (*ScholarService, error) {
	c, err := newCore("scholar", gen, logger, opts)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		return nil, NewServiceError("scholar", "create_service", ErrMissingDependency)
	}
	return &ScholarService{core: c, sessions: sessions}, nil
}

// Solve explains an uploaded exam question, or the ADH mechanism when no
// image is given. A successful answer raises Physiology.
func (s *ScholarService) Solve(ctx context.Context, id uuid.UUID, img *generation.Image) (SolveReply, error) {
	ticket, snap, err := s.sessions.Dispatch(id, domain.ModeStudent)
	if err != nil {
		return SolveReply{}, err
	}
	lang := ticket.Language

	var res generation.Result
	fb := fallbacks(lang, "No response received.", "Không có phản hồi.")
	if img != nil {
		res, err = s.generate(ctx, "", generation.ContextGeneral, generation.WithImage(img.Data, img.MIMEType))
		fb = generation.FallbacksFor(lang.Code(), generation.PurposeVision).WithEmpty(fb.Empty)
	} else {
		res, err = s.prompt(ctx, tmplSolve, struct {
			Language domain.Language
		}{lang}, generation.ContextStudent)
	}
	if err != nil {
		return SolveReply{}, err
	}

	out := SolveReply{Reply: s.reply(ctx, res, fb), Competency: snap.Scholar.Competency}
	if !res.OK() {
		return out, nil
	}

	solution := out.Text
	out.Applied, err = s.apply(s.sessions, ticket, func(sess *session.Session) {
		sess.Scholar.Solution = solution
		sess.Scholar.Competency.Improve(domain.SubjectPhysiology, solveImprovement)
		out.Competency = sess.Scholar.Competency.Clone()
	})
	if err != nil {
		return SolveReply{}, err
	}
	return out, nil
}

// LearningPath builds a study plan for the weakest subject.
func (s *ScholarService) LearningPath(ctx context.Context, id uuid.UUID) (Reply, error) {
	return s.weakestSubjectReply(ctx, id, tmplLearningPath,
		fallbacksFn("Unable to generate path.", "Không thể tạo lộ trình."),
		func(sess *session.Session, text string) { sess.Scholar.LearningPath = text })
}

// IntensiveQuiz generates a quiz on the weakest subject.
func (s *ScholarService) IntensiveQuiz(ctx context.Context, id uuid.UUID) (Reply, error) {
	return s.weakestSubjectReply(ctx, id, tmplIntensiveQuiz,
		fallbacksFn("Unable to generate quiz.", "Không thể tạo bài kiểm tra."),
		func(sess *session.Session, text string) { sess.Scholar.Quiz = text })
}

func fallbacksFn(en, vi string) func(domain.Language) generation.Fallbacks {
	return func(lang domain.Language) generation.Fallbacks { return fallbacks(lang, en, vi) }
}

func (s *ScholarService) weakestSubjectReply(
	ctx context.Context,
	id uuid.UUID,
	tmpl string,
	fb func(domain.Language) generation.Fallbacks,
	store func(*session.Session, string),
) (Reply, error) {
	ticket, snap, err := s.sessions.Dispatch(id, domain.ModeStudent)
	if err != nil {
		return Reply{}, err
	}
	lang := ticket.Language

	weakest, ok := snap.Scholar.Competency.Weakest()
	if !ok {
		return Reply{}, fmt.Errorf("%w: competency map is empty", domain.ErrValidation)
	}

	res, err := s.prompt(ctx, tmpl, struct {
		Subject  string
		Language domain.Language
	}{weakest.Subject, lang}, generation.ContextStudent)
	if err != nil {
		return Reply{}, err
	}

	out := s.reply(ctx, res, fb(lang))
	if !res.OK() {
		return out, nil
	}

	text := out.Text
	out.Applied, err = s.apply(s.sessions, ticket, func(sess *session.Session) { store(sess, text) })
	if err != nil {
		return Reply{}, err
	}
	return out, nil
}

// StudyGuide writes a study guide for an olympiad resource.
func (s *ScholarService) StudyGuide(ctx context.Context, r Resource, lang domain.Language) (Reply, error) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return Reply{}, domain.ErrEmptyContent
	}

	res, err := s.prompt(ctx, tmplStudyGuide, struct {
		Resource Resource
		Language domain.Language
	}{r, lang}, generation.ContextScholar)
	if err != nil {
		return Reply{}, err
	}
	return s.reply(ctx, res, fallbacks(lang, "Content not available.", "Nội dung không khả dụng.")), nil
}

// MentorReply continues the mentor conversation.
func (s *ScholarService) MentorReply(ctx context.Context, id uuid.UUID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, domain.ErrEmptyContent
	}

	ticket, snap, err := s.sessions.Dispatch(id, domain.ModeStudent)
	if err != nil {
		return Reply{}, err
	}
	lang := ticket.Language

	res, err := s.prompt(ctx, tmplMentor, struct {
		History  domain.Transcript
		Message  string
		Language domain.Language
	}{snap.Scholar.Mentor, text, lang}, generation.ContextStudent)
	if err != nil {
		return Reply{}, err
	}

	out := s.reply(ctx, res, fallbacks(lang, "I'm here to help.", "Tôi luôn sẵn sàng giúp bạn."))
	answer := out.Text
	ok := res.OK()
	out.Applied, err = s.apply(s.sessions, ticket, func(sess *session.Session) {
		sess.Scholar.Mentor = append(sess.Scholar.Mentor, domain.ChatMessage{Role: domain.RoleUser, Text: text})
		if ok {
			sess.Scholar.Mentor = append(sess.Scholar.Mentor, domain.ChatMessage{Role: domain.RoleMentor, Text: answer})
		}
	})
	if err != nil {
		return Reply{}, err
	}
	return out, nil
}

// StartExam generates a new exam. A failed call leaves the prior exam in
// place and reports a degraded reply; an unusable payload returns an error
// wrapping structured.ErrMalformedResponse.
func (s *ScholarService) StartExam(ctx context.Context, id uuid.UUID, cfg domain.ExamConfig) (ExamReply, error) {
	if err := cfg.Validate(); err != nil {
		return ExamReply{}, err
	}

	ticket, snap, err := s.sessions.Dispatch(id, domain.ModeStudent)
	if err != nil {
		return ExamReply{}, err
	}
	lang := ticket.Language

	res, err := s.prompt(ctx, tmplExam, struct {
		Config   domain.ExamConfig
		MCQ      bool
		Language domain.Language
	}{cfg, cfg.Type == domain.ExamMCQ, lang},
		generation.ContextStudent,
		generation.WithTier(generation.TierPro),
		generation.WithJSONSchema(examSchema(cfg.Type)),
	)
	if err != nil {
		return ExamReply{}, err
	}

	if !res.OK() {
		return ExamReply{
			Reply: s.reply(ctx, res, fallbacks(lang, "Unable to generate exam.", "Không thể tạo đề thi.")),
			Exam:  snap.Scholar.Exam,
		}, nil
	}

	outcome := structured.DecodeArray[domain.ExamQuestion](res.Text)
	if !outcome.OK() {
		s.recorder.ParseFailed("exam")
		s.logger.WarnContext(ctx, "discarding malformed exam payload", "error", outcome.Err)
		return ExamReply{}, NewServiceError(s.name, "start_exam", outcome.Err)
	}

	questions := outcome.Value
	if len(questions) > cfg.NumQuestions {
		questions = questions[:cfg.NumQuestions]
	}

	exam, err := domain.NewExam(cfg, questions, s.sessions.Now())
	if err != nil {
		s.recorder.ParseFailed("exam")
		return ExamReply{}, NewServiceError(s.name, "start_exam",
			fmt.Errorf("%w: %w", structured.ErrMalformedResponse, err))
	}

	out := ExamReply{Reply: Reply{Attempts: res.Attempts}, Exam: exam}
	out.Applied, err = s.apply(s.sessions, ticket, func(sess *session.Session) {
		sess.Scholar.Exam = exam.Clone()
	})
	if err != nil {
		return ExamReply{}, err
	}
	return out, nil
}

// AnswerExam records an answer. Answering after the time limit finishes the
// exam and fails with domain.ErrExamFinished.
func (s *ScholarService) AnswerExam(ctx context.Context, id uuid.UUID, index int, answer domain.Answer) (*domain.Exam, error) {
	ticket, _, err := s.sessions.Dispatch(id, domain.ModeStudent)
	if err != nil {
		return nil, err
	}

	now := s.sessions.Now()
	var result *domain.Exam
	var opErr error
	applied, err := s.sessions.Apply(ticket, func(sess *session.Session) {
		exam := sess.Scholar.Exam
		if exam == nil {
			opErr = domain.ErrNoExam
			return
		}
		if exam.Expired(now) {
			exam.Finish(now)
			opErr = domain.ErrExamFinished
		} else {
			opErr = exam.Answer(index, answer)
		}
		result = exam.Clone()
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, session.ErrViewNotActive
	}
	if opErr != nil {
		s.logger.DebugContext(ctx, "exam answer rejected", "index", index, "error", opErr)
	}
	return result, opErr
}

// FinishExam closes the exam and, for essays, attaches grading feedback.
// Malformed feedback leaves the feedback unchanged but still finishes.
func (s *ScholarService) FinishExam(ctx context.Context, id uuid.UUID) (ExamResult, error) {
	ticket, snap, err := s.sessions.Dispatch(id, domain.ModeStudent)
	if err != nil {
		return ExamResult{}, err
	}
	exam := snap.Scholar.Exam
	if exam == nil {
		return ExamResult{}, domain.ErrNoExam
	}
	if exam.Finished {
		correct, total := exam.Score()
		return ExamResult{Exam: exam, Correct: correct, Total: total}, nil
	}
	lang := ticket.Language

	var out ExamResult
	var feedback []string
	if exam.Config.Type == domain.ExamEssay {
		res, err := s.prompt(ctx, tmplEssayGrading, struct {
			Exam     *domain.Exam
			Language domain.Language
		}{exam, lang},
			generation.ContextStudent,
			generation.WithTier(generation.TierPro),
			generation.WithJSONSchema(feedbackSchema()),
		)
		if err != nil {
			return ExamResult{}, err
		}

		if !res.OK() {
			out.Reply = s.reply(ctx, res, fallbacks(lang, "No feedback available.", "Không có phản hồi."))
		} else {
			out.Reply = Reply{Attempts: res.Attempts}
			outcome := structured.DecodeArray[string](res.Text)
			if outcome.OK() {
				feedback = outcome.Value
			} else {
				s.recorder.ParseFailed("essay_feedback")
				s.logger.WarnContext(ctx, "discarding malformed grading payload", "error", outcome.Err)
				out.FeedbackMalformed = true
				out.Degraded = true
				out.Text = lang.Pick("The grading feedback could not be read.", "Không thể đọc nhận xét chấm bài.")
				out.HTML = s.html(ctx, out.Text)
			}
		}
	}

	now := s.sessions.Now()
	result := exam
	out.Applied, err = s.apply(s.sessions, ticket, func(sess *session.Session) {
		live := sess.Scholar.Exam
		if live == nil || !live.StartedAt.Equal(exam.StartedAt) {
			return
		}
		live.Finish(now)
		if feedback != nil {
			live.AttachFeedback(feedback)
		}
		result = live.Clone()
	})
	if err != nil {
		return ExamResult{}, err
	}

	out.Exam = result
	out.Correct, out.Total = result.Score()
	return out, nil
}

func examSchema(t domain.ExamType) map[string]any {
	properties := map[string]any{
		"question":    map[string]any{"type": "string"},
		"explanation": map[string]any{"type": "string"},
		"type":        map[string]any{"type": "string", "enum": []string{string(t)}},
	}
	required := []string{"question", "correctAnswer", "explanation", "type"}

	if t == domain.ExamMCQ {
		properties["options"] = map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"minItems": 4,
			"maxItems": 4,
		}
		properties["correctAnswer"] = map[string]any{"type": "integer", "minimum": 0, "maximum": 3}
		required = append(required, "options")
	} else {
		properties["correctAnswer"] = map[string]any{"type": "string"}
	}

	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

func feedbackSchema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}
