package service

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var prompts = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(templateFS, "templates/*.tmpl"),
)

// Prompt template names
const (
	tmplPatientReply     = "patient_reply.tmpl"
	tmplDifferential     = "differential.tmpl"
	tmplLabResult        = "lab_result.tmpl"
	tmplClinicalFeedback = "clinical_feedback.tmpl"
	tmplSolve            = "solve.tmpl"
	tmplLearningPath     = "learning_path.tmpl"
	tmplStudyGuide       = "study_guide.tmpl"
	tmplIntensiveQuiz    = "intensive_quiz.tmpl"
	tmplMentor           = "mentor.tmpl"
	tmplExam             = "exam.tmpl"
	tmplEssayGrading     = "essay_grading.tmpl"
	tmplOrganInsight     = "organ_insight.tmpl"
	tmplConcept          = "concept.tmpl"
	tmplHubSearch        = "hub_search.tmpl"
	tmplSpeech           = "speech.tmpl"
)

// renderPrompt executes the named template and trims the result.
func renderPrompt(name string, data any) (string, error) {
	var sb strings.Builder
	if err := prompts.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("rendering prompt %s: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), nil
}
