package api

import (
	"github.com/go-chi/chi/v5"
)

// Handlers groups the handlers mounted under /api.
type Handlers struct {
	Sessions  *SessionHandler
	Knowledge *KnowledgeHandler
	Clinical  *ClinicalHandler
	Scholar   *ScholarHandler
	Patient   *PatientHandler
}

// RegisterRoutes mounts every API route on r.
func RegisterRoutes(r chi.Router, h Handlers) {
	// Stateless endpoints
	r.Post("/knowledge/search", h.Knowledge.Search)
	r.Post("/knowledge/concepts", h.Knowledge.ExplainConcept)
	r.Post("/scholar/study-guide", h.Scholar.StudyGuide)
	r.Post("/patient/organs/{organ}/insight", h.Patient.OrganInsight)
	r.Post("/speech", h.Patient.Speak)

	// Session endpoints
	r.Post("/sessions", h.Sessions.CreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.Sessions.GetSession)
		r.Put("/view", h.Sessions.Navigate)
		r.Put("/language", h.Sessions.SetLanguage)

		r.Post("/clinical/messages", h.Clinical.SendMessage)
		r.Post("/clinical/labs/{labID}", h.Clinical.OrderLab)
		r.Post("/clinical/feedback", h.Clinical.Feedback)

		r.Post("/scholar/solve", h.Scholar.Solve)
		r.Post("/scholar/learning-path", h.Scholar.LearningPath)
		r.Post("/scholar/quiz", h.Scholar.IntensiveQuiz)
		r.Post("/scholar/mentor", h.Scholar.MentorReply)
		r.Post("/scholar/exam", h.Scholar.StartExam)
		r.Put("/scholar/exam/answers/{index}", h.Scholar.AnswerExam)
		r.Post("/scholar/exam/finish", h.Scholar.FinishExam)

		r.Post("/patient/organs/{organ}", h.Patient.SelectOrgan)
	})
}
