package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/bionexus-api/internal/api"
	apiMiddleware "github.com/phrazzld/bionexus-api/internal/api/middleware"
	"github.com/phrazzld/bionexus-api/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(app.metrics.Middleware)

	handlers := api.Handlers{
		Sessions:  api.NewSessionHandler(app.sessions, app.logger),
		Knowledge: api.NewKnowledgeHandler(app.knowledgeService, app.logger),
		Clinical:  api.NewClinicalHandler(app.clinicalService, app.logger),
		Scholar:   api.NewScholarHandler(app.scholarService, app.sessions.Now, app.logger),
		Patient:   api.NewPatientHandler(app.patientService, app.logger),
	}

	r.Route("/api", func(r chi.Router) {
		api.RegisterRoutes(r, handlers)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, api.HealthResponse{Status: "ok"})
	})
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
