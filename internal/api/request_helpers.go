package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/bionexus-api/internal/api/shared"
	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/platform/logger"
	"github.com/phrazzld/bionexus-api/internal/session"
)

// withSessionID extracts the session UUID from the URL path and adds it to
// the request context for logging. An unparseable ID is answered as an
// unknown session and reported with false.
func withSessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, *http.Request, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: invalid session id", session.ErrSessionNotFound), "")
		return uuid.Nil, r, false
	}
	return id, r.WithContext(logger.WithSessionID(r.Context(), id.String())), true
}

// decodeAndValidate decodes the JSON body into v and validates it, writing a
// 400 response and reporting false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	return validateRequest(w, r, v)
}

// decodeOptionalAndValidate is decodeAndValidate for endpoints whose body may
// be omitted.
func decodeOptionalAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeOptionalJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	return validateRequest(w, r, v)
}

func validateRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := shared.ValidateRequest(v)
	if err == nil {
		return true
	}
	// Self-validating requests return typed domain errors with safe messages.
	msg := SanitizeValidationError(err)
	if MapErrorToStatusCode(err) == http.StatusBadRequest {
		msg = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msg, fmt.Errorf("%w: %w", domain.ErrValidation, err))
	return false
}

// HandleAPIError maps err to a status code and writes a sanitized error
// response, logging the redacted error. An empty message selects the safe
// message for the error type.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}

	var opts []shared.ResponseOption
	if status == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
