package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/phrazzld/bionexus-api/internal/session"
	"github.com/phrazzld/bionexus-api/internal/structured"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
//
// Gateway failures of direct-render operations never get here: they are
// answered with a degraded reply. Only structured operations and speech
// surface gateway errors.
func MapErrorToStatusCode(err error) int {
	switch {
	// Malformed model output is checked first because it may also wrap a
	// domain validation error from the decoded payload.
	case errors.Is(err, structured.ErrMalformedResponse):
		return http.StatusBadGateway

	// Not found errors
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, domain.ErrLabNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, session.ErrViewNotActive),
		errors.Is(err, domain.ErrNoExam),
		errors.Is(err, domain.ErrExamFinished):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrInvalidLanguage),
		errors.Is(err, domain.ErrInvalidOrgan),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrInvalidExamConfig),
		errors.Is(err, domain.ErrQuestionIndex),
		errors.Is(err, domain.ErrInvalidAnswer),
		errors.Is(err, generation.ErrEmptyPrompt),
		errors.Is(err, generation.ErrInvalidImage):
		return http.StatusBadRequest

	// Gateway errors
	case errors.Is(err, generation.ErrCapacityExhausted):
		return http.StatusTooManyRequests
	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generation.ErrRequestFailed):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, structured.ErrMalformedResponse):
		return "The AI returned a response that could not be read"

	case errors.Is(err, session.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, domain.ErrLabNotFound):
		return "Lab order not found"

	case errors.Is(err, session.ErrViewNotActive):
		return "This view is not active in the session"

	case errors.Is(err, domain.ErrNoExam):
		return "No exam has been started"

	case errors.Is(err, domain.ErrExamFinished):
		return "The exam is already finished"

	case errors.Is(err, domain.ErrInvalidMode):
		return "Invalid mode"

	case errors.Is(err, domain.ErrInvalidLanguage):
		return "Invalid language"

	case errors.Is(err, domain.ErrInvalidOrgan):
		return "Unknown organ"

	case errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, generation.ErrEmptyPrompt):
		return "Content cannot be empty"

	case errors.Is(err, domain.ErrInvalidExamConfig):
		return "Invalid exam configuration"

	case errors.Is(err, domain.ErrQuestionIndex):
		return "Question not found"

	case errors.Is(err, domain.ErrInvalidAnswer):
		return "Invalid answer"

	case errors.Is(err, generation.ErrInvalidImage):
		return "Invalid image"

	case errors.Is(err, domain.ErrValidation):
		return "Invalid request"

	case errors.Is(err, generation.ErrCapacityExhausted):
		return "The Bio-Nexus AI is currently experiencing high demand. Please try again later"

	case errors.Is(err, generation.ErrContentBlocked):
		return "The request was blocked by content safety filters"

	case errors.Is(err, generation.ErrRequestFailed):
		return "The AI service could not complete the request"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'MessageRequest.Text' Error:Field validation for 'Text' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required", "required_with":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "base64":
		return "invalid base64 data"
	default:
		return "validation failed"
	}
}
