package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/bionexus-api/internal/api/middleware"
	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/mocks"
	"github.com/phrazzld/bionexus-api/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionHandler_CreateSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedLang   domain.Language
		expectedView   domain.Mode
		expectedErrMsg string
	}{
		{
			name:           "empty body uses defaults",
			body:           nil,
			expectedStatus: http.StatusCreated,
			expectedLang:   domain.LanguageEnglish,
			expectedView:   domain.ModeStudent,
		},
		{
			name:           "vietnamese clinical session",
			body:           CreateSessionRequest{Language: "vi", View: "medpro"},
			expectedStatus: http.StatusCreated,
			expectedLang:   domain.LanguageVietnamese,
			expectedView:   domain.ModeMedPro,
		},
		{
			name:           "mode label accepted",
			body:           CreateSessionRequest{View: "Patient Mode"},
			expectedStatus: http.StatusCreated,
			expectedLang:   domain.LanguageEnglish,
			expectedView:   domain.ModePatient,
		},
		{
			name:           "unknown language",
			body:           CreateSessionRequest{Language: "fr"},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Invalid language",
		},
		{
			name:           "unknown view",
			body:           CreateSessionRequest{View: "surgeon"},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Invalid mode",
		},
		{
			name:           "malformed body",
			body:           `{"language":`,
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Invalid request format",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := newTestAPI(t, &mocks.MockGenerator{})
			rr := a.do(t, http.MethodPost, "/api/sessions", tc.body)

			require.Equal(t, tc.expectedStatus, rr.Code, rr.Body.String())
			if tc.expectedErrMsg != "" {
				errResp := decodeError(t, rr)
				assert.Equal(t, tc.expectedErrMsg, errResp.Error)
				assert.Equal(t, rr.Header().Get(middleware.TraceIDHeader), errResp.TraceID)
				assert.Equal(t, 0, a.store.Len())
				return
			}

			sess := decodeBody[session.Session](t, rr)
			assert.NotEqual(t, uuid.Nil, sess.ID)
			assert.Equal(t, tc.expectedLang, sess.Language)
			assert.Equal(t, tc.expectedView, sess.ActiveView)
			assert.Len(t, sess.Scholar.Competency, 6)
			assert.Equal(t, 1, a.store.Len())
		})
	}
}

func TestSessionHandler_GetSession(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, &mocks.MockGenerator{})
	id := a.newSession(t, domain.LanguageEnglish, domain.ModeMedPro)

	rr := a.do(t, http.MethodGet, "/api/sessions/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	sess := decodeBody[session.Session](t, rr)
	assert.Equal(t, id, sess.ID)
	assert.Equal(t, domain.Differential{"Appendicitis", "Gastroenteritis", "UTI"}, sess.Clinical.Differential)

	rr = a.do(t, http.MethodGet, "/api/sessions/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Session not found", decodeError(t, rr).Error)

	rr = a.do(t, http.MethodGet, "/api/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSessionHandler_NavigateAndLanguage(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, &mocks.MockGenerator{})
	id := a.newSession(t, domain.LanguageEnglish, domain.ModeStudent)
	path := "/api/sessions/" + id.String()

	rr := a.do(t, http.MethodPut, path+"/view", NavigateRequest{View: "medpro"})
	require.Equal(t, http.StatusOK, rr.Code)
	sess := decodeBody[session.Session](t, rr)
	assert.Equal(t, domain.ModeMedPro, sess.ActiveView)
	assert.Equal(t, uint64(1), sess.Generation)

	rr = a.do(t, http.MethodPut, path+"/view", NavigateRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid View: required field", decodeError(t, rr).Error)

	rr = a.do(t, http.MethodPut, path+"/language", LanguageRequest{Language: "vi"})
	require.Equal(t, http.StatusOK, rr.Code)
	sess = decodeBody[session.Session](t, rr)
	assert.Equal(t, domain.LanguageVietnamese, sess.Language)
	assert.Equal(t, uint64(1), sess.Generation, "language change does not invalidate tickets")

	rr = a.do(t, http.MethodPut, path+"/language", LanguageRequest{Language: "de"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
