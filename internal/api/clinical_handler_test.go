package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/phrazzld/bionexus-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClinicalHandler_SendMessage(t *testing.T) {
	t.Parallel()

	gen := mocks.NewMockGeneratorWithText("The pain moved to my right side.\n[DIFFERENTIAL]\nAppendicitis, Ovarian cyst")
	a := newTestAPI(t, gen)
	id := a.newSession(t, domain.LanguageEnglish, domain.ModeMedPro)

	rr := a.do(t, http.MethodPost, "/api/sessions/"+id.String()+"/clinical/messages", MessageRequest{Text: "Where is the pain now?"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeBody[ClinicalMessageResponse](t, rr)
	assert.Equal(t, "The pain moved to my right side.", resp.Text)
	assert.True(t, resp.Applied)
	assert.True(t, resp.DifferentialUpdated)
	assert.Equal(t, domain.Differential{"Appendicitis", "Ovarian cyst"}, resp.Differential)

	sess, err := a.store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, resp.Differential, sess.Clinical.Differential)
}

func TestClinicalHandler_SendMessageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		view           domain.Mode
		sessionID      func(id uuid.UUID) string
		body           interface{}
		expectedStatus int
		expectedErrMsg string
	}{
		{
			name:           "inactive view",
			view:           domain.ModeStudent,
			sessionID:      func(id uuid.UUID) string { return id.String() },
			body:           MessageRequest{Text: "Hello"},
			expectedStatus: http.StatusConflict,
			expectedErrMsg: "This view is not active in the session",
		},
		{
			name:           "unknown session",
			view:           domain.ModeMedPro,
			sessionID:      func(uuid.UUID) string { return uuid.NewString() },
			body:           MessageRequest{Text: "Hello"},
			expectedStatus: http.StatusNotFound,
			expectedErrMsg: "Session not found",
		},
		{
			name:           "empty message",
			view:           domain.ModeMedPro,
			sessionID:      func(id uuid.UUID) string { return id.String() },
			body:           MessageRequest{},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Invalid Text: required field",
		},
		{
			name:           "missing body",
			view:           domain.ModeMedPro,
			sessionID:      func(id uuid.UUID) string { return id.String() },
			body:           nil,
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Invalid request format",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gen := mocks.NewMockGeneratorWithText("unused")
			a := newTestAPI(t, gen)
			id := a.newSession(t, domain.LanguageEnglish, tc.view)

			rr := a.do(t, http.MethodPost, "/api/sessions/"+tc.sessionID(id)+"/clinical/messages", tc.body)
			require.Equal(t, tc.expectedStatus, rr.Code, rr.Body.String())
			assert.Equal(t, tc.expectedErrMsg, decodeError(t, rr).Error)
			assert.Equal(t, 0, gen.CallCount())
		})
	}
}

func TestClinicalHandler_OrderLab(t *testing.T) {
	t.Parallel()

	gen := mocks.NewMockGeneratorWithText("WBC 14,500/uL with neutrophilia.")
	a := newTestAPI(t, gen)
	id := a.newSession(t, domain.LanguageEnglish, domain.ModeMedPro)
	path := "/api/sessions/" + id.String() + "/clinical/labs/"

	rr := a.do(t, http.MethodPost, path+"cbc", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	first := decodeBody[LabResponse](t, rr)
	assert.Equal(t, "WBC 14,500/uL with neutrophilia.", first.Text)
	assert.Equal(t, domain.LabReady, first.Lab.Status)
	assert.False(t, first.Cached)
	assert.True(t, first.Applied)

	rr = a.do(t, http.MethodPost, path+"cbc", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	second := decodeBody[LabResponse](t, rr)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, gen.CallCount())

	rr = a.do(t, http.MethodPost, path+"mri", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Lab order not found", decodeError(t, rr).Error)
}

func TestClinicalHandler_FeedbackDegraded(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, mocks.MockGeneratorWithQuotaExhausted())
	id := a.newSession(t, domain.LanguageVietnamese, domain.ModeMedPro)

	rr := a.do(t, http.MethodPost, "/api/sessions/"+id.String()+"/clinical/feedback", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeBody[ReplyResponse](t, rr)
	assert.True(t, resp.Degraded)
	assert.Equal(t, "capacity_exhausted", resp.ErrorKind)
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, "Bio-Nexus AI hiện đang quá tải (vượt hạn mức). Vui lòng đợi một lát rồi thử lại.", resp.Text)
}

func TestClinicalHandler_ResponseAfterNavigationIsDropped(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{}
	a := newTestAPI(t, gen)
	id := a.newSession(t, domain.LanguageEnglish, domain.ModeMedPro)

	// The learner leaves the clinical zone while the model is answering.
	gen.GenerateFn = func(ctx context.Context, req generation.PromptRequest) generation.Result {
		_, err := a.store.Navigate(id, domain.ModeStudent)
		require.NoError(t, err)
		return mocks.TextResult("Late answer.\n[DIFFERENTIAL]\nPancreatitis")
	}

	rr := a.do(t, http.MethodPost, "/api/sessions/"+id.String()+"/clinical/messages", MessageRequest{Text: "Any fever?"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeBody[ClinicalMessageResponse](t, rr)
	assert.False(t, resp.Applied)
	assert.Equal(t, []string{string(domain.ModeMedPro)}, a.recorder.Stale())

	sess, err := a.store.Get(id)
	require.NoError(t, err)
	assert.Len(t, sess.Clinical.Transcript, 1, "only the greeting remains")
	assert.Equal(t, domain.Differential{"Appendicitis", "Gastroenteritis", "UTI"}, sess.Clinical.Differential)
}
