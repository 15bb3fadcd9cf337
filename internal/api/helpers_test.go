package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/bionexus-api/internal/api/middleware"
	"github.com/phrazzld/bionexus-api/internal/api/shared"
	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/mocks"
	"github.com/phrazzld/bionexus-api/internal/service"
	"github.com/phrazzld/bionexus-api/internal/session"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

// testAPI is a router wired to real services backed by a mock generator.
type testAPI struct {
	router   http.Handler
	store    *session.Store
	clock    *testClock
	gen      *mocks.MockGenerator
	recorder *mocks.MockRecorder
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAPI(t *testing.T, gen *mocks.MockGenerator) *testAPI {
	t.Helper()

	logger := discardLogger()
	clock := &testClock{now: testNow}
	store := session.NewStore(logger, session.WithClock(clock.Now))
	rec := &mocks.MockRecorder{}
	opt := service.WithRecorder(rec)

	knowledge, err := service.NewKnowledgeService(gen, logger, opt)
	require.NoError(t, err)
	clinical, err := service.NewClinicalService(gen, store, logger, opt)
	require.NoError(t, err)
	scholar, err := service.NewScholarService(gen, store, logger, opt)
	require.NoError(t, err)
	patient, err := service.NewPatientService(gen, store, logger, opt)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(logger))
	r.Route("/api", func(r chi.Router) {
		RegisterRoutes(r, Handlers{
			Sessions:  NewSessionHandler(store, logger),
			Knowledge: NewKnowledgeHandler(knowledge, logger),
			Clinical:  NewClinicalHandler(clinical, logger),
			Scholar:   NewScholarHandler(scholar, store.Now, logger),
			Patient:   NewPatientHandler(patient, logger),
		})
	})

	return &testAPI{router: r, store: store, clock: clock, gen: gen, recorder: rec}
}

// do sends a request with an optional JSON body and returns the recorder.
func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) newSession(t *testing.T, lang domain.Language, view domain.Mode) uuid.UUID {
	t.Helper()
	sess, err := a.store.Create(lang, view)
	require.NoError(t, err)
	return sess.ID
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	return decodeBody[shared.ErrorResponse](t, rr)
}
