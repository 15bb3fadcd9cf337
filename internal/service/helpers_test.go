package service_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/session"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClock is a settable clock for exam timing.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newStoreWithClock(t *testing.T) (*session.Store, *testClock) {
	t.Helper()
	clock := &testClock{now: testNow}
	return session.NewStore(discardLogger(), session.WithClock(clock.Now)), clock
}

func newStore(t *testing.T) *session.Store {
	t.Helper()
	store, _ := newStoreWithClock(t)
	return store
}

func newSession(t *testing.T, store *session.Store, lang domain.Language, view domain.Mode) uuid.UUID {
	t.Helper()
	sess, err := store.Create(lang, view)
	require.NoError(t, err)
	return sess.ID
}
