package service_test

import (
	"context"
	"testing"

	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/phrazzld/bionexus-api/internal/mocks"
	"github.com/phrazzld/bionexus-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientService_OrganInsight(t *testing.T) {
	t.Parallel()

	gen := mocks.NewMockGeneratorWithText("Your heart is in good shape.")
	svc, err := service.NewPatientService(gen, newStore(t), discardLogger())
	require.NoError(t, err)

	reply, err := svc.OrganInsight(context.Background(), "heart", domain.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "Your heart is in good shape.", reply.Text)

	req, _ := gen.LastRequest()
	assert.Equal(t, generation.ContextPatient, req.Context())
	assert.Contains(t, req.Text(), "health insight for the Heart based on a Bio-Digital Twin profile.")
	assert.Contains(t, req.Text(), "35-year-old with moderate activity levels.")

	_, err = svc.OrganInsight(context.Background(), "Spleen", domain.LanguageEnglish)
	assert.ErrorIs(t, err, domain.ErrInvalidOrgan)
	assert.Equal(t, 1, gen.CallCount())
}

func TestPatientService_SelectOrgan(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	id := newSession(t, store, domain.LanguageVietnamese, domain.ModePatient)
	svc, err := service.NewPatientService(mocks.NewMockGeneratorWithText(""), store, discardLogger())
	require.NoError(t, err)

	reply, err := svc.SelectOrgan(context.Background(), id, domain.OrganKidneys)
	require.NoError(t, err)
	assert.Equal(t, "Không có dữ liệu.", reply.Text)
	assert.True(t, reply.Applied)

	sess, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.OrganKidneys, sess.Patient.SelectedOrgan)
	assert.Equal(t, "Không có dữ liệu.", sess.Patient.Insight)
}

func TestPatientService_Speak(t *testing.T) {
	t.Parallel()

	audio := &generation.Audio{Data: []byte{1, 2, 3}, MIMEType: "audio/L16;rate=24000"}

	t.Run("patient voice", func(t *testing.T) {
		t.Parallel()

		gen := &mocks.MockGenerator{Result: generation.Result{Audio: audio, Attempts: 1}}
		svc, err := service.NewPatientService(gen, newStore(t), discardLogger())
		require.NoError(t, err)

		reply, err := svc.Speak(context.Background(), "It hurts here.", service.VoicePatient)
		require.NoError(t, err)
		assert.False(t, reply.Degraded)
		assert.Equal(t, audio, reply.Audio)

		req, _ := gen.LastRequest()
		assert.True(t, req.Speech())
		assert.Equal(t, "Puck", req.Voice())
		assert.Equal(t, generation.TierSpeech, req.Tier())
		assert.Equal(t, "Say in a pained, weak voice: It hurts here.", req.Text())
	})

	t.Run("narrator without audio is degraded", func(t *testing.T) {
		t.Parallel()

		gen := mocks.NewMockGeneratorWithText("")
		svc, err := service.NewPatientService(gen, newStore(t), discardLogger())
		require.NoError(t, err)

		reply, err := svc.Speak(context.Background(), "Hello.", service.VoiceNarrator)
		require.NoError(t, err)
		assert.True(t, reply.Degraded)
		assert.Equal(t, generation.KindRequestFailed, reply.ErrorKind)

		req, _ := gen.LastRequest()
		assert.Equal(t, "Hello.", req.Text())
		assert.Empty(t, req.Voice())
	})

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()

		svc, err := service.NewPatientService(mocks.NewMockGeneratorWithText(""), newStore(t), discardLogger())
		require.NoError(t, err)
		_, err = svc.Speak(context.Background(), " ", service.VoiceNarrator)
		assert.ErrorIs(t, err, domain.ErrEmptyContent)
	})
}

func TestParseVoice(t *testing.T) {
	t.Parallel()

	v, err := service.ParseVoice("")
	require.NoError(t, err)
	assert.Equal(t, service.VoiceNarrator, v)

	v, err = service.ParseVoice("Patient")
	require.NoError(t, err)
	assert.Equal(t, service.VoicePatient, v)

	_, err = service.ParseVoice("robot")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
