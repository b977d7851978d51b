package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReport() *Report {
	return &Report{
		Base:       Base{ID: uuid.New()},
		PatientID:  uuid.New(),
		AudioPath:  "/data/audio/session.wav",
		Transcript: "hello",
		Emotions:   pq.StringArray{"calm", "happy"},
		Pitch:      150,
		Pace:       140,
		Silence:    1.2,
		Summary:    "steady",
	}
}

func TestReportValidate(t *testing.T) {
	require.NoError(t, validReport().Validate())
}

func TestReportValidateRejectsNegativeMeasurements(t *testing.T) {
	for name, mutate := range map[string]func(*Report){
		"pitch":   func(r *Report) { r.Pitch = -1 },
		"pace":    func(r *Report) { r.Pace = -0.1 },
		"silence": func(r *Report) { r.Silence = -5 },
	} {
		t.Run(name, func(t *testing.T) {
			r := validReport()
			mutate(r)
			assert.Error(t, r.Validate())
		})
	}
}

func TestReportValidateRejectsUnknownEmotion(t *testing.T) {
	r := validReport()
	r.Emotions = pq.StringArray{"calm", "ecstatic"}
	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ecstatic")
}

func TestReportValidateRequiresPatient(t *testing.T) {
	r := validReport()
	r.PatientID = uuid.Nil
	assert.Error(t, r.Validate())
}

func TestReportValidateRequiresTranscript(t *testing.T) {
	r := validReport()
	r.Transcript = ""
	assert.Error(t, r.Validate())
}

func TestEmotionValid(t *testing.T) {
	for _, e := range []Emotion{EmotionAngry, EmotionCalm, EmotionDisgust, EmotionFearful, EmotionHappy, EmotionNeutral, EmotionSad, EmotionSurprised} {
		assert.True(t, e.Valid(), string(e))
	}
	assert.False(t, Emotion("ecstatic").Valid())
	assert.False(t, Emotion("Happy").Valid())
}

func TestReportOwnership(t *testing.T) {
	r := validReport()
	assert.True(t, r.IsOwnedBy(r.PatientID))
	assert.False(t, r.IsOwnedBy(uuid.New()))
	assert.False(t, r.HasDoctor())

	doctorID := uuid.New()
	r.DoctorID = &doctorID
	assert.True(t, r.HasDoctor())
	assert.True(t, r.IsOwnedBy(doctorID))
	assert.True(t, r.IsOwnedBy(r.PatientID))
	assert.False(t, r.IsOwnedBy(uuid.New()))
}
