package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/speechcare/clinic-api/pkg/errors"
)

func TestNormalize(t *testing.T) {
	stdout := []byte(`{
		"transcript": "hello",
		"emotions": ["calm (91.0%)", "Happy (87.32%)"],
		"pitch": 150,
		"pace": 140,
		"silence": 1.2,
		"summary": "ok"
	}`)

	result, err := Normalize(stdout)
	require.NoError(t, err)

	assert.Equal(t, "hello", result.Transcript)
	assert.Equal(t, []string{"calm", "happy"}, result.Emotions)
	require.NotNil(t, result.Pitch)
	assert.Equal(t, 150.0, *result.Pitch)
	require.NotNil(t, result.Pace)
	assert.Equal(t, 140.0, *result.Pace)
	require.NotNil(t, result.Silence)
	assert.Equal(t, 1.2, *result.Silence)
	assert.Equal(t, "ok", result.Summary)
}

func TestNormalizeEmptyEmotions(t *testing.T) {
	result, err := Normalize([]byte(`{"transcript": "quiet", "emotions": [], "pitch": 0, "pace": 0, "silence": 3, "summary": ""}`))
	require.NoError(t, err)
	assert.Empty(t, result.Emotions)
}

func TestNormalizeInvalidJSON(t *testing.T) {
	_, err := Normalize([]byte("not json at all"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrMalformedOutput))
}

func TestNormalizeMissingTranscript(t *testing.T) {
	_, err := Normalize([]byte(`{"emotions": ["happy (90%)"], "pitch": 1, "pace": 1, "silence": 0, "summary": "x"}`))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrMalformedOutput))
}

func TestNormalizeMissingEmotions(t *testing.T) {
	_, err := Normalize([]byte(`{"transcript": "x", "pitch": 1, "pace": 1, "silence": 0, "summary": "x"}`))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrMalformedOutput))
}

func TestNormalizeMissingMeasurementsKeptAsNil(t *testing.T) {
	result, err := Normalize([]byte(`{"transcript": "x", "emotions": [], "summary": "x"}`))
	require.NoError(t, err)
	assert.Nil(t, result.Pitch)
	assert.Nil(t, result.Pace)
	assert.Nil(t, result.Silence)
}

func TestNormalizeEmotionLabel(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"happy (87.32%)", "happy"},
		{"Angry (5%)", "angry"},
		{"calm (91.0%)", "calm"},
		{"neutral", "neutral"},
		{"  SAD  ", "sad"},
		{"Surprised (100.00%)", "surprised"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmotionLabel(tt.raw), "raw=%q", tt.raw)
	}
}
