package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/speechcare/clinic-api/pkg/errors"
)

// rawOutput mirrors the engine's stdout contract: a single JSON object.
// Pointer fields distinguish "absent" from zero values.
type rawOutput struct {
	Transcript *string  `json:"transcript"`
	Emotions   []string `json:"emotions"`
	Pitch      *float64 `json:"pitch"`
	Pace       *float64 `json:"pace"`
	Silence    *float64 `json:"silence"`
	Summary    string   `json:"summary"`
}

// Normalize parses engine stdout and produces the canonical payload.
// Transcript and the emotion list are hard requirements of the engine
// contract; their absence means the contract was violated.
func Normalize(stdout []byte) (*Result, error) {
	var raw rawOutput
	if err := json.Unmarshal(stdout, &raw); err != nil {
		return nil, apperrors.MalformedOutput(fmt.Errorf("invalid JSON from engine: %w", err))
	}

	if raw.Transcript == nil {
		return nil, apperrors.MalformedOutput(fmt.Errorf("engine output missing transcript"))
	}
	if raw.Emotions == nil {
		return nil, apperrors.MalformedOutput(fmt.Errorf("engine output missing emotions"))
	}

	emotions := make([]string, 0, len(raw.Emotions))
	for _, e := range raw.Emotions {
		emotions = append(emotions, NormalizeEmotionLabel(e))
	}

	return &Result{
		Transcript: *raw.Transcript,
		Emotions:   emotions,
		Pitch:      raw.Pitch,
		Pace:       raw.Pace,
		Silence:    raw.Silence,
		Summary:    raw.Summary,
	}, nil
}

// NormalizeEmotionLabel reduces an engine emotion string to its canonical
// lower-case label. The engine formats labels as "Happy (87.32%)"; the
// confidence suffix is display-only and never persisted. Bare labels pass
// through unchanged.
func NormalizeEmotionLabel(raw string) string {
	label := raw
	if i := strings.Index(raw, " ("); i >= 0 {
		label = raw[:i]
	}
	return strings.ToLower(strings.TrimSpace(label))
}
