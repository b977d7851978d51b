package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Emotion is one of the fixed labels the analysis engine may emit.
type Emotion string

const (
	EmotionAngry     Emotion = "angry"
	EmotionCalm      Emotion = "calm"
	EmotionDisgust   Emotion = "disgust"
	EmotionFearful   Emotion = "fearful"
	EmotionHappy     Emotion = "happy"
	EmotionNeutral   Emotion = "neutral"
	EmotionSad       Emotion = "sad"
	EmotionSurprised Emotion = "surprised"
)

var validEmotions = map[Emotion]struct{}{
	EmotionAngry:     {},
	EmotionCalm:      {},
	EmotionDisgust:   {},
	EmotionFearful:   {},
	EmotionHappy:     {},
	EmotionNeutral:   {},
	EmotionSad:       {},
	EmotionSurprised: {},
}

func (e Emotion) Valid() bool {
	_, ok := validEmotions[e]
	return ok
}

// Report is the persisted record of one analyzed audio session. Everything
// except Notes and PDFPath is immutable after creation.
type Report struct {
	Base
	PatientID  uuid.UUID      `db:"patient_id" json:"patient_id"`
	DoctorID   *uuid.UUID     `db:"doctor_id" json:"doctor_id,omitempty"`
	AudioPath  string         `db:"audio_path" json:"audio_path"`
	Transcript string         `db:"transcript" json:"transcript"`
	Emotions   pq.StringArray `db:"emotions" json:"emotions"`
	Pitch      float64        `db:"pitch" json:"pitch"`
	Pace       float64        `db:"pace" json:"pace"`
	Silence    float64        `db:"silence" json:"silence"`
	Summary    string         `db:"summary" json:"summary"`
	Notes      *string        `db:"notes" json:"notes,omitempty"`
	PDFPath    *string        `db:"pdf_path" json:"pdf_path,omitempty"`
}

// Validate enforces the creation invariants: patient set, measurements
// non-negative, emotions drawn from the closed label set.
func (r *Report) Validate() error {
	if r.PatientID == uuid.Nil {
		return fmt.Errorf("patient is required")
	}
	if r.Transcript == "" {
		return fmt.Errorf("transcript is required")
	}
	if r.Pitch < 0 {
		return fmt.Errorf("pitch must be non-negative, got %v", r.Pitch)
	}
	if r.Pace < 0 {
		return fmt.Errorf("pace must be non-negative, got %v", r.Pace)
	}
	if r.Silence < 0 {
		return fmt.Errorf("silence must be non-negative, got %v", r.Silence)
	}
	for _, e := range r.Emotions {
		if !Emotion(e).Valid() {
			return fmt.Errorf("unknown emotion label %q", e)
		}
	}
	return nil
}

// HasDoctor reports whether the report is associated with a clinician.
func (r *Report) HasDoctor() bool {
	return r.DoctorID != nil && *r.DoctorID != uuid.Nil
}

// IsOwnedBy reports whether userID is the report's patient or its
// associated doctor. This is the single visibility rule for reports and
// their artifacts.
func (r *Report) IsOwnedBy(userID uuid.UUID) bool {
	if r.PatientID == userID {
		return true
	}
	return r.HasDoctor() && *r.DoctorID == userID
}

// DoctorReport is a report joined with the current patient record for
// doctor-facing listings. Age reflects the patient row at query time, not
// at report time.
type DoctorReport struct {
	Report
	Patient PatientSummary `json:"patient"`
}

// ReportFilters narrows doctor report listings.
type ReportFilters struct {
	MinAge *int `form:"minAge"`
	MaxAge *int `form:"maxAge"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes" binding:"required"`
}
