package analysis

import (
	"context"
)

// PatientMeta is the patient context handed to the analysis engine
// alongside the audio file.
type PatientMeta struct {
	Name   string
	Age    int
	Gender string
}

// Result is the normalized analysis payload. The numeric measurements are
// pointers so a payload that omits one can still be rejected with a
// validation error by the caller rather than silently defaulting to zero.
type Result struct {
	Transcript string
	Emotions   []string
	Pitch      *float64
	Pace       *float64
	Silence    *float64
	Summary    string
}

// Engine is the capability boundary around the external analysis engine.
// The concrete subprocess mechanics are an adapter behind this interface so
// the pipeline never touches process details.
type Engine interface {
	Invoke(ctx context.Context, audioPath string, meta PatientMeta) (*Result, error)
}
