package pdf

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechcare/clinic-api/internal/artifact"
	"github.com/speechcare/clinic-api/internal/model"
)

func newTestGenerator(t *testing.T) (*Generator, *artifact.Store) {
	t.Helper()
	store, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)
	logger := zerolog.Nop()
	return NewGenerator(store, &logger), store
}

func sampleReport() *model.Report {
	return &model.Report{
		Base:       model.Base{ID: uuid.New()},
		PatientID:  uuid.New(),
		AudioPath:  "/tmp/audio.wav",
		Transcript: "I feel much better today.",
		Emotions:   pq.StringArray{"calm", "happy"},
		Pitch:      152.4,
		Pace:       138.0,
		Silence:    1.7,
		Summary:    "Patient sounds calm and upbeat.",
	}
}

func samplePatient() *model.User {
	return &model.User{
		ID:     uuid.New(),
		Name:   "Ann Example",
		Age:    34,
		Gender: "female",
		Role:   model.UserRolePatient,
	}
}

func TestGenerateProducesValidPDF(t *testing.T) {
	gen, store := newTestGenerator(t)
	report := sampleReport()

	path, err := gen.Generate(report, samplePatient(), nil)
	require.NoError(t, err)
	assert.Equal(t, store.PDFPath(report.ID), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestGenerateWithDoctorAndNotes(t *testing.T) {
	gen, _ := newTestGenerator(t)
	report := sampleReport()
	notes := "Schedule a follow-up in two weeks."
	report.Notes = &notes
	doctor := &model.User{ID: uuid.New(), Name: "Dr. Reed", Role: model.UserRoleDoctor}
	report.DoctorID = &doctor.ID

	path, err := gen.Generate(report, samplePatient(), doctor)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestGenerateHandlesEmptyFields(t *testing.T) {
	gen, _ := newTestGenerator(t)
	report := sampleReport()
	report.Transcript = ""
	report.Emotions = nil
	report.Summary = ""

	_, err := gen.Generate(report, samplePatient(), nil)
	require.NoError(t, err)
}

func TestGenerateRegenerationOverwrites(t *testing.T) {
	gen, store := newTestGenerator(t)
	report := sampleReport()

	first, err := gen.Generate(report, samplePatient(), nil)
	require.NoError(t, err)

	report.Summary = "Updated summary after review."
	second, err := gen.Generate(report, samplePatient(), nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, store.VerifyPDF(second))
}
