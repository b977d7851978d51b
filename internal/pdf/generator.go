package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"github.com/speechcare/clinic-api/internal/artifact"
	"github.com/speechcare/clinic-api/internal/model"
	apperrors "github.com/speechcare/clinic-api/pkg/errors"
)

// Generator renders a report into its PDF artifact. Safe to call multiple
// times for the same report: the artifact path is deterministic and the
// store publishes atomically, so regeneration replaces the previous file
// without exposing a partial one.
type Generator struct {
	store  *artifact.Store
	logger *zerolog.Logger
}

func NewGenerator(store *artifact.Store, logger *zerolog.Logger) *Generator {
	return &Generator{
		store:  store,
		logger: logger,
	}
}

// Generate renders the report and publishes it to the artifact store,
// returning the artifact path. The doctor may be nil for self-uploaded
// reports.
func (g *Generator) Generate(report *model.Report, patient *model.User, doctor *model.User) (string, error) {
	var buf bytes.Buffer
	if err := g.render(&buf, report, patient, doctor); err != nil {
		return "", apperrors.ArtifactGeneration(fmt.Errorf("render failed for report %s: %w", report.ID, err))
	}

	path, err := g.store.PublishPDF(report.ID, &buf)
	if err != nil {
		return "", apperrors.ArtifactGeneration(fmt.Errorf("publish failed for report %s: %w", report.ID, err))
	}

	g.logger.Info().
		Str("report_id", report.ID.String()).
		Str("pdf_path", path).
		Int("bytes", buf.Len()).
		Msg("generated report pdf")

	return path, nil
}

func (g *Generator) render(buf *bytes.Buffer, report *model.Report, patient *model.User, doctor *model.User) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Speech Emotion Analysis Report", false)
	doc.AliasNbPages("")

	doc.SetHeaderFunc(func() {
		doc.SetFont("Arial", "B", 15)
		doc.Cell(80, 10, "")
		doc.CellFormat(30, 10, "Speech Emotion Analysis Report", "", 0, "C", false, 0, "")
		doc.Ln(20)
	})
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont("Arial", "I", 8)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	doc.AddPage()

	doc.SetFont("Arial", "I", 10)
	doc.CellFormat(0, 10, fmt.Sprintf("Generated on: %s", time.Now().Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	doc.Ln(5)

	sectionTitle(doc, "Patient")
	patientLine := fmt.Sprintf("%s, age %d, %s", patient.Name, patient.Age, patient.Gender)
	sectionBody(doc, patientLine)

	if doctor != nil {
		sectionTitle(doc, "Clinician")
		sectionBody(doc, doctor.Name)
	}

	sectionTitle(doc, "Transcription")
	transcript := report.Transcript
	if transcript == "" {
		transcript = "No transcript available"
	}
	sectionBody(doc, transcript)

	sectionTitle(doc, "Detected Emotions")
	if len(report.Emotions) > 0 {
		sectionBody(doc, strings.Join(report.Emotions, ", "))
	} else {
		sectionBody(doc, "No emotions detected")
	}

	sectionTitle(doc, "Analysis")
	analysis := fmt.Sprintf(
		"Average Pitch: %.2f Hz\nSilence Duration: %.2f seconds\nSpeaking Pace: %.2f words per minute",
		report.Pitch, report.Silence, report.Pace,
	)
	sectionBody(doc, analysis)

	sectionTitle(doc, "Summary")
	summary := report.Summary
	if summary == "" {
		summary = "No summary available"
	}
	sectionBody(doc, summary)

	if report.Notes != nil && *report.Notes != "" {
		sectionTitle(doc, "Clinician Notes")
		sectionBody(doc, *report.Notes)
	}

	return doc.Output(buf)
}

func sectionTitle(doc *fpdf.Fpdf, title string) {
	doc.SetFont("Arial", "B", 12)
	doc.SetFillColor(200, 220, 255)
	doc.CellFormat(0, 6, title, "", 1, "L", true, 0, "")
	doc.Ln(4)
}

func sectionBody(doc *fpdf.Fpdf, body string) {
	doc.SetFont("Arial", "", 12)
	doc.MultiCell(0, 5, body, "", "L", false)
	doc.Ln(4)
}
