package report

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/speechcare/clinic-api/internal/analysis"
	"github.com/speechcare/clinic-api/internal/artifact"
	"github.com/speechcare/clinic-api/internal/model"
	"github.com/speechcare/clinic-api/internal/repository"
	"github.com/speechcare/clinic-api/internal/service/notify"
	apperrors "github.com/speechcare/clinic-api/pkg/errors"
	"github.com/speechcare/clinic-api/pkg/messaging"
	"github.com/speechcare/clinic-api/pkg/metrics"
)

const reportCreatedChannel = "report.created"

// PDFGenerator renders a report into its artifact and returns the path.
type PDFGenerator interface {
	Generate(report *model.Report, patient *model.User, doctor *model.User) (string, error)
}

// UploadInput carries one multipart upload through the pipeline.
type UploadInput struct {
	Audio        io.Reader
	Filename     string
	PatientID    uuid.UUID
	UploaderID   uuid.UUID
	UploaderRole model.UserRole
}

// PDFStream is an open artifact ready for streaming to the client.
type PDFStream struct {
	Content  io.ReadCloser
	Size     int64
	Filename string
}

type Service interface {
	ProcessUpload(ctx context.Context, input UploadInput) (*model.Report, error)
	GetReport(ctx context.Context, reportID, callerID uuid.UUID) (*model.Report, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Report, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID, filters *model.ReportFilters) ([]*model.DoctorReport, error)
	UpdateNotes(ctx context.Context, reportID, callerDoctorID uuid.UUID, notes string) (*model.Report, error)
	FetchPDF(ctx context.Context, reportID, callerID uuid.UUID) (*PDFStream, error)
}

type service struct {
	reports   repository.ReportRepository
	users     repository.UserRepository
	engine    analysis.Engine
	generator PDFGenerator
	store     *artifact.Store
	broker    messaging.Broker
	notifier  notify.Service
	logger    *zerolog.Logger
	metrics   *metrics.Metrics
	regenLock *keyedMutex
}

func NewService(
	reports repository.ReportRepository,
	users repository.UserRepository,
	engine analysis.Engine,
	generator PDFGenerator,
	store *artifact.Store,
	broker messaging.Broker,
	notifier notify.Service,
	logger *zerolog.Logger,
	m *metrics.Metrics,
) Service {
	return &service{
		reports:   reports,
		users:     users,
		engine:    engine,
		generator: generator,
		store:     store,
		broker:    broker,
		notifier:  notifier,
		logger:    logger,
		metrics:   m,
		regenLock: newKeyedMutex(),
	}
}

// ProcessUpload runs the full ingestion pipeline: store the audio, invoke
// the engine, normalize, persist the report, then generate the PDF as a
// best-effort side effect. Engine and parsing failures abort before any row
// is written; PDF failure never does.
func (s *service) ProcessUpload(ctx context.Context, input UploadInput) (*model.Report, error) {
	if input.UploaderRole == model.UserRolePatient && input.PatientID != input.UploaderID {
		return nil, apperrors.Forbidden("patients can only upload audio for themselves", nil)
	}

	patient, err := s.users.Get(ctx, input.PatientID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.BadRequest("unknown patient", err)
		}
		return nil, err
	}

	audioPath, err := s.store.SaveAudio(input.Audio, input.Filename)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	result, err := s.engine.Invoke(ctx, audioPath, analysis.PatientMeta{
		Name:   patient.Name,
		Age:    patient.Age,
		Gender: patient.Gender,
	})
	if err != nil {
		return nil, err
	}

	if result.Pitch == nil || result.Pace == nil || result.Silence == nil {
		return nil, apperrors.BadRequest("analysis output missing numeric measurements", nil)
	}

	report := &model.Report{
		Base: model.Base{
			ID: uuid.New(),
		},
		PatientID:  input.PatientID,
		AudioPath:  audioPath,
		Transcript: result.Transcript,
		Emotions:   result.Emotions,
		Pitch:      *result.Pitch,
		Pace:       *result.Pace,
		Silence:    *result.Silence,
		Summary:    result.Summary,
	}
	if input.UploaderRole == model.UserRoleDoctor {
		doctorID := input.UploaderID
		report.DoctorID = &doctorID
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ReportsCreated.Inc()
	}

	s.logger.Info().
		Str("report_id", report.ID.String()).
		Str("patient_id", report.PatientID.String()).
		Msg("report created")

	// Artifact generation is best-effort: the report exists regardless.
	s.generateArtifact(ctx, report, patient)

	s.publishCreated(ctx, report)
	s.notifyPatient(ctx, report, patient)

	return report, nil
}

func (s *service) generateArtifact(ctx context.Context, report *model.Report, patient *model.User) {
	doctor, err := s.loadDoctor(ctx, report)
	if err != nil {
		s.logger.Error().Err(err).Str("report_id", report.ID.String()).Msg("skipping pdf generation, doctor lookup failed")
		return
	}

	path, err := s.generator.Generate(report, patient, doctor)
	if err != nil {
		if s.metrics != nil {
			s.metrics.PDFGenerations.WithLabelValues("error").Inc()
		}
		s.logger.Error().Err(err).Str("report_id", report.ID.String()).Msg("pdf generation failed, report kept without artifact")
		return
	}

	if err := s.reports.SetPDFPath(ctx, report.ID, path); err != nil {
		s.logger.Error().Err(err).Str("report_id", report.ID.String()).Msg("failed to persist pdf path")
		return
	}

	if s.metrics != nil {
		s.metrics.PDFGenerations.WithLabelValues("ok").Inc()
	}
	report.PDFPath = &path
}

func (s *service) GetReport(ctx context.Context, reportID, callerID uuid.UUID) (*model.Report, error) {
	report, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !report.IsOwnedBy(callerID) {
		return nil, apperrors.Forbidden("not authorized to access this report", nil)
	}
	return report, nil
}

func (s *service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Report, error) {
	return s.reports.ListForPatient(ctx, patientID)
}

func (s *service) ListForDoctor(ctx context.Context, doctorID uuid.UUID, filters *model.ReportFilters) ([]*model.DoctorReport, error) {
	return s.reports.ListForDoctor(ctx, doctorID, filters)
}

// UpdateNotes is restricted to the report's associated doctor. Notes is the
// only clinician-mutable field.
func (s *service) UpdateNotes(ctx context.Context, reportID, callerDoctorID uuid.UUID, notes string) (*model.Report, error) {
	report, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !report.HasDoctor() || *report.DoctorID != callerDoctorID {
		return nil, apperrors.Forbidden("only the uploading doctor can add notes", nil)
	}
	return s.reports.SetNotes(ctx, reportID, notes)
}

// FetchPDF authorizes the caller and streams the artifact, regenerating it
// synchronously when missing, empty or unreadable. Regeneration for the
// same report is serialized by a per-report lock.
func (s *service) FetchPDF(ctx context.Context, reportID, callerID uuid.UUID) (*PDFStream, error) {
	report, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !report.IsOwnedBy(callerID) {
		return nil, apperrors.Forbidden("not authorized to access this PDF", nil)
	}

	path := ""
	if report.PDFPath != nil {
		path = *report.PDFPath
	}

	if !s.store.VerifyPDF(path) {
		path, err = s.regenerate(ctx, report)
		if err != nil {
			return nil, err
		}
	}

	f, size, err := s.store.Open(path)
	if err != nil {
		return nil, apperrors.ArtifactUnavailable(err)
	}

	return &PDFStream{
		Content:  f,
		Size:     size,
		Filename: filepath.Base(path),
	}, nil
}

func (s *service) regenerate(ctx context.Context, report *model.Report) (string, error) {
	key := report.ID.String()
	s.regenLock.Lock(key)
	defer s.regenLock.Unlock(key)

	// Another retrieval may have regenerated while we waited on the lock.
	expected := s.store.PDFPath(report.ID)
	if s.store.VerifyPDF(expected) {
		return expected, nil
	}

	patient, err := s.users.Get(ctx, report.PatientID)
	if err != nil {
		return "", apperrors.ArtifactUnavailable(fmt.Errorf("patient lookup failed: %w", err))
	}
	doctor, err := s.loadDoctor(ctx, report)
	if err != nil {
		return "", apperrors.ArtifactUnavailable(fmt.Errorf("doctor lookup failed: %w", err))
	}

	path, err := s.generator.Generate(report, patient, doctor)
	if err != nil {
		return "", apperrors.ArtifactUnavailable(err)
	}

	if err := s.reports.SetPDFPath(ctx, report.ID, path); err != nil {
		return "", apperrors.ArtifactUnavailable(err)
	}

	if s.metrics != nil {
		s.metrics.PDFRegenerations.Inc()
	}
	s.logger.Info().
		Str("report_id", report.ID.String()).
		Str("pdf_path", path).
		Msg("regenerated missing report pdf")

	return path, nil
}

func (s *service) loadDoctor(ctx context.Context, report *model.Report) (*model.User, error) {
	if !report.HasDoctor() {
		return nil, nil
	}
	return s.users.Get(ctx, *report.DoctorID)
}

func (s *service) publishCreated(ctx context.Context, report *model.Report) {
	if s.broker == nil {
		return
	}
	msg := messaging.Message{
		Type:    "REPORT_CREATED",
		Payload: report,
	}
	if err := s.broker.Publish(ctx, reportCreatedChannel, msg); err != nil {
		s.logger.Error().Err(err).Str("report_id", report.ID.String()).Msg("failed to publish report event")
	}
}

func (s *service) notifyPatient(ctx context.Context, report *model.Report, patient *model.User) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendReportReady(ctx, patient.Email, patient.Name, report.ID); err != nil {
		s.logger.Error().Err(err).Str("report_id", report.ID.String()).Msg("failed to send report notification")
	}
}
