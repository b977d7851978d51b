package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/speechcare/clinic-api/internal/model"
	"github.com/speechcare/clinic-api/internal/repository"
	apperrors "github.com/speechcare/clinic-api/pkg/errors"
)

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	if err := report.Validate(); err != nil {
		return apperrors.BadRequest("invalid report data", err)
	}

	query := `
		INSERT INTO reports (
			id, patient_id, doctor_id, audio_path, transcript, emotions,
			pitch, pace, silence, summary, notes, pdf_path, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	report.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		report.ID,
		report.PatientID,
		report.DoctorID,
		report.AudioPath,
		report.Transcript,
		report.Emotions,
		report.Pitch,
		report.Pace,
		report.Silence,
		report.Summary,
		report.Notes,
		report.PDFPath,
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *reportRepository) Get(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	query := `SELECT * FROM reports WHERE id = $1`
	var report model.Report
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("report", err)
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

func (r *reportRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Report, error) {
	query := `SELECT * FROM reports WHERE patient_id = $1 ORDER BY created_at DESC`
	var reports []*model.Report
	if err := r.db.SelectContext(ctx, &reports, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list reports for patient: %w", err)
	}
	return reports, nil
}

// doctorReportRow flattens the report/patient join for sqlx scanning.
type doctorReportRow struct {
	model.Report
	PatientName   string `db:"patient_name"`
	PatientAge    int    `db:"patient_age"`
	PatientGender string `db:"patient_gender"`
}

// ListForDoctor joins each report onto the current patient row, so the age
// filter applies to the patient's age now, not at report time.
func (r *reportRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID, filters *model.ReportFilters) ([]*model.DoctorReport, error) {
	query := `
		SELECT r.*, u.name AS patient_name, u.age AS patient_age, u.gender AS patient_gender
		FROM reports r
		JOIN users u ON u.id = r.patient_id
		WHERE r.doctor_id = $1
	`
	args := []interface{}{doctorID}

	if filters != nil {
		if filters.MinAge != nil {
			query += fmt.Sprintf(" AND u.age >= $%d", len(args)+1)
			args = append(args, *filters.MinAge)
		}
		if filters.MaxAge != nil {
			query += fmt.Sprintf(" AND u.age <= $%d", len(args)+1)
			args = append(args, *filters.MaxAge)
		}
	}

	query += " ORDER BY r.created_at DESC"

	var rows []*doctorReportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reports for doctor: %w", err)
	}

	reports := make([]*model.DoctorReport, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, &model.DoctorReport{
			Report: row.Report,
			Patient: model.PatientSummary{
				ID:     row.PatientID,
				Name:   row.PatientName,
				Age:    row.PatientAge,
				Gender: row.PatientGender,
			},
		})
	}
	return reports, nil
}

func (r *reportRepository) SetNotes(ctx context.Context, id uuid.UUID, notes string) (*model.Report, error) {
	query := `UPDATE reports SET notes = $1 WHERE id = $2 RETURNING *`
	var report model.Report
	if err := r.db.GetContext(ctx, &report, query, notes, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("report", err)
		}
		return nil, fmt.Errorf("failed to update report notes: %w", err)
	}
	return &report, nil
}

// SetPDFPath records the artifact location. Idempotent: re-publishing the
// same path is a no-op at the row level.
func (r *reportRepository) SetPDFPath(ctx context.Context, id uuid.UUID, path string) error {
	query := `UPDATE reports SET pdf_path = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, path, id)
	if err != nil {
		return fmt.Errorf("failed to update report pdf path: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("report", nil)
	}
	return nil
}
