package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/speechcare/clinic-api/internal/model"
)

type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	Get(ctx context.Context, id uuid.UUID) (*model.Report, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Report, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID, filters *model.ReportFilters) ([]*model.DoctorReport, error)
	SetNotes(ctx context.Context, id uuid.UUID, notes string) (*model.Report, error)
	SetPDFPath(ctx context.Context, id uuid.UUID, path string) error
}

type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
}
