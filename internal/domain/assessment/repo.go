package assessment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Assessment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Assessment, error)
	Update(ctx context.Context, a *Assessment) error
	ListByPatient(ctx context.Context, patientRef string, limit, offset int) ([]*Assessment, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Assessment, int, error)
}

type ResultRepository interface {
	Create(ctx context.Context, r *ResultRecord) error
	ListByAssessment(ctx context.Context, assessmentID uuid.UUID) ([]*ResultRecord, error)
}
