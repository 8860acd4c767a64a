package laboratory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, v *LabVisit) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabVisit, error)
	SetResult(ctx context.Context, id uuid.UUID, result string) error
	List(ctx context.Context, limit, offset int) ([]*LabVisit, int, error)
	Summarize(ctx context.Context, start, end time.Time) (*Summary, error)
	TotalPaidOn(ctx context.Context, day time.Time) (decimal.Decimal, error)
}
