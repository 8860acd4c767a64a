package pharmacy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DrugRepository interface {
	Create(ctx context.Context, d *Drug) error
	GetByID(ctx context.Context, id uuid.UUID) (*Drug, error)
	Update(ctx context.Context, d *Drug) error
	Retire(ctx context.Context, id uuid.UUID) error
	// DecrementStock atomically subtracts qty from quantity_left and reports
	// whether enough stock was available.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	AddStock(ctx context.Context, id uuid.UUID, added int) error
	List(ctx context.Context, limit, offset int) ([]*Drug, int, error)
	ListEligible(ctx context.Context, day time.Time) ([]*Drug, error)
}

type DispenseRepository interface {
	Create(ctx context.Context, rec *DispenseRecord) error
	ListByRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*DispenseRecord, int, error)
	Summarize(ctx context.Context, start, end time.Time) (*Summary, error)
	AvailableMonths(ctx context.Context) ([]*MonthActivity, error)
	TotalPaidOn(ctx context.Context, day time.Time) (decimal.Decimal, error)
}
