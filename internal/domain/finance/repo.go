package finance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRecordNotFound is returned by record lookups when no row matches.
var ErrRecordNotFound = errors.New("finance record not found")

// LogFilter narrows a log history query. Date takes precedence; otherwise
// Year alone or Year with Month filter by calendar period.
type LogFilter struct {
	Date  *time.Time
	Year  int
	Month int
}

type Repository interface {
	CreateRecord(ctx context.Context, r *FinanceRecord) error
	GetRecordByID(ctx context.Context, id uuid.UUID) (*FinanceRecord, error)
	GetRecordByDate(ctx context.Context, date time.Time) (*FinanceRecord, error)
	UpdateRecordTotals(ctx context.Context, r *FinanceRecord) error
	DeleteRecord(ctx context.Context, id uuid.UUID) error
	ListRecords(ctx context.Context, start, end time.Time, limit, offset int) ([]*FinanceRecord, int, error)
	// HMO payments
	AddPayment(ctx context.Context, p *HMOPayment) error
	ListPayments(ctx context.Context, financeID uuid.UUID) ([]*HMOPayment, error)
	// Audit log
	AddLog(ctx context.Context, l *FinanceLog) error
	ListLogs(ctx context.Context, f LogFilter, limit, offset int) ([]*FinanceLog, int, error)
}
