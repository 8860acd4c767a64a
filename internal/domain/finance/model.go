package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Log sections. Every mutation of a FinanceRecord writes a log row tagged
// with the section it touched.
const (
	SectionDispensary = "dispensary"
	SectionLaboratory = "laboratory"
	SectionHMOs       = "hmos"
	SectionUpdate     = "update"
	SectionDelete     = "delete"
)

// FinanceRecord holds one day's income, one row per calendar date.
type FinanceRecord struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	RecordDate      time.Time       `db:"record_date" json:"record_date"`
	DispensaryTotal decimal.Decimal `db:"dispensary_total" json:"dispensary_total"`
	LaboratoryTotal decimal.Decimal `db:"laboratory_total" json:"laboratory_total"`
	HMOsTotal       decimal.Decimal `db:"hmos_total" json:"hmos_total"`
	TotalIncome     decimal.Decimal `db:"total_income" json:"total_income"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// ComputeTotal refreshes TotalIncome from the three section totals.
func (r *FinanceRecord) ComputeTotal() {
	r.TotalIncome = r.DispensaryTotal.Add(r.LaboratoryTotal).Add(r.HMOsTotal)
}

type HMOPayment struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	FinanceID   uuid.UUID       `db:"finance_id" json:"finance_id"`
	HMOName     string          `db:"hmo_name" json:"hmo_name"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	PaymentDate time.Time       `db:"payment_date" json:"payment_date"`
	Notes       *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// FinanceLog is an append-only audit entry. FinanceRecordID is nil once the
// record it described has been deleted.
type FinanceLog struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	FinanceRecordID *uuid.UUID      `db:"finance_record_id" json:"finance_record_id,omitempty"`
	RecordDate      time.Time       `db:"record_date" json:"record_date"`
	Section         string          `db:"section" json:"section"`
	Description     string          `db:"description" json:"description"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// DailyView is a finance record together with its HMO payments.
type DailyView struct {
	Record   *FinanceRecord `json:"record"`
	Payments []*HMOPayment  `json:"payments"`
}
