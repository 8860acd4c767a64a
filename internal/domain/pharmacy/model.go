package pharmacy

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Drug struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	Name             string          `db:"name" json:"name"`
	BrandName        *string         `db:"brand_name" json:"brand_name,omitempty"`
	ExpiryDate       time.Time       `db:"expiry_date" json:"expiry_date"`
	UnitCostPrice    decimal.Decimal `db:"unit_cost_price" json:"unit_cost_price"`
	UnitSellingPrice decimal.Decimal `db:"unit_selling_price" json:"unit_selling_price"`
	QuantitySupplied int             `db:"quantity_supplied" json:"quantity_supplied"`
	QuantityLeft     int             `db:"quantity_left" json:"quantity_left"`
	Retired          bool            `db:"retired" json:"retired"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// Dispensable reports whether the drug can be dispensed on the given day.
func (d *Drug) Dispensable(day time.Time) bool {
	return !d.Retired && d.QuantityLeft > 0 && !d.ExpiryDate.Before(day.Truncate(24*time.Hour))
}

// DispenseRecord captures one applied dispense line. TotalCost is the
// cost-price subtotal (unit_cost_price x quantity) kept for internal
// accounting; AmountPaid and Balance track the selling-price due.
type DispenseRecord struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	PatientID         uuid.UUID       `db:"patient_id" json:"patient_id"`
	DrugID            uuid.UUID       `db:"drug_id" json:"drug_id"`
	QuantityDispensed int             `db:"quantity_dispensed" json:"quantity_dispensed"`
	TotalCost         decimal.Decimal `db:"total_cost" json:"total_cost"`
	AmountPaid        decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	Balance           decimal.Decimal `db:"balance" json:"balance"`
	DispensedAt       time.Time       `db:"dispensed_at" json:"dispensed_at"`
}

// Summary aggregates dispense activity over a period.
type Summary struct {
	Records    int             `json:"records"`
	Quantity   int             `json:"quantity"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Balance    decimal.Decimal `json:"balance"`
}

// MonthActivity counts dispense records for one calendar month.
type MonthActivity struct {
	Year    int `json:"year"`
	Month   int `json:"month"`
	Records int `json:"records"`
}
