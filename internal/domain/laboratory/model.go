package laboratory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LabVisit struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	PatientName        string          `db:"patient_name" json:"patient_name"`
	HospitalNumber     *string         `db:"hospital_number" json:"hospital_number,omitempty"`
	LaboratoryNumber   string          `db:"laboratory_number" json:"laboratory_number"`
	Sample             *string         `db:"sample" json:"sample,omitempty"`
	ReferringPhysician *string         `db:"referring_physician" json:"referring_physician,omitempty"`
	Investigations     *string         `db:"investigations" json:"investigations,omitempty"`
	AmountPaid         decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	Result             *string         `db:"result" json:"result,omitempty"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
}

// Summary aggregates laboratory activity over a period.
type Summary struct {
	Visits     int             `json:"visits"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}
