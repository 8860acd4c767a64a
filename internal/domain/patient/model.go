package patient

import (
	"time"

	"github.com/google/uuid"
)

// NHIS enrollment status values.
const (
	NHIS    = "NHIS"
	NonNHIS = "NON_NHIS"
)

type Patient struct {
	ID             uuid.UUID `db:"id" json:"id"`
	HospitalNumber string    `db:"hospital_number" json:"hospital_number"`
	FirstName      string    `db:"first_name" json:"first_name"`
	MiddleName     *string   `db:"middle_name" json:"middle_name,omitempty"`
	Surname        string    `db:"surname" json:"surname"`
	Age            *int      `db:"age" json:"age,omitempty"`
	Sex            *string   `db:"sex" json:"sex,omitempty"`
	Address        *string   `db:"address" json:"address,omitempty"`
	PhoneNumber    *string   `db:"phone_number" json:"phone_number,omitempty"`
	NHISStatus     string    `db:"nhis_status" json:"nhis_status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// FullName joins the patient's name parts, skipping an absent middle name.
func (p *Patient) FullName() string {
	name := p.FirstName
	if p.MiddleName != nil && *p.MiddleName != "" {
		name += " " + *p.MiddleName
	}
	if p.Surname != "" {
		name += " " + p.Surname
	}
	return name
}
