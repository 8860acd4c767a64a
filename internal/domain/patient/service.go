package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrIdentityRequired is returned when a patient cannot be found and the
// request carries too little demographic data to register one.
var ErrIdentityRequired = errors.New("patient not found and no name given to register one")

var validSexes = map[string]bool{"M": true, "F": true}

var validNHISStatuses = map[string]bool{NHIS: true, NonNHIS: true}

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

// Resolve finds the patient with the given hospital number, registering one
// from the supplied demographics when none exists. The returned bool reports
// whether a new patient was created.
func (s *Service) Resolve(ctx context.Context, p *Patient) (*Patient, bool, error) {
	if p.HospitalNumber == "" {
		return nil, false, fmt.Errorf("hospital_number is required")
	}

	existing, err := s.patients.GetByHospitalNumber(ctx, p.HospitalNumber)
	if err == nil {
		return existing, false, nil
	}

	if p.FirstName == "" && p.Surname == "" {
		return nil, false, ErrIdentityRequired
	}
	if err := s.validate(p); err != nil {
		return nil, false, err
	}
	if p.NHISStatus == "" {
		p.NHISStatus = NonNHIS
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (s *Service) validate(p *Patient) error {
	if p.Sex != nil && !validSexes[*p.Sex] {
		return fmt.Errorf("invalid sex: %s", *p.Sex)
	}
	if p.NHISStatus != "" && !validNHISStatuses[p.NHISStatus] {
		return fmt.Errorf("invalid nhis_status: %s", p.NHISStatus)
	}
	if p.Age != nil && *p.Age < 0 {
		return fmt.Errorf("age must not be negative")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetByHospitalNumber(ctx context.Context, hospitalNumber string) (*Patient, error) {
	return s.patients.GetByHospitalNumber(ctx, hospitalNumber)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.Search(ctx, query, limit, offset)
}
