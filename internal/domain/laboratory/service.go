package laboratory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hims/hims/pkg/period"
)

type Service struct {
	visits Repository
}

func NewService(visits Repository) *Service {
	return &Service{visits: visits}
}

func (s *Service) CreateVisit(ctx context.Context, v *LabVisit) error {
	if v.PatientName == "" {
		return fmt.Errorf("patient_name is required")
	}
	if v.LaboratoryNumber == "" {
		return fmt.Errorf("laboratory_number is required")
	}
	if v.AmountPaid.IsNegative() {
		return fmt.Errorf("amount_paid must not be negative")
	}
	return s.visits.Create(ctx, v)
}

func (s *Service) GetVisit(ctx context.Context, id uuid.UUID) (*LabVisit, error) {
	return s.visits.GetByID(ctx, id)
}

func (s *Service) RecordResult(ctx context.Context, id uuid.UUID, result string) error {
	if result == "" {
		return fmt.Errorf("result is required")
	}
	if _, err := s.visits.GetByID(ctx, id); err != nil {
		return fmt.Errorf("lab visit not found")
	}
	return s.visits.SetResult(ctx, id, result)
}

func (s *Service) ListVisits(ctx context.Context, limit, offset int) ([]*LabVisit, int, error) {
	return s.visits.List(ctx, limit, offset)
}

func (s *Service) Summary(ctx context.Context, periodName string, year, month int) (*Summary, error) {
	r, err := period.Parse(periodName, year, month, time.Now())
	if err != nil {
		return nil, err
	}
	return s.visits.Summarize(ctx, r.Start, r.End)
}
