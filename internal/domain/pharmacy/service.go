package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hims/hims/internal/domain/patient"
	"github.com/hims/hims/pkg/period"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDrugRetired       = errors.New("drug retired")
	ErrDrugExpired       = errors.New("drug expired")
	ErrUnknownDrug       = errors.New("unknown drug")
	ErrInvalidQuantity   = errors.New("invalid quantity")
)

// PatientResolver finds or registers the patient a dispense is for.
type PatientResolver interface {
	Resolve(ctx context.Context, p *patient.Patient) (*patient.Patient, bool, error)
}

type Service struct {
	drugs     DrugRepository
	dispenses DispenseRepository
	patients  PatientResolver
}

func NewService(drugs DrugRepository, dispenses DispenseRepository, patients PatientResolver) *Service {
	return &Service{drugs: drugs, dispenses: dispenses, patients: patients}
}

// -- Drug ledger --

func (s *Service) CreateDrug(ctx context.Context, d *Drug) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.ExpiryDate.IsZero() {
		return fmt.Errorf("expiry_date is required")
	}
	if d.UnitCostPrice.IsNegative() || d.UnitSellingPrice.IsNegative() {
		return fmt.Errorf("prices must not be negative")
	}
	if d.QuantitySupplied < 0 {
		return fmt.Errorf("quantity_supplied must not be negative")
	}
	// A zero quantity_left on entry means the field was not set; new stock
	// starts whole and only dispensing draws it down. A batch cannot be
	// entered as already exhausted.
	if d.QuantityLeft == 0 {
		d.QuantityLeft = d.QuantitySupplied
	}
	if d.QuantityLeft < 0 || d.QuantityLeft > d.QuantitySupplied {
		return fmt.Errorf("quantity_left must be between 0 and quantity_supplied")
	}
	return s.drugs.Create(ctx, d)
}

func (s *Service) GetDrug(ctx context.Context, id uuid.UUID) (*Drug, error) {
	return s.drugs.GetByID(ctx, id)
}

func (s *Service) UpdateDrug(ctx context.Context, d *Drug) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.UnitCostPrice.IsNegative() || d.UnitSellingPrice.IsNegative() {
		return fmt.Errorf("prices must not be negative")
	}
	return s.drugs.Update(ctx, d)
}

// Restock raises both the running stock and the supplied total. The added
// quantity must be positive; stock corrections downward go through Retire
// and re-entry, never through a negative restock.
func (s *Service) Restock(ctx context.Context, id uuid.UUID, added int) (*Drug, error) {
	if added <= 0 {
		return nil, fmt.Errorf("added quantity must be positive")
	}
	if _, err := s.drugs.GetByID(ctx, id); err != nil {
		return nil, ErrUnknownDrug
	}
	if err := s.drugs.AddStock(ctx, id, added); err != nil {
		return nil, err
	}
	return s.drugs.GetByID(ctx, id)
}

func (s *Service) RetireDrug(ctx context.Context, id uuid.UUID) error {
	if _, err := s.drugs.GetByID(ctx, id); err != nil {
		return ErrUnknownDrug
	}
	return s.drugs.Retire(ctx, id)
}

func (s *Service) ListDrugs(ctx context.Context, limit, offset int) ([]*Drug, int, error) {
	return s.drugs.List(ctx, limit, offset)
}

// EligibleDrugs lists drugs that can be dispensed today: in stock, not
// expired, not retired.
func (s *Service) EligibleDrugs(ctx context.Context) ([]*Drug, error) {
	today := period.DayOf(time.Now()).Start
	return s.drugs.ListEligible(ctx, today)
}

// -- Dispense processor --

type DispenseLine struct {
	DrugID   uuid.UUID `json:"drug_id"`
	Quantity int       `json:"quantity"`
}

type DispenseRequest struct {
	Patient    patient.Patient `json:"patient"`
	Lines      []DispenseLine  `json:"lines"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

type LineResult struct {
	DrugID   uuid.UUID       `json:"drug_id"`
	DrugName string          `json:"drug_name,omitempty"`
	Quantity int             `json:"quantity"`
	Applied  bool            `json:"applied"`
	Reason   string          `json:"reason,omitempty"`
	Record   *DispenseRecord `json:"record,omitempty"`
}

type DispenseResult struct {
	Patient      *patient.Patient `json:"patient"`
	Lines        []LineResult     `json:"lines"`
	TotalDue     decimal.Decimal  `json:"total_due"`
	TotalPaid    decimal.Decimal  `json:"total_paid"`
	TotalBalance decimal.Decimal  `json:"total_balance"`
	Unallocated  decimal.Decimal  `json:"unallocated"`
}

// Dispense processes a multi-line dispense request. Lines are handled
// independently in request order: a line that cannot be applied is rejected
// with a reason and the rest proceed. The payment is allocated greedily to
// applied lines in order; whatever it cannot cover becomes each line's
// balance, and any excess is reported back as unallocated. An empty line
// list is a no-op: nothing is written and the whole payment comes back
// unallocated.
//
// The caller is expected to run this inside a transaction so stock
// decrements and dispense records commit or roll back together.
func (s *Service) Dispense(ctx context.Context, req *DispenseRequest) (*DispenseResult, error) {
	if req.AmountPaid.IsNegative() {
		return nil, fmt.Errorf("amount_paid must not be negative")
	}
	if len(req.Lines) == 0 {
		return &DispenseResult{Unallocated: req.AmountPaid}, nil
	}

	p, _, err := s.patients.Resolve(ctx, &req.Patient)
	if err != nil {
		return nil, fmt.Errorf("resolve patient: %w", err)
	}

	today := period.DayOf(time.Now()).Start
	remaining := req.AmountPaid
	result := &DispenseResult{Patient: p}

	for _, line := range req.Lines {
		lr := LineResult{DrugID: line.DrugID, Quantity: line.Quantity}

		if line.Quantity <= 0 {
			lr.Reason = ErrInvalidQuantity.Error()
			result.Lines = append(result.Lines, lr)
			continue
		}

		drug, err := s.drugs.GetByID(ctx, line.DrugID)
		if err != nil {
			lr.Reason = ErrUnknownDrug.Error()
			result.Lines = append(result.Lines, lr)
			continue
		}
		lr.DrugName = drug.Name

		switch {
		case drug.Retired:
			lr.Reason = ErrDrugRetired.Error()
		case drug.ExpiryDate.Before(today):
			lr.Reason = ErrDrugExpired.Error()
		}
		if lr.Reason != "" {
			result.Lines = append(result.Lines, lr)
			continue
		}

		ok, err := s.drugs.DecrementStock(ctx, line.DrugID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("decrement stock for %s: %w", drug.Name, err)
		}
		if !ok {
			lr.Reason = ErrInsufficientStock.Error()
			result.Lines = append(result.Lines, lr)
			continue
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		due := drug.UnitSellingPrice.Mul(qty)
		allocated := decimal.Min(remaining, due)
		remaining = remaining.Sub(allocated)

		rec := &DispenseRecord{
			PatientID:         p.ID,
			DrugID:            drug.ID,
			QuantityDispensed: line.Quantity,
			TotalCost:         drug.UnitCostPrice.Mul(qty),
			AmountPaid:        allocated,
			Balance:           due.Sub(allocated),
		}
		if err := s.dispenses.Create(ctx, rec); err != nil {
			return nil, fmt.Errorf("record dispense of %s: %w", drug.Name, err)
		}

		lr.Applied = true
		lr.Record = rec
		result.Lines = append(result.Lines, lr)

		result.TotalDue = result.TotalDue.Add(due)
		result.TotalPaid = result.TotalPaid.Add(allocated)
		result.TotalBalance = result.TotalBalance.Add(rec.Balance)
	}

	result.Unallocated = remaining
	return result, nil
}

// -- Aggregator --

func (s *Service) Summary(ctx context.Context, periodName string, year, month int) (*Summary, error) {
	r, err := period.Parse(periodName, year, month, time.Now())
	if err != nil {
		return nil, err
	}
	return s.dispenses.Summarize(ctx, r.Start, r.End)
}

func (s *Service) Records(ctx context.Context, periodName string, year, month, limit, offset int) ([]*DispenseRecord, int, error) {
	r, err := period.Parse(periodName, year, month, time.Now())
	if err != nil {
		return nil, 0, err
	}
	return s.dispenses.ListByRange(ctx, r.Start, r.End, limit, offset)
}

func (s *Service) AvailableMonths(ctx context.Context) ([]*MonthActivity, error) {
	return s.dispenses.AvailableMonths(ctx)
}
