package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyIncome is a revenue source the reconciler pulls a day's takings from.
type DailyIncome interface {
	TotalPaidOn(ctx context.Context, day time.Time) (decimal.Decimal, error)
}

type Service struct {
	repo       Repository
	dispensary DailyIncome
	laboratory DailyIncome
}

func NewService(repo Repository, dispensary, laboratory DailyIncome) *Service {
	return &Service{repo: repo, dispensary: dispensary, laboratory: laboratory}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Reconcile recomputes the dispensary and laboratory totals for the given
// day from their source tables and upserts the day's finance record. The
// HMO total is never touched here, so running it again for the same day is
// a no-op apart from the log entry.
func (s *Service) Reconcile(ctx context.Context, day time.Time) (*FinanceRecord, error) {
	day = dateOf(day)

	dispensaryTotal, err := s.dispensary.TotalPaidOn(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("dispensary total: %w", err)
	}
	laboratoryTotal, err := s.laboratory.TotalPaidOn(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("laboratory total: %w", err)
	}

	rec, err := s.repo.GetRecordByDate(ctx, day)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		rec = &FinanceRecord{RecordDate: day, DispensaryTotal: dispensaryTotal, LaboratoryTotal: laboratoryTotal}
		rec.ComputeTotal()
		if err := s.repo.CreateRecord(ctx, rec); err != nil {
			return nil, fmt.Errorf("create finance record: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load finance record: %w", err)
	default:
		rec.DispensaryTotal = dispensaryTotal
		rec.LaboratoryTotal = laboratoryTotal
		rec.ComputeTotal()
		if err := s.repo.UpdateRecordTotals(ctx, rec); err != nil {
			return nil, fmt.Errorf("update finance record: %w", err)
		}
	}

	if err := s.log(ctx, rec, SectionUpdate,
		fmt.Sprintf("daily reconciliation for %s", day.Format("2006-01-02")), rec.TotalIncome); err != nil {
		return nil, err
	}
	return rec, nil
}

// AddHMOPayment records a payment from an HMO against today's record,
// reconciling the day first so the record exists and carries fresh section
// totals.
func (s *Service) AddHMOPayment(ctx context.Context, hmoName string, amount decimal.Decimal, notes *string) (*HMOPayment, error) {
	if hmoName == "" {
		return nil, fmt.Errorf("hmo_name is required")
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative")
	}

	rec, err := s.Reconcile(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	payment := &HMOPayment{
		FinanceID:   rec.ID,
		HMOName:     hmoName,
		Amount:      amount,
		PaymentDate: rec.RecordDate,
		Notes:       notes,
	}
	if err := s.repo.AddPayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("add hmo payment: %w", err)
	}

	rec.HMOsTotal = rec.HMOsTotal.Add(amount)
	rec.ComputeTotal()
	if err := s.repo.UpdateRecordTotals(ctx, rec); err != nil {
		return nil, fmt.Errorf("update finance record: %w", err)
	}

	if err := s.log(ctx, rec, SectionHMOs,
		fmt.Sprintf("HMO payment from %s", hmoName), amount); err != nil {
		return nil, err
	}
	return payment, nil
}

// DeleteRecord removes a day's finance record. The deletion is logged
// before the row goes away; the log entry outlives the record.
func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	rec, err := s.repo.GetRecordByID(ctx, id)
	if err != nil {
		return fmt.Errorf("finance record not found")
	}

	if err := s.log(ctx, rec, SectionDelete,
		fmt.Sprintf("deleted finance record for %s", rec.RecordDate.Format("2006-01-02")), rec.TotalIncome); err != nil {
		return err
	}
	return s.repo.DeleteRecord(ctx, id)
}

// Daily reconciles today and returns the record with its HMO payments.
func (s *Service) Daily(ctx context.Context) (*DailyView, error) {
	rec, err := s.Reconcile(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("list hmo payments: %w", err)
	}
	return &DailyView{Record: rec, Payments: payments}, nil
}

func (s *Service) Records(ctx context.Context, start, end time.Time, limit, offset int) ([]*FinanceRecord, int, error) {
	return s.repo.ListRecords(ctx, start, end, limit, offset)
}

func (s *Service) History(ctx context.Context, f LogFilter, limit, offset int) ([]*FinanceLog, int, error) {
	return s.repo.ListLogs(ctx, f, limit, offset)
}

func (s *Service) log(ctx context.Context, rec *FinanceRecord, section, description string, amount decimal.Decimal) error {
	id := rec.ID
	entry := &FinanceLog{
		FinanceRecordID: &id,
		RecordDate:      rec.RecordDate,
		Section:         section,
		Description:     description,
		Amount:          amount,
	}
	if err := s.repo.AddLog(ctx, entry); err != nil {
		return fmt.Errorf("write finance log: %w", err)
	}
	return nil
}
