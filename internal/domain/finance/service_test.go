package finance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -- Mock Repository --

type mockRepo struct {
	records      map[uuid.UUID]*FinanceRecord
	payments     []*HMOPayment
	logs         []*FinanceLog
	getByDateErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[uuid.UUID]*FinanceRecord)}
}

func (m *mockRepo) CreateRecord(_ context.Context, r *FinanceRecord) error {
	for _, rec := range m.records {
		if rec.RecordDate.Equal(r.RecordDate) {
			return fmt.Errorf("duplicate record_date")
		}
	}
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
	m.records[r.ID] = r
	return nil
}

func (m *mockRepo) GetRecordByID(_ context.Context, id uuid.UUID) (*FinanceRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return r, nil
}

func (m *mockRepo) GetRecordByDate(_ context.Context, date time.Time) (*FinanceRecord, error) {
	if m.getByDateErr != nil {
		return nil, m.getByDateErr
	}
	for _, r := range m.records {
		if r.RecordDate.Equal(date) {
			return r, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *mockRepo) UpdateRecordTotals(_ context.Context, r *FinanceRecord) error {
	if _, ok := m.records[r.ID]; !ok {
		return fmt.Errorf("not found")
	}
	r.UpdatedAt = time.Now()
	m.records[r.ID] = r
	return nil
}

func (m *mockRepo) DeleteRecord(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("not found")
	}
	delete(m.records, id)
	// payments cascade with the record; logs stay but lose the reference
	var kept []*HMOPayment
	for _, p := range m.payments {
		if p.FinanceID != id {
			kept = append(kept, p)
		}
	}
	m.payments = kept
	for _, l := range m.logs {
		if l.FinanceRecordID != nil && *l.FinanceRecordID == id {
			l.FinanceRecordID = nil
		}
	}
	return nil
}

func (m *mockRepo) ListRecords(_ context.Context, start, end time.Time, limit, offset int) ([]*FinanceRecord, int, error) {
	var result []*FinanceRecord
	for _, r := range m.records {
		if !r.RecordDate.Before(start) && r.RecordDate.Before(end) {
			result = append(result, r)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) AddPayment(_ context.Context, p *HMOPayment) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.payments = append(m.payments, p)
	return nil
}

func (m *mockRepo) ListPayments(_ context.Context, financeID uuid.UUID) ([]*HMOPayment, error) {
	var result []*HMOPayment
	for _, p := range m.payments {
		if p.FinanceID == financeID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockRepo) AddLog(_ context.Context, l *FinanceLog) error {
	l.ID = uuid.New()
	l.CreatedAt = time.Now()
	m.logs = append(m.logs, l)
	return nil
}

func (m *mockRepo) ListLogs(_ context.Context, f LogFilter, limit, offset int) ([]*FinanceLog, int, error) {
	var result []*FinanceLog
	for _, l := range m.logs {
		switch {
		case f.Date != nil:
			if !l.RecordDate.Equal(*f.Date) {
				continue
			}
		case f.Year > 0 && f.Month > 0:
			if l.RecordDate.Year() != f.Year || int(l.RecordDate.Month()) != f.Month {
				continue
			}
		case f.Year > 0:
			if l.RecordDate.Year() != f.Year {
				continue
			}
		}
		result = append(result, l)
	}
	return result, len(result), nil
}

// stubIncome is a fixed-amount revenue source.
type stubIncome struct {
	total decimal.Decimal
	err   error
}

func (s *stubIncome) TotalPaidOn(_ context.Context, _ time.Time) (decimal.Decimal, error) {
	return s.total, s.err
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// -- Tests --

func TestReconcile_CreatesRecordForEmptyDay(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &stubIncome{}, &stubIncome{})

	rec, err := svc.Reconcile(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.DispensaryTotal.IsZero() || !rec.LaboratoryTotal.IsZero() || !rec.HMOsTotal.IsZero() {
		t.Error("expected all section totals to be zero for an empty day")
	}
	if !rec.TotalIncome.IsZero() {
		t.Errorf("expected zero total income, got %s", rec.TotalIncome)
	}
	if len(repo.records) != 1 {
		t.Errorf("expected 1 record, got %d", len(repo.records))
	}
}

func TestReconcile_PropagatesLookupFailure(t *testing.T) {
	repo := newMockRepo()
	repo.getByDateErr = fmt.Errorf("connection reset")
	svc := NewService(repo, &stubIncome{total: dec(100)}, &stubIncome{})

	// A transient lookup failure must surface, not be mistaken for an
	// absent record and answered with an insert.
	_, err := svc.Reconcile(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected lookup failure to propagate")
	}
	if len(repo.records) != 0 {
		t.Errorf("expected no record created on lookup failure, got %d", len(repo.records))
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &stubIncome{total: dec(500)}, &stubIncome{total: dec(200)})

	first, err := svc.Reconcile(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Reconcile(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != second.ID {
		t.Error("expected both reconciles to touch the same record")
	}
	if len(repo.records) != 1 {
		t.Errorf("expected 1 record after repeat reconcile, got %d", len(repo.records))
	}
	if !second.DispensaryTotal.Equal(dec(500)) {
		t.Errorf("expected dispensary total 500, got %s", second.DispensaryTotal)
	}
	if !second.TotalIncome.Equal(dec(700)) {
		t.Errorf("expected total income 700, got %s", second.TotalIncome)
	}
}

func TestReconcile_WritesLogEntry(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &stubIncome{total: dec(100)}, &stubIncome{})

	rec, err := svc.Reconcile(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.logs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(repo.logs))
	}
	l := repo.logs[0]
	if l.Section != SectionUpdate {
		t.Errorf("expected section %q, got %q", SectionUpdate, l.Section)
	}
	if l.FinanceRecordID == nil || *l.FinanceRecordID != rec.ID {
		t.Error("expected log to reference the reconciled record")
	}
	if !l.Amount.Equal(dec(100)) {
		t.Errorf("expected log amount 100, got %s", l.Amount)
	}
}

func TestAddHMOPayment_PreservedAcrossReconcile(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &stubIncome{total: dec(300)}, &stubIncome{total: dec(100)})

	if _, err := svc.AddHMOPayment(context.Background(), "Lifecare HMO", dec(250), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Reconciling again must refresh section totals without touching the
	// HMO total.
	rec, err := svc.Reconcile(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.HMOsTotal.Equal(dec(250)) {
		t.Errorf("expected hmos total 250 after reconcile, got %s", rec.HMOsTotal)
	}
	if !rec.TotalIncome.Equal(dec(650)) {
		t.Errorf("expected total income 650, got %s", rec.TotalIncome)
	}
}

func TestAddHMOPayment_Accumulates(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &stubIncome{}, &stubIncome{})

	for _, amount := range []int64{100, 50, 75} {
		if _, err := svc.AddHMOPayment(context.Background(), "HMO", dec(amount), nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	rec, err := svc.Reconcile(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.HMOsTotal.Equal(dec(225)) {
		t.Errorf("expected hmos total 225, got %s", rec.HMOsTotal)
	}

	// The stored payments must sum to the record's HMO total.
	sum := decimal.Zero
	for _, p := range repo.payments {
		sum = sum.Add(p.Amount)
	}
	if !sum.Equal(rec.HMOsTotal) {
		t.Errorf("payments sum %s != hmos total %s", sum, rec.HMOsTotal)
	}
}

func TestAddHMOPayment_Validation(t *testing.T) {
	svc := NewService(newMockRepo(), &stubIncome{}, &stubIncome{})
	ctx := context.Background()

	if _, err := svc.AddHMOPayment(ctx, "", dec(10), nil); err == nil {
		t.Error("expected error for missing hmo name")
	}
	if _, err := svc.AddHMOPayment(ctx, "HMO", dec(-10), nil); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestDeleteRecord_LogSurvives(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &stubIncome{total: dec(40)}, &stubIncome{})

	rec, err := svc.Reconcile(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteRecord(context.Background(), rec.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.records) != 0 {
		t.Errorf("expected record deleted, %d remain", len(repo.records))
	}

	var deleteLog *FinanceLog
	for _, l := range repo.logs {
		if l.Section == SectionDelete {
			deleteLog = l
		}
	}
	if deleteLog == nil {
		t.Fatal("expected a delete log entry")
	}
	if deleteLog.FinanceRecordID != nil {
		t.Error("expected delete log to be detached from the removed record")
	}
	if !deleteLog.Amount.Equal(dec(40)) {
		t.Errorf("expected delete log amount 40, got %s", deleteLog.Amount)
	}
}

func TestDeleteRecord_Unknown(t *testing.T) {
	svc := NewService(newMockRepo(), &stubIncome{}, &stubIncome{})
	if err := svc.DeleteRecord(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error for unknown record")
	}
}

func TestDaily_IncludesPayments(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &stubIncome{total: dec(10)}, &stubIncome{})

	if _, err := svc.AddHMOPayment(context.Background(), "HMO A", dec(20), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddHMOPayment(context.Background(), "HMO B", dec(30), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := svc.Daily(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Payments) != 2 {
		t.Errorf("expected 2 payments, got %d", len(view.Payments))
	}
	if !view.Record.TotalIncome.Equal(dec(60)) {
		t.Errorf("expected total income 60, got %s", view.Record.TotalIncome)
	}
}

func TestHistory_Filters(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &stubIncome{}, &stubIncome{})

	march := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	april := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	repo.logs = []*FinanceLog{
		{RecordDate: march, Section: SectionUpdate},
		{RecordDate: march, Section: SectionHMOs},
		{RecordDate: april, Section: SectionUpdate},
	}

	byMonth, _, err := svc.History(context.Background(), LogFilter{Year: 2025, Month: 3}, 100, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byMonth) != 2 {
		t.Errorf("expected 2 logs for 2025-03, got %d", len(byMonth))
	}

	byYear, _, err := svc.History(context.Background(), LogFilter{Year: 2025}, 100, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byYear) != 3 {
		t.Errorf("expected 3 logs for 2025, got %d", len(byYear))
	}

	byDate, _, err := svc.History(context.Background(), LogFilter{Date: &april}, 100, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byDate) != 1 {
		t.Errorf("expected 1 log for the date, got %d", len(byDate))
	}
}
