package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hims/hims/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const recordCols = `id, record_date, dispensary_total, laboratory_total, hmos_total, total_income, created_at, updated_at`

func (r *repoPG) scanRecord(row pgx.Row) (*FinanceRecord, error) {
	var rec FinanceRecord
	err := row.Scan(&rec.ID, &rec.RecordDate, &rec.DispensaryTotal, &rec.LaboratoryTotal,
		&rec.HMOsTotal, &rec.TotalIncome, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return &rec, err
}

func (r *repoPG) CreateRecord(ctx context.Context, rec *FinanceRecord) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO finance_records (id, record_date, dispensary_total, laboratory_total, hmos_total, total_income)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rec.ID, rec.RecordDate, rec.DispensaryTotal, rec.LaboratoryTotal, rec.HMOsTotal, rec.TotalIncome)
	return err
}

func (r *repoPG) GetRecordByID(ctx context.Context, id uuid.UUID) (*FinanceRecord, error) {
	return r.scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM finance_records WHERE id = $1`, id))
}

func (r *repoPG) GetRecordByDate(ctx context.Context, date time.Time) (*FinanceRecord, error) {
	return r.scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM finance_records WHERE record_date = $1`, date))
}

func (r *repoPG) UpdateRecordTotals(ctx context.Context, rec *FinanceRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE finance_records SET dispensary_total=$2, laboratory_total=$3,
			hmos_total=$4, total_income=$5, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.DispensaryTotal, rec.LaboratoryTotal, rec.HMOsTotal, rec.TotalIncome)
	return err
}

func (r *repoPG) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM finance_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finance record not found")
	}
	return nil
}

func (r *repoPG) ListRecords(ctx context.Context, start, end time.Time, limit, offset int) ([]*FinanceRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM finance_records WHERE record_date >= $1 AND record_date < $2`,
		start, end).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+recordCols+` FROM finance_records
		WHERE record_date >= $1 AND record_date < $2
		ORDER BY record_date DESC LIMIT $3 OFFSET $4`,
		start, end, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*FinanceRecord
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

// -- HMO payments --

const paymentCols = `id, finance_id, hmo_name, amount, payment_date, notes, created_at`

func (r *repoPG) AddPayment(ctx context.Context, p *HMOPayment) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO hmo_payments (id, finance_id, hmo_name, amount, payment_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		p.ID, p.FinanceID, p.HMOName, p.Amount, p.PaymentDate, p.Notes).Scan(&p.CreatedAt)
}

func (r *repoPG) ListPayments(ctx context.Context, financeID uuid.UUID) ([]*HMOPayment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+paymentCols+` FROM hmo_payments WHERE finance_id = $1 ORDER BY created_at`, financeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*HMOPayment
	for rows.Next() {
		var p HMOPayment
		if err := rows.Scan(&p.ID, &p.FinanceID, &p.HMOName, &p.Amount, &p.PaymentDate, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}

// -- Audit log --

const logCols = `id, finance_record_id, record_date, section, description, amount, created_at`

func (r *repoPG) AddLog(ctx context.Context, l *FinanceLog) error {
	l.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO finance_logs (id, finance_record_id, record_date, section, description, amount)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		l.ID, l.FinanceRecordID, l.RecordDate, l.Section, l.Description, l.Amount).Scan(&l.CreatedAt)
}

func (r *repoPG) ListLogs(ctx context.Context, f LogFilter, limit, offset int) ([]*FinanceLog, int, error) {
	where := `TRUE`
	args := []interface{}{}
	switch {
	case f.Date != nil:
		where = `record_date = $1`
		args = append(args, *f.Date)
	case f.Year > 0 && f.Month > 0:
		where = `EXTRACT(YEAR FROM record_date) = $1 AND EXTRACT(MONTH FROM record_date) = $2`
		args = append(args, f.Year, f.Month)
	case f.Year > 0:
		where = `EXTRACT(YEAR FROM record_date) = $1`
		args = append(args, f.Year)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM finance_logs WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM finance_logs WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		logCols, where, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*FinanceLog
	for rows.Next() {
		var l FinanceLog
		if err := rows.Scan(&l.ID, &l.FinanceRecordID, &l.RecordDate, &l.Section, &l.Description, &l.Amount, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &l)
	}
	return items, total, rows.Err()
}
