package laboratory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

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

const visitCols = `id, patient_name, hospital_number, laboratory_number, sample,
	referring_physician, investigations, amount_paid, result, created_at`

func (r *repoPG) scanVisit(row pgx.Row) (*LabVisit, error) {
	var v LabVisit
	err := row.Scan(&v.ID, &v.PatientName, &v.HospitalNumber, &v.LaboratoryNumber, &v.Sample,
		&v.ReferringPhysician, &v.Investigations, &v.AmountPaid, &v.Result, &v.CreatedAt)
	return &v, err
}

func (r *repoPG) Create(ctx context.Context, v *LabVisit) error {
	v.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO lab_visits (id, patient_name, hospital_number, laboratory_number, sample,
			referring_physician, investigations, amount_paid)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at`,
		v.ID, v.PatientName, v.HospitalNumber, v.LaboratoryNumber, v.Sample,
		v.ReferringPhysician, v.Investigations, v.AmountPaid).Scan(&v.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabVisit, error) {
	return r.scanVisit(r.conn(ctx).QueryRow(ctx, `SELECT `+visitCols+` FROM lab_visits WHERE id = $1`, id))
}

func (r *repoPG) SetResult(ctx context.Context, id uuid.UUID, result string) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE lab_visits SET result = $2 WHERE id = $1`, id, result)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*LabVisit, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM lab_visits`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+visitCols+` FROM lab_visits ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*LabVisit
	for rows.Next() {
		v, err := r.scanVisit(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Summarize(ctx context.Context, start, end time.Time) (*Summary, error) {
	var s Summary
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount_paid), 0)
		FROM lab_visits
		WHERE created_at >= $1 AND created_at < $2`,
		start, end).Scan(&s.Visits, &s.AmountPaid)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) TotalPaidOn(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_paid), 0) FROM lab_visits
		WHERE created_at >= $1 AND created_at < $1 + INTERVAL '1 day'`,
		day).Scan(&total)
	return total, err
}
