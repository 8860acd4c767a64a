package pharmacy

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

// =========== Drug Repository ===========

type drugRepoPG struct{ pool *pgxpool.Pool }

func NewDrugRepoPG(pool *pgxpool.Pool) DrugRepository { return &drugRepoPG{pool: pool} }

func (r *drugRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const drugCols = `id, name, brand_name, expiry_date, unit_cost_price, unit_selling_price,
	quantity_supplied, quantity_left, retired, created_at, updated_at`

func (r *drugRepoPG) scanDrug(row pgx.Row) (*Drug, error) {
	var d Drug
	err := row.Scan(&d.ID, &d.Name, &d.BrandName, &d.ExpiryDate, &d.UnitCostPrice, &d.UnitSellingPrice,
		&d.QuantitySupplied, &d.QuantityLeft, &d.Retired, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *drugRepoPG) Create(ctx context.Context, d *Drug) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO drugs (id, name, brand_name, expiry_date, unit_cost_price, unit_selling_price,
			quantity_supplied, quantity_left)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.Name, d.BrandName, d.ExpiryDate, d.UnitCostPrice, d.UnitSellingPrice,
		d.QuantitySupplied, d.QuantityLeft)
	return err
}

func (r *drugRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Drug, error) {
	return r.scanDrug(r.conn(ctx).QueryRow(ctx, `SELECT `+drugCols+` FROM drugs WHERE id = $1`, id))
}

func (r *drugRepoPG) Update(ctx context.Context, d *Drug) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE drugs SET name=$2, brand_name=$3, expiry_date=$4,
			unit_cost_price=$5, unit_selling_price=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.BrandName, d.ExpiryDate, d.UnitCostPrice, d.UnitSellingPrice)
	return err
}

func (r *drugRepoPG) Retire(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE drugs SET retired = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *drugRepoPG) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE drugs SET quantity_left = quantity_left - $2, updated_at = NOW()
		WHERE id = $1 AND retired = FALSE AND quantity_left >= $2`,
		id, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *drugRepoPG) AddStock(ctx context.Context, id uuid.UUID, added int) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE drugs SET quantity_left = quantity_left + $2,
			quantity_supplied = quantity_supplied + $2, updated_at = NOW()
		WHERE id = $1`,
		id, added)
	return err
}

func (r *drugRepoPG) List(ctx context.Context, limit, offset int) ([]*Drug, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM drugs WHERE retired = FALSE`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+drugCols+` FROM drugs WHERE retired = FALSE ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Drug
	for rows.Next() {
		d, err := r.scanDrug(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *drugRepoPG) ListEligible(ctx context.Context, day time.Time) ([]*Drug, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+drugCols+` FROM drugs
		WHERE retired = FALSE AND quantity_left > 0 AND expiry_date >= $1
		ORDER BY name`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Drug
	for rows.Next() {
		d, err := r.scanDrug(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// =========== Dispense Repository ===========

type dispenseRepoPG struct{ pool *pgxpool.Pool }

func NewDispenseRepoPG(pool *pgxpool.Pool) DispenseRepository { return &dispenseRepoPG{pool: pool} }

func (r *dispenseRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const dispenseCols = `id, patient_id, drug_id, quantity_dispensed, total_cost, amount_paid, balance, dispensed_at`

func (r *dispenseRepoPG) scanRecord(row pgx.Row) (*DispenseRecord, error) {
	var rec DispenseRecord
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.DrugID, &rec.QuantityDispensed,
		&rec.TotalCost, &rec.AmountPaid, &rec.Balance, &rec.DispensedAt)
	return &rec, err
}

func (r *dispenseRepoPG) Create(ctx context.Context, rec *DispenseRecord) error {
	rec.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO dispense_records (id, patient_id, drug_id, quantity_dispensed, total_cost, amount_paid, balance)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING dispensed_at`,
		rec.ID, rec.PatientID, rec.DrugID, rec.QuantityDispensed,
		rec.TotalCost, rec.AmountPaid, rec.Balance).Scan(&rec.DispensedAt)
}

func (r *dispenseRepoPG) ListByRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*DispenseRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM dispense_records WHERE dispensed_at >= $1 AND dispensed_at < $2`,
		start, end).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+dispenseCols+` FROM dispense_records
		WHERE dispensed_at >= $1 AND dispensed_at < $2
		ORDER BY dispensed_at DESC LIMIT $3 OFFSET $4`,
		start, end, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*DispenseRecord
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

func (r *dispenseRepoPG) Summarize(ctx context.Context, start, end time.Time) (*Summary, error) {
	var s Summary
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(quantity_dispensed), 0),
			COALESCE(SUM(total_cost), 0),
			COALESCE(SUM(amount_paid), 0),
			COALESCE(SUM(balance), 0)
		FROM dispense_records
		WHERE dispensed_at >= $1 AND dispensed_at < $2`,
		start, end).Scan(&s.Records, &s.Quantity, &s.TotalCost, &s.AmountPaid, &s.Balance)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *dispenseRepoPG) AvailableMonths(ctx context.Context) ([]*MonthActivity, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT EXTRACT(YEAR FROM dispensed_at)::int,
			EXTRACT(MONTH FROM dispensed_at)::int,
			COUNT(*)
		FROM dispense_records
		GROUP BY 1, 2
		ORDER BY 1 DESC, 2 DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var months []*MonthActivity
	for rows.Next() {
		var m MonthActivity
		if err := rows.Scan(&m.Year, &m.Month, &m.Records); err != nil {
			return nil, err
		}
		months = append(months, &m)
	}
	return months, rows.Err()
}

func (r *dispenseRepoPG) TotalPaidOn(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_paid), 0) FROM dispense_records
		WHERE dispensed_at >= $1 AND dispensed_at < $1 + INTERVAL '1 day'`,
		day).Scan(&total)
	return total, err
}
