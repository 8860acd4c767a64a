package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// WithTx begins a transaction on the connection carried by the context and
// returns a derived context carrying the transaction. Repositories resolve
// the transaction via TxFromContext so every statement issued under the
// returned context joins it. The caller owns Commit and Rollback.
func WithTx(ctx context.Context) (context.Context, pgx.Tx, error) {
	conn := ConnFromContext(ctx)
	if conn == nil {
		return ctx, nil, fmt.Errorf("no database connection in context")
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return ctx, nil, fmt.Errorf("begin transaction: %w", err)
	}

	return context.WithValue(ctx, DBTxKey, tx), tx, nil
}

// TxFromContext retrieves the active transaction from context, or nil when
// the context carries none.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(DBTxKey).(pgx.Tx)
	return tx
}
