package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// AccountRepo reads and mutates account rows. Balance mutations go
// through a single conditional UPDATE so the bound check and the write
// happen in one atomic statement; there is no read-then-write window.
type AccountRepo struct {
	balance Bounds
}

// Create inserts a new account with a zero balance and returns the
// store-assigned id.
func (r AccountRepo) Create(ctx context.Context, q Querier, holder string) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `INSERT INTO account (holder) VALUES ($1) RETURNING id`, holder).Scan(&id)
	if err != nil {
		return 0, &PersistenceError{Op: "create account", Err: err}
	}
	return id, nil
}

// Exists probes for an account row.
func (r AccountRepo) Exists(ctx context.Context, q Querier, accountID int64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM account WHERE id = $1)`, accountID).Scan(&exists)
	if err != nil {
		return false, &PersistenceError{Op: "check account existence", Err: err}
	}
	return exists, nil
}

// ApplyDelta adds delta to the account balance only if the result stays
// within the configured balance range. It returns the new balance, or
// applied=false when the guard refused the update. Callers verify
// existence beforehand, so a refusal means a bound violation.
func (r AccountRepo) ApplyDelta(ctx context.Context, q Querier, accountID, delta int64) (int64, bool, error) {
	const stmt = `
		UPDATE account
		SET balance = balance + $1, updated_at = now()
		WHERE id = $2
		  AND balance + $1 >= $3
		  AND balance + $1 <= $4
		RETURNING balance`

	var balance int64
	err := q.QueryRow(ctx, stmt, delta, accountID, r.balance.Min, r.balance.Max).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, &PersistenceError{Op: "update balance", Err: err}
	}
	return balance, true, nil
}
