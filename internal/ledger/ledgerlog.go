package ledger

import (
	"context"
	"time"
)

// dailyTxnLimit caps same-kind operations per account per UTC calendar
// day.
const dailyTxnLimit = 3

// startOfUTCDay returns midnight UTC of the day containing t. The limit
// window is the UTC calendar day, not a rolling 24 hours: an entry at
// 23:59 and one at 00:01 the next minute fall in different windows.
func startOfUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LedgerLog appends to and counts the append-only ledger table. The
// ledger is the source of truth for the daily limit and the audit trail
// for balance history.
type LedgerLog struct{}

// Append records one completed leg. A transfer appends two entries,
// withdraw leg first.
func (LedgerLog) Append(ctx context.Context, q Querier, opID int32, accountID, amount int64) error {
	_, err := q.Exec(ctx,
		`INSERT INTO ledger (operation, account, amount) VALUES ($1, $2, $3)`,
		opID, accountID, amount)
	if err != nil {
		return &PersistenceError{Op: "append ledger entry", Err: err}
	}
	return nil
}

// CountSince counts entries of one operation type for an account
// created at or after the given instant.
func (LedgerLog) CountSince(ctx context.Context, q Querier, opID int32, accountID int64, since time.Time) (int, error) {
	var n int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM ledger WHERE operation = $1 AND account = $2 AND created_at >= $3`,
		opID, accountID, since).Scan(&n)
	if err != nil {
		return 0, &PersistenceError{Op: "count ledger entries", Err: err}
	}
	return n, nil
}

// UnderDailyLimit reports whether the account may perform one more
// operation of this type today.
func (l LedgerLog) UnderDailyLimit(ctx context.Context, q Querier, opID int32, accountID int64, now time.Time) (bool, error) {
	n, err := l.CountSince(ctx, q, opID, accountID, startOfUTCDay(now))
	if err != nil {
		return false, err
	}
	return n < dailyTxnLimit, nil
}
