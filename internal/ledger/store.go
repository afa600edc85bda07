package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the query surface shared by pooled connections and open
// transactions. Both *pgxpool.Conn and pgx.Tx satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conn is a single pooled connection. Each logical operation borrows one
// for its entire transaction lifetime and must release it on every exit
// path.
type Conn interface {
	Querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Release()
}

// Store hands out connections from the process-wide pool.
type Store interface {
	Acquire(ctx context.Context) (Conn, error)
}

// PoolStore adapts a pgx connection pool to the Store interface.
type PoolStore struct {
	pool *pgxpool.Pool
}

// NewPoolStore wraps an existing pool.
func NewPoolStore(pool *pgxpool.Pool) *PoolStore {
	return &PoolStore{pool: pool}
}

func (s *PoolStore) Acquire(ctx context.Context) (Conn, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return conn, nil
}

// Close closes the underlying pool and waits for borrowed connections
// to be returned.
func (s *PoolStore) Close() {
	s.pool.Close()
}
