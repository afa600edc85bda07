package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
)

// TypeRegistry resolves operation names to their persisted ids. The
// rows in transaction_type are seeded at initialisation and immutable
// afterwards, so a resolved id is cached for the process lifetime. Two
// operations racing on first resolution both query the store and cache
// the same value, which is harmless.
type TypeRegistry struct {
	mu  sync.RWMutex
	ids map[OperationKind]int32
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{ids: make(map[OperationKind]int32)}
}

// Resolve returns the persisted id for kind, querying the store on the
// first call only.
func (r *TypeRegistry) Resolve(ctx context.Context, q Querier, kind OperationKind) (int32, error) {
	r.mu.RLock()
	id, ok := r.ids[kind]
	r.mu.RUnlock()
	if ok {
		return id, nil
	}

	err := q.QueryRow(ctx, `SELECT id FROM transaction_type WHERE name = $1`, string(kind)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &UnknownOperationTypeError{Name: string(kind)}
	}
	if err != nil {
		return 0, &PersistenceError{Op: "resolve operation type", Err: err}
	}

	r.mu.Lock()
	r.ids[kind] = id
	r.mu.Unlock()
	return id, nil
}
