package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB is the in-memory stand-in for the relational store. Committed
// state lives here; open transactions stage their writes and only merge
// them on Commit, so rollback behaviour is observable.
type fakeDB struct {
	nextID   int64
	accounts map[int64]int64
	entries  []fakeEntry
	types    map[string]int32

	now time.Time

	typeLookups int
	begins      int

	beginErr  error
	commitErr error
	appendErr error
}

type fakeEntry struct {
	op      int32
	account int64
	amount  int64
	at      time.Time
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		nextID:   1001,
		accounts: make(map[int64]int64),
		types:    map[string]int32{"deposit": 1, "withdraw": 2},
		now:      time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC),
	}
}

func (db *fakeDB) addAccount(balance int64) int64 {
	id := db.nextID
	db.nextID++
	db.accounts[id] = balance
	return id
}

func (db *fakeDB) addEntry(kind OperationKind, account, amount int64, at time.Time) {
	db.entries = append(db.entries, fakeEntry{op: db.types[string(kind)], account: account, amount: amount, at: at})
}

func (db *fakeDB) countSince(op int32, account int64, since time.Time) int {
	n := 0
	for _, e := range db.entries {
		if e.op == op && e.account == account && !e.at.Before(since) {
			n++
		}
	}
	return n
}

type fakeStore struct {
	db         *fakeDB
	acquires   int
	acquireErr error
	lastConn   *fakeConn
}

func newFakeStore() *fakeStore {
	return &fakeStore{db: newFakeDB()}
}

func (s *fakeStore) Acquire(ctx context.Context) (Conn, error) {
	s.acquires++
	if s.acquireErr != nil {
		return nil, s.acquireErr
	}
	s.lastConn = &fakeConn{db: s.db}
	return s.lastConn, nil
}

type fakeConn struct {
	db       *fakeDB
	released bool
	lastTx   *fakeTx
}

func (c *fakeConn) Release() {
	c.released = true
}

func (c *fakeConn) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	c.db.begins++
	if c.db.beginErr != nil {
		return nil, c.db.beginErr
	}
	staged := make(map[int64]int64, len(c.db.accounts))
	for id, bal := range c.db.accounts {
		staged[id] = bal
	}
	c.lastTx = &fakeTx{db: c.db, staged: staged}
	return c.lastTx, nil
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return execOn(c.db, nil, sql, args)
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected Query: " + sql)
}

func (c *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return queryRowOn(c.db, nil, sql, args)
}

// fakeTx satisfies pgx.Tx. Balance updates and ledger appends apply to
// the staged view and reach the fakeDB only on Commit.
type fakeTx struct {
	db         *fakeDB
	staged     map[int64]int64
	appended   []fakeEntry
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.db.commitErr != nil {
		return t.db.commitErr
	}
	t.committed = true
	for id, bal := range t.staged {
		t.db.accounts[id] = bal
	}
	t.db.entries = append(t.db.entries, t.appended...)
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return execOn(t.db, t, sql, args)
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected Query: " + sql)
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return queryRowOn(t.db, t, sql, args)
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, errors.New("nested tx") }
func (t *fakeTx) Conn() *pgx.Conn                           { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects            { return pgx.LargeObjects{} }
func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}
func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("unexpected CopyFrom")
}
func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("unexpected Prepare")
}

func execOn(db *fakeDB, tx *fakeTx, sql string, args []any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "INSERT INTO ledger"):
		if db.appendErr != nil {
			return pgconn.CommandTag{}, db.appendErr
		}
		entry := fakeEntry{
			op:      args[0].(int32),
			account: args[1].(int64),
			amount:  args[2].(int64),
			at:      db.now,
		}
		if tx != nil {
			tx.appended = append(tx.appended, entry)
		} else {
			db.entries = append(db.entries, entry)
		}
		return pgconn.NewCommandTag("INSERT 0 1"), nil

	case strings.Contains(sql, "DROP TABLE"):
		db.accounts = make(map[int64]int64)
		db.entries = nil
		db.nextID = 1001
		return pgconn.NewCommandTag("CREATE TABLE"), nil
	}
	return pgconn.CommandTag{}, errors.New("unexpected Exec: " + sql)
}

func queryRowOn(db *fakeDB, tx *fakeTx, sql string, args []any) pgx.Row {
	switch {
	case strings.Contains(sql, "FROM transaction_type"):
		db.typeLookups++
		id, ok := db.types[args[0].(string)]
		if !ok {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{vals: []any{id}}

	case strings.Contains(sql, "SELECT EXISTS"):
		_, ok := db.accounts[args[0].(int64)]
		return fakeRow{vals: []any{ok}}

	case strings.Contains(sql, "COUNT(*)"):
		n := db.countSince(args[0].(int32), args[1].(int64), args[2].(time.Time))
		return fakeRow{vals: []any{n}}

	case strings.Contains(sql, "INSERT INTO account"):
		id := db.nextID
		db.nextID++
		db.accounts[id] = 0
		return fakeRow{vals: []any{id}}

	case strings.Contains(sql, "UPDATE account"):
		delta := args[0].(int64)
		id := args[1].(int64)
		min := args[2].(int64)
		max := args[3].(int64)

		balances := db.accounts
		if tx != nil {
			balances = tx.staged
		}
		bal, ok := balances[id]
		if !ok || bal+delta < min || bal+delta > max {
			return fakeRow{err: pgx.ErrNoRows}
		}
		balances[id] = bal + delta
		return fakeRow{vals: []any{bal + delta}}
	}
	return fakeRow{err: errors.New("unexpected QueryRow: " + sql)}
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch v := d.(type) {
		case *int64:
			*v = r.vals[i].(int64)
		case *int32:
			*v = r.vals[i].(int32)
		case *int:
			*v = r.vals[i].(int)
		case *bool:
			*v = r.vals[i].(bool)
		}
	}
	return nil
}
