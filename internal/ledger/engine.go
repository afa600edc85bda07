package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const defaultQueryTimeout = 5 * time.Second

// Engine applies money-movement operations against the store while
// enforcing the ledger's consistency invariants: per-transaction amount
// bounds, account existence, per-day operation caps and account balance
// bounds. Validation failures come back as typed rejections and never
// leave committed effects.
type Engine struct {
	store    Store
	limits   Limits
	types    *TypeRegistry
	accounts AccountRepo
	entries  LedgerLog
	log      *slog.Logger
	timeout  time.Duration

	// now is replaceable so tests can pin the daily-limit window.
	now func() time.Time
}

// NewEngine builds an engine over the given store. A non-positive
// queryTimeout falls back to the default.
func NewEngine(store Store, limits Limits, queryTimeout time.Duration, log *slog.Logger) *Engine {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:    store,
		limits:   limits,
		types:    NewTypeRegistry(),
		accounts: AccountRepo{balance: limits.Balance},
		log:      log,
		timeout:  queryTimeout,
		now:      time.Now,
	}
}

// TxnResult describes one committed single-account operation.
type TxnResult struct {
	Kind      OperationKind
	AccountID int64
	Amount    int64
	Balance   int64
}

// TransferResult describes one committed two-account transfer.
type TransferResult struct {
	FromAccountID int64
	ToAccountID   int64
	Amount        int64
}

// CreateAccount inserts a new account with zero balance and returns its
// store-assigned number.
func (e *Engine) CreateAccount(ctx context.Context, holder string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	conn, err := e.store.Acquire(ctx)
	if err != nil {
		return 0, &PersistenceError{Op: "acquire connection", Err: err}
	}
	defer conn.Release()

	id, err := e.accounts.Create(ctx, conn, holder)
	if err != nil {
		return 0, err
	}

	e.log.Info("account created", "account", id, "holder", holder)
	return id, nil
}

// SingleAccountTransaction performs one deposit or withdrawal. The
// amount is validated before any store access; the balance mutation and
// the ledger append commit together or not at all.
func (e *Engine) SingleAccountTransaction(ctx context.Context, accountID, amount int64, kind OperationKind) (*TxnResult, error) {
	if !e.limits.validAmount(kind, amount) {
		return nil, &InvalidAmountError{AccountID: accountID, Kind: kind}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	conn, err := e.store.Acquire(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "acquire connection", Err: err}
	}
	defer conn.Release()

	opID, err := e.types.Resolve(ctx, conn, kind)
	if err != nil {
		return nil, err
	}

	exists, err := e.accounts.Exists(ctx, conn, accountID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &AccountNotFoundError{AccountID: accountID}
	}

	under, err := e.entries.UnderDailyLimit(ctx, conn, opID, accountID, e.now())
	if err != nil {
		return nil, err
	}
	if !under {
		return nil, &DailyLimitError{AccountID: accountID, Kind: kind}
	}

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, &PersistenceError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback(ctx)

	balance, applied, err := e.accounts.ApplyDelta(ctx, tx, accountID, kind.delta(amount))
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, &BalanceBoundError{AccountID: accountID, Kind: kind}
	}

	if err := e.entries.Append(ctx, tx, opID, accountID, amount); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &PersistenceError{Op: "commit transaction", Err: err}
	}

	e.log.Info("transaction committed",
		"kind", kind, "account", accountID, "amount", amount, "balance", balance)
	return &TxnResult{Kind: kind, AccountID: accountID, Amount: amount, Balance: balance}, nil
}

// Transfer moves amount from one account to another as a withdraw leg
// composed with a deposit leg inside one store transaction, so a
// failure of either leg rolls back both.
func (e *Engine) Transfer(ctx context.Context, fromID, toID, amount int64) (*TransferResult, error) {
	// The destination leg is a deposit and the source leg a withdrawal;
	// the amount must satisfy both ranges.
	if !e.limits.ValidDepositAmount(amount) {
		return nil, &InvalidAmountError{AccountID: toID, Kind: Deposit}
	}
	if !e.limits.ValidWithdrawalAmount(amount) {
		return nil, &InvalidAmountError{AccountID: fromID, Kind: Withdraw}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	conn, err := e.store.Acquire(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "acquire connection", Err: err}
	}
	defer conn.Release()

	withdrawID, err := e.types.Resolve(ctx, conn, Withdraw)
	if err != nil {
		return nil, err
	}
	depositID, err := e.types.Resolve(ctx, conn, Deposit)
	if err != nil {
		return nil, err
	}

	// Source checked first so a transfer with two missing accounts
	// reports the source deterministically.
	for _, id := range []int64{fromID, toID} {
		exists, err := e.accounts.Exists(ctx, conn, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, &AccountNotFoundError{AccountID: id}
		}
	}

	now := e.now()
	under, err := e.entries.UnderDailyLimit(ctx, conn, withdrawID, fromID, now)
	if err != nil {
		return nil, err
	}
	if !under {
		return nil, &DailyLimitError{AccountID: fromID, Kind: Withdraw}
	}
	under, err = e.entries.UnderDailyLimit(ctx, conn, depositID, toID, now)
	if err != nil {
		return nil, err
	}
	if !under {
		return nil, &DailyLimitError{AccountID: toID, Kind: Deposit}
	}

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, &PersistenceError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback(ctx)

	_, applied, err := e.accounts.ApplyDelta(ctx, tx, fromID, Withdraw.delta(amount))
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, &BalanceBoundError{AccountID: fromID, Kind: Withdraw}
	}

	_, applied, err = e.accounts.ApplyDelta(ctx, tx, toID, Deposit.delta(amount))
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, &BalanceBoundError{AccountID: toID, Kind: Deposit}
	}

	if err := e.entries.Append(ctx, tx, withdrawID, fromID, amount); err != nil {
		return nil, err
	}
	if err := e.entries.Append(ctx, tx, depositID, toID, amount); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &PersistenceError{Op: "commit transaction", Err: err}
	}

	e.log.Info("transfer committed", "from", fromID, "to", toID, "amount", amount)
	return &TransferResult{FromAccountID: fromID, ToAccountID: toID, Amount: amount}, nil
}

// InitSchema provisions the schema and seed data.
func (e *Engine) InitSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	conn, err := e.store.Acquire(ctx)
	if err != nil {
		return &PersistenceError{Op: "acquire connection", Err: err}
	}
	defer conn.Release()

	return initSchema(ctx, conn)
}
