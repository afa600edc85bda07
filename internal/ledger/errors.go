package ledger

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Rejection marks an expected validation outcome: the operation was
// refused by one of the consistency gates and the store is unchanged.
// Rejections are normal results, never retried.
type Rejection interface {
	error
	rejection()
}

// IsRejection reports whether err is a validation rejection rather than
// an unexpected fault.
func IsRejection(err error) bool {
	var r Rejection
	return errors.As(err, &r)
}

// InvalidAmountError is returned when an amount falls outside the
// configured per-transaction range for the operation kind.
type InvalidAmountError struct {
	AccountID int64
	Kind      OperationKind
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("%s amount out of range for account %d", e.Kind, e.AccountID)
}

func (e *InvalidAmountError) rejection() {}

// AccountNotFoundError is returned when the named account has no row in
// the store.
type AccountNotFoundError struct {
	AccountID int64
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %d does not exist", e.AccountID)
}

func (e *AccountNotFoundError) rejection() {}

// DailyLimitError is returned when the account has already performed
// the maximum number of same-kind operations this UTC day.
type DailyLimitError struct {
	AccountID int64
	Kind      OperationKind
}

func (e *DailyLimitError) Error() string {
	return fmt.Sprintf("daily %s limit reached for account %d", e.Kind, e.AccountID)
}

func (e *DailyLimitError) rejection() {}

// BalanceBoundError is returned when the conditional balance update was
// not applied because the resulting balance would leave the configured
// range. A deposit violates the upper bound, a withdrawal the lower.
type BalanceBoundError struct {
	AccountID int64
	Kind      OperationKind
}

// Upper reports whether the violated bound is the balance ceiling.
func (e *BalanceBoundError) Upper() bool {
	return e.Kind == Deposit
}

func (e *BalanceBoundError) Error() string {
	if e.Upper() {
		return fmt.Sprintf("balance of account %d would exceed the maximum", e.AccountID)
	}
	return fmt.Sprintf("balance of account %d would fall below the minimum", e.AccountID)
}

func (e *BalanceBoundError) rejection() {}

// UnknownOperationTypeError means an operation name has no seeded row
// in transaction_type. This is a configuration fault, not a user error.
type UnknownOperationTypeError struct {
	Name string
}

func (e *UnknownOperationTypeError) Error() string {
	return fmt.Sprintf("unknown operation type %q", e.Name)
}

// PersistenceError wraps a store or connection fault.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// isSerializationFailure reports whether err is a Postgres
// serialization abort or deadlock, the faults expected to succeed on
// immediate retry under snapshot isolation.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}
