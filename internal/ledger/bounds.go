package ledger

// OperationKind names one balance-affecting operation. The values match
// the seeded rows in transaction_type.
type OperationKind string

const (
	Deposit  OperationKind = "deposit"
	Withdraw OperationKind = "withdraw"
)

// delta converts a positive amount into the signed balance change for
// the kind.
func (k OperationKind) delta(amount int64) int64 {
	if k == Withdraw {
		return -amount
	}
	return amount
}

// Bounds is an inclusive integer range.
type Bounds struct {
	Min int64
	Max int64
}

// Contains reports whether v lies inside the range.
func (b Bounds) Contains(v int64) bool {
	return v >= b.Min && v <= b.Max
}

// Limits holds the configured per-transaction amount ranges and the
// account balance range. All amounts are in minor currency units.
type Limits struct {
	Deposit    Bounds
	Withdrawal Bounds
	Balance    Bounds
}

// ValidDepositAmount reports whether amount is an acceptable size for a
// single deposit.
func (l Limits) ValidDepositAmount(amount int64) bool {
	return l.Deposit.Contains(amount)
}

// ValidWithdrawalAmount reports whether amount is an acceptable size
// for a single withdrawal.
func (l Limits) ValidWithdrawalAmount(amount int64) bool {
	return l.Withdrawal.Contains(amount)
}

func (l Limits) validAmount(kind OperationKind, amount int64) bool {
	if kind == Withdraw {
		return l.ValidWithdrawalAmount(amount)
	}
	return l.ValidDepositAmount(amount)
}
