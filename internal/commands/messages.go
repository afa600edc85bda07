package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/bank-ledger/internal/ledger"
)

const (
	msgInvalidInput  = "Invalid Input"
	msgUnsupported   = "Unsupported Command"
	msgUnexpected    = "Unexpected Error"
	msgDatabaseReady = "Database initialised"
	msgDatabaseFail  = "Failed to initialise database"
)

// messages renders engine results and rejections into the user-facing
// catalogue. Amount bounds in error text come from the running
// configuration, not from literals.
type messages struct {
	limits ledger.Limits
}

func (m messages) created(accountID int64) string {
	return fmt.Sprintf("Account creation successful. Account No: %d", accountID)
}

func (m messages) committed(res *ledger.TxnResult) string {
	if res.Kind == ledger.Withdraw {
		return fmt.Sprintf("Withdrawal successful. INR %s withdrawn from the account: %d",
			formatINR(res.Amount), res.AccountID)
	}
	return fmt.Sprintf("Deposit successful. INR %s deposited in the account: %d",
		formatINR(res.Amount), res.AccountID)
}

func (m messages) transferred(res *ledger.TransferResult) string {
	return fmt.Sprintf("Transfer successful. INR %s transferred from account %d to account %d",
		formatINR(res.Amount), res.FromAccountID, res.ToAccountID)
}

func (m messages) rejected(err error) string {
	var invalidAmount *ledger.InvalidAmountError
	if errors.As(err, &invalidAmount) {
		if invalidAmount.Kind == ledger.Withdraw {
			return fmt.Sprintf("Error: Withdrawal amount needs to be between INR %s and INR %s per transaction for the account: %d",
				formatINR(m.limits.Withdrawal.Min), formatINR(m.limits.Withdrawal.Max), invalidAmount.AccountID)
		}
		return fmt.Sprintf("Error: Deposit amount needs to be between INR %s and INR %s per transaction for the account: %d",
			formatINR(m.limits.Deposit.Min), formatINR(m.limits.Deposit.Max), invalidAmount.AccountID)
	}

	var notFound *ledger.AccountNotFoundError
	if errors.As(err, &notFound) {
		return fmt.Sprintf("Error: Account does not exist: %d", notFound.AccountID)
	}

	var dailyLimit *ledger.DailyLimitError
	if errors.As(err, &dailyLimit) {
		if dailyLimit.Kind == ledger.Withdraw {
			return fmt.Sprintf("Error: Exceeded the total number of permissible withdrawals for the day for account: %d",
				dailyLimit.AccountID)
		}
		return fmt.Sprintf("Error: Exceeded the total number of permissible deposits for the day for account: %d",
			dailyLimit.AccountID)
	}

	var bound *ledger.BalanceBoundError
	if errors.As(err, &bound) {
		if bound.Upper() {
			return fmt.Sprintf("Transaction Unsuccessful. The resultant balance will exceed INR %s for account: %d",
				formatINR(m.limits.Balance.Max), bound.AccountID)
		}
		return fmt.Sprintf("Transaction Unsuccessful. The resultant balance will reduce below INR %s for account: %d",
			formatINR(m.limits.Balance.Min), bound.AccountID)
	}

	return msgUnexpected
}

// formatINR renders an amount with Indian digit grouping: the last
// three digits form one group, the rest pair off (1,00,000).
func formatINR(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		groups := []string{tail}
		for len(head) > 2 {
			groups = append(groups, head[len(head)-2:])
			head = head[:len(head)-2]
		}
		groups = append(groups, head)
		for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
			groups[i], groups[j] = groups[j], groups[i]
		}
		s = strings.Join(groups, ",")
	}

	if neg {
		return "-" + s
	}
	return s
}
