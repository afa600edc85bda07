package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/example/bank-ledger/internal/ledger"
	"github.com/example/bank-ledger/pkg/audit"
)

// Ledger is the engine surface the runner drives.
type Ledger interface {
	CreateAccount(ctx context.Context, holder string) (int64, error)
	SingleAccountTransaction(ctx context.Context, accountID, amount int64, kind ledger.OperationKind) (*ledger.TxnResult, error)
	Transfer(ctx context.Context, fromID, toID, amount int64) (*ledger.TransferResult, error)
	InitSchema(ctx context.Context) error
}

// Runner executes a newline-delimited command stream against the
// engine, echoing every line and its outcome. Faults get one retry
// through the engine's retrier; rejections render straight into the
// message catalogue.
type Runner struct {
	ledger   Ledger
	messages messages
	retrier  ledger.Retrier
	journal  *audit.Journal
	log      *slog.Logger
	out      io.Writer
}

// NewRunner wires a runner over the engine. The journal may be nil when
// no audit trail is wanted.
func NewRunner(eng Ledger, limits ledger.Limits, journal *audit.Journal, log *slog.Logger, out io.Writer) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		ledger:   eng,
		messages: messages{limits: limits},
		retrier:  ledger.Retrier{Log: log},
		journal:  journal,
		log:      log,
		out:      out,
	}
}

// Run processes the stream until EOF or context cancellation.
func (r *Runner) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		fmt.Fprintf(r.out, "INPUT: %s\n", line)

		outcome := r.runLine(ctx, line)
		fmt.Fprintf(r.out, "OUTPUT: %s\n\n", outcome)

		if r.journal != nil {
			r.journal.Append(line, outcome)
		}
	}
	return scanner.Err()
}

func (r *Runner) runLine(ctx context.Context, line string) string {
	fields := ParseLine(line)
	if fields == nil {
		return msgInvalidInput
	}

	verb, args := fields[0], fields[1:]
	log := r.log.With("cid", uuid.NewString(), "command", verb)

	switch verb {
	case "INIT_DB":
		if err := r.ledger.InitSchema(ctx); err != nil {
			log.Error("schema initialisation failed", "error", err)
			return msgDatabaseFail
		}
		return msgDatabaseReady

	case "CREATE_ACCOUNT":
		if len(args) != 1 {
			return msgInvalidInput
		}
		return r.createAccount(ctx, log, args[0])

	case "DEPOSIT":
		return r.singleAccountTxn(ctx, log, args, ledger.Deposit)

	case "WITHDRAW":
		return r.singleAccountTxn(ctx, log, args, ledger.Withdraw)

	case "TRANSFER":
		return r.transfer(ctx, log, args)

	default:
		return msgUnsupported
	}
}

func (r *Runner) createAccount(ctx context.Context, log *slog.Logger, holder string) string {
	var id int64
	err := r.retrier.Do(ctx, "create_account", func(ctx context.Context) error {
		var err error
		id, err = r.ledger.CreateAccount(ctx, holder)
		return err
	})
	if err != nil {
		log.Error("command failed", "error", err)
		return fmt.Sprintf("Error: Could not create a new account with the name: %s", holder)
	}
	return r.messages.created(id)
}

func (r *Runner) singleAccountTxn(ctx context.Context, log *slog.Logger, args []string, kind ledger.OperationKind) string {
	if len(args) != 2 {
		return msgInvalidInput
	}
	accountID, amount, ok := parseAmountArgs(args[0], args[1])
	if !ok {
		return msgInvalidInput
	}

	var res *ledger.TxnResult
	err := r.retrier.Do(ctx, string(kind), func(ctx context.Context) error {
		var err error
		res, err = r.ledger.SingleAccountTransaction(ctx, accountID, amount, kind)
		return err
	})
	if err != nil {
		if ledger.IsRejection(err) {
			return r.messages.rejected(err)
		}
		log.Error("command failed", "error", err)
		return msgUnexpected
	}
	return r.messages.committed(res)
}

func (r *Runner) transfer(ctx context.Context, log *slog.Logger, args []string) string {
	if len(args) != 3 {
		return msgInvalidInput
	}
	fromID, err1 := strconv.ParseInt(args[0], 10, 64)
	toID, amount, ok := parseAmountArgs(args[1], args[2])
	if err1 != nil || !ok {
		return msgInvalidInput
	}

	var res *ledger.TransferResult
	err := r.retrier.Do(ctx, "transfer", func(ctx context.Context) error {
		var err error
		res, err = r.ledger.Transfer(ctx, fromID, toID, amount)
		return err
	})
	if err != nil {
		if ledger.IsRejection(err) {
			return r.messages.rejected(err)
		}
		log.Error("command failed", "error", err)
		return msgUnexpected
	}
	return r.messages.transferred(res)
}

func parseAmountArgs(account, amount string) (int64, int64, bool) {
	accountID, err := strconv.ParseInt(account, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	amt, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return accountID, amt, true
}
