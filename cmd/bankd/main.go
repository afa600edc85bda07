package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/bank-ledger/internal/commands"
	"github.com/example/bank-ledger/internal/config"
	"github.com/example/bank-ledger/internal/ledger"
	"github.com/example/bank-ledger/pkg/audit"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bankd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return fmt.Errorf("parse connection string: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.PoolSize)
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	store := ledger.NewPoolStore(pool)
	defer store.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	limits := ledger.Limits{
		Deposit:    ledger.Bounds{Min: cfg.MinDepositAmount, Max: cfg.MaxDepositAmount},
		Withdrawal: ledger.Bounds{Min: cfg.MinWithdrawalAmount, Max: cfg.MaxWithdrawalAmount},
		Balance:    ledger.Bounds{Min: cfg.MinAccountBalance, Max: cfg.MaxAccountBalance},
	}

	commandFile := cfg.CommandFile
	if len(os.Args) > 1 {
		commandFile = os.Args[1]
	}
	in, err := os.Open(commandFile)
	if err != nil {
		return fmt.Errorf("open command file: %w", err)
	}
	defer in.Close()

	engine := ledger.NewEngine(store, limits, cfg.QueryTimeout, log)
	journal := audit.NewJournal()
	runner := commands.NewRunner(engine, limits, journal, log, os.Stdout)

	runErr := runner.Run(ctx, in)

	entries := journal.Entries()
	log.Info("run finished",
		"commands", len(entries),
		"journal_intact", audit.Verify(entries))

	return runErr
}
