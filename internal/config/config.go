package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration. Amounts are in minor
// currency units; the defaults are the reference limits.
type Config struct {
	MinDepositAmount    int64 `env:"MIN_DEPOSIT_AMOUNT" envDefault:"500"`
	MaxDepositAmount    int64 `env:"MAX_DEPOSIT_AMOUNT" envDefault:"50000"`
	MinWithdrawalAmount int64 `env:"MIN_WITHDRAWAL_AMOUNT" envDefault:"1000"`
	MaxWithdrawalAmount int64 `env:"MAX_WITHDRAWAL_AMOUNT" envDefault:"25000"`
	MinAccountBalance   int64 `env:"MIN_ACCOUNT_BALANCE" envDefault:"0"`
	MaxAccountBalance   int64 `env:"MAX_ACCOUNT_BALANCE" envDefault:"100000"`

	PGUser     string `env:"PG_USER" envDefault:"postgres"`
	PGPassword string `env:"PG_PASSWORD"`
	PGHost     string `env:"PG_HOST" envDefault:"localhost"`
	PGPort     int    `env:"PG_PORT" envDefault:"5432"`
	PGDatabase string `env:"PG_DATABASE" envDefault:"bank_accounts"`

	PoolSize       int           `env:"POOL_SIZE" envDefault:"5"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"60s"`
	QueryTimeout   time.Duration `env:"QUERY_TIMEOUT" envDefault:"5s"`

	CommandFile string `env:"COMMAND_FILE" envDefault:"commands.txt"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configured ranges and resources make sense.
func (c *Config) Validate() error {
	var problems []string

	if c.MinDepositAmount > c.MaxDepositAmount {
		problems = append(problems, "MIN_DEPOSIT_AMOUNT exceeds MAX_DEPOSIT_AMOUNT")
	}
	if c.MinWithdrawalAmount > c.MaxWithdrawalAmount {
		problems = append(problems, "MIN_WITHDRAWAL_AMOUNT exceeds MAX_WITHDRAWAL_AMOUNT")
	}
	if c.MinAccountBalance > c.MaxAccountBalance {
		problems = append(problems, "MIN_ACCOUNT_BALANCE exceeds MAX_ACCOUNT_BALANCE")
	}
	if c.MinDepositAmount <= 0 {
		problems = append(problems, "MIN_DEPOSIT_AMOUNT must be positive")
	}
	if c.MinWithdrawalAmount <= 0 {
		problems = append(problems, "MIN_WITHDRAWAL_AMOUNT must be positive")
	}
	if c.PoolSize <= 0 {
		problems = append(problems, "POOL_SIZE must be positive")
	}
	if c.ConnectTimeout <= 0 {
		problems = append(problems, "CONNECT_TIMEOUT must be positive")
	}
	if c.PGDatabase == "" {
		problems = append(problems, "PG_DATABASE must not be empty")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, ", "))
	}
	return nil
}

// ConnString renders the Postgres connection URL.
func (c *Config) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.PGHost, strconv.Itoa(c.PGPort)),
		Path:   c.PGDatabase,
	}
	if c.PGPassword != "" {
		u.User = url.UserPassword(c.PGUser, c.PGPassword)
	} else {
		u.User = url.User(c.PGUser)
	}
	return u.String()
}
