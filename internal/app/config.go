package app

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/sina-mobarez/BankSys/internal/util/password"
)

// Config is filled from flags first. Environment variables, when set, win.
type Config struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	DatabaseURI     string        `env:"DATABASE_URI"`
	LogLevel        string        `env:"LOG_LEVEL"`
	MigrationsPath  string        `env:"MIGRATIONS_PATH"`
	PasswordHash    string        `env:"PASSWORD_HASH"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

func NewConfig(args []string) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("banksys", flag.ContinueOnError)
	fs.StringVar(&cfg.RunAddress, "a", "localhost:8080", "Server address (env: RUN_ADDRESS)")
	fs.StringVar(&cfg.DatabaseURI, "d", "", "Database URI, empty for in-memory storage (env: DATABASE_URI)")
	fs.StringVar(&cfg.LogLevel, "l", "info", "Log level (debug|info|warn|error) (env: LOG_LEVEL)")
	fs.StringVar(&cfg.MigrationsPath, "migrations", "./migrations", "Path to migrations folder (env: MIGRATIONS_PATH)")
	fs.StringVar(&cfg.PasswordHash, "password-hash", password.SchemeSHA256, "Password hash scheme (sha256|bcrypt) (env: PASSWORD_HASH)")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", 5*time.Second, "Graceful shutdown timeout (env: SHUTDOWN_TIMEOUT)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.RunAddress == "" {
		return errors.New("run address is required (use -a flag or RUN_ADDRESS env)")
	}
	if _, err := password.New(c.PasswordHash); err != nil {
		return err
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// Hasher returns the password hasher selected by PasswordHash.
func (c *Config) Hasher() (password.Hasher, error) {
	return password.New(c.PasswordHash)
}

func (c *Config) MaskDBPassword() string {
	u, err := url.Parse(c.DatabaseURI)
	if err != nil {
		return c.DatabaseURI
	}

	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
