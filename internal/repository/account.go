package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sina-mobarez/BankSys/internal/model"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByNumber(ctx context.Context, number string) (*model.Account, error)
	Update(ctx context.Context, account *model.Account) error
	// WithinTx runs fn against a repository bound to a single transaction.
	// Accounts read inside fn stay locked until it returns. Calling
	// WithinTx on a repository that is already transactional reuses it.
	WithinTx(ctx context.Context, fn func(repo AccountRepository) error) error
}

type accountRepository struct {
	db *Database
	q  querier
	tx bool
}

func NewAccountRepository(db *Database) AccountRepository {
	return &accountRepository{db: db, q: db.db}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `INSERT INTO accounts (account_number, balance, created_date)
              VALUES ($1, $2, $3)`

	_, err := r.q.ExecContext(ctx, query,
		account.AccountNumber(),
		account.Balance(),
		account.CreatedDate(),
	)
	if isUniqueViolation(err) {
		return ErrAccountExists
	}
	if isOutOfRange(err) {
		return ErrAmountOutOfRange
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) GetByNumber(ctx context.Context, number string) (*model.Account, error) {
	query := `SELECT account_number, balance, created_date
              FROM accounts WHERE account_number = $1`
	if r.tx {
		query += ` FOR UPDATE`
	}

	var (
		accountNumber string
		balance       decimal.Decimal
		createdDate   time.Time
	)
	err := r.q.QueryRowContext(ctx, query, number).Scan(&accountNumber, &balance, &createdDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return model.NewAccount(accountNumber, balance, createdDate)
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	query := `UPDATE accounts SET balance = $1 WHERE account_number = $2`
	res, err := r.q.ExecContext(ctx, query, account.Balance(), account.AccountNumber())
	if isOutOfRange(err) {
		return ErrAmountOutOfRange
	}
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) WithinTx(ctx context.Context, fn func(repo AccountRepository) error) error {
	if r.tx {
		return fn(r)
	}
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		return fn(&accountRepository{db: r.db, q: tx, tx: true})
	})
}
