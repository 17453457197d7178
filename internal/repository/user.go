package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sina-mobarez/BankSys/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	// WithinTx runs fn against a repository bound to a single transaction.
	// Users read inside fn stay locked until it returns.
	WithinTx(ctx context.Context, fn func(repo UserRepository) error) error
}

type userRepository struct {
	db   *Database
	q    querier
	tx   bool
	opts []model.UserOption
}

// NewUserRepository returns a Postgres-backed UserRepository. opts are
// applied to every user read back, e.g. the hasher for password changes.
func NewUserRepository(db *Database, opts ...model.UserOption) UserRepository {
	return &userRepository{db: db, q: db.db, opts: opts}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (username, password_hash, phone_number, address, date_of_birth)
              VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.ExecContext(ctx, query,
		user.Username(),
		user.Credential(),
		user.PhoneNumber(),
		user.Address(),
		user.DateOfBirth(),
	)
	if isUniqueViolation(err) {
		return ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT username, password_hash, phone_number, address, date_of_birth
              FROM users WHERE username = $1`
	if r.tx {
		query += ` FOR UPDATE`
	}

	var (
		name, phone, address string
		cred                 model.Credential
		dob                  time.Time
	)
	err := r.q.QueryRowContext(ctx, query, username).Scan(&name, &cred, &phone, &address, &dob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return model.RestoreUser(name, cred, phone, address, dob, r.opts...)
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `UPDATE users
              SET password_hash = $1, phone_number = $2, address = $3
              WHERE username = $4`
	res, err := r.q.ExecContext(ctx, query,
		user.Credential(),
		user.PhoneNumber(),
		user.Address(),
		user.Username(),
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) WithinTx(ctx context.Context, fn func(repo UserRepository) error) error {
	if r.tx {
		return fn(r)
	}
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		return fn(&userRepository{db: r.db, q: tx, tx: true, opts: r.opts})
	})
}
