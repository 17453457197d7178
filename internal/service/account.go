package service

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sina-mobarez/BankSys/internal/model"
	"github.com/sina-mobarez/BankSys/internal/repository"
	"github.com/sina-mobarez/BankSys/internal/util/luhn"
)

var (
	ErrSameAccount       = errors.New("source and target account are the same")
	ErrInvalidCheckDigit = errors.New("account number has an invalid check digit")
)

const (
	accountNumberPayload  = 15
	accountNumberAttempts = 3
)

type AccountService struct {
	repo      repository.AccountRepository
	logger    *zap.Logger
	now       func() time.Time
	newNumber func() (string, error)
}

func NewAccountService(repo repository.AccountRepository, logger *zap.Logger) *AccountService {
	return &AccountService{
		repo:      repo,
		logger:    logger,
		now:       time.Now,
		newNumber: NewAccountNumber,
	}
}

// NewAccountNumber returns a random 16-digit account number whose last digit
// is a Luhn check digit.
func NewAccountNumber() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate account number: %w", err)
	}
	n := binary.BigEndian.Uint64(id[:8]) % 1_000_000_000_000_000
	return luhn.Append(fmt.Sprintf("%0*d", accountNumberPayload, n))
}

// Open creates an account. An empty number is replaced by a generated one.
// A supplied number in the generated format must carry a valid check digit.
func (s *AccountService) Open(ctx context.Context, number string, initialBalance decimal.Decimal) (*model.Account, error) {
	if isGeneratedFormat(number) && !luhn.Validate(number) {
		s.logger.Warn("Account rejected",
			zap.String("account_number", number),
			zap.Error(ErrInvalidCheckDigit))
		return nil, ErrInvalidCheckDigit
	}

	generated := number == ""
	attempts := 1
	if generated {
		attempts = accountNumberAttempts
	}

	var err error
	for i := 0; i < attempts; i++ {
		if generated {
			if number, err = s.newNumber(); err != nil {
				return nil, err
			}
		}

		var account *model.Account
		account, err = model.NewAccount(number, initialBalance, s.now())
		if err != nil {
			s.logger.Warn("Account rejected",
				zap.String("account_number", number),
				zap.Stringer("initial_balance", initialBalance),
				zap.Error(err))
			return nil, err
		}

		err = s.repo.Create(ctx, account)
		if err == nil {
			s.logger.Info("Account opened",
				zap.String("account_number", number),
				zap.Stringer("balance", account.Balance()))
			return account, nil
		}
		if !errors.Is(err, repository.ErrAccountExists) {
			s.logger.Error("Failed to store account",
				zap.String("account_number", number),
				zap.Error(err))
			return nil, err
		}
	}
	return nil, err
}

func isGeneratedFormat(number string) bool {
	return len(number) == accountNumberPayload+1 && luhn.AllDigits(number)
}

func (s *AccountService) Get(ctx context.Context, number string) (*model.Account, error) {
	return s.repo.GetByNumber(ctx, number)
}

// Deposit credits amount to the account under a row lock.
func (s *AccountService) Deposit(ctx context.Context, number string, amount decimal.Decimal) (*model.Account, error) {
	return s.apply(ctx, "deposit", number, amount, func(a *model.Account) error {
		return a.Deposit(amount)
	})
}

// Withdraw debits amount from the account under a row lock.
func (s *AccountService) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (*model.Account, error) {
	return s.apply(ctx, "withdraw", number, amount, func(a *model.Account) error {
		return a.Withdraw(amount)
	})
}

// apply loads the account under a row lock, runs op on it and saves it,
// all in one storage transaction.
func (s *AccountService) apply(ctx context.Context, op, number string, amount decimal.Decimal, fn func(*model.Account) error) (*model.Account, error) {
	var account *model.Account
	err := s.repo.WithinTx(ctx, func(tx repository.AccountRepository) error {
		a, err := tx.GetByNumber(ctx, number)
		if err != nil {
			return err
		}
		if err := fn(a); err != nil {
			return err
		}
		if err := tx.Update(ctx, a); err != nil {
			return err
		}
		account = a
		return nil
	})
	if err != nil {
		s.logFailure(op, err, zap.String("account_number", number), zap.Stringer("amount", amount))
		return nil, err
	}

	s.logger.Info("Account "+op,
		zap.String("account_number", number),
		zap.Stringer("amount", amount),
		zap.Stringer("balance", account.Balance()))
	return account, nil
}

// Transfer moves amount between two accounts in a single storage
// transaction; either both balances change or neither does. Rows are
// locked in account-number order so opposing transfers cannot deadlock.
func (s *AccountService) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (*model.Account, *model.Account, error) {
	if from == to {
		return nil, nil, ErrSameAccount
	}

	var source, target *model.Account
	err := s.repo.WithinTx(ctx, func(tx repository.AccountRepository) error {
		first, second := from, to
		if second < first {
			first, second = second, first
		}
		locked := make(map[string]*model.Account, 2)
		for _, number := range []string{first, second} {
			a, err := tx.GetByNumber(ctx, number)
			if err != nil {
				return fmt.Errorf("%s: %w", number, err)
			}
			locked[number] = a
		}

		src, dst := locked[from], locked[to]
		if err := src.Transfer(amount, dst); err != nil {
			return err
		}
		if err := tx.Update(ctx, src); err != nil {
			return err
		}
		if err := tx.Update(ctx, dst); err != nil {
			return err
		}
		source, target = src, dst
		return nil
	})
	if err != nil {
		s.logFailure("transfer", err,
			zap.String("from", from),
			zap.String("to", to),
			zap.Stringer("amount", amount))
		return nil, nil, err
	}

	s.logger.Info("Account transfer",
		zap.String("from", from),
		zap.String("to", to),
		zap.Stringer("amount", amount))
	return source, target, nil
}

func (s *AccountService) logFailure(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	if errors.Is(err, model.ErrAccount) || errors.Is(err, repository.ErrAccountNotFound) {
		s.logger.Warn("Account operation rejected", fields...)
		return
	}
	s.logger.Error("Account operation failed", fields...)
}
