package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// Account holds a non-negative balance. Every mutation goes through
// setBalance, so the balance can never be observed below zero.
//
// Account is not safe for concurrent use; the service layer serialises
// access through storage transactions.
type Account struct {
	accountNumber string
	balance       decimal.Decimal
	createdDate   time.Time
}

// NewAccount opens an account. A zero createdDate means today.
func NewAccount(accountNumber string, initialBalance decimal.Decimal, createdDate time.Time) (*Account, error) {
	if createdDate.IsZero() {
		createdDate = time.Now()
	}
	a := &Account{
		accountNumber: accountNumber,
		createdDate:   truncateToDate(createdDate),
	}
	if err := a.setBalance(initialBalance); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Account) AccountNumber() string    { return a.accountNumber }
func (a *Account) Balance() decimal.Decimal { return a.balance }
func (a *Account) CreatedDate() time.Time   { return a.createdDate }

func (a *Account) setBalance(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &NegativeBalanceError{Balance: a.balance, Amount: amount}
	}
	a.balance = amount
	return nil
}

// Deposit adds a positive amount to the balance.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &InvalidAmountError{Op: "deposit", Amount: amount}
	}
	return a.setBalance(a.balance.Add(amount))
}

// Withdraw removes a positive amount no greater than the balance.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &InvalidAmountError{Op: "withdrawal", Amount: amount}
	}
	if amount.GreaterThan(a.balance) {
		return &InsufficientFundsError{Balance: a.balance, Amount: amount}
	}
	return a.setBalance(a.balance.Sub(amount))
}

// Transfer moves amount from a to target. It is atomic: if crediting the
// target fails, the source is restored, so a failed transfer leaves both
// accounts untouched. Transferring to the same account is a no-op once the
// checks pass. A nil target fails with ErrNilTarget.
func (a *Account) Transfer(amount decimal.Decimal, target *Account) error {
	if target == nil {
		return ErrNilTarget
	}
	if !amount.IsPositive() {
		return &InvalidAmountError{Op: "transfer", Amount: amount}
	}
	if amount.GreaterThan(a.balance) {
		return &InsufficientFundsError{Balance: a.balance, Amount: amount}
	}
	if target == a {
		return nil
	}

	prev := a.balance
	if err := a.setBalance(prev.Sub(amount)); err != nil {
		return err
	}
	if err := target.setBalance(target.balance.Add(amount)); err != nil {
		a.balance = prev
		return err
	}
	return nil
}

func (a *Account) String() string {
	return fmt.Sprintf("Account(account_number=%s, balance=%s, created_date=%s)",
		a.accountNumber, a.balance, a.createdDate.Format(DateLayout))
}

// truncateToDate returns the calendar date of t (in t's location) as UTC
// midnight.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
