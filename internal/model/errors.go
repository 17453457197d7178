package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccount and ErrUser are the categories every account and user
	// validation error belongs to.
	ErrAccount = errors.New("account error")
	ErrUser    = errors.New("user error")

	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNegativeBalance    = errors.New("negative balance")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrInvalidDateOfBirth = errors.New("invalid date of birth")
	ErrEmptyAddress       = errors.New("address cannot be empty")

	ErrNilTarget = fmt.Errorf("%w: transfer target is nil", ErrAccount)
)

// InvalidAmountError is returned when a deposit, withdrawal or transfer
// amount is not positive.
type InvalidAmountError struct {
	Op     string
	Amount decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("%s amount must be positive. Amount: %s", e.Op, e.Amount)
}

func (e *InvalidAmountError) Unwrap() []error { return []error{ErrInvalidAmount, ErrAccount} }

// InsufficientFundsError is returned when a withdrawal or transfer exceeds
// the available balance.
type InsufficientFundsError struct {
	Balance decimal.Decimal
	Amount  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for withdrawal. Balance: %s, Attempted Withdrawal: %s", e.Balance, e.Amount)
}

func (e *InsufficientFundsError) Unwrap() []error { return []error{ErrInsufficientFunds, ErrAccount} }

// NegativeBalanceError is returned whenever a balance would be set below zero.
// Balance is the value before the attempted assignment, Amount the rejected one.
type NegativeBalanceError struct {
	Balance decimal.Decimal
	Amount  decimal.Decimal
}

func (e *NegativeBalanceError) Error() string {
	return fmt.Sprintf("operation would result in negative balance. Balance: %s, Amount: %s", e.Balance, e.Amount)
}

func (e *NegativeBalanceError) Unwrap() []error { return []error{ErrNegativeBalance, ErrAccount} }

type InvalidPhoneError struct {
	Phone string
}

func (e *InvalidPhoneError) Error() string {
	return fmt.Sprintf("phone number must be 10 digits long. Phone: %q", e.Phone)
}

func (e *InvalidPhoneError) Unwrap() []error { return []error{ErrInvalidPhone, ErrUser} }

type InvalidDateOfBirthError struct {
	Value  string
	Reason string
}

func (e *InvalidDateOfBirthError) Error() string {
	return fmt.Sprintf("invalid date of birth %q: %s", e.Value, e.Reason)
}

func (e *InvalidDateOfBirthError) Unwrap() []error { return []error{ErrInvalidDateOfBirth, ErrUser} }

type EmptyAddressError struct{}

func (e *EmptyAddressError) Error() string { return ErrEmptyAddress.Error() }

func (e *EmptyAddressError) Unwrap() []error { return []error{ErrEmptyAddress, ErrUser} }
