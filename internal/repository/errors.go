package repository

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Balances are stored as NUMERIC(19,4).
const (
	AmountScale     = 4
	AmountIntDigits = 15
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountExists    = errors.New("account already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrAmountOutOfRange = fmt.Errorf("amount must have at most %d integer and %d fractional digits",
		AmountIntDigits, AmountScale)
)

var amountLimit = decimal.New(1, AmountIntDigits)

// CheckAmount reports whether d fits the balance column. The exponent is
// bounded first so the comparison never rescales by a large power of ten.
func CheckAmount(d decimal.Decimal) error {
	exp := d.Exponent()
	if exp < -AmountScale || exp > AmountIntDigits {
		return ErrAmountOutOfRange
	}
	if d.Abs().GreaterThanOrEqual(amountLimit) {
		return ErrAmountOutOfRange
	}
	return nil
}
