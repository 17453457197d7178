package luhn

import (
	"errors"
	"unicode"
)

var ErrNotDigits = errors.New("luhn: input must contain only digits")

// Validate reports whether number ends in a correct Luhn check digit.
func Validate(number string) bool {
	if len(number) < 2 || !AllDigits(number) {
		return false
	}
	return sum(number, false)%10 == 0
}

// CheckDigit returns the digit that makes payload+digit pass Validate.
func CheckDigit(payload string) (byte, error) {
	if payload == "" || !AllDigits(payload) {
		return 0, ErrNotDigits
	}
	s := sum(payload, true)
	return byte('0' + (10-s%10)%10), nil
}

// Append returns payload followed by its check digit.
func Append(payload string) (string, error) {
	c, err := CheckDigit(payload)
	if err != nil {
		return "", err
	}
	return payload + string(c), nil
}

// sum walks the digits right to left, doubling every second one. When
// pending is true the rightmost digit is doubled, as it will be once a
// check digit is appended.
func sum(number string, pending bool) int {
	total := 0
	double := pending
	for i := len(number) - 1; i >= 0; i-- {
		digit := int(number[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		total += digit
		double = !double
	}
	return total
}

// AllDigits reports whether s is non-empty and holds only ASCII digits.
func AllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
