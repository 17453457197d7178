package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sina-mobarez/BankSys/internal/util/password"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

const (
	phoneRule   = "len=10,number"
	addressRule = "required"
)

// User holds identity and contact details. The password can be set and
// checked but there is no way to read it back.
type User struct {
	username    string
	credential  Credential
	phoneNumber string
	address     string
	dateOfBirth time.Time

	hasher password.Hasher
}

type userOptions struct {
	hasher password.Hasher
	now    func() time.Time
}

type UserOption func(*userOptions)

// WithHasher sets the hasher used for new passwords. Defaults to SHA-256.
func WithHasher(h password.Hasher) UserOption {
	return func(o *userOptions) { o.hasher = h }
}

// WithClock overrides the clock the date of birth is checked against.
func WithClock(now func() time.Time) UserOption {
	return func(o *userOptions) { o.now = now }
}

func buildOptions(opts []UserOption) userOptions {
	o := userOptions{hasher: password.SHA256{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewUser validates every field and hashes the password. dateOfBirth must be
// YYYY-MM-DD and strictly before today.
func NewUser(username, plainPassword, phoneNumber, address, dateOfBirth string, opts ...UserOption) (*User, error) {
	o := buildOptions(opts)

	cred, err := newCredential(o.hasher, plainPassword)
	if err != nil {
		return nil, err
	}
	if err := validatePhoneNumber(phoneNumber); err != nil {
		return nil, err
	}
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	dob, err := parseDateOfBirth(dateOfBirth, o.now())
	if err != nil {
		return nil, err
	}

	return &User{
		username:    username,
		credential:  cred,
		phoneNumber: phoneNumber,
		address:     address,
		dateOfBirth: dob,
		hasher:      o.hasher,
	}, nil
}

// RestoreUser rebuilds a user read from storage. Phone and address are
// checked again; the date of birth was checked when the user was created.
func RestoreUser(username string, cred Credential, phoneNumber, address string, dateOfBirth time.Time, opts ...UserOption) (*User, error) {
	o := buildOptions(opts)
	if cred.IsZero() {
		return nil, ErrEmptyCredential
	}
	if err := validatePhoneNumber(phoneNumber); err != nil {
		return nil, err
	}
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	return &User{
		username:    username,
		credential:  cred,
		phoneNumber: phoneNumber,
		address:     address,
		dateOfBirth: truncateToDate(dateOfBirth),
		hasher:      o.hasher,
	}, nil
}

func (u *User) Username() string       { return u.username }
func (u *User) PhoneNumber() string    { return u.phoneNumber }
func (u *User) Address() string        { return u.address }
func (u *User) DateOfBirth() time.Time { return u.dateOfBirth }

// Credential returns the opaque stored form of the password for persistence.
func (u *User) Credential() Credential { return u.credential }

func (u *User) SetPassword(newPassword string) error {
	cred, err := newCredential(u.hasher, newPassword)
	if err != nil {
		return err
	}
	u.credential = cred
	return nil
}

func (u *User) SetPhoneNumber(phoneNumber string) error {
	if err := validatePhoneNumber(phoneNumber); err != nil {
		return err
	}
	u.phoneNumber = phoneNumber
	return nil
}

func (u *User) SetAddress(address string) error {
	if err := validateAddress(address); err != nil {
		return err
	}
	u.address = address
	return nil
}

// CheckPassword reports whether candidate is the password last set.
func (u *User) CheckPassword(candidate string) bool {
	return u.credential.matches(candidate)
}

func (u *User) String() string {
	return fmt.Sprintf("User(username=%s, phone_number=%s, address=%s, date_of_birth=%s)",
		u.username, u.phoneNumber, u.address, u.dateOfBirth.Format(DateLayout))
}

func validatePhoneNumber(phone string) error {
	if err := validate.Var(phone, phoneRule); err != nil {
		return &InvalidPhoneError{Phone: phone}
	}
	return nil
}

func validateAddress(address string) error {
	if err := validate.Var(address, addressRule); err != nil {
		return &EmptyAddressError{}
	}
	return nil
}

func parseDateOfBirth(value string, now time.Time) (time.Time, error) {
	dob, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &InvalidDateOfBirthError{Value: value, Reason: "use YYYY-MM-DD"}
	}
	if !dob.Before(truncateToDate(now)) {
		return time.Time{}, &InvalidDateOfBirthError{Value: value, Reason: "must be in the past"}
	}
	return dob, nil
}
