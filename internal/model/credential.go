package model

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/sina-mobarez/BankSys/internal/util/password"
)

var ErrEmptyCredential = errors.New("empty credential")

// Credential is the stored form of a user's password hash. It can be moved
// between the model and storage but never read: String redacts it and the
// hash is only handed to the database driver.
type Credential struct {
	hash string
}

func newCredential(h password.Hasher, plain string) (Credential, error) {
	hash, err := h.Hash(plain)
	if err != nil {
		return Credential{}, fmt.Errorf("hash password: %w", err)
	}
	return Credential{hash: hash}, nil
}

func (c Credential) IsZero() bool { return c.hash == "" }

func (c Credential) matches(candidate string) bool {
	return password.Verify(c.hash, candidate)
}

func (c Credential) String() string   { return "[REDACTED]" }
func (c Credential) GoString() string { return "model.Credential{[REDACTED]}" }

// Value implements driver.Valuer.
func (c Credential) Value() (driver.Value, error) {
	if c.hash == "" {
		return nil, ErrEmptyCredential
	}
	return c.hash, nil
}

// Scan implements sql.Scanner.
func (c *Credential) Scan(src any) error {
	switch v := src.(type) {
	case string:
		c.hash = v
	case []byte:
		c.hash = string(v)
	default:
		return fmt.Errorf("cannot scan %T into credential", src)
	}
	if c.hash == "" {
		return ErrEmptyCredential
	}
	return nil
}
