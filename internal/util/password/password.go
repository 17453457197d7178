package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	SchemeSHA256 = "sha256"
	SchemeBcrypt = "bcrypt"

	bcryptMaxLen = 72
)

var ErrTooLong = errors.New("password is longer than 72 bytes")

// Hasher turns a plaintext password into a storable one-way hash.
type Hasher interface {
	Hash(password string) (string, error)
	Scheme() string
}

// SHA256 produces the deterministic hex-encoded SHA-256 digest of a password.
type SHA256 struct{}

func (SHA256) Hash(password string) (string, error) {
	return sha256Hex(password), nil
}

func (SHA256) Scheme() string { return SchemeSHA256 }

// Bcrypt produces salted bcrypt hashes. A zero Cost means bcrypt.DefaultCost.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	if len(password) > bcryptMaxLen {
		return "", ErrTooLong
	}
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

func (Bcrypt) Scheme() string { return SchemeBcrypt }

// New returns the hasher for scheme.
func New(scheme string) (Hasher, error) {
	switch strings.ToLower(scheme) {
	case "", SchemeSHA256:
		return SHA256{}, nil
	case SchemeBcrypt:
		return Bcrypt{}, nil
	default:
		return nil, fmt.Errorf("unknown password hash scheme %q", scheme)
	}
}

// Verify reports whether candidate matches hash. The scheme is detected from
// the hash itself, so hashes written under a previous configuration still
// verify. Comparison is constant-time for both schemes.
func Verify(hash, candidate string) bool {
	if hash == "" {
		return false
	}
	if isBcrypt(hash) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(hash), []byte(sha256Hex(candidate))) == 1
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2")
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
