package auth

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/crypto/bcrypt"
)

// Replay login field widths.
const (
	MaxUserLen     = 6
	MaxPasswordLen = 10
)

var (
	// ErrInvalidCredentials is matched by every failed Verify.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnknownUser is returned for a user with no configured hash.
	ErrUnknownUser = fmt.Errorf("%w: unknown user", ErrInvalidCredentials)

	// ErrWrongPassword is returned when the password does not match.
	ErrWrongPassword = fmt.Errorf("%w: wrong password", ErrInvalidCredentials)
)

// Verifier checks user/password pairs against bcrypt hashes.
type Verifier struct {
	hashes map[string][]byte
}

// NewVerifier builds a Verifier from user to bcrypt hash entries.
func NewVerifier(users map[string]string) (*Verifier, error) {
	v := &Verifier{hashes: make(map[string][]byte, len(users))}
	for user, hash := range users {
		if user == "" || len(user) > MaxUserLen {
			return nil, fmt.Errorf("user %q: must be 1 to %d characters", user, MaxUserLen)
		}
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("user %q: bad bcrypt hash: %w", user, err)
		}
		v.hashes[user] = []byte(hash)
	}
	return v, nil
}

// Verify returns nil when password matches the hash stored for user.
func (v *Verifier) Verify(user, password string) error {
	hash, ok := v.hashes[user]
	if !ok {
		return ErrUnknownUser
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// Users returns the configured user names, sorted.
func (v *Verifier) Users() []string {
	out := make([]string, 0, len(v.hashes))
	for u := range v.hashes {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// HashPassword returns the bcrypt hash of password. A cost of zero uses
// bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if len(password) > MaxPasswordLen {
		return "", fmt.Errorf("password longer than %d characters", MaxPasswordLen)
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
