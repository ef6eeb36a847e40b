package orchestrators

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// ErrBadPassphrase is returned for a wrong club passphrase. The message is
// deliberately the same regardless of how the comparison failed.
var ErrBadPassphrase = errors.New("incorrect passphrase")

// LoginInput carries the submitted passphrase.
type LoginInput struct {
	Passphrase string
}

// LoginDeps holds the configured club credential. When PassphraseHash is
// set it wins; the plaintext Passphrase is a development fallback.
type LoginDeps struct {
	PassphraseHash string // bcrypt hash
	Passphrase     string // plaintext, development only
}

// ExecuteLogin checks the shared club passphrase. This is an access gate
// for the whole club, not a per-user account: there is no identity attached
// to a successful login.
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) error {
	if deps.PassphraseHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(deps.PassphraseHash), []byte(input.Passphrase)); err != nil {
			slog.Warn("login_failed")
			return ErrBadPassphrase
		}
		return nil
	}
	if deps.Passphrase == "" ||
		subtle.ConstantTimeCompare([]byte(deps.Passphrase), []byte(input.Passphrase)) != 1 {
		slog.Warn("login_failed")
		return ErrBadPassphrase
	}
	return nil
}
