// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Iris Backend Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role tags. The set is open-ended; these are the two the authorization
// rule knows about.
const (
	RoleRegular = "regular"
	RoleAdmin   = "admin"
)

// Password policy constraints.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 14
)

// passwordSpecialChars is the fixed special-character set the policy accepts.
const passwordSpecialChars = "@$!%*?&"

// emailRegex is a pragmatic address check: one @, no whitespace, a dot in
// the domain part. Deliverability is not our problem.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var passwordDigitRegex = regexp.MustCompile(`\d`)

// Account represents one registered principal.
type Account struct {
	ID                   ulid.ULID
	Email                string
	PasswordHash         string
	Role                 string
	HasSubscription      bool
	BankAccountID        *string
	OAuthProvider        *string
	RequirePasswordReset bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewAccount creates a validated Account with a fresh ID. The password hash
// must already be computed; plaintext never reaches this constructor.
func NewAccount(email, passwordHash, role string) (*Account, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("ACCOUNT_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	if role == "" {
		role = RoleRegular
	}

	now := time.Now().UTC()
	return &Account{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateEmail checks that the address is plausibly an email address.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("ACCOUNT_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return oops.Code("ACCOUNT_INVALID_EMAIL").
			With("email", email).
			Errorf("invalid email address")
	}
	return nil
}

// ValidatePassword checks a plaintext password against the registration
// policy: MinPasswordLength to MaxPasswordLength characters, at least one
// digit, and at least one character from the @$!%*?& set.
func ValidatePassword(password string) error {
	// Length bounds count characters, not bytes, so multibyte passwords
	// are measured the same way the user typed them.
	length := utf8.RuneCountInString(password)
	if length < MinPasswordLength {
		return oops.Code("ACCOUNT_INVALID_PASSWORD").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if length > MaxPasswordLength {
		return oops.Code("ACCOUNT_INVALID_PASSWORD").
			With("max", MaxPasswordLength).
			Errorf("password must be at most %d characters", MaxPasswordLength)
	}
	if !passwordDigitRegex.MatchString(password) {
		return oops.Code("ACCOUNT_INVALID_PASSWORD").
			Errorf("password must include at least one digit")
	}
	if !strings.ContainsAny(password, passwordSpecialChars) {
		return oops.Code("ACCOUNT_INVALID_PASSWORD").
			Errorf("password must include at least one special character %s", passwordSpecialChars)
	}
	return nil
}

// AccountChanges describes a partial update. Nil fields are left untouched.
type AccountChanges struct {
	Email                *string
	Password             *string
	Role                 *string
	HasSubscription      *bool
	BankAccountID        *string
	OAuthProvider        *string
	RequirePasswordReset *bool
}

// Empty reports whether the change set would modify nothing.
func (c AccountChanges) Empty() bool {
	return c.Email == nil && c.Password == nil && c.Role == nil &&
		c.HasSubscription == nil && c.BankAccountID == nil &&
		c.OAuthProvider == nil && c.RequirePasswordReset == nil
}

// AccountRepository is the account directory contract. Implementations must
// enforce email uniqueness atomically: of two concurrent writes with the
// same email, exactly one succeeds and the other fails with ErrEmailTaken.
type AccountRepository interface {
	// Create stores a new account. Fails with ErrEmailTaken if the email
	// is already registered.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByEmail retrieves an account by its stored email. Returns
	// ErrNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Update persists all mutable fields of an existing account. Fails
	// with ErrNotFound if the account no longer exists and ErrEmailTaken
	// if the email would collide with another account.
	Update(ctx context.Context, account *Account) error

	// Delete removes an account. Returns ErrNotFound if absent. No
	// tombstone is kept.
	Delete(ctx context.Context, id ulid.ULID) error
}
