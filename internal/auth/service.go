// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Iris Backend Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ErrInvalidCredentials is the single outcome for a failed login.
// Email-not-found and wrong-password are indistinguishable to the caller.
var ErrInvalidCredentials = oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")

// dummyPasswordHash is used when no account matches the login email, so the
// request still pays for one argon2 verification. This is NOT a real
// credential; it will never match any password.
//
//nolint:gosec // G101: fake hash for timing consistency, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// AccountService provides registration, login, and authorization-gated
// profile CRUD. Every operation is request-scoped; collaborators are
// explicit, never ambient.
type AccountService struct {
	accounts AccountRepository
	hasher   PasswordHasher
	tokens   *TokenIssuer
	guard    *Guard
	logger   *slog.Logger
}

// NewAccountService creates an AccountService with the default logger.
func NewAccountService(accounts AccountRepository, hasher PasswordHasher, tokens *TokenIssuer, guard *Guard) (*AccountService, error) {
	return NewAccountServiceWithLogger(accounts, hasher, tokens, guard, slog.Default())
}

// NewAccountServiceWithLogger creates an AccountService with an explicit logger.
func NewAccountServiceWithLogger(accounts AccountRepository, hasher PasswordHasher, tokens *TokenIssuer, guard *Guard, logger *slog.Logger) (*AccountService, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("account repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("token issuer is required")
	}
	if guard == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("guard is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("logger is required")
	}
	return &AccountService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		guard:    guard,
		logger:   logger,
	}, nil
}

// Register validates the email and password policy, hashes the password,
// and stores a new account. A duplicate email fails with ErrEmailTaken.
func (s *AccountService) Register(ctx context.Context, email, password, role string) (*Account, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	account, err := NewAccount(email, hash, role)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account registered",
		"account_id", account.ID.String(),
		"role", account.Role,
	)
	return account, nil
}

// Login verifies credentials and issues an access token carrying the
// account's email and role as convenience claims, snapshotted at issuance.
// Unknown email and wrong password yield the same ErrInvalidCredentials;
// the unknown-email path still runs one verification against a dummy hash
// to keep response time consistent.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	account, lookupErr := s.accounts.GetByEmail(ctx, email)

	targetHash := dummyPasswordHash
	accountExists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get account by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = account.PasswordHash
		accountExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if !accountExists || verifyErr != nil || !valid {
		s.logger.WarnContext(ctx, "login failed", "reason", "invalid credentials")
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.ID.String(), map[string]any{
		"email": account.Email,
		"role":  account.Role,
	})
	if err != nil {
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	return token, nil
}

// Get retrieves an account by ID.
func (s *AccountService) Get(ctx context.Context, id ulid.ULID) (*Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// Update applies a partial update under the self-or-admin rule. The
// password is re-hashed only when a new one is supplied; changing the role
// additionally requires the actor to hold the admin role. Changing the
// email re-validates uniqueness through the repository; on collision the
// stored record is untouched.
func (s *AccountService) Update(ctx context.Context, actor *Account, targetID ulid.ULID, changes AccountChanges) (*Account, error) {
	if err := s.guard.AuthorizeSelfOrAdmin(actor, targetID); err != nil {
		return nil, err
	}

	if changes.Role != nil && actor.Role != RoleAdmin {
		return nil, oops.Code("ACCOUNT_ROLE_RESTRICTED").
			Errorf("changing roles requires the admin role")
	}

	account, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if changes.Email != nil {
		if err := ValidateEmail(*changes.Email); err != nil {
			return nil, err
		}
		account.Email = *changes.Email
	}
	if changes.Password != nil {
		if err := ValidatePassword(*changes.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*changes.Password)
		if err != nil {
			return nil, oops.Code("ACCOUNT_UPDATE_FAILED").
				With("operation", "hash password").
				Wrap(err)
		}
		account.PasswordHash = hash
	}
	if changes.Role != nil {
		if *changes.Role == "" {
			return nil, oops.Code("ACCOUNT_INVALID_ROLE").Errorf("role cannot be empty")
		}
		account.Role = *changes.Role
	}
	if changes.HasSubscription != nil {
		account.HasSubscription = *changes.HasSubscription
	}
	if changes.BankAccountID != nil {
		account.BankAccountID = changes.BankAccountID
	}
	if changes.OAuthProvider != nil {
		account.OAuthProvider = changes.OAuthProvider
	}
	if changes.RequirePasswordReset != nil {
		account.RequirePasswordReset = *changes.RequirePasswordReset
	}

	account.UpdatedAt = time.Now().UTC()

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account updated",
		"account_id", account.ID.String(),
		"actor_id", actor.ID.String(),
	)
	return account, nil
}

// Delete removes an account under the self-or-admin rule. The record is
// gone immediately; outstanding tokens for it fail authentication on their
// next use.
func (s *AccountService) Delete(ctx context.Context, actor *Account, targetID ulid.ULID) error {
	if err := s.guard.AuthorizeSelfOrAdmin(actor, targetID); err != nil {
		return err
	}

	if err := s.accounts.Delete(ctx, targetID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "account deleted",
		"account_id", targetID.String(),
		"actor_id", actor.ID.String(),
	)
	return nil
}
