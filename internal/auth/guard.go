// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Iris Backend Contributors

package auth

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ErrUnauthenticated is the single outcome for every authentication
// failure: invalid token, missing subject, unknown account. Sub-failures
// are not distinguishable to callers.
var ErrUnauthenticated = oops.Code("AUTH_UNAUTHENTICATED").Errorf("could not validate credentials")

// ErrForbidden is returned when an authenticated actor is not permitted to
// act on the target account.
var ErrForbidden = oops.Code("AUTH_FORBIDDEN").Errorf("operation not permitted")

// Guard turns bearer tokens into authenticated accounts and decides whether
// an account may act on a target account. It carries no state across calls
// beyond what the token encodes.
type Guard struct {
	tokens   *TokenIssuer
	accounts AccountRepository
}

// NewGuard creates a Guard.
func NewGuard(tokens *TokenIssuer, accounts AccountRepository) (*Guard, error) {
	if tokens == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("token issuer is required")
	}
	if accounts == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("account repository is required")
	}
	return &Guard{tokens: tokens, accounts: accounts}, nil
}

// Authenticate validates the token, extracts the subject claim, and
// resolves it to an account. Any sub-failure produces ErrUnauthenticated.
// A token for a since-deleted account fails here on the identity lookup,
// even while its signature and expiry are still valid.
func (g *Guard) Authenticate(ctx context.Context, token string) (*Account, error) {
	claims, err := g.tokens.Validate(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, ErrUnauthenticated
	}

	id, err := ulid.Parse(subject)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	account, err := g.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	return account, nil
}

// AuthorizeSelfOrAdmin allows the operation iff the actor is the target
// account or holds the admin role. This single rule governs both update
// and delete; no finer-grained permission model exists.
func (g *Guard) AuthorizeSelfOrAdmin(actor *Account, targetID ulid.ULID) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if actor.ID == targetID || actor.Role == RoleAdmin {
		return nil
	}
	return ErrForbidden
}
