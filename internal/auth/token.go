// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Iris Backend Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// ErrInvalidToken is the single outcome for every token validation failure.
// Malformed, forged, expired, and wrong-algorithm tokens are deliberately
// indistinguishable to callers.
var ErrInvalidToken = oops.Code("AUTH_INVALID_TOKEN").Errorf("invalid token")

// Clock returns the current time. Injectable so tests can simulate expiry
// without sleeping.
type Clock func() time.Time

// TokenConfig holds the signing parameters for a TokenIssuer.
type TokenConfig struct {
	Secret    []byte
	Algorithm string // HS256, HS384, or HS512
	TTL       time.Duration
}

// TokenIssuer issues and validates signed, time-bounded session tokens.
// Validation is stateless and side-effect-free.
type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
	alg    string
	ttl    time.Duration
	clock  Clock
}

// NewTokenIssuer creates a TokenIssuer. A nil clock defaults to time.Now.
func NewTokenIssuer(cfg TokenConfig, clock Clock) (*TokenIssuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("token secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("token TTL must be positive")
	}

	var method jwt.SigningMethod
	switch cfg.Algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, oops.Code("AUTH_CONFIG_INVALID").
			With("algorithm", cfg.Algorithm).
			Errorf("unsupported signing algorithm")
	}

	if clock == nil {
		clock = time.Now
	}

	return &TokenIssuer{
		secret: cfg.Secret,
		method: method,
		alg:    cfg.Algorithm,
		ttl:    cfg.TTL,
		clock:  clock,
	}, nil
}

// Issue builds a claim set from the caller-supplied extra claims plus the
// authoritative sub, iat, and exp fields, and returns the compact signed
// token. Extra claims cannot overwrite sub, iat, or exp: those are written
// last. Timestamps are whole seconds since epoch.
func (i *TokenIssuer) Issue(subject string, extra map[string]any) (string, error) {
	if subject == "" {
		return "", oops.Code("AUTH_CONFIG_INVALID").Errorf("token subject is required")
	}

	now := i.clock()
	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["sub"] = subject
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(i.ttl).Unix()

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return "", oops.Code("AUTH_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Validate verifies the signature and algorithm, checks expiry against the
// injected clock (now >= exp is invalid), and returns the decoded claims.
// Every failure collapses to ErrInvalidToken.
func (i *TokenIssuer) Validate(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(_ *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{i.alg}),
		jwt.WithTimeFunc(i.clock),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
