// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Iris Backend Contributors

// Package auth provides the authentication and authorization core for the
// Iris account backend.
//
// # Domain Types
//
// Account is the single principal type. Accounts should be created with
// NewAccount, which validates the email and stamps creation metadata.
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated accounts.
//
// # Services
//
//   - Argon2idHasher - one-way password hashing and constant-time verification
//   - TokenIssuer - signed, time-bounded JWT issuance and validation
//   - Guard - resolves bearer tokens to accounts and enforces the
//     self-or-admin rule
//   - AccountService - registration, login, and authorization-gated
//     profile CRUD
//
// Services are created with New* constructors that validate dependencies.
package auth
