// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Iris Backend Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested account does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when an insert or update would violate the
// email uniqueness constraint.
var ErrEmailTaken = errors.New("email already registered")
