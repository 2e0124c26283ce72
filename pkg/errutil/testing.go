// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Iris Backend Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireOops unwraps err as an oops error or fails the test.
func requireOops(t *testing.T, err error) oops.OopsError {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "error is not an oops error: %T", err)
	return oopsErr
}

// AssertErrorCode checks that err carries the expected oops error code.
func AssertErrorCode(t *testing.T, err error, want string) {
	t.Helper()
	assert.Equal(t, want, requireOops(t, err).Code(), "error code mismatch")
}

// AssertErrorContext checks that err carries the given key/value in its
// oops context.
func AssertErrorContext(t *testing.T, err error, key string, want any) {
	t.Helper()
	ctx := requireOops(t, err).Context()
	require.Contains(t, ctx, key)
	assert.Equal(t, want, ctx[key])
}
