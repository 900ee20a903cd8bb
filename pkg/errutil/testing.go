// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package errutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode asserts that err carries the given code.
func AssertErrorCode(t *testing.T, err error, want string) {
	t.Helper()
	require.Error(t, err)
	got := Code(err)
	require.NotEmpty(t, got, "expected an error coded %q, got uncoded %T: %v", want, err, err)
	assert.Equal(t, want, got, "error: %v", err)
}

// AssertErrorContext asserts that err carries the given context key/value.
func AssertErrorContext(t *testing.T, err error, key string, value any) {
	t.Helper()
	require.Error(t, err)
	got, ok := ContextValue(err, key)
	require.True(t, ok, "error context has no key %q: %v", key, err)
	assert.Equal(t, value, got)
}
