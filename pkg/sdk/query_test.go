// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package sdk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit/modkit/pkg/sdk"
)

func newTestQuerier() sdk.QueryTable {
	return sdk.QueryTable{
		"greeting": sdk.Answer("hello"),
		"count":    sdk.AnswerFunc(func() int { return 42 }),
	}
}

func TestQueryTable_KnownID(t *testing.T) {
	q := newTestQuerier()

	var s string
	require.True(t, q.Query("greeting", &s))
	assert.Equal(t, "hello", s)

	var n int
	require.True(t, q.Query("count", &n))
	assert.Equal(t, 42, n)
}

func TestQueryTable_UnrecognizedIDLeavesSlotUntouched(t *testing.T) {
	q := newTestQuerier()

	s := "untouched"
	assert.False(t, q.Query("unrecognized_id", &s))
	assert.Equal(t, "untouched", s, "slot must not be written on failure")
}

func TestQueryTable_MismatchedSlotTypeLeavesSlotUntouched(t *testing.T) {
	q := newTestQuerier()

	// "greeting" expects *string; an *int slot must fail safely.
	n := 7
	assert.False(t, q.Query("greeting", &n))
	assert.Equal(t, 7, n)

	// Non-pointer slots fail too.
	assert.False(t, q.Query("greeting", "not a pointer"))
	assert.False(t, q.Query("greeting", nil))
}

func TestQueryAs(t *testing.T) {
	q := newTestQuerier()

	s, ok := sdk.QueryAs[string](q, "greeting")
	require.True(t, ok)
	assert.Equal(t, "hello", s)

	_, ok = sdk.QueryAs[int](q, "greeting")
	assert.False(t, ok, "type inferred at call site must match the id's slot type")

	_, ok = sdk.QueryAs[string](q, "unrecognized_id")
	assert.False(t, ok)

	_, ok = sdk.QueryAs[string](nil, "greeting")
	assert.False(t, ok, "nil querier must fail, not panic")
}
