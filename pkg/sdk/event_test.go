// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package sdk_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit/modkit/pkg/sdk"
)

func TestActionString(t *testing.T) {
	assert.Equal(t, "nothing", sdk.ActionNothing.String())
	assert.Equal(t, "cancel", sdk.ActionCancel.String())
	assert.Equal(t, "commit", sdk.ActionCommit.String())
	assert.Equal(t, "unknown", sdk.Action(99).String())
}

func TestCallbackType(t *testing.T) {
	ct, ok := sdk.CallbackType(sdk.EventChatSend)
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf((func(*sdk.ChatSend))(nil)), ct)

	_, ok = sdk.CallbackType("evn_nonexistent")
	assert.False(t, ok)
}

func TestEventIDsCoverCatalog(t *testing.T) {
	ids := sdk.EventIDs()
	require.Len(t, ids, 6)
	for _, id := range ids {
		_, ok := sdk.CallbackType(id)
		assert.True(t, ok, "id %q must be in the catalog", id)
	}
}

func TestChatSend_ConsumeOverride(t *testing.T) {
	e := &sdk.ChatSend{Message: "hello"}

	assert.False(t, e.ConsumeOverride(), "no pending override")
	assert.Equal(t, "hello", e.Message)

	replacement := "goodbye"
	e.Override = &replacement
	require.True(t, e.ConsumeOverride())
	assert.Equal(t, "goodbye", e.Message)
	assert.Nil(t, e.Override, "slot resets after consumption")

	assert.False(t, e.ConsumeOverride(), "consumption is one-shot")
}

func TestChatLog_ConsumeOverride(t *testing.T) {
	e := &sdk.ChatLog{Message: "raw", SenderName: "alice", Context: "say"}

	masked := "********"
	e.DisplayText = &masked
	require.True(t, e.ConsumeOverride())
	assert.Equal(t, "********", e.Message)
	assert.Nil(t, e.DisplayText)
}

func TestPayloadEventIDs(t *testing.T) {
	assert.Equal(t, sdk.EventChatSend, (&sdk.ChatSend{}).EventID())
	assert.Equal(t, sdk.EventChatLog, (&sdk.ChatLog{}).EventID())
	assert.Equal(t, sdk.EventPluginLoad, (&sdk.PluginLoad{}).EventID())
	assert.Equal(t, sdk.EventPluginUnload, (&sdk.PluginUnload{}).EventID())
	assert.Equal(t, sdk.EventModuleLoad, (&sdk.ModuleLoad{}).EventID())
	assert.Equal(t, sdk.EventModuleUnload, (&sdk.ModuleUnload{}).EventID())
}
