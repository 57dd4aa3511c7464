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

// The Host method set and the event catalog are frozen within a major
// version. These tests pin them: a failure here means an ABI-breaking
// edit that requires a major version bump, not a test update.

func TestHostMethodSetPinned(t *testing.T) {
	want := []string{
		"AddEventListener",
		"EnumerateModules",
		"EnumeratePlugins",
		"Query",
		"QueueChatLog",
		"RegisterModule",
		"RegisterPlugin",
		"RemoveEventListener",
		"UnregisterModule",
		"UnregisterPlugin",
	}

	typ := reflect.TypeOf((*sdk.Host)(nil)).Elem()
	require.Equal(t, len(want), typ.NumMethod())
	for i, name := range want {
		assert.Equal(t, name, typ.Method(i).Name)
	}
}

func TestHostMethodSignaturesPinned(t *testing.T) {
	typ := reflect.TypeOf((*sdk.Host)(nil)).Elem()
	boolOut := reflect.TypeOf(true)

	for i := 0; i < typ.NumMethod(); i++ {
		m := typ.Method(i)
		require.Equal(t, 1, m.Type.NumOut(), "%s must report a bare boolean", m.Name)
		assert.Equal(t, boolOut, m.Type.Out(0), "%s must report a bare boolean", m.Name)
	}
}

func TestEventCatalogPinned(t *testing.T) {
	want := map[string]reflect.Type{
		"evn_chat_send":     reflect.TypeOf((func(*sdk.ChatSend))(nil)),
		"evn_chat_log":      reflect.TypeOf((func(*sdk.ChatLog))(nil)),
		"evn_plugin_load":   reflect.TypeOf((func(*sdk.PluginLoad))(nil)),
		"evn_plugin_unload": reflect.TypeOf((func(*sdk.PluginUnload))(nil)),
		"evn_module_load":   reflect.TypeOf((func(*sdk.ModuleLoad))(nil)),
		"evn_module_unload": reflect.TypeOf((func(*sdk.ModuleUnload))(nil)),
	}

	ids := sdk.EventIDs()
	require.Len(t, ids, len(want))
	for id, sig := range want {
		got, ok := sdk.CallbackType(id)
		require.True(t, ok, "id %q missing from catalog", id)
		assert.Equal(t, sig, got, "signature changed for %q", id)
	}
}

func TestVersionMajorPinned(t *testing.T) {
	assert.Equal(t, 1, sdk.Version.Major,
		"bumping the major version invalidates every compiled extension; update the pinned surface tests with it")
}
