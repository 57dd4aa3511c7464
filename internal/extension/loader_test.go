// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package extension_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit/modkit/internal/capability"
	"github.com/modkit/modkit/internal/eventbus"
	"github.com/modkit/modkit/internal/extension"
	"github.com/modkit/modkit/internal/host"
	"github.com/modkit/modkit/internal/registry"
	"github.com/modkit/modkit/pkg/sdk"
)

// fixture wires a full host core plus a loader over a temp extensions
// root.
type fixture struct {
	root      string
	client    *host.Client
	loader    *extension.Loader
	delivered []string
	displayed []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{root: t.TempDir()}
	bus := eventbus.NewBus()
	reg := registry.New(bus)
	f.client = host.NewClient(reg, bus,
		host.WithGameSink(host.GameSinkFunc(func(m string) {
			f.delivered = append(f.delivered, m)
		})),
		host.WithLogSink(host.LogSinkFunc(func(line string) {
			f.displayed = append(f.displayed, line)
		})),
	)
	f.loader = extension.NewLoader(f.client, capability.NewEnforcer())
	return f
}

// writeExtension creates an extension directory under the fixture root.
func (f *fixture) writeExtension(t *testing.T, name, manifestYAML, script string) string {
	t.Helper()
	dir := filepath.Join(f.root, name)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extension.yaml"), []byte(manifestYAML), 0o600))
	if script != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.lua"), []byte(script), 0o600))
	}
	return dir
}

const guardManifest = `name: chatguard
version: 1.0.0
type: lua
events:
  - evn_chat_send
capabilities:
  - events.listen.*
lua:
  entry: main.lua
`

const guardScript = `
function on_chat_send(message)
  if string.sub(message, 1, 1) == "!" then
    return "cancel"
  end
  return "nothing"
end
`

func TestLoad_RegistersPluginAndListeners(t *testing.T) {
	f := newFixture(t)
	dir := f.writeExtension(t, "chatguard", guardManifest, guardScript)

	require.NoError(t, f.loader.Load(context.Background(), dir))
	assert.Equal(t, []string{"chatguard"}, f.loader.Loaded())

	n, ok := sdk.QueryAs[int](f.client, host.QueryPluginCount)
	require.True(t, ok)
	assert.Equal(t, 1, n, "the script registers a plugin shim")

	// The script's chat-send listener cancels "!"-prefixed messages.
	assert.False(t, f.client.SendChat("!hidden"))
	assert.True(t, f.client.SendChat("hello"))
	assert.Equal(t, []string{"hello"}, f.delivered)
}

func TestLoad_OverrideFromScript(t *testing.T) {
	f := newFixture(t)
	script := `
function on_chat_send(message)
  return "commit", "replaced"
end
`
	dir := f.writeExtension(t, "rewriter", `name: rewriter
version: 1.0.0
type: lua
events:
  - evn_chat_send
capabilities:
  - events.listen.evn_chat_send
lua:
  entry: main.lua
`, script)

	require.NoError(t, f.loader.Load(context.Background(), dir))
	require.True(t, f.client.SendChat("original"))
	assert.Equal(t, []string{"replaced"}, f.delivered)
}

func TestLoad_CapabilityDenied(t *testing.T) {
	f := newFixture(t)

	// Declares the event but holds no listen grant; the listener is
	// skipped, not fatal.
	dir := f.writeExtension(t, "ungranted", `name: ungranted
version: 1.0.0
type: lua
events:
  - evn_chat_send
capabilities:
  - chat.log
lua:
  entry: main.lua
`, guardScript)

	require.NoError(t, f.loader.Load(context.Background(), dir))
	assert.True(t, f.client.SendChat("!hidden"),
		"without the listen grant the cancel handler never ran")
}

func TestLoad_ChatLogCapability(t *testing.T) {
	f := newFixture(t)
	script := `
granted = modkit.log_chat("loaded")
`
	dir := f.writeExtension(t, "logger", `name: logger
version: 1.0.0
type: lua
capabilities:
  - chat.log
lua:
  entry: main.lua
`, script)

	require.NoError(t, f.loader.Load(context.Background(), dir))
	assert.Equal(t, 1, f.client.DrainChatLog())
	assert.Equal(t, []string{"loaded"}, f.displayed)
}

func TestLoad_ChatLogDeniedWithoutGrant(t *testing.T) {
	f := newFixture(t)
	dir := f.writeExtension(t, "sneaky", `name: sneaky
version: 1.0.0
type: lua
lua:
  entry: main.lua
`, `modkit.log_chat("should not appear")`)

	require.NoError(t, f.loader.Load(context.Background(), dir))
	assert.Equal(t, 0, f.client.DrainChatLog())
	assert.Empty(t, f.displayed)
}

func TestLoad_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// No manifest.
	empty := filepath.Join(f.root, "empty")
	require.NoError(t, os.MkdirAll(empty, 0o750))
	require.Error(t, f.loader.Load(ctx, empty))

	// Malformed manifest.
	bad := f.writeExtension(t, "bad", "name: 42\n", "")
	require.Error(t, f.loader.Load(ctx, bad))

	// Script error at load.
	broken := f.writeExtension(t, "broken", `name: broken
version: 1.0.0
type: lua
lua:
  entry: main.lua
`, `this is not lua`)
	require.Error(t, f.loader.Load(ctx, broken))

	assert.Empty(t, f.loader.Loaded())
	n, ok := sdk.QueryAs[int](f.client, host.QueryPluginCount)
	require.True(t, ok)
	assert.Equal(t, 0, n, "failed loads leave no plugin behind")
}

func TestLoad_DuplicateDirAndName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dir := f.writeExtension(t, "chatguard", guardManifest, guardScript)
	require.NoError(t, f.loader.Load(ctx, dir))

	require.Error(t, f.loader.Load(ctx, dir), "same directory cannot load twice")

	other := f.writeExtension(t, "chatguard-copy", guardManifest, guardScript)
	require.Error(t, f.loader.Load(ctx, other), "manifest names are unique across the loader")
}

func TestUnload_RemovesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dir := f.writeExtension(t, "chatguard", guardManifest, guardScript)
	require.NoError(t, f.loader.Load(ctx, dir))

	require.NoError(t, f.loader.Unload(ctx, dir))
	assert.Empty(t, f.loader.Loaded())

	n, ok := sdk.QueryAs[int](f.client, host.QueryPluginCount)
	require.True(t, ok)
	assert.Equal(t, 0, n)

	assert.True(t, f.client.SendChat("!hidden"),
		"the script's listeners are gone after unload")

	require.Error(t, f.loader.Unload(ctx, dir))
}

func TestLoadAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.writeExtension(t, "chatguard", guardManifest, guardScript)
	f.writeExtension(t, "broken", `name: broken
version: 1.0.0
type: lua
lua:
  entry: main.lua
`, `this is not lua`)
	// Stray files under the root are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "README"), []byte("x"), 0o600))

	require.NoError(t, f.loader.LoadAll(ctx, f.root),
		"one broken extension does not keep the host from starting")
	assert.Equal(t, []string{"chatguard"}, f.loader.Loaded())

	f.loader.UnloadAll(ctx)
	assert.Empty(t, f.loader.Loaded())
}

func TestLoadAll_MissingRoot(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.loader.LoadAll(context.Background(), filepath.Join(f.root, "absent")))
}
