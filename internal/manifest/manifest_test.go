// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package manifest_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit/modkit/internal/manifest"
)

const validManifest = `name: chatguard
version: 1.0.0
type: lua
events:
  - evn_chat_send
  - evn_chat_log
capabilities:
  - events.listen.*
  - chat.log
lua:
  entry: main.lua
`

func TestParse_Valid(t *testing.T) {
	m, err := manifest.Parse([]byte(validManifest))
	require.NoError(t, err)

	assert.Equal(t, "chatguard", m.Name)
	assert.Equal(t, "1.0.0", m.Version)
	assert.Equal(t, manifest.TypeLua, m.Type)
	assert.Equal(t, []string{"evn_chat_send", "evn_chat_log"}, m.Events)
	assert.Equal(t, []string{"events.listen.*", "chat.log"}, m.Capabilities)
	require.NotNil(t, m.Lua)
	assert.Equal(t, "main.lua", m.Lua.Entry)
}

func TestParse_Empty(t *testing.T) {
	_, err := manifest.Parse(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := manifest.Parse([]byte("name: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML")
}

func TestValidate_Names(t *testing.T) {
	valid := []string{"a", "chatguard", "chat-guard", "ext2", "a1-b2"}
	for _, name := range valid {
		m := &manifest.Manifest{
			Name:    name,
			Version: "1.0.0",
			Type:    manifest.TypeLua,
			Lua:     &manifest.LuaConfig{Entry: "main.lua"},
		}
		assert.NoError(t, m.Validate(), "name %q should be valid", name)
	}

	invalid := []string{"", "Chatguard", "2ext", "-ext", "ext-", "ext_name", "ext.name"}
	for _, name := range invalid {
		m := &manifest.Manifest{
			Name:    name,
			Version: "1.0.0",
			Type:    manifest.TypeLua,
			Lua:     &manifest.LuaConfig{Entry: "main.lua"},
		}
		assert.Error(t, m.Validate(), "name %q should be rejected", name)
	}
}

func TestValidate_Version(t *testing.T) {
	m := &manifest.Manifest{
		Name: "ext",
		Type: manifest.TypeLua,
		Lua:  &manifest.LuaConfig{Entry: "main.lua"},
	}

	require.Error(t, m.Validate(), "version is required")

	m.Version = "not-a-version"
	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "semantic version")

	m.Version = "2.1.0-rc.1"
	assert.NoError(t, m.Validate())
}

func TestValidate_EventsCheckedAgainstCatalog(t *testing.T) {
	m := &manifest.Manifest{
		Name:    "ext",
		Version: "1.0.0",
		Type:    manifest.TypeLua,
		Events:  []string{"evn_chat_send", "evn_made_up"},
		Lua:     &manifest.LuaConfig{Entry: "main.lua"},
	}

	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evn_made_up")
}

func TestValidate_LuaConfig(t *testing.T) {
	m := &manifest.Manifest{Name: "ext", Version: "1.0.0", Type: manifest.TypeLua}
	require.Error(t, m.Validate(), "lua block is required for lua extensions")

	m.Lua = &manifest.LuaConfig{}
	require.Error(t, m.Validate(), "lua.entry is required")

	m.Type = "wasm"
	m.Lua = &manifest.LuaConfig{Entry: "main.lua"}
	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type must be 'lua'")
}

func TestGenerateSchema(t *testing.T) {
	data, err := manifest.GenerateSchema()
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, manifest.SchemaID())
	assert.Contains(t, s, "ModKit Extension Manifest")
	assert.Contains(t, s, `"name"`)
	assert.Contains(t, s, `"capabilities"`)
}

func TestValidateSchema(t *testing.T) {
	t.Cleanup(manifest.ResetSchemaCache)

	require.NoError(t, manifest.ValidateSchema([]byte(validManifest)))

	err := manifest.ValidateSchema([]byte("name: 42\nversion: 1.0.0\ntype: lua\n"))
	require.Error(t, err, "wrong field type fails schema validation")

	require.Error(t, manifest.ValidateSchema(nil))
}

func TestFormatSchemaError(t *testing.T) {
	assert.Empty(t, manifest.FormatSchemaError(nil))

	err := manifest.ValidateSchema([]byte("name: 42\nversion: 1.0.0\ntype: lua\n"))
	require.Error(t, err)
	msg := manifest.FormatSchemaError(err)
	assert.NotEmpty(t, msg)
	assert.NotContains(t, msg, "schema validation failed: ",
		"the validator's own output is surfaced, not the wrapping")

	assert.Equal(t, "boom", manifest.FormatSchemaError(errors.New("boom")))
}
