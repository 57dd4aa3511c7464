// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifestDir(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extension.yaml"), []byte(content), 0o600))
	return dir
}

func TestValidateCommand_Valid(t *testing.T) {
	dir := writeManifestDir(t, `name: chatguard
version: 1.0.0
type: lua
lua:
  entry: main.lua
`)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"validate", dir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "ok (chatguard 1.0.0)")
}

func TestValidateCommand_Invalid(t *testing.T) {
	good := writeManifestDir(t, `name: good
version: 1.0.0
type: lua
lua:
  entry: main.lua
`)
	bad := writeManifestDir(t, "name: 42\n")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"validate", good, bad})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 manifest(s) failed validation")
}

func TestValidateCommand_MissingManifest(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"validate", t.TempDir()})

	require.Error(t, cmd.Execute())
}

func TestValidateCommand_RequiresArgs(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"validate"})

	require.Error(t, cmd.Execute())
}
