// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

// Package extension discovers, loads, and unloads extensions. It is the
// boundary between the text command surface ("load <path>",
// "unload <path>") and the ABI core: the loader produces the handshake
// record, invokes the extension entry point, and triggers unregistration
// before teardown.
package extension

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/oops"

	"github.com/modkit/modkit/internal/capability"
	luaext "github.com/modkit/modkit/internal/extension/lua"
	"github.com/modkit/modkit/internal/manifest"
	"github.com/modkit/modkit/pkg/sdk"
)

// HandshakeSource produces the load_info record handed to extension entry
// points. Satisfied by *host.Client.
type HandshakeSource interface {
	LoadInfo() *sdk.LoadInfo
}

// loaded is the bookkeeping for one live extension.
type loaded struct {
	dir      string
	manifest *manifest.Manifest
	ext      sdk.Extension
}

// Loader maps extension directories onto entry-point invocations.
type Loader struct {
	handshake HandshakeSource
	enforcer  *capability.Enforcer
	byDir     map[string]*loaded
	byName    map[string]*loaded
}

// NewLoader creates a loader that hands out handshakes from hs and gates
// scripted extensions through enforcer.
func NewLoader(hs HandshakeSource, enforcer *capability.Enforcer) *Loader {
	return &Loader{
		handshake: hs,
		enforcer:  enforcer,
		byDir:     make(map[string]*loaded),
		byName:    make(map[string]*loaded),
	}
}

// Load maps the extension at dir into the host: manifest read and
// validation, capability grants, entry-point handshake. An extension that
// refuses the handshake (version mismatch) is discarded cleanly.
func (l *Loader) Load(_ context.Context, dir string) error {
	dir = filepath.Clean(dir)
	if _, ok := l.byDir[dir]; ok {
		return oops.With("dir", dir).Errorf("extension already loaded: %s", dir)
	}

	manifestPath := filepath.Join(dir, manifest.Filename)
	data, err := os.ReadFile(filepath.Clean(manifestPath))
	if err != nil {
		return oops.With("dir", dir).Hint("missing extension.yaml").Wrap(err)
	}
	if err := manifest.ValidateSchema(data); err != nil {
		return oops.With("dir", dir).Hint("manifest failed schema validation").Wrap(err)
	}
	mf, err := manifest.Parse(data)
	if err != nil {
		return oops.With("dir", dir).Wrap(err)
	}
	if _, ok := l.byName[mf.Name]; ok {
		return oops.With("extension", mf.Name).Errorf("extension name already loaded: %s", mf.Name)
	}

	if err := l.enforcer.SetGrants(mf.Name, mf.Capabilities); err != nil {
		return oops.With("extension", mf.Name).Hint("invalid capability grants").Wrap(err)
	}

	var ext sdk.Extension
	switch mf.Type {
	case manifest.TypeLua:
		ext = luaext.NewExtension(mf, dir, l.enforcer)
	default:
		// Unknown types are rejected by Manifest.Validate; handle defensively.
		l.enforcer.RemoveGrants(mf.Name)
		return oops.With("extension", mf.Name).Errorf("unsupported extension type: %s", mf.Type)
	}

	if !ext.OnLoad(l.handshake.LoadInfo()) {
		l.enforcer.RemoveGrants(mf.Name)
		return oops.Code("VERSION_MISMATCH").
			With("extension", mf.Name).
			Errorf("extension refused to bind")
	}

	entry := &loaded{dir: dir, manifest: mf, ext: ext}
	l.byDir[dir] = entry
	l.byName[mf.Name] = entry

	slog.Info("extension loaded",
		"extension", mf.Name,
		"version", mf.Version,
		"type", mf.Type,
		"dir", dir)
	return nil
}

// Unload tears down the extension loaded from dir, triggering its
// unregistration before it is discarded.
func (l *Loader) Unload(_ context.Context, dir string) error {
	dir = filepath.Clean(dir)
	entry, ok := l.byDir[dir]
	if !ok {
		return oops.With("dir", dir).Errorf("no extension loaded from %s", dir)
	}

	entry.ext.OnUnload()
	l.enforcer.RemoveGrants(entry.manifest.Name)
	delete(l.byDir, dir)
	delete(l.byName, entry.manifest.Name)

	slog.Info("extension unloaded", "extension", entry.manifest.Name, "dir", dir)
	return nil
}

// LoadAll loads every extension directory under root. Individual failures
// are logged and skipped so one broken extension does not keep the host
// from starting.
func (l *Loader) LoadAll(ctx context.Context, root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // no extensions directory
		}
		return oops.With("root", root).Wrap(err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if err := l.Load(ctx, dir); err != nil {
			slog.Warn("skipping extension", "dir", dir, "error", err)
		}
	}
	return nil
}

// UnloadAll tears down every loaded extension, in name order for
// deterministic logs.
func (l *Loader) UnloadAll(ctx context.Context) {
	for _, name := range l.Loaded() {
		entry := l.byName[name]
		if err := l.Unload(ctx, entry.dir); err != nil {
			slog.Error("failed to unload extension", "extension", name, "error", err)
		}
	}
}

// Loaded returns the names of all loaded extensions, sorted.
func (l *Loader) Loaded() []string {
	names := make([]string, 0, len(l.byName))
	for name := range l.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
