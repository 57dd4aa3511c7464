// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

// Package registry tracks registered plugin and module handles, enforces
// parent/child ownership between modules and their owning plugin, and
// emits lifecycle events through the event bus.
package registry

import (
	"log/slog"

	"github.com/modkit/modkit/internal/eventbus"
	"github.com/modkit/modkit/pkg/sdk"
)

// Notifier delivers lifecycle events to listeners. Satisfied by
// *eventbus.Bus.
type Notifier interface {
	Dispatch(p sdk.Payload) (eventbus.Outcome, error)
}

// pluginEntry is the bookkeeping for one registered plugin. The registry
// holds a non-owning reference; the extension keeps ownership of the
// instance.
type pluginEntry struct {
	instance sdk.Plugin
	name     string
	modules  int // currently registered modules owned by this plugin
}

// moduleEntry is the bookkeeping for one registered module.
type moduleEntry struct {
	instance sdk.Module
	owner    *pluginEntry
}

// Registry is the host's table of registered plugins and modules.
//
// Name collision policy: display names are unique and the first
// registration wins; a second plugin registering an already-taken name is
// rejected. Ownership policy: a plugin cannot be unregistered while it
// still owns registered modules; the registry rejects the call rather
// than cascading, so teardown order is always modules first.
//
// Precondition: single-thread affinity, same as the event bus. All
// mutation and enumeration must come from the host's control loop.
type Registry struct {
	notifier Notifier

	plugins  []*pluginEntry // registration order
	byPlugin map[sdk.Plugin]*pluginEntry
	byName   map[string]*pluginEntry
	modules  []*moduleEntry // registration order
	byModule map[sdk.Module]*moduleEntry
}

// New creates a registry that emits lifecycle events through notifier.
func New(notifier Notifier) *Registry {
	return &Registry{
		notifier: notifier,
		byPlugin: make(map[sdk.Plugin]*pluginEntry),
		byName:   make(map[string]*pluginEntry),
		byModule: make(map[sdk.Module]*moduleEntry),
	}
}

// RegisterPlugin registers instance under a display name and fires the
// plugin-load lifecycle event synchronously before returning, so
// listeners observe every registered plugin exactly once, in registration
// order.
func (r *Registry) RegisterPlugin(instance sdk.Plugin, name string) error {
	if instance == nil {
		return errNilHandle("plugin")
	}
	if name == "" {
		return errInvalidName(name)
	}
	if _, ok := r.byPlugin[instance]; ok {
		return errDuplicatePlugin(name)
	}
	if _, ok := r.byName[name]; ok {
		return errDuplicateName(name)
	}

	entry := &pluginEntry{instance: instance, name: name}
	r.plugins = append(r.plugins, entry)
	r.byPlugin[instance] = entry
	r.byName[name] = entry

	recordRegistration("plugin", "register")
	slog.Info("plugin registered", "plugin", name, "plugins", len(r.plugins))

	// Lifecycle events are notifications; the dispatch outcome carries no
	// side effect to suppress.
	r.notify(&sdk.PluginLoad{Name: name, Plugin: instance})
	return nil
}

// UnregisterPlugin removes a registered plugin. The plugin-unload
// lifecycle event fires before bookkeeping is removed, so listeners may
// still safely use the instance during the callback; after the call
// returns the extension alone owns it.
func (r *Registry) UnregisterPlugin(instance sdk.Plugin) error {
	entry, ok := r.byPlugin[instance]
	if !ok {
		return errUnknownPlugin()
	}
	if entry.modules > 0 {
		return errOwnsModules(entry.name, entry.modules)
	}

	r.notify(&sdk.PluginUnload{Name: entry.name, Plugin: instance})

	delete(r.byPlugin, instance)
	delete(r.byName, entry.name)
	r.plugins = removeEntry(r.plugins, entry)

	recordRegistration("plugin", "unregister")
	slog.Info("plugin unregistered", "plugin", entry.name, "plugins", len(r.plugins))
	return nil
}

// RegisterModule registers instance under a currently-registered parent
// plugin and fires the module-load lifecycle event before returning.
func (r *Registry) RegisterModule(parent sdk.Plugin, instance sdk.Module) error {
	if instance == nil {
		return errNilHandle("module")
	}
	owner, ok := r.byPlugin[parent]
	if !ok {
		return errParentNotRegistered()
	}
	if _, ok := r.byModule[instance]; ok {
		return errDuplicateModule(owner.name)
	}

	entry := &moduleEntry{instance: instance, owner: owner}
	r.modules = append(r.modules, entry)
	r.byModule[instance] = entry
	owner.modules++

	recordRegistration("module", "register")
	slog.Info("module registered", "owner", owner.name, "modules", len(r.modules))

	r.notify(&sdk.ModuleLoad{Module: instance, Owner: parent})
	return nil
}

// UnregisterModule removes a registered module, firing the module-unload
// lifecycle event before bookkeeping is removed.
func (r *Registry) UnregisterModule(instance sdk.Module) error {
	entry, ok := r.byModule[instance]
	if !ok {
		return errUnknownModule()
	}

	r.notify(&sdk.ModuleUnload{Module: instance, Owner: entry.owner.instance})

	delete(r.byModule, instance)
	r.modules = removeEntry(r.modules, entry)
	entry.owner.modules--

	recordRegistration("module", "unregister")
	slog.Info("module unregistered", "owner", entry.owner.name, "modules", len(r.modules))
	return nil
}

// EnumeratePlugins implements the two-phase snapshot protocol. With a nil
// out it reports the current count via n. On the second call the provided
// capacity is re-validated against the registry: registration state can
// change between the two calls, and a stale capacity fails cleanly
// rather than truncating.
func (r *Registry) EnumeratePlugins(out []sdk.Plugin, n *int) error {
	if n == nil {
		return errNilCount()
	}
	if out == nil {
		*n = len(r.plugins)
		return nil
	}
	if len(out) != len(r.plugins) {
		return errCapacityMismatch("plugin", len(out), len(r.plugins))
	}
	for i, entry := range r.plugins {
		out[i] = entry.instance
	}
	*n = len(r.plugins)
	return nil
}

// EnumerateModules mirrors EnumeratePlugins for modules.
func (r *Registry) EnumerateModules(out []sdk.Module, n *int) error {
	if n == nil {
		return errNilCount()
	}
	if out == nil {
		*n = len(r.modules)
		return nil
	}
	if len(out) != len(r.modules) {
		return errCapacityMismatch("module", len(out), len(r.modules))
	}
	for i, entry := range r.modules {
		out[i] = entry.instance
	}
	*n = len(r.modules)
	return nil
}

// PluginName returns the display name a plugin registered under.
func (r *Registry) PluginName(instance sdk.Plugin) (string, bool) {
	entry, ok := r.byPlugin[instance]
	if !ok {
		return "", false
	}
	return entry.name, true
}

// PluginCount returns the number of registered plugins.
func (r *Registry) PluginCount() int { return len(r.plugins) }

// ModuleCount returns the number of registered modules.
func (r *Registry) ModuleCount() int { return len(r.modules) }

// notify dispatches a lifecycle event, logging dispatch failures instead
// of propagating them: a broken listener must not fail a registration
// that has already been recorded.
func (r *Registry) notify(p sdk.Payload) {
	if r.notifier == nil {
		return
	}
	if _, err := r.notifier.Dispatch(p); err != nil {
		slog.Error("lifecycle event dispatch failed",
			"event", p.EventID(),
			"error", err)
	}
}

func removeEntry[T comparable](entries []T, target T) []T {
	for i, e := range entries {
		if e == target {
			return append(entries[:i], entries[i+1:]...)
		}
	}
	return entries
}
