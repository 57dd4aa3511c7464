// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package sdk

// Plugin is the capability set an extension registers with the host. It
// has no fixed methods beyond the query primitive; optional functionality
// is discovered through Query. Instances must be comparable (in practice,
// pointers), since the registry tracks them by identity.
//
// The extension manages the instance's lifetime. Unregister it before
// discarding it; the host holds only a non-owning reference.
type Plugin interface {
	Querier
}

// Module is a sub-component owned by a registered plugin, registered
// separately for finer-grained lifecycle tracking. Same identity and
// ownership rules as [Plugin].
type Module interface {
	Querier
}

// Host is the registry interface an extension receives through the load
// handshake. It is the Go rendering of the host's client vtable: the
// method set is frozen within a major version.
//
// Every operation reports outcome as a bare success boolean; failure
// carries no structured reason in-band. The host logs diagnostics for
// failures on its side.
//
// Query ids answered by the host implementation are documented on the
// implementation; well-known ids include "version" (*VersionInfo).
type Host interface {
	Querier

	// RegisterPlugin registers instance under a display name. Fails on a
	// duplicate instance or a duplicate name (names are unique; the
	// first registration wins). On success the plugin-load lifecycle
	// event fires synchronously before RegisterPlugin returns.
	RegisterPlugin(instance Plugin, name string) bool

	// UnregisterPlugin removes a registered plugin. Fails when instance
	// is not registered or still owns registered modules; unregister the
	// modules first. The plugin-unload lifecycle event fires before
	// bookkeeping is removed. This notifies other plugins and modules so
	// they know not to use the instance anymore.
	UnregisterPlugin(instance Plugin) bool

	// RegisterModule registers instance under a currently-registered
	// parent plugin. Fails when parent is not registered or instance
	// already is.
	RegisterModule(parent Plugin, instance Module) bool

	// UnregisterModule removes a registered module.
	UnregisterModule(instance Module) bool

	// EnumeratePlugins snapshots the registered plugins in registration
	// order. Pass a nil out to receive the current count via n, allocate
	// exactly that many slots, and call again. The second call fails
	// when the provided capacity no longer matches the registry.
	EnumeratePlugins(out []Plugin, n *int) bool

	// EnumerateModules mirrors EnumeratePlugins for modules.
	EnumerateModules(out []Module, n *int) bool

	// AddEventListener registers fn for an event id. fn must have the
	// exact callback signature bound to the id (see [CallbackType]);
	// mismatches, unknown ids, and duplicate (id, callback) pairs fail.
	// Prefer [Listen] for compile-time signature checking.
	AddEventListener(eventID string, fn any) bool

	// RemoveEventListener removes the (eventID, fn) registration.
	// Removal is keyed by the pair: a callback registered against
	// several ids must be removed from each id separately.
	RemoveEventListener(eventID string, fn any) bool

	// QueueChatLog queues a text line for the ingame chat log. The line
	// is client-side only, it is displayed, not sent. Each queued line
	// goes through chat-log event dispatch before it is rendered.
	QueueChatLog(text string) bool
}

// Listen registers fn for the event type PT with the callback signature
// checked at compile time, the typed counterpart of
// [Host.AddEventListener]:
//
//	sdk.Listen(host, func(e *sdk.ChatSend) { ... })
func Listen[T any, PT interface {
	*T
	Payload
}](h Host, fn func(PT)) bool {
	if h == nil || fn == nil {
		return false
	}
	return h.AddEventListener(PT(new(T)).EventID(), fn)
}

// Unlisten removes a registration made with [Listen]. The fn value must
// be the same function that was registered.
func Unlisten[T any, PT interface {
	*T
	Payload
}](h Host, fn func(PT)) bool {
	if h == nil || fn == nil {
		return false
	}
	return h.RemoveEventListener(PT(new(T)).EventID(), fn)
}
