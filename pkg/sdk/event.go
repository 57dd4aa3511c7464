// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package sdk

import "reflect"

// Action controls how dispatch proceeds after a listener returns.
type Action uint32

const (
	// ActionNothing continues dispatch to the next listener.
	ActionNothing Action = iota

	// ActionCancel stops dispatch immediately and suppresses the side
	// effect the event represents (the message never reaches the game).
	ActionCancel

	// ActionCommit stops dispatch immediately and lets the side effect
	// proceed, skipping the remaining listeners.
	ActionCommit
)

func (a Action) String() string {
	switch a {
	case ActionNothing:
		return "nothing"
	case ActionCancel:
		return "cancel"
	case ActionCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// Event ids in the fixed catalog. Each id is bound to exactly one payload
// layout and one callback signature; see [CallbackType].
const (
	EventChatSend     = "evn_chat_send"
	EventChatLog      = "evn_chat_log"
	EventPluginLoad   = "evn_plugin_load"
	EventPluginUnload = "evn_plugin_unload"
	EventModuleLoad   = "evn_module_load"
	EventModuleUnload = "evn_module_unload"
)

// Payload is implemented by every event payload in the catalog. Payloads
// are mutable records passed by reference to each listener in a dispatch
// chain.
type Payload interface {
	// EventID returns the catalog id the payload is bound to.
	EventID() string

	// CurrentAction reports the action set by the most recent listener.
	CurrentAction() Action
}

// Overridable is implemented by payloads that carry an override slot.
// The dispatcher calls ConsumeOverride exactly once when dispatch
// concludes without cancellation.
type Overridable interface {
	Payload

	// ConsumeOverride folds a pending override into the payload's
	// original field and resets the slot to nil, signalling that the
	// override has been applied and must not be reused. Reports whether
	// an override was pending.
	ConsumeOverride() bool
}

// ChatSend fires when the player sends a message into the chat, including
// normal text and commands. Cancelable.
type ChatSend struct {
	Action Action

	// Message is the text the player sent. After dispatch concludes it
	// holds the final text, override applied.
	Message string

	// Override is the writable output slot for replacing Message. A
	// listener stores a replacement and sets Action to ActionCommit (or
	// leaves ActionNothing to let a later listener override further).
	// The pointer is valid only for the duration of the dispatch call;
	// the dispatcher resets it to nil once the override is applied.
	Override *string
}

func (*ChatSend) EventID() string { return EventChatSend }

func (e *ChatSend) CurrentAction() Action { return e.Action }

// ConsumeOverride applies a pending Message override. See [Overridable].
func (e *ChatSend) ConsumeOverride() bool {
	if e.Override == nil {
		return false
	}
	e.Message = *e.Override
	e.Override = nil
	return true
}

// ChatLog fires when a line is about to be written to the client-side chat
// log. Cancelable.
type ChatLog struct {
	Action Action

	// Message is the text to display. It starts as the message that was
	// sent to chat; after dispatch concludes it holds the final display
	// text, override applied.
	Message string

	// SenderName is the name of the sender.
	SenderName string

	// Context describes where the message came from.
	Context string

	// DisplayText is the writable output slot for replacing the
	// displayed text. Same lifetime and consumption rules as
	// [ChatSend.Override].
	DisplayText *string
}

func (*ChatLog) EventID() string { return EventChatLog }

func (e *ChatLog) CurrentAction() Action { return e.Action }

// ConsumeOverride applies a pending DisplayText override. See [Overridable].
func (e *ChatLog) ConsumeOverride() bool {
	if e.DisplayText == nil {
		return false
	}
	e.Message = *e.DisplayText
	e.DisplayText = nil
	return true
}

// PluginLoad fires synchronously when a plugin registers, before
// RegisterPlugin returns. Lifecycle notification; cancellation has no
// effect on the registration.
type PluginLoad struct {
	Action Action

	// Name is the display name the plugin registered under.
	Name string

	// Plugin is the registered instance. Non-owning reference.
	Plugin Plugin
}

func (*PluginLoad) EventID() string { return EventPluginLoad }

func (e *PluginLoad) CurrentAction() Action { return e.Action }

// PluginUnload fires synchronously before a plugin's bookkeeping is
// removed, so listeners may still safely use the instance during the
// callback. After UnregisterPlugin returns the instance must not be used.
type PluginUnload struct {
	Action Action

	// Name is the display name the plugin was registered under.
	Name string

	// Plugin is the instance being unregistered. Valid only during the
	// callback.
	Plugin Plugin
}

func (*PluginUnload) EventID() string { return EventPluginUnload }

func (e *PluginUnload) CurrentAction() Action { return e.Action }

// ModuleLoad fires synchronously when a module registers under its owning
// plugin.
type ModuleLoad struct {
	Action Action

	// Module is the registered instance. Non-owning reference.
	Module Module

	// Owner is the parent plugin the module registered under.
	Owner Plugin
}

func (*ModuleLoad) EventID() string { return EventModuleLoad }

func (e *ModuleLoad) CurrentAction() Action { return e.Action }

// ModuleUnload fires synchronously before a module's bookkeeping is
// removed. Same instance validity rules as [PluginUnload].
type ModuleUnload struct {
	Action Action

	// Module is the instance being unregistered. Valid only during the
	// callback.
	Module Module

	// Owner is the parent plugin the module was registered under.
	Owner Plugin
}

func (*ModuleUnload) EventID() string { return EventModuleUnload }

func (e *ModuleUnload) CurrentAction() Action { return e.Action }

// catalog binds each event id to its required listener signature.
var catalog = map[string]reflect.Type{
	EventChatSend:     reflect.TypeOf((func(*ChatSend))(nil)),
	EventChatLog:      reflect.TypeOf((func(*ChatLog))(nil)),
	EventPluginLoad:   reflect.TypeOf((func(*PluginLoad))(nil)),
	EventPluginUnload: reflect.TypeOf((func(*PluginUnload))(nil)),
	EventModuleLoad:   reflect.TypeOf((func(*ModuleLoad))(nil)),
	EventModuleUnload: reflect.TypeOf((func(*ModuleUnload))(nil)),
}

// CallbackType returns the listener signature bound to an event id, and
// whether the id is part of the catalog. The event bus uses this to reject
// mismatched callbacks at registration time.
func CallbackType(eventID string) (reflect.Type, bool) {
	t, ok := catalog[eventID]
	return t, ok
}

// EventIDs returns the ids in the fixed catalog, in stable order.
func EventIDs() []string {
	return []string{
		EventChatSend,
		EventChatLog,
		EventPluginLoad,
		EventPluginUnload,
		EventModuleLoad,
		EventModuleUnload,
	}
}
