// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package lua

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/modkit/modkit/internal/capability"
	"github.com/modkit/modkit/internal/manifest"
	"github.com/modkit/modkit/pkg/sdk"
)

// Compile-time interface check.
var _ sdk.Extension = (*Extension)(nil)

// Lua globals a script may define. The chat handlers receive the event
// fields and return an action string ("nothing", "cancel", "commit") plus
// an optional replacement string for the event's override slot:
//
//	function on_chat_send(message)
//	  return "commit", "goodbye"
//	end
//
//	function on_chat_log(message, sender, context)
//	  return "cancel"
//	end
//
//	function on_lifecycle(event, name)
//	end
const (
	fnChatSend  = "on_chat_send"
	fnChatLog   = "on_chat_log"
	fnLifecycle = "on_lifecycle"
)

// scriptPlugin is the sdk.Plugin shim registered with the host on behalf
// of a Lua script. Its query table answers "script_name" (*string).
type scriptPlugin struct {
	query sdk.QueryTable
}

func (p *scriptPlugin) Query(id string, out any) bool {
	return p.query.Query(id, out)
}

// boundListener remembers a registration so OnUnload can remove the exact
// function value it registered.
type boundListener struct {
	eventID string
	fn      any
}

// Extension adapts a sandboxed Lua script behind the in-process ABI: it
// performs the version handshake, registers a plugin shim, and binds the
// listeners the manifest declares, each gated by a capability grant.
type Extension struct {
	mf       *manifest.Manifest
	dir      string
	enforcer *capability.Enforcer

	state     *lua.LState
	host      sdk.Host
	plugin    *scriptPlugin
	listeners []boundListener
}

// NewExtension creates the adapter for a discovered Lua extension. The
// script is read and executed at OnLoad time, not here.
func NewExtension(mf *manifest.Manifest, dir string, enforcer *capability.Enforcer) *Extension {
	return &Extension{mf: mf, dir: dir, enforcer: enforcer}
}

// Name returns the extension's manifest name.
func (x *Extension) Name() string { return x.mf.Name }

// OnLoad implements sdk.Extension: version handshake, script execution,
// plugin registration, listener binding. Reports false when the handshake
// is refused or the script cannot be brought up; the loader then discards
// the extension.
func (x *Extension) OnLoad(info *sdk.LoadInfo) bool {
	host, ok := sdk.Bind(info)
	if !ok {
		slog.Warn("lua extension refused handshake",
			"extension", x.mf.Name,
			"host_version", info.Version)
		return false
	}
	x.host = host

	if err := x.startScript(); err != nil {
		slog.Error("lua extension failed to start",
			"extension", x.mf.Name,
			"error", err)
		return false
	}

	x.plugin = &scriptPlugin{query: sdk.QueryTable{
		"script_name": sdk.Answer(x.mf.Name),
	}}
	if !host.RegisterPlugin(x.plugin, x.mf.Name) {
		x.teardownState()
		return false
	}

	x.bindListeners()
	return true
}

// OnUnload implements sdk.Extension: listeners off, plugin out of the
// registry, state closed. Safe to call after a failed OnLoad.
func (x *Extension) OnUnload() {
	if x.host != nil {
		for _, l := range x.listeners {
			x.host.RemoveEventListener(l.eventID, l.fn)
		}
		if x.plugin != nil {
			x.host.UnregisterPlugin(x.plugin)
		}
	}
	x.listeners = nil
	x.plugin = nil
	x.teardownState()
}

// startScript creates the sandboxed state, installs the modkit host API,
// and runs the script's top level.
func (x *Extension) startScript() error {
	entryPath := filepath.Join(x.dir, x.mf.Lua.Entry)
	code, err := os.ReadFile(filepath.Clean(entryPath))
	if err != nil {
		return oops.In("lua").With("extension", x.mf.Name).With("path", entryPath).Hint("failed to read entry file").Wrap(err)
	}

	L, err := newState()
	if err != nil {
		return oops.In("lua").With("extension", x.mf.Name).Wrap(err)
	}

	x.installHostAPI(L)

	if err := L.DoString(string(code)); err != nil {
		L.Close()
		return oops.In("lua").With("extension", x.mf.Name).With("entry", x.mf.Lua.Entry).Hint("script error").Wrap(err)
	}

	x.state = L
	return nil
}

func (x *Extension) teardownState() {
	if x.state != nil {
		x.state.Close()
		x.state = nil
	}
}

// installHostAPI exposes the modkit table to the script:
//
//	modkit.log_chat(text) -- queue a chat log line (needs "chat.log")
//	modkit.version()      -- host version as "major.minor"
func (x *Extension) installHostAPI(L *lua.LState) {
	mod := L.NewTable()

	L.SetField(mod, "log_chat", L.NewFunction(func(ls *lua.LState) int {
		text := ls.CheckString(1)
		if !x.enforcer.Check(x.mf.Name, capability.ChatLogCapability) {
			slog.Warn("lua extension denied chat log",
				"extension", x.mf.Name,
				"capability", capability.ChatLogCapability)
			ls.Push(lua.LBool(false))
			return 1
		}
		ls.Push(lua.LBool(x.host.QueueChatLog(text)))
		return 1
	}))

	L.SetField(mod, "version", L.NewFunction(func(ls *lua.LState) int {
		v, _ := sdk.QueryAs[sdk.VersionInfo](x.host, "version")
		ls.Push(lua.LString(v.String()))
		return 1
	}))

	L.SetGlobal("modkit", mod)
}

// bindListeners registers a listener for every event the manifest
// declares, skipping events the extension holds no grant for. Skips are
// logged, not fatal: a partially granted extension still runs.
func (x *Extension) bindListeners() {
	for _, eventID := range x.mf.Events {
		if !x.enforcer.Check(x.mf.Name, capability.ListenCapability(eventID)) {
			slog.Warn("lua extension denied event listener",
				"extension", x.mf.Name,
				"event", eventID,
				"capability", capability.ListenCapability(eventID))
			continue
		}

		fn := x.listenerFor(eventID)
		if fn == nil {
			continue
		}
		if x.host.AddEventListener(eventID, fn) {
			x.listeners = append(x.listeners, boundListener{eventID: eventID, fn: fn})
		}
	}
}

// listenerFor builds the Go callback for one catalog event. Each closure
// is allocated per extension, so two scripts listening to the same event
// register distinct callback identities.
func (x *Extension) listenerFor(eventID string) any {
	switch eventID {
	case sdk.EventChatSend:
		return func(e *sdk.ChatSend) {
			action, override := x.callChatHandler(fnChatSend, e.Message, "", "")
			e.Action = action
			if override != nil {
				e.Override = override
			}
		}
	case sdk.EventChatLog:
		return func(e *sdk.ChatLog) {
			action, override := x.callChatHandler(fnChatLog, e.Message, e.SenderName, e.Context)
			e.Action = action
			if override != nil {
				e.DisplayText = override
			}
		}
	case sdk.EventPluginLoad:
		return func(e *sdk.PluginLoad) { x.callLifecycle(eventID, e.Name) }
	case sdk.EventPluginUnload:
		return func(e *sdk.PluginUnload) { x.callLifecycle(eventID, e.Name) }
	case sdk.EventModuleLoad:
		return func(*sdk.ModuleLoad) { x.callLifecycle(eventID, "") }
	case sdk.EventModuleUnload:
		return func(*sdk.ModuleUnload) { x.callLifecycle(eventID, "") }
	default:
		return nil
	}
}

// callChatHandler invokes a script chat handler and translates its
// (action, override) return values. A missing handler or a script error
// leaves the event untouched.
func (x *Extension) callChatHandler(name string, args ...string) (sdk.Action, *string) {
	handler := x.state.GetGlobal(name)
	if handler.Type() != lua.LTFunction {
		return sdk.ActionNothing, nil
	}

	lvs := make([]lua.LValue, len(args))
	for i, a := range args {
		lvs[i] = lua.LString(a)
	}

	if err := x.state.CallByParam(lua.P{
		Fn:      handler,
		NRet:    2,
		Protect: true,
	}, lvs...); err != nil {
		slog.Error("lua chat handler failed",
			"extension", x.mf.Name,
			"handler", name,
			"error", err)
		return sdk.ActionNothing, nil
	}

	overrideVal := x.state.Get(-1)
	actionVal := x.state.Get(-2)
	x.state.Pop(2)

	action := parseAction(actionVal)

	if s, ok := overrideVal.(lua.LString); ok {
		text := string(s)
		return action, &text
	}
	return action, nil
}

// callLifecycle invokes the optional on_lifecycle global.
func (x *Extension) callLifecycle(eventID, name string) {
	handler := x.state.GetGlobal(fnLifecycle)
	if handler.Type() != lua.LTFunction {
		return
	}
	if err := x.state.CallByParam(lua.P{
		Fn:      handler,
		NRet:    0,
		Protect: true,
	}, lua.LString(eventID), lua.LString(name)); err != nil {
		slog.Error("lua lifecycle handler failed",
			"extension", x.mf.Name,
			"event", eventID,
			"error", err)
	}
}

func parseAction(v lua.LValue) sdk.Action {
	s, ok := v.(lua.LString)
	if !ok {
		return sdk.ActionNothing
	}
	switch string(s) {
	case "cancel":
		return sdk.ActionCancel
	case "commit":
		return sdk.ActionCommit
	default:
		return sdk.ActionNothing
	}
}
