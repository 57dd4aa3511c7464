// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

// Package eventbus implements the typed event-dispatch protocol: listener
// registration per event id and synchronous, ordered dispatch with
// interception and override semantics.
package eventbus

import (
	"log/slog"
	"reflect"
	"time"
	"unsafe"

	"github.com/modkit/modkit/pkg/sdk"
)

// listener is one (event id, callback) registration.
type listener struct {
	key uintptr       // callback identity, see callbackKey
	fn  reflect.Value // invocable form of the callback
}

// Bus registers listeners per event id and dispatches payloads to them in
// registration order.
//
// Precondition: the Bus assumes single-thread affinity. All registration
// and dispatch calls must come from the host's control loop; callers that
// introduce concurrency must serialize externally. The bus does not solve
// this internally.
type Bus struct {
	listeners map[string][]listener
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[string][]listener),
	}
}

// callbackKey derives the identity of a callback from its funcval
// address, the in-process analogue of a raw function pointer handle.
// Top-level functions have a fixed identity; a closure keeps its identity
// for as long as the caller holds the registered function value, so
// removal requires passing that same value back.
func callbackKey(fn any) uintptr {
	type iface struct {
		typ, data unsafe.Pointer
	}
	return uintptr((*iface)(unsafe.Pointer(&fn)).data)
}

// AddListener registers fn for eventID. The callback must have the exact
// signature bound to the id in the catalog; unknown ids, signature
// mismatches, and duplicate (eventID, callback) pairs are rejected.
func (b *Bus) AddListener(eventID string, fn any) error {
	want, ok := sdk.CallbackType(eventID)
	if !ok {
		return errUnknownEventID(eventID)
	}
	if fn == nil {
		return errSignatureMismatch(eventID, want, nil)
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.Type() != want {
		return errSignatureMismatch(eventID, want, reflect.TypeOf(fn))
	}
	if v.IsNil() {
		return errSignatureMismatch(eventID, want, v.Type())
	}

	key := callbackKey(fn)
	for _, l := range b.listeners[eventID] {
		if l.key == key {
			return errDuplicateListener(eventID)
		}
	}

	b.listeners[eventID] = append(b.listeners[eventID], listener{key: key, fn: v})
	ListenersRegistered.WithLabelValues(eventID).Inc()
	return nil
}

// RemoveListener removes the (eventID, fn) registration. Removal is keyed
// by the pair; a callback registered against several ids must be removed
// from each id separately, and fn must be the same function value that
// was registered.
func (b *Bus) RemoveListener(eventID string, fn any) error {
	if _, ok := sdk.CallbackType(eventID); !ok {
		return errUnknownEventID(eventID)
	}
	if fn == nil || reflect.ValueOf(fn).Kind() != reflect.Func {
		return errUnknownListener(eventID)
	}

	key := callbackKey(fn)
	chain := b.listeners[eventID]
	for i, l := range chain {
		if l.key == key {
			b.listeners[eventID] = append(chain[:i], chain[i+1:]...)
			return nil
		}
	}
	return errUnknownListener(eventID)
}

// ListenerCount returns the number of listeners registered for eventID.
func (b *Bus) ListenerCount(eventID string) int {
	return len(b.listeners[eventID])
}

// Outcome describes how one dispatch concluded.
type Outcome struct {
	// Canceled is true when a listener set ActionCancel: the side effect
	// the event represents must not occur.
	Canceled bool

	// Committed is true when a listener set ActionCommit, skipping the
	// remaining listeners.
	Committed bool

	// Overridden is true when a pending override was applied and
	// consumed at conclusion.
	Overridden bool

	// Invoked is the number of listeners that ran.
	Invoked int
}

func (o Outcome) label() string {
	switch {
	case o.Canceled:
		return "canceled"
	case o.Committed:
		return "committed"
	default:
		return "completed"
	}
}

// Dispatch visits the listeners registered for the payload's event id in
// registration order, invoking each with a reference to the payload and
// inspecting the action it leaves behind: ActionNothing continues,
// ActionCancel stops with a canceled outcome, ActionCommit stops and
// proceeds. When dispatch concludes without cancellation the pending
// override, if any, is applied and consumed.
//
// Listeners may add or remove registrations during their callback; the
// changes take effect on the next dispatch, not the current chain.
func (b *Bus) Dispatch(p sdk.Payload) (Outcome, error) {
	eventID := p.EventID()
	if _, ok := sdk.CallbackType(eventID); !ok {
		return Outcome{}, errUnknownEventID(eventID)
	}

	dispatchID := newDispatchID()
	start := time.Now()

	// Snapshot so the chain is stable against mutation from callbacks.
	chain := make([]listener, len(b.listeners[eventID]))
	copy(chain, b.listeners[eventID])

	var out Outcome
	args := []reflect.Value{reflect.ValueOf(p)}

walk:
	for _, l := range chain {
		l.fn.Call(args)
		out.Invoked++

		switch p.CurrentAction() {
		case sdk.ActionCancel:
			out.Canceled = true
			break walk
		case sdk.ActionCommit:
			out.Committed = true
			break walk
		}
	}

	if !out.Canceled {
		if o, ok := p.(sdk.Overridable); ok {
			out.Overridden = o.ConsumeOverride()
			if out.Overridden {
				OverridesApplied.WithLabelValues(eventID).Inc()
			}
		}
	}

	Dispatches.WithLabelValues(eventID, out.label()).Inc()
	DispatchDuration.WithLabelValues(eventID).Observe(time.Since(start).Seconds())

	slog.Debug("event dispatched",
		"dispatch_id", dispatchID,
		"event", eventID,
		"outcome", out.label(),
		"listeners", out.Invoked,
		"overridden", out.Overridden,
	)

	return out, nil
}
