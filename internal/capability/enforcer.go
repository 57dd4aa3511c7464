// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

// Package capability enforces manifest-declared capability grants for
// scripted extensions.
//
// Grants are glob patterns over dot-separated capability names, matched
// with gobwas/glob using '.' as the segment separator:
//   - '*' matches a single segment (does not cross '.')
//   - '**' matches zero or more segments (crosses '.')
//
// The loader checks grants when a scripted extension binds a listener or
// reaches for a host facility:
//   - "events.listen.evn_chat_send" — bind a chat-send listener
//   - "events.listen.*"             — bind a listener for any event
//   - "chat.log"                    — queue chat log lines
package capability

import (
	"errors"
	"fmt"

	"github.com/gobwas/glob"
)

// ListenCapability returns the capability name guarding listener binding
// for an event id.
func ListenCapability(eventID string) string {
	return "events.listen." + eventID
}

// ChatLogCapability guards QueueChatLog access.
const ChatLogCapability = "chat.log"

// compiledGrant holds a pattern and its compiled glob.
type compiledGrant struct {
	pattern string
	glob    glob.Glob
}

// Enforcer checks extension capabilities at load and bind time. Grants
// come from the extension's manifest; deny is the default for anything
// not granted. Single-thread affinity, like the rest of the host core.
type Enforcer struct {
	grants map[string][]compiledGrant // extension name -> compiled grants
}

// NewEnforcer creates a capability enforcer.
func NewEnforcer() *Enforcer {
	return &Enforcer{
		grants: make(map[string][]compiledGrant),
	}
}

// SetGrants configures capabilities for an extension, replacing any
// previous grants. Returns an error if the extension name is empty or any
// pattern is invalid; on error no state changes are made.
func (e *Enforcer) SetGrants(extension string, capabilities []string) error {
	if extension == "" {
		return errors.New("extension name cannot be empty")
	}

	// Compile everything before mutating so a bad pattern leaves the
	// previous grants intact.
	compiled := make([]compiledGrant, len(capabilities))
	for i, pattern := range capabilities {
		if pattern == "" {
			return fmt.Errorf("capability %d: empty capability pattern", i)
		}
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return fmt.Errorf("capability %d (%q): %w", i, pattern, err)
		}
		compiled[i] = compiledGrant{pattern: pattern, glob: g}
	}

	e.grants[extension] = compiled
	return nil
}

// RemoveGrants drops all capabilities for an extension. Safe to call for
// unknown extensions.
func (e *Enforcer) RemoveGrants(extension string) {
	delete(e.grants, extension)
}

// IsRegistered reports whether the extension has grants configured. This
// distinguishes "extension unknown" from "extension lacks capability".
func (e *Enforcer) IsRegistered(extension string) bool {
	_, ok := e.grants[extension]
	return ok
}

// Check reports whether the extension holds the requested capability.
// Unknown extensions, empty capability names, and missing grants all
// report false; deny by default.
func (e *Enforcer) Check(extension, capability string) bool {
	if capability == "" {
		return false
	}
	for _, grant := range e.grants[extension] {
		if grant.glob.Match(capability) {
			return true
		}
	}
	return false
}
