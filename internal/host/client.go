// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

// Package host implements the sdk.Host registry interface by composing
// the extension registry, the event bus, and the downstream chat sinks.
package host

import (
	"log/slog"

	"github.com/modkit/modkit/internal/errutil"
	"github.com/modkit/modkit/internal/eventbus"
	"github.com/modkit/modkit/internal/registry"
	"github.com/modkit/modkit/pkg/sdk"
)

// Compile-time interface check.
var _ sdk.Host = (*Client)(nil)

// Query ids answered by the host client. Extensions discover these
// through the capability query primitive instead of a widened interface.
const (
	// QueryVersion answers with the host's sdk.VersionInfo.
	QueryVersion = "version"

	// QueryPluginCount answers with the current plugin count (int).
	QueryPluginCount = "plugin_count"

	// QueryModuleCount answers with the current module count (int).
	QueryModuleCount = "module_count"
)

// GameSink receives chat messages that survived chat-send dispatch. It is
// the boundary to the game engine, which is outside this core.
type GameSink interface {
	DeliverChat(message string)
}

// GameSinkFunc adapts a function to GameSink.
type GameSinkFunc func(message string)

// DeliverChat implements GameSink.
func (f GameSinkFunc) DeliverChat(message string) { f(message) }

// LogSink receives chat log lines that survived chat-log dispatch. It is
// the boundary to the chat-rendering subsystem, outside this core.
type LogSink interface {
	DisplayChatLog(line string)
}

// LogSinkFunc adapts a function to LogSink.
type LogSinkFunc func(line string)

// DisplayChatLog implements LogSink.
func (f LogSinkFunc) DisplayChatLog(line string) { f(line) }

// Client is the host side of the ABI: the registry capability extensions
// receive through the load handshake. All methods are synchronous and
// inherit the single-thread affinity of the registry and bus.
type Client struct {
	registry *registry.Registry
	bus      *eventbus.Bus
	game     GameSink
	chatLog  LogSink
	queued   []string
	query    sdk.QueryTable
}

// Option configures the Client.
type Option func(*Client)

// WithGameSink sets the downstream sink for delivered chat messages.
func WithGameSink(s GameSink) Option {
	return func(c *Client) { c.game = s }
}

// WithLogSink sets the downstream sink for displayed chat log lines.
func WithLogSink(s LogSink) Option {
	return func(c *Client) { c.chatLog = s }
}

// NewClient creates a host client over a registry and bus.
func NewClient(reg *registry.Registry, bus *eventbus.Bus, opts ...Option) *Client {
	c := &Client{
		registry: reg,
		bus:      bus,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.query = sdk.QueryTable{
		QueryVersion:     sdk.Answer(sdk.Version),
		QueryPluginCount: sdk.AnswerFunc(reg.PluginCount),
		QueryModuleCount: sdk.AnswerFunc(reg.ModuleCount),
	}
	return c
}

// LoadInfo builds the handshake record handed to extension entry points.
func (c *Client) LoadInfo() *sdk.LoadInfo {
	return &sdk.LoadInfo{Version: sdk.Version, Host: c}
}

// Query answers the host's capability ids. See the Query* constants.
func (c *Client) Query(id string, out any) bool {
	return c.query.Query(id, out)
}

// RegisterPlugin implements sdk.Host.
func (c *Client) RegisterPlugin(instance sdk.Plugin, name string) bool {
	return errutil.Flatten(nil, "register plugin rejected", c.registry.RegisterPlugin(instance, name))
}

// UnregisterPlugin implements sdk.Host.
func (c *Client) UnregisterPlugin(instance sdk.Plugin) bool {
	return errutil.Flatten(nil, "unregister plugin rejected", c.registry.UnregisterPlugin(instance))
}

// RegisterModule implements sdk.Host.
func (c *Client) RegisterModule(parent sdk.Plugin, instance sdk.Module) bool {
	return errutil.Flatten(nil, "register module rejected", c.registry.RegisterModule(parent, instance))
}

// UnregisterModule implements sdk.Host.
func (c *Client) UnregisterModule(instance sdk.Module) bool {
	return errutil.Flatten(nil, "unregister module rejected", c.registry.UnregisterModule(instance))
}

// EnumeratePlugins implements sdk.Host.
func (c *Client) EnumeratePlugins(out []sdk.Plugin, n *int) bool {
	return errutil.Flatten(nil, "enumerate plugins rejected", c.registry.EnumeratePlugins(out, n))
}

// EnumerateModules implements sdk.Host.
func (c *Client) EnumerateModules(out []sdk.Module, n *int) bool {
	return errutil.Flatten(nil, "enumerate modules rejected", c.registry.EnumerateModules(out, n))
}

// AddEventListener implements sdk.Host.
func (c *Client) AddEventListener(eventID string, fn any) bool {
	return errutil.Flatten(nil, "add event listener rejected", c.bus.AddListener(eventID, fn))
}

// RemoveEventListener implements sdk.Host.
func (c *Client) RemoveEventListener(eventID string, fn any) bool {
	return errutil.Flatten(nil, "remove event listener rejected", c.bus.RemoveListener(eventID, fn))
}

// QueueChatLog implements sdk.Host: the line is queued client-side and
// goes through chat-log dispatch when the host drains the queue. Empty
// lines are rejected.
func (c *Client) QueueChatLog(text string) bool {
	if text == "" {
		return false
	}
	c.queued = append(c.queued, text)
	return true
}

// SendChat drives the chat-send pipeline for a message the player typed:
// chat-send dispatch first, then delivery of the final (possibly
// overridden) message to the game sink unless a listener canceled it.
// Reports whether the message reached the game.
func (c *Client) SendChat(message string) bool {
	e := &sdk.ChatSend{Message: message}
	out, err := c.bus.Dispatch(e)
	if err != nil {
		errutil.LogError(nil, "chat send dispatch failed", err)
		return false
	}
	if out.Canceled {
		slog.Debug("chat send canceled by listener")
		return false
	}
	if c.game != nil {
		c.game.DeliverChat(e.Message)
	}
	return true
}

// LogChat drives the chat-log pipeline for a message that arrived in
// chat: chat-log dispatch first, then display of the final text through
// the log sink unless canceled. Reports whether the line was displayed.
func (c *Client) LogChat(message, senderName, context string) bool {
	e := &sdk.ChatLog{Message: message, SenderName: senderName, Context: context}
	out, err := c.bus.Dispatch(e)
	if err != nil {
		errutil.LogError(nil, "chat log dispatch failed", err)
		return false
	}
	if out.Canceled {
		slog.Debug("chat log canceled by listener", "sender", senderName)
		return false
	}
	if c.chatLog != nil {
		c.chatLog.DisplayChatLog(e.Message)
	}
	return true
}

// DrainChatLog runs every line queued through QueueChatLog through the
// chat-log pipeline, in queue order, and empties the queue. Returns the
// number of lines that were displayed.
func (c *Client) DrainChatLog() int {
	queued := c.queued
	c.queued = nil

	displayed := 0
	for _, line := range queued {
		if c.LogChat(line, "client", "queued") {
			displayed++
		}
	}
	return displayed
}
