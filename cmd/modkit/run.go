// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ModKit Contributors

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/modkit/modkit/internal/capability"
	"github.com/modkit/modkit/internal/config"
	"github.com/modkit/modkit/internal/eventbus"
	"github.com/modkit/modkit/internal/extension"
	"github.com/modkit/modkit/internal/host"
	"github.com/modkit/modkit/internal/logging"
	"github.com/modkit/modkit/internal/observability"
	"github.com/modkit/modkit/internal/registry"
	"github.com/modkit/modkit/pkg/sdk"
)

// NewRunCmd creates the run subcommand: the host loop with the text
// command console.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the extension host",
		Long: `Run the extension host: loads the extensions directory, starts the
observability server, and reads commands from stdin. Commands:

  load <path>     load the extension at <path>
  unload <path>   unregister and unload the extension at <path>
  say <text>      send <text> through the chat-send pipeline
  log <text>      queue <text> for the chat log and drain the queue
  plugins         list registered plugins
  extensions      list loaded extensions
  quit            unload everything and exit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runHost(cmd, cfg)
		},
	}

	cmd.Flags().String("extensions-dir", config.DefaultExtensionsDir, "directory scanned for extensions")
	cmd.Flags().String("metrics-addr", config.DefaultMetricsAddr, "observability server listen address")
	cmd.Flags().String("log-format", config.DefaultLogFormat, "log format: json or text")

	return cmd
}

// runHost wires the core together and drives it from the console loop.
// The loop is the single thread the registry and bus are mutated from.
func runHost(cmd *cobra.Command, cfg *config.Config) error {
	logging.SetDefault("modkit", version, cfg.LogFormat)

	bus := eventbus.NewBus()
	reg := registry.New(bus)
	client := host.NewClient(reg, bus,
		host.WithGameSink(host.GameSinkFunc(func(message string) {
			cmd.Printf("[game] %s\n", message)
		})),
		host.WithLogSink(host.LogSinkFunc(func(line string) {
			cmd.Printf("[chatlog] %s\n", line)
		})),
	)

	enforcer := capability.NewEnforcer()
	loader := extension.NewLoader(client, enforcer)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var ready atomic.Bool
	obs := observability.NewServer(cfg.MetricsAddr, ready.Load)
	obsErrs, err := obs.Start()
	if err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Stop(stopCtx); err != nil {
			slog.Error("failed to stop observability server", "error", err)
		}
	}()
	go func() {
		for err := range obsErrs {
			slog.Error("observability server failed", "error", err)
		}
	}()

	if err := loader.LoadAll(ctx, cfg.ExtensionsDir); err != nil {
		slog.Warn("extension discovery failed", "dir", cfg.ExtensionsDir, "error", err)
	}
	ready.Store(true)

	slog.Info("host running",
		"sdk_version", sdk.Version,
		"extensions", loader.Loaded(),
		"metrics_addr", obs.Addr())

	console(ctx, cmd, client, reg, loader)

	loader.UnloadAll(ctx)
	return nil
}

// console reads commands from stdin until EOF or quit. All core mutation
// happens on this goroutine.
func console(ctx context.Context, cmd *cobra.Command, client *host.Client, reg *registry.Registry, loader *extension.Loader) {
	scanner := bufio.NewScanner(os.Stdin)
	cmd.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		verb, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch verb {
		case "":
		case "load":
			if err := loader.Load(ctx, arg); err != nil {
				cmd.Printf("load failed: %v\n", err)
			}
		case "unload":
			if err := loader.Unload(ctx, arg); err != nil {
				cmd.Printf("unload failed: %v\n", err)
			}
		case "say":
			if !client.SendChat(arg) {
				cmd.Println("(message canceled)")
			}
		case "log":
			if client.QueueChatLog(arg) {
				client.DrainChatLog()
			}
		case "plugins":
			printPlugins(cmd, reg)
		case "extensions":
			for _, name := range loader.Loaded() {
				cmd.Println(name)
			}
		case "quit", "exit":
			return
		default:
			cmd.Printf("unknown command: %s\n", verb)
		}
		cmd.Print("> ")
	}
	if err := scanner.Err(); err != nil {
		slog.Error("console read failed", "error", err)
	}
}

// printPlugins uses the two-phase enumeration protocol the same way an
// extension would.
func printPlugins(cmd *cobra.Command, reg *registry.Registry) {
	var n int
	if err := reg.EnumeratePlugins(nil, &n); err != nil {
		cmd.Printf("enumerate failed: %v\n", err)
		return
	}
	out := make([]sdk.Plugin, n)
	if err := reg.EnumeratePlugins(out, &n); err != nil {
		cmd.Printf("enumerate failed: %v\n", err)
		return
	}
	for _, p := range out {
		name, _ := reg.PluginName(p)
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", name)
	}
}
