// codearc TUI - a Hinglish chat buddy for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/zrxarchit/codearc-tui/internal/cli"
	"github.com/zrxarchit/codearc-tui/internal/config"
	"github.com/zrxarchit/codearc-tui/internal/offline"
	"github.com/zrxarchit/codearc-tui/internal/playback"
	"github.com/zrxarchit/codearc-tui/internal/storage"
	"github.com/zrxarchit/codearc-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	// A .env in the working directory can carry CODEARC_* overrides
	// during development. Absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitConfigError)
	}
	config.SetGlobal(cfg)

	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		exitOnErr(cli.HandleAsk(args))
	case cli.CmdSessions:
		exitOnErr(cli.HandleSessions(args))
	case cli.CmdConfig:
		exitOnErr(cli.HandleConfig(args))
	case cli.CmdSetup:
		exitOnErr(cli.HandleSetup(args))
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

func exitOnErr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

func runTUI(args cli.Args) {
	if !cli.IsTTY() {
		fmt.Fprintln(os.Stderr, "Error: the TUI needs an interactive terminal (try: codearc ask \"question\")")
		os.Exit(cli.ExitUsageError)
	}

	cfg := config.Global()

	st, kv, err := cli.OpenStore(cfg, args.Model, args.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitGeneralError)
	}
	defer kv.Close()

	typewriter := playback.NewTypewriter(playback.Options{
		WordInterval:  time.Duration(cfg.Playback.WordIntervalMs) * time.Millisecond,
		SentencePause: time.Duration(cfg.Playback.SentencePauseMs) * time.Millisecond,
		MaxDuration:   time.Duration(cfg.Playback.MaxDurationMs) * time.Millisecond,
	})

	// The monitor is built before the model; the sink is swapped in
	// once the model exists.
	var connectivitySink func(online bool)
	monitor := offline.NewMonitor(offline.Options{
		OnChange: func(online bool) {
			if connectivitySink != nil {
				connectivitySink(online)
			}
		},
	})

	m := chat.New(st, typewriter, monitor, cfg)
	connectivitySink = m.ConnectivitySink()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	monitor.Start(ctx)
	defer monitor.Stop()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// File-backed stores get an fsnotify watcher so edits from another
	// codearc process show up without a restart.
	if fileKV, ok := kv.(*storage.FileKV); ok {
		watcher, werr := storage.NewChatsWatcher(fileKV, func() {
			p.Send(chat.ExternalChangeMsg{})
		})
		if werr == nil {
			if werr = watcher.Watch(); werr == nil {
				defer watcher.Close()
			}
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running codearc: %v\n", err)
		os.Exit(cli.ExitGeneralError)
	}
}
