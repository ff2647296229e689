package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/config"
	"github.com/paperdesk/paperdesk/internal/remote"
	"github.com/paperdesk/paperdesk/internal/store"
	"github.com/paperdesk/paperdesk/internal/sync"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pd",
	Short: "PaperDesk - local-first exam paper manager",
	Long: `PaperDesk manages exam papers on your machine and keeps them
synchronized with the PaperDesk server.

Papers are always saved locally first; network failures never block
editing. Papers created offline get a temporary id and are pushed to the
server the next time a save or sync succeeds.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.paperdesk/config.yaml)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "paper", Title: "Paper Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync & Data Commands:"},
		&cobra.Group{ID: "advanced", Title: "Advanced Commands:"},
	)
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// openStore opens the configured local backend.
func openStore(cfg *config.Config) store.Store {
	var (
		st  store.Store
		err error
	)
	switch cfg.Data.Backend {
	case config.BackendSQLite:
		st, err = store.OpenSQLite(cfg.StorePath(), nil)
	default:
		st, err = store.NewFileStore(cfg.StorePath(), nil)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening local store: %v\n", err)
		os.Exit(1)
	}
	return st
}

// newEngine wires the store and remote client into a sync engine.
func newEngine(cfg *config.Config, st store.Store, opts ...sync.Option) sync.Engine {
	var clientOpts []remote.Option
	if cfg.API.Token != "" {
		clientOpts = append(clientOpts, remote.WithToken(cfg.API.Token))
	}
	client := remote.New(cfg.API.BaseURL, clientOpts...)
	return sync.New(st, client, nil, opts...)
}
