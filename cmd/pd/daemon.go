package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/paperdesk/paperdesk/internal/config"
	"github.com/paperdesk/paperdesk/internal/daemon"
	"github.com/paperdesk/paperdesk/internal/store"
	"github.com/paperdesk/paperdesk/internal/ui"
)

var daemonCmd = &cobra.Command{
	Use:     "daemon",
	GroupID: "advanced",
	Short:   "Run the background sync daemon",
	Long: `Run a long-lived process that keeps the collection synchronized.

The daemon:
  - watches the collection file for out-of-band edits
  - pushes papers still carrying a temporary id on every interval
  - pulls papers created on other devices

Logs rotate automatically; the current file lives in the data directory
unless daemon.log_file is configured.

Example:
  pd daemon
  pd daemon --interval 10s --foreground`,
	Run: func(cmd *cobra.Command, args []string) {
		interval, _ := cmd.Flags().GetDuration("interval")
		foreground, _ := cmd.Flags().GetBool("foreground")

		cfg := loadConfig()
		if interval == 0 {
			interval = cfg.Sync.RefreshInterval
		}

		logger := log.New(os.Stderr, "[daemon] ", log.LstdFlags)
		if !foreground {
			logger = log.New(&lumberjack.Logger{
				Filename:   cfg.DaemonLogPath(),
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     14, // days
			}, "[daemon] ", log.LstdFlags)
		}

		st := openStore(cfg)
		defer st.Close()
		engine := newEngine(cfg, st)

		// Only the file backend has a file worth watching; SQLite is
		// written through this process alone.
		watchPath := ""
		if cfg.Data.Backend == config.BackendFile {
			if fs, ok := st.(*store.FileStore); ok {
				watchPath = fs.Path()
			}
		}

		d, err := daemon.NewWithConfig(engine, watchPath, &daemon.Config{
			SyncInterval:     interval,
			DebounceInterval: 200 * time.Millisecond,
			Logger:           logger,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Daemon started (sync every %v)\n", ui.RenderPass("✓"), interval)
		if !foreground {
			fmt.Printf("   Log: %s\n", ui.RenderDim(cfg.DaemonLogPath()))
		}
		fmt.Println("Press Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := d.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	daemonCmd.Flags().Duration("interval", 0, "Sync interval (default: sync.refresh_interval from config)")
	daemonCmd.Flags().Bool("foreground", false, "Log to stderr instead of the rotating log file")

	rootCmd.AddCommand(daemonCmd)
}
