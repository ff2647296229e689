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

	"github.com/paperdesk/paperdesk/internal/daemon"
	"github.com/paperdesk/paperdesk/internal/dashboard"
	"github.com/paperdesk/paperdesk/internal/sync"
	"github.com/paperdesk/paperdesk/internal/ui"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	GroupID: "advanced",
	Short:   "Start the real-time WebSocket dashboard",
	Long: `Start a WebSocket server that broadcasts paper activity live.

Messages include:
- paper_update: a paper was saved, confirmed, deleted, duplicated, or imported
- sync_complete: a full sync pass finished
- stats: collection statistics

The command runs a sync daemon alongside the server, so the feed stays
live without a separate 'pd daemon' process.

Example usage:
  pd dashboard                 # Start on the configured port
  pd dashboard --port 9000     # Start on a custom port

Connect with a WebSocket client:
  ws://localhost:8484/ws`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")

		cfg := loadConfig()
		if port == 0 {
			port = cfg.Dashboard.Port
		}

		server := dashboard.NewServer(&dashboard.Config{
			Port:   port,
			Logger: log.New(os.Stderr, "[dashboard] ", log.LstdFlags),
		})
		if err := server.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to start dashboard: %v\n", err)
			os.Exit(1)
		}

		handler := dashboard.NewHandler(server, log.New(os.Stderr, "[dashboard] ", log.LstdFlags))

		st := openStore(cfg)
		defer st.Close()
		engine := newEngine(cfg, st, sync.WithNotifier(handler))

		if papers, err := st.LoadAll(); err == nil {
			handler.UpdateStats(papers)
		}

		d, err := daemon.NewWithConfig(engine, "", &daemon.Config{
			SyncInterval:     cfg.Sync.RefreshInterval,
			DebounceInterval: 200 * time.Millisecond,
			Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Dashboard started on http://localhost:%d\n", port)
		fmt.Printf("WebSocket endpoint: ws://localhost:%d/ws\n", port)
		fmt.Printf("Health check: http://localhost:%d/health\n", port)
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		go func() {
			if err := d.Start(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Daemon error: %v\n", err)
			}
		}()

		<-ctx.Done()

		fmt.Println("\nShutting down...")
		if err := server.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Dashboard stopped\n", ui.RenderPass("✓"))
	},
}

func init() {
	dashboardCmd.Flags().IntP("port", "p", 0, "Port to listen on (default: dashboard.port from config)")

	rootCmd.AddCommand(dashboardCmd)
}
