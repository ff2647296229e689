// Package daemon provides the background process that keeps a paper
// collection synchronized without an editor session running.
//
// The daemon:
// 1. Watches the collection file for out-of-band edits
// 2. Pushes pending local papers to the remote store on a fixed interval
// 3. Pulls remote papers not yet known locally
// 4. Handles graceful shutdown
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	gosync "sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/paperdesk/paperdesk/internal/sync"
)

// Config holds configuration for the daemon.
type Config struct {
	// SyncInterval is how often to run a full reconcile pass even when no
	// file activity was observed.
	SyncInterval time.Duration

	// DebounceInterval is how long to wait before reacting to file
	// changes. This batches rapid editor saves together.
	DebounceInterval time.Duration

	// Logger for daemon activity
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SyncInterval:     30 * time.Second,
		DebounceInterval: 200 * time.Millisecond,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// Daemon orchestrates file watching and remote synchronization.
type Daemon struct {
	engine    sync.Engine
	watchPath string // the collection file to observe
	config    *Config

	watcher *fsnotify.Watcher

	pendingMu gosync.Mutex
	pendingAt time.Time // zero when no change is queued

	ctx    context.Context
	cancel context.CancelFunc
	wg     gosync.WaitGroup
}

// New creates a daemon over the given engine.
//
// watchPath is the collection file whose out-of-band changes should
// trigger a sync; pass "" to disable file watching (SQLite backend).
// Use Start() to begin syncing.
func New(engine sync.Engine, watchPath string) (*Daemon, error) {
	return NewWithConfig(engine, watchPath, DefaultConfig())
}

// NewWithConfig creates a daemon with custom configuration.
func NewWithConfig(engine sync.Engine, watchPath string, config *Config) (*Daemon, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}

	var watcher *fsnotify.Watcher
	if watchPath != "" {
		var err error
		watcher, err = fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create watcher: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		engine:    engine,
		watchPath: watchPath,
		config:    config,
		watcher:   watcher,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start begins the daemon's operation.
//
// The daemon will:
// 1. Run an initial full reconcile
// 2. Watch the collection file for changes
// 3. Run a full reconcile on every sync interval tick
// 4. React to file changes with debouncing
//
// This blocks until ctx is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting daemon")

	stats := d.engine.ReconcileAll(d.ctx)
	d.config.Logger.Printf("Initial sync: %d pushed, %d local-only, %d added",
		stats.Pushed, stats.LocalOnly, stats.Added)

	if d.watcher != nil {
		// Watch the parent directory: atomic saves replace the file by
		// rename, which would silently drop a watch on the file itself.
		dir := filepath.Dir(d.watchPath)
		if err := d.watcher.Add(dir); err != nil {
			_ = d.Stop()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		d.config.Logger.Printf("Watching: %s", d.watchPath)

		d.wg.Add(2)
		go d.watchFileEvents()
		go d.processPending()
	}

	d.wg.Add(1)
	go d.periodicSync()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping daemon")

	d.cancel()

	if d.watcher != nil {
		if err := d.watcher.Close(); err != nil {
			d.config.Logger.Printf("Error closing watcher: %v", err)
		}
	}

	d.wg.Wait()
	d.engine.Wait()

	d.config.Logger.Println("Daemon stopped")
	return nil
}

// watchFileEvents monitors filesystem events and queues a sync when the
// collection file changes.
func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != filepath.Base(d.watchPath) {
				continue
			}

			d.config.Logger.Printf("File event: %s %s", event.Op, event.Name)
			d.queueChange()

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// queueChange records the change time for debouncing.
func (d *Daemon) queueChange() {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	d.pendingAt = time.Now()
}

// processPending runs a reconcile once a queued change has settled.
func (d *Daemon) processPending() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			if !d.takePending() {
				continue
			}
			d.config.Logger.Println("Collection file changed; syncing")
			d.runSync()
		}
	}
}

// takePending consumes the pending change if it has settled past the
// debounce interval.
func (d *Daemon) takePending() bool {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()

	if d.pendingAt.IsZero() {
		return false
	}
	if time.Since(d.pendingAt) < d.config.DebounceInterval {
		return false
	}
	d.pendingAt = time.Time{}
	return true
}

// periodicSync runs a full reconcile on every interval tick. This is
// what eventually confirms papers saved while offline.
func (d *Daemon) periodicSync() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.runSync()
		}
	}
}

func (d *Daemon) runSync() {
	stats := d.engine.ReconcileAll(d.ctx)
	if stats.Pushed+stats.Added > 0 || stats.LocalOnly > 0 {
		d.config.Logger.Printf("Sync: %d pushed, %d local-only, %d added",
			stats.Pushed, stats.LocalOnly, stats.Added)
	}
}
