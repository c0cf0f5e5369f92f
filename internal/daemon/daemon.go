// Package daemon runs the background side of the study app:
//
//  1. Periodically re-runs reconciliation so long-lived sessions pick up
//     remote changes without a restart
//  2. Watches a snapshot inbox directory and imports any snapshot file
//     dropped into it (the device-to-device transfer path)
//  3. Handles graceful shutdown
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tossh23/architect-study-app/internal/session"
	"github.com/tossh23/architect-study-app/internal/snapshot"
	"github.com/tossh23/architect-study-app/internal/store"
)

// Config holds configuration for the daemon.
type Config struct {
	// ResyncInterval is how often to re-run reconciliation.
	ResyncInterval time.Duration

	// DebounceInterval is how long an inbox file must sit unchanged
	// before import. Batches partial writes from slow copies.
	DebounceInterval time.Duration

	// OnImport is called after a snapshot import with record counts.
	// May be nil.
	OnImport func(questions, history int)

	// Logger for daemon activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ResyncInterval:   15 * time.Minute,
		DebounceInterval: 500 * time.Millisecond,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// RotatingLogger builds a logger writing to a size-rotated file, for
// daemon runs detached from a terminal.
func RotatingLogger(path, prefix string) *log.Logger {
	return log.New(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     30, // days
	}, prefix, log.LstdFlags)
}

// Daemon orchestrates periodic resync and snapshot-inbox imports.
type Daemon struct {
	session  *session.Session
	store    *store.Store
	inboxDir string
	config   *Config

	watcher   *fsnotify.Watcher
	pending   map[string]time.Time // inbox path -> last event
	pendingMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a daemon over a running session. The inbox directory is
// created if missing.
func New(sess *session.Session, st *store.Store, inboxDir string, config *Config) (*Daemon, error) {
	if sess == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if inboxDir == "" {
		return nil, fmt.Errorf("inboxDir cannot be empty")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = DefaultConfig().Logger
	}

	if err := os.MkdirAll(inboxDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create inbox directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		session:  sess,
		store:    st,
		inboxDir: inboxDir,
		config:   config,
		watcher:  watcher,
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins the daemon's operation. Snapshots already sitting in the
// inbox are imported immediately, then the daemon watches for new ones
// and re-syncs on a timer. Blocks until ctx is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting daemon")

	if err := d.importExisting(); err != nil {
		return err
	}
	if err := d.watcher.Add(d.inboxDir); err != nil {
		return fmt.Errorf("failed to watch inbox directory: %w", err)
	}
	d.config.Logger.Printf("Watching inbox: %s", d.inboxDir)

	d.wg.Add(3)
	go d.watchInbox()
	go d.processPending()
	go d.resyncLoop()

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

	if err := d.watcher.Close(); err != nil {
		d.config.Logger.Printf("Error closing watcher: %v", err)
	}
	d.wg.Wait()

	d.config.Logger.Println("Daemon stopped")
	return nil
}

// importExisting imports snapshots that were dropped into the inbox
// before the daemon started.
func (d *Daemon) importExisting() error {
	entries, err := os.ReadDir(d.inboxDir)
	if err != nil {
		return fmt.Errorf("failed to read inbox directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isSnapshotFile(entry.Name()) {
			continue
		}
		d.importSnapshot(filepath.Join(d.inboxDir, entry.Name()))
	}
	return nil
}

// watchInbox monitors filesystem events and queues snapshot files.
func (d *Daemon) watchInbox() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isSnapshotFile(event.Name) {
				continue
			}
			d.config.Logger.Printf("Inbox event: %s %s", event.Op, event.Name)
			d.pendingMu.Lock()
			d.pending[event.Name] = time.Now()
			d.pendingMu.Unlock()

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// processPending imports queued snapshots once they settle.
func (d *Daemon) processPending() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			var ready []string
			d.pendingMu.Lock()
			cutoff := time.Now().Add(-d.config.DebounceInterval)
			for path, last := range d.pending {
				if last.Before(cutoff) {
					ready = append(ready, path)
					delete(d.pending, path)
				}
			}
			d.pendingMu.Unlock()

			for _, path := range ready {
				d.importSnapshot(path)
			}
		}
	}
}

// importSnapshot imports one snapshot file and renames it to record the
// outcome, so a file is never imported twice.
func (d *Daemon) importSnapshot(path string) {
	snap, err := snapshot.Read(path)
	if err != nil {
		if errors.Is(err, snapshot.ErrInvalidSnapshot) {
			d.config.Logger.Printf("Rejecting invalid snapshot %s: %v", path, err)
			d.markFile(path, ".rejected")
			return
		}
		d.config.Logger.Printf("Failed to read snapshot %s: %v", path, err)
		return
	}

	questions, history, err := snapshot.Import(d.ctx, d.store, snap)
	if err != nil {
		d.config.Logger.Printf("Failed to import snapshot %s: %v", path, err)
		return
	}
	d.config.Logger.Printf("Imported snapshot %s: %d questions, %d history entries", path, questions, history)
	d.markFile(path, ".done")

	if d.config.OnImport != nil {
		d.config.OnImport(questions, history)
	}
	// Push imported history to the remote promptly.
	d.session.Resync()
}

func (d *Daemon) markFile(path, suffix string) {
	if err := os.Rename(path, path+suffix); err != nil {
		d.config.Logger.Printf("Failed to rename %s: %v", path, err)
	}
}

// resyncLoop re-runs reconciliation on a timer.
func (d *Daemon) resyncLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.ResyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.config.Logger.Println("Periodic resync")
			d.session.Resync()
		}
	}
}

func isSnapshotFile(name string) bool {
	return strings.HasSuffix(name, ".json")
}
