// Package session drives app startup: open the local store, hand the UI
// local data immediately, then reconcile with the remote store in the
// background.
//
// State machine:
//
//	Uninitialized -> LocalReady -> Syncing -> Synced
//	                                       -> SyncFailed
//
// LocalReady is reached as soon as the local store answers, so the UI
// never waits on the network. SyncFailed is recoverable: the session
// keeps serving local data and the next Resync (or restart) retries.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/tossh23/architect-study-app/internal/identity"
	enginesync "github.com/tossh23/architect-study-app/internal/sync"
)

// State is a phase of session bootstrap.
type State int

const (
	Uninitialized State = iota
	LocalReady
	Syncing
	Synced
	SyncFailed
)

// String returns the display name of the state.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case LocalReady:
		return "local-ready"
	case Syncing:
		return "syncing"
	case Synced:
		return "synced"
	case SyncFailed:
		return "sync-failed"
	default:
		return "unknown"
	}
}

// Session owns the bootstrap lifecycle around a sync engine.
type Session struct {
	engine   *enginesync.Engine
	identity identity.Provider
	logger   *log.Logger

	mu        sync.Mutex
	state     State
	lastErr   error
	listeners []func(State)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a session over an engine and identity provider. The
// session starts Uninitialized; call Start once the local store is open.
func New(engine *enginesync.Engine, provider identity.Provider, logger *log.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		engine:   engine,
		identity: provider,
		logger:   logger,
		state:    Uninitialized,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Session) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// State returns the current bootstrap state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastSyncError returns the error of the most recent failed sync, or nil.
func (s *Session) LastSyncError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// OnStateChange registers a callback fired on every transition. The
// callback runs on the session's goroutine and must not block.
func (s *Session) OnStateChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) setState(next State, err error) {
	s.mu.Lock()
	s.state = next
	s.lastErr = err
	listeners := append([]func(State){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
}

// Start marks local data ready and kicks off background reconciliation.
// It returns immediately; callers read local data right away and observe
// sync progress through OnStateChange. Calling Start on a stopped
// session is an error.
func (s *Session) Start() error {
	select {
	case <-s.ctx.Done():
		return fmt.Errorf("session is stopped")
	default:
	}

	s.setState(LocalReady, nil)
	s.logf("local store ready, starting background sync")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runSync()
	}()
	return nil
}

// Resync runs another reconciliation pass in the background. Used after
// regaining connectivity or on a sign-in change.
func (s *Session) Resync() {
	select {
	case <-s.ctx.Done():
		return
	default:
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runSync()
	}()
}

func (s *Session) runSync() {
	s.setState(Syncing, nil)
	if err := s.engine.ReconcileAll(s.ctx); err != nil {
		s.logf("background sync failed, continuing on local data: %v", err)
		s.setState(SyncFailed, err)
		return
	}
	s.setState(Synced, nil)
	s.logf("background sync complete")
}

// Stop cancels any in-flight reconciliation and waits for the background
// goroutine to exit. The local store is not closed; that is the caller's
// job.
func (s *Session) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logf("session stopped")
}
