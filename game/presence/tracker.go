// Package presence tracks connection liveness. Each connected player has a
// last-heartbeat timestamp and a closable connection handle; a periodic
// sweep closes and reports connections that have gone quiet. The tracker
// knows nothing about lobbies — cascading cleanup is the caller's job.
package presence

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	lastSeen time.Time
	conn     io.Closer
}

// Tracker maps player ids to liveness state.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
	logger  *slog.Logger
}

// NewTracker creates an empty tracker.
func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		entries: make(map[string]*entry),
		now:     time.Now,
		logger:  logger,
	}
}

// Track registers a freshly accepted connection.
func (t *Tracker) Track(playerID string, conn io.Closer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[playerID] = &entry{lastSeen: t.now(), conn: conn}
}

// Heartbeat refreshes a player's liveness timestamp. It reports whether the
// player is still tracked.
func (t *Tracker) Heartbeat(playerID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[playerID]
	if !ok {
		return false
	}
	e.lastSeen = t.now()
	return true
}

// Forget drops a player without closing the connection; used on explicit
// disconnect, where the transport already closed it.
func (t *Tracker) Forget(playerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, playerID)
}

// Tracked reports whether a player id currently has a live connection.
func (t *Tracker) Tracked(playerID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[playerID]
	return ok
}

// Count returns the number of tracked connections.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Sweep evicts every player whose last heartbeat is older than timeout:
// their connection is closed, the entry removed, and the id reported.
func (t *Tracker) Sweep(now time.Time, timeout time.Duration) []string {
	t.mu.Lock()
	var evicted []string
	var conns []io.Closer
	for playerID, e := range t.entries {
		if now.Sub(e.lastSeen) > timeout {
			evicted = append(evicted, playerID)
			if e.conn != nil {
				conns = append(conns, e.conn)
			}
			delete(t.entries, playerID)
		}
	}
	t.mu.Unlock()

	for _, c := range conns {
		if err := c.Close(); err != nil {
			t.logger.Debug("close evicted connection", "error", err)
		}
	}
	for _, playerID := range evicted {
		t.logger.Info("player timed out", "player_id", playerID, "timeout", timeout)
	}
	return evicted
}

// Run sweeps every timeout/2 until the context is cancelled, handing each
// non-empty batch of evicted ids to onEvict.
func (t *Tracker) Run(ctx context.Context, timeout time.Duration, onEvict func(evicted []string)) {
	ticker := time.NewTicker(timeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if evicted := t.Sweep(now, timeout); len(evicted) > 0 && onEvict != nil {
				onEvict(evicted)
			}
		}
	}
}
