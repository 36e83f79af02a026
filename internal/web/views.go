package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/evdash/internal/core"
)

// viewRegistry holds one TableView per browser session. Views not touched
// for longer than idle are dropped by the sweeper.
type viewRegistry struct {
	mu       sync.Mutex
	views    map[string]*viewEntry
	records  []core.Record
	pageSize int
	idle     time.Duration
	now      func() time.Time
}

type viewEntry struct {
	view     *core.TableView
	lastSeen time.Time
}

func newViewRegistry(records []core.Record, pageSize int, idle time.Duration) *viewRegistry {
	return &viewRegistry{
		views:    make(map[string]*viewEntry),
		records:  records,
		pageSize: pageSize,
		idle:     idle,
		now:      time.Now,
	}
}

// get returns the view for id and marks it used.
func (vr *viewRegistry) get(id string) (*core.TableView, bool) {
	vr.mu.Lock()
	defer vr.mu.Unlock()

	e, ok := vr.views[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = vr.now()
	return e.view, true
}

// create starts a fresh view in the initial state under a new id.
func (vr *viewRegistry) create() (string, *core.TableView) {
	id := uuid.NewString()
	view := core.NewTableView(vr.records, vr.pageSize)

	vr.mu.Lock()
	vr.views[id] = &viewEntry{view: view, lastSeen: vr.now()}
	vr.mu.Unlock()

	return id, view
}

// sweep removes idle views and reports how many were dropped.
func (vr *viewRegistry) sweep() int {
	vr.mu.Lock()
	defer vr.mu.Unlock()

	now := vr.now()
	removed := 0
	for id, e := range vr.views {
		if now.Sub(e.lastSeen) > vr.idle {
			delete(vr.views, id)
			removed++
		}
	}
	return removed
}

func (vr *viewRegistry) len() int {
	vr.mu.Lock()
	defer vr.mu.Unlock()
	return len(vr.views)
}

// run sweeps every minute until ctx is cancelled.
func (vr *viewRegistry) run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := vr.sweep(); n > 0 {
				slog.Debug("expired table views", "count", n, "active", vr.len())
			}
		}
	}
}
