package services

import (
	"strings"
	"sync"
	"time"

	"github.com/medicare-app/recordsync/internal/models"
	"github.com/medicare-app/recordsync/internal/store"
)

// Projection holds the latest snapshot delivered to one screen's
// subscription, verbatim and in delivered order, and derives filtered views
// from it on demand. It is the single source of truth the presentation layer
// reads. Each screen owns exactly one projection; the lock only guards the
// snapshot swap against concurrent reads.
type Projection struct {
	mu       sync.RWMutex
	snapshot store.Snapshot
	now      func() time.Time
}

func NewProjection(now func() time.Time) *Projection {
	if now == nil {
		now = time.Now
	}
	return &Projection{now: now}
}

// Apply replaces the held snapshot wholesale. Deriving nothing here keeps
// the projection pure given (snapshot, tab, search); the O(n) rescan per
// filter call is the accepted cost of full-snapshot push.
func (p *Projection) Apply(snap store.Snapshot) {
	p.mu.Lock()
	p.snapshot = snap
	p.mu.Unlock()
}

// Snapshot returns the latest snapshot as delivered.
func (p *Projection) Snapshot() store.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// Filtered returns the ordered subsequence of the snapshot matching the tab
// partition and the case-insensitive substring search. An empty search
// matches everything; searching only ever narrows the tab's subset.
func (p *Projection) Filtered(tab, search string) []models.Record {
	p.mu.RLock()
	snap := p.snapshot
	p.mu.RUnlock()

	now := p.now()
	needle := strings.ToLower(search)

	out := make([]models.Record, 0, len(snap))
	for _, rec := range snap {
		if !rec.MatchesTab(tab, now) {
			continue
		}
		if !matchesSearch(rec, needle) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchesSearch(rec models.Record, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range rec.SearchText() {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
