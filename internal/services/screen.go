package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/medicare-app/recordsync/internal/models"
	"github.com/medicare-app/recordsync/internal/session"
	"github.com/medicare-app/recordsync/internal/store"
)

// Screen ties one record kind's subscription to its projection. It opens a
// single live query for the current user, feeds every snapshot into the
// projection and notifies an optional listener. Without a signed-in user it
// does nothing.
type Screen struct {
	name    string
	session *session.Session
	records store.RecordStore
	proj    *Projection
	log     *slog.Logger

	buildQuery func(uid string) store.Query

	mu       sync.Mutex
	sub      store.Subscription
	onUpdate func(store.Snapshot)
}

// NewScreen returns the standard screen for a record kind: owner-filtered,
// natural order, no extra conditions.
func NewScreen(kind models.Kind, records store.RecordStore, sess *session.Session, log *slog.Logger) *Screen {
	return newScreen(string(kind), records, sess, log, nil, func(uid string) store.Query {
		return store.OwnerQuery(kind, uid)
	})
}

// NewUpcomingPreview returns the home screen's appointment preview: an
// independent subscription restricted server-side to confirmed appointments
// from today onward. It never shares a projection with the full
// appointments screen.
func NewUpcomingPreview(records store.RecordStore, sess *session.Session, log *slog.Logger, now func() time.Time) *Screen {
	if now == nil {
		now = time.Now
	}
	return newScreen("home-preview", records, sess, log, now, func(uid string) store.Query {
		return store.UpcomingConfirmedQuery(uid, now().Format("2006-01-02"))
	})
}

func newScreen(name string, records store.RecordStore, sess *session.Session, log *slog.Logger, now func() time.Time, buildQuery func(string) store.Query) *Screen {
	if log == nil {
		log = slog.Default()
	}
	return &Screen{
		name:       name,
		session:    sess,
		records:    records,
		proj:       NewProjection(now),
		log:        log.With("screen", name),
		buildQuery: buildQuery,
	}
}

// Projection exposes the read model for the presentation layer.
func (s *Screen) Projection() *Projection { return s.proj }

// SetOnUpdate registers a listener invoked after each snapshot is applied.
// Must be called before Run.
func (s *Screen) SetOnUpdate(fn func(store.Snapshot)) { s.onUpdate = fn }

// Run subscribes and consumes snapshots until the context is cancelled or
// the stream fails. Without an identity it returns immediately. A previous
// subscription, if any, is detached first so an identity change never
// yields duplicate delivery.
func (s *Screen) Run(ctx context.Context) error {
	uid, ok := s.session.CurrentUserID()
	if !ok {
		s.log.Info("No signed-in user; screen stays empty.")
		return nil
	}

	s.mu.Lock()
	if s.sub != nil {
		s.sub.Detach()
	}
	sub, err := s.records.Subscribe(ctx, s.buildQuery(uid))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.sub = sub
	s.mu.Unlock()

	s.log.Info("Subscribed.", "userId", uid)

	for {
		select {
		case snap, open := <-sub.Updates():
			if !open {
				if err := sub.Err(); err != nil {
					s.log.Error("Subscription stream failed.", "error", err)
					return err
				}
				return nil
			}
			s.proj.Apply(snap)
			if s.onUpdate != nil {
				s.onUpdate(snap)
			}
		case <-ctx.Done():
			s.Detach()
			return nil
		}
	}
}

// Detach releases the live query. Safe to call more than once.
func (s *Screen) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		s.sub.Detach()
		s.sub = nil
	}
}
