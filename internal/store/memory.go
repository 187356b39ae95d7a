package store

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/medicare-app/recordsync/internal/models"
)

// MemoryStore is an in-process RecordStore honoring the same filter, order
// and snapshot-push semantics as the Firestore adapter. It backs the
// "memory" store driver and the test suite.
type MemoryStore struct {
	mu    sync.Mutex
	colls map[models.Kind]map[string]models.Record
	subs  map[*memorySubscription]struct{}

	// Error injection for exercising remote failure paths.
	InsertErr  error
	ReplaceErr error
	RemoveErr  error

	subscribeCount int
}

var (
	_ RecordStore = (*MemoryStore)(nil)
	_ BlobStore   = (*MemoryBlobStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		colls: make(map[models.Kind]map[string]models.Record),
		subs:  make(map[*memorySubscription]struct{}),
	}
}

func (m *MemoryStore) Subscribe(_ context.Context, q Query) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribeCount++
	sub := &memorySubscription{store: m, query: q, ch: make(chan Snapshot, 64)}
	m.subs[sub] = struct{}{}
	sub.push(m.snapshotFor(q))
	return sub, nil
}

// SubscribeCount reports how many subscriptions were ever opened.
func (m *MemoryStore) SubscribeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribeCount
}

func (m *MemoryStore) Insert(_ context.Context, rec models.Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return "", m.InsertErr
	}
	return m.insertLocked(rec, uuid.NewString()), nil
}

// Seed stores a record directly, keeping its id when present. Test and
// local-development convenience; it still notifies subscribers.
func (m *MemoryStore) Seed(rec models.Record) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := rec.RecordID()
	if id == "" {
		id = uuid.NewString()
	}
	return m.insertLocked(rec, id)
}

func (m *MemoryStore) insertLocked(rec models.Record, id string) string {
	kind := rec.RecordKind()
	if m.colls[kind] == nil {
		m.colls[kind] = make(map[string]models.Record)
	}
	stored := cloneRecord(rec)
	stored.SetRecordID(id)
	m.colls[kind][id] = stored
	m.broadcastLocked(kind)
	return id
}

func (m *MemoryStore) Replace(_ context.Context, kind models.Kind, id string, rec models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}
	if _, ok := m.colls[kind][id]; !ok {
		return fmt.Errorf("replace %s/%s: %w", kind, id, ErrNotFound)
	}
	stored := cloneRecord(rec)
	stored.SetRecordID(id)
	m.colls[kind][id] = stored
	m.broadcastLocked(kind)
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, kind models.Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	if _, ok := m.colls[kind][id]; !ok {
		return fmt.Errorf("remove %s/%s: %w", kind, id, ErrNotFound)
	}
	delete(m.colls[kind], id)
	m.broadcastLocked(kind)
	return nil
}

func (m *MemoryStore) broadcastLocked(kind models.Kind) {
	for sub := range m.subs {
		if sub.query.Kind != kind {
			continue
		}
		sub.push(m.snapshotFor(sub.query))
	}
}

func (m *MemoryStore) snapshotFor(q Query) Snapshot {
	var snap Snapshot
	for _, rec := range m.colls[q.Kind] {
		if matchesFilters(rec, q.Filters) {
			snap = append(snap, cloneRecord(rec))
		}
	}
	sortRecords(snap, q.Orders)
	return snap
}

type memorySubscription struct {
	store    *MemoryStore
	query    Query
	ch       chan Snapshot
	detached bool
}

func (s *memorySubscription) Updates() <-chan Snapshot { return s.ch }

func (s *memorySubscription) Err() error { return nil }

func (s *memorySubscription) Detach() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if s.detached {
		return
	}
	s.detached = true
	delete(s.store.subs, s)
	close(s.ch)
}

// push delivers a snapshot without blocking the mutation path. When the
// buffer is full the oldest pending snapshot is dropped: consumers only ever
// need the latest full replacement.
func (s *memorySubscription) push(snap Snapshot) {
	if s.detached {
		return
	}
	select {
	case s.ch <- snap:
	default:
		select {
		case <-s.ch:
		default:
		}
		s.ch <- snap
	}
}

func cloneRecord(rec models.Record) models.Record {
	switch r := rec.(type) {
	case *models.Appointment:
		c := *r
		return &c
	case *models.Doctor:
		c := *r
		return &c
	case *models.Document:
		c := *r
		return &c
	case *models.Medication:
		c := *r
		return &c
	default:
		return rec
	}
}

func matchesFilters(rec models.Record, filters []Filter) bool {
	for _, f := range filters {
		v, ok := fieldValue(rec, f.Field)
		if !ok {
			return false
		}
		want := fmt.Sprint(f.Value)
		switch f.Op {
		case OpEqual:
			if v != want {
				return false
			}
		case OpGreaterOrEqual:
			if v < want {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func sortRecords(snap Snapshot, orders []models.OrderField) {
	sort.SliceStable(snap, func(i, j int) bool {
		for _, o := range orders {
			a, _ := fieldValue(snap[i], o.Field)
			b, _ := fieldValue(snap[j], o.Field)
			if a == b {
				continue
			}
			if o.Desc {
				return a > b
			}
			return a < b
		}
		return false
	})
}

// fieldValue resolves a wire field name against a record's firestore tags.
func fieldValue(rec models.Record, field string) (string, bool) {
	v := reflect.ValueOf(rec).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("firestore")
		name, _, _ := strings.Cut(tag, ",")
		if name == field {
			return fmt.Sprint(v.Field(i).Interface()), true
		}
	}
	return "", false
}

// MemoryBlobStore is the in-process BlobStore counterpart of MemoryStore.
type MemoryBlobStore struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string

	PutErr    error
	RemoveErr error
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (b *MemoryBlobStore) Put(_ context.Context, path string, content io.Reader, contentType string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.PutErr != nil {
		return b.PutErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return fmt.Errorf("read blob content for %s: %w", path, err)
	}
	b.objects[path] = data
	b.contentTypes[path] = contentType
	return nil
}

func (b *MemoryBlobStore) PublicURL(path string) string {
	return "memory://" + path
}

func (b *MemoryBlobStore) Remove(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.RemoveErr != nil {
		return b.RemoveErr
	}
	if _, ok := b.objects[path]; !ok {
		return fmt.Errorf("delete %s: %w", path, ErrNotFound)
	}
	delete(b.objects, path)
	delete(b.contentTypes, path)
	return nil
}

// Exists reports whether a blob is present at the path.
func (b *MemoryBlobStore) Exists(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[path]
	return ok
}
