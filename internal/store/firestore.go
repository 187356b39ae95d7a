package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/medicare-app/recordsync/internal/models"
)

// FirestoreStore adapts a Firestore client to the RecordStore contract.
// Collections are named after the record kind; document fields follow the
// models' firestore tags.
type FirestoreStore struct {
	client *firestore.Client
}

var _ RecordStore = (*FirestoreStore)(nil)

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) buildQuery(q Query) firestore.Query {
	fq := s.client.Collection(string(q.Kind)).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, string(f.Op), f.Value)
	}
	for _, o := range q.Orders {
		dir := firestore.Asc
		if o.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(o.Field, dir)
	}
	return fq
}

// Subscribe opens a server-side snapshot listener and pushes each query
// snapshot as a full replacement list.
func (s *FirestoreStore) Subscribe(ctx context.Context, q Query) (Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := &firestoreSubscription{
		updates: make(chan Snapshot, 1),
		cancel:  cancel,
	}
	go sub.run(ctx, s.buildQuery(q).Snapshots(ctx), q.Kind)
	return sub, nil
}

func (s *FirestoreStore) Insert(ctx context.Context, rec models.Record) (string, error) {
	ref, _, err := s.client.Collection(string(rec.RecordKind())).Add(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("firestore add to %s: %w", rec.RecordKind(), err)
	}
	return ref.ID, nil
}

// Replace is a get-then-set transaction: a plain Set would silently recreate
// a record deleted by a concurrent writer, which must surface as ErrNotFound
// instead.
func (s *FirestoreStore) Replace(ctx context.Context, kind models.Kind, id string, rec models.Record) error {
	ref := s.client.Collection(string(kind)).Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		return tx.Set(ref, rec)
	})
	if err != nil {
		return fmt.Errorf("firestore replace %s/%s: %w", kind, id, err)
	}
	return nil
}

// Remove is a get-then-delete transaction. Firestore deletes are idempotent,
// but a vanished record must be reported, not silently ignored.
func (s *FirestoreStore) Remove(ctx context.Context, kind models.Kind, id string) error {
	ref := s.client.Collection(string(kind)).Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return fmt.Errorf("firestore remove %s/%s: %w", kind, id, err)
	}
	return nil
}

type firestoreSubscription struct {
	updates chan Snapshot
	cancel  context.CancelFunc

	mu  sync.Mutex
	err error
}

func (s *firestoreSubscription) Updates() <-chan Snapshot { return s.updates }

func (s *firestoreSubscription) Detach() { s.cancel() }

func (s *firestoreSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *firestoreSubscription) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *firestoreSubscription) run(ctx context.Context, it *firestore.QuerySnapshotIterator, kind models.Kind) {
	defer close(s.updates)
	defer it.Stop()

	for {
		qsnap, err := it.Next()
		if err != nil {
			if status.Code(err) == codes.Canceled || ctx.Err() != nil {
				return
			}
			s.fail(fmt.Errorf("firestore snapshot stream for %s: %w", kind, err))
			return
		}
		docs, err := qsnap.Documents.GetAll()
		if err != nil {
			s.fail(fmt.Errorf("firestore read snapshot docs for %s: %w", kind, err))
			return
		}
		snapshot := make(Snapshot, 0, len(docs))
		for _, doc := range docs {
			rec, err := decodeDoc(kind, doc)
			if err != nil {
				// A single undecodable record must not take the whole
				// screen down with it.
				slog.Warn("Skipping undecodable record.", "kind", kind, "id", doc.Ref.ID, "error", err)
				continue
			}
			snapshot = append(snapshot, rec)
		}
		select {
		case s.updates <- snapshot:
		case <-ctx.Done():
			return
		}
	}
}

func decodeDoc(kind models.Kind, doc *firestore.DocumentSnapshot) (models.Record, error) {
	rec, err := models.New(kind)
	if err != nil {
		return nil, err
	}
	if err := doc.DataTo(rec); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", kind, err)
	}
	rec.SetRecordID(doc.Ref.ID)
	return rec, nil
}
