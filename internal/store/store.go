package store

import (
	"context"
	"errors"
	"io"

	"github.com/medicare-app/recordsync/internal/models"
)

// ErrNotFound is returned when the target record vanished server-side,
// typically a race with a concurrent delete.
var ErrNotFound = errors.New("record not found")

// Operator is a query filter operator.
type Operator string

const (
	OpEqual          Operator = "=="
	OpGreaterOrEqual Operator = ">="
)

// Filter is one equality/range condition of a live query.
type Filter struct {
	Field string
	Op    Operator
	Value any
}

// Query describes one live query: a collection kind, its filters and its
// order-by clause. Every query built by this module carries an owner filter.
type Query struct {
	Kind    models.Kind
	Filters []Filter
	Orders  []models.OrderField
}

// Snapshot is a full replacement of a query's visible records, in the order
// the store delivered them. Adds, updates, deletes and the initial load are
// indistinguishable to the consumer.
type Snapshot []models.Record

// Subscription is one live query registration. Updates delivers whole
// snapshots until Detach is called or the stream fails; the channel is
// closed afterwards and Err reports the terminal error, if any.
type Subscription interface {
	Updates() <-chan Snapshot
	Detach()
	Err() error
}

// RecordStore is the capability contract over the remote document database.
type RecordStore interface {
	Subscribe(ctx context.Context, q Query) (Subscription, error)
	Insert(ctx context.Context, rec models.Record) (string, error)
	// Replace overwrites all fields of the identified record. It fails with
	// ErrNotFound if the record no longer exists; it never creates one.
	Replace(ctx context.Context, kind models.Kind, id string, rec models.Record) error
	// Remove deletes the identified record, failing with ErrNotFound if it
	// is already gone.
	Remove(ctx context.Context, kind models.Kind, id string) error
}

// BlobStore is the capability contract over the remote binary store.
type BlobStore interface {
	Put(ctx context.Context, path string, content io.Reader, contentType string) error
	PublicURL(path string) string
	Remove(ctx context.Context, path string) error
}

// OwnerQuery is the standard per-screen query: all records of one kind
// belonging to one user, in the kind's natural order.
func OwnerQuery(kind models.Kind, uid string) Query {
	return Query{
		Kind:    kind,
		Filters: []Filter{{Field: models.OwnerField, Op: OpEqual, Value: uid}},
		Orders:  models.NaturalOrder(kind),
	}
}

// UpcomingConfirmedQuery is the home-screen appointment preview: confirmed
// appointments from today onward, ordered by date then time.
func UpcomingConfirmedQuery(uid, today string) Query {
	return Query{
		Kind: models.KindAppointment,
		Filters: []Filter{
			{Field: models.OwnerField, Op: OpEqual, Value: uid},
			{Field: "date", Op: OpGreaterOrEqual, Value: today},
			{Field: "status", Op: OpEqual, Value: models.StatusConfirmed},
		},
		Orders: models.NaturalOrder(models.KindAppointment),
	}
}
