package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/medicare-app/recordsync/internal/models"
	"github.com/medicare-app/recordsync/internal/store"
)

// Gateway performs all record mutations for one user. Side effects are
// confined to the record store: a successful write becomes visible only when
// the next snapshot arrives, never through a local optimistic merge.
type Gateway struct {
	records store.RecordStore
	uid     string
	log     *slog.Logger
}

func NewGateway(records store.RecordStore, uid string, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{records: records, uid: uid, log: log}
}

// Validate checks the draft's required fields. A non-nil result is a
// *ValidationError listing the empty ones; the caller must not proceed.
func (g *Gateway) Validate(draft models.Record) error {
	if missing := draft.MissingFields(); len(missing) > 0 {
		return &ValidationError{Kind: draft.RecordKind(), Missing: missing}
	}
	return nil
}

// Create validates the draft, stamps the owner and persists it. The returned
// id identifies the record in snapshots to come.
func (g *Gateway) Create(ctx context.Context, draft models.Record) (string, error) {
	if err := g.Validate(draft); err != nil {
		return "", err
	}
	draft.SetOwner(g.uid)
	id, err := g.records.Insert(ctx, draft)
	if err != nil {
		g.log.Error("Create failed.", "kind", draft.RecordKind(), "error", err)
		return "", &RemoteWriteError{Op: "create", Kind: draft.RecordKind(), Err: err}
	}
	g.log.Info("Record created.", "kind", draft.RecordKind(), "id", id)
	return id, nil
}

// Update overwrites every form-owned field of the identified record. A
// record that vanished under a concurrent delete surfaces store.ErrNotFound;
// it is reported, not retried.
func (g *Gateway) Update(ctx context.Context, id string, draft models.Record) error {
	if err := g.Validate(draft); err != nil {
		return err
	}
	draft.SetOwner(g.uid)
	if err := g.records.Replace(ctx, draft.RecordKind(), id, draft); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.log.Warn("Update target vanished.", "kind", draft.RecordKind(), "id", id)
			return fmt.Errorf("update %s/%s: %w", draft.RecordKind(), id, store.ErrNotFound)
		}
		g.log.Error("Update failed.", "kind", draft.RecordKind(), "id", id, "error", err)
		return &RemoteWriteError{Op: "update", Kind: draft.RecordKind(), Err: err}
	}
	return nil
}

// RequestDelete begins the two-step delete of a record. Nothing happens
// until Confirm is called; Decline abandons the request with no side effect.
func (g *Gateway) RequestDelete(kind models.Kind, id string) *PendingDelete {
	return &PendingDelete{gateway: g, kind: kind, id: id}
}

// PendingDelete is a delete awaiting the user's explicit confirmation.
type PendingDelete struct {
	gateway *Gateway
	kind    models.Kind
	id      string
	settled bool
}

// Confirm executes the delete. On failure the record stays visible; nothing
// was removed locally beforehand.
func (p *PendingDelete) Confirm(ctx context.Context) error {
	if p.settled {
		return fmt.Errorf("delete of %s/%s already settled", p.kind, p.id)
	}
	p.settled = true
	if err := p.gateway.records.Remove(ctx, p.kind, p.id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			p.gateway.log.Warn("Delete target already gone.", "kind", p.kind, "id", p.id)
			return fmt.Errorf("delete %s/%s: %w", p.kind, p.id, store.ErrNotFound)
		}
		p.gateway.log.Error("Delete failed.", "kind", p.kind, "id", p.id, "error", err)
		return &RemoteWriteError{Op: "delete", Kind: p.kind, Err: err}
	}
	p.gateway.log.Info("Record deleted.", "kind", p.kind, "id", p.id)
	return nil
}

// Decline abandons the pending delete.
func (p *PendingDelete) Decline() {
	p.settled = true
}
