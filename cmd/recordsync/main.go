// recordsync is the sync agent behind the MediCare screens: it opens one
// live query per record kind for the signed-in user, mirrors every snapshot
// into a local projection and exposes the mutation and upload paths the
// screens drive.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/medicare-app/recordsync/internal/app"
	"github.com/medicare-app/recordsync/internal/config"
	"github.com/medicare-app/recordsync/internal/gcp"
	"github.com/medicare-app/recordsync/internal/models"
	"github.com/medicare-app/recordsync/internal/services"
	"github.com/medicare-app/recordsync/internal/session"
	"github.com/medicare-app/recordsync/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration.", "error", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := buildSession(cfg.Auth)
	if err != nil {
		logger.Error("Failed to establish session.", "error", err)
		os.Exit(1)
	}

	records, blobs, err := buildStores(ctx, cfg.Store)
	if err != nil {
		logger.Error("Failed to create store clients.", "error", err)
		os.Exit(1)
	}

	screens := []*services.Screen{
		services.NewUpcomingPreview(records, sess, logger, time.Now),
	}
	for _, kind := range models.Kinds() {
		screens = append(screens, services.NewScreen(kind, records, sess, logger))
	}
	for _, screen := range screens {
		sc := screen
		sc.SetOnUpdate(func(snap store.Snapshot) {
			logger.Debug("Snapshot applied.", "records", len(snap))
		})
	}

	if uid, ok := sess.CurrentUserID(); ok {
		upload := services.NewUploadTransaction(records, blobs, uid, logger, time.Now)
		logger.Info("Sync agent starting.",
			"userId", uid,
			"driver", cfg.Store.Driver,
			"uploadState", upload.State(),
		)
	} else {
		logger.Info("No identity configured; screens stay empty.")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, screen := range screens {
		sc := screen
		g.Go(func() error { return sc.Run(gctx) })
	}
	if err := g.Wait(); err != nil {
		logger.Error("Sync agent stopped with error.", "error", err)
		os.Exit(1)
	}
	logger.Info("Sync agent stopped.")
}

func buildSession(cfg config.AuthConfig) (*session.Session, error) {
	if cfg.IDToken != "" {
		return session.FromIDToken(cfg.IDToken, time.Now())
	}
	return session.New(cfg.UserID), nil
}

func buildStores(ctx context.Context, cfg config.StoreConfig) (store.RecordStore, store.BlobStore, error) {
	if cfg.Driver == "memory" {
		return store.NewMemoryStore(), store.NewMemoryBlobStore(), nil
	}
	fsClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	gcsClient, err := gcp.NewStorageClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	return store.NewFirestoreStore(fsClient), store.NewGCSBlobStore(gcsClient, cfg.Bucket), nil
}
