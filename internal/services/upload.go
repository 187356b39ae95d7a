package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/medicare-app/recordsync/internal/models"
	"github.com/medicare-app/recordsync/internal/store"
)

// UploadState is one stage of the two-phase document save. The machine is
// linear; the two failure states are terminal for the attempt and a new
// Pick starts over.
type UploadState string

const (
	StateIdle                UploadState = "Idle"
	StateFilePicked          UploadState = "FilePicked"
	StateBlobUploading       UploadState = "BlobUploading"
	StateBlobUploaded        UploadState = "BlobUploaded"
	StateMetadataWriting     UploadState = "MetadataWriting"
	StateCommitted           UploadState = "Committed"
	StateBlobUploadFailed    UploadState = "BlobUploadFailed"
	StateMetadataWriteFailed UploadState = "MetadataWriteFailed"
)

// FilePick is the file the user selected for upload.
type FilePick struct {
	Name        string
	ContentType string
	Content     []byte
}

// UploadTransaction performs the two-step document save (blob first, then
// metadata) and the symmetric two-step delete (blob first, then metadata).
// If the metadata write fails the already-uploaded blob is left orphaned;
// no compensating delete runs, matching the store's observable behavior.
type UploadTransaction struct {
	records store.RecordStore
	blobs   store.BlobStore
	uid     string
	log     *slog.Logger
	now     func() time.Time

	mu    sync.Mutex
	state UploadState
	pick  *FilePick
	busy  bool
}

func NewUploadTransaction(records store.RecordStore, blobs store.BlobStore, uid string, log *slog.Logger, now func() time.Time) *UploadTransaction {
	if log == nil {
		log = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &UploadTransaction{
		records: records,
		blobs:   blobs,
		uid:     uid,
		log:     log,
		now:     now,
		state:   StateIdle,
	}
}

// State reports the current stage for the presentation layer.
func (t *UploadTransaction) State() UploadState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Busy is the loading flag shown during save and delete.
func (t *UploadTransaction) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.busy
}

// Pick records the user's file selection. A nil pick is a cancellation and
// returns the machine to Idle with no side effect.
func (t *UploadTransaction) Pick(file *FilePick) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if file == nil {
		t.pick = nil
		t.state = StateIdle
		return
	}
	t.pick = file
	t.state = StateFilePicked
}

// BlobPath derives the storage path for a pick, unique per owner, upload
// instant and original file name.
func BlobPath(uid string, ts time.Time, fileName string) string {
	return fmt.Sprintf("documents/%s/%d_%s", uid, ts.UnixMilli(), fileName)
}

// Save runs the upload: write the blob, then persist the metadata record
// referencing it. If the blob write fails no metadata record is created; if
// the metadata write fails the blob stays behind as an orphan and the error
// is surfaced.
func (t *UploadTransaction) Save(ctx context.Context, category string) (*models.Document, error) {
	t.mu.Lock()
	if t.state != StateFilePicked || t.pick == nil {
		t.mu.Unlock()
		return nil, fmt.Errorf("no file picked (state %s)", t.state)
	}
	if t.uid == "" {
		t.mu.Unlock()
		return nil, fmt.Errorf("no signed-in user")
	}
	pick := t.pick
	t.busy = true
	t.state = StateBlobUploading
	t.mu.Unlock()
	defer t.setBusy(false)

	path := BlobPath(t.uid, t.now(), pick.Name)

	if err := t.blobs.Put(ctx, path, bytes.NewReader(pick.Content), pick.ContentType); err != nil {
		t.setState(StateBlobUploadFailed)
		t.log.Error("Blob upload failed.", "path", path, "error", err)
		return nil, fmt.Errorf("upload blob %s: %w", path, err)
	}
	t.setState(StateBlobUploaded)

	doc := &models.Document{
		OwnerID:   t.uid,
		Name:      strings.TrimSuffix(pick.Name, filepath.Ext(pick.Name)),
		Category:  category,
		FileType:  fileTypeLabel(pick.ContentType),
		SizeLabel: sizeLabel(len(pick.Content)),
		BlobURL:   t.blobs.PublicURL(path),
		BlobPath:  path,
		Date:      t.now().Format("2006-01-02"),
	}
	if pick.ContentType == "application/pdf" {
		pages, err := pdfPageCount(pick.Content)
		if err != nil {
			// Inspection is best-effort; an odd PDF still uploads.
			t.log.Warn("PDF inspection failed.", "name", pick.Name, "error", err)
		} else {
			doc.PageCount = pages
		}
	}

	t.setState(StateMetadataWriting)
	id, err := t.records.Insert(ctx, doc)
	if err != nil {
		t.setState(StateMetadataWriteFailed)
		t.log.Error("Metadata write failed; blob is orphaned.", "path", path, "error", err)
		return nil, fmt.Errorf("write document metadata for %s: %w", path, err)
	}
	doc.SetRecordID(id)

	t.setState(StateCommitted)
	t.mu.Lock()
	t.pick = nil
	t.mu.Unlock()
	t.log.Info("Document uploaded.", "id", id, "path", path, "category", category)
	return doc, nil
}

// Delete removes a document blob-first. If the blob delete fails the
// metadata record is kept, so no metadata ever references a missing blob.
// If the metadata delete then fails, the stale record is surfaced to the
// user, who may retry.
func (t *UploadTransaction) Delete(ctx context.Context, doc *models.Document) error {
	t.setBusy(true)
	defer t.setBusy(false)

	if err := t.blobs.Remove(ctx, doc.BlobPath); err != nil {
		t.log.Error("Blob delete failed; metadata kept.", "path", doc.BlobPath, "error", err)
		return fmt.Errorf("delete blob %s: %w", doc.BlobPath, err)
	}
	if err := t.records.Remove(ctx, models.KindDocument, doc.RecordID()); err != nil {
		t.log.Error("Metadata delete failed after blob removal.", "id", doc.RecordID(), "error", err)
		return fmt.Errorf("delete document metadata %s: %w", doc.RecordID(), err)
	}
	t.log.Info("Document deleted.", "id", doc.RecordID(), "path", doc.BlobPath)
	return nil
}

func (t *UploadTransaction) setState(s UploadState) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

func (t *UploadTransaction) setBusy(b bool) {
	t.mu.Lock()
	t.busy = b
	t.mu.Unlock()
}

// fileTypeLabel turns a MIME type into the short label shown on the card,
// e.g. "application/pdf" -> "PDF".
func fileTypeLabel(contentType string) string {
	if contentType == "" {
		return "BIN"
	}
	_, sub, found := strings.Cut(contentType, "/")
	if !found || sub == "" {
		return strings.ToUpper(contentType)
	}
	return strings.ToUpper(sub)
}

// sizeLabel renders the byte size as the card's "%.2f MB" label.
func sizeLabel(n int) string {
	return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
}

func pdfPageCount(content []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(content), conf)
}
