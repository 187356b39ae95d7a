package services

import (
	"fmt"
	"strings"

	"github.com/medicare-app/recordsync/internal/models"
)

// ValidationError reports which required fields of a draft are empty. It is
// recoverable: the user corrects the input and resubmits; no state changed.
type ValidationError struct {
	Kind    models.Kind
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s draft is missing required fields: %s", e.Kind, strings.Join(e.Missing, ", "))
}

// RemoteWriteError wraps a failed create, update or delete call against the
// record store. It is surfaced to the user and never retried automatically.
type RemoteWriteError struct {
	Op   string
	Kind models.Kind
	Err  error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.Kind, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }
