// Package photostore keeps meal photos. A photo's storage key is what a
// diary entry records as its image reference.
package photostore

import (
	"context"
	"io"
)

type PhotoStore interface {
	// Save stores the photo and returns its storage key. prefix groups keys
	// by what the photo belongs to, e.g. "meal".
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	// Get fails with domain.ErrNotFound for an unknown key.
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}
