package driven

import "context"

// BlobStore holds raw upload bytes behind opaque content references.
type BlobStore interface {
	// Write stores data and returns its content reference.
	Write(ctx context.Context, projectID, name string, data []byte) (string, error)

	// Read returns the bytes behind ref. Missing refs wrap domain.ErrNotFound.
	Read(ctx context.Context, ref string) ([]byte, error)

	// Delete removes the bytes behind ref. Deleting a missing ref is a no-op.
	Delete(ctx context.Context, ref string) error
}
