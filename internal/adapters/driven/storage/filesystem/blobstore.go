// Package filesystem stores uploaded document bytes as files under a data directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
)

// refScheme prefixes every content reference produced by BlobStore.
const refScheme = "blob://"

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore writes each upload to <root>/<project>/<uuid><ext>.
type BlobStore struct {
	root string
}

// NewBlobStore creates a blob store rooted at dir.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &BlobStore{root: dir}, nil
}

// Write stores data and returns a reference relative to the root.
func (s *BlobStore) Write(_ context.Context, projectID, name string, data []byte) (string, error) {
	if projectID == "" || strings.ContainsAny(projectID, `/\`) {
		return "", fmt.Errorf("%w: project id %q", domain.ErrInvalidInput, projectID)
	}
	rel := filepath.Join(projectID, uuid.NewString()+strings.ToLower(filepath.Ext(name)))
	full := filepath.Join(s.root, rel)

	if err := os.MkdirAll(filepath.Dir(full), 0700); err != nil {
		return "", fmt.Errorf("creating project blob directory: %w", err)
	}

	// Write to a temp file then rename so a crash never leaves a truncated blob.
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return "", fmt.Errorf("%w: writing blob: %w", domain.ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: committing blob: %w", domain.ErrStoreUnavailable, err)
	}
	return refScheme + filepath.ToSlash(rel), nil
}

// Read returns the bytes behind ref.
func (s *BlobStore) Read(_ context.Context, ref string) ([]byte, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("blob %s: %w", ref, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: reading blob: %w", domain.ErrStoreUnavailable, err)
	}
	return data, nil
}

// Delete removes the bytes behind ref. Missing files are ignored.
func (s *BlobStore) Delete(_ context.Context, ref string) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: deleting blob: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Root returns the directory blobs are stored under.
func (s *BlobStore) Root() string {
	return s.root
}

// resolve maps a reference to a path, rejecting anything outside the root.
func (s *BlobStore) resolve(ref string) (string, error) {
	rel, ok := strings.CutPrefix(ref, refScheme)
	if !ok || rel == "" {
		return "", fmt.Errorf("%w: content ref %q", domain.ErrInvalidInput, ref)
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: content ref %q escapes blob root", domain.ErrInvalidInput, ref)
	}
	return filepath.Join(s.root, clean), nil
}
