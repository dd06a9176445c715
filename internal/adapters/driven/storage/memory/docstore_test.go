package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus/internal/core/domain"
)

func TestProjectStore_CRUD(t *testing.T) {
	store := NewProjectStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.SaveProject(ctx, &domain.Project{ID: "p2", OwnerID: "alice", Name: "Two", CreatedAt: now.Add(time.Second)}))
	require.NoError(t, store.SaveProject(ctx, &domain.Project{ID: "p1", OwnerID: "alice", Name: "One", CreatedAt: now}))
	require.NoError(t, store.SaveProject(ctx, &domain.Project{ID: "p3", OwnerID: "bob", Name: "Three", CreatedAt: now}))

	got, err := store.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "One", got.Name)

	alice, err := store.ListProjects(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 2)
	assert.Equal(t, "p1", alice[0].ID)
	assert.Equal(t, "p2", alice[1].ID)

	all, err := store.ListProjects(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, store.DeleteProject(ctx, "p1"))
	_, err = store.GetProject(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_SaveGetUpdate(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := &domain.Document{ID: "doc-1", ProjectID: "p1", Name: "a.txt", Status: domain.StatusPending}
	require.NoError(t, store.SaveDocument(ctx, doc))

	doc.Status = domain.StatusProcessed
	require.NoError(t, store.SaveDocument(ctx, doc))

	got, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessed, got.Status)

	// Returned copies do not alias the store.
	got.Status = domain.StatusFailed
	again, _ := store.GetDocument(ctx, "doc-1")
	assert.Equal(t, domain.StatusProcessed, again.Status)
}

func TestDocumentStore_ListByProjectOrdered(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	now := time.Now()

	_ = store.SaveDocument(ctx, &domain.Document{ID: "late", ProjectID: "p1", CreatedAt: now.Add(time.Minute)})
	_ = store.SaveDocument(ctx, &domain.Document{ID: "early", ProjectID: "p1", CreatedAt: now})
	_ = store.SaveDocument(ctx, &domain.Document{ID: "other", ProjectID: "p2", CreatedAt: now})

	docs, err := store.ListDocuments(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "early", docs[0].ID)
	assert.Equal(t, "late", docs[1].ID)
}

func TestDocumentStore_Delete(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	_ = store.SaveDocument(ctx, &domain.Document{ID: "doc-1", ProjectID: "p1"})
	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))
	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

	_, err := store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
