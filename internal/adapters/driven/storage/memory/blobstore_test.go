package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus/internal/core/domain"
)

func TestBlobStore_WriteReadDelete(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()

	ref, err := store.Write(ctx, "p1", "notes.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Contains(t, ref, "notes.txt")

	data, err := store.Read(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(ctx, ref))
	require.NoError(t, store.Delete(ctx, ref))
	assert.Zero(t, store.Len())

	_, err = store.Read(ctx, ref)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
