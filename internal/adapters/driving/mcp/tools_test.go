package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driving"
)

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns passages", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{
			results: []domain.ChunkResult{
				{DocumentID: "doc-1", ChunkID: "c-1", Position: 2, Text: "Cats are mammals.", Score: 0.91},
			},
		}
		server, err := NewServer(&Ports{Retrieval: mockRetrieval})
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{ProjectID: "p1", Query: "cats", K: 3})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, PassageOutput{
			DocumentID: "doc-1", ChunkID: "c-1", Position: 2, Score: 0.91, Text: "Cats are mammals.",
		}, output.Results[0])
		assert.Equal(t, "p1", mockRetrieval.projectID)
		assert.Equal(t, "cats", mockRetrieval.query)
		assert.Equal(t, 3, mockRetrieval.k)
	})

	t.Run("empty results", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{results: []domain.ChunkResult{}}})
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{ProjectID: "p1", Query: "cats"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Results)
	})

	t.Run("returns error on retrieval failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{err: domain.ErrEmbeddingSpaceMismatch}})
		require.NoError(t, err)

		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{ProjectID: "p1", Query: "cats"})

		assert.ErrorIs(t, err, domain.ErrEmbeddingSpaceMismatch)
	})
}

func TestServer_handleAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with sources", func(t *testing.T) {
		mockAnswer := &mockAnswerService{answer: &driving.Answer{
			Text:     "Cats are mammals [1].",
			Grounded: true,
			Sources:  []domain.ChunkResult{{DocumentID: "doc-1", Text: "Cats are mammals."}},
		}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Answer: mockAnswer})
		require.NoError(t, err)

		_, output, err := server.handleAnswer(ctx, nil, AnswerInput{ProjectID: "p1", Question: "What are cats?"})

		require.NoError(t, err)
		assert.Equal(t, "Cats are mammals [1].", output.Answer)
		assert.True(t, output.Grounded)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "doc-1", output.Sources[0].DocumentID)
		assert.Equal(t, "What are cats?", mockAnswer.question)
	})

	t.Run("no answer service", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, _, err = server.handleAnswer(ctx, nil, AnswerInput{ProjectID: "p1", Question: "q"})

		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})

	t.Run("generation failure", func(t *testing.T) {
		mockAnswer := &mockAnswerService{err: domain.ErrRetrievalUnavailable}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Answer: mockAnswer})
		require.NoError(t, err)

		_, _, err = server.handleAnswer(ctx, nil, AnswerInput{ProjectID: "p1", Question: "q"})

		assert.ErrorIs(t, err, domain.ErrRetrievalUnavailable)
	})
}

func TestServer_handleListDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents", func(t *testing.T) {
		mockDoc := &mockDocumentService{documents: []domain.Document{
			{ID: "doc-1", Name: "cats.txt", MIMEType: "text/plain", Status: domain.StatusProcessed, ChunkCount: 1},
			{ID: "doc-2", Name: "bad.bin", Status: domain.StatusFailed, FailureReason: "unsupported type"},
		}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Document: mockDoc})
		require.NoError(t, err)

		_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{ProjectID: "p1"})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "processed", output.Documents[0].Status)
		assert.Equal(t, 1, output.Documents[0].Chunks)
		assert.Equal(t, "unsupported type", output.Documents[1].FailureReason)
	})

	t.Run("no document service", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{ProjectID: "p1"})

		require.NoError(t, err)
		assert.Empty(t, output.Documents)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		mockDoc := &mockDocumentService{err: errors.New("storage error")}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Document: mockDoc})
		require.NoError(t, err)

		_, _, err = server.handleListDocuments(ctx, nil, ListDocumentsInput{ProjectID: "p1"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage error")
	})
}
