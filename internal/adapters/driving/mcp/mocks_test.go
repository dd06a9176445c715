package mcp

import (
	"context"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.ChunkResult
	err     error

	projectID string
	query     string
	k         int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, projectID, query string, k int) ([]domain.ChunkResult, error) {
	m.projectID, m.query, m.k = projectID, query, k
	return m.results, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer   *driving.Answer
	err      error
	question string
}

func (m *mockAnswerService) Answer(
	ctx context.Context, projectID string, history []domain.Message, newMessage string,
) (string, error) {
	a, err := m.AnswerWithSources(ctx, projectID, history, newMessage)
	if err != nil {
		return "", err
	}
	return a.Text, nil
}

func (m *mockAnswerService) AnswerWithSources(
	_ context.Context, _ string, _ []domain.Message, newMessage string,
) (*driving.Answer, error) {
	m.question = newMessage
	return m.answer, m.err
}

// mockProjectService is a mock implementation of driving.ProjectService.
type mockProjectService struct {
	projects []domain.Project
	err      error
}

func (m *mockProjectService) Create(_ context.Context, _, _ string) (*domain.Project, error) {
	return nil, m.err
}

func (m *mockProjectService) Get(_ context.Context, _ string) (*domain.Project, error) {
	return nil, m.err
}

func (m *mockProjectService) List(_ context.Context, _ string) ([]domain.Project, error) {
	return m.projects, m.err
}

func (m *mockProjectService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	err       error
}

func (m *mockDocumentService) Upload(_ context.Context, _ driving.UploadRequest) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentService) List(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _, _ string) error {
	return m.err
}
