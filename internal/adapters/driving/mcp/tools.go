package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/corpus/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	ProjectID string `json:"project_id" jsonschema:"the project to search"`
	Query     string `json:"query" jsonschema:"natural language query"`
	K         int    `json:"k,omitempty" jsonschema:"maximum number of passages to return (default from settings)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []PassageOutput `json:"results"`
	Count   int             `json:"count"`
}

// PassageOutput represents a single retrieved chunk.
type PassageOutput struct {
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Position   int     `json:"position"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
}

// AnswerInput is the input schema for the answer tool.
type AnswerInput struct {
	ProjectID string `json:"project_id" jsonschema:"the project whose documents ground the answer"`
	Question  string `json:"question" jsonschema:"the question to answer"`
}

// AnswerOutput is the output schema for the answer tool.
type AnswerOutput struct {
	Answer   string          `json:"answer"`
	Grounded bool            `json:"grounded"`
	Sources  []PassageOutput `json:"sources"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	ProjectID string `json:"project_id" jsonschema:"the project to list"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput summarises one document.
type DocumentOutput struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MIMEType      string `json:"mime_type,omitempty"`
	Status        string `json:"status"`
	Chunks        int    `json:"chunks"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the passages in a project's documents most relevant to a query",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "answer",
		Description: "Answer a question using only the documents of a project",
	}, s.handleAnswer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the documents of a project with their indexing status",
	}, s.handleListDocuments)
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	results, err := s.ports.Retrieval.Retrieve(ctx, input.ProjectID, input.Query, input.K)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	return nil, RetrieveOutput{
		Results: toPassages(results),
		Count:   len(results),
	}, nil
}

func (s *Server) handleAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	if s.ports.Answer == nil {
		return nil, AnswerOutput{}, domain.ErrLLMUnavailable
	}

	answer, err := s.ports.Answer.AnswerWithSources(ctx, input.ProjectID, nil, input.Question)
	if err != nil {
		return nil, AnswerOutput{}, err
	}

	return nil, AnswerOutput{
		Answer:   answer.Text,
		Grounded: answer.Grounded,
		Sources:  toPassages(answer.Sources),
	}, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Document == nil {
		return nil, ListDocumentsOutput{Documents: []DocumentOutput{}}, nil
	}

	docs, err := s.ports.Document.List(ctx, input.ProjectID)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = toDocument(&docs[i])
	}
	return nil, output, nil
}

func toPassages(results []domain.ChunkResult) []PassageOutput {
	out := make([]PassageOutput, len(results))
	for i, r := range results {
		out[i] = PassageOutput{
			DocumentID: r.DocumentID,
			ChunkID:    r.ChunkID,
			Position:   r.Position,
			Score:      r.Score,
			Text:       r.Text,
		}
	}
	return out
}

func toDocument(doc *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:            doc.ID,
		Name:          doc.Name,
		MIMEType:      doc.MIMEType,
		Status:        doc.Status.String(),
		Chunks:        doc.ChunkCount,
		FailureReason: doc.FailureReason,
	}
}
