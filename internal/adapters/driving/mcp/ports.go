package mcp

import (
	"github.com/custodia-labs/corpus/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Retrieval finds relevant chunks. Required.
	Retrieval driving.RetrievalService

	// Answer generates grounded replies. Without it the answer tool reports
	// that no LLM is configured.
	Answer driving.AnswerService

	// Project lists projects for the projects resource.
	Project driving.ProjectService

	// Document lists documents within a project.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
