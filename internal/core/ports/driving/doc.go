// Package driving defines the ports the CLI and the MCP server call into:
// projects, documents, ingestion, retrieval, answers, chat and settings.
//
// Implementations live in internal/core/services.
package driving
