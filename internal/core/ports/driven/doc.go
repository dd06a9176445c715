// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - Extractor, ExtractorRegistry: raw bytes to text
//   - PostProcessor, PostProcessorPipeline: text to ordered chunks
//   - EmbeddingService: text to vector in one embedding space
//   - LLMService: prompt to text
//   - VectorStore: project-scoped vector records
//   - ProjectStore, DocumentStore, MessageStore: record persistence
//   - BlobStore: raw upload bytes
//   - ConfigStore, PromptStore: configuration and prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, extractor, or post-processor package
package driven
