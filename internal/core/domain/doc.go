// Package domain defines the core business entities for corpus.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Project: An owner's knowledge corpus
//   - Document: An uploaded file and its indexing status
//   - Chunk: A contiguous span of extracted text, the unit of embedding
//   - Message: One turn of a project conversation
//   - VectorRecord: A stored embedding tagged with its embedding space
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
