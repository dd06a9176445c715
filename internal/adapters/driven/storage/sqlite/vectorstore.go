package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
)

// vectorStore implements driven.VectorStore with brute-force cosine
// scoring over the rows of a single project.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// Upsert deletes and reinserts a document's vectors in one transaction.
func (s *vectorStore) Upsert(ctx context.Context, projectID, documentID string, records []domain.VectorRecord) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM vectors WHERE project_id = ? AND document_id = ?", projectID, documentID); err != nil {
		return unavailable("clearing vectors", err)
	}

	if len(records) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO vectors (project_id, document_id, chunk_id, position, embedding_space,
				vector, text, document_created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return unavailable("preparing statement", err)
		}
		defer stmt.Close()

		for _, r := range records {
			if _, err := stmt.ExecContext(ctx, projectID, documentID, r.ChunkID, r.Position,
				string(r.Space), float32SliceToBytes(r.Vector), r.Text, toNanos(r.DocumentCreatedAt)); err != nil {
				return unavailable("saving vector", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("committing transaction", err)
	}
	return nil
}

// DeleteDocument removes a document's vectors.
func (s *vectorStore) DeleteDocument(ctx context.Context, projectID, documentID string) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM vectors WHERE project_id = ? AND document_id = ?", projectID, documentID); err != nil {
		return unavailable("deleting document vectors", err)
	}
	return nil
}

// DeleteProject removes a project's vectors.
func (s *vectorStore) DeleteProject(ctx context.Context, projectID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM vectors WHERE project_id = ?", projectID); err != nil {
		return unavailable("deleting project vectors", err)
	}
	return nil
}

// Query scores every vector in the project and returns the top k.
func (s *vectorStore) Query(
	ctx context.Context,
	projectID string,
	vector []float32,
	space domain.EmbeddingSpace,
	k int,
) ([]domain.ChunkResult, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT document_id, chunk_id, position, embedding_space, vector, text, document_created_at
		FROM vectors WHERE project_id = ?
	`, projectID)
	if err != nil {
		return nil, unavailable("querying vectors", err)
	}
	defer rows.Close()

	var results []domain.ChunkResult
	for rows.Next() {
		var r domain.ChunkResult
		var recSpace string
		var blob []byte
		var createdAt int64
		if err := rows.Scan(&r.DocumentID, &r.ChunkID, &r.Position, &recSpace, &blob, &r.Text, &createdAt); err != nil {
			return nil, unavailable("scanning vector", err)
		}
		if domain.EmbeddingSpace(recSpace) != space {
			return nil, fmt.Errorf("%w: project %s stores %s, query uses %s",
				domain.ErrEmbeddingSpaceMismatch, projectID, recSpace, space)
		}
		r.Score = domain.CosineSimilarity(vector, bytesToFloat32Slice(blob))
		r.DocumentCreatedAt = fromNanos(createdAt)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating vectors", err)
	}

	return domain.RankResults(results, k), nil
}

// Count returns the number of vectors for a document, or the whole project.
func (s *vectorStore) Count(ctx context.Context, projectID, documentID string) (int, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM vectors
		WHERE project_id = ? AND (? = '' OR document_id = ?)
	`, projectID, documentID, documentID).Scan(&n)
	if err != nil {
		return 0, unavailable("counting vectors", err)
	}
	return n, nil
}
