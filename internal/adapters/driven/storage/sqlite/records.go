package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
)

// ==================== Project Store ====================

// projectStore implements driven.ProjectStore.
type projectStore struct {
	store *Store
}

var _ driven.ProjectStore = (*projectStore)(nil)

// SaveProject stores or updates a project.
func (s *projectStore) SaveProject(ctx context.Context, project *domain.Project) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO projects (id, owner_id, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			name = excluded.name
	`, project.ID, project.OwnerID, project.Name, toNanos(project.CreatedAt))
	if err != nil {
		return unavailable("saving project", err)
	}
	return nil
}

// GetProject retrieves a project by ID.
func (s *projectStore) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, created_at FROM projects WHERE id = ?
	`, id)

	var p domain.Project
	var createdAt int64
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &createdAt); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, unavailable("scanning project", err)
	}
	p.CreatedAt = fromNanos(createdAt)
	return &p, nil
}

// ListProjects returns projects for an owner, oldest first.
func (s *projectStore) ListProjects(ctx context.Context, ownerID string) ([]domain.Project, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, owner_id, name, created_at FROM projects
		WHERE ? = '' OR owner_id = ?
		ORDER BY created_at, id
	`, ownerID, ownerID)
	if err != nil {
		return nil, unavailable("querying projects", err)
	}
	defer rows.Close()

	var projects []domain.Project //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p domain.Project
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &createdAt); err != nil {
			return nil, unavailable("scanning project", err)
		}
		p.CreatedAt = fromNanos(createdAt)
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating projects", err)
	}
	return projects, nil
}

// DeleteProject removes a project record.
func (s *projectStore) DeleteProject(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id); err != nil {
		return unavailable("deleting project", err)
	}
	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, project_id, name, mime_type, content_ref, status,
	failure_reason, chunk_count, created_at, updated_at`

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			mime_type = excluded.mime_type,
			content_ref = excluded.content_ref,
			status = excluded.status,
			failure_reason = excluded.failure_reason,
			chunk_count = excluded.chunk_count,
			updated_at = excluded.updated_at
	`, doc.ID, doc.ProjectID, doc.Name, doc.MIMEType, doc.ContentRef, string(doc.Status),
		doc.FailureReason, doc.ChunkCount, toNanos(doc.CreatedAt), toNanos(doc.UpdatedAt))
	if err != nil {
		return unavailable("saving document", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, unavailable("scanning document", err)
	}
	return doc, nil
}

// ListDocuments returns documents for a project, oldest first.
func (s *documentStore) ListDocuments(ctx context.Context, projectID string) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE project_id = ?
		ORDER BY created_at, id
	`, projectID)
	if err != nil {
		return nil, unavailable("querying documents", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, unavailable("scanning document", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating documents", err)
	}
	return docs, nil
}

// DeleteDocument removes a document record. The vectors foreign key makes
// this fail while vectors for the document still exist.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return unavailable("deleting document", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var status string
	var createdAt, updatedAt int64
	if err := row.Scan(&doc.ID, &doc.ProjectID, &doc.Name, &doc.MIMEType, &doc.ContentRef,
		&status, &doc.FailureReason, &doc.ChunkCount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	doc.Status = domain.DocumentStatus(status)
	doc.CreatedAt = fromNanos(createdAt)
	doc.UpdatedAt = fromNanos(updatedAt)
	return &doc, nil
}

// ==================== Message Store ====================

// messageStore implements driven.MessageStore.
type messageStore struct {
	store *Store
}

var _ driven.MessageStore = (*messageStore)(nil)

// AppendMessage inserts a message; the autoincrement seq becomes msg.Seq.
func (s *messageStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO messages (id, project_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.ProjectID, string(msg.Role), msg.Content, toNanos(msg.CreatedAt))
	if err != nil {
		return unavailable("saving message", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading message seq: %w", err)
	}
	msg.Seq = seq
	return nil
}

// ListMessages returns a project's messages in conversation order.
func (s *messageStore) ListMessages(ctx context.Context, projectID string) ([]domain.Message, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT seq, id, project_id, role, content, created_at FROM messages
		WHERE project_id = ?
		ORDER BY created_at, seq
	`, projectID)
	if err != nil {
		return nil, unavailable("querying messages", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// RecentMessages returns the last n messages, oldest first.
func (s *messageStore) RecentMessages(ctx context.Context, projectID string, n int) ([]domain.Message, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT seq, id, project_id, role, content, created_at FROM (
			SELECT * FROM messages
			WHERE project_id = ?
			ORDER BY created_at DESC, seq DESC
			LIMIT ?
		) ORDER BY created_at, seq
	`, projectID, n)
	if err != nil {
		return nil, unavailable("querying recent messages", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// DeleteMessages removes every message of a project.
func (s *messageStore) DeleteMessages(ctx context.Context, projectID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM messages WHERE project_id = ?", projectID); err != nil {
		return unavailable("deleting messages", err)
	}
	return nil
}

func scanMessages(rows *sql.Rows) ([]domain.Message, error) {
	var msgs []domain.Message //nolint:prealloc // size unknown from query
	for rows.Next() {
		var m domain.Message
		var role string
		var createdAt int64
		if err := rows.Scan(&m.Seq, &m.ID, &m.ProjectID, &role, &m.Content, &createdAt); err != nil {
			return nil, unavailable("scanning message", err)
		}
		m.Role = domain.Role(role)
		m.CreatedAt = fromNanos(createdAt)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating messages", err)
	}
	return msgs, nil
}
