// Package store persists enriched page records as markdown chunks in
// PostgreSQL, keyed by a caller-supplied file id. The embedding stage
// downstream consumes these rows; computing the vectors themselves is
// outside this service.
//
// The store accepts an externally-owned *pgxpool.Pool via constructor
// injection. The caller creates and closes the pool.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lllllllleong/pdfpageflow/internal/models"
)

// PageStore writes per-page markdown chunks for a document.
type PageStore struct {
	pool    *pgxpool.Pool
	chunker *MarkdownChunker
}

// New creates a PageStore using an existing pool and chunk byte budget.
func New(pool *pgxpool.Pool, chunkSizeBytes int) *PageStore {
	return &PageStore{
		pool:    pool,
		chunker: NewMarkdownChunker(chunkSizeBytes),
	}
}

// Init creates the chunk table and its lookup index. Safe to call
// multiple times.
func (s *PageStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS document_page_chunks (
			id TEXT PRIMARY KEY,
			file_id TEXT NOT NULL,
			file_name TEXT NOT NULL DEFAULT '',
			page_number INT NOT NULL,
			chunk_index INT NOT NULL,
			content TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_document_page_chunks_file_id
			ON document_page_chunks (file_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize page store: %w", err)
		}
	}
	return nil
}

// ReplaceDocument atomically replaces every chunk stored for fileID with
// the chunked content of the given pages. Re-processing a file therefore
// never leaves stale rows behind.
func (s *PageStore) ReplaceDocument(ctx context.Context, fileID, fileName string, pages []models.PageRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM document_page_chunks WHERE file_id = $1`, fileID)
	if err != nil {
		return fmt.Errorf("failed to clear existing chunks for %s: %w", fileID, err)
	}
	if tag.RowsAffected() > 0 {
		slog.Info("Cleared existing chunks.", "fileId", fileID, "deleted", tag.RowsAffected())
	}

	now := time.Now().UnixMilli()
	var inserted int
	for _, page := range pages {
		for chunkIndex, chunk := range s.chunker.Chunk(page.Markdown) {
			_, err := tx.Exec(ctx,
				`INSERT INTO document_page_chunks
					(id, file_id, file_name, page_number, chunk_index, content, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				uuid.NewString(), fileID, fileName, page.PageNumber, chunkIndex, chunk, now,
			)
			if err != nil {
				return fmt.Errorf("failed to insert chunk for page %d: %w", page.PageNumber, err)
			}
			inserted++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit chunk replacement: %w", err)
	}
	slog.Info("Stored document chunks.", "fileId", fileID, "fileName", fileName, "pages", len(pages), "chunks", inserted)
	return nil
}
