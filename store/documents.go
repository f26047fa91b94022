package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type Document struct {
	ID          int
	Filename    string
	Content     string
	OwnerID     string
	ContentType string
	Embedding   *pgvector.Vector
	UploadedAt  time.Time
}

type DocumentStore struct {
	db *pgxpool.Pool
}

func NewDocumentStore(db *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) Create(ctx context.Context, doc *Document) error {
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO documents (filename, content, owner_id, content_type, embedding, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		doc.Filename, doc.Content, doc.OwnerID, doc.ContentType, doc.Embedding, doc.UploadedAt).
		Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	return nil
}
