package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type Blog struct {
	ID              string
	Topic           string
	Content         string
	AuthorID        string
	WordCount       int
	SourceDocuments int
	Embedding       *pgvector.Vector
	CreatedAt       time.Time
}

type BlogStore struct {
	db *pgxpool.Pool
}

func NewBlogStore(db *pgxpool.Pool) *BlogStore {
	return &BlogStore{db: db}
}

func (s *BlogStore) Create(ctx context.Context, blog *Blog) error {
	if blog.ID == "" {
		blog.ID = uuid.NewString()
	}
	if blog.CreatedAt.IsZero() {
		blog.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO blogs (id, topic, content, author_id, word_count, source_documents, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		blog.ID, blog.Topic, blog.Content, blog.AuthorID,
		blog.WordCount, blog.SourceDocuments, blog.Embedding, blog.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert blog: %w", err)
	}
	return nil
}

func (s *BlogStore) FindByID(ctx context.Context, id string) (*Blog, error) {
	var b Blog
	err := s.db.QueryRow(ctx,
		`SELECT id, topic, content, author_id, word_count, source_documents, created_at
		 FROM blogs WHERE id = $1`, id).
		Scan(&b.ID, &b.Topic, &b.Content, &b.AuthorID, &b.WordCount, &b.SourceDocuments, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query blog: %w", err)
	}
	return &b, nil
}
