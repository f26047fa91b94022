package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RevokedTokenStore keeps digests of logged-out tokens until they would
// have expired anyway.
type RevokedTokenStore struct {
	db *pgxpool.Pool
}

func NewRevokedTokenStore(db *pgxpool.Pool) *RevokedTokenStore {
	return &RevokedTokenStore{db: db}
}

func (s *RevokedTokenStore) Revoke(ctx context.Context, digest string, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(ctx,
		`INSERT INTO revoked_tokens (token_digest, revoked_at, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (token_digest) DO NOTHING`,
		digest, now, now.Add(ttl))
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *RevokedTokenStore) IsRevoked(ctx context.Context, digest string) (bool, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE token_digest = $1 AND expires_at > now()`,
		digest).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return count > 0, nil
}

// Prune removes revocation entries whose tokens have expired.
func (s *RevokedTokenStore) Prune(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to prune revoked tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
