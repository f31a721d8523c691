package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"chronos/internal/platform/db"
)

// EnsureSuperuser creates the super_admin account when the users table has
// none. An existing password is never rotated.
func (s *Store) EnsureSuperuser(ctx context.Context, username, password string, logger *zap.Logger) error {
	password = strings.TrimSpace(password)
	if password == "" {
		return nil
	}
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()

	var existing int64
	err := s.DB.QueryRow(ctx, "SELECT id FROM users WHERE role = $1 ORDER BY id LIMIT 1", RoleSuperAdmin).Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return db.Classify(err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	var id int64
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO users (username, password_hash, role)
    VALUES ($1, $2, $3)
    ON CONFLICT (username) DO NOTHING
    RETURNING id
  `, username, hash, RoleSuperAdmin).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return db.Classify(err)
	}
	logger.Info("superuser seeded", zap.Int64("user_id", id), zap.String("username", username))
	return nil
}
