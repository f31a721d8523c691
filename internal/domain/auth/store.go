package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chronos/internal/platform/db"
)

var (
	ErrNoSuperuser     = errors.New("superuser not found")
	ErrInvalidPassword = errors.New("invalid password")
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
}

type StoreAPI interface {
	FirstUserWithRole(ctx context.Context, role string) (User, error)
}

type Store struct {
	DB      *pgxpool.Pool
	Timeout time.Duration
}

func NewStore(pool *pgxpool.Pool, timeout time.Duration) *Store {
	return &Store{DB: pool, Timeout: timeout}
}

func (s *Store) FirstUserWithRole(ctx context.Context, role string) (User, error) {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()

	var u User
	err := s.DB.QueryRow(ctx, `
    SELECT id, username, password_hash, role
    FROM users
    WHERE role = $1
    ORDER BY id
    LIMIT 1
  `, role).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNoSuperuser
	}
	if err != nil {
		return User{}, db.Classify(err)
	}
	return u, nil
}
