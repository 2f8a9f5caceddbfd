package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/neuropulse/neuropulse-server/internal/auth"
	"github.com/neuropulse/neuropulse-server/internal/cache"
)

// ErrNotFound is returned when a user id has no row.
var ErrNotFound = errors.New("user not found")

type User struct {
	ID          int64  `json:"id"`
	GoogleSub   string `json:"google_sub"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Picture     string `json:"picture"`
	CreatedAt   int64  `json:"created_at"`
	LastLoginAt int64  `json:"last_login_at"`
}

type Service struct {
	db    *sql.DB
	cache *cache.Cache
}

func NewService(db *sql.DB, c *cache.Cache) *Service {
	return &Service{db: db, cache: c}
}

// UpsertFromGoogle creates or refreshes the user row for a verified Google
// payload. A cached entry short-circuits the upsert (and the last_login
// bump), matching the login fast path.
func (s *Service) UpsertFromGoogle(ctx context.Context, p auth.GooglePayload) (User, error) {
	var cached User
	if s.cache.GetJSON(ctx, cache.UserBySubKey(p.Sub), &cached) {
		return cached, nil
	}

	now := time.Now().Unix()
	row := s.db.QueryRowContext(ctx, `INSERT INTO users (google_sub, email, name, picture, created_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (google_sub) DO UPDATE SET
		  email = EXCLUDED.email,
		  name = EXCLUDED.name,
		  picture = EXCLUDED.picture,
		  last_login_at = EXCLUDED.last_login_at
		RETURNING id, google_sub, email, name, picture, created_at, last_login_at`,
		p.Sub, p.Email, p.Name, p.Picture, now)

	var u User
	if err := row.Scan(&u.ID, &u.GoogleSub, &u.Email, &u.Name, &u.Picture, &u.CreatedAt, &u.LastLoginAt); err != nil {
		return User{}, err
	}

	s.cache.SetJSON(ctx, cache.UserBySubKey(u.GoogleSub), u, cache.TTLUser)
	s.cache.SetJSON(ctx, cache.UserByIDKey(u.ID), u, cache.TTLUser)
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	var cached User
	if s.cache.GetJSON(ctx, cache.UserByIDKey(id), &cached) {
		return cached, nil
	}

	row := s.db.QueryRowContext(ctx, `SELECT id, google_sub, email, name, picture, created_at, last_login_at
		FROM users WHERE id = $1`, id)
	var u User
	if err := row.Scan(&u.ID, &u.GoogleSub, &u.Email, &u.Name, &u.Picture, &u.CreatedAt, &u.LastLoginAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	s.cache.SetJSON(ctx, cache.UserByIDKey(u.ID), u, cache.TTLUser)
	s.cache.SetJSON(ctx, cache.UserBySubKey(u.GoogleSub), u, cache.TTLUser)
	return u, nil
}
