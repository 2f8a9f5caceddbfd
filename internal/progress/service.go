package progress

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/neuropulse/neuropulse-server/internal/cache"
)

// How many recent answers the dashboard shows.
const recentLimit = 50

type Answer struct {
	UserID     int64   `json:"user_id"`
	MCQID      string  `json:"mcq_id"`
	LastAnswer *string `json:"last_answer"`
	IsCorrect  *bool   `json:"is_correct"`
	Attempts   int     `json:"attempts"`
	LastSeenAt int64   `json:"last_seen_at"`
	CreatedAt  int64   `json:"created_at"`
}

type State struct {
	UserID        int64   `json:"user_id"`
	LastMCQID     *string `json:"last_mcq_id"`
	LastPage      int     `json:"last_page"`
	LastUpdatedAt int64   `json:"last_updated_at"`
}

// Progress is the aggregate a user's dashboard renders.
type Progress struct {
	State         *State   `json:"state"`
	RecentAnswers []Answer `json:"recentAnswers"`
}

type SaveInput struct {
	UserID      int64
	MCQID       string
	Answer      *string
	IsCorrect   *bool
	CurrentPage *int
}

type Service struct {
	db    *sql.DB
	cache *cache.Cache
}

func NewService(db *sql.DB, c *cache.Cache) *Service {
	return &Service{db: db, cache: c}
}

// Get returns the cached aggregate, rebuilding it from the DB on miss.
func (s *Service) Get(ctx context.Context, userID int64) (Progress, error) {
	key := cache.UserProgressKey(userID)
	var cached Progress
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	state, err := s.getState(ctx, userID)
	if err != nil {
		return Progress{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT user_id, mcq_id, last_answer, is_correct, attempts, last_seen_at, created_at
		FROM user_mcq_answers
		WHERE user_id = $1
		ORDER BY last_seen_at DESC
		LIMIT $2`, userID, recentLimit)
	if err != nil {
		return Progress{}, err
	}
	defer rows.Close()

	answers := []Answer{}
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.UserID, &a.MCQID, &a.LastAnswer, &a.IsCorrect, &a.Attempts, &a.LastSeenAt, &a.CreatedAt); err != nil {
			return Progress{}, err
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return Progress{}, err
	}

	out := Progress{State: state, RecentAnswers: answers}
	s.cache.SetJSON(ctx, key, out, cache.TTLProgress)
	return out, nil
}

// Save writes an answer through to the DB (attempts increment on conflict),
// updates the user's resume state, refreshes the fine-grained caches and
// drops the aggregate so the next Get rebuilds it.
func (s *Service) Save(ctx context.Context, in SaveInput) (Answer, *State, error) {
	now := time.Now().Unix()

	row := s.db.QueryRowContext(ctx, `INSERT INTO user_mcq_answers (user_id, mcq_id, last_answer, is_correct, attempts, last_seen_at, created_at)
		VALUES ($1, $2, $3, $4, 1, $5, $5)
		ON CONFLICT (user_id, mcq_id) DO UPDATE SET
		  last_answer = EXCLUDED.last_answer,
		  is_correct = EXCLUDED.is_correct,
		  attempts = user_mcq_answers.attempts + 1,
		  last_seen_at = EXCLUDED.last_seen_at
		RETURNING user_id, mcq_id, last_answer, is_correct, attempts, last_seen_at, created_at`,
		in.UserID, in.MCQID, in.Answer, in.IsCorrect, now)

	var a Answer
	if err := row.Scan(&a.UserID, &a.MCQID, &a.LastAnswer, &a.IsCorrect, &a.Attempts, &a.LastSeenAt, &a.CreatedAt); err != nil {
		return Answer{}, nil, err
	}

	var state *State
	var err error
	if in.CurrentPage != nil {
		state, err = s.upsertState(ctx, in.UserID, in.MCQID, *in.CurrentPage, now)
	} else {
		state, err = s.upsertStateKeepPage(ctx, in.UserID, in.MCQID, now)
	}
	if err != nil {
		return Answer{}, nil, err
	}

	s.cache.SetJSON(ctx, cache.AnswerKey(in.UserID, in.MCQID), a, cache.TTLAnswer)
	s.cache.SetJSON(ctx, cache.UserStateKey(in.UserID), state, cache.TTLState)
	s.cache.Del(ctx, cache.UserProgressKey(in.UserID))

	return a, state, nil
}

// GetAnswer returns one user/MCQ answer, cache-first. A missing row comes
// back as (nil, nil).
func (s *Service) GetAnswer(ctx context.Context, userID int64, mcqID string) (*Answer, error) {
	key := cache.AnswerKey(userID, mcqID)
	var cached Answer
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	row := s.db.QueryRowContext(ctx, `SELECT user_id, mcq_id, last_answer, is_correct, attempts, last_seen_at, created_at
		FROM user_mcq_answers
		WHERE user_id = $1 AND mcq_id = $2`, userID, mcqID)
	var a Answer
	if err := row.Scan(&a.UserID, &a.MCQID, &a.LastAnswer, &a.IsCorrect, &a.Attempts, &a.LastSeenAt, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	s.cache.SetJSON(ctx, key, a, cache.TTLAnswer)
	return &a, nil
}

// GetState returns the user's resume state, cache-first; nil when absent.
func (s *Service) GetState(ctx context.Context, userID int64) (*State, error) {
	key := cache.UserStateKey(userID)
	var cached State
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}
	st, err := s.getState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st != nil {
		s.cache.SetJSON(ctx, key, st, cache.TTLState)
	}
	return st, nil
}

func (s *Service) getState(ctx context.Context, userID int64) (*State, error) {
	row := s.db.QueryRowContext(ctx, `SELECT user_id, last_mcq_id, last_page, last_updated_at
		FROM user_state WHERE user_id = $1`, userID)
	var st State
	if err := row.Scan(&st.UserID, &st.LastMCQID, &st.LastPage, &st.LastUpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

func (s *Service) upsertState(ctx context.Context, userID int64, mcqID string, page int, now int64) (*State, error) {
	row := s.db.QueryRowContext(ctx, `INSERT INTO user_state (user_id, last_mcq_id, last_page, last_updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
		  last_mcq_id = EXCLUDED.last_mcq_id,
		  last_page = EXCLUDED.last_page,
		  last_updated_at = EXCLUDED.last_updated_at
		RETURNING user_id, last_mcq_id, last_page, last_updated_at`,
		userID, mcqID, page, now)
	var st State
	if err := row.Scan(&st.UserID, &st.LastMCQID, &st.LastPage, &st.LastUpdatedAt); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Service) upsertStateKeepPage(ctx context.Context, userID int64, mcqID string, now int64) (*State, error) {
	row := s.db.QueryRowContext(ctx, `INSERT INTO user_state (user_id, last_mcq_id, last_page, last_updated_at)
		VALUES ($1, $2, COALESCE((SELECT last_page FROM user_state WHERE user_id=$1), 0), $3)
		ON CONFLICT (user_id) DO UPDATE SET
		  last_mcq_id = EXCLUDED.last_mcq_id,
		  last_updated_at = EXCLUDED.last_updated_at
		RETURNING user_id, last_mcq_id, last_page, last_updated_at`,
		userID, mcqID, now)
	var st State
	if err := row.Scan(&st.UserID, &st.LastMCQID, &st.LastPage, &st.LastUpdatedAt); err != nil {
		return nil, err
	}
	return &st, nil
}
