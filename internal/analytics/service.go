package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"time"
)

type Summary struct {
	TotalAnswered int    `json:"totalAnswered"`
	TotalCorrect  int    `json:"totalCorrect"`
	Accuracy      int    `json:"accuracy"` // percent, rounded
	FirstSeen     *int64 `json:"firstSeen"`
	LastSeen      *int64 `json:"lastSeen"`
}

type TopicStat struct {
	Topic    string `json:"topic"`
	Answered int    `json:"answered"`
	Correct  int    `json:"correct"`
	Accuracy int    `json:"accuracy"`
}

type TimelineDay struct {
	Date     string `json:"date"` // YYYY-MM-DD (UTC)
	Answered int    `json:"answered"`
	Correct  int    `json:"correct"`
	Accuracy int    `json:"accuracy"`
}

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service { return &Service{db: db} }

func (s *Service) Summary(ctx context.Context, userID int64) (Summary, error) {
	row := s.db.QueryRowContext(ctx, `SELECT
		  COUNT(*),
		  COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0),
		  MIN(created_at),
		  MAX(last_seen_at)
		FROM user_mcq_answers
		WHERE user_id = $1`, userID)

	var out Summary
	var first, last sql.NullInt64
	if err := row.Scan(&out.TotalAnswered, &out.TotalCorrect, &first, &last); err != nil {
		return Summary{}, err
	}
	if first.Valid {
		out.FirstSeen = &first.Int64
	}
	if last.Valid {
		out.LastSeen = &last.Int64
	}
	out.Accuracy = percent(out.TotalCorrect, out.TotalAnswered)
	return out, nil
}

// Topics groups a user's answers by the published MCQ's key learning point.
// Answers whose MCQ is no longer published fall under "Unknown".
func (s *Service) Topics(ctx context.Context, userID int64) ([]TopicStat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT a.mcq_id, a.is_correct, m.payload_json
		FROM user_mcq_answers a
		LEFT JOIN mcq m ON m.mcq_id = a.mcq_id
		WHERE a.user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]*TopicStat{}
	for rows.Next() {
		var mcqID string
		var correct sql.NullBool
		var payload sql.NullString
		if err := rows.Scan(&mcqID, &correct, &payload); err != nil {
			return nil, err
		}

		topic := "Unknown"
		if payload.Valid {
			var p struct {
				KeyLearningPoint string `json:"key_learning_point"`
			}
			if json.Unmarshal([]byte(payload.String), &p) == nil && p.KeyLearningPoint != "" {
				topic = p.KeyLearningPoint
			}
		}

		st, ok := stats[topic]
		if !ok {
			st = &TopicStat{Topic: topic}
			stats[topic] = st
		}
		st.Answered++
		if correct.Valid && correct.Bool {
			st.Correct++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]TopicStat, 0, len(stats))
	for _, st := range stats {
		st.Accuracy = percent(st.Correct, st.Answered)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Answered > out[j].Answered })
	return out, nil
}

// Timeline buckets the last N days of answers per UTC day. days is clamped
// to 1..365.
func (s *Service) Timeline(ctx context.Context, userID int64, days int) ([]TimelineDay, error) {
	if days < 1 {
		days = 1
	}
	if days > 365 {
		days = 365
	}
	cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour).Unix()

	rows, err := s.db.QueryContext(ctx, `SELECT last_seen_at, is_correct
		FROM user_mcq_answers
		WHERE user_id = $1 AND last_seen_at >= $2`, userID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type bucket struct{ answered, correct int }
	buckets := map[string]*bucket{}
	for rows.Next() {
		var seen int64
		var correct sql.NullBool
		if err := rows.Scan(&seen, &correct); err != nil {
			return nil, err
		}
		day := time.Unix(seen, 0).UTC().Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.answered++
		if correct.Valid && correct.Bool {
			b.correct++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]TimelineDay, 0, len(buckets))
	for day, b := range buckets {
		out = append(out, TimelineDay{
			Date:     day,
			Answered: b.answered,
			Correct:  b.correct,
			Accuracy: percent(b.correct, b.answered),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func percent(correct, answered int) int {
	if answered == 0 {
		return 0
	}
	return int(float64(correct)/float64(answered)*100 + 0.5)
}
