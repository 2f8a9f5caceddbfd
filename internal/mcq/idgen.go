package mcq

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// IDPrefix is the fixed prefix of every MCQ identifier.
const IDPrefix = "NEURO_"

var idPattern = regexp.MustCompile(`^NEURO_(\d{6})$`)

// AllocatedID is a freshly drawn identifier from the durable sequence.
type AllocatedID struct {
	Num int
	ID  string
}

// Allocator issues monotonically increasing MCQ identifiers.
type Allocator interface {
	AllocateID(ctx context.Context) (AllocatedID, error)
}

// FormatMCQID renders a sequence value as a fixed-width identifier.
func FormatMCQID(n int) string {
	return fmt.Sprintf("%s%06d", IDPrefix, n)
}

// IsWellFormedID reports whether id matches the exact fixed-width pattern.
func IsWellFormedID(id string) bool {
	return idPattern.MatchString(strings.TrimSpace(id))
}

// ParseMCQNum extracts the numeric suffix used as the durable-store key.
func ParseMCQNum(id string) (int, error) {
	m := idPattern.FindStringSubmatch(strings.TrimSpace(id))
	if m == nil {
		return 0, fmt.Errorf("invalid mcq_id: %s", id)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("invalid mcq_id: %s", id)
	}
	return n, nil
}

// AllocateID draws the next value from the mcq sequence. The increment is
// atomic at the storage layer, so concurrent callers never share a value.
func (s *SQLStore) AllocateID(ctx context.Context) (AllocatedID, error) {
	var q string
	switch s.driver {
	case "postgres":
		q = `SELECT nextval('mcq_seq')::int`
	default: // sqlite counter table
		q = `UPDATE mcq_seq SET value = value + 1 WHERE id = 1 RETURNING value`
	}
	var n int
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AllocatedID{}, errors.New("mcq sequence not initialized")
		}
		return AllocatedID{}, err
	}
	return AllocatedID{Num: n, ID: FormatMCQID(n)}, nil
}
