package mcq

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a staged or published MCQ does not exist.
var ErrNotFound = errors.New("mcq not found")

// SchemaMismatchError means the staging store's header row disagrees with
// the fixed column schema. It indicates external schema drift and is never
// silently skipped.
type SchemaMismatchError struct {
	Col  int // 1-based
	Want string
	Got  string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("header mismatch at col %d: expected %q, got %q", e.Col, e.Want, e.Got)
}

// DuplicateKeyError means an mcq_id appears more than once in the staging
// store. That is store corruption, not a recoverable condition.
type DuplicateKeyError struct {
	MCQID string
	Count int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("sheet corruption: mcq_id %q appears %d times", e.MCQID, e.Count)
}

// UnknownColumnError means a cell update targeted a column outside the
// fixed schema.
type UnknownColumnError struct{ Column string }

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column: %s", e.Column)
}

// RowMatch is a located staging row. RowNumber is the 1-based sheet position
// (header is row 1).
type RowMatch struct {
	RowNumber int
	Row       []string
}

// StagingStore is the narrow adapter over the external tabular staging area.
// The publish engine depends only on these four operations.
type StagingStore interface {
	// AppendRow inserts one row at the end. values must have exactly
	// len(Columns) entries; a mismatch is a programmer error.
	AppendRow(ctx context.Context, values []string) error

	// ReadAllRows returns the full sheet contents including the header row.
	// The backing store may be eventually consistent for reads immediately
	// after writes.
	ReadAllRows(ctx context.Context) ([][]string, error)

	// FindRowByID returns the single row whose key column equals mcqID.
	// Returns ErrNotFound when absent, a DuplicateKeyError when the id
	// appears more than once, and a SchemaMismatchError on header drift.
	FindRowByID(ctx context.Context, mcqID string) (RowMatch, error)

	// SetCell updates one cell of an existing row. column must be in the
	// fixed schema.
	SetCell(ctx context.Context, rowNumber int, column, value string) error
}
