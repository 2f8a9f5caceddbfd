package mcq

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Cache is the slice of the cache layer the MCQ engine needs. Failures are
// the cache's problem: every method is best-effort.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) bool
	Del(ctx context.Context, key string) bool
	DeletePattern(ctx context.Context, pattern string)
}

// Key families invalidated together on any successful publish.
var invalidatedPatterns = []string{
	"mcq:count:published",
	"mcq:page:*",
	"mcq:byId:*",
	"mcq:list:published:*",
}

// PublishResult is the outcome of a single-item publish. Expected failures
// (not found, wrong status, validation) come back as OK=false with a
// human-readable Error; store failures are returned as Go errors.
type PublishResult struct {
	OK             bool     `json:"ok"`
	MCQID          string   `json:"mcq_id,omitempty"`
	CommitHash     string   `json:"commit_hash,omitempty"`
	PublishedBatch string   `json:"published_batch,omitempty"`
	Invalidated    []string `json:"invalidated,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// BatchError records one failed candidate within a batch run.
type BatchError struct {
	MCQID     string `json:"mcq_id"`
	RowNumber int    `json:"rowNumber"`
	Error     string `json:"error"`
}

// BatchOptions controls a batch publish run.
type BatchOptions struct {
	Limit  int
	DryRun bool
}

// BatchResult is the per-run report of a batch publish. OK is true whenever
// the run itself completed; callers must inspect Errors for partial failure.
type BatchResult struct {
	OK             bool         `json:"ok"`
	DryRun         bool         `json:"dryRun"`
	Limit          int          `json:"limit"`
	FoundReady     int          `json:"found_ready"`
	PublishedCount int          `json:"published_count"`
	Published      []string     `json:"published"`
	Errors         []BatchError `json:"errors"`
	CommitHash     string       `json:"commit_hash"`
	PublishedBatch string       `json:"published_batch"`
	UpdatedAt      string       `json:"updated_at"`
	Invalidated    []string     `json:"invalidated"`
}

// Publisher promotes staged MCQs into the durable published store.
type Publisher struct {
	staging StagingStore
	store   PublishedStore
	cache   Cache
	now     func() time.Time
}

func NewPublisher(staging StagingStore, store PublishedStore, cache Cache) *Publisher {
	return &Publisher{staging: staging, store: store, cache: cache, now: time.Now}
}

const isoMillis = "2006-01-02T15:04:05.000Z"

func (p *Publisher) nowIso() string { return p.now().UTC().Format(isoMillis) }

// commitHash is unique per publish operation: UTC timestamp to millisecond
// precision plus 4 random bytes.
func (p *Publisher) commitHash() string {
	ts := p.now().UTC().Format("20060102150405.000")
	ts = strings.Replace(ts, ".", "", 1)
	var b [4]byte
	_, _ = rand.Read(b[:])
	return "c_" + ts + "_" + hex.EncodeToString(b[:])
}

// batchID is stable per publish run: one id per calendar day.
func (p *Publisher) batchID() string {
	return "b_" + p.now().UTC().Format("20060102")
}

func hasContent(text, imageKey string) bool {
	return strings.TrimSpace(text) != "" || strings.TrimSpace(imageKey) != ""
}

// validatePublishable applies the publish rule set. The first violated
// rule's message is the one surfaced.
func validatePublishable(m StagedMCQ) error {
	if strings.TrimSpace(m.MCQID) == "" {
		return errors.New("mcq_id missing")
	}
	if !hasContent(m.StemText, m.StemImageKey) {
		return errors.New("Stem must have text or image")
	}
	switch strings.ToUpper(strings.TrimSpace(m.CorrectOption)) {
	case "A", "B", "C", "D":
	default:
		return errors.New("correct_option must be A/B/C/D")
	}
	if !hasContent(m.OptionAText, m.OptionAImageKey) {
		return errors.New("Option A missing")
	}
	if !hasContent(m.OptionBText, m.OptionBImageKey) {
		return errors.New("Option B missing")
	}
	if !hasContent(m.OptionCText, m.OptionCImageKey) {
		return errors.New("Option C missing")
	}
	if !hasContent(m.OptionDText, m.OptionDImageKey) {
		return errors.New("Option D missing")
	}
	if !hasContent(m.ExplanationText, m.ExplanationImageKey) {
		return errors.New("Explanation must have text or image")
	}
	return nil
}

// snapshot builds the durable payload: the staged row with publish metadata
// stamped and the correct option normalized to uppercase.
func snapshot(m StagedMCQ, commitHash, publishedBatch, updatedAt string) StagedMCQ {
	m.Status = StatusPublished
	m.CorrectOption = strings.ToUpper(strings.TrimSpace(m.CorrectOption))
	m.CommitHash = commitHash
	m.PublishedBatch = publishedBatch
	m.UpdatedAt = updatedAt
	m.IsLatest = true
	return m
}

// PublishOne promotes a single ready staged MCQ. The durable-store write
// happens before the staging write-back; a failed write-back leaves a
// published row whose staging status still says ready, which a later
// (idempotent) publish simply overwrites.
func (p *Publisher) PublishOne(ctx context.Context, mcqID string) (PublishResult, error) {
	found, err := p.staging.FindRowByID(ctx, mcqID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return PublishResult{OK: false, Error: fmt.Sprintf("Not found in staging store: %s", mcqID)}, nil
		}
		return PublishResult{}, err
	}

	staged := RowToStaged(found.Row)
	if strings.TrimSpace(staged.Status) != StatusReady {
		status := strings.TrimSpace(staged.Status)
		if status == "" {
			status = "empty"
		}
		return PublishResult{OK: false, Error: fmt.Sprintf("MCQ must be status=ready to publish (found: %s)", status)}, nil
	}

	if err := validatePublishable(staged); err != nil {
		return PublishResult{OK: false, Error: err.Error()}, nil
	}

	ch := p.commitHash()
	pb := p.batchID()
	updated := p.nowIso()

	if err := p.publishRow(ctx, staged, found.RowNumber, ch, pb, updated); err != nil {
		return PublishResult{}, err
	}

	p.invalidate(ctx)

	return PublishResult{
		OK:             true,
		MCQID:          mcqID,
		CommitHash:     ch,
		PublishedBatch: pb,
		Invalidated:    invalidatedPatterns,
	}, nil
}

// publishRow performs the two writes shared by single and batch publish:
// durable upsert first, then the staging metadata write-back.
func (p *Publisher) publishRow(ctx context.Context, staged StagedMCQ, rowNumber int, commitHash, publishedBatch, updated string) error {
	num, err := ParseMCQNum(staged.MCQID)
	if err != nil {
		return err
	}

	rec := PublishedMCQ{
		MCQNum:         num,
		MCQID:          staged.MCQID,
		Payload:        snapshot(staged, commitHash, publishedBatch, updated),
		CommitHash:     commitHash,
		PublishedBatch: publishedBatch,
	}
	if err := p.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("durable upsert for %s: %w", staged.MCQID, err)
	}

	writebacks := []struct{ column, value string }{
		{"status", StatusPublished},
		{"updated_at", updated},
		{"commit_hash", commitHash},
		{"published_batch", publishedBatch},
		{"is_latest", "TRUE"},
	}
	for _, wb := range writebacks {
		if err := p.staging.SetCell(ctx, rowNumber, wb.column, wb.value); err != nil {
			return fmt.Errorf("staging write-back %s for %s: %w", wb.column, staged.MCQID, err)
		}
	}
	return nil
}

func (p *Publisher) invalidate(ctx context.Context) {
	p.cache.Del(ctx, invalidatedPatterns[0])
	for _, pattern := range invalidatedPatterns[1:] {
		p.cache.DeletePattern(ctx, pattern)
	}
}

// PublishBatch scans the staging store bottom-up for ready rows (newest
// appended first), publishing up to opts.Limit of them under one shared
// commit hash and batch id. A failing candidate never aborts the batch.
func (p *Publisher) PublishBatch(ctx context.Context, opts BatchOptions) (BatchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	values, err := p.staging.ReadAllRows(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{
		OK:             true,
		DryRun:         opts.DryRun,
		Limit:          limit,
		Published:      []string{},
		Errors:         []BatchError{},
		CommitHash:     p.commitHash(),
		PublishedBatch: p.batchID(),
		UpdatedAt:      p.nowIso(),
		Invalidated:    []string{},
	}
	if len(values) < 2 {
		return res, nil
	}

	type candidate struct {
		rowNumber int
		staged    StagedMCQ
	}
	var ready []candidate
	for i := len(values) - 1; i >= 1; i-- {
		staged := RowToStaged(values[i])
		status := strings.ToLower(strings.TrimSpace(staged.Status))
		if status == StatusReady && staged.MCQID != "" {
			ready = append(ready, candidate{rowNumber: i + 1, staged: staged})
			if len(ready) >= limit {
				break
			}
		}
	}
	res.FoundReady = len(ready)

	for _, c := range ready {
		if err := validatePublishable(c.staged); err != nil {
			res.Errors = append(res.Errors, BatchError{MCQID: c.staged.MCQID, RowNumber: c.rowNumber, Error: err.Error()})
			continue
		}
		if !opts.DryRun {
			if err := p.publishRow(ctx, c.staged, c.rowNumber, res.CommitHash, res.PublishedBatch, res.UpdatedAt); err != nil {
				res.Errors = append(res.Errors, BatchError{MCQID: c.staged.MCQID, RowNumber: c.rowNumber, Error: err.Error()})
				continue
			}
		}
		res.Published = append(res.Published, c.staged.MCQID)
	}
	res.PublishedCount = len(res.Published)

	if !opts.DryRun && res.PublishedCount > 0 {
		p.invalidate(ctx)
		res.Invalidated = invalidatedPatterns
	}
	return res, nil
}
