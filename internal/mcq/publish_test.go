package mcq_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/neuropulse/neuropulse-server/internal/mcq"
)

/* ---------------- In-memory fakes for StagingStore, PublishedStore and Cache ---------------- */

type cellWrite struct {
	rowNumber int
	column    string
	value     string
}

type fakeStaging struct {
	values     [][]string
	cellWrites []cellWrite
	appended   [][]string
}

func newFakeStaging(rows ...[]string) *fakeStaging {
	header := append([]string{}, mcq.Columns...)
	values := [][]string{header}
	values = append(values, rows...)
	return &fakeStaging{values: values}
}

func (s *fakeStaging) AppendRow(_ context.Context, values []string) error {
	s.appended = append(s.appended, values)
	s.values = append(s.values, values)
	return nil
}

func (s *fakeStaging) ReadAllRows(_ context.Context) ([][]string, error) {
	return s.values, nil
}

func (s *fakeStaging) FindRowByID(_ context.Context, mcqID string) (mcq.RowMatch, error) {
	return mcq.FindRowInValues(s.values, mcqID)
}

func (s *fakeStaging) SetCell(_ context.Context, rowNumber int, column, value string) error {
	idx, err := mcq.ColumnIndex(column)
	if err != nil {
		return err
	}
	row := s.values[rowNumber-1]
	for len(row) <= idx {
		row = append(row, "")
	}
	row[idx] = value
	s.values[rowNumber-1] = row
	s.cellWrites = append(s.cellWrites, cellWrite{rowNumber, column, value})
	return nil
}

type fakePublished struct {
	rows       map[int]mcq.PublishedMCQ
	upserts    int
	getCalls   int
	listCalls  int
	countCalls int
}

func newFakePublished() *fakePublished {
	return &fakePublished{rows: map[int]mcq.PublishedMCQ{}}
}

func (s *fakePublished) Upsert(_ context.Context, rec mcq.PublishedMCQ) error {
	rec.UpdatedAt = time.Now().Unix()
	s.rows[rec.MCQNum] = rec
	s.upserts++
	return nil
}

func (s *fakePublished) GetByID(_ context.Context, mcqID string) (mcq.PublishedMCQ, error) {
	s.getCalls++
	for _, r := range s.rows {
		if r.MCQID == mcqID {
			return r, nil
		}
	}
	return mcq.PublishedMCQ{}, mcq.ErrNotFound
}

func (s *fakePublished) ListPage(_ context.Context, limit, offset int) ([]mcq.PublishedMCQ, error) {
	s.listCalls++
	var out []mcq.PublishedMCQ
	for _, r := range s.rows {
		out = append(out, r)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakePublished) CountPublished(_ context.Context) (int, error) {
	s.countCalls++
	return len(s.rows), nil
}

type fakeCache struct {
	data     map[string]any
	deleted  []string
	patterns []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]any{}}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dest any) bool {
	v, ok := c.data[key]
	if !ok {
		return false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) bool {
	c.data[key] = value
	return true
}

func (c *fakeCache) Del(_ context.Context, key string) bool {
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return true
}

func (c *fakeCache) DeletePattern(_ context.Context, pattern string) {
	c.patterns = append(c.patterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
}

/* ---------------- helpers ---------------- */

func readyRow(id string) []string {
	m := mcq.StagedMCQ{
		MCQID:            id,
		Status:           mcq.StatusReady,
		CreatedAt:        "2026-01-10T09:00:00.000Z",
		UpdatedAt:        "2026-01-10T09:00:00.000Z",
		StemText:         "Which nerve innervates the diaphragm?",
		OptionAText:      "Vagus",
		OptionBText:      "Phrenic",
		OptionCText:      "Accessory",
		OptionDText:      "Hypoglossal",
		CorrectOption:    "b",
		ExplanationText:  "C3, C4 and C5 supply the phrenic nerve.",
		KeyLearningPoint: "Phrenic nerve anatomy",
		Author:           "drk",
	}
	return mcq.StagedToRow(m)
}

func setCol(t *testing.T, row []string, column, value string) {
	t.Helper()
	idx, err := mcq.ColumnIndex(column)
	if err != nil {
		t.Fatal(err)
	}
	row[idx] = value
}

func newPublisher(staging *fakeStaging, store *fakePublished, cache *fakeCache) *mcq.Publisher {
	return mcq.NewPublisher(staging, store, cache)
}

/* ---------------- single publish ---------------- */

func TestPublishOnePromotesReadyRow(t *testing.T) {
	staging := newFakeStaging(readyRow("NEURO_000042"))
	store := newFakePublished()
	cache := newFakeCache()
	pub := newPublisher(staging, store, cache)

	res, err := pub.PublishOne(context.Background(), "NEURO_000042")
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK {
		t.Fatalf("expected OK, got error %q", res.Error)
	}
	if !strings.HasPrefix(res.CommitHash, "c_") {
		t.Errorf("commit hash %q missing c_ prefix", res.CommitHash)
	}
	wantBatch := "b_" + time.Now().UTC().Format("20060102")
	if res.PublishedBatch != wantBatch {
		t.Errorf("batch = %q, want %q", res.PublishedBatch, wantBatch)
	}

	rec, ok := store.rows[42]
	if !ok {
		t.Fatal("durable store has no row for mcq_num 42")
	}
	if rec.Payload.Status != mcq.StatusPublished {
		t.Errorf("payload status = %q", rec.Payload.Status)
	}
	if rec.Payload.CorrectOption != "B" {
		t.Errorf("correct option = %q, want uppercase B", rec.Payload.CorrectOption)
	}
	if !rec.Payload.IsLatest {
		t.Error("payload is_latest not set")
	}

	wantCols := []string{"status", "updated_at", "commit_hash", "published_batch", "is_latest"}
	if len(staging.cellWrites) != len(wantCols) {
		t.Fatalf("cell writes = %d, want %d", len(staging.cellWrites), len(wantCols))
	}
	for i, want := range wantCols {
		if staging.cellWrites[i].column != want {
			t.Errorf("write %d column = %q, want %q", i, staging.cellWrites[i].column, want)
		}
		if staging.cellWrites[i].rowNumber != 2 {
			t.Errorf("write %d row = %d, want 2", i, staging.cellWrites[i].rowNumber)
		}
	}
	if got := staging.cellWrites[4].value; got != "TRUE" {
		t.Errorf("is_latest write = %q, want TRUE", got)
	}

	if len(cache.deleted) != 1 || cache.deleted[0] != "mcq:count:published" {
		t.Errorf("count key not deleted: %v", cache.deleted)
	}
	if len(cache.patterns) != 3 {
		t.Errorf("pattern deletes = %v, want 3 families", cache.patterns)
	}
}

func TestPublishOneRejectsNonReadyStatus(t *testing.T) {
	row := readyRow("NEURO_000001")
	setCol(t, row, "status", "draft")
	staging := newFakeStaging(row)
	store := newFakePublished()
	cache := newFakeCache()

	res, err := newPublisher(staging, store, cache).PublishOne(context.Background(), "NEURO_000001")
	if err != nil {
		t.Fatal(err)
	}
	if res.OK {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(res.Error, "found: draft") {
		t.Errorf("error = %q", res.Error)
	}
	if store.upserts != 0 || len(staging.cellWrites) != 0 {
		t.Error("rejected publish must not mutate anything")
	}
	if len(cache.deleted) != 0 || len(cache.patterns) != 0 {
		t.Error("rejected publish must not invalidate caches")
	}
}

func TestPublishOneValidatesContent(t *testing.T) {
	row := readyRow("NEURO_000002")
	setCol(t, row, "option_c_text", "")
	staging := newFakeStaging(row)
	store := newFakePublished()

	res, err := newPublisher(staging, store, newFakeCache()).PublishOne(context.Background(), "NEURO_000002")
	if err != nil {
		t.Fatal(err)
	}
	if res.OK || res.Error != "Option C missing" {
		t.Errorf("error = %q, want %q", res.Error, "Option C missing")
	}
	if store.upserts != 0 {
		t.Error("invalid row must not reach the durable store")
	}
}

func TestPublishOneImageOnlyContentCounts(t *testing.T) {
	row := readyRow("NEURO_000003")
	setCol(t, row, "option_c_text", "")
	setCol(t, row, "option_c_image_key", "mcq/NEURO_000003/option_c_ab12cd34ef.webp")
	staging := newFakeStaging(row)

	res, err := newPublisher(staging, newFakePublished(), newFakeCache()).PublishOne(context.Background(), "NEURO_000003")
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK {
		t.Errorf("image-only option rejected: %q", res.Error)
	}
}

func TestPublishOneNotFound(t *testing.T) {
	staging := newFakeStaging(readyRow("NEURO_000001"))

	res, err := newPublisher(staging, newFakePublished(), newFakeCache()).PublishOne(context.Background(), "NEURO_000099")
	if err != nil {
		t.Fatal(err)
	}
	if res.OK || res.Error != "Not found in staging store: NEURO_000099" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestRepublishOverwritesWithNewCommit(t *testing.T) {
	staging := newFakeStaging(readyRow("NEURO_000042"))
	store := newFakePublished()
	pub := newPublisher(staging, store, newFakeCache())

	first, err := pub.PublishOne(context.Background(), "NEURO_000042")
	if err != nil || !first.OK {
		t.Fatalf("first publish failed: %v %q", err, first.Error)
	}

	// Author flips the row back to ready for a correction.
	match, err := staging.FindRowByID(context.Background(), "NEURO_000042")
	if err != nil {
		t.Fatal(err)
	}
	_ = staging.SetCell(context.Background(), match.RowNumber, "status", mcq.StatusReady)
	staging.cellWrites = nil

	second, err := pub.PublishOne(context.Background(), "NEURO_000042")
	if err != nil || !second.OK {
		t.Fatalf("second publish failed: %v %q", err, second.Error)
	}
	if first.CommitHash == second.CommitHash {
		t.Error("republish must mint a fresh commit hash")
	}
	if len(store.rows) != 1 {
		t.Errorf("store rows = %d, want 1 (upsert, not insert)", len(store.rows))
	}
	if store.rows[42].CommitHash != second.CommitHash {
		t.Error("durable row not overwritten by republish")
	}
}

/* ---------------- batch publish ---------------- */

func TestPublishBatchNewestFirstWithLimit(t *testing.T) {
	staging := newFakeStaging(
		readyRow("NEURO_000001"),
		readyRow("NEURO_000002"),
		readyRow("NEURO_000003"),
	)
	store := newFakePublished()
	cache := newFakeCache()

	res, err := newPublisher(staging, store, cache).PublishBatch(context.Background(), mcq.BatchOptions{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.FoundReady != 2 || res.PublishedCount != 2 {
		t.Fatalf("found=%d published=%d, want 2/2", res.FoundReady, res.PublishedCount)
	}
	if res.Published[0] != "NEURO_000003" || res.Published[1] != "NEURO_000002" {
		t.Errorf("published order = %v, want newest (bottom) rows first", res.Published)
	}
	if _, ok := store.rows[1]; ok {
		t.Error("oldest row published despite limit")
	}
	if store.rows[2].CommitHash != store.rows[3].CommitHash {
		t.Error("batch members must share one commit hash")
	}
	if len(cache.patterns) != 3 {
		t.Errorf("invalidation ran %d pattern deletes, want 3 (once per family)", len(cache.patterns))
	}
}

func TestPublishBatchDryRunMutatesNothing(t *testing.T) {
	staging := newFakeStaging(readyRow("NEURO_000001"), readyRow("NEURO_000002"))
	store := newFakePublished()
	cache := newFakeCache()

	res, err := newPublisher(staging, store, cache).PublishBatch(context.Background(), mcq.BatchOptions{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if !res.DryRun || res.PublishedCount != 2 {
		t.Fatalf("dry run reported %d candidates", res.PublishedCount)
	}
	if store.upserts != 0 || len(staging.cellWrites) != 0 {
		t.Error("dry run must not write anywhere")
	}
	if len(cache.deleted) != 0 || len(cache.patterns) != 0 {
		t.Error("dry run must not invalidate caches")
	}
	if len(res.Invalidated) != 0 {
		t.Errorf("dry run reported invalidations: %v", res.Invalidated)
	}
}

func TestPublishBatchIsolatesFailures(t *testing.T) {
	bad := readyRow("NEURO_000002")
	setCol(t, bad, "correct_option", "E")
	staging := newFakeStaging(readyRow("NEURO_000001"), bad)
	store := newFakePublished()
	cache := newFakeCache()

	res, err := newPublisher(staging, store, cache).PublishBatch(context.Background(), mcq.BatchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.PublishedCount != 1 || res.Published[0] != "NEURO_000001" {
		t.Fatalf("published = %v", res.Published)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("errors = %v", res.Errors)
	}
	e := res.Errors[0]
	if e.MCQID != "NEURO_000002" || e.RowNumber != 3 || e.Error != "correct_option must be A/B/C/D" {
		t.Errorf("batch error = %+v", e)
	}
	if len(cache.patterns) != 3 {
		t.Error("partial success must still invalidate once")
	}
}

func TestPublishBatchNoReadyRows(t *testing.T) {
	row := readyRow("NEURO_000001")
	setCol(t, row, "status", mcq.StatusPublished)
	staging := newFakeStaging(row)
	cache := newFakeCache()

	res, err := newPublisher(staging, newFakePublished(), cache).PublishBatch(context.Background(), mcq.BatchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.FoundReady != 0 || res.PublishedCount != 0 {
		t.Fatalf("found=%d published=%d", res.FoundReady, res.PublishedCount)
	}
	if len(cache.patterns) != 0 {
		t.Error("empty batch must not invalidate caches")
	}
}
