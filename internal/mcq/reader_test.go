package mcq_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neuropulse/neuropulse-server/internal/mcq"
)

func publishedFixture(num int) mcq.PublishedMCQ {
	id := mcq.FormatMCQID(num)
	return mcq.PublishedMCQ{
		MCQNum:         num,
		MCQID:          id,
		Payload:        mcq.RowToStaged(readyRow(id)),
		CommitHash:     "c_20260110090000000_deadbeef",
		PublishedBatch: "b_20260110",
		UpdatedAt:      time.Now().Unix(),
	}
}

func TestReaderGetByIDCachesResult(t *testing.T) {
	store := newFakePublished()
	store.rows[42] = publishedFixture(42)
	cache := newFakeCache()
	r := mcq.NewReader(store, cache)

	first, err := r.GetByID(context.Background(), "NEURO_000042")
	if err != nil {
		t.Fatal(err)
	}
	if store.getCalls != 1 {
		t.Fatalf("store calls = %d", store.getCalls)
	}

	second, err := r.GetByID(context.Background(), "NEURO_000042")
	if err != nil {
		t.Fatal(err)
	}
	if store.getCalls != 1 {
		t.Errorf("second read hit the store (%d calls)", store.getCalls)
	}
	if first.MCQID != second.MCQID || first.CommitHash != second.CommitHash {
		t.Error("cached record differs from stored record")
	}
}

func TestReaderGetByIDNotFound(t *testing.T) {
	r := mcq.NewReader(newFakePublished(), newFakeCache())
	if _, err := r.GetByID(context.Background(), "NEURO_000099"); !errors.Is(err, mcq.ErrNotFound) {
		t.Errorf("got %v", err)
	}
}

func TestReaderGetPage(t *testing.T) {
	store := newFakePublished()
	for i := 1; i <= 3; i++ {
		store.rows[i] = publishedFixture(i)
	}
	cache := newFakeCache()
	r := mcq.NewReader(store, cache)

	page, err := r.GetPage(context.Background(), 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || len(page.Items) != 3 {
		t.Fatalf("total=%d items=%d", page.Total, len(page.Items))
	}

	if _, err := r.GetPage(context.Background(), 1, 10); err != nil {
		t.Fatal(err)
	}
	if store.listCalls != 1 {
		t.Errorf("second page read hit the store (%d calls)", store.listCalls)
	}

	// Out-of-range pages come back empty, never nil.
	far, err := r.GetPage(context.Background(), 50, 10)
	if err != nil {
		t.Fatal(err)
	}
	if far.Items == nil || len(far.Items) != 0 {
		t.Errorf("far page items = %v", far.Items)
	}
}

func TestPublishInvalidationReachesReader(t *testing.T) {
	staging := newFakeStaging(readyRow("NEURO_000002"))
	store := newFakePublished()
	store.rows[1] = publishedFixture(1)
	cache := newFakeCache()
	r := mcq.NewReader(store, cache)
	pub := newPublisher(staging, store, cache)

	before, err := r.GetPage(context.Background(), 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if before.Total != 1 {
		t.Fatalf("total before publish = %d", before.Total)
	}

	if res, err := pub.PublishOne(context.Background(), "NEURO_000002"); err != nil || !res.OK {
		t.Fatalf("publish failed: %v %q", err, res.Error)
	}

	after, err := r.GetPage(context.Background(), 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if after.Total != 2 || len(after.Items) != 2 {
		t.Errorf("stale page served after publish: total=%d items=%d", after.Total, len(after.Items))
	}
}

func TestReaderCountCached(t *testing.T) {
	store := newFakePublished()
	store.rows[1] = publishedFixture(1)
	r := mcq.NewReader(store, newFakeCache())

	for i := 0; i < 3; i++ {
		n, err := r.Count(context.Background())
		if err != nil || n != 1 {
			t.Fatalf("count = %d, %v", n, err)
		}
	}
	if store.countCalls != 1 {
		t.Errorf("count hit the store %d times", store.countCalls)
	}
}
