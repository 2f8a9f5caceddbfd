package mcq_test

import (
	"errors"
	"testing"

	"github.com/neuropulse/neuropulse-server/internal/mcq"
)

func TestRowToStagedShortRow(t *testing.T) {
	// Sheets trims trailing empty cells; positional mapping must tolerate it.
	m := mcq.RowToStaged([]string{"NEURO_000007", "draft"})
	if m.MCQID != "NEURO_000007" || m.Status != "draft" {
		t.Fatalf("got %+v", m)
	}
	if m.StemText != "" || m.CorrectOption != "" || m.IsLatest {
		t.Errorf("missing cells must map to zero values: %+v", m)
	}
}

func TestStagedToRowRoundTrip(t *testing.T) {
	in := mcq.StagedMCQ{
		MCQID:         "NEURO_000010",
		Status:        "ready",
		StemText:      "stem",
		OptionAText:   "a",
		CorrectOption: "A",
		IsLatest:      true,
	}
	row := mcq.StagedToRow(in)
	if len(row) != len(mcq.Columns) {
		t.Fatalf("row width = %d, want %d", len(row), len(mcq.Columns))
	}
	if out := mcq.RowToStaged(row); out != in {
		t.Errorf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
}

func TestCheckHeaderDetectsDrift(t *testing.T) {
	good := append([]string{}, mcq.Columns...)
	if err := mcq.CheckHeader(good); err != nil {
		t.Fatalf("exact header rejected: %v", err)
	}

	// Shorter headers are old tabs, not drift.
	if err := mcq.CheckHeader(good[:5]); err != nil {
		t.Fatalf("short header rejected: %v", err)
	}

	bad := append([]string{}, mcq.Columns...)
	bad[1] = "state"
	err := mcq.CheckHeader(bad)
	var sm *mcq.SchemaMismatchError
	if !errors.As(err, &sm) {
		t.Fatalf("expected SchemaMismatchError, got %v", err)
	}
	if sm.Col != 2 || sm.Want != "status" || sm.Got != "state" {
		t.Errorf("mismatch detail = %+v", sm)
	}
}

func TestFindRowInValues(t *testing.T) {
	header := append([]string{}, mcq.Columns...)
	values := [][]string{
		header,
		{"NEURO_000001", "draft"},
		{"NEURO_000002", "ready"},
	}

	m, err := mcq.FindRowInValues(values, "NEURO_000002")
	if err != nil {
		t.Fatal(err)
	}
	if m.RowNumber != 3 {
		t.Errorf("row number = %d, want 3 (1-based with header)", m.RowNumber)
	}

	if _, err := mcq.FindRowInValues(values, "NEURO_000099"); !errors.Is(err, mcq.ErrNotFound) {
		t.Errorf("missing id: got %v", err)
	}

	values = append(values, []string{"NEURO_000002", "draft"})
	_, err = mcq.FindRowInValues(values, "NEURO_000002")
	var dup *mcq.DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateKeyError, got %v", err)
	}
	if dup.Count != 2 {
		t.Errorf("duplicate count = %d", dup.Count)
	}
	if want := `sheet corruption: mcq_id "NEURO_000002" appears 2 times`; dup.Error() != want {
		t.Errorf("message = %q", dup.Error())
	}
}

func TestColumnLetter(t *testing.T) {
	cases := map[int]string{1: "A", 2: "B", 26: "Z", 27: "AA", 28: "AB", 52: "AZ", 53: "BA"}
	for n, want := range cases {
		if got := mcq.ColumnLetter(n); got != want {
			t.Errorf("ColumnLetter(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestColumnIndexUnknown(t *testing.T) {
	if _, err := mcq.ColumnIndex("difficulty"); err == nil {
		t.Error("unknown column accepted")
	}
	idx, err := mcq.ColumnIndex("is_latest")
	if err != nil || idx != len(mcq.Columns)-1 {
		t.Errorf("is_latest index = %d, %v", idx, err)
	}
}
