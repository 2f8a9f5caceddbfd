package mcq

import (
	"strings"
)

// RowToStaged maps a raw sheet row onto a StagedMCQ positionally: column i's
// name takes the value at index i. Missing trailing cells map to "".
func RowToStaged(row []string) StagedMCQ {
	at := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return StagedMCQ{
		MCQID:     at(0),
		Status:    at(1),
		CreatedAt: at(2),
		UpdatedAt: at(3),

		StemText:     at(4),
		StemImageKey: at(5),
		StemVideoURL: at(6),

		OptionAText:     at(7),
		OptionAImageKey: at(8),
		OptionBText:     at(9),
		OptionBImageKey: at(10),
		OptionCText:     at(11),
		OptionCImageKey: at(12),
		OptionDText:     at(13),
		OptionDImageKey: at(14),

		CorrectOption: at(15),

		ExplanationText:     at(16),
		ExplanationImageKey: at(17),
		KeyLearningPoint:    at(18),
		Author:              at(19),

		CommitHash:     at(20),
		PublishedBatch: at(21),
		IsLatest:       parseSheetBool(at(22)),
	}
}

// StagedToRow is the inverse mapping; the returned slice always has exactly
// len(Columns) values.
func StagedToRow(m StagedMCQ) []string {
	return []string{
		m.MCQID,
		m.Status,
		m.CreatedAt,
		m.UpdatedAt,
		m.StemText,
		m.StemImageKey,
		m.StemVideoURL,
		m.OptionAText,
		m.OptionAImageKey,
		m.OptionBText,
		m.OptionBImageKey,
		m.OptionCText,
		m.OptionCImageKey,
		m.OptionDText,
		m.OptionDImageKey,
		m.CorrectOption,
		m.ExplanationText,
		m.ExplanationImageKey,
		m.KeyLearningPoint,
		m.Author,
		m.CommitHash,
		m.PublishedBatch,
		formatSheetBool(m.IsLatest),
	}
}

func parseSheetBool(v string) bool {
	v = strings.TrimSpace(v)
	return strings.EqualFold(v, "true") || v == "1"
}

func formatSheetBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// CheckHeader verifies the sheet's declared column order against Columns.
// A full-width header that disagrees anywhere is schema drift, surfaced as a
// SchemaMismatchError. Shorter headers are tolerated (older tabs).
func CheckHeader(header []string) error {
	if len(header) != len(Columns) {
		return nil
	}
	for i := range Columns {
		if strings.TrimSpace(header[i]) != Columns[i] {
			return &SchemaMismatchError{Col: i + 1, Want: Columns[i], Got: strings.TrimSpace(header[i])}
		}
	}
	return nil
}

// FindRowInValues scans full sheet contents (header at index 0) for the row
// whose first cell equals mcqID. Row numbers are 1-based sheet positions.
func FindRowInValues(values [][]string, mcqID string) (RowMatch, error) {
	if len(values) < 2 {
		return RowMatch{}, ErrNotFound
	}
	if err := CheckHeader(values[0]); err != nil {
		return RowMatch{}, err
	}

	var matches []RowMatch
	for i := 1; i < len(values); i++ {
		row := values[i]
		var id string
		if len(row) > 0 {
			id = strings.TrimSpace(row[0])
		}
		if id == mcqID {
			matches = append(matches, RowMatch{RowNumber: i + 1, Row: row})
		}
	}

	switch len(matches) {
	case 0:
		return RowMatch{}, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return RowMatch{}, &DuplicateKeyError{MCQID: mcqID, Count: len(matches)}
	}
}

// ColumnLetter converts a 1-based column index to its A1 letter(s).
func ColumnLetter(n int) string {
	var s string
	for n > 0 {
		m := (n - 1) % 26
		s = string(rune('A'+m)) + s
		n = (n - 1) / 26
	}
	return s
}

// ColumnIndex returns the 0-based index of a schema column, or an error for
// anything outside the fixed schema.
func ColumnIndex(name string) (int, error) {
	for i, c := range Columns {
		if c == name {
			return i, nil
		}
	}
	return 0, &UnknownColumnError{Column: name}
}

func lastColumnLetter() string { return ColumnLetter(len(Columns)) }
