package mcq

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsStagingStore implements StagingStore on top of a Google Sheets tab.
type SheetsStagingStore struct {
	svc           *sheets.Service
	spreadsheetID string
	tab           string
}

// SheetsConfig carries the service-account credentials and sheet address.
// JSON takes precedence over JSONPath when both are set.
type SheetsConfig struct {
	SpreadsheetID string
	Tab           string
	JSON          string
	JSONPath      string
}

func NewSheetsStagingStore(ctx context.Context, cfg SheetsConfig) (*SheetsStagingStore, error) {
	sa, err := loadServiceAccount(cfg)
	if err != nil {
		return nil, err
	}
	jwtCfg, err := google.JWTConfigFromJSON(sa, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(ctx)))
	if err != nil {
		return nil, err
	}
	return &SheetsStagingStore{svc: svc, spreadsheetID: cfg.SpreadsheetID, tab: cfg.Tab}, nil
}

func loadServiceAccount(cfg SheetsConfig) ([]byte, error) {
	if cfg.JSON != "" {
		return []byte(cfg.JSON), nil
	}
	if cfg.JSONPath != "" {
		return os.ReadFile(cfg.JSONPath)
	}
	return nil, fmt.Errorf("no service account JSON provided")
}

func (s *SheetsStagingStore) AppendRow(ctx context.Context, values []string) error {
	if len(values) != len(Columns) {
		return fmt.Errorf("append row requires exactly %d values, got %d", len(Columns), len(values))
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	rng := fmt.Sprintf("%s!A:%s", s.tab, lastColumnLetter())
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, rng, &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	return err
}

func (s *SheetsStagingStore) ReadAllRows(ctx context.Context) ([][]string, error) {
	rng := fmt.Sprintf("%s!A:%s", s.tab, lastColumnLetter())
	res, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(res.Values))
	for _, raw := range res.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = cellString(cell)
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *SheetsStagingStore) FindRowByID(ctx context.Context, mcqID string) (RowMatch, error) {
	values, err := s.ReadAllRows(ctx)
	if err != nil {
		return RowMatch{}, err
	}
	return FindRowInValues(values, mcqID)
}

func (s *SheetsStagingStore) SetCell(ctx context.Context, rowNumber int, column, value string) error {
	idx, err := ColumnIndex(column)
	if err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!%s%d", s.tab, ColumnLetter(idx+1), rowNumber)
	_, err = s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, rng, &sheets.ValueRange{Values: [][]interface{}{{value}}}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	return err
}

// cellString renders an unformatted cell value as a string. The API returns
// strings, float64 numbers and bools depending on cell content.
func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
