package adapter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/kfpc0808/researchtmfax/pkg/model"
)

// Tabular is the boundary to the external tabular data service. Rows are
// addressed by their position in the most recent snapshot; every call
// consults the service directly and nothing is cached, so two calls within
// one request are not guaranteed to observe the same snapshot.
type Tabular interface {
	// Exists reports whether the named collection is present in the
	// backing service.
	Exists(ctx context.Context, collection string) (bool, error)

	// FetchAll returns the full ordered row set of a collection.
	FetchAll(ctx context.Context, collection string) (*model.Snapshot, error)

	// Append adds a new row. Fields not part of the current schema extend
	// the schema.
	Append(ctx context.Context, collection string, fields map[string]string) error

	// UpdateAt merges the given fields into the row at index; fields not
	// present are left untouched. Fails with model.ErrRowNotFound if no
	// row exists at that index at call time.
	UpdateAt(ctx context.Context, collection string, index int, fields map[string]string) error

	// DeleteAt removes the row at index. Fails with model.ErrRowNotFound
	// if no row exists at that index at call time.
	DeleteAt(ctx context.Context, collection string, index int) error
}

// sheetsClient implements Tabular against a single Google Sheets document,
// where each sheet tab is one collection and row 1 holds the headers.
type sheetsClient struct {
	spreadsheetID string
	svc           *sheets.Service
}

// NewSheets creates a Tabular backed by the given spreadsheet. Credentials
// are taken from the supplied client options, falling back to application
// default credentials.
func NewSheets(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (Tabular, error) {
	if spreadsheetID == "" {
		return nil, goerr.New("spreadsheet ID is required")
	}

	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create sheets service")
	}

	return &sheetsClient{
		spreadsheetID: spreadsheetID,
		svc:           svc,
	}, nil
}

func (x *sheetsClient) Exists(ctx context.Context, collection string) (bool, error) {
	if _, err := x.sheetID(ctx, collection); err != nil {
		if errors.Is(err, model.ErrCollectionNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (x *sheetsClient) FetchAll(ctx context.Context, collection string) (*model.Snapshot, error) {
	if _, err := x.sheetID(ctx, collection); err != nil {
		return nil, err
	}

	resp, err := x.svc.Spreadsheets.Values.Get(x.spreadsheetID, quoteSheet(collection)).Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch rows", goerr.V("collection", collection))
	}

	return buildSnapshot(resp.Values), nil
}

func (x *sheetsClient) Append(ctx context.Context, collection string, fields map[string]string) error {
	header, err := x.ensureHeader(ctx, collection, fields)
	if err != nil {
		return err
	}

	vr := &sheets.ValueRange{Values: [][]any{alignRow(header, fields)}}
	_, err = x.svc.Spreadsheets.Values.Append(x.spreadsheetID, quoteSheet(collection), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return goerr.Wrap(err, "failed to append row", goerr.V("collection", collection))
	}
	return nil
}

func (x *sheetsClient) UpdateAt(ctx context.Context, collection string, index int, fields map[string]string) error {
	snapshot, err := x.FetchAll(ctx, collection)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(snapshot.Rows) {
		return goerr.Wrap(model.ErrRowNotFound, "no row at index",
			goerr.V("collection", collection), goerr.V("index", index))
	}
	row := snapshot.Rows[index]

	header, err := x.ensureHeader(ctx, collection, fields)
	if err != nil {
		return err
	}

	merged := make(map[string]string, len(row.Fields)+len(fields))
	for k, v := range row.Fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	vr := &sheets.ValueRange{Values: [][]any{alignRow(header, merged)}}
	_, err = x.svc.Spreadsheets.Values.Update(x.spreadsheetID, rowRange(collection, row.Number), vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return goerr.Wrap(err, "failed to update row",
			goerr.V("collection", collection), goerr.V("index", index))
	}
	return nil
}

func (x *sheetsClient) DeleteAt(ctx context.Context, collection string, index int) error {
	sheetID, err := x.sheetID(ctx, collection)
	if err != nil {
		return err
	}

	snapshot, err := x.FetchAll(ctx, collection)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(snapshot.Rows) {
		return goerr.Wrap(model.ErrRowNotFound, "no row at index",
			goerr.V("collection", collection), goerr.V("index", index))
	}
	number := snapshot.Rows[index].Number

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(number - 1),
					EndIndex:   int64(number),
				},
			},
		}},
	}
	if _, err := x.svc.Spreadsheets.BatchUpdate(x.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return goerr.Wrap(err, "failed to delete row",
			goerr.V("collection", collection), goerr.V("index", index))
	}
	return nil
}

// sheetID resolves a collection name to its sheet ID, failing with
// model.ErrCollectionNotFound when no tab has that title.
func (x *sheetsClient) sheetID(ctx context.Context, collection string) (int64, error) {
	doc, err := x.svc.Spreadsheets.Get(x.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to load spreadsheet")
	}

	for _, sh := range doc.Sheets {
		if sh.Properties != nil && sh.Properties.Title == collection {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, goerr.Wrap(model.ErrCollectionNotFound, "no such sheet", goerr.V("collection", collection))
}

// ensureHeader reads the header row and extends it when fields carry
// columns the sheet does not know yet. Returns the header to align
// against.
func (x *sheetsClient) ensureHeader(ctx context.Context, collection string, fields map[string]string) ([]string, error) {
	resp, err := x.svc.Spreadsheets.Values.Get(x.spreadsheetID, headerRange(collection)).Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch header", goerr.V("collection", collection))
	}

	var header []string
	if len(resp.Values) > 0 {
		for _, cell := range resp.Values[0] {
			header = append(header, cellString(cell))
		}
	}

	extended, grown := mergeHeader(header, fields)
	if grown {
		vr := &sheets.ValueRange{Values: [][]any{toCells(extended)}}
		_, err := x.svc.Spreadsheets.Values.Update(x.spreadsheetID, headerRange(collection), vr).
			ValueInputOption("RAW").
			Context(ctx).Do()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to extend header", goerr.V("collection", collection))
		}
	}
	return extended, nil
}

// buildSnapshot converts a raw value grid into a snapshot. The first row
// is the header; data rows keep their sheet row number (header row is 1).
// Cells beyond the header width and columns with an empty header name are
// dropped, missing trailing cells read as "".
func buildSnapshot(values [][]any) *model.Snapshot {
	snapshot := &model.Snapshot{}
	if len(values) == 0 {
		return snapshot
	}

	for _, cell := range values[0] {
		snapshot.Header = append(snapshot.Header, cellString(cell))
	}

	for i, cells := range values[1:] {
		row := model.Row{
			Number: i + 2,
			Fields: make(map[string]string, len(snapshot.Header)),
		}
		for col, name := range snapshot.Header {
			if name == "" {
				continue
			}
			if col < len(cells) {
				row.Fields[name] = cellString(cells[col])
			} else {
				row.Fields[name] = ""
			}
		}
		snapshot.Rows = append(snapshot.Rows, row)
	}
	return snapshot
}

// mergeHeader appends field names unknown to the header, in sorted order
// for determinism. Reports whether the header grew.
func mergeHeader(header []string, fields map[string]string) ([]string, bool) {
	known := make(map[string]bool, len(header))
	for _, name := range header {
		known[name] = true
	}

	var added []string
	for name := range fields {
		if !known[name] {
			added = append(added, name)
		}
	}
	if len(added) == 0 {
		return header, false
	}
	sort.Strings(added)
	return append(append([]string{}, header...), added...), true
}

// alignRow lays out a field mapping as cells in header order. Fields the
// header does not contain are dropped.
func alignRow(header []string, fields map[string]string) []any {
	cells := make([]any, len(header))
	for i, name := range header {
		cells[i] = fields[name]
	}
	return cells
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// quoteSheet wraps a sheet title for use in an A1 range.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func headerRange(collection string) string {
	return quoteSheet(collection) + "!1:1"
}

func rowRange(collection string, number int) string {
	return fmt.Sprintf("%s!A%d", quoteSheet(collection), number)
}
