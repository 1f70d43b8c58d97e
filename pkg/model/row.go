package model

// Row is a single record in a collection. The field set is whatever the
// backing sheet currently exposes as headers, so values are kept as a
// string-keyed map rather than a fixed struct.
type Row struct {
	// Number is the service-assigned row number. It is stable within the
	// backing service but not guaranteed contiguous; the header row is 1.
	Number int

	Fields map[string]string
}

// Get returns the value of a field, or "" if the field is absent.
func (r Row) Get(key string) string {
	return r.Fields[key]
}

// Snapshot is the full ordered row set of a collection, fetched at one
// point in time. A row's positional index is its offset in Rows and is
// meaningful only against this snapshot.
type Snapshot struct {
	Header []string
	Rows   []Row
}

// IndexByNumber returns the positional index of the row with the given
// service row number, or -1 if no such row exists in the snapshot.
func (s *Snapshot) IndexByNumber(number int) int {
	for i, row := range s.Rows {
		if row.Number == number {
			return i
		}
	}
	return -1
}

// RowView is a row's field mapping as returned to callers, augmented with
// the row's originalIndex in the unfiltered snapshot.
type RowView map[string]any

// NewRowView builds a view of the row with its position in the unfiltered
// snapshot attached.
func NewRowView(row Row, originalIndex int) RowView {
	view := make(RowView, len(row.Fields)+1)
	for k, v := range row.Fields {
		view[k] = v
	}
	view["originalIndex"] = originalIndex
	return view
}
