package gateway

import (
	"strings"

	"github.com/kfpc0808/researchtmfax/pkg/model"
)

const (
	defaultPage  = 1
	defaultLimit = 15
)

// queryRows filters and paginates a snapshot. It returns the requested
// page as row views and the pre-pagination total of matching rows. Each
// view carries the row's originalIndex in the unfiltered snapshot,
// resolved by row number, so that later update/delete calls can address
// the row in the full row set rather than the filtered page.
func queryRows(snapshot *model.Snapshot, filter map[string]string, page, limit int) ([]model.RowView, int) {
	filtered := snapshot.Rows
	if len(filter) > 0 {
		filtered = make([]model.Row, 0, len(snapshot.Rows))
		for _, row := range snapshot.Rows {
			if matchRow(row, filter) {
				filtered = append(filtered, row)
			}
		}
	}
	total := len(filtered)

	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	lo := (page - 1) * limit
	hi := page * limit
	if lo > total {
		lo = total
	}
	if hi > total {
		hi = total
	}

	views := make([]model.RowView, 0, hi-lo)
	for _, row := range filtered[lo:hi] {
		views = append(views, model.NewRowView(row, snapshot.IndexByNumber(row.Number)))
	}
	return views, total
}

// matchRow reports whether the row satisfies every filter entry. Matching
// is case-insensitive substring containment; an empty pattern matches
// anything, a missing field reads as "".
func matchRow(row model.Row, filter map[string]string) bool {
	for key, pattern := range filter {
		if pattern == "" {
			continue
		}
		value := strings.ToLower(row.Get(key))
		if !strings.Contains(value, strings.ToLower(pattern)) {
			return false
		}
	}
	return true
}

// allRows emits every row of the snapshot as a view with its positional
// index, without filtering or pagination.
func allRows(snapshot *model.Snapshot) []model.RowView {
	views := make([]model.RowView, 0, len(snapshot.Rows))
	for i, row := range snapshot.Rows {
		views = append(views, model.NewRowView(row, i))
	}
	return views
}
