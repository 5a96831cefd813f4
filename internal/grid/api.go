package grid

import (
	"gridbench/internal/data"
)

// SortDirection is the sort applied to a single column.
type SortDirection string

const (
	// SortNone clears a column's sort.
	SortNone SortDirection = ""
	// SortAsc sorts ascending.
	SortAsc SortDirection = "asc"
	// SortDesc sorts descending.
	SortDesc SortDirection = "desc"
)

// ColumnState describes the sort state of one column. Columns listed earlier take precedence.
type ColumnState struct {
	ColID string
	Sort  SortDirection
}

// Transaction is a batch of row additions, updates, and removals. Updates and removals match
// existing rows by ID.
type Transaction struct {
	Add    []data.Row
	Update []data.Row
	Remove []data.Row
}

// TransactionResult reports how many rows a transaction actually touched.
type TransactionResult struct {
	Added   int
	Updated int
	Removed int
}

// Group is a single row group: the key formed by the grouped columns' values, and the number of
// displayed rows under it.
type Group struct {
	Key   string
	Count int
}

// API is the surface of a data grid that benchmarks drive.
type API interface {
	// SetRowData replaces the grid's rows. The grid renders the new data on the host's next
	// frame, after which first-data-rendered listeners fire.
	SetRowData(rows []data.Row)

	// ApplyTransaction adds, updates, and removes rows in a single batch.
	ApplyTransaction(tx Transaction) TransactionResult

	// ApplyColumnState replaces the sort model.
	ApplyColumnState(state []ColumnState) error

	// SetQuickFilter filters displayed rows to those matching every word of text in any column.
	SetQuickFilter(text string)

	// EnsureIndexVisible scrolls so that the displayed row at index is at the top of the
	// viewport.
	EnsureIndexVisible(index int)

	// SetRowGroupColumns groups displayed rows by the given columns. No columns ungroups.
	SetRowGroupColumns(colIDs ...string) error

	// OnFirstDataRendered registers a one-shot listener fired once the current row data has
	// been rendered.
	OnFirstDataRendered(listener func())

	// RowCount returns the number of rows in the grid, regardless of filtering.
	RowCount() int

	// DisplayedRows returns the rows left after filtering, in sorted order.
	DisplayedRows() []data.Row

	// Groups returns the current row groups, in first-seen order of displayed rows.
	Groups() []Group
}
