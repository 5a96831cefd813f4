package grid

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"gridbench/internal/data"
	"gridbench/internal/log"
)

// MemoryGrid is an in-memory implementation of API. It keeps the full row set, derives the
// displayed rows (filtered, then sorted) and row groups eagerly on every change, and renders on
// the host's frames.
type MemoryGrid struct {
	host   Host
	logger log.Logger

	rows         []data.Row
	sortModel    []ColumnState
	quickFilter  []string
	groupColumns []string

	displayed    []data.Row
	groups       []Group
	firstVisible int

	// version identifies the current row data; renders scheduled for older data are dropped.
	version   uint64
	rendered  bool
	listeners []func()

	mutex sync.Mutex
}

// NewMemoryGrid creates an empty grid that renders on the specified host.
func NewMemoryGrid(host Host, logger log.Logger) *MemoryGrid {
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	return &MemoryGrid{host: host, logger: logger}
}

// SetRowData replaces all rows and schedules a render on the next frame.
func (g *MemoryGrid) SetRowData(rows []data.Row) {
	g.mutex.Lock()

	g.rows = append([]data.Row(nil), rows...)
	g.firstVisible = 0
	g.version++
	g.rendered = false
	g.refresh()

	version := g.version
	g.mutex.Unlock()

	g.logger.Debug("grid: set row data: rows=%d version=%d", len(rows), version)

	g.host.RequestFrame(func() { g.render(version) })
}

// ApplyTransaction applies removals, then updates, then additions.
func (g *MemoryGrid) ApplyTransaction(tx Transaction) TransactionResult {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	var result TransactionResult

	if len(tx.Remove) > 0 {
		removals := make(map[int]struct{}, len(tx.Remove))
		for _, row := range tx.Remove {
			removals[row.ID] = struct{}{}
		}

		kept := g.rows[:0]
		for _, row := range g.rows {
			if _, ok := removals[row.ID]; ok {
				result.Removed++
				continue
			}
			kept = append(kept, row)
		}
		g.rows = kept
	}

	if len(tx.Update) > 0 {
		index := make(map[int]int, len(g.rows))
		for i, row := range g.rows {
			index[row.ID] = i
		}

		for _, row := range tx.Update {
			if i, ok := index[row.ID]; ok {
				g.rows[i] = row
				result.Updated++
			}
		}
	}

	g.rows = append(g.rows, tx.Add...)
	result.Added = len(tx.Add)

	g.refresh()

	return result
}

// ApplyColumnState replaces the sort model. Columns with SortNone are ignored.
func (g *MemoryGrid) ApplyColumnState(state []ColumnState) error {
	var model []ColumnState

	for _, column := range state {
		if !KnownColumn(column.ColID) {
			return fmt.Errorf("grid: unknown column in column state: col=%s", column.ColID)
		}

		switch column.Sort {
		case SortNone:
		case SortAsc, SortDesc:
			model = append(model, column)
		default:
			return fmt.Errorf(
				"grid: unknown sort direction: col=%s sort=%s",
				column.ColID,
				column.Sort,
			)
		}
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.sortModel = model
	g.refresh()

	return nil
}

// SetQuickFilter sets the quick filter text. Matching is case-insensitive; an empty text
// disables filtering.
func (g *MemoryGrid) SetQuickFilter(text string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.quickFilter = strings.Fields(strings.ToLower(text))
	g.firstVisible = 0
	g.refresh()
}

// EnsureIndexVisible scrolls the viewport. Out of range indices are clamped.
func (g *MemoryGrid) EnsureIndexVisible(index int) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	switch {
	case len(g.displayed) == 0 || index < 0:
		index = 0
	case index >= len(g.displayed):
		index = len(g.displayed) - 1
	}

	g.firstVisible = index
}

// FirstVisibleIndex returns the displayed index at the top of the viewport.
func (g *MemoryGrid) FirstVisibleIndex() int {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	return g.firstVisible
}

// SetRowGroupColumns groups displayed rows by the given columns.
func (g *MemoryGrid) SetRowGroupColumns(colIDs ...string) error {
	for _, colID := range colIDs {
		if !KnownColumn(colID) {
			return fmt.Errorf("grid: unknown row group column: col=%s", colID)
		}
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.groupColumns = append([]string(nil), colIDs...)
	g.refresh()

	return nil
}

// OnFirstDataRendered registers a one-shot listener. If the current data has already rendered,
// the listener runs immediately on the caller's goroutine.
func (g *MemoryGrid) OnFirstDataRendered(listener func()) {
	g.mutex.Lock()

	if g.rendered {
		g.mutex.Unlock()
		listener()
		return
	}

	g.listeners = append(g.listeners, listener)
	g.mutex.Unlock()
}

// RowCount returns the number of rows, regardless of filtering.
func (g *MemoryGrid) RowCount() int {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	return len(g.rows)
}

// DisplayedRows returns a copy of the displayed rows.
func (g *MemoryGrid) DisplayedRows() []data.Row {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	return append([]data.Row(nil), g.displayed...)
}

// Groups returns a copy of the current row groups.
func (g *MemoryGrid) Groups() []Group {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	return append([]Group(nil), g.groups...)
}

// render marks the data set as rendered and fires pending listeners, unless newer row data has
// replaced it in the meantime.
func (g *MemoryGrid) render(version uint64) {
	g.mutex.Lock()

	if version != g.version || g.rendered {
		g.mutex.Unlock()
		return
	}

	g.rendered = true
	listeners := g.listeners
	g.listeners = nil
	g.mutex.Unlock()

	g.logger.Debug("grid: first data rendered: version=%d listeners=%d", version, len(listeners))

	for _, listener := range listeners {
		listener()
	}
}

// refresh derives displayed rows and groups from the row data. The caller holds the mutex.
func (g *MemoryGrid) refresh() {
	displayed := make([]data.Row, 0, len(g.rows))
	for _, row := range g.rows {
		if g.matchesQuickFilter(row) {
			displayed = append(displayed, row)
		}
	}

	if len(g.sortModel) > 0 {
		sort.SliceStable(displayed, func(i, j int) bool {
			for _, column := range g.sortModel {
				cmp := compareCells(displayed[i], displayed[j], column.ColID)
				if column.Sort == SortDesc {
					cmp = -cmp
				}

				if cmp != 0 {
					return cmp < 0
				}
			}

			return false
		})
	}

	g.displayed = displayed
	g.groups = g.group(displayed)
}

func (g *MemoryGrid) matchesQuickFilter(row data.Row) bool {
	if len(g.quickFilter) == 0 {
		return true
	}

	texts := make([]string, len(Columns))
	for i, column := range Columns {
		texts[i] = strings.ToLower(cellText(row, column))
	}
	haystack := strings.Join(texts, " ")

	for _, word := range g.quickFilter {
		if !strings.Contains(haystack, word) {
			return false
		}
	}

	return true
}

func (g *MemoryGrid) group(rows []data.Row) []Group {
	if len(g.groupColumns) == 0 {
		return nil
	}

	var groups []Group
	index := make(map[string]int)

	for _, row := range rows {
		keys := make([]string, len(g.groupColumns))
		for i, column := range g.groupColumns {
			keys[i] = cellText(row, column)
		}
		key := strings.Join(keys, " / ")

		if i, ok := index[key]; ok {
			groups[i].Count++
			continue
		}

		index[key] = len(groups)
		groups = append(groups, Group{Key: key, Count: 1})
	}

	return groups
}
