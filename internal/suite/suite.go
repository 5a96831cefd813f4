package suite

import (
	"context"
	"fmt"
	"sync"

	"lib.kevinlin.info/aperture/lib"

	"gridbench/internal/bench"
	"gridbench/internal/data"
	"gridbench/internal/grid"
	"gridbench/internal/log"
)

// Measurement names published by the suite.
const (
	DataGenerationTime = "Data Generation Time"
	DataBindingTime    = "Data Binding Time"
	InitialRenderTime  = "Initial Render Time"
	DeltaUpdateTime    = "Delta Update Time"
	SortTime           = "Sort Time"
	FilterTime         = "Filter Time"
	ScrollTestTime     = "Scroll Test Time"
	GroupingTime       = "Grouping Time"
)

// Runner runs a single benchmark operation to completion.
type Runner interface {
	Run(ctx context.Context, op Operation) error
}

// Opts formalizes the parameters of each benchmark operation. Zero values select the defaults.
type Opts struct {
	// Rows is the number of rows generated by the load benchmark.
	Rows int
	// DeltaAdd, DeltaUpdate, and DeltaRemove size the delta update transaction.
	DeltaAdd    int
	DeltaUpdate int
	DeltaRemove int
	// SortColumn and SortDirection describe the sort benchmark's column state.
	SortColumn    string
	SortDirection grid.SortDirection
	// FilterText is the quick filter applied by the filter benchmark.
	FilterText string
	// GroupColumn is the column rows are grouped by in the group benchmark.
	GroupColumn string
	// ScrollBatch is the number of rows scrolled per frame in the scroll benchmark.
	ScrollBatch int
}

// Suite binds the benchmark operations to a grid, a harness, and a sink. Every operation publishes
// into the same suite-owned Metrics mapping, so the sink always sees every operation run so far.
type Suite struct {
	Grid      grid.API
	Host      grid.Host
	Harness   *bench.Harness
	Generator *data.Generator
	Sink      bench.Sink
	Logger    log.Logger
	Opts      Opts

	metrics *bench.Metrics
	// rows mirrors the grid's row data so that delta updates can pick rows to update and
	// remove, and the scroll benchmark knows how far to scroll.
	rows  []data.Row
	mutex sync.Mutex
}

// DefaultOpts returns the parameters used when none are configured.
func DefaultOpts() Opts {
	return Opts{
		Rows:          100000,
		DeltaAdd:      1000,
		DeltaUpdate:   1000,
		DeltaRemove:   1000,
		SortColumn:    grid.ColumnPrice,
		SortDirection: grid.SortAsc,
		FilterText:    "Toyota",
		GroupColumn:   grid.ColumnMake,
		ScrollBatch:   1000,
	}
}

// withDefaults fills zero-valued options from DefaultOpts. Delta counts are left as configured,
// since zero is a meaningful size for a transaction component.
func (o Opts) withDefaults() Opts {
	defaults := DefaultOpts()

	if o.Rows <= 0 {
		o.Rows = defaults.Rows
	}

	if o.SortColumn == "" {
		o.SortColumn = defaults.SortColumn
	}

	if o.SortDirection == grid.SortNone {
		o.SortDirection = defaults.SortDirection
	}

	if o.FilterText == "" {
		o.FilterText = defaults.FilterText
	}

	if o.GroupColumn == "" {
		o.GroupColumn = defaults.GroupColumn
	}

	if o.ScrollBatch <= 0 {
		o.ScrollBatch = defaults.ScrollBatch
	}

	return o
}

// New creates a suite. A nil harness, generator, sink, or logger is replaced by a default.
func New(g grid.API, host grid.Host, harness *bench.Harness, generator *data.Generator, sink bench.Sink, logger log.Logger, opts Opts) *Suite {
	if harness == nil {
		harness = bench.NewHarness(bench.HarnessOpts{Logger: logger})
	}

	if generator == nil {
		generator = data.NewGenerator(1)
	}

	if sink == nil {
		sink = bench.NoopSink{}
	}

	if logger == nil {
		logger = log.NewNoopLogger()
	}

	return &Suite{
		Grid:      g,
		Host:      host,
		Harness:   harness,
		Generator: generator,
		Sink:      sink,
		Logger:    logger,
		Opts:      opts.withDefaults(),
		metrics:   bench.NewMetrics(),
	}
}

// Metrics returns everything published so far.
func (s *Suite) Metrics() bench.Snapshot {
	return s.metrics.Snapshot()
}

// Run runs a single operation with its configured parameters.
func (s *Suite) Run(ctx context.Context, op Operation) error {
	timer := lib.NewStopwatch()

	s.Logger.Info("suite: running operation: op=%s", op)

	var err error
	switch op {
	case Load:
		err = s.RunDataLoad(ctx, s.Opts.Rows)
	case DeltaUpdate:
		err = s.RunDeltaUpdate(ctx, s.Opts.DeltaAdd, s.Opts.DeltaUpdate, s.Opts.DeltaRemove)
	case Sort:
		err = s.RunSort(ctx, s.Opts.SortColumn, s.Opts.SortDirection)
	case Filter:
		err = s.RunFilter(ctx, s.Opts.FilterText)
	case Scroll:
		err = s.RunScroll(ctx)
	case Group:
		err = s.RunGroup(ctx, s.Opts.GroupColumn)
	default:
		err = fmt.Errorf("suite: unknown operation: op=%s", op)
	}

	if err != nil {
		return err
	}

	s.Logger.Info("suite: completed operation: op=%s elapsed=%v", op, timer.Elapsed())

	return nil
}

// RunAll runs each operation in order, stopping at the first failure.
func (s *Suite) RunAll(ctx context.Context, ops []Operation) error {
	for _, op := range ops {
		if err := s.Run(ctx, op); err != nil {
			return err
		}
	}

	return nil
}

// RunDataLoad generates count rows, binds them to the grid, and times the grid's first render of
// the new data. The render span ends from the grid's first-data-rendered callback.
func (s *Suite) RunDataLoad(ctx context.Context, count int) error {
	var rows []data.Row

	steps := []bench.Step{
		{
			Name:  DataGenerationTime,
			Start: "gen-start",
			End:   "gen-end",
			Run: func(ctx context.Context, span *bench.Span) error {
				rows = s.Generator.Rows(count)
				return nil
			},
		},
		{
			Name:  DataBindingTime,
			Start: "set-start",
			End:   "set-end",
			Run: func(ctx context.Context, span *bench.Span) error {
				s.Grid.SetRowData(rows)
				s.setRows(rows)
				return nil
			},
		},
		{
			Name:     InitialRenderTime,
			Start:    "render-start",
			End:      "render-end",
			Deferred: true,
			Run: func(ctx context.Context, span *bench.Span) error {
				s.Grid.OnFirstDataRendered(span.End)
				return nil
			},
		},
	}

	return s.Harness.RunTimedOperation(ctx, Load.String(), steps, s.metrics, s.Sink)
}

// RunDeltaUpdate applies a single transaction that appends addCount placeholder rows, bumps the
// price of the first updateCount rows, and removes the last removeCount rows. The row mirror is
// updated together with the grid, so it stays in sync even if publishing fails.
func (s *Suite) RunDeltaUpdate(ctx context.Context, addCount int, updateCount int, removeCount int) error {
	current := s.currentRows()

	tx := grid.Transaction{
		Add:    data.PlaceholderRows(data.MaxID(current), addCount),
		Update: head(current, updateCount),
		Remove: tail(current, removeCount),
	}

	for i := range tx.Update {
		tx.Update[i].Price++
	}

	steps := []bench.Step{
		{
			Name:  DeltaUpdateTime,
			Start: "delta-start",
			End:   "delta-end",
			Run: func(ctx context.Context, span *bench.Span) error {
				result := s.Grid.ApplyTransaction(tx)
				s.setRows(applyTransaction(current, tx))
				s.Logger.Debug(
					"suite: applied transaction: added=%d updated=%d removed=%d",
					result.Added,
					result.Updated,
					result.Removed,
				)
				return nil
			},
		},
	}

	return s.Harness.RunTimedOperation(ctx, DeltaUpdate.String(), steps, s.metrics, s.Sink)
}

// RunSort times sorting the grid by a single column.
func (s *Suite) RunSort(ctx context.Context, colID string, direction grid.SortDirection) error {
	state := []grid.ColumnState{{ColID: colID, Sort: direction}}

	steps := []bench.Step{
		{
			Name:  SortTime,
			Start: "sort-start",
			End:   "sort-end",
			Run: func(ctx context.Context, span *bench.Span) error {
				return s.Grid.ApplyColumnState(state)
			},
		},
	}

	return s.Harness.RunTimedOperation(ctx, Sort.String(), steps, s.metrics, s.Sink)
}

// RunFilter times applying a quick filter.
func (s *Suite) RunFilter(ctx context.Context, text string) error {
	steps := []bench.Step{
		{
			Name:  FilterTime,
			Start: "filter-start",
			End:   "filter-end",
			Run: func(ctx context.Context, span *bench.Span) error {
				s.Grid.SetQuickFilter(text)
				return nil
			},
		},
	}

	return s.Harness.RunTimedOperation(ctx, Filter.String(), steps, s.metrics, s.Sink)
}

// RunScroll scrolls through every row, one batch per frame. It yields to the host once per batch,
// so N rows take ceil(N / batch) frames.
func (s *Suite) RunScroll(ctx context.Context) error {
	total := len(s.currentRows())
	batch := s.Opts.ScrollBatch

	steps := []bench.Step{
		{
			Name:  ScrollTestTime,
			Start: "scroll-start",
			End:   "scroll-end",
			Run: func(ctx context.Context, span *bench.Span) error {
				for i := 0; i < total; i += batch {
					s.Grid.EnsureIndexVisible(i)

					if err := grid.NextFrame(ctx, s.Host); err != nil {
						return fmt.Errorf("suite: scroll interrupted: row=%d err=%w", i, err)
					}
				}
				return nil
			},
		},
	}

	return s.Harness.RunTimedOperation(ctx, Scroll.String(), steps, s.metrics, s.Sink)
}

// RunGroup times grouping rows by a single column.
func (s *Suite) RunGroup(ctx context.Context, colID string) error {
	steps := []bench.Step{
		{
			Name:  GroupingTime,
			Start: "group-start",
			End:   "group-end",
			Run: func(ctx context.Context, span *bench.Span) error {
				return s.Grid.SetRowGroupColumns(colID)
			},
		},
	}

	return s.Harness.RunTimedOperation(ctx, Group.String(), steps, s.metrics, s.Sink)
}

func (s *Suite) currentRows() []data.Row {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.rows
}

func (s *Suite) setRows(rows []data.Row) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.rows = rows
}

// head copies up to n rows from the start of rows.
func head(rows []data.Row, n int) []data.Row {
	if n <= 0 {
		return nil
	}

	if n > len(rows) {
		n = len(rows)
	}

	return append([]data.Row(nil), rows[:n]...)
}

// tail copies up to n rows from the end of rows.
func tail(rows []data.Row, n int) []data.Row {
	if n <= 0 {
		return nil
	}

	if n > len(rows) {
		n = len(rows)
	}

	return append([]data.Row(nil), rows[len(rows)-n:]...)
}

// applyTransaction mirrors a grid transaction onto a local copy of the rows: removed rows are
// dropped, added rows appended, and updated rows replaced in place.
func applyTransaction(rows []data.Row, tx grid.Transaction) []data.Row {
	removed := make(map[int]struct{}, len(tx.Remove))
	for _, row := range tx.Remove {
		removed[row.ID] = struct{}{}
	}

	updated := make(map[int]data.Row, len(tx.Update))
	for _, row := range tx.Update {
		updated[row.ID] = row
	}

	next := make([]data.Row, 0, len(rows)+len(tx.Add))
	for _, row := range rows {
		if _, ok := removed[row.ID]; ok {
			continue
		}
		next = append(next, row)
	}
	next = append(next, tx.Add...)

	for i, row := range next {
		if update, ok := updated[row.ID]; ok {
			next[i] = update
		}
	}

	return next
}
