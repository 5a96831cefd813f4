package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"gridbench/internal/bench"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	valueStyle  = cellStyle.Align(lipgloss.Right)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

// TableSink is an implementation of bench.Sink that prints each snapshot as a two-column table of
// measurement names and durations in milliseconds.
type TableSink struct {
	out   io.Writer
	title string
	mutex sync.Mutex
}

// NewTableSink creates a table sink writing to out. The title, if non-empty, is printed above
// every table.
func NewTableSink(out io.Writer, title string) *TableSink {
	return &TableSink{out: out, title: title}
}

// Publish renders and writes the snapshot.
func (s *TableSink) Publish(snapshot bench.Snapshot) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.title != "" {
		if _, err := fmt.Fprintln(s.out, titleStyle.Render(s.title)); err != nil {
			return fmt.Errorf("report: error writing table: err=%w", err)
		}
	}

	if _, err := fmt.Fprintln(s.out, RenderTable(snapshot)); err != nil {
		return fmt.Errorf("report: error writing table: err=%w", err)
	}

	return nil
}

// RenderTable formats a snapshot as a table, one row per measurement in publication order.
func RenderTable(snapshot bench.Snapshot) string {
	rows := make([][]string, 0, snapshot.Len())
	for i, label := range snapshot.Labels {
		rows = append(rows, []string{label, formatMs(snapshot.Values[i])})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Metric", "Duration (ms)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1:
				return valueStyle
			default:
				return cellStyle
			}
		})

	return t.Render()
}

func formatMs(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
