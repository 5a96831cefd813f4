package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"gridbench/internal/bench"
)

// DefaultChartTitle is used when a chart sink is created without a title.
const DefaultChartTitle = "Grid Performance Metrics"

// ChartSink is an implementation of bench.Sink that redraws a bar chart of every published
// measurement into an HTML file.
type ChartSink struct {
	path     string
	title    string
	subtitle string
	mutex    sync.Mutex
}

// NewChartSink creates a chart sink writing to path. The subtitle is typically the run ID.
func NewChartSink(path string, title string, subtitle string) *ChartSink {
	if title == "" {
		title = DefaultChartTitle
	}

	return &ChartSink{path: path, title: title, subtitle: subtitle}
}

// Publish replaces the chart file with one drawn from the snapshot.
func (s *ChartSink) Publish(snapshot bench.Snapshot) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("report: error creating chart file: path=%s err=%w", s.path, err)
	}

	if err := RenderChart(file, snapshot, s.title, s.subtitle); err != nil {
		file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("report: error closing chart file: path=%s err=%w", s.path, err)
	}

	return nil
}

// RenderChart writes an HTML page containing a bar chart of the snapshot: one bar per
// measurement, labeled with its duration rounded to two decimal places.
func RenderChart(w io.Writer, snapshot bench.Snapshot, title string, subtitle string) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Metric"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Duration (ms)"}),
	)

	items := make([]opts.BarData, 0, snapshot.Len())
	for _, value := range snapshot.Values {
		items = append(items, opts.BarData{Value: math.Round(value*100) / 100})
	}

	bar.SetXAxis(snapshot.Labels).
		AddSeries("Duration (ms)", items).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top", Formatter: "{c} ms"}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("report: error rendering chart: err=%w", err)
	}

	return nil
}
