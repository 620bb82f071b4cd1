package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/qcmdpc/qcmdpc-dfr/harness"
	"github.com/qcmdpc/qcmdpc-dfr/internal/dfrstat"
)

// lineValue maps infinities to the echarts gap marker; they cannot be
// encoded as JSON numbers.
func lineValue(v float64) opts.LineData {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return opts.LineData{Value: "-"}
	}
	return opts.LineData{Value: math.Round(v*1000) / 1000}
}

func newDFRChart(title string, pts []dfrstat.Point, alpha float64) *charts.Line {
	x := make([]string, len(pts))
	lower := make([]opts.LineData, len(pts))
	dfr := make([]opts.LineData, len(pts))
	upper := make([]opts.LineData, len(pts))
	for i, p := range pts {
		x[i] = strconv.Itoa(p.Iter)
		lower[i] = lineValue(p.Lower)
		dfr[i] = lineValue(p.Log2)
		upper[i] = lineValue(p.Upper)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("log2 DFR, %g%% confidence", 100*(1-alpha))}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "iterations"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "log2 DFR", Type: "value"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(x).
		AddSeries("upper", upper).
		AddSeries("dfr", dfr).
		AddSeries("lower", lower)
	return line
}

func newIterChart(s harness.Stats) *charts.Bar {
	last := 0
	for i, c := range s.Iter {
		if c != 0 {
			last = i
		}
	}
	x := make([]string, last+1)
	items := make([]opts.BarData, last+1)
	for i := range x {
		x[i] = strconv.Itoa(i)
		items[i] = opts.BarData{Value: s.Iter[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Iterations to decode",
			Subtitle: fmt.Sprintf("%d trials, %d failures", s.Tests, s.Failures()),
		}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "400px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("decoded", items).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))
	return bar
}

// WriteChart renders an HTML page with the failure rate curve and the
// iteration histogram of s.
func WriteChart(w io.Writer, title string, s harness.Stats, alpha float64) error {
	page := components.NewPage()
	page.AddCharts(newDFRChart(title, dfrstat.Curve(s, alpha), alpha), newIterChart(s))
	return page.Render(w)
}
