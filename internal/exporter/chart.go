package exporter

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"kpidash/internal/kpi"
)

// ChartOptions selects how the interactive chart document is rendered.
type ChartOptions struct {
	// GroupBy is the categorical role coloring the sub-series; empty
	// renders a single series.
	GroupBy kpi.Role
	// Scatter switches from line+marker to a scatter view.
	Scatter bool
	// Trend adds an ordinary-least-squares trend line to scatter views.
	Trend bool
}

// ChartHTML renders a standalone HTML chart document for one metric
// over the view, grouped the same way the PDF pages are. The UI
// collaborator embeds the document as-is.
func ChartHTML(
	view []kpi.EnrichedRow,
	metric string,
	mapping kpi.RoleMapping,
	o ChartOptions,
) ([]byte, error) {
	groupColumn := ""
	if o.GroupBy != "" {
		groupColumn = mapping.Column(o.GroupBy)
	}
	groups := kpi.GroupSeries(view, metric, groupColumn)
	axis := labelAxis(view)
	labels := make([]string, len(axis))
	for label, i := range axis {
		labels[i] = label
	}

	var buf bytes.Buffer
	var err error
	if o.Scatter {
		err = renderScatter(&buf, metric, labels, axis, groups, o.Trend)
	} else {
		err = renderLine(&buf, metric, labels, axis, groups)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}

func globalOpts(metric string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s per Session/Run/Lap", metric),
			Subtitle: "x: Date | Run | Lap | Session | Track",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			AxisLabel: &opts.AxisLabel{
				Rotate: 90,
			},
		}),
		charts.WithGridOpts(opts.Grid{
			Bottom: "30%",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "1200px",
			Height: "700px",
		}),
	}
}

// alignedValues spreads a group's points over the shared label axis,
// nil where the group has no value for a label.
func alignedValues(group kpi.GroupedSeries, axis map[string]int) []interface{} {
	values := make([]interface{}, len(axis))
	for _, p := range group.Points {
		if p.Value != nil {
			values[axis[p.Label]] = *p.Value
		}
	}
	return values
}

func seriesName(group kpi.GroupedSeries) string {
	if group.Key == "" {
		return "all"
	}
	return group.Key
}

func renderLine(
	buf *bytes.Buffer,
	metric string,
	labels []string,
	axis map[string]int,
	groups []kpi.GroupedSeries,
) error {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOpts(metric)...)
	line.SetXAxis(labels)
	for _, group := range groups {
		data := make([]opts.LineData, 0, len(labels))
		for _, v := range alignedValues(group, axis) {
			data = append(data, opts.LineData{Value: v})
		}
		line.AddSeries(seriesName(group), data,
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol: opts.Bool(true),
			}))
	}
	return line.Render(buf)
}

func renderScatter(
	buf *bytes.Buffer,
	metric string,
	labels []string,
	axis map[string]int,
	groups []kpi.GroupedSeries,
	trend bool,
) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(globalOpts(metric)...)
	scatter.SetXAxis(labels)
	for _, group := range groups {
		data := make([]opts.ScatterData, 0, len(labels))
		for _, v := range alignedValues(group, axis) {
			data = append(data, opts.ScatterData{Value: v, SymbolSize: 8})
		}
		scatter.AddSeries(seriesName(group), data)
	}

	if trend {
		if fit, ok := trendValues(flatten(groups, axis)); ok {
			line := charts.NewLine()
			line.SetXAxis(labels)
			data := make([]opts.LineData, len(fit))
			for i, v := range fit {
				data[i] = opts.LineData{Value: v}
			}
			line.AddSeries("trend", data,
				charts.WithLineChartOpts(opts.LineChart{
					ShowSymbol: opts.Bool(false),
				}))
			scatter.Overlap(line)
		}
	}
	return scatter.Render(buf)
}

// flatten projects grouped points back onto the axis for the trend fit.
func flatten(groups []kpi.GroupedSeries, axis map[string]int) []*float64 {
	flat := make([]*float64, len(axis))
	for _, group := range groups {
		for _, p := range group.Points {
			if p.Value != nil {
				v := *p.Value
				flat[axis[p.Label]] = &v
			}
		}
	}
	return flat
}

// trendValues fits y = a + b*x by ordinary least squares over the
// non-null points, x being the category index. Needs two points.
func trendValues(values []*float64) ([]float64, bool) {
	var n, sumX, sumY, sumXX, sumXY float64
	for i, v := range values {
		if v == nil {
			continue
		}
		x := float64(i)
		n++
		sumX += x
		sumY += *v
		sumXX += x * x
		sumXY += x * *v
	}
	if n < 2 {
		return nil, false
	}
	det := n*sumXX - sumX*sumX
	if det == 0 {
		return nil, false
	}
	b := (n*sumXY - sumX*sumY) / det
	a := (sumY - b*sumX) / n

	fit := make([]float64, len(values))
	for i := range values {
		fit[i] = a + b*float64(i)
	}
	return fit, true
}
