package exporter

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"

	"kpidash/internal/kpi"
)

// Report is the finished export artifact: the document bytes and the
// deterministic download name derived from the selected car.
type Report struct {
	Data     []byte
	Filename string
}

// page geometry in mm on landscape A4 (297 x 210)
const (
	plotLeft   = 25.0
	plotTop    = 28.0
	plotRight  = 235.0
	plotBottom = 150.0
	legendX    = 242.0
	pageBottom = 205.0
	maxXTicks  = 48
)

// seriesPalette are the line colors cycled across grouped sub-series.
var seriesPalette = [][3]int{
	{31, 119, 180}, {255, 127, 14}, {44, 160, 44}, {214, 39, 40},
	{148, 103, 189}, {140, 86, 75}, {227, 119, 194}, {127, 127, 127},
	{188, 189, 34}, {23, 190, 207},
}

// PDFExporter renders one chart page per metric into a single PDF.
type PDFExporter struct {
	logger *slog.Logger
}

// NewPDFExporter creates a PDF exporter.
func NewPDFExporter(logger *slog.Logger) *PDFExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExporter{logger: logger.With(slog.String("component", "pdf_exporter"))}
}

// Export emits one page per metric, in metric order, each holding a
// line/marker chart of the metric over the view's label axis, split
// into one colored sub-series per distinct value of the group column.
// Metrics with no plottable rows still get their page, annotated, so
// the page count stays predictable. The whole document is built in
// memory; any drawing error discards it.
func (e *PDFExporter) Export(
	view []kpi.EnrichedRow,
	metrics []string,
	mapping kpi.RoleMapping,
	groupBy kpi.Role,
	car string,
) (*Report, error) {
	if len(metrics) == 0 {
		return nil, fmt.Errorf("no metrics selected for export")
	}

	groupColumn := ""
	if groupBy != "" {
		groupColumn = mapping.Column(groupBy)
	}
	legendTitle := legendTitleFor(groupBy, groupColumn)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	for _, metric := range metrics {
		groups := kpi.GroupSeries(view, metric, groupColumn)
		e.renderPage(pdf, view, metric, groups, legendTitle)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		e.logger.Error("pdf generation failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	e.logger.Info("report exported",
		slog.Int("metrics", len(metrics)),
		slog.Int("rows", len(view)),
		slog.Int("bytes", buf.Len()))

	return &Report{Data: buf.Bytes(), Filename: ReportFilename(car)}, nil
}

// ReportFilename derives the suggested download name from the car
// identifier, falling back to a generic stem when none is selected.
func ReportFilename(car string) string {
	stem := sanitizeFilename(car)
	if stem == "" {
		stem = "KPI"
	}
	return stem + "_KPIs.pdf"
}

func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return b.String()
}

func legendTitleFor(groupBy kpi.Role, groupColumn string) string {
	if groupColumn != "" {
		return kpi.DisplayName(groupColumn)
	}
	if groupBy != "" {
		return string(groupBy)
	}
	return ""
}

func (e *PDFExporter) renderPage(
	pdf *fpdf.Fpdf,
	view []kpi.EnrichedRow,
	metric string,
	groups []kpi.GroupedSeries,
	legendTitle string,
) {
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(0, 10, fmt.Sprintf("%s per Session/Run/Lap", metric), "", 1, "C", false, 0, "")

	lo, hi, hasData := valueRange(groups)
	if !hasData {
		e.drawFrame(pdf)
		pdf.SetFont("Helvetica", "I", 12)
		pdf.SetTextColor(120, 120, 120)
		pdf.Text((plotLeft+plotRight)/2-15, (plotTop+plotBottom)/2, "no data")
		return
	}

	labels := labelAxis(view)
	e.drawFrame(pdf)
	e.drawYAxis(pdf, lo, hi)
	e.drawXAxis(pdf, labels)

	for gi, group := range groups {
		color := seriesPalette[gi%len(seriesPalette)]
		e.drawSeries(pdf, group, labels, lo, hi, color)
	}
	if len(groups) > 1 || groups[0].Key != "" {
		e.drawLegend(pdf, groups, legendTitle)
	}

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(60, 60, 60)
	pdf.Text(plotLeft, pageBottom-2, "x: Date | Run | Lap | Session | Track")
}

// labelAxis builds the shared category axis: every row label of the
// view in view order, positions keyed by first occurrence.
func labelAxis(view []kpi.EnrichedRow) map[string]int {
	axis := make(map[string]int, len(view))
	for _, row := range view {
		if _, ok := axis[row.Label]; !ok {
			axis[row.Label] = len(axis)
		}
	}
	return axis
}

func valueRange(groups []kpi.GroupedSeries) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, g := range groups {
		for _, p := range g.Points {
			if p.Value == nil {
				continue
			}
			lo = math.Min(lo, *p.Value)
			hi = math.Max(hi, *p.Value)
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	// headroom so markers do not sit on the frame
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad, true
}

func (e *PDFExporter) drawFrame(pdf *fpdf.Fpdf) {
	pdf.SetDrawColor(80, 80, 80)
	pdf.SetLineWidth(0.3)
	pdf.Rect(plotLeft, plotTop, plotRight-plotLeft, plotBottom-plotTop, "D")
}

func (e *PDFExporter) drawYAxis(pdf *fpdf.Fpdf, lo, hi float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(60, 60, 60)
	const ticks = 5
	for i := 0; i <= ticks; i++ {
		frac := float64(i) / ticks
		val := lo + (hi-lo)*frac
		y := plotBottom - (plotBottom-plotTop)*frac

		pdf.SetDrawColor(210, 210, 210)
		pdf.SetLineWidth(0.15)
		pdf.Line(plotLeft, y, plotRight, y)

		label := fmt.Sprintf("%.4g", val)
		pdf.Text(plotLeft-pdf.GetStringWidth(label)-2, y+1.2, label)
	}
}

func (e *PDFExporter) drawXAxis(pdf *fpdf.Fpdf, axis map[string]int) {
	labels := make([]string, len(axis))
	for label, i := range axis {
		labels[i] = label
	}
	step := 1
	if len(labels) > maxXTicks {
		step = (len(labels) + maxXTicks - 1) / maxXTicks
	}

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(60, 60, 60)
	for i := 0; i < len(labels); i += step {
		x := xPos(i, len(labels))
		pdf.SetDrawColor(80, 80, 80)
		pdf.SetLineWidth(0.2)
		pdf.Line(x, plotBottom, x, plotBottom+1.2)

		// rotate ticks for readability, as the dashboards do
		pdf.TransformBegin()
		pdf.TransformRotate(60, x, plotBottom+3)
		pdf.Text(x-pdf.GetStringWidth(labels[i]), plotBottom+3, labels[i])
		pdf.TransformEnd()
	}
}

func xPos(i, n int) float64 {
	if n <= 1 {
		return (plotLeft + plotRight) / 2
	}
	return plotLeft + (plotRight-plotLeft)*float64(i)/float64(n-1)
}

func yPos(v, lo, hi float64) float64 {
	frac := (v - lo) / (hi - lo)
	return plotBottom - (plotBottom-plotTop)*frac
}

func (e *PDFExporter) drawSeries(
	pdf *fpdf.Fpdf,
	group kpi.GroupedSeries,
	axis map[string]int,
	lo, hi float64,
	color [3]int,
) {
	pdf.SetDrawColor(color[0], color[1], color[2])
	pdf.SetFillColor(color[0], color[1], color[2])
	pdf.SetLineWidth(0.4)

	prevX, prevY := 0.0, 0.0
	havePrev := false
	for _, p := range group.Points {
		if p.Value == nil {
			// null point: break the line so the gap stays visible
			havePrev = false
			continue
		}
		x := xPos(axis[p.Label], len(axis))
		y := yPos(*p.Value, lo, hi)
		if havePrev {
			pdf.Line(prevX, prevY, x, y)
		}
		pdf.Circle(x, y, 0.8, "F")
		prevX, prevY, havePrev = x, y, true
	}
}

func (e *PDFExporter) drawLegend(pdf *fpdf.Fpdf, groups []kpi.GroupedSeries, title string) {
	y := plotTop
	if title != "" {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetTextColor(30, 30, 30)
		pdf.Text(legendX, y, title)
		y += 5
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(60, 60, 60)
	for gi, group := range groups {
		if y > plotBottom {
			break
		}
		color := seriesPalette[gi%len(seriesPalette)]
		pdf.SetFillColor(color[0], color[1], color[2])
		pdf.Rect(legendX, y-2.2, 3, 3, "F")
		name := group.Key
		if name == "" {
			name = "series"
		}
		pdf.Text(legendX+4.5, y, name)
		y += 4.5
	}
}
