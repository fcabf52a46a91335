package http

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"kpidash/internal/config"
	"kpidash/internal/dataprocessing"
	apierrors "kpidash/internal/errors"
	"kpidash/internal/exporter"
	"kpidash/internal/kpi"
)

type contextKey string

const datasetCtxKey contextKey = "dataset"

// DatasetHandler serves the upload/series/chart/export endpoints the UI
// collaborator consumes.
type DatasetHandler struct {
	store     *DatasetStore
	resolver  *kpi.Resolver
	enricher  *kpi.Enricher
	pdf       *exporter.PDFExporter
	validate  *validator.Validate
	maxUpload int64
	logger    *slog.Logger
}

// NewDatasetHandler creates a dataset handler wired to the pipeline.
func NewDatasetHandler(cfg *config.Config, logger *slog.Logger) *DatasetHandler {
	return &DatasetHandler{
		store:     NewDatasetStore(cfg.Pipeline.MaxDatasets),
		resolver:  kpi.NewResolver(cfg.Pipeline.FuzzyThreshold),
		enricher:  kpi.NewEnricher(cfg.Pipeline.LabelDateFormat),
		pdf:       exporter.NewPDFExporter(logger),
		validate:  validator.New(),
		maxUpload: cfg.Limits.MaxUploadBytes,
		logger:    logger.With(slog.String("component", "dataset_handler")),
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)

	r.Route("/{datasetID}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/series", h.GetSeries)
		r.Get("/chart", h.GetChart)
		r.Post("/export", h.Export)
	})
	return r
}

// DatasetCtx loads the dataset referenced by the URL into the request
// context.
func (h *DatasetHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "datasetID")
		ds, ok := h.store.Get(id)
		if !ok {
			render.Render(w, r, apierrors.ErrDatasetNotFound)
			return
		}
		ctx := context.WithValue(r.Context(), datasetCtxKey, ds)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func datasetFrom(ctx context.Context) *Dataset {
	ds, _ := ctx.Value(datasetCtxKey).(*Dataset)
	return ds
}

// UploadResponse describes one ingested workbook: everything the UI
// needs to populate its selectors.
type UploadResponse struct {
	DatasetID string            `json:"dataset_id"`
	RowCount  int               `json:"row_count"`
	Columns   []string          `json:"columns"`
	Mapping   map[string]string `json:"mapping"`
	Metrics   []string          `json:"metrics"`
	Cars      []string          `json:"cars"`
	Tracks    []string          `json:"tracks"`
	Sessions  []string          `json:"sessions"`
	Drivers   []string          `json:"drivers"`
}

// Upload ingests a KPI workbook (multipart field "file", .xlsx or .csv)
// and runs the pure pipeline stages once. Re-uploading identical bytes
// hits the fingerprint memo and returns the stored dataset.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(fmt.Errorf("multipart form: %w", err)))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		render.Render(w, r, apierrors.ValidationFailed("file", "A workbook file is required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	sum := sha256.Sum256(content)
	id := hex.EncodeToString(sum[:8])
	if ds, ok := h.store.Get(id); ok {
		h.logger.Info("dataset upload memo hit", slog.String("dataset_id", id))
		render.JSON(w, r, h.uploadResponse(ds))
		return
	}

	table, err := parseUpload(header.Filename, content)
	if err != nil {
		h.logger.Warn("workbook parse failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.ErrEmptyWorkbook)
		return
	}

	mapping, missing := h.resolver.Resolve(table.Columns, kpi.DefaultRequiredRoles)
	if len(missing) > 0 {
		roles := make([]string, len(missing))
		for i, role := range missing {
			roles[i] = string(role)
		}
		render.Render(w, r, apierrors.MissingRoles(roles, table.Columns))
		return
	}

	ds := &Dataset{
		ID:         id,
		Table:      table,
		Mapping:    mapping,
		Rows:       h.enricher.Enrich(table, mapping),
		Metrics:    kpi.CandidateMetrics(table, mapping),
		UploadedAt: time.Now(),
	}
	h.store.Put(ds)

	h.logger.Info("dataset ingested",
		slog.String("dataset_id", id),
		slog.String("filename", header.Filename),
		slog.Int("rows", len(ds.Rows)),
		slog.Int("metrics", len(ds.Metrics)))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, h.uploadResponse(ds))
}

func parseUpload(filename string, content []byte) (*dataprocessing.Table, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return dataprocessing.ParseCSV(bytes.NewReader(content))
	}
	return dataprocessing.ParseWorkbook(bytes.NewReader(content))
}

func (h *DatasetHandler) uploadResponse(ds *Dataset) UploadResponse {
	mapping := make(map[string]string, len(ds.Mapping))
	for role, col := range ds.Mapping {
		mapping[string(role)] = col
	}
	return UploadResponse{
		DatasetID: ds.ID,
		RowCount:  len(ds.Rows),
		Columns:   ds.Table.Columns,
		Mapping:   mapping,
		Metrics:   ds.Metrics,
		Cars:      kpi.Distinct(ds.Rows, ds.Mapping, kpi.RoleCar),
		Tracks:    kpi.Distinct(ds.Rows, ds.Mapping, kpi.RoleTrack),
		Sessions:  kpi.Distinct(ds.Rows, ds.Mapping, kpi.RoleSessionName),
		Drivers:   kpi.Distinct(ds.Rows, ds.Mapping, kpi.RoleDriver),
	}
}

// GetSeries returns the filtered, ordered series with statistics for
// one metric. An empty series carries empty=true and zeroed stats; the
// UI renders its explicit no-data state from that flag.
func (h *DatasetHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	ds := datasetFrom(r.Context())
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		render.Render(w, r, apierrors.ValidationFailed("metric", "Query parameter metric is required"))
		return
	}
	if !contains(ds.Metrics, metric) {
		render.Render(w, r, apierrors.ErrUnknownMetric)
		return
	}

	view := kpi.Apply(ds.Rows, ds.Mapping, filterFromQuery(r))
	render.JSON(w, r, kpi.BuildSeries(view, metric))
}

// GetChart returns the standalone HTML chart document for one metric.
func (h *DatasetHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	ds := datasetFrom(r.Context())
	q := r.URL.Query()

	metric := q.Get("metric")
	if metric == "" {
		render.Render(w, r, apierrors.ValidationFailed("metric", "Query parameter metric is required"))
		return
	}
	if !contains(ds.Metrics, metric) {
		render.Render(w, r, apierrors.ErrUnknownMetric)
		return
	}
	groupBy, apiErr := parseGroupRole(q.Get("group_by"))
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}

	view := kpi.Apply(ds.Rows, ds.Mapping, filterFromQuery(r))
	html, err := exporter.ChartHTML(view, metric, ds.Mapping, exporter.ChartOptions{
		GroupBy: groupBy,
		Scatter: q.Get("scatter") == "true",
		Trend:   q.Get("trend") == "true",
	})
	if err != nil {
		render.Render(w, r, apierrors.ErrInternalServer)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// ExportRequest selects the metrics, grouping and filter of a PDF
// export.
type ExportRequest struct {
	Metrics []string   `json:"metrics" validate:"required,min=1,dive,required"`
	GroupBy string     `json:"group_by"`
	Filter  kpi.Filter `json:"filter"`
}

// Bind implements render.Binder.
func (req *ExportRequest) Bind(r *http.Request) error { return nil }

// Export produces the multi-page PDF report for the selected metrics
// and streams it as a download.
func (h *DatasetHandler) Export(w http.ResponseWriter, r *http.Request) {
	ds := datasetFrom(r.Context())

	var req ExportRequest
	if err := render.Bind(r, &req); err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	for _, metric := range req.Metrics {
		if !contains(ds.Metrics, metric) {
			render.Render(w, r, apierrors.ErrUnknownMetric)
			return
		}
	}
	groupBy, apiErr := parseGroupRole(req.GroupBy)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}

	view := kpi.Apply(ds.Rows, ds.Mapping, req.Filter)
	report, err := h.pdf.Export(view, req.Metrics, ds.Mapping, groupBy, req.Filter.Car)
	if err != nil {
		h.logger.Error("export failed",
			slog.String("dataset_id", ds.ID),
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.ExportFailed(err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", report.Filename))
	w.Write(report.Data)
}

// filterFromQuery builds the caller-owned filter from query params.
// Multi-selects arrive comma-separated; absent params stay empty and
// are therefore pass-through.
func filterFromQuery(r *http.Request) kpi.Filter {
	q := r.URL.Query()
	return kpi.Filter{
		Car:      q.Get("car"),
		Track:    q.Get("track"),
		Sessions: splitParam(q.Get("sessions")),
		Drivers:  splitParam(q.Get("drivers")),
	}
}

func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseGroupRole maps the group_by request value to a role. Empty means
// the dashboard default (session date); "none" disables grouping.
func parseGroupRole(s string) (kpi.Role, *apierrors.APIError) {
	switch s {
	case "":
		return kpi.RoleSessionDate, nil
	case "none":
		return "", nil
	}
	for _, role := range kpi.Roles {
		if string(role) == s {
			return role, nil
		}
	}
	return "", apierrors.ValidationFailed("group_by", "Unknown grouping role: "+s)
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
