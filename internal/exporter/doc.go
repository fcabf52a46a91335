// Package exporter renders filtered KPI views into deliverable
// artifacts: the multi-page PDF report (one chart page per metric,
// sub-series colored by a categorical role) and the standalone HTML
// chart document used by the interactive dashboard path.
//
// The PDF is fully materialized in memory before being returned; a
// failure anywhere during drawing discards the partial buffer and
// surfaces an error, so callers never receive a truncated document.
package exporter
