// Package kpi implements the KPI charting data pipeline for per-lap
// telemetry spreadsheets. It consolidates column resolution, row
// enrichment, metric classification, filtering and series statistics
// into a cohesive package that turns an arbitrarily-shaped table into
// plottable, ordered series.
//
// # Architecture
//
// The package is organized into five components:
//
// 1. Resolver: maps heterogeneous raw headers to canonical roles
// 2. Enricher: derives a sortable order key and display label per row
// 3. Classifier: decides which columns are plottable numeric metrics
// 4. Filter: applies cascading car/track/session/driver predicates
// 5. Series: builds ordered (label, value) points with min/max/mean
//
// # Data Flow
//
// The typical flow through this package:
//
//	Table → Resolve → Enrich → CandidateMetrics → Apply → BuildSeries
//
// All functions are pure over their inputs: for a fixed table and the
// static alias vocabulary the outputs are deterministic, so callers may
// memoize the resolve/enrich/classify stages per uploaded file.
//
// # Error Handling
//
// Unparseable cells never abort the pipeline. Dates, runs, laps and
// metric values that fail parsing become nulls that sort last or are
// excluded from statistics; only missing required roles stop a file.
package kpi
