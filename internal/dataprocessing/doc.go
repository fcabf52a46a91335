// Package dataprocessing reads KPI workbooks into the raw table model
// consumed by the kpi pipeline.
//
// The package handles the complete ingestion lifecycle: sheet discovery
// and header-row detection for Excel files, CSV fallback for exported
// sheets, and the shared best-effort scalar coercion rules (numbers and
// timestamps parse to typed values or to null, never to zero).
//
// Basic usage:
//
//	table, err := dataprocessing.ParseWorkbook(file)
//	if err != nil {
//	    return err
//	}
//
// Every row of the resulting Table carries the full column set; short
// source rows are padded with empty cells so downstream lookups never
// index out of range.
package dataprocessing
