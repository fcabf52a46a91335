package kpi

import (
	"sort"
	"strings"
	"time"

	"kpidash/internal/dataprocessing"
)

// DefaultLabelDateFormat is the minute-resolution layout used for the
// date segment of display labels.
const DefaultLabelDateFormat = "2006-01-02 15:04"

// labelPlaceholder stands in for absent or empty role values so labels
// stay positionally comparable across every row of a table.
const labelPlaceholder = "NA"

// Enricher turns raw rows into enriched, sorted rows. The date format
// only affects the label, never the order key.
type Enricher struct {
	dateFormat string
}

// NewEnricher creates an enricher; an empty format falls back to
// DefaultLabelDateFormat.
func NewEnricher(dateFormat string) *Enricher {
	if dateFormat == "" {
		dateFormat = DefaultLabelDateFormat
	}
	return &Enricher{dateFormat: dateFormat}
}

// Enrich computes the order key and display label for every row and
// returns the rows stably sorted by (date, run, lap) ascending with nil
// components sorting last. The input table is not modified.
func (e *Enricher) Enrich(t *dataprocessing.Table, mapping RoleMapping) []EnrichedRow {
	out := make([]EnrichedRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		er := EnrichedRow{Row: row}
		er.Key = e.orderKey(row, mapping)
		er.Label = e.label(row, mapping, er.Key)
		out = append(out, er)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return compareKeys(out[i].Key, out[j].Key) < 0
	})
	return out
}

// Enrich runs with the default label date format.
func Enrich(t *dataprocessing.Table, mapping RoleMapping) []EnrichedRow {
	return NewEnricher("").Enrich(t, mapping)
}

func (e *Enricher) orderKey(row dataprocessing.Row, mapping RoleMapping) OrderKey {
	var key OrderKey
	if col, ok := mapping[RoleSessionDate]; ok {
		if ts, ok := dataprocessing.ParseTime(row[col]); ok {
			key.Date = &ts
		}
	}
	if col, ok := mapping[RoleRun]; ok {
		if v, ok := dataprocessing.ParseNumber(row[col]); ok {
			key.Run = &v
		}
	}
	if col, ok := mapping[RoleLap]; ok {
		if v, ok := dataprocessing.ParseNumber(row[col]); ok {
			key.Lap = &v
		}
	}
	return key
}

// label builds "<date> | Run <n> | Lap <n> | <session> | <track>".
// Unparseable dates keep their raw spelling; absent or empty values
// contribute the NA placeholder instead of being omitted.
func (e *Enricher) label(row dataprocessing.Row, mapping RoleMapping, key OrderKey) string {
	date := labelPlaceholder
	if key.Date != nil {
		date = key.Date.Format(e.dateFormat)
	} else if raw := strings.TrimSpace(roleValue(row, mapping, RoleSessionDate)); raw != "" && !isNullMarker(raw) {
		date = raw
	}

	segments := []string{
		date,
		"Run " + orPlaceholder(roleValue(row, mapping, RoleRun)),
		"Lap " + orPlaceholder(roleValue(row, mapping, RoleLap)),
		orPlaceholder(roleValue(row, mapping, RoleSessionName)),
		orPlaceholder(roleValue(row, mapping, RoleTrack)),
	}
	return strings.Join(segments, " | ")
}

func roleValue(row dataprocessing.Row, mapping RoleMapping, r Role) string {
	col, ok := mapping[r]
	if !ok {
		return ""
	}
	return row[col]
}

func orPlaceholder(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || isNullMarker(v) {
		return labelPlaceholder
	}
	return v
}

// isNullMarker reports explicit null spellings the timing tools write
// into cells they could not fill.
func isNullMarker(v string) bool {
	switch strings.ToLower(v) {
	case "n/a", "na", "null", "none", "-":
		return true
	}
	return false
}

// compareKeys orders two keys component-wise: date, then run, then lap,
// nil after any valid value within each component.
func compareKeys(a, b OrderKey) int {
	if c := compareTimePtr(a.Date, b.Date); c != 0 {
		return c
	}
	if c := compareFloatPtr(a.Run, b.Run); c != 0 {
		return c
	}
	return compareFloatPtr(a.Lap, b.Lap)
}

func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	}
	return 0
}

func compareFloatPtr(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}
