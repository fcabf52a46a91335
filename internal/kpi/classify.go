package kpi

import (
	"regexp"

	"kpidash/internal/dataprocessing"
)

// reservedSuffix matches auxiliary identification columns such as
// "DataSet - Info" or "pBrake - Change" that must never be offered as
// metrics even when their content is numeric.
var reservedSuffix = regexp.MustCompile(`(?i)[\s_-]*-[\s_]*(info|change)\s*$`)

// CandidateMetrics returns the plottable metric columns of a table in
// original column order. A column qualifies when it is not a resolved
// role column, does not carry a reserved auxiliary suffix, and at least
// one of its values coerces to a number.
func CandidateMetrics(t *dataprocessing.Table, mapping RoleMapping) []string {
	roleCols := make(map[string]bool, len(mapping))
	for _, col := range mapping {
		roleCols[col] = true
	}

	var metrics []string
	for _, col := range t.Columns {
		if roleCols[col] {
			continue
		}
		if reservedSuffix.MatchString(col) {
			continue
		}
		if !columnCoercible(t, col) {
			continue
		}
		metrics = append(metrics, col)
	}
	return metrics
}

// columnCoercible reports whether any cell of the column parses as a
// number.
func columnCoercible(t *dataprocessing.Table, col string) bool {
	for _, row := range t.Rows {
		if _, ok := dataprocessing.ParseNumber(row[col]); ok {
			return true
		}
	}
	return false
}
