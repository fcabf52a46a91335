package kpi

import (
	"kpidash/internal/dataprocessing"
)

// BuildSeries projects one metric over an already-ordered view. Rows
// whose cell does not coerce stay in the series as null points so gaps
// remain visible; statistics run over the non-null values only. When no
// value coerces the series carries Empty=true and zero-valued Stats,
// never NaN.
//
// Min/Max labels belong to the first row (in view order) attaining the
// extreme, which is the tie-break when several laps share a reading.
func BuildSeries(view []EnrichedRow, metric string) Series {
	s := Series{Metric: metric, Points: make([]Point, 0, len(view))}

	var sum float64
	for _, row := range view {
		p := Point{Label: row.Label}
		if v, ok := dataprocessing.ParseNumber(row.Row[metric]); ok {
			val := v
			p.Value = &val

			if s.Stats.Count == 0 || val < s.Stats.Min {
				s.Stats.Min = val
				s.Stats.MinLabel = row.Label
			}
			if s.Stats.Count == 0 || val > s.Stats.Max {
				s.Stats.Max = val
				s.Stats.MaxLabel = row.Label
			}
			sum += val
			s.Stats.Count++
		}
		s.Points = append(s.Points, p)
	}

	if s.Stats.Count == 0 {
		s.Empty = true
		s.Stats = Stats{}
		return s
	}
	s.Stats.Mean = sum / float64(s.Stats.Count)
	return s
}

// GroupSeries splits a metric over the view into one sub-series per
// distinct raw value of the group column, in first-seen row order. An
// empty group column name yields a single unkeyed sub-series. Rows with
// an empty group cell form their own explicit NA bucket rather than
// being dropped.
func GroupSeries(view []EnrichedRow, metric, groupColumn string) []GroupedSeries {
	if groupColumn == "" {
		points := BuildSeries(view, metric).Points
		return []GroupedSeries{{Points: points}}
	}

	index := make(map[string]int)
	var groups []GroupedSeries
	for _, row := range view {
		key := row.Row[groupColumn]
		missing := key == ""
		if missing {
			key = labelPlaceholder
		}
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, GroupedSeries{Key: key, Missing: missing})
		}

		p := Point{Label: row.Label}
		if v, ok := dataprocessing.ParseNumber(row.Row[metric]); ok {
			val := v
			p.Value = &val
		}
		groups[gi].Points = append(groups[gi].Points, p)
	}
	return groups
}
