package kpi

// TrackAll is the sentinel track selection meaning "no track filter".
const TrackAll = "ALL"

// Filter is the caller-owned selection state applied to an enriched row
// set. Car and Track are single selections; Sessions and Drivers are
// multi-selects where an empty set means "no restriction", matching the
// dashboard's select-all-by-default convention.
type Filter struct {
	Car      string   `json:"car"`
	Track    string   `json:"track"`
	Sessions []string `json:"sessions"`
	Drivers  []string `json:"drivers"`
}

// Apply filters rows by the conjunction of the filter's predicates,
// preserving the relative order of the input. It never re-sorts.
func Apply(rows []EnrichedRow, mapping RoleMapping, f Filter) []EnrichedRow {
	sessions := toSet(f.Sessions)
	drivers := toSet(f.Drivers)

	out := make([]EnrichedRow, 0, len(rows))
	for _, row := range rows {
		if f.Car != "" && row.Value(mapping, RoleCar) != f.Car {
			continue
		}
		if f.Track != "" && f.Track != TrackAll && row.Value(mapping, RoleTrack) != f.Track {
			continue
		}
		if sessions != nil && !sessions[row.Value(mapping, RoleSessionName)] {
			continue
		}
		if drivers != nil && !drivers[row.Value(mapping, RoleDriver)] {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Distinct returns the distinct values of a role over the rows in
// first-seen order, for selector population and grouping. Empty values
// are skipped.
func Distinct(rows []EnrichedRow, mapping RoleMapping, r Role) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range rows {
		v := row.Value(mapping, r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// toSet returns nil for an empty slice so that empty multi-selects are
// pass-through rather than match-nothing.
func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
