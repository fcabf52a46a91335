package kpi

import (
	"time"

	"kpidash/internal/dataprocessing"
)

// Role is a canonical semantic meaning a raw spreadsheet column may supply.
type Role string

const (
	RoleCar         Role = "car"
	RoleSessionDate Role = "session_date"
	RoleSessionName Role = "session_name"
	RoleLap         Role = "lap"
	RoleRun         Role = "run"
	RoleTrack       Role = "track"
	RoleDriver      Role = "driver"
)

// Roles lists every known role in its fixed resolution order. The order
// also decides which role wins cosmetic ties when two roles resolve to
// the same raw column.
var Roles = []Role{
	RoleCar,
	RoleSessionDate,
	RoleSessionName,
	RoleLap,
	RoleRun,
	RoleTrack,
	RoleDriver,
}

// DefaultRequiredRoles are the roles a table must supply before the
// pipeline can order and label its rows.
var DefaultRequiredRoles = []Role{
	RoleCar,
	RoleSessionDate,
	RoleSessionName,
	RoleLap,
}

// RoleMapping maps each resolved role to the raw column name that
// supplies it. Roles the table lacks are absent from the map. Two roles
// may legitimately map to the same column; see Resolve.
type RoleMapping map[Role]string

// Column returns the raw column for a role, or "" when unresolved.
func (m RoleMapping) Column(r Role) string {
	return m[r]
}

// Has reports whether the role was resolved.
func (m RoleMapping) Has(r Role) bool {
	_, ok := m[r]
	return ok
}

// OrderKey is the composite sort key for one row: (date, run, lap),
// each component nil when the source value was absent or unparseable.
// Nil components sort after valid values.
type OrderKey struct {
	Date *time.Time
	Run  *float64
	Lap  *float64
}

// EnrichedRow is a raw row augmented with its order key and the
// composite display label used as the categorical x-axis tick.
type EnrichedRow struct {
	Row   dataprocessing.Row
	Key   OrderKey
	Label string
}

// Value returns the raw cell for the given role via the mapping,
// or "" when the role is unresolved or the cell is empty.
func (e EnrichedRow) Value(m RoleMapping, r Role) string {
	col, ok := m[r]
	if !ok {
		return ""
	}
	return e.Row[col]
}

// Point is one plotted entry of a series. Value is nil for rows whose
// cell did not coerce to a number; such gaps stay visible in the chart
// instead of being compacted away.
type Point struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// Stats holds the summary statistics of a series over its non-null
// values, with the display labels of the first rows attaining the
// extrema.
type Stats struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	MinLabel string  `json:"min_label"`
	MaxLabel string  `json:"max_label"`
	Count    int     `json:"count"`
}

// Series is the ordered (label, value) sequence for one metric over a
// filtered view. Empty is true when no value coerced to a number; in
// that state Stats is zero-valued and must not be rendered.
type Series struct {
	Metric string  `json:"metric"`
	Points []Point `json:"points"`
	Stats  Stats   `json:"stats"`
	Empty  bool    `json:"empty"`
}

// GroupedSeries is one colored sub-series of a chart, keyed by the raw
// value of the group-by column. Missing marks the bucket of rows whose
// group cell was empty; it is rendered with an explicit NA legend entry.
type GroupedSeries struct {
	Key     string  `json:"key"`
	Missing bool    `json:"missing"`
	Points  []Point `json:"points"`
}
