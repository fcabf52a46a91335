package kpi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kpiColumns = []string{
	"CarAlias - Info",
	"SessionDate - Info",
	"SessionName - Info",
	"Lap - Info",
	"TrackName - Info",
	"pOil - Min",
}

func TestResolve_KPISheetHeaders(t *testing.T) {
	mapping, missing := Resolve(kpiColumns, DefaultRequiredRoles)

	require.Empty(t, missing)
	assert.Equal(t, "CarAlias - Info", mapping.Column(RoleCar))
	assert.Equal(t, "SessionDate - Info", mapping.Column(RoleSessionDate))
	assert.Equal(t, "SessionName - Info", mapping.Column(RoleSessionName))
	assert.Equal(t, "Lap - Info", mapping.Column(RoleLap))
	assert.Equal(t, "TrackName - Info", mapping.Column(RoleTrack))
	assert.False(t, mapping.Has(RoleRun))
	assert.False(t, mapping.Has(RoleDriver))
}

func TestResolve_TrackIndependentOfColumnOrder(t *testing.T) {
	orders := [][]string{
		{"TrackName - Info", "pOil - Min", "Lap - Info", "CarAlias - Info"},
		{"pOil - Min", "Lap - Info", "CarAlias - Info", "TrackName - Info"},
		{"Lap - Info", "TrackName - Info", "CarAlias - Info", "pOil - Min"},
	}
	for _, cols := range orders {
		mapping, _ := Resolve(cols, nil)
		assert.Equal(t, "TrackName - Info", mapping.Column(RoleTrack),
			"column order %v", cols)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	first, missing1 := Resolve(kpiColumns, DefaultRequiredRoles)
	second, missing2 := Resolve(kpiColumns, DefaultRequiredRoles)

	assert.Equal(t, first, second)
	assert.Equal(t, missing1, missing2)
}

func TestResolve_AliasAndFuzzyVariants(t *testing.T) {
	tests := []struct {
		name   string
		column string
		role   Role
	}{
		{"plain alias", "Circuit", RoleTrack},
		{"portuguese alias", "Pista", RoleTrack},
		{"diacritics folded", "Sessão", RoleSessionName},
		{"underscore separators", "driver_name", RoleDriver},
		{"suffix stripped", "Run - Info", RoleRun},
		{"fuzzy typo", "Circuto", RoleTrack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping, _ := Resolve([]string{tt.column, "pWater - Min"}, nil)
			assert.Equal(t, tt.column, mapping.Column(tt.role))
		})
	}
}

func TestResolve_MissingRolesReportedTogether(t *testing.T) {
	mapping, missing := Resolve([]string{"pOil - Min", "pFuel - Min"}, DefaultRequiredRoles)

	assert.False(t, mapping.Has(RoleCar))
	assert.ElementsMatch(t,
		[]Role{RoleCar, RoleSessionDate, RoleSessionName, RoleLap}, missing)
}

func TestResolve_MappingStaysWithinColumns(t *testing.T) {
	cols := []string{"Session - Info", "Lap - Info", "pOil - Min"}
	mapping, _ := Resolve(cols, nil)

	assert.Equal(t, "Session - Info", mapping.Column(RoleSessionName))
	for role, col := range mapping {
		assert.Contains(t, cols, col, "role %s mapped outside the column set", role)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"pOil - Min", "poil min"},
		{"  Track__Name/Info ", "track name info"},
		{"Sessão", "sessao"},
		{"LAP", "lap"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestBaseKey(t *testing.T) {
	assert.Equal(t, "poil", BaseKey("poil min"))
	assert.Equal(t, "poil", BaseKey("poil info"))
	assert.Equal(t, "lap time", BaseKey("lap time"))
	assert.Equal(t, "lap", BaseKey("lap"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "SessionDate", DisplayName("SessionDate - Info"))
	assert.Equal(t, "pOil", DisplayName("pOil - Min"))
	assert.Equal(t, "Lap Time", DisplayName("Lap Time"))
}
