package kpi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kpidash/internal/dataprocessing"
)

func TestCandidateMetrics(t *testing.T) {
	table := &dataprocessing.Table{
		Columns: []string{
			"CarAlias - Info", "SessionDate - Info", "SessionName - Info",
			"Lap - Info", "TrackName - Info",
			"pOil - Min", "Lap Time", "DataSet - Info", "Comment", "pFuel - Change",
		},
		Rows: []dataprocessing.Row{
			{
				"CarAlias - Info": "BTZ1", "SessionDate - Info": "2025-03-01 10:00",
				"SessionName - Info": "FP1", "Lap - Info": "1", "TrackName - Info": "Interlagos",
				"pOil - Min": "2.1", "Lap Time": "92.41", "DataSet - Info": "1001",
				"Comment": "pushed hard", "pFuel - Change": "0.3",
			},
			{
				"CarAlias - Info": "BTZ1", "SessionDate - Info": "2025-03-01 10:00",
				"SessionName - Info": "FP1", "Lap - Info": "2", "TrackName - Info": "Interlagos",
				"pOil - Min": "1.9", "Lap Time": "", "DataSet - Info": "1002",
				"Comment": "traffic", "pFuel - Change": "0.2",
			},
		},
	}
	mapping, _ := Resolve(table.Columns, DefaultRequiredRoles)

	metrics := CandidateMetrics(table, mapping)

	// role columns, reserved suffixes and non-numeric columns are out;
	// original column order is preserved
	assert.Equal(t, []string{"pOil - Min", "Lap Time"}, metrics)
}

func TestCandidateMetrics_NumericInfoColumnExcluded(t *testing.T) {
	table := &dataprocessing.Table{
		Columns: []string{"Lap - Info", "DataSet - Info", "vMax"},
		Rows: []dataprocessing.Row{
			{"Lap - Info": "1", "DataSet - Info": "42", "vMax": "287.3"},
		},
	}
	mapping := RoleMapping{RoleLap: "Lap - Info"}

	metrics := CandidateMetrics(table, mapping)

	assert.NotContains(t, metrics, "DataSet - Info")
	assert.Equal(t, []string{"vMax"}, metrics)
}

func TestCandidateMetrics_PartiallyNumericColumnQualifies(t *testing.T) {
	table := &dataprocessing.Table{
		Columns: []string{"Lap - Info", "pBrake"},
		Rows: []dataprocessing.Row{
			{"Lap - Info": "1", "pBrake": "sensor fault"},
			{"Lap - Info": "2", "pBrake": "41.2"},
		},
	}
	mapping := RoleMapping{RoleLap: "Lap - Info"}

	assert.Equal(t, []string{"pBrake"}, CandidateMetrics(table, mapping))
}

func TestCandidateMetrics_CollidedMappingExcludesOnce(t *testing.T) {
	table := &dataprocessing.Table{
		Columns: []string{"Session - Info", "vMax"},
		Rows: []dataprocessing.Row{
			{"Session - Info": "FP1", "vMax": "280.1"},
		},
	}
	mapping := RoleMapping{
		RoleSessionName: "Session - Info",
		RoleTrack:       "Session - Info",
	}

	assert.Equal(t, []string{"vMax"}, CandidateMetrics(table, mapping))
}
