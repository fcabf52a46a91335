package dataprocessing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestParseWorkbook(t *testing.T) {
	r := buildWorkbook(t, [][]interface{}{
		{"CarAlias - Info", "SessionDate - Info", "Lap - Info", "pOil - Min"},
		{"BTZ1", "2025-03-01 10:00", 1, 2.1},
		{"BTZ1", "2025-03-01 10:00", 2, 1.9},
	})

	table, err := ParseWorkbook(r)

	require.NoError(t, err)
	assert.Equal(t,
		[]string{"CarAlias - Info", "SessionDate - Info", "Lap - Info", "pOil - Min"},
		table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "BTZ1", table.Rows[0]["CarAlias - Info"])
	assert.Equal(t, "2.1", table.Rows[0]["pOil - Min"])
}

func TestParseWorkbook_HeaderBelowBanner(t *testing.T) {
	r := buildWorkbook(t, [][]interface{}{
		{"KPI VITAIS"},
		{},
		{"CarAlias - Info", "Lap - Info", "TrackName - Info", "pOil - Min"},
		{"BTZ1", 1, "Interlagos", 2.1},
	})

	table, err := ParseWorkbook(r)

	require.NoError(t, err)
	assert.Len(t, table.Columns, 4)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Interlagos", table.Rows[0]["TrackName - Info"])
}

func TestParseWorkbook_ShortRowsPadded(t *testing.T) {
	r := buildWorkbook(t, [][]interface{}{
		{"CarAlias - Info", "Lap - Info", "TrackName - Info", "pOil - Min"},
		{"BTZ1", 1},
	})

	table, err := ParseWorkbook(r)

	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "", table.Rows[0]["pOil - Min"])
}

func TestParseWorkbook_NoHeader(t *testing.T) {
	r := buildWorkbook(t, [][]interface{}{
		{1.0, 2.0},
		{3.0, 4.0},
	})

	_, err := ParseWorkbook(r)

	assert.Error(t, err)
}

func TestParseCSV(t *testing.T) {
	csv := strings.Join([]string{
		"CarAlias - Info,SessionDate - Info,Lap - Info,pOil - Min",
		"BTZ1,2025-03-01 10:00,1,2.1",
		"BTZ1,2025-03-01 10:00,2,1.9",
		"",
	}, "\n")

	table, err := ParseCSV(strings.NewReader(csv))

	require.NoError(t, err)
	assert.Len(t, table.Columns, 4)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "1.9", table.Rows[1]["pOil - Min"])
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.Error(t, err)
}
