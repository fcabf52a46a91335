package dataprocessing

import (
	"strconv"
	"strings"
	"time"
)

// timeLayouts are tried in order when parsing session dates. Sheets
// arrive from several timing tools, so both ISO and day-first forms
// appear in the wild.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"01-02-06 15:04",
	"1/2/06 15:04",
	"02.01.2006 15:04",
	"02.01.2006",
}

// excelEpoch is day zero of Excel's 1900 date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseNumber coerces a cell to a float. Empty cells, textual markers
// and anything else that fails decimal parsing report false; callers
// must treat that as null, never as zero. Comma decimal separators are
// accepted when no dot is present.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// ParseTime coerces a cell to a timestamp, trying the layout list and
// then Excel serial dates (days since 1899-12-30, as excelize renders
// unformatted date cells). Unparseable values report false.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	if serial, ok := ParseNumber(s); ok && serial > 20000 && serial < 80000 {
		days := int(serial)
		frac := serial - float64(days)
		ts := excelEpoch.AddDate(0, 0, days).
			Add(time.Duration(frac * 24 * float64(time.Hour)))
		return ts, true
	}
	return time.Time{}, false
}
