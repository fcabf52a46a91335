package dataprocessing

// Row maps column names to raw cell values for one lap/run/session.
type Row map[string]string

// Table is the raw tabular input: an ordered column set and the rows
// beneath it. Invariant: every row has an entry for every column.
type Table struct {
	Columns []string
	Rows    []Row
}

// newRow builds a Row from raw cells, padding or truncating to the
// column set.
func newRow(columns []string, cells []string) Row {
	row := make(Row, len(columns))
	for i, col := range columns {
		if i < len(cells) {
			row[col] = cells[i]
		} else {
			row[col] = ""
		}
	}
	return row
}
