package entity

// ResultSet is one tabular response from the schedule database.
// Rows are keyed by column name, values arrive as strings.
type ResultSet struct {
	Columns  []string
	Rows     []map[string]string
	RowCount int
}
