package driver

// Command tells the caller what shape of statement produced a ResultSet
type Command int

const (
	// Selected carries a materialized result set
	Selected Command = iota
	// Updated carries an affected-row count
	Updated
)

func (c Command) String() string {
	switch c {
	case Selected:
		return "selected"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// ResultSet is the normalized result handed back to the pool framework.
// For Selected, RowCount always equals len(Rows). For Updated, Columns is
// always ["count"], Rows is [[count]] and RowCount is 1.
type ResultSet struct {
	Command  Command
	Columns  []string
	Rows     [][]interface{}
	RowCount int
}

// SelectedResult builds a ResultSet for a read that returned rows
func SelectedResult(columns []string, rows [][]interface{}) *ResultSet {
	return &ResultSet{
		Command:  Selected,
		Columns:  columns,
		Rows:     rows,
		RowCount: len(rows),
	}
}

// UpdatedResult builds a ResultSet for a write, shaped as a single
// count row so generic result consumers need no special case
func UpdatedResult(count int) *ResultSet {
	return &ResultSet{
		Command:  Updated,
		Columns:  []string{"count"},
		Rows:     [][]interface{}{{count}},
		RowCount: 1,
	}
}

// EmptyResult is the payload of accepted no-op operations
func EmptyResult() *ResultSet {
	return &ResultSet{
		Command: Selected,
		Columns: []string{},
		Rows:    [][]interface{}{},
	}
}
