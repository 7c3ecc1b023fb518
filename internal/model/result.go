package model

// Mode tags which path produced a Result.
type Mode string

// Routing outcome modes.
const (
	ModePrebuilt Mode = "prebuilt"
	ModeFallback Mode = "fallback"
)

// Table is a rendered tabular view: ordered columns and string cells.
type Table struct {
	Title   string     `json:"title,omitempty"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Result is the answer produced by one routing pass. A Result is always
// produced: failures along the way surface as Notices, never as a
// missing answer.
type Result struct {
	Mode      Mode     `json:"mode"`
	QID       string   `json:"qid,omitempty"`
	Prompt    string   `json:"prompt,omitempty"`
	Score     float64  `json:"score,omitempty"`
	Tables    []Table  `json:"tables,omitempty"`
	Narrative string   `json:"narrative,omitempty"`
	Notices   []string `json:"notices,omitempty"`
}

// AddNotice appends a user-visible notice/caption.
func (r *Result) AddNotice(n string) {
	r.Notices = append(r.Notices, n)
}

// AddTable appends a table to the result.
func (r *Result) AddTable(t Table) {
	r.Tables = append(r.Tables, t)
}
