package domain

import "time"

// CategoryLink is a non-empty manuscript bucket found on the author main menu.
type CategoryLink struct {
	Name    string
	URL     string
	Count   string
	Referer string
}

// Cell is one header/value pair of a table row.
type Cell struct {
	Header string
	Value  string
}

// RawRecord is a table row keyed by the portal's own header text.
// Cells keep the header order of the source table.
type RawRecord struct {
	Cells []Cell
	DocID string
}

// Get returns the value stored under the exact header text.
func (r RawRecord) Get(header string) (string, bool) {
	for _, c := range r.Cells {
		if c.Header == header {
			return c.Value, true
		}
	}
	return "", false
}

// Headers lists the header texts in table order.
func (r RawRecord) Headers() []string {
	headers := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		headers[i] = c.Header
	}
	return headers
}

// Len is the number of cells, always the header count of the source table.
func (r RawRecord) Len() int {
	return len(r.Cells)
}

// FieldName is a logical column independent of portal header wording.
type FieldName string

const (
	FieldTitle            FieldName = "title"
	FieldManuscriptNumber FieldName = "manuscript_number"
	FieldSubmissionDate   FieldName = "submission_date"
	FieldStatusDate       FieldName = "status_date"
	FieldCurrentStatus    FieldName = "current_status"
)

// LogicalFields lists every logical field in output order.
var LogicalFields = []FieldName{
	FieldTitle,
	FieldManuscriptNumber,
	FieldSubmissionDate,
	FieldStatusDate,
	FieldCurrentStatus,
}

// NormalizedRecord is a manuscript row mapped onto the stable field set.
// Empty strings mean the portal did not expose the field.
type NormalizedRecord struct {
	Journal          string    `yaml:"journal" json:"journal"`
	Title            string    `yaml:"title" json:"title"`
	ManuscriptNumber string    `yaml:"manuscript_number" json:"manuscript_number"`
	SubmissionDate   string    `yaml:"submission_date" json:"submission_date"`
	StatusDate       string    `yaml:"status_date" json:"status_date"`
	CurrentStatus    string    `yaml:"current_status" json:"current_status"`
	DocID            string    `yaml:"docid,omitempty" json:"docid,omitempty"`
	CapturedAt       time.Time `yaml:"captured_at" json:"captured_at"`
}

// Value returns the logical field by name.
func (n NormalizedRecord) Value(field FieldName) string {
	switch field {
	case FieldTitle:
		return n.Title
	case FieldManuscriptNumber:
		return n.ManuscriptNumber
	case FieldSubmissionDate:
		return n.SubmissionDate
	case FieldStatusDate:
		return n.StatusDate
	case FieldCurrentStatus:
		return n.CurrentStatus
	default:
		return ""
	}
}

// Set stores a logical field by name; unknown names are ignored.
func (n *NormalizedRecord) Set(field FieldName, value string) {
	switch field {
	case FieldTitle:
		n.Title = value
	case FieldManuscriptNumber:
		n.ManuscriptNumber = value
	case FieldSubmissionDate:
		n.SubmissionDate = value
	case FieldStatusDate:
		n.StatusDate = value
	case FieldCurrentStatus:
		n.CurrentStatus = value
	}
}
