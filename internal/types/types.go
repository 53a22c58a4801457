package types

// Field is a canonical column the normalizer resolves from arbitrary source headers.
type Field string

const (
	FieldIdentifier  Field = "Identifier"
	FieldStakeholder Field = "Stakeholder"
	FieldImpact      Field = "Impact"
	FieldPerception  Field = "Perception"
	FieldInfluence   Field = "Influence"
	FieldSentiment   Field = "Sentiment"
	FieldGroup       Field = "Group"
)

// Mode selects which dashboard a workbook is read for.
type Mode string

const (
	// ModeChangeImpact reads a change impact assessment, found by sheet qualification.
	ModeChangeImpact Mode = "impact"
	// ModeStakeholder reads a stakeholder analysis, found by its marker row.
	ModeStakeholder Mode = "stakeholder"
)

// RawSheet is the unprocessed content of one worksheet. Empty cells are "".
type RawSheet struct {
	Name string
	Rows [][]string
}

// Cell returns the value at row/col or "" when the row is shorter.
func (s RawSheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}

// HeaderLocation is the row index holding the column names.
type HeaderLocation struct {
	Sheet string
	Row   int
}

// ColumnRef points at the source column a canonical field was resolved from.
type ColumnRef struct {
	Index int
	Name  string
	// Positional is set when the column was taken by index rather than by name.
	Positional bool
}

// ColumnMapping maps canonical fields to their source columns.
type ColumnMapping map[Field]ColumnRef

// Missing returns the required fields absent from the mapping, in the given order.
func (m ColumnMapping) Missing(required []Field) []Field {
	var missing []Field
	for _, f := range required {
		if _, ok := m[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Table is a located sheet: header names plus the data rows below them.
type Table struct {
	Sheet   string
	Header  HeaderLocation
	Columns []string
	Rows    [][]string
	Mapping ColumnMapping
}

// Value returns the cell of row for field, or "" when the field is unmapped.
func (t *Table) Value(row []string, f Field) string {
	ref, ok := t.Mapping[f]
	if !ok || ref.Index >= len(row) {
		return ""
	}
	return row[ref.Index]
}

// NormalizedRecord is one row of canonical data.
type NormalizedRecord struct {
	Identifier  string
	Stakeholder string
	Group       string
	Impact      string
	Perception  string
	Influence   string
	Sentiment   string
}

// Rating returns the categorical value for a rating field.
func (r NormalizedRecord) Rating(f Field) string {
	switch f {
	case FieldImpact:
		return r.Impact
	case FieldPerception:
		return r.Perception
	case FieldInfluence:
		return r.Influence
	case FieldSentiment:
		return r.Sentiment
	case FieldGroup:
		return r.Group
	case FieldIdentifier:
		return r.Identifier
	case FieldStakeholder:
		return r.Stakeholder
	}
	return ""
}

// Point is a record placed on the influence/sentiment plane.
type Point struct {
	Record NormalizedRecord
	// X and Y are the vocabulary positions; Known is false when either value is outside the vocabulary.
	X, Y  float64
	Known bool
	// JitterX and JitterY are display coordinates only.
	JitterX, JitterY float64
	Size             float64
	Strategy         string
}
