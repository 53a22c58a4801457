package normalize

import (
	"strings"
	"unicode"

	"github.com/nconklindev/sway/internal/types"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Result is the normalized content of one table.
type Result struct {
	Records []types.NormalizedRecord
	// RowsRead counts data rows below the header, RowsDropped those missing a required field.
	RowsRead    int
	RowsDropped int
}

// CleanText applies NFKC normalization, strips control and invisible format
// characters (zero-width space, BOM) and trims whitespace
func CleanText(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if (unicode.IsControl(r) && r != '\n') || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// Rating trims and title-cases a categorical value. Unknown values are kept as-is otherwise.
func Rating(s string) string {
	s = CleanText(s)
	if s == "" {
		return ""
	}
	return cases.Title(language.Und).String(s)
}

// SplitStakeholders splits a comma-joined field into trimmed, non-empty names
func SplitStakeholders(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := CleanText(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Explode expands each record into one record per stakeholder name.
// Every other field is copied unchanged.
func Explode(records []types.NormalizedRecord) []types.NormalizedRecord {
	out := make([]types.NormalizedRecord, 0, len(records))
	for _, rec := range records {
		for _, name := range SplitStakeholders(rec.Stakeholder) {
			r := rec
			r.Stakeholder = name
			out = append(out, r)
		}
	}
	return out
}

// Records converts the rows of a located table into canonical records.
// Rows missing any dropMissing field are dropped before explosion.
func Records(table *types.Table, dropMissing []types.Field, explode bool) Result {
	res := Result{RowsRead: len(table.Rows)}

	records := make([]types.NormalizedRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := types.NormalizedRecord{
			Identifier:  CleanText(table.Value(row, types.FieldIdentifier)),
			Stakeholder: CleanText(table.Value(row, types.FieldStakeholder)),
			Group:       CleanText(table.Value(row, types.FieldGroup)),
			Impact:      Rating(table.Value(row, types.FieldImpact)),
			Perception:  Rating(table.Value(row, types.FieldPerception)),
			Influence:   Rating(table.Value(row, types.FieldInfluence)),
			Sentiment:   Rating(table.Value(row, types.FieldSentiment)),
		}

		if missingAny(rec, dropMissing) {
			res.RowsDropped++
			continue
		}
		records = append(records, rec)
	}

	if explode {
		records = Explode(records)
	}
	res.Records = records
	return res
}

func missingAny(rec types.NormalizedRecord, fields []types.Field) bool {
	for _, f := range fields {
		if rec.Rating(f) == "" {
			return true
		}
	}
	return false
}
