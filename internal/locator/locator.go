package locator

import (
	"log"
	"strings"

	"github.com/nconklindev/sway/internal/config"
	"github.com/nconklindev/sway/internal/types"
)

// NormalizeColumnName trims a header and collapses embedded line breaks to spaces
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\r\n", " ")
	name = strings.ReplaceAll(name, "\n", " ")
	return strings.ReplaceAll(name, "\r", " ")
}

// FindHeaderRow returns the first row whose cell at col equals marker exactly
func FindHeaderRow(sheet types.RawSheet, marker string, col int) (int, bool) {
	for i := range sheet.Rows {
		if sheet.Cell(i, col) == marker {
			return i, true
		}
	}
	return -1, false
}

// LocateByMarker finds the stakeholder analysis table by scanning for the marker row.
// The configured sheet is searched when present; otherwise every sheet is a candidate.
func LocateByMarker(sheets []types.RawSheet, cfg config.StakeholderConfig) (*types.Table, error) {
	candidates := sheets
	for _, s := range sheets {
		if s.Name == cfg.SheetName {
			candidates = []types.RawSheet{s}
			break
		}
	}

	examined := make([]string, 0, len(candidates))
	for _, sheet := range candidates {
		examined = append(examined, sheet.Name)

		row, ok := FindHeaderRow(sheet, cfg.Marker, cfg.MarkerColumn)
		if !ok {
			continue
		}
		log.Printf("[Locator] header %q found in sheet %q at row %d", cfg.Marker, sheet.Name, row)

		table := newTable(sheet, row, false)
		mapping, err := Resolve(table.Columns, cfg.Rules, cfg.Required)
		if err != nil {
			return nil, err
		}
		table.Mapping = mapping
		return table, nil
	}

	return nil, &types.Error{
		Kind:   types.StructuralError,
		Msg:    "no matching sheet/header: no row starts with \"" + cfg.Marker + "\"",
		Sheets: examined,
	}
}

// SelectSheet finds the change impact table: the first sheet whose header row,
// taken at the fixed skip offset, satisfies every keyword group.
func SelectSheet(sheets []types.RawSheet, cfg config.ImpactConfig) (*types.Table, error) {
	examined := make([]string, 0, len(sheets))

	for _, sheet := range sheets {
		examined = append(examined, sheet.Name)

		if cfg.SkipRows >= len(sheet.Rows) {
			log.Printf("[Locator] sheet %q skipped: fewer than %d rows", sheet.Name, cfg.SkipRows+1)
			continue
		}

		table := newTable(sheet, cfg.SkipRows, true)
		if !qualifies(table.Columns, cfg.SheetRequires) {
			continue
		}
		log.Printf("[Locator] using sheet %q", sheet.Name)

		mapping, err := Resolve(table.Columns, cfg.Rules, cfg.Required)
		if err != nil {
			return nil, err
		}
		table.Mapping = mapping
		return table, nil
	}

	return nil, &types.Error{
		Kind:   types.StructuralError,
		Msg:    "no qualifying sheet: could not find a sheet with the required Change Impact structure",
		Sheets: examined,
	}
}

// qualifies reports whether every keyword group has a keyword contained in some column
func qualifies(columns []string, groups [][]string) bool {
	lower := lowerAll(columns)
	for _, group := range groups {
		found := false
		for _, kw := range group {
			if anyContains(lower, strings.ToLower(kw)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// newTable slices a sheet at the header row. Columns are padded to the widest
// row so columns with an empty header cell stay addressable by position.
func newTable(sheet types.RawSheet, header int, normalize bool) *types.Table {
	width := 0
	for _, r := range sheet.Rows[header:] {
		if len(r) > width {
			width = len(r)
		}
	}

	columns := make([]string, width)
	for i := range columns {
		name := sheet.Cell(header, i)
		if normalize {
			name = NormalizeColumnName(name)
		}
		columns[i] = name
	}

	return &types.Table{
		Sheet:   sheet.Name,
		Header:  types.HeaderLocation{Sheet: sheet.Name, Row: header},
		Columns: columns,
		Rows:    sheet.Rows[header+1:],
	}
}

func lowerAll(columns []string) []string {
	lower := make([]string, len(columns))
	for i, c := range columns {
		lower[i] = strings.ToLower(c)
	}
	return lower
}

func anyContains(columns []string, kw string) bool {
	for _, c := range columns {
		if strings.Contains(c, kw) {
			return true
		}
	}
	return false
}
