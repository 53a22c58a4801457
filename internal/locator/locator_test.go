package locator

import (
	"errors"
	"testing"

	"github.com/nconklindev/sway/internal/config"
	"github.com/nconklindev/sway/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain", "Stakeholder", "Stakeholder"},
		{"Padded", "  Impact  ", "Impact"},
		{"Line break", "Level of\nImpact", "Level of Impact"},
		{"CRLF", "Level of\r\nImpact", "Level of Impact"},
		{"Trailing break", "Perception\n", "Perception"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeColumnName(tt.input))
		})
	}
}

func TestFindHeaderRow(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		expected int
		found    bool
	}{
		{
			name:     "First row",
			rows:     [][]string{{"Stakeholder Name", "Sentiment"}, {"Alice", "Positive"}},
			expected: 0,
			found:    true,
		},
		{
			name: "After preamble",
			rows: [][]string{
				{"Stakeholder Analysis"},
				{},
				{"Prepared by", "PMO"},
				{"Stakeholder Name", "Sentiment"},
				{"Alice", "Positive"},
			},
			expected: 3,
			found:    true,
		},
		{
			name:     "First match wins",
			rows:     [][]string{{"x"}, {"Stakeholder Name"}, {"Stakeholder Name"}},
			expected: 1,
			found:    true,
		},
		{
			name:     "Exact match only",
			rows:     [][]string{{"stakeholder name"}, {" Stakeholder Name"}, {"Stakeholder Names"}},
			expected: -1,
			found:    false,
		},
		{
			name:     "Marker outside first column",
			rows:     [][]string{{"#", "Stakeholder Name"}},
			expected: -1,
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok := FindHeaderRow(types.RawSheet{Name: "S", Rows: tt.rows}, "Stakeholder Name", 0)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, row)
		})
	}
}

func stakeholderSheet(name string) types.RawSheet {
	return types.RawSheet{
		Name: name,
		Rows: [][]string{
			{"Project Phoenix"},
			{"Stakeholder Name", "Stakeholder Group", "Sentiment", "Influence", "Impact"},
			{"Alice", "Finance", "Positive", "High", "Low"},
		},
	}
}

func TestLocateByMarker(t *testing.T) {
	cfg := config.Default().Stakeholder

	t.Run("Named sheet", func(t *testing.T) {
		sheets := []types.RawSheet{{Name: "Cover"}, stakeholderSheet("Stakeholder Analysis")}

		table, err := LocateByMarker(sheets, cfg)
		require.NoError(t, err)

		assert.Equal(t, "Stakeholder Analysis", table.Sheet)
		assert.Equal(t, 1, table.Header.Row)
		assert.Len(t, table.Rows, 1)
		assert.Equal(t, 0, table.Mapping[types.FieldStakeholder].Index)
		assert.Equal(t, 1, table.Mapping[types.FieldGroup].Index)
		assert.Equal(t, 2, table.Mapping[types.FieldSentiment].Index)
		assert.Equal(t, 3, table.Mapping[types.FieldInfluence].Index)
		assert.Equal(t, 4, table.Mapping[types.FieldImpact].Index)
	})

	t.Run("Falls back to every sheet", func(t *testing.T) {
		sheets := []types.RawSheet{{Name: "Cover", Rows: [][]string{{"Title"}}}, stakeholderSheet("Register")}

		table, err := LocateByMarker(sheets, cfg)
		require.NoError(t, err)
		assert.Equal(t, "Register", table.Sheet)
	})

	t.Run("No header", func(t *testing.T) {
		sheets := []types.RawSheet{
			{Name: "Cover", Rows: [][]string{{"Title"}}},
			{Name: "Notes", Rows: [][]string{{"Name", "Sentiment"}}},
		}

		_, err := LocateByMarker(sheets, cfg)
		var e *types.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, types.StructuralError, e.Kind)
		assert.Equal(t, []string{"Cover", "Notes"}, e.Sheets)
	})

	t.Run("Missing column", func(t *testing.T) {
		sheet := types.RawSheet{
			Name: "Stakeholder Analysis",
			Rows: [][]string{{"Stakeholder Name", "Sentiment", "Influence"}},
		}

		_, err := LocateByMarker([]types.RawSheet{sheet}, cfg)
		var e *types.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, types.SchemaError, e.Kind)
		assert.Equal(t, []types.Field{types.FieldGroup}, e.Fields)
	})
}

func impactRows(header ...string) [][]string {
	return [][]string{
		{"Change Impact Assessment"},
		header,
		{"Payroll", "Finance", "New approvals", "High", "Negative"},
	}
}

func TestSelectSheet(t *testing.T) {
	cfg := config.Default().Impact

	t.Run("First qualifying sheet", func(t *testing.T) {
		sheets := []types.RawSheet{
			{Name: "Instructions", Rows: [][]string{{"Read me"}, {"Step", "Detail"}}},
			{Name: "Impacts", Rows: impactRows("Workstream", "Stakeholder\nGroup", "Change", "Level of\nImpact", "Perception")},
			{Name: "Impacts (2)", Rows: impactRows("Workstream", "Stakeholder", "Change", "Impact", "Perception")},
		}

		table, err := SelectSheet(sheets, cfg)
		require.NoError(t, err)

		assert.Equal(t, "Impacts", table.Sheet)
		assert.Equal(t, 1, table.Header.Row)
		assert.Equal(t, "Stakeholder Group", table.Columns[1])
		assert.Len(t, table.Rows, 1)

		assert.Equal(t, types.ColumnRef{Index: 0, Name: "Workstream"}, table.Mapping[types.FieldIdentifier])
		assert.Equal(t, types.ColumnRef{Index: 1, Name: "Stakeholder Group"}, table.Mapping[types.FieldStakeholder])
		assert.Equal(t, types.ColumnRef{Index: 4, Name: "Perception"}, table.Mapping[types.FieldPerception])
		assert.Equal(t, types.ColumnRef{Index: 3, Name: "Level of Impact", Positional: true}, table.Mapping[types.FieldImpact])
	})

	t.Run("Old format uses process", func(t *testing.T) {
		sheets := []types.RawSheet{
			{Name: "CIA", Rows: impactRows("Business Process", "Stakeholder", "Change", "Impact", "Perception of Change")},
		}

		table, err := SelectSheet(sheets, cfg)
		require.NoError(t, err)
		assert.Equal(t, "Business Process", table.Mapping[types.FieldIdentifier].Name)
		assert.Equal(t, "Perception of Change", table.Mapping[types.FieldPerception].Name)
	})

	t.Run("Workstream preferred over process", func(t *testing.T) {
		sheets := []types.RawSheet{
			{Name: "CIA", Rows: impactRows("Process", "Workstream", "Stakeholder", "Impact", "Perception")},
		}

		table, err := SelectSheet(sheets, cfg)
		require.NoError(t, err)
		assert.Equal(t, 1, table.Mapping[types.FieldIdentifier].Index)
	})

	t.Run("Positional impact ignores names", func(t *testing.T) {
		sheets := []types.RawSheet{
			{Name: "CIA", Rows: impactRows("Workstream", "Impact Area", "Stakeholder", "Notes", "Perception")},
		}

		table, err := SelectSheet(sheets, cfg)
		require.NoError(t, err)
		assert.Equal(t, "Notes", table.Mapping[types.FieldImpact].Name)
		assert.Equal(t, "Stakeholder", table.Mapping[types.FieldStakeholder].Name)
	})

	t.Run("Positional impact with empty header cell", func(t *testing.T) {
		rows := [][]string{
			{"Title"},
			{"Workstream", "Stakeholder impact", "Perception"},
			{"Payroll", "Finance", "Neutral", "High"},
		}
		table, err := SelectSheet([]types.RawSheet{{Name: "CIA", Rows: rows}}, cfg)
		require.NoError(t, err)
		assert.Equal(t, types.ColumnRef{Index: 3, Name: "", Positional: true}, table.Mapping[types.FieldImpact])
	})

	t.Run("No qualifying sheet lists every sheet", func(t *testing.T) {
		sheets := []types.RawSheet{
			{Name: "Instructions", Rows: [][]string{{"Read me"}, {"Step", "Detail"}}},
			{Name: "Empty"},
			{Name: "Almost", Rows: impactRows("Workstream", "Stakeholder", "Change", "Impact")},
		}

		_, err := SelectSheet(sheets, cfg)
		var e *types.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, types.StructuralError, e.Kind)
		assert.Equal(t, []string{"Instructions", "Empty", "Almost"}, e.Sheets)
	})

	t.Run("Too few columns for positional impact", func(t *testing.T) {
		rows := [][]string{{"Title"}, {"Workstream", "Stakeholder impact perception"}}

		_, err := SelectSheet([]types.RawSheet{{Name: "CIA", Rows: rows}}, cfg)
		var e *types.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, types.SchemaError, e.Kind)
		assert.Equal(t, []types.Field{types.FieldImpact}, e.Fields)
		assert.Equal(t, []string{"Workstream", "Stakeholder impact perception"}, e.Columns)
	})
}

func TestResolveFirstMatchWins(t *testing.T) {
	columns := []string{"Primary Stakeholder", "Secondary Stakeholder"}
	rules := []config.Rule{{Field: types.FieldStakeholder, Contains: []string{"stakeholder"}}}

	mapping, err := Resolve(columns, rules, []types.Field{types.FieldStakeholder})
	require.NoError(t, err)
	assert.Equal(t, 0, mapping[types.FieldStakeholder].Index)
}
