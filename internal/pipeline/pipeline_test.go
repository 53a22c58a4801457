package pipeline

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nconklindev/sway/internal/config"
	"github.com/nconklindev/sway/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sheet struct {
	name string
	rows [][]any
}

func writeWorkbook(t *testing.T, sheets ...sheet) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(s.name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "upload.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func changeImpactSheet() sheet {
	return sheet{
		name: "Change Impact",
		rows: [][]any{
			{"Change Impact Assessment - Project Phoenix"},
			{"Workstream", "Stakeholder\nGroup", "Description of Change", "Level of\nImpact", "Perception"},
			{"Payroll", "Alice, Bob", "New approval flow", "High", "Negative"},
			{"Reporting", "Carol", "Self-service dashboards", "low", " positive"},
			{"Reporting", "", "Orphan row", "Medium", "Neutral"},
		},
	}
}

func stakeholderSheet() sheet {
	return sheet{
		name: "Stakeholder Analysis",
		rows: [][]any{
			{"Stakeholder Analysis"},
			{"Prepared by PMO"},
			{"Stakeholder Name", "Stakeholder Group", "Role", "Sentiment", "Influence", "Impact"},
			{"Alice", "Finance", "CFO", "Negative", "High", "High"},
			{"Bob", "Finance", "Analyst", "Negative", "Low", "Low"},
			{"Carol", "IT", "CIO", "Positive", "Medium", "Medium"},
			{"Dan", "", "Contractor", "Neutral", "Low", "Low"},
			{"Erin", "HR", "Partner", "Undecided", "High", ""},
		},
	}
}

func TestRunChangeImpactScenario(t *testing.T) {
	path := writeWorkbook(t,
		sheet{name: "Instructions", rows: [][]any{{"How to fill in"}, {"Step", "Detail"}}},
		changeImpactSheet(),
	)

	report, err := RunFile(config.Default(), path, types.ModeChangeImpact)
	require.NoError(t, err)

	assert.Equal(t, "Change Impact", report.Sheet)
	assert.Equal(t, 1, report.Header.Row)
	assert.Equal(t, 3, report.RowsRead)
	assert.Equal(t, 1, report.RowsDropped)
	require.Len(t, report.Records, 3)
	assert.Equal(t, "Low", report.Records[2].Impact)
	assert.Equal(t, "Positive", report.Records[2].Perception)
	assert.True(t, report.Mapping[types.FieldImpact].Positional)

	require.Len(t, report.Charts, 2)
	impact := report.Charts[0].Table
	assert.Equal(t, 2, impact.Total("High"))
	assert.Equal(t, 1, impact.Total("Low"))
	assert.Equal(t, []string{"Low", "High"}, report.Charts[0].Levels)

	assert.Equal(t, "Alice", report.Offender.Label)
	assert.Equal(t, 1, report.Offender.Count)
	require.Len(t, report.Insights, 2)
	assert.Contains(t, report.Insights[0], "'Alice'")
	assert.Empty(t, report.Warnings)
}

func TestRunChangeImpactNoHighImpact(t *testing.T) {
	path := writeWorkbook(t, sheet{
		name: "CIA",
		rows: [][]any{
			{"Title"},
			{"Process", "Stakeholder", "Change", "Impact", "Perception"},
			{"Close", "Finance", "x", "Low", "Neutral"},
		},
	})

	report, err := RunFile(config.Default(), path, types.ModeChangeImpact)
	require.NoError(t, err)
	assert.False(t, report.Offender.Found)
	assert.Equal(t, []string{"No 'High' impact changes found."}, report.Insights)
}

func TestRunChangeImpactUnrecognizedLevels(t *testing.T) {
	path := writeWorkbook(t, sheet{
		name: "CIA",
		rows: [][]any{
			{"Title"},
			{"Process", "Stakeholder", "Change", "Impact", "Perception"},
			{"Close", "Finance", "x", "Severe", "Neutral"},
		},
	})

	report, err := RunFile(config.Default(), path, types.ModeChangeImpact)
	require.NoError(t, err)
	assert.Contains(t, report.Warnings, "No recognizable impact levels found.")
	require.Len(t, report.Charts, 1)
	assert.Equal(t, "Perception of Change by Stakeholder", report.Charts[0].Title)
}

func TestRunNoQualifyingSheet(t *testing.T) {
	path := writeWorkbook(t,
		sheet{name: "Cover", rows: [][]any{{"Title"}, {"Owner", "Date"}}},
		sheet{name: "Notes", rows: [][]any{{"Title"}, {"Stakeholder", "Comment"}}},
	)

	_, err := RunFile(config.Default(), path, types.ModeChangeImpact)
	require.Error(t, err)
	assert.Equal(t, types.StructuralError, types.KindOf(err))

	msg := UserMessage(err)
	assert.Contains(t, msg, "no qualifying sheet")
	assert.Contains(t, msg, "Sheets checked: Cover, Notes")
	assert.Contains(t, msg, "Re-upload")
}

func TestRunStakeholder(t *testing.T) {
	path := writeWorkbook(t, sheet{name: "Cover", rows: [][]any{{"Cover"}}}, stakeholderSheet())

	report, err := RunFile(config.Default(), path, types.ModeStakeholder)
	require.NoError(t, err)

	assert.Equal(t, types.ModeStakeholder, report.Mode)
	assert.Equal(t, 2, report.Header.Row)
	assert.Equal(t, 1, report.RowsDropped)
	require.Len(t, report.Points, 4)

	strategies := make(map[string]string)
	for _, row := range report.Strategies {
		strategies[row.Stakeholder] = row.Strategy
	}
	assert.Equal(t, map[string]string{
		"Alice": "Engage Immediately",
		"Bob":   "Observe Occasionally",
		"Carol": "Inform Regularly",
		"Erin":  "Undefined",
	}, strategies)
	assert.Equal(t, "Engage Immediately", report.Strategies[0].Strategy)
	assert.Equal(t, "Undefined", report.Strategies[len(report.Strategies)-1].Strategy)

	assert.Equal(t, 300.0, report.Points[3].Size)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "1 stakeholder(s)")

	require.Len(t, report.Charts, 1)
	assert.Equal(t, 2, report.Charts[0].Table.Count("Finance", "Negative"))
	assert.Equal(t, "Finance", report.Offender.Label)
	assert.Equal(t, 2, report.Offender.Count)
}

func TestRunStakeholderMissingHeader(t *testing.T) {
	path := writeWorkbook(t, sheet{name: "Stakeholder Analysis", rows: [][]any{{"Name", "Sentiment"}}})

	_, err := RunFile(config.Default(), path, types.ModeStakeholder)
	assert.Equal(t, types.StructuralError, types.KindOf(err))
	assert.Contains(t, UserMessage(err), "Stakeholder Analysis")
}

func TestRunStakeholderMissingColumn(t *testing.T) {
	path := writeWorkbook(t, sheet{
		name: "Stakeholder Analysis",
		rows: [][]any{{"Stakeholder Name", "Sentiment", "Influence"}, {"Alice", "Positive", "High"}},
	})

	_, err := RunFile(config.Default(), path, types.ModeStakeholder)
	assert.Equal(t, types.SchemaError, types.KindOf(err))

	msg := UserMessage(err)
	assert.Contains(t, msg, "Could not identify all required columns. Needed: Group.")
	assert.Contains(t, msg, "Available columns: Stakeholder Name, Sentiment, Influence")
}

func TestRunAuto(t *testing.T) {
	cfg := config.Default()

	t.Run("Stakeholder workbook", func(t *testing.T) {
		report, err := RunFile(cfg, writeWorkbook(t, stakeholderSheet()), ModeAuto)
		require.NoError(t, err)
		assert.Equal(t, types.ModeStakeholder, report.Mode)
	})

	t.Run("Change impact workbook", func(t *testing.T) {
		report, err := RunFile(cfg, writeWorkbook(t, changeImpactSheet()), ModeAuto)
		require.NoError(t, err)
		assert.Equal(t, types.ModeChangeImpact, report.Mode)
	})

	t.Run("Marker row on another sheet", func(t *testing.T) {
		notes := sheet{name: "Notes", rows: [][]any{{"Stakeholder Name", "Comment"}, {"Alice", "call back"}}}

		report, err := RunFile(cfg, writeWorkbook(t, notes, changeImpactSheet()), ModeAuto)
		require.NoError(t, err)
		assert.Equal(t, types.ModeChangeImpact, report.Mode)

		_, err = RunFile(cfg, writeWorkbook(t, notes), ModeAuto)
		assert.Equal(t, types.SchemaError, types.KindOf(err))
	})

	t.Run("Named sheet with missing column", func(t *testing.T) {
		broken := sheet{name: "Stakeholder Analysis", rows: [][]any{{"Stakeholder Name", "Sentiment"}, {"Alice", "Negative"}}}

		_, err := RunFile(cfg, writeWorkbook(t, broken, changeImpactSheet()), ModeAuto)
		assert.Equal(t, types.SchemaError, types.KindOf(err))
	})

	t.Run("Neither", func(t *testing.T) {
		_, err := RunFile(cfg, writeWorkbook(t, sheet{name: "Blank", rows: [][]any{{"x"}}}), ModeAuto)
		assert.Equal(t, types.StructuralError, types.KindOf(err))
	})
}

func TestRunUnknownMode(t *testing.T) {
	_, err := RunFile(config.Default(), writeWorkbook(t, stakeholderSheet()), "pie")
	assert.ErrorContains(t, err, "unknown mode")
}

func TestRunReaderGarbage(t *testing.T) {
	_, err := RunReader(config.Default(), bytes.NewReader([]byte("plain text")), "notes.xlsx", ModeAuto)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(UserMessage(err), "Failed to read or parse Excel file:"))
}

func TestRunIsStateless(t *testing.T) {
	cfg := config.Default()
	path := writeWorkbook(t, changeImpactSheet())

	first, err := RunFile(cfg, path, types.ModeChangeImpact)
	require.NoError(t, err)
	second, err := RunFile(cfg, path, types.ModeChangeImpact)
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Charts, second.Charts)
}
