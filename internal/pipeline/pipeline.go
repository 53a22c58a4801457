package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/nconklindev/sway/internal/aggregate"
	"github.com/nconklindev/sway/internal/config"
	"github.com/nconklindev/sway/internal/locator"
	"github.com/nconklindev/sway/internal/normalize"
	"github.com/nconklindev/sway/internal/types"
	"github.com/nconklindev/sway/internal/workbook"
)

// ModeAuto tries the stakeholder analysis layout first, then change impact.
const ModeAuto types.Mode = "auto"

// Chart is one categorical cross-tab ready for rendering.
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Legend string
	Table  *aggregate.CrossTab
	// Levels are the recognized values present in Table, in vocabulary order.
	Levels []string
}

// Report is everything one run derives from one workbook.
type Report struct {
	Mode        types.Mode
	Source      string
	Sheet       string
	Header      types.HeaderLocation
	Columns     []string
	Mapping     types.ColumnMapping
	RowsRead    int
	RowsDropped int
	Records     []types.NormalizedRecord

	Charts []Chart
	// Points and Strategies are filled in stakeholder mode only.
	Points     []types.Point
	Strategies []aggregate.StrategyRow

	Offender aggregate.Offender
	Insights []string
	Warnings []string
}

// RunFile opens the workbook at path and runs it.
func RunFile(cfg *config.Config, path string, mode types.Mode) (*Report, error) {
	wb, err := workbook.Open(path)
	if err != nil {
		return nil, err
	}
	return Run(cfg, wb, mode)
}

// RunReader reads an uploaded workbook and runs it.
func RunReader(cfg *config.Config, r io.Reader, source string, mode types.Mode) (*Report, error) {
	wb, err := workbook.Read(r, source)
	if err != nil {
		return nil, err
	}
	return Run(cfg, wb, mode)
}

// Run locates, normalizes and aggregates one workbook. It keeps no state between calls.
func Run(cfg *config.Config, wb *workbook.Workbook, mode types.Mode) (*Report, error) {
	log.Printf("[Pipeline] %s: mode %s, %d sheet(s)", wb.Source, mode, len(wb.Sheets))

	switch mode {
	case types.ModeChangeImpact:
		return changeImpact(cfg, wb)
	case types.ModeStakeholder:
		return stakeholder(cfg, wb)
	case ModeAuto, "":
		report, err := stakeholder(cfg, wb)
		if err == nil || !tryImpact(cfg, wb, err) {
			return report, err
		}
		impact, impactErr := changeImpact(cfg, wb)
		if impactErr != nil && types.KindOf(err) == types.SchemaError {
			return nil, err
		}
		return impact, impactErr
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}

// tryImpact reports whether a failed stakeholder read leaves change impact
// worth trying. A schema error only counts when the marker row was found
// outside the configured stakeholder sheet.
func tryImpact(cfg *config.Config, wb *workbook.Workbook, err error) bool {
	switch types.KindOf(err) {
	case types.StructuralError:
		return true
	case types.SchemaError:
		_, named := wb.Sheet(cfg.Stakeholder.SheetName)
		return !named
	}
	return false
}

func changeImpact(cfg *config.Config, wb *workbook.Workbook) (*Report, error) {
	ic := cfg.Impact
	levels := cfg.Vocabulary.Level

	table, err := locator.SelectSheet(wb.Sheets, ic)
	if err != nil {
		return nil, err
	}

	res := normalize.Records(table, ic.DropMissing, ic.Explode)
	report := newReport(types.ModeChangeImpact, wb, table, res)

	impact := Chart{
		Title:  "Degree of Impact by Stakeholder",
		XLabel: "Stakeholder Group",
		YLabel: "Number of Changes",
		Legend: "Impact Level",
		Table:  aggregate.CrossTabulate(res.Records, types.FieldStakeholder, types.FieldImpact, levels),
	}
	impact.Levels = impact.Table.Present(levels)
	switch {
	case impact.Table.Empty():
		report.Warnings = append(report.Warnings, "No impact data available to display.")
	case len(impact.Levels) == 0:
		report.Warnings = append(report.Warnings, "No recognizable impact levels found.")
	default:
		report.Charts = append(report.Charts, impact)
	}

	sentiment := cfg.Vocabulary.Sentiment
	perception := Chart{
		Title:  "Perception of Change by Stakeholder",
		XLabel: "Stakeholder Group",
		YLabel: "Number of Changes",
		Legend: "Perception",
		Table:  aggregate.CrossTabulate(res.Records, types.FieldStakeholder, types.FieldPerception, sentiment),
	}
	perception.Levels = perception.Table.Present(sentiment)
	if !perception.Table.Empty() && len(perception.Levels) > 0 {
		report.Charts = append(report.Charts, perception)
	} else {
		report.Warnings = append(report.Warnings, "No recognizable perception values found.")
	}

	report.Offender = aggregate.TopOffender(res.Records, types.FieldStakeholder, types.FieldImpact, ic.Extreme)
	if !report.Offender.Found {
		report.Insights = append(report.Insights, fmt.Sprintf("No '%s' impact changes found.", ic.Extreme))
	} else {
		extreme := strings.ToLower(ic.Extreme)
		report.Insights = append(report.Insights,
			fmt.Sprintf("Interesting Fact: The stakeholder group '%s' has the highest number of %s-impact changes (%d).",
				report.Offender.Label, extreme, report.Offender.Count),
			fmt.Sprintf("Conclusion: The visualizations highlight that %s faces the most %s-impact changes, requiring focused training or communication.",
				report.Offender.Label, extreme),
		)
	}

	return report, nil
}

func stakeholder(cfg *config.Config, wb *workbook.Workbook) (*Report, error) {
	sc := cfg.Stakeholder

	table, err := locator.LocateByMarker(wb.Sheets, sc)
	if err != nil {
		return nil, err
	}

	res := normalize.Records(table, sc.DropMissing, sc.Explode)
	report := newReport(types.ModeStakeholder, wb, table, res)

	report.Points = normalize.Place(res.Records, cfg.Vocabulary, cfg.Jitter)
	report.Strategies = aggregate.StrategyTable(report.Points)

	unplaced := 0
	for _, p := range report.Points {
		if !p.Known {
			unplaced++
		}
	}
	if unplaced > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d stakeholder(s) have an unrecognized sentiment or influence and are not plotted.", unplaced))
	}

	sentiment := cfg.Vocabulary.Sentiment
	byGroup := Chart{
		Title:  "Sentiment by Stakeholder Group",
		XLabel: "Stakeholder Group",
		YLabel: "Number of Stakeholders",
		Legend: "Sentiment",
		Table:  aggregate.CrossTabulate(res.Records, types.FieldGroup, types.FieldSentiment, sentiment),
	}
	byGroup.Levels = byGroup.Table.Present(sentiment)
	if !byGroup.Table.Empty() && len(byGroup.Levels) > 0 {
		report.Charts = append(report.Charts, byGroup)
	}

	report.Offender = aggregate.TopOffender(res.Records, types.FieldGroup, types.FieldSentiment, sc.Extreme)
	if !report.Offender.Found {
		report.Insights = append(report.Insights, fmt.Sprintf("No '%s' sentiment stakeholders found.", sc.Extreme))
	} else {
		report.Insights = append(report.Insights,
			fmt.Sprintf("Interesting Fact: The stakeholder group '%s' has the most %s stakeholders (%d).",
				report.Offender.Label, strings.ToLower(sc.Extreme), report.Offender.Count),
		)
	}

	return report, nil
}

func newReport(mode types.Mode, wb *workbook.Workbook, table *types.Table, res normalize.Result) *Report {
	log.Printf("[Pipeline] sheet %q: %d row(s) read, %d dropped, %d record(s)",
		table.Sheet, res.RowsRead, res.RowsDropped, len(res.Records))

	return &Report{
		Mode:        mode,
		Source:      wb.Source,
		Sheet:       table.Sheet,
		Header:      table.Header,
		Columns:     table.Columns,
		Mapping:     table.Mapping,
		RowsRead:    res.RowsRead,
		RowsDropped: res.RowsDropped,
		Records:     res.Records,
	}
}

// UserMessage renders err as the text shown to the user: what was expected,
// what was found and what to upload instead.
func UserMessage(err error) string {
	var e *types.Error
	if !errors.As(err, &e) {
		return fmt.Sprintf("Failed to read or parse Excel file: %v", err)
	}

	var b strings.Builder
	switch e.Kind {
	case types.SchemaError:
		b.WriteString("Could not identify all required columns.")
		if len(e.Fields) > 0 {
			names := make([]string, len(e.Fields))
			for i, f := range e.Fields {
				names[i] = string(f)
			}
			fmt.Fprintf(&b, " Needed: %s.", strings.Join(names, ", "))
		}
	default:
		b.WriteString(e.Msg)
	}
	if len(e.Sheets) > 0 {
		fmt.Fprintf(&b, "\nSheets checked: %s", strings.Join(e.Sheets, ", "))
	}
	if len(e.Columns) > 0 {
		fmt.Fprintf(&b, "\nAvailable columns: %s", strings.Join(e.Columns, ", "))
	}
	b.WriteString("\n")
	b.WriteString(e.Hint())
	return b.String()
}
