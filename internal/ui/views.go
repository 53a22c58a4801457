package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sway/internal/pipeline"
	"github.com/nconklindev/sway/internal/types"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("◆ Sway - Stakeholder & Change Impact Charts"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select an XLSX assessment workbook"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press q to quit"))

	return s.String()
}

func (m Model) viewModeSelection() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("◆ Select Analysis"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("File: %s", filepath.Base(m.selectedFile))))
	s.WriteString("\n\n")

	for i, opt := range modeOptions {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		line := fmt.Sprintf("%s %s", cursor, opt.label)
		if m.cursor == i {
			line = SelectedStyle.Render(line)
		} else {
			line = UnselectedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("↑/↓: navigate • enter: analyze • esc: back • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("◆ Processing..."))
	s.WriteString("\n\n")
	s.WriteString(m.spinner.View())
	s.WriteString(" Reading ")
	s.WriteString(filepath.Base(m.selectedFile))

	return BoxStyle.Render(s.String())
}

func (m Model) viewDashboard() string {
	var s strings.Builder

	title := "Change Impact Assessment"
	if m.report.Mode == types.ModeStakeholder {
		title = "Stakeholder Analysis"
	}
	s.WriteString(TitleStyle.Render("◆ " + title))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s • sheet %q • %d record(s)",
		filepath.Base(m.report.Source), m.report.Sheet, len(m.report.Records))))
	s.WriteString("\n")

	if m.showTable {
		s.WriteString(m.table.View())
	} else {
		s.WriteString(m.viewport.View())
	}
	s.WriteString("\n")

	switch {
	case m.exportErr != nil:
		s.WriteString(ErrorStyle.Render("✗ Export failed: " + m.exportErr.Error()))
		s.WriteString("\n")
	case len(m.exported) > 0:
		s.WriteString(SuccessStyle.Render(fmt.Sprintf("✓ Exported %d file(s) to %s", len(m.exported), filepath.Dir(m.exported[0]))))
		s.WriteString("\n")
	}

	help := "↑/↓: scroll • e: export • o: open another file • q: quit"
	if len(m.report.Strategies) > 0 {
		help = "↑/↓: scroll • tab: charts/strategies • e: export • o: open another file • q: quit"
	}
	s.WriteString(HelpStyle.Render(help))

	return s.String()
}

// dashboardContent is the scrollable body of the dashboard.
func (m Model) dashboardContent() string {
	r := m.report
	width := max(m.viewport.Width, 40)

	var sections []string

	for _, c := range r.Charts {
		if c.Table.Empty() || len(c.Levels) == 0 {
			continue
		}
		sections = append(sections, RenderBars(c, width))
	}

	if r.Mode == types.ModeStakeholder && len(r.Points) > 0 {
		sections = append(sections, HeadingStyle.Render("Stakeholder Sentiment vs. Influence"), RenderGrid(r.Points, m.cfg.Vocabulary))
	}

	if len(r.Insights) > 0 {
		sections = append(sections, HeadingStyle.Render("Insights")+"\n"+strings.Join(r.Insights, "\n"))
	}

	if len(r.Warnings) > 0 {
		lines := make([]string, len(r.Warnings))
		for i, w := range r.Warnings {
			lines[i] = WarningStyle.Render("! " + w)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	sections = append(sections, SubtitleStyle.Render(mappingLine(r)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// mappingLine lists which source column each field was read from.
func mappingLine(r *pipeline.Report) string {
	fields := []types.Field{
		types.FieldIdentifier,
		types.FieldStakeholder,
		types.FieldGroup,
		types.FieldImpact,
		types.FieldPerception,
		types.FieldSentiment,
		types.FieldInfluence,
	}

	var parts []string
	for _, f := range fields {
		ref, ok := r.Mapping[f]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s ← %q", f, ref.Name))
	}
	return fmt.Sprintf("Header row %d • %s", r.Header.Row+1, strings.Join(parts, " • "))
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(pipeline.UserMessage(m.err))
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("o: open another file • q: quit"))

	return BoxStyle.Render(s.String())
}
