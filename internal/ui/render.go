package ui

import (
	"fmt"
	"strings"

	"github.com/nconklindev/sway/internal/config"
	"github.com/nconklindev/sway/internal/normalize"
	"github.com/nconklindev/sway/internal/pipeline"
	"github.com/nconklindev/sway/internal/types"

	"github.com/charmbracelet/lipgloss"
)

const barGlyph = "█"

// RenderBars draws a cross-tab as horizontal stacked bars, one line per group,
// scaled so the largest group fills width cells.
func RenderBars(c pipeline.Chart, width int) string {
	var s strings.Builder

	s.WriteString(HeadingStyle.Render(c.Title))
	s.WriteString("\n")

	labelWidth := 0
	maxTotal := 0
	totals := make([]int, len(c.Table.Groups))
	for i, g := range c.Table.Groups {
		labelWidth = max(labelWidth, lipgloss.Width(g))
		for _, level := range c.Levels {
			totals[i] += c.Table.Count(g, level)
		}
		maxTotal = max(maxTotal, totals[i])
	}
	labelWidth = max(min(labelWidth, 24), 1)

	barWidth := width - labelWidth - 8
	if barWidth < 10 {
		barWidth = 10
	}

	for i, g := range c.Table.Groups {
		label := g
		if r := []rune(label); labelWidth > 1 && len(r) > labelWidth {
			label = string(r[:labelWidth-1]) + "…"
		}
		s.WriteString(fmt.Sprintf("%-*s ", labelWidth, label))

		for _, level := range c.Levels {
			n := c.Table.Count(g, level)
			if n == 0 || maxTotal == 0 {
				continue
			}
			cells := max(1, n*barWidth/maxTotal)
			s.WriteString(LevelStyle(level).Render(strings.Repeat(barGlyph, cells)))
		}
		s.WriteString(fmt.Sprintf(" %d\n", totals[i]))
	}

	legend := make([]string, 0, len(c.Levels))
	for _, level := range c.Levels {
		legend = append(legend, LevelStyle(level).Render(barGlyph)+" "+level)
	}
	s.WriteString(SubtitleStyle.Render(c.Legend + ": " + strings.Join(legend, "  ")))

	return s.String()
}

// RenderGrid draws the influence/sentiment plane as a 3x3 grid of cells with
// the number of stakeholders and the engagement strategy of each cell.
func RenderGrid(points []types.Point, vocab config.VocabularyConfig) string {
	counts := make(map[[2]float64]int)
	for _, p := range points {
		if p.Known {
			counts[[2]float64{p.X, p.Y}]++
		}
	}

	var rows []string
	// Highest sentiment on top.
	for yi := len(vocab.Sentiment.Values) - 1; yi >= 0; yi-- {
		y := vocab.Sentiment.Positions[yi]
		cells := []string{lipgloss.NewStyle().Width(10).Render(vocab.Sentiment.Values[yi])}
		for _, x := range vocab.Level.Positions {
			n := counts[[2]float64{x, y}]
			body := fmt.Sprintf("%d\n%s", n, normalize.Strategy(vocab, x, y, true))
			style := CellStyle
			if n > 0 {
				style = style.BorderForeground(lipgloss.Color("#FF8C42"))
			}
			cells = append(cells, style.Render(body))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center, cells...))
	}

	axis := []string{lipgloss.NewStyle().Width(10).Render("")}
	for _, v := range vocab.Level.Values {
		axis = append(axis, lipgloss.NewStyle().Width(26).Align(lipgloss.Center).Render(v))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, axis...))
	rows = append(rows, SubtitleStyle.Render("Influence →   Sentiment ↑"))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
