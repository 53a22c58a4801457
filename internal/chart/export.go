package chart

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nconklindev/sway/internal/config"
	"github.com/nconklindev/sway/internal/pipeline"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

const (
	SummaryFile = "summary.xlsx"
	ScatterFile = "stakeholder_map.png"
)

// Export writes a PNG per chart, the stakeholder map when the report has
// placed points, and a summary workbook. It returns the files written, PNGs
// in chart order followed by the workbook.
func Export(dir string, report *pipeline.Report, vocab config.VocabularyConfig) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	type image struct {
		path   string
		width  vg.Length
		height vg.Length
		build  func() (*plot.Plot, error)
	}

	var images []image
	for _, c := range report.Charts {
		images = append(images, image{
			path:   filepath.Join(dir, FileName(c.Title)+".png"),
			width:  10 * vg.Inch,
			height: 6 * vg.Inch,
			build:  func() (*plot.Plot, error) { return StackedBar(c) },
		})
	}
	if len(report.Points) > 0 {
		images = append(images, image{
			path:   filepath.Join(dir, ScatterFile),
			width:  12 * vg.Inch,
			height: 8 * vg.Inch,
			build:  func() (*plot.Plot, error) { return Scatter(report.Points, vocab) },
		})
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, img := range images {
		g.Go(func() error {
			p, err := img.build()
			if err != nil {
				return err
			}
			if err := p.Save(img.width, img.height, img.path); err != nil {
				return fmt.Errorf("save %s: %w", img.path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	written := make([]string, 0, len(images)+1)
	for _, img := range images {
		written = append(written, img.path)
	}

	path := filepath.Join(dir, SummaryFile)
	if err := WriteSummary(path, report); err != nil {
		return written, err
	}
	written = append(written, path)

	log.Printf("[Export] wrote %d file(s) to %s", len(written), dir)
	return written, nil
}

// FileName turns a chart title into a file name without extension
func FileName(title string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore && b.Len() > 0:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// WriteSummary saves the cross-tabs, each with a native stacked column chart,
// the engagement strategy table and the insights into one workbook.
func WriteSummary(path string, report *pipeline.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	first := "Summary"
	if err := f.SetSheetName("Sheet1", first); err != nil {
		return err
	}
	if err := writeOverview(f, first, report); err != nil {
		return err
	}

	for _, c := range report.Charts {
		if err := writeCrossTab(f, sheetName(c.Legend), c); err != nil {
			return fmt.Errorf("sheet %q: %w", c.Legend, err)
		}
	}

	if len(report.Strategies) > 0 {
		if err := writeStrategies(f, "Engagement Strategy", report); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeOverview(f *excelize.File, sheet string, report *pipeline.Report) error {
	rows := [][]any{
		{"Source", report.Source},
		{"Sheet", report.Sheet},
		{"Header row", report.Header.Row + 1},
		{"Rows read", report.RowsRead},
		{"Rows dropped", report.RowsDropped},
		{"Records", len(report.Records)},
		{},
	}
	for _, s := range report.Insights {
		rows = append(rows, []any{s})
	}
	for _, w := range report.Warnings {
		rows = append(rows, []any{"Warning: " + w})
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "A", 16)
}

func writeCrossTab(f *excelize.File, sheet string, c pipeline.Chart) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []any{c.XLabel}
	for _, level := range c.Table.Values {
		header = append(header, level)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, g := range c.Table.Groups {
		row := []any{g}
		for _, n := range c.Table.Counts[i] {
			row = append(row, n)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	last := len(c.Table.Groups) + 1
	categories := fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last)

	var series []excelize.ChartSeries
	for i, v := range c.Table.Values {
		if !contains(c.Levels, v) {
			continue
		}
		col, _ := excelize.ColumnNumberToName(i + 2)
		rgb := ColorFor(v)
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$1", sheet, col),
			Categories: categories,
			Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, col, col, last),
			Fill: excelize.Fill{
				Type:    "pattern",
				Pattern: 1,
				Color:   []string{fmt.Sprintf("%02X%02X%02X", rgb.R, rgb.G, rgb.B)},
			},
		})
	}
	if len(series) == 0 {
		return nil
	}

	anchor, _ := excelize.CoordinatesToCellName(len(c.Table.Values)+3, 2)
	return f.AddChart(sheet, anchor, &excelize.Chart{
		Type:   excelize.ColStacked,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: c.Title}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: c.XLabel}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: c.YLabel}}},
	})
}

func writeStrategies(f *excelize.File, sheet string, report *pipeline.Report) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []any{"Stakeholder Name", "Stakeholder Group", "Sentiment", "Influence", "Engagement Strategy"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range report.Strategies {
		row := []any{r.Stakeholder, r.Group, r.Sentiment, r.Influence, r.Strategy}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "E", 22)
}

// sheetName keeps a name inside Excel's limits
func sheetName(name string) string {
	name = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ", "'", " ").Replace(name)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func contains(values []string, v string) bool {
	for _, val := range values {
		if val == v {
			return true
		}
	}
	return false
}
