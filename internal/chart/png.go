package chart

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/nconklindev/sway/internal/config"
	"github.com/nconklindev/sway/internal/pipeline"
	"github.com/nconklindev/sway/internal/types"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Fallback for values without an assigned colour.
var otherColor = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}

var levelColors = map[string]color.RGBA{
	"Low":      {G: 0x80, A: 0xff},
	"Medium":   {R: 0xff, G: 0xa5, A: 0xff},
	"High":     {R: 0xff, A: 0xff},
	"Negative": {R: 0xff, A: 0xff},
	"Neutral":  {B: 0xff, A: 0xff},
	"Positive": {G: 0x80, A: 0xff},
}

// ColorFor returns the bar colour of a rating value
func ColorFor(value string) color.RGBA {
	if c, ok := levelColors[value]; ok {
		return c
	}
	return otherColor
}

// StackedBar renders a cross-tab as bars stacked per recognized level
func StackedBar(c pipeline.Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Legend.Top = true
	p.Legend.Add(c.Legend)

	groups := c.Table.Groups
	width := vg.Points(20)
	if len(groups) > 0 && len(groups) < 12 {
		width = vg.Points(float64(240 / len(groups)))
	}

	var below *plotter.BarChart
	for _, level := range c.Levels {
		values := make(plotter.Values, len(groups))
		for i, g := range groups {
			values[i] = float64(c.Table.Count(g, level))
		}

		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return nil, fmt.Errorf("bar chart %q: %w", level, err)
		}
		bars.Color = ColorFor(level)
		bars.LineStyle.Width = vg.Length(0)
		if below != nil {
			bars.StackOn(below)
		}
		below = bars

		p.Add(bars)
		p.Legend.Add(level, bars)
	}

	p.NominalX(groups...)
	p.X.Tick.Label.XAlign = draw.XCenter
	p.Add(plotter.NewGrid())

	return p, nil
}

func ticks(scale config.Scale) plot.ConstantTicks {
	t := make(plot.ConstantTicks, len(scale.Values))
	for i, v := range scale.Values {
		t[i] = plot.Tick{Value: scale.Positions[i], Label: v}
	}
	return t
}

// Scatter renders placed stakeholders on the influence/sentiment plane, one
// series per stakeholder group. Points with unknown positions are skipped.
func Scatter(points []types.Point, vocab config.VocabularyConfig) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Stakeholder Sentiment vs. Influence Clustering"
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Influence"
	p.Y.Label.Text = "Sentiment"
	p.X.Tick.Marker = ticks(vocab.Level)
	p.Y.Tick.Marker = ticks(vocab.Sentiment)
	p.X.Min, p.X.Max = -0.5, 2.5
	p.Y.Min, p.Y.Max = -1.5, 1.5
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	byGroup := make(map[string][]types.Point)
	for _, pt := range points {
		if pt.Known {
			byGroup[pt.Record.Group] = append(byGroup[pt.Record.Group], pt)
		}
	}
	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for i, g := range groups {
		series := byGroup[g]
		xys := make(plotter.XYs, len(series))
		for j, pt := range series {
			xys[j] = plotter.XY{X: pt.JitterX, Y: pt.JitterY}
		}

		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("scatter %q: %w", g, err)
		}

		c := plotutil.Color(i)
		s.GlyphStyleFunc = func(j int) draw.GlyphStyle {
			return draw.GlyphStyle{
				Color:  c,
				Shape:  draw.CircleGlyph{},
				Radius: radius(series[j].Size),
			}
		}

		labels, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    xys,
			Labels: names(series),
		})
		if err != nil {
			return nil, fmt.Errorf("labels %q: %w", g, err)
		}

		p.Add(s, labels)
		p.Legend.Add(g, s)
	}

	return p, nil
}

// radius scales an impact size (200..600) to a glyph radius
func radius(size float64) vg.Length {
	return vg.Points(4 + size/60)
}

func names(points []types.Point) []string {
	out := make([]string, len(points))
	for i, pt := range points {
		out[i] = pt.Record.Stakeholder
	}
	return out
}
