package aggregate

import (
	"sort"
	"strings"

	"github.com/nconklindev/sway/internal/config"
	"github.com/nconklindev/sway/internal/types"
)

// CrossTab counts records per (group, rating value). Every group/value
// combination is present; absent combinations count zero.
type CrossTab struct {
	GroupBy types.Field
	Field   types.Field
	// Groups are sorted; Values are vocabulary order followed by
	// unrecognized values in the order they first appear.
	Groups []string
	Values []string
	// Counts[g][v] is the count for Groups[g] and Values[v].
	Counts [][]int
}

// CrossTabulate groups records by groupBy and counts each value of field.
func CrossTabulate(records []types.NormalizedRecord, groupBy, field types.Field, scale config.Scale) *CrossTab {
	ct := &CrossTab{GroupBy: groupBy, Field: field}

	seenGroup := make(map[string]bool)
	seenValue := make(map[string]bool)
	var unknown []string
	for _, rec := range records {
		g, v := rec.Rating(groupBy), rec.Rating(field)
		if !seenGroup[g] {
			seenGroup[g] = true
			ct.Groups = append(ct.Groups, g)
		}
		if !seenValue[v] {
			seenValue[v] = true
			if !scale.Contains(v) {
				unknown = append(unknown, v)
			}
		}
	}
	sort.Strings(ct.Groups)

	for _, v := range scale.Values {
		if seenValue[v] {
			ct.Values = append(ct.Values, v)
		}
	}
	ct.Values = append(ct.Values, unknown...)

	groupIdx := indexOf(ct.Groups)
	valueIdx := indexOf(ct.Values)

	ct.Counts = make([][]int, len(ct.Groups))
	for i := range ct.Counts {
		ct.Counts[i] = make([]int, len(ct.Values))
	}
	for _, rec := range records {
		ct.Counts[groupIdx[rec.Rating(groupBy)]][valueIdx[rec.Rating(field)]]++
	}

	return ct
}

// Empty reports whether the cross-tab has no data.
func (c *CrossTab) Empty() bool {
	return len(c.Groups) == 0
}

// Count returns the count for a group and value, zero when either is absent.
func (c *CrossTab) Count(group, value string) int {
	g, v := index(c.Groups, group), index(c.Values, value)
	if g < 0 || v < 0 {
		return 0
	}
	return c.Counts[g][v]
}

// Total returns the number of records with value across all groups.
func (c *CrossTab) Total(value string) int {
	v := index(c.Values, value)
	if v < 0 {
		return 0
	}
	total := 0
	for _, row := range c.Counts {
		total += row[v]
	}
	return total
}

// Present returns the recognized vocabulary values that occur, in vocabulary order.
func (c *CrossTab) Present(scale config.Scale) []string {
	var present []string
	for _, v := range c.Values {
		if scale.Contains(v) {
			present = append(present, v)
		}
	}
	return present
}

// Offender is the group with the most records at an extreme rating.
// Found is false when no record has that rating.
type Offender struct {
	Label string
	Count int
	Found bool
}

// TopOffender finds the group with the most records whose field equals extreme,
// compared case-insensitively. Ties go to the group encountered first.
func TopOffender(records []types.NormalizedRecord, groupBy, field types.Field, extreme string) Offender {
	counts := make(map[string]int)
	var order []string
	for _, rec := range records {
		if !strings.EqualFold(rec.Rating(field), extreme) {
			continue
		}
		g := rec.Rating(groupBy)
		if _, ok := counts[g]; !ok {
			order = append(order, g)
		}
		counts[g]++
	}

	var top Offender
	for _, g := range order {
		if counts[g] > top.Count {
			top = Offender{Label: g, Count: counts[g], Found: true}
		}
	}
	return top
}

// StrategyRow is one line of the engagement strategy table.
type StrategyRow struct {
	Stakeholder string
	Group       string
	Sentiment   string
	Influence   string
	Strategy    string
}

// StrategyTable lists every placed stakeholder sorted by strategy.
// Rows with the same strategy keep their input order.
func StrategyTable(points []types.Point) []StrategyRow {
	rows := make([]StrategyRow, len(points))
	for i, p := range points {
		rows[i] = StrategyRow{
			Stakeholder: p.Record.Stakeholder,
			Group:       p.Record.Group,
			Sentiment:   p.Record.Sentiment,
			Influence:   p.Record.Influence,
			Strategy:    p.Strategy,
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Strategy < rows[j].Strategy
	})
	return rows
}

func indexOf(values []string) map[string]int {
	idx := make(map[string]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}

func index(values []string, v string) int {
	for i, val := range values {
		if val == v {
			return i
		}
	}
	return -1
}
