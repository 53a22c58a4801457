package locator

import (
	"log"
	"strings"

	"github.com/nconklindev/sway/internal/config"
	"github.com/nconklindev/sway/internal/types"
)

// Resolve maps canonical fields to columns. Rules run in order and the first
// rule to resolve a field wins; within a rule the first matching column wins.
// Fields in required that no rule resolves produce a SchemaError.
func Resolve(columns []string, rules []config.Rule, required []types.Field) (types.ColumnMapping, error) {
	mapping := make(types.ColumnMapping)
	lower := lowerAll(columns)

	for _, rule := range rules {
		if _, done := mapping[rule.Field]; done {
			continue
		}
		if ref, ok := apply(rule, columns, lower); ok {
			mapping[rule.Field] = ref
			log.Printf("[Locator] %s -> column %d %q (%s)", rule.Field, ref.Index, ref.Name, rule)
		}
	}

	if missing := mapping.Missing(required); len(missing) > 0 {
		return nil, &types.Error{
			Kind:    types.SchemaError,
			Msg:     "missing required column(s)",
			Fields:  missing,
			Columns: columns,
		}
	}

	return mapping, nil
}

func apply(rule config.Rule, columns, lower []string) (types.ColumnRef, bool) {
	switch {
	case rule.Exact != "":
		for i, c := range columns {
			if strings.TrimSpace(c) == rule.Exact {
				return types.ColumnRef{Index: i, Name: c}, true
			}
		}

	case len(rule.Contains) > 0:
		for i, c := range lower {
			if containsAll(c, rule.Contains) {
				return types.ColumnRef{Index: i, Name: columns[i]}, true
			}
		}

	case rule.Column != nil:
		// Positional fallback: the template keeps this field at a fixed index.
		if idx := *rule.Column; idx < len(columns) {
			return types.ColumnRef{Index: idx, Name: columns[idx], Positional: true}, true
		}
	}

	return types.ColumnRef{}, false
}

func containsAll(column string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(column, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}
