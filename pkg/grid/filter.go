package grid

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-reportview/pkg/columns"
)

// matchesFilter evaluates one persisted column filter against a cell value.
// Unknown filter shapes match everything.
func matchesFilter(spec any, value any, typ columns.Type) bool {
	model, ok := spec.(map[string]any)
	if !ok || len(model) == 0 {
		return true
	}

	if models, ok := model["filterModels"].([]any); ok {
		for _, sub := range models {
			if sub != nil && !matchesFilter(sub, value, typ) {
				return false
			}
		}
		return true
	}

	if conditions, ok := model["conditions"].([]any); ok {
		return combine(model, conditions, value, typ)
	}
	if _, ok := model["condition1"]; ok {
		return combine(model, []any{model["condition1"], model["condition2"]}, value, typ)
	}

	kind, _ := model["filterType"].(string)
	if kind == "" {
		kind = filterTypeFor(typ)
	}
	switch kind {
	case "number":
		return matchNumber(model, value)
	case "date":
		return matchDate(model, value)
	case "set":
		return matchSet(model, value)
	default:
		return matchText(model, value)
	}
}

func combine(model map[string]any, conditions []any, value any, typ columns.Type) bool {
	or := strings.EqualFold(fmt.Sprint(model["operator"]), "OR")
	kind, _ := model["filterType"].(string)

	evaluated := 0
	for _, cond := range conditions {
		sub, ok := cond.(map[string]any)
		if !ok {
			continue
		}
		if kind != "" {
			if _, has := sub["filterType"]; !has {
				merged := make(map[string]any, len(sub)+1)
				for k, v := range sub {
					merged[k] = v
				}
				merged["filterType"] = kind
				sub = merged
			}
		}
		evaluated++
		ok = matchesFilter(sub, value, typ)
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	if evaluated == 0 {
		return true
	}
	return !or
}

func filterTypeFor(typ columns.Type) string {
	switch typ {
	case columns.TypeNumeric:
		return "number"
	case columns.TypeDate:
		return "date"
	default:
		return "text"
	}
}

func isBlankCell(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func operator(model map[string]any, fallback string) string {
	if op, ok := model["type"].(string); ok && op != "" {
		return op
	}
	return fallback
}

func matchText(model map[string]any, value any) bool {
	op := operator(model, "contains")
	switch op {
	case "blank":
		return isBlankCell(value)
	case "notBlank":
		return !isBlankCell(value)
	}

	needle := strings.ToLower(cellText(model["filter"]))
	if value == nil {
		return op == "notEqual" || op == "notContains"
	}
	hay := strings.ToLower(cellText(value))

	switch op {
	case "equals":
		return hay == needle
	case "notEqual":
		return hay != needle
	case "notContains":
		return !strings.Contains(hay, needle)
	case "startsWith":
		return strings.HasPrefix(hay, needle)
	case "endsWith":
		return strings.HasSuffix(hay, needle)
	default:
		return strings.Contains(hay, needle)
	}
}

func matchNumber(model map[string]any, value any) bool {
	op := operator(model, "equals")
	switch op {
	case "blank":
		return isBlankCell(value)
	case "notBlank":
		return !isBlankCell(value)
	}

	cell, ok := number(value)
	if !ok {
		return op == "notEqual"
	}
	bound, ok := number(model["filter"])
	if !ok {
		return true
	}

	switch op {
	case "notEqual":
		return cell != bound
	case "greaterThan":
		return cell > bound
	case "greaterThanOrEqual":
		return cell >= bound
	case "lessThan":
		return cell < bound
	case "lessThanOrEqual":
		return cell <= bound
	case "inRange":
		upper, ok := number(model["filterTo"])
		if !ok {
			return cell >= bound
		}
		return cell >= bound && cell <= upper
	default:
		return cell == bound
	}
}

func matchDate(model map[string]any, value any) bool {
	op := operator(model, "equals")
	switch op {
	case "blank":
		return isBlankCell(value)
	case "notBlank":
		return !isBlankCell(value)
	}

	cell, ok := dateOf(value)
	if !ok {
		return op == "notEqual"
	}
	from, ok := dateOf(model["dateFrom"])
	if !ok {
		return true
	}

	switch op {
	case "notEqual":
		return !cell.Equal(from)
	case "greaterThan":
		return cell.After(from)
	case "lessThan":
		return cell.Before(from)
	case "inRange":
		to, ok := dateOf(model["dateTo"])
		if !ok {
			return !cell.Before(from)
		}
		return !cell.Before(from) && !cell.After(to)
	default:
		return cell.Equal(from)
	}
}

func matchSet(model map[string]any, value any) bool {
	values, ok := model["values"].([]any)
	if !ok {
		return true
	}
	text := cellText(value)
	for _, v := range values {
		if v == nil && value == nil {
			return true
		}
		if v != nil && cellText(v) == text {
			return true
		}
	}
	return false
}

func number(value any) (float64, bool) {
	coerced, ok := columns.Coerce(value)
	if !ok {
		return 0, false
	}
	return coerced.(float64), true
}

// dateOf reduces a cell or bound to its calendar date.
func dateOf(value any) (time.Time, bool) {
	s, ok := value.(string)
	if !ok {
		return time.Time{}, false
	}
	t, ok := columns.ParseDate(s)
	if !ok {
		return time.Time{}, false
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

func cellText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatNumber(v)
	default:
		return fmt.Sprint(v)
	}
}
