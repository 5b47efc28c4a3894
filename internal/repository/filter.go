package repository

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"shelfpulse/internal/features"

	"github.com/Masterminds/squirrel"
)

type valueKind int

const (
	kindNumber valueKind = iota
	kindBool
	kindText
)

type filterField struct {
	column string
	kind   valueKind
}

// ProductFilter is a parsed product search.
type ProductFilter struct {
	Where  []squirrel.Sqlizer
	Limit  uint64
	Offset uint64
}

// FilterValueError reports a filter value that does not fit its field.
type FilterValueError struct {
	Param string
	Value string
}

func (e *FilterValueError) Error() string {
	return fmt.Sprintf("invalid value %q for filter %s", e.Value, e.Param)
}

var filterFields = func() map[string]filterField {
	fields := map[string]filterField{
		"sku":      {column: "p.sku", kind: kindText},
		"category": {column: "p.category", kind: kindText},

		"spoilage_risk":              {column: "pr.spoilage_risk", kind: kindText},
		"days_to_expiry_pred":        {column: "pr.days_to_expiry_pred", kind: kindNumber},
		"forecasted_demand_pred":     {column: "pr.forecasted_demand_pred", kind: kindNumber},
		"dead_stock":                 {column: "pr.dead_stock", kind: kindBool},
		"suggested_markdown_percent": {column: "pr.suggested_markdown_percent", kind: kindNumber},
		"trigger_markdown":           {column: "pr.trigger_markdown", kind: kindBool},
		"sustainability_label":       {column: "pr.sustainability_label", kind: kindText},
	}
	for _, f := range features.Catalog {
		fields[f.Name] = filterField{column: "p." + f.Column, kind: kindNumber}
	}
	return fields
}()

// BuildConditions turns query parameters into SQL conditions. A parameter is an
// exact field name (equality) or a field name with a _gt or _lt suffix.
// Parameters naming no known field are returned in ignored, sorted.
func BuildConditions(params map[string]string) (conds []squirrel.Sqlizer, ignored []string, err error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, param := range keys {
		raw := params[param]
		if f, ok := filterFields[param]; ok {
			v, err := f.parse(param, raw)
			if err != nil {
				return nil, nil, err
			}
			conds = append(conds, squirrel.Eq{f.column: v})
			continue
		}

		base, op, ok := splitRangeSuffix(param)
		f, known := filterFields[base]
		if !ok || !known || f.kind == kindBool {
			ignored = append(ignored, param)
			continue
		}
		v, err := f.parse(param, raw)
		if err != nil {
			return nil, nil, err
		}
		if op == "gt" {
			conds = append(conds, squirrel.Gt{f.column: v})
		} else {
			conds = append(conds, squirrel.Lt{f.column: v})
		}
	}
	return conds, ignored, nil
}

func splitRangeSuffix(param string) (base, op string, ok bool) {
	for _, suffix := range []string{"_gt", "_lt"} {
		if strings.HasSuffix(param, suffix) {
			return strings.TrimSuffix(param, suffix), suffix[1:], true
		}
	}
	return "", "", false
}

func (f filterField) parse(param, raw string) (any, error) {
	switch f.kind {
	case kindNumber:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, &FilterValueError{Param: param, Value: raw}
		}
		return v, nil
	case kindBool:
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, &FilterValueError{Param: param, Value: raw}
		}
		return v, nil
	default:
		return raw, nil
	}
}
