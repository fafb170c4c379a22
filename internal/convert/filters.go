package convert

import "strings"

// Comparison operators in each backend's dialect. ERPNext takes
// [field, op, value] triples; the cloud backend takes
// {"field": ..., "operator": ..., "value": ...} objects.
type filterOp struct {
	triple string // ERPNext
	object string // cloud ERP
}

var (
	opEq  = filterOp{triple: "=", object: "eq"}
	opGte = filterOp{triple: ">=", object: "gte"}
	opLte = filterOp{triple: "<=", object: "lte"}
)

// Range/comparison suffixes recognized on standardized filter keys. A key
// like "transaction_date_from" filters on transaction_date with ">=".
var filterSuffixes = []struct {
	suffix string
	op     filterOp
}{
	{"_gte", opGte},
	{"_from", opGte},
	{"_lte", opLte},
	{"_to", opLte},
}

// convertFilters translates a standardized filter map into the native filter
// expression for system. Field names go through the mapping (unmapped fields
// pass through verbatim); "_range" keys with a two-element value expand into
// a ">=" and a "<=" clause pair. An empty input yields an empty expression.
func convertFilters(mapping FieldMapping, system string, filters map[string]any) []any {
	result := make([]any, 0, len(filters))

	for key, value := range filters {
		// An exact mapped field wins over suffix recognition: quotation_to
		// is a real field, not a <= filter on "quotation".
		if _, mapped := mapping[key]; mapped {
			result = append(result, clause(system, mapping.External(key), opEq, value))
			continue
		}

		field, op := splitFilterKey(key)

		if op == nil {
			if base, ok := strings.CutSuffix(key, "_range"); ok {
				if bounds, isRange := rangeBounds(value); isRange {
					ext := mapping.External(base)
					result = append(result,
						clause(system, ext, opGte, bounds[0]),
						clause(system, ext, opLte, bounds[1]))
					continue
				}
			}
			result = append(result, clause(system, mapping.External(key), opEq, value))
			continue
		}

		result = append(result, clause(system, mapping.External(field), *op, value))
	}

	return result
}

// splitFilterKey strips a recognized comparison suffix, returning the base
// field and its operator, or a nil operator for plain equality keys.
func splitFilterKey(key string) (string, *filterOp) {
	for _, s := range filterSuffixes {
		if base, ok := strings.CutSuffix(key, s.suffix); ok && base != "" {
			op := s.op
			return base, &op
		}
	}
	return key, nil
}

func rangeBounds(value any) ([2]any, bool) {
	if pair, ok := value.([]any); ok && len(pair) == 2 {
		return [2]any{pair[0], pair[1]}, true
	}
	return [2]any{}, false
}

// clause renders one filter clause in the backend's native shape.
func clause(system, field string, op filterOp, value any) any {
	if system == SystemCloudERP {
		return map[string]any{"field": field, "operator": op.object, "value": value}
	}
	return []any{field, op.triple, value}
}
