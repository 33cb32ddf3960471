package query

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Sort orders by a field, or by a script when Script is set.
type Sort struct {
	Field  string
	Order  Order
	Script *Script
}

// Script is a painless script sort.
type Script struct {
	Source string
	// Type is the script result type; "number" when empty.
	Type string
}

// ByField sorts on field in order.
func ByField(field string, order Order) Sort {
	return Sort{Field: field, Order: order}
}

func (s Sort) source() map[string]any {
	if s.Script != nil {
		typ := s.Script.Type
		if typ == "" {
			typ = "number"
		}
		return map[string]any{"_script": map[string]any{
			"type":   typ,
			"script": map[string]any{"source": s.Script.Source},
			"order":  s.Order,
		}}
	}
	return map[string]any{s.Field: map[string]any{"order": s.Order}}
}

func sortSources(sorts []Sort) []map[string]any {
	out := make([]map[string]any, 0, len(sorts))
	for _, s := range sorts {
		out = append(out, s.source())
	}
	return out
}
