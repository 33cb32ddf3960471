// Package query models the subset of the Elasticsearch query DSL the films
// service emits. Filters, aggregations and sorts are plain values; Source and
// Body are the only places that know the JSON shape.
package query

// Filter is a query clause. The concrete types are the leaves below plus Bool.
type Filter interface {
	Source() map[string]any
	isFilter()
}

// Range bounds a field. Nil bounds are omitted.
type Range struct {
	Field string
	GTE   any
	LTE   any
}

func (Range) isFilter() {}

// Source renders {"range": {field: {gte, lte}}}.
func (r Range) Source() map[string]any {
	bounds := map[string]any{}
	if r.GTE != nil {
		bounds["gte"] = r.GTE
	}
	if r.LTE != nil {
		bounds["lte"] = r.LTE
	}
	return map[string]any{"range": map[string]any{r.Field: bounds}}
}

// Term is an exact match on a keyword field.
type Term struct {
	Field string
	Value any
}

func (Term) isFilter() {}

func (t Term) Source() map[string]any {
	return map[string]any{"term": map[string]any{t.Field: t.Value}}
}

// Match is an analyzed full-text match.
type Match struct {
	Field string
	Query string
}

func (Match) isFilter() {}

func (m Match) Source() map[string]any {
	return map[string]any{"match": map[string]any{m.Field: m.Query}}
}

// MultiMatch runs Query against several fields; a field may carry a ^boost suffix.
type MultiMatch struct {
	Query  string
	Fields []string
}

func (MultiMatch) isFilter() {}

func (m MultiMatch) Source() map[string]any {
	return map[string]any{"multi_match": map[string]any{
		"query":  m.Query,
		"fields": m.Fields,
	}}
}

// Bool combines clauses. An empty Bool matches every document.
type Bool struct {
	Must               []Filter
	Should             []Filter
	MinimumShouldMatch int
}

func (Bool) isFilter() {}

// Source always renders must, so an empty Bool serializes as {"bool":{"must":[]}}.
func (b Bool) Source() map[string]any {
	body := map[string]any{"must": sources(b.Must)}
	if len(b.Should) > 0 {
		body["should"] = sources(b.Should)
		if b.MinimumShouldMatch > 0 {
			body["minimum_should_match"] = b.MinimumShouldMatch
		}
	}
	return map[string]any{"bool": body}
}

// And wraps filters in a bool/must.
func And(filters ...Filter) Bool {
	return Bool{Must: filters}
}

// AnyOf matches documents satisfying at least one filter.
func AnyOf(filters ...Filter) Bool {
	return Bool{Should: filters, MinimumShouldMatch: 1}
}

func sources(filters []Filter) []map[string]any {
	out := make([]map[string]any, 0, len(filters))
	for _, f := range filters {
		out = append(out, f.Source())
	}
	return out
}
