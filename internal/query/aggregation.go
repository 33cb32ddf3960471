package query

// Aggregation is a node in an aggregation tree.
type Aggregation interface {
	Source() map[string]any
}

// Aggs names sibling aggregations.
type Aggs map[string]Aggregation

// Source renders each named aggregation.
func (a Aggs) Source() map[string]any {
	out := make(map[string]any, len(a))
	for name, agg := range a {
		out[name] = agg.Source()
	}
	return out
}

func withSubAggs(body map[string]any, sub Aggs) map[string]any {
	if len(sub) > 0 {
		body["aggs"] = sub.Source()
	}
	return body
}

// TermsAgg buckets by the values of Field. Size 0 leaves the backend default.
type TermsAgg struct {
	Field string
	Size  int
	Aggs  Aggs
}

func (t TermsAgg) Source() map[string]any {
	terms := map[string]any{"field": t.Field}
	if t.Size > 0 {
		terms["size"] = t.Size
	}
	return withSubAggs(map[string]any{"terms": terms}, t.Aggs)
}

// AvgAgg averages a numeric field.
type AvgAgg struct {
	Field string
}

func (a AvgAgg) Source() map[string]any {
	return map[string]any{"avg": map[string]any{"field": a.Field}}
}

// TopHitsAgg returns the first Size documents of a bucket by Sort, projecting Includes.
type TopHitsAgg struct {
	Size     int
	Sort     []Sort
	Includes []string
}

func (t TopHitsAgg) Source() map[string]any {
	body := map[string]any{"size": t.Size}
	if len(t.Sort) > 0 {
		body["sort"] = sortSources(t.Sort)
	}
	if len(t.Includes) > 0 {
		body["_source"] = map[string]any{"includes": t.Includes}
	}
	return map[string]any{"top_hits": body}
}

// NestedAgg steps into a nested object path.
type NestedAgg struct {
	Path string
	Aggs Aggs
}

func (n NestedAgg) Source() map[string]any {
	return withSubAggs(map[string]any{"nested": map[string]any{"path": n.Path}}, n.Aggs)
}

// DateHistogramAgg buckets a date field by calendar interval.
type DateHistogramAgg struct {
	Field            string
	CalendarInterval string
	Format           string
	MinDocCount      int
	Aggs             Aggs
}

func (d DateHistogramAgg) Source() map[string]any {
	body := map[string]any{
		"field":             d.Field,
		"calendar_interval": d.CalendarInterval,
		"min_doc_count":     d.MinDocCount,
	}
	if d.Format != "" {
		body["format"] = d.Format
	}
	return withSubAggs(map[string]any{"date_histogram": body}, d.Aggs)
}

// BucketSortAgg is a pipeline aggregation that reorders the parent's buckets.
type BucketSortAgg struct {
	Sort []Sort
}

func (b BucketSortAgg) Source() map[string]any {
	return map[string]any{"bucket_sort": map[string]any{"sort": sortSources(b.Sort)}}
}
