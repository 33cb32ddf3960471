package query

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Request is a complete _search body.
type Request struct {
	Query Filter
	Aggs  Aggs
	Sort  []Sort
	From  int
	// Size is the hit count. Nil leaves the backend default; 0 returns no hits.
	Size   *int
	Source []string
}

// Map renders the request as the Elasticsearch JSON DSL.
func (r Request) Map() map[string]any {
	body := map[string]any{}

	q := r.Query
	if q == nil {
		q = Bool{}
	}
	body["query"] = q.Source()

	if len(r.Aggs) > 0 {
		body["aggs"] = r.Aggs.Source()
	}
	if len(r.Sort) > 0 {
		body["sort"] = sortSources(r.Sort)
	}
	if r.From > 0 {
		body["from"] = r.From
	}
	if r.Size != nil {
		body["size"] = *r.Size
	}
	if len(r.Source) > 0 {
		body["_source"] = r.Source
	}
	return body
}

// Body returns the JSON-encoded request.
func (r Request) Body() (*bytes.Reader, error) {
	data, err := json.Marshal(r.Map())
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}
	return bytes.NewReader(data), nil
}

// IntPtr returns a pointer to n, for Request.Size.
func IntPtr(n int) *int {
	return &n
}
