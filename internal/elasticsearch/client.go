// Package elasticsearch adapts the go-elasticsearch client to the films index:
// search, bulk writes, index administration and the query builders.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ErrIndexExists is returned by CreateIndex when the index is already present.
var ErrIndexExists = errors.New("index already exists")

// ErrIndexNotFound is returned by DeleteIndex when there is nothing to delete.
var ErrIndexNotFound = errors.New("index not found")

// Client wraps a long-lived *es.Client. It is safe for concurrent use.
type Client struct {
	esClient      *es.Client
	searchTimeout time.Duration
}

// NewClient wraps esClient. searchTimeout is sent as the _search timeout; zero omits it.
func NewClient(esClient *es.Client, searchTimeout time.Duration) *Client {
	return &Client{
		esClient:      esClient,
		searchTimeout: searchTimeout,
	}
}

// Search runs a _search against index. On success the caller owns the response body.
func (c *Client) Search(ctx context.Context, index string, body io.Reader) (*esapi.Response, error) {
	opts := []func(*esapi.SearchRequest){
		c.esClient.Search.WithContext(ctx),
		c.esClient.Search.WithIndex(index),
		c.esClient.Search.WithBody(body),
		c.esClient.Search.WithTrackTotalHits(true),
	}
	if c.searchTimeout > 0 {
		opts = append(opts, c.esClient.Search.WithTimeout(c.searchTimeout))
	}

	res, err := c.esClient.Search(opts...)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	if res.IsError() {
		defer func() {
			_ = res.Body.Close()
		}()
		errBody, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search returned error [%d]: %s", res.StatusCode, string(errBody))
	}

	return res, nil
}

// BulkFailure is one rejected item of a _bulk request.
type BulkFailure struct {
	ID     string
	Status int
	Reason string
}

// BulkResult summarizes a _bulk response.
type BulkResult struct {
	Indexed  int
	Failures []BulkFailure
}

type bulkResponse struct {
	Errors bool                         `json:"errors"`
	Items  []map[string]bulkItemOutcome `json:"items"`
}

type bulkItemOutcome struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

// Bulk sends an NDJSON _bulk body. Per-item failures are reported in the
// result, not as an error.
func (c *Client) Bulk(ctx context.Context, body []byte) (*BulkResult, error) {
	res, err := c.esClient.Bulk(
		bytes.NewReader(body),
		c.esClient.Bulk.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("bulk request failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return nil, fmt.Errorf("bulk indexing error: %s", res.String())
	}

	return decodeBulkResponse(res.Body)
}

func decodeBulkResponse(r io.Reader) (*BulkResult, error) {
	var parsed bulkResponse
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode bulk response: %w", err)
	}

	result := &BulkResult{}
	for _, item := range parsed.Items {
		for _, outcome := range item {
			if outcome.Error == nil && outcome.Status < http.StatusBadRequest {
				result.Indexed++
				continue
			}
			failure := BulkFailure{ID: outcome.ID, Status: outcome.Status}
			if outcome.Error != nil {
				failure.Reason = outcome.Error.Type + ": " + outcome.Error.Reason
			}
			result.Failures = append(result.Failures, failure)
		}
	}
	return result, nil
}

// Refresh makes recent writes to index visible to search.
func (c *Client) Refresh(ctx context.Context, index string) error {
	res, err := c.esClient.Indices.Refresh(
		c.esClient.Indices.Refresh.WithIndex(index),
		c.esClient.Indices.Refresh.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("refresh request failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return fmt.Errorf("error refreshing index %s: %s", index, res.String())
	}
	return nil
}

// CreateIndex creates index with mapping, failing with ErrIndexExists if present.
func (c *Client) CreateIndex(ctx context.Context, index string, mapping any) error {
	exists, err := c.IndexExists(ctx, index)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("create %s: %w", index, ErrIndexExists)
	}

	var body io.Reader
	if mapping != nil {
		data, marshalErr := json.Marshal(mapping)
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal mapping: %w", marshalErr)
		}
		body = bytes.NewReader(data)
	}

	res, err := c.esClient.Indices.Create(
		index,
		c.esClient.Indices.Create.WithBody(body),
		c.esClient.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		errBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf("error creating index %s: %s", index, string(errBody))
	}
	return nil
}

// EnsureIndex creates index when missing and reports whether it did.
func (c *Client) EnsureIndex(ctx context.Context, index string, mapping any) (bool, error) {
	exists, err := c.IndexExists(ctx, index)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if err = c.CreateIndex(ctx, index, mapping); err != nil {
		// Lost a race with another creator.
		if errors.Is(err, ErrIndexExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// IndexExists reports whether index exists.
func (c *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	res, err := c.esClient.Indices.Exists(
		[]string{index},
		c.esClient.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check index existence: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.IsError() {
		return false, fmt.Errorf("error checking index existence: %s", res.String())
	}
	return true, nil
}

// DeleteIndex removes index, returning ErrIndexNotFound when it does not exist.
func (c *Client) DeleteIndex(ctx context.Context, index string) error {
	res, err := c.esClient.Indices.Delete(
		[]string{index},
		c.esClient.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("delete %s: %w", index, ErrIndexNotFound)
	}
	if res.IsError() {
		return fmt.Errorf("error deleting index %s: %s", index, res.String())
	}
	return nil
}

// HealthCheck fails when the cluster is unreachable or red.
func (c *Client) HealthCheck(ctx context.Context) error {
	res, err := c.esClient.Cluster.Health(
		c.esClient.Cluster.Health.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("cluster unhealthy [%d]: %s", res.StatusCode, string(body))
	}

	var health struct {
		Status string `json:"status"`
	}
	if err = json.NewDecoder(res.Body).Decode(&health); err != nil {
		return fmt.Errorf("decode cluster health: %w", err)
	}
	if health.Status == "red" {
		return errors.New("cluster status is red")
	}
	return nil
}
