package service

import (
	"context"
	"io"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/jonesrussell/north-cloud/films/internal/elasticsearch"
)

// FilmSearcher runs a _search. *elasticsearch.Client satisfies it.
type FilmSearcher interface {
	Search(ctx context.Context, index string, body io.Reader) (*esapi.Response, error)
}

// FilmBackend is the read side used by FilmService.
type FilmBackend interface {
	FilmSearcher
	HealthCheck(ctx context.Context) error
}

// BulkIndexer is the write side used by IngestService.
type BulkIndexer interface {
	EnsureIndex(ctx context.Context, index string, mapping any) (bool, error)
	Bulk(ctx context.Context, body []byte) (*elasticsearch.BulkResult, error)
	Refresh(ctx context.Context, index string) error
}
