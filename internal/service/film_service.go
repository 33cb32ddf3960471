// Package service runs the films queries and the bulk population job.
package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	infralogger "github.com/jonesrussell/north-cloud/films/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/films/internal/domain"
	"github.com/jonesrussell/north-cloud/films/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/films/internal/metrics"
	"github.com/jonesrussell/north-cloud/films/internal/query"
)

// Operation names used for spans, metrics and logs.
const (
	OpList      = "list"
	OpTopFilms  = "top_films"
	OpGenres    = "genres"
	OpDirectors = "directors"
	OpCrew      = "crew_analysis"
	OpYearly    = "yearly_histogram"
	OpSearch    = "search"
)

// FilmService answers every films query with one backend round trip.
type FilmService struct {
	backend FilmBackend
	builder *elasticsearch.QueryBuilder
	shaper  ResultShaper
	index   string
	metrics *metrics.Provider
	logger  infralogger.Logger
}

// NewFilmService creates a FilmService. provider may be nil.
func NewFilmService(
	backend FilmBackend,
	builder *elasticsearch.QueryBuilder,
	index string,
	provider *metrics.Provider,
	log infralogger.Logger,
) *FilmService {
	if log == nil {
		log = infralogger.NewNop()
	}
	return &FilmService{
		backend: backend,
		builder: builder,
		index:   index,
		metrics: provider,
		logger:  log,
	}
}

// List returns films matching the rating, runtime and release year filters.
func (s *FilmService) List(ctx context.Context, params domain.ListParams) (films []domain.Film, err error) {
	ctx, span := s.metrics.StartSpan(ctx, OpList)
	defer func() { metrics.EndSpan(span, err) }()

	resp, err := s.execute(ctx, OpList, s.builder.List(params))
	if err != nil {
		return nil, err
	}
	return s.shaper.Films(resp.Hits.Hits)
}

// TopFilms returns at most params.Count films by descending popularity.
func (s *FilmService) TopFilms(ctx context.Context, params domain.TopFilmsParams) (films []domain.Film, err error) {
	ctx, span := s.metrics.StartSpan(ctx, OpTopFilms,
		attribute.Int("films.count", params.Count),
		attribute.String("films.genre", params.Genre),
	)
	defer func() { metrics.EndSpan(span, err) }()

	resp, err := s.execute(ctx, OpTopFilms, s.builder.TopFilms(params))
	if err != nil {
		return nil, err
	}

	films, err = s.shaper.Films(resp.Hits.Hits)
	if err != nil {
		return nil, err
	}
	if len(films) > params.Count {
		films = films[:params.Count]
	}
	return films, nil
}

// GenreAnalysis returns per-genre statistics sorted by average rating.
func (s *FilmService) GenreAnalysis(ctx context.Context) (stats []domain.GenreStats, err error) {
	ctx, span := s.metrics.StartSpan(ctx, OpGenres)
	defer func() { metrics.EndSpan(span, err) }()

	resp, err := s.execute(ctx, OpGenres, s.builder.GenreAnalysis())
	if err != nil {
		return nil, err
	}
	buckets, err := resp.buckets(elasticsearch.AggGenres)
	if err != nil {
		return nil, err
	}
	return s.shaper.Genres(buckets), nil
}

// DirectorAnalysis returns per-director statistics.
func (s *FilmService) DirectorAnalysis(ctx context.Context) (stats []domain.DirectorStats, err error) {
	ctx, span := s.metrics.StartSpan(ctx, OpDirectors)
	defer func() { metrics.EndSpan(span, err) }()

	resp, err := s.execute(ctx, OpDirectors, s.builder.DirectorAnalysis())
	if err != nil {
		return nil, err
	}
	buckets, err := resp.buckets(elasticsearch.AggDirectors)
	if err != nil {
		return nil, err
	}
	return s.shaper.Directors(buckets), nil
}

// CrewAnalysis breaks down the crew of one film by department and job.
// It returns domain.ErrFilmNotFound when no document has the id.
func (s *FilmService) CrewAnalysis(ctx context.Context, id string) (departments []domain.CrewDepartment, err error) {
	ctx, span := s.metrics.StartSpan(ctx, OpCrew, attribute.String("films.id", id))
	defer func() { metrics.EndSpan(span, err) }()

	filmID, err := domain.ParseFilmID(id)
	if err != nil {
		return nil, err
	}

	resp, err := s.execute(ctx, OpCrew, s.builder.CrewAnalysis(filmID))
	if err != nil {
		return nil, err
	}

	// Empty aggregations do not distinguish a missing film from a film without crew.
	if resp.Hits.Total.Value == 0 {
		return nil, fmt.Errorf("film %s: %w", filmID, domain.ErrFilmNotFound)
	}

	crew, err := resp.nested(elasticsearch.AggCrew)
	if err != nil {
		return nil, err
	}
	return s.shaper.Crew(crew), nil
}

// YearlyHistogram counts films per release year, ascending.
func (s *FilmService) YearlyHistogram(ctx context.Context) (years []domain.YearCount, err error) {
	ctx, span := s.metrics.StartSpan(ctx, OpYearly)
	defer func() { metrics.EndSpan(span, err) }()

	resp, err := s.execute(ctx, OpYearly, s.builder.YearlyHistogram())
	if err != nil {
		return nil, err
	}
	buckets, err := resp.buckets(elasticsearch.AggFilmsPerYear)
	if err != nil {
		return nil, err
	}
	return s.shaper.Years(buckets), nil
}

// Search runs a paginated free-text search.
func (s *FilmService) Search(ctx context.Context, params domain.SearchParams) (films []domain.Film, err error) {
	ctx, span := s.metrics.StartSpan(ctx, OpSearch,
		attribute.Int("films.page", params.Page.Page),
		attribute.Int("films.per_page", params.PerPage),
	)
	defer func() { metrics.EndSpan(span, err) }()

	resp, err := s.execute(ctx, OpSearch, s.builder.Search(params))
	if err != nil {
		return nil, err
	}
	return s.shaper.Films(resp.Hits.Hits)
}

// HealthCheck checks that the cluster answers and is not red.
func (s *FilmService) HealthCheck(ctx context.Context) error {
	return s.backend.HealthCheck(ctx)
}

// execute sends req and decodes the response. Failures are logged and wrapped, never retried.
func (s *FilmService) execute(ctx context.Context, operation string, req query.Request) (*searchResponse, error) {
	body, err := req.Body()
	if err != nil {
		return nil, err
	}

	log := infralogger.FromContextOr(ctx, s.logger)
	start := time.Now()
	res, err := s.backend.Search(ctx, s.index, body)
	if err != nil {
		s.metrics.RecordQuery(operation, time.Since(start), err)
		log.Error("Elasticsearch query failed",
			infralogger.String("operation", operation),
			infralogger.String("index", s.index),
			infralogger.Error(err),
		)
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	resp, err := decodeSearchResponse(res.Body)
	s.metrics.RecordQuery(operation, time.Since(start), err)
	if err != nil {
		log.Error("Failed to parse search response",
			infralogger.String("operation", operation),
			infralogger.Error(err),
		)
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}

	log.Debug("Elasticsearch query completed",
		infralogger.String("operation", operation),
		infralogger.Int64("total_hits", resp.Hits.Total.Value),
		infralogger.Duration("duration", time.Since(start)),
	)
	return resp, nil
}
