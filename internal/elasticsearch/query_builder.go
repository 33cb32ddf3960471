package elasticsearch

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/films/internal/domain"
	"github.com/jonesrussell/north-cloud/films/internal/query"
)

const titleBoost = "^3"

// QueryBuilder turns validated parameters into search requests.
type QueryBuilder struct {
	genreBuckets    int
	directorBuckets int
}

// NewQueryBuilder creates a builder with the facet bucket sizes.
func NewQueryBuilder(genreBuckets, directorBuckets int) *QueryBuilder {
	return &QueryBuilder{
		genreBuckets:    genreBuckets,
		directorBuckets: directorBuckets,
	}
}

// ListFilter ANDs the rating, runtime and release year constraints.
func ListFilter(p domain.ListParams) query.Bool {
	var filters []query.Filter

	if p.RatingGTE != nil {
		filters = append(filters, query.Range{Field: FieldVoteAverage, GTE: *p.RatingGTE})
	}
	if p.RuntimeLTE != nil {
		filters = append(filters, query.Range{Field: FieldRuntime, LTE: *p.RuntimeLTE})
	}
	if p.ReleaseYearGTE != nil || p.ReleaseYearLTE != nil {
		years := query.Range{Field: FieldReleaseDate}
		if p.ReleaseYearGTE != nil {
			years.GTE = fmt.Sprintf("%04d-01-01", *p.ReleaseYearGTE)
		}
		if p.ReleaseYearLTE != nil {
			years.LTE = fmt.Sprintf("%04d-12-31", *p.ReleaseYearLTE)
		}
		filters = append(filters, years)
	}

	return query.And(filters...)
}

// SearchFilter ANDs the supplied free-text criteria. Genres match if any one matches.
func SearchFilter(p domain.SearchParams) query.Bool {
	var filters []query.Filter

	if p.Title != "" {
		filters = append(filters, query.MultiMatch{
			Query:  p.Title,
			Fields: []string{FieldTitle + titleBoost, FieldDescription},
		})
	}
	if len(p.Genres) > 0 {
		genres := make([]query.Filter, 0, len(p.Genres))
		for _, g := range p.Genres {
			genres = append(genres, query.Term{Field: FieldGenres, Value: g})
		}
		filters = append(filters, query.AnyOf(genres...))
	}
	if p.Cast != "" {
		filters = append(filters, query.Match{Field: FieldCast, Query: p.Cast})
	}
	if p.Director != "" {
		filters = append(filters, query.Match{Field: FieldDirector, Query: p.Director})
	}

	return query.And(filters...)
}

// List builds the filtered list request.
func (b *QueryBuilder) List(p domain.ListParams) query.Request {
	return query.Request{
		Query:  ListFilter(p),
		From:   p.From(),
		Size:   query.IntPtr(p.PerPage),
		Source: FilmFields,
	}
}

// TopFilms ranks by popularity, optionally within one genre. Equal scores
// are ordered by title.
func (b *QueryBuilder) TopFilms(p domain.TopFilmsParams) query.Request {
	var filters []query.Filter
	if p.Genre != "" {
		filters = append(filters, query.Term{Field: FieldGenres, Value: p.Genre})
	}

	return query.Request{
		Query:  query.And(filters...),
		Sort:   []query.Sort{query.PopularitySort(), query.ByField(FieldTitleKeyword, query.Asc)},
		Size:   query.IntPtr(p.Count),
		Source: FilmFields,
	}
}

// GenreAnalysis aggregates over all films without returning hits.
func (b *QueryBuilder) GenreAnalysis() query.Request {
	return query.Request{
		Aggs: GenreAggs(b.genreBuckets),
		Size: query.IntPtr(0),
	}
}

// DirectorAnalysis aggregates over all films without returning hits.
func (b *QueryBuilder) DirectorAnalysis() query.Request {
	return query.Request{
		Aggs: DirectorAggs(b.directorBuckets),
		Size: query.IntPtr(0),
	}
}

// CrewAnalysis restricts to one document id. Total hits tell whether it exists.
func (b *QueryBuilder) CrewAnalysis(id string) query.Request {
	return query.Request{
		Query: query.And(query.Term{Field: FieldID, Value: id}),
		Aggs:  CrewAggs(),
		Size:  query.IntPtr(0),
	}
}

// YearlyHistogram counts films per year.
func (b *QueryBuilder) YearlyHistogram() query.Request {
	return query.Request{
		Aggs: YearHistogramAggs(),
		Size: query.IntPtr(0),
	}
}

// Search builds a paginated free-text search.
func (b *QueryBuilder) Search(p domain.SearchParams) query.Request {
	return query.Request{
		Query:  SearchFilter(p),
		From:   p.From(),
		Size:   query.IntPtr(p.PerPage),
		Source: FilmFields,
	}
}
