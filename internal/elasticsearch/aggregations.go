package elasticsearch

import "github.com/jonesrussell/north-cloud/films/internal/query"

// Aggregation names shared with the result shaper.
const (
	AggGenres       = "genres"
	AggDirectors    = "directors"
	AggAvgRating    = "vote_average"
	AggTopFilm      = "top_film"
	AggPopularFilm  = "popular_film"
	AggSortByAvg    = "sort_by_avg"
	AggCrew         = "crew"
	AggDepartments  = "departments"
	AggJobs         = "jobs"
	AggFilmsPerYear = "films_per_year"
)

// TopRatedFilmAgg picks the highest-rated film of a bucket. Ties go to the
// alphabetically first title.
func TopRatedFilmAgg() query.TopHitsAgg {
	return query.TopHitsAgg{
		Size: 1,
		Sort: []query.Sort{
			query.ByField(FieldVoteAverage, query.Desc),
			query.ByField(FieldTitleKeyword, query.Asc),
		},
		Includes: []string{FieldTitle, FieldVoteAverage},
	}
}

// MostVotedFilmAgg picks the most-voted film of a bucket, same tie-break.
func MostVotedFilmAgg() query.TopHitsAgg {
	return query.TopHitsAgg{
		Size: 1,
		Sort: []query.Sort{
			query.ByField(FieldVoteCount, query.Desc),
			query.ByField(FieldTitleKeyword, query.Asc),
		},
		Includes: []string{FieldTitle, FieldVoteCount},
	}
}

// GenreAggs buckets by genre, ordered by average rating.
func GenreAggs(size int) query.Aggs {
	return query.Aggs{
		AggGenres: query.TermsAgg{
			Field: FieldGenres,
			Size:  size,
			Aggs: query.Aggs{
				AggAvgRating:   query.AvgAgg{Field: FieldVoteAverage},
				AggTopFilm:     TopRatedFilmAgg(),
				AggPopularFilm: MostVotedFilmAgg(),
				AggSortByAvg: query.BucketSortAgg{
					Sort: []query.Sort{query.ByField(AggAvgRating, query.Desc)},
				},
			},
		},
	}
}

// DirectorAggs buckets by exact director name in backend order (doc count).
func DirectorAggs(size int) query.Aggs {
	return query.Aggs{
		AggDirectors: query.TermsAgg{
			Field: FieldDirectorKeyword,
			Size:  size,
			Aggs: query.Aggs{
				AggAvgRating: query.AvgAgg{Field: FieldVoteAverage},
				AggTopFilm:   TopRatedFilmAgg(),
			},
		},
	}
}

// CrewAggs walks the nested crew by department, then job. The query has
// already narrowed to one document, so the nested aggregation sits at the top
// level and does not depend on any field of the film itself.
func CrewAggs() query.Aggs {
	return query.Aggs{
		AggCrew: query.NestedAgg{
			Path: FieldCrew,
			Aggs: query.Aggs{
				AggDepartments: query.TermsAgg{
					Field: FieldCrewDepartment,
					Aggs: query.Aggs{
						AggJobs: query.TermsAgg{Field: FieldCrewJob},
					},
				},
			},
		},
	}
}

// YearHistogramAggs counts films per release year, skipping empty years.
func YearHistogramAggs() query.Aggs {
	return query.Aggs{
		AggFilmsPerYear: query.DateHistogramAgg{
			Field:            FieldReleaseDate,
			CalendarInterval: "year",
			Format:           "yyyy",
			MinDocCount:      1,
		},
	}
}
