package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jonesrussell/north-cloud/films/internal/domain"
)

// searchResponse is the part of a _search response the shaper reads.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

type searchHit struct {
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
}

// bucket covers every bucket shape the films aggregations produce. The json
// tags match the aggregation names in internal/elasticsearch; absent
// sub-aggregations stay nil.
type bucket struct {
	Key         json.RawMessage `json:"key"`
	KeyAsString string          `json:"key_as_string"`
	DocCount    int64           `json:"doc_count"`
	VoteAverage *metricValue    `json:"vote_average"`
	TopFilm     *topHits        `json:"top_film"`
	PopularFilm *topHits        `json:"popular_film"`
	Jobs        *bucketList     `json:"jobs"`
}

type bucketList struct {
	Buckets []bucket `json:"buckets"`
}

type nestedResult struct {
	DocCount    int64       `json:"doc_count"`
	Departments *bucketList `json:"departments"`
}

type metricValue struct {
	Value *float64 `json:"value"`
}

type topHits struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

func decodeSearchResponse(r io.Reader) (*searchResponse, error) {
	var resp searchResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &resp, nil
}

// buckets returns the named multi-bucket aggregation, or nil when absent.
func (r *searchResponse) buckets(name string) ([]bucket, error) {
	raw, ok := r.Aggregations[name]
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var list bucketList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode %s aggregation: %w", name, err)
	}
	return list.Buckets, nil
}

// nested returns the named single-bucket nested aggregation, or nil when absent.
func (r *searchResponse) nested(name string) (*nestedResult, error) {
	raw, ok := r.Aggregations[name]
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var result nestedResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode %s aggregation: %w", name, err)
	}
	return &result, nil
}

// keyString renders a bucket key; string keys are unquoted, numeric keys kept verbatim.
func (b bucket) keyString() string {
	raw := bytes.TrimSpace(b.Key)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return strings.TrimSpace(string(raw))
}

// first returns the single representative hit of a top_hits result.
func (t *topHits) first() (searchHit, bool) {
	if t == nil || len(t.Hits.Hits) == 0 {
		return searchHit{}, false
	}
	return t.Hits.Hits[0], true
}

// ResultShaper flattens hits and buckets into client records.
type ResultShaper struct{}

// Films projects hits. Hits with an undecodable _source are rejected.
func (ResultShaper) Films(hits []searchHit) ([]domain.Film, error) {
	films := make([]domain.Film, 0, len(hits))
	for _, hit := range hits {
		var doc domain.FilmDocument
		if len(hit.Source) > 0 {
			if err := json.Unmarshal(hit.Source, &doc); err != nil {
				return nil, fmt.Errorf("decode film %s: %w", hit.ID, err)
			}
		}
		films = append(films, doc.ToFilm(hit.ID))
	}
	return films, nil
}

// Genres shapes the genre buckets in the order the backend sorted them.
func (s ResultShaper) Genres(buckets []bucket) []domain.GenreStats {
	stats := make([]domain.GenreStats, 0, len(buckets))
	for _, b := range buckets {
		stats = append(stats, domain.GenreStats{
			Genre:       b.keyString(),
			FilmCount:   b.DocCount,
			VoteAverage: roundAverage(b.VoteAverage),
			TopFilm:     topRated(b.TopFilm),
			PopularFilm: mostVoted(b.PopularFilm),
		})
	}
	return stats
}

// Directors shapes the director buckets.
func (s ResultShaper) Directors(buckets []bucket) []domain.DirectorStats {
	stats := make([]domain.DirectorStats, 0, len(buckets))
	for _, b := range buckets {
		stats = append(stats, domain.DirectorStats{
			Director:    b.keyString(),
			FilmCount:   b.DocCount,
			VoteAverage: roundAverage(b.VoteAverage),
			TopFilm:     topRated(b.TopFilm),
		})
	}
	return stats
}

// Crew shapes the department and job buckets of the single matched film.
func (ResultShaper) Crew(crew *nestedResult) []domain.CrewDepartment {
	departments := []domain.CrewDepartment{}
	if crew == nil || crew.Departments == nil {
		return departments
	}

	for _, dep := range crew.Departments.Buckets {
		entry := domain.CrewDepartment{
			Department: dep.keyString(),
			CrewCount:  dep.DocCount,
			Jobs:       []domain.JobCount{},
		}
		if dep.Jobs != nil {
			for _, job := range dep.Jobs.Buckets {
				entry.Jobs = append(entry.Jobs, domain.JobCount{
					Job:      job.keyString(),
					JobCount: job.DocCount,
				})
			}
		}
		departments = append(departments, entry)
	}
	return departments
}

// Years shapes date histogram buckets using the formatted key.
func (ResultShaper) Years(buckets []bucket) []domain.YearCount {
	years := make([]domain.YearCount, 0, len(buckets))
	for _, b := range buckets {
		year := b.KeyAsString
		if year == "" {
			year = b.keyString()
		}
		years = append(years, domain.YearCount{Year: year, FilmCount: b.DocCount})
	}
	return years
}

func topRated(t *topHits) *domain.TopRatedFilm {
	hit, ok := t.first()
	if !ok {
		return nil
	}
	var src struct {
		Title       string  `json:"title"`
		VoteAverage float64 `json:"vote_average"`
	}
	if err := json.Unmarshal(hit.Source, &src); err != nil {
		return nil
	}
	return &domain.TopRatedFilm{Title: src.Title, VoteAverage: src.VoteAverage}
}

func mostVoted(t *topHits) *domain.MostVotedFilm {
	hit, ok := t.first()
	if !ok {
		return nil
	}
	var src struct {
		Title     string  `json:"title"`
		VoteCount float64 `json:"vote_count"`
	}
	if err := json.Unmarshal(hit.Source, &src); err != nil {
		return nil
	}
	return &domain.MostVotedFilm{Title: src.Title, VoteCount: int(src.VoteCount)}
}

// roundAverage rounds to two decimals; a null average is 0.
func roundAverage(m *metricValue) float64 {
	if m == nil || m.Value == nil {
		return 0
	}
	const scale = 100
	return math.Round(*m.Value*scale) / scale
}
