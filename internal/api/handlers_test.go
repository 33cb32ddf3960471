package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	infragin "github.com/jonesrussell/north-cloud/films/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/films/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/films/internal/api"
	"github.com/jonesrussell/north-cloud/films/internal/domain"
	"github.com/jonesrussell/north-cloud/films/internal/metrics"
)

// MockFilmQueries is a testify mock of api.FilmQueries.
type MockFilmQueries struct {
	mock.Mock
}

func (m *MockFilmQueries) List(ctx context.Context, params domain.ListParams) ([]domain.Film, error) {
	args := m.Called(ctx, params)
	return filmsArg(args)
}

func (m *MockFilmQueries) TopFilms(ctx context.Context, params domain.TopFilmsParams) ([]domain.Film, error) {
	args := m.Called(ctx, params)
	return filmsArg(args)
}

func (m *MockFilmQueries) GenreAnalysis(ctx context.Context) ([]domain.GenreStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GenreStats), args.Error(1)
}

func (m *MockFilmQueries) DirectorAnalysis(ctx context.Context) ([]domain.DirectorStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DirectorStats), args.Error(1)
}

func (m *MockFilmQueries) CrewAnalysis(ctx context.Context, id string) ([]domain.CrewDepartment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CrewDepartment), args.Error(1)
}

func (m *MockFilmQueries) YearlyHistogram(ctx context.Context) ([]domain.YearCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.YearCount), args.Error(1)
}

func (m *MockFilmQueries) Search(ctx context.Context, params domain.SearchParams) ([]domain.Film, error) {
	args := m.Called(ctx, params)
	return filmsArg(args)
}

func filmsArg(args mock.Arguments) ([]domain.Film, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Film), args.Error(1)
}

var fixedNow = func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }

func setupRouter(t *testing.T, films *MockFilmQueries) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := api.NewHandler(films, domain.DefaultPageLimits(), infralogger.NewNop()).WithClock(fixedNow)
	router := gin.New()
	api.SetupServiceRoutes(router, handler, metrics.NewProvider())
	return router
}

func get(t *testing.T, router *gin.Engine, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestListFilms(t *testing.T) {
	films := new(MockFilmQueries)
	films.On("List", mock.Anything, mock.MatchedBy(func(p domain.ListParams) bool {
		return p.RatingGTE != nil && *p.RatingGTE == 7.5 && p.Page.Page == 2 && p.PerPage == 5
	})).Return([]domain.Film{{ID: "1", Title: "Heat", Genres: []string{}, Cast: []string{}}}, nil)

	w := get(t, setupRouter(t, films), "/films/?rating_gte=7.5&page=2&per_page=5")

	require.Equal(t, http.StatusOK, w.Code)
	var got []domain.Film
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Heat", got[0].Title)
	films.AssertExpectations(t)
}

func TestListFilms_EmptyIsArray(t *testing.T) {
	films := new(MockFilmQueries)
	films.On("List", mock.Anything, mock.Anything).Return([]domain.Film{}, nil)

	w := get(t, setupRouter(t, films), "/films/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListFilms_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantParam string
	}{
		{"rating not a number", "rating_gte=high", "rating_gte"},
		{"rating above 10", "rating_gte=11", "rating_gte"},
		{"future year", "release_year_gte=2030", "release_year_gte"},
		{"negative year", "release_year_lte=-5", "release_year_lte"},
		{"page zero", "page=0", "page"},
		{"per_page too large", "per_page=1000", "per_page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			films := new(MockFilmQueries)

			w := get(t, setupRouter(t, films), "/films/?"+tt.query)

			require.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, api.CodeValidation, resp.Code)
			assert.Equal(t, tt.wantParam, resp.Param)
			assert.NotEmpty(t, resp.Error)
			films.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
		})
	}
}

func TestTopFilms(t *testing.T) {
	films := new(MockFilmQueries)
	films.On("TopFilms", mock.Anything, domain.TopFilmsParams{Count: 3, Genre: "Drama"}).
		Return([]domain.Film{{ID: "1"}, {ID: "2"}, {ID: "3"}}, nil)

	w := get(t, setupRouter(t, films), "/top_films/?count=3&genre=Drama")

	require.Equal(t, http.StatusOK, w.Code)
	films.AssertExpectations(t)
}

func TestTopFilms_DefaultCount(t *testing.T) {
	films := new(MockFilmQueries)
	films.On("TopFilms", mock.Anything, domain.TopFilmsParams{Count: domain.DefaultTopFilmsCount}).
		Return([]domain.Film{}, nil)

	w := get(t, setupRouter(t, films), "/top_films/")

	require.Equal(t, http.StatusOK, w.Code)
	films.AssertExpectations(t)
}

func TestTopFilms_CountOutOfRange(t *testing.T) {
	for _, count := range []string{"0", "16", "-1"} {
		t.Run(count, func(t *testing.T) {
			w := get(t, setupRouter(t, new(MockFilmQueries)), "/top_films/?count="+count)

			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "count", decodeError(t, w).Param)
		})
	}
}

func TestGenreAnalysis(t *testing.T) {
	films := new(MockFilmQueries)
	films.On("GenreAnalysis", mock.Anything).Return([]domain.GenreStats{{
		Genre:       "Drama",
		FilmCount:   2,
		VoteAverage: 8.5,
		TopFilm:     &domain.TopRatedFilm{Title: "Best Drama", VoteAverage: 9.1},
	}}, nil)

	w := get(t, setupRouter(t, films), "/films/genres/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`[{"genre":"Drama","film_count":2,"vote_average":8.5,"top_film":{"title":"Best Drama","vote_average":9.1}}]`,
		w.Body.String())
}

func TestDirectorAnalysis_BackendError(t *testing.T) {
	films := new(MockFilmQueries)
	films.On("DirectorAnalysis", mock.Anything).
		Return(nil, fmt.Errorf("elasticsearch search failed: %w", errors.New("connection refused")))

	w := get(t, setupRouter(t, films), "/films/directors/")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, api.CodeBackend, resp.Code)
	assert.NotContains(t, resp.Error, "connection refused")
}

// fieldLogger records every message with the fields attached through With.
type fieldLogger struct {
	mu      *sync.Mutex
	base    []infralogger.Field
	entries *[]loggedEntry
}

type loggedEntry struct {
	msg    string
	fields map[string]string
}

func newFieldLogger() fieldLogger {
	return fieldLogger{mu: &sync.Mutex{}, entries: &[]loggedEntry{}}
}

func (l fieldLogger) log(msg string, fields []infralogger.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := loggedEntry{msg: msg, fields: map[string]string{}}
	for _, f := range append(append([]infralogger.Field{}, l.base...), fields...) {
		value := f.String
		if f.Interface != nil {
			value = fmt.Sprint(f.Interface)
		}
		entry.fields[f.Key] = value
	}
	*l.entries = append(*l.entries, entry)
}

func (l fieldLogger) Debug(msg string, f ...infralogger.Field) { l.log(msg, f) }
func (l fieldLogger) Info(msg string, f ...infralogger.Field)  { l.log(msg, f) }
func (l fieldLogger) Warn(msg string, f ...infralogger.Field)  { l.log(msg, f) }
func (l fieldLogger) Error(msg string, f ...infralogger.Field) { l.log(msg, f) }
func (l fieldLogger) Fatal(msg string, f ...infralogger.Field) { l.log(msg, f) }
func (l fieldLogger) Sync() error                              { return nil }

func (l fieldLogger) With(f ...infralogger.Field) infralogger.Logger {
	l.base = append(append([]infralogger.Field{}, l.base...), f...)
	return l
}

func (l fieldLogger) find(msg string) (loggedEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range *l.entries {
		if e.msg == msg {
			return e, true
		}
	}
	return loggedEntry{}, false
}

func TestBackendError_LoggedWithRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	films := new(MockFilmQueries)
	films.On("GenreAnalysis", mock.Anything).
		Return(nil, errors.New(`error searching index films: [400] {"error":{"type":"search_phase_execution_exception"}}`))

	log := newFieldLogger()
	handler := api.NewHandler(films, domain.DefaultPageLimits(), infralogger.NewNop()).WithClock(fixedNow)
	router := gin.New()
	router.Use(infragin.RequestIDLoggerMiddleware(log))
	api.SetupServiceRoutes(router, handler, nil)

	req := httptest.NewRequest(http.MethodGet, "/films/genres/", http.NoBody)
	req.Header.Set(infragin.RequestIDHeader, "req-films-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "search_phase_execution_exception")

	entry, ok := log.find("Films request failed")
	require.True(t, ok, "backend failure was not logged through the request logger")
	assert.Equal(t, "req-films-1", entry.fields[infragin.RequestIDKey])
	assert.Contains(t, entry.fields["error"], "search_phase_execution_exception")
}

func TestYearlyHistogram(t *testing.T) {
	films := new(MockFilmQueries)
	films.On("YearlyHistogram", mock.Anything).
		Return([]domain.YearCount{{Year: "1999", FilmCount: 2}}, nil)

	w := get(t, setupRouter(t, films), "/films/analysis/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"year":"1999","film_count":2}]`, w.Body.String())
}

func TestCrewAnalysis(t *testing.T) {
	films := new(MockFilmQueries)
	films.On("CrewAnalysis", mock.Anything, "27205").Return([]domain.CrewDepartment{{
		Department: "Directing",
		CrewCount:  1,
		Jobs:       []domain.JobCount{{Job: "Director", JobCount: 1}},
	}}, nil)

	w := get(t, setupRouter(t, films), "/films/27205/crew_analysis/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`[{"departments":"Directing","crew_count":1,"jobs":[{"job":"Director","job_count":1}]}]`,
		w.Body.String())
}

func TestCrewAnalysis_NotFound(t *testing.T) {
	films := new(MockFilmQueries)
	films.On("CrewAnalysis", mock.Anything, "42").
		Return(nil, fmt.Errorf("film 42: %w", domain.ErrFilmNotFound))

	w := get(t, setupRouter(t, films), "/films/42/crew_analysis/")

	require.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, api.CodeNotFound, resp.Code)
	assert.Equal(t, "Film not found", resp.Error)
}

func TestCrewAnalysis_InvalidID(t *testing.T) {
	films := new(MockFilmQueries)
	_, parseErr := domain.ParseFilmID("abc")
	films.On("CrewAnalysis", mock.Anything, "abc").Return(nil, parseErr)

	w := get(t, setupRouter(t, films), "/films/abc/crew_analysis/")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.CodeValidation, decodeError(t, w).Code)
}

func TestSearchFilms(t *testing.T) {
	films := new(MockFilmQueries)
	films.On("Search", mock.Anything, mock.MatchedBy(func(p domain.SearchParams) bool {
		return p.Title == "alien" &&
			len(p.Genres) == 2 && p.Genres[0] == "Horror" && p.Genres[1] == "Science Fiction" &&
			p.Page.Page == 1 && p.PerPage == domain.DefaultPerPage
	})).Return([]domain.Film{{ID: "348", Title: "Alien"}}, nil)

	w := get(t, setupRouter(t, films), "/search/?title=alien&genres=Horror,%20Science%20Fiction,")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"Alien"`))
	films.AssertExpectations(t)
}

func TestSearchFilms_ResultWindowExceeded(t *testing.T) {
	w := get(t, setupRouter(t, new(MockFilmQueries)), "/search/?page=200&per_page=100")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.CodeValidation, decodeError(t, w).Code)
}

func TestMetricsRoute(t *testing.T) {
	films := new(MockFilmQueries)
	films.On("YearlyHistogram", mock.Anything).Return([]domain.YearCount{}, nil)
	router := setupRouter(t, films)

	get(t, router, "/films/analysis/")
	w := get(t, router, "/metrics")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `films_http_requests_total{method="GET",route="/films/analysis/",status="200"} 1`)
}
