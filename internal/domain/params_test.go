package domain_test

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/films/internal/domain"
)

func fixedClock(year int) domain.Clock {
	return func() time.Time {
		return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
	}
}

func requireInvalidParam(t *testing.T, err error, param string) {
	t.Helper()

	var invalid *domain.InvalidParameterError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidParameterError", err)
	}
	if invalid.Param != param {
		t.Errorf("Param = %q, want %q", invalid.Param, param)
	}
	if invalid.Message == "" {
		t.Error("Message is empty")
	}
}

func TestParseListParams_Valid(t *testing.T) {
	values := url.Values{
		"rating_gte":       {"7.5"},
		"runtime_lte":      {"120"},
		"release_year_gte": {"1999"},
		"release_year_lte": {"2005"},
	}

	params, err := domain.ParseListParams(values, domain.DefaultPageLimits(), fixedClock(2024))
	if err != nil {
		t.Fatalf("ParseListParams() error = %v", err)
	}

	if params.RatingGTE == nil || *params.RatingGTE != 7.5 {
		t.Errorf("RatingGTE = %v, want 7.5", params.RatingGTE)
	}
	if params.RuntimeLTE == nil || *params.RuntimeLTE != 120 {
		t.Errorf("RuntimeLTE = %v, want 120", params.RuntimeLTE)
	}
	if params.ReleaseYearGTE == nil || *params.ReleaseYearGTE != 1999 {
		t.Errorf("ReleaseYearGTE = %v, want 1999", params.ReleaseYearGTE)
	}
	if params.ReleaseYearLTE == nil || *params.ReleaseYearLTE != 2005 {
		t.Errorf("ReleaseYearLTE = %v, want 2005", params.ReleaseYearLTE)
	}
	if params.Page.Page != 1 || params.PerPage != domain.DefaultPerPage {
		t.Errorf("page = %d/%d, want 1/%d", params.Page.Page, params.PerPage, domain.DefaultPerPage)
	}
}

func TestParseListParams_Empty(t *testing.T) {
	params, err := domain.ParseListParams(url.Values{}, domain.DefaultPageLimits(), fixedClock(2024))
	if err != nil {
		t.Fatalf("ParseListParams() error = %v", err)
	}
	if params.RatingGTE != nil || params.RuntimeLTE != nil || params.ReleaseYearGTE != nil || params.ReleaseYearLTE != nil {
		t.Errorf("expected no constraints, got %+v", params)
	}
}

func TestParseListParams_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		wantParam string
	}{
		{"rating not a number", url.Values{"rating_gte": {"abc"}}, "rating_gte"},
		{"rating above 10", url.Values{"rating_gte": {"10.5"}}, "rating_gte"},
		{"rating below 0", url.Values{"rating_gte": {"-1"}}, "rating_gte"},
		{"rating NaN", url.Values{"rating_gte": {"NaN"}}, "rating_gte"},
		{"runtime not a number", url.Values{"runtime_lte": {"long"}}, "runtime_lte"},
		{"year not a number", url.Values{"release_year_gte": {"199x"}}, "release_year_gte"},
		{"year in the future", url.Values{"release_year_gte": {"2025"}}, "release_year_gte"},
		{"upper year not a number", url.Values{"release_year_lte": {"2000.5"}}, "release_year_lte"},
		{"negative upper year", url.Values{"release_year_lte": {"-5"}}, "release_year_lte"},
		{"five digit upper year", url.Values{"release_year_lte": {"10000"}}, "release_year_lte"},
		{"negative lower year", url.Values{"release_year_gte": {"-1"}}, "release_year_gte"},
		{"page zero", url.Values{"page": {"0"}}, "page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseListParams(tt.values, domain.DefaultPageLimits(), fixedClock(2024))
			requireInvalidParam(t, err, tt.wantParam)
		})
	}
}

func TestParseListParams_BoundaryRatings(t *testing.T) {
	for _, rating := range []string{"0", "10", "0.0", "9.99"} {
		t.Run(rating, func(t *testing.T) {
			if _, err := domain.ParseListParams(url.Values{"rating_gte": {rating}}, domain.DefaultPageLimits(), fixedClock(2024)); err != nil {
				t.Errorf("ParseListParams(rating_gte=%s) error = %v", rating, err)
			}
		})
	}
}

func TestParseListParams_CurrentYearAllowed(t *testing.T) {
	if _, err := domain.ParseListParams(url.Values{"release_year_gte": {"2024"}}, domain.DefaultPageLimits(), fixedClock(2024)); err != nil {
		t.Errorf("current year rejected: %v", err)
	}
}

func TestParseListParams_BoundaryYears(t *testing.T) {
	for _, year := range []string{"0", "9999"} {
		t.Run(year, func(t *testing.T) {
			if _, err := domain.ParseListParams(url.Values{"release_year_lte": {year}}, domain.DefaultPageLimits(), fixedClock(2024)); err != nil {
				t.Errorf("ParseListParams(release_year_lte=%s) error = %v", year, err)
			}
		})
	}
}

func TestParseTopFilmsParams(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		wantCount int
		wantGenre string
		wantParam string
	}{
		{name: "default count", values: url.Values{}, wantCount: domain.DefaultTopFilmsCount},
		{name: "explicit count and genre", values: url.Values{"count": {"15"}, "genre": {"Drama"}}, wantCount: 15, wantGenre: "Drama"},
		{name: "minimum count", values: url.Values{"count": {"1"}}, wantCount: 1},
		{name: "count zero", values: url.Values{"count": {"0"}}, wantParam: "count"},
		{name: "count above max", values: url.Values{"count": {"16"}}, wantParam: "count"},
		{name: "count not a number", values: url.Values{"count": {"many"}}, wantParam: "count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := domain.ParseTopFilmsParams(tt.values)
			if tt.wantParam != "" {
				requireInvalidParam(t, err, tt.wantParam)
				return
			}
			if err != nil {
				t.Fatalf("ParseTopFilmsParams() error = %v", err)
			}
			if params.Count != tt.wantCount {
				t.Errorf("Count = %d, want %d", params.Count, tt.wantCount)
			}
			if params.Genre != tt.wantGenre {
				t.Errorf("Genre = %q, want %q", params.Genre, tt.wantGenre)
			}
		})
	}
}

func TestParseSearchParams(t *testing.T) {
	values := url.Values{
		"title":    {" matrix "},
		"genres":   {"Action, Comedy,,  "},
		"cast":     {"Keanu"},
		"director": {"Wachowski"},
		"page":     {"2"},
		"per_page": {"10"},
	}

	params, err := domain.ParseSearchParams(values, domain.DefaultPageLimits())
	if err != nil {
		t.Fatalf("ParseSearchParams() error = %v", err)
	}

	if params.Title != "matrix" {
		t.Errorf("Title = %q, want matrix", params.Title)
	}
	if len(params.Genres) != 2 || params.Genres[0] != "Action" || params.Genres[1] != "Comedy" {
		t.Errorf("Genres = %v, want [Action Comedy]", params.Genres)
	}
	if got := params.From(); got != 10 {
		t.Errorf("From() = %d, want 10", got)
	}
}

func TestParseSearchParams_PageLimits(t *testing.T) {
	limits := domain.PageLimits{DefaultPerPage: 10, MaxPerPage: 50}

	tests := []struct {
		name      string
		values    url.Values
		wantParam string
	}{
		{"per_page above max", url.Values{"per_page": {"51"}}, "per_page"},
		{"per_page zero", url.Values{"per_page": {"0"}}, "per_page"},
		{"window exceeded", url.Values{"page": {"201"}, "per_page": {"50"}}, "page"},
		{"page not a number", url.Values{"page": {"two"}}, "page"},
		{"negative page", url.Values{"page": {"-1"}}, "page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseSearchParams(tt.values, limits)
			requireInvalidParam(t, err, tt.wantParam)
		})
	}

	params, err := domain.ParseSearchParams(url.Values{"page": {"200"}, "per_page": {"50"}}, limits)
	if err != nil {
		t.Fatalf("last page inside window rejected: %v", err)
	}
	if params.From() != 9950 {
		t.Errorf("From() = %d, want 9950", params.From())
	}
}

func TestParseFilmID(t *testing.T) {
	if id, err := domain.ParseFilmID(" 603 "); err != nil || id != "603" {
		t.Errorf("ParseFilmID(603) = %q, %v", id, err)
	}
	for _, raw := range []string{"", "abc", "12a", "1.5"} {
		_, err := domain.ParseFilmID(raw)
		requireInvalidParam(t, err, "id")
	}
}

func TestSplitGenres(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{" , ", nil},
		{"Drama", []string{"Drama"}},
		{"Action, Comedy", []string{"Action", "Comedy"}},
		{"Science Fiction ,Horror,", []string{"Science Fiction", "Horror"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := domain.SplitGenres(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitGenres(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SplitGenres(%q)[%d] = %q, want %q", tt.raw, i, got[i], tt.want[i])
				}
			}
		})
	}
}
