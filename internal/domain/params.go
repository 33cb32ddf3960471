package domain

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// MaxResultWindow is the backend's index.max_result_window default.
	MaxResultWindow = 10000

	DefaultTopFilmsCount = 5
	MaxTopFilmsCount     = 15

	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100

	minRating = 0
	maxRating = 10

	// Release years must render as four-digit yyyy dates.
	minYear = 0
	maxYear = 9999
)

// Clock supplies the current time, used for the release year upper limit.
type Clock func() time.Time

// PageLimits bounds pagination.
type PageLimits struct {
	DefaultPerPage int
	MaxPerPage     int
}

// DefaultPageLimits returns 10 per page with a cap of 100.
func DefaultPageLimits() PageLimits {
	return PageLimits{DefaultPerPage: DefaultPerPage, MaxPerPage: MaxPerPage}
}

// Page is a 1-indexed result page.
type Page struct {
	Page    int `param:"page" validate:"gte=1"`
	PerPage int `param:"per_page" validate:"gte=1"`
}

// From is the zero-based offset of the first hit on the page.
func (p Page) From() int {
	return (p.Page - 1) * p.PerPage
}

// ListParams filters the film list. Nil fields are not constraints.
type ListParams struct {
	RatingGTE      *float64 `param:"rating_gte" validate:"omitempty,gte=0,lte=10"`
	RuntimeLTE     *float64 `param:"runtime_lte"`
	ReleaseYearGTE *int     `param:"release_year_gte" validate:"omitempty,gte=0,lte=9999"`
	ReleaseYearLTE *int     `param:"release_year_lte" validate:"omitempty,gte=0,lte=9999"`
	Page
}

// TopFilmsParams selects the most popular films, optionally within a genre.
type TopFilmsParams struct {
	Count int    `param:"count" validate:"gte=1,lte=15"`
	Genre string `param:"genre"`
}

// SearchParams is a free-text search. Empty fields are not constraints.
type SearchParams struct {
	Title    string
	Genres   []string
	Cast     string
	Director string
	Page
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("param"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// ParseListParams reads the list filters from query values.
func ParseListParams(values url.Values, limits PageLimits, now Clock) (ListParams, error) {
	var (
		params ListParams
		err    error
	)

	if params.RatingGTE, err = optionalFloat(values, "rating_gte", "rating must be a number"); err != nil {
		return ListParams{}, err
	}
	if params.RuntimeLTE, err = optionalFloat(values, "runtime_lte", "runtime must be a number"); err != nil {
		return ListParams{}, err
	}
	if params.ReleaseYearGTE, err = optionalInt(values, "release_year_gte", "year must be a number"); err != nil {
		return ListParams{}, err
	}
	if params.ReleaseYearLTE, err = optionalInt(values, "release_year_lte", "year must be a number"); err != nil {
		return ListParams{}, err
	}
	if params.Page, err = parsePage(values, limits); err != nil {
		return ListParams{}, err
	}

	if err = validateStruct(params); err != nil {
		return ListParams{}, err
	}

	if params.ReleaseYearGTE != nil {
		currentYear := now().Year()
		if *params.ReleaseYearGTE > currentYear {
			return ListParams{}, invalidParam("release_year_gte",
				"year must not be in the future, current year is %d", currentYear)
		}
	}

	return params, nil
}

// ParseTopFilmsParams reads count (default 5, 1 to 15) and genre.
func ParseTopFilmsParams(values url.Values) (TopFilmsParams, error) {
	params := TopFilmsParams{
		Count: DefaultTopFilmsCount,
		Genre: strings.TrimSpace(values.Get("genre")),
	}

	count, err := optionalInt(values, "count", "count must be a number")
	if err != nil {
		return TopFilmsParams{}, err
	}
	if count != nil {
		params.Count = *count
	}

	if err = validateStruct(params); err != nil {
		return TopFilmsParams{}, err
	}
	return params, nil
}

// ParseSearchParams reads the search criteria. genres is a comma-separated list.
func ParseSearchParams(values url.Values, limits PageLimits) (SearchParams, error) {
	params := SearchParams{
		Title:    strings.TrimSpace(values.Get("title")),
		Genres:   SplitGenres(values.Get("genres")),
		Cast:     strings.TrimSpace(values.Get("cast")),
		Director: strings.TrimSpace(values.Get("director")),
	}

	page, err := parsePage(values, limits)
	if err != nil {
		return SearchParams{}, err
	}
	params.Page = page

	return params, nil
}

// ParseFilmID checks that a film id is an integer document id.
func ParseFilmID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return "", invalidParam("id", "film id must be an integer")
	}
	return id, nil
}

// SplitGenres splits on commas, trims and drops empty entries.
func SplitGenres(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var genres []string
	for _, g := range strings.Split(raw, ",") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

func parsePage(values url.Values, limits PageLimits) (Page, error) {
	if limits.DefaultPerPage <= 0 {
		limits.DefaultPerPage = DefaultPerPage
	}
	if limits.MaxPerPage <= 0 {
		limits.MaxPerPage = MaxPerPage
	}

	page := Page{Page: DefaultPage, PerPage: limits.DefaultPerPage}

	p, err := optionalInt(values, "page", "page must be a number")
	if err != nil {
		return Page{}, err
	}
	if p != nil {
		page.Page = *p
	}

	pp, err := optionalInt(values, "per_page", "per_page must be a number")
	if err != nil {
		return Page{}, err
	}
	if pp != nil {
		page.PerPage = *pp
	}

	if err = validateStruct(page); err != nil {
		return Page{}, err
	}
	if page.PerPage > limits.MaxPerPage {
		return Page{}, invalidParam("per_page", "per_page must not exceed %d", limits.MaxPerPage)
	}
	if page.Page > MaxResultWindow/page.PerPage {
		return Page{}, invalidParam("page", "page * per_page must not exceed %d", MaxResultWindow)
	}
	return page, nil
}

func optionalFloat(values url.Values, key, message string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil //nolint:nilnil // absent parameter
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, invalidParam(key, "%s", message)
	}
	return &f, nil
}

func optionalInt(values url.Values, key, message string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil //nolint:nilnil // absent parameter
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalidParam(key, "%s", message)
	}
	return &n, nil
}

// validateStruct runs the struct's validate tags and converts the first
// failure into an InvalidParameterError named after the query parameter.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate parameters: %w", err)
	}

	fe := fieldErrs[0]
	return invalidParam(fe.Field(), "%s", rangeMessage(fe))
}

func rangeMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "rating_gte":
		return fmt.Sprintf("rating must be between %d and %d", minRating, maxRating)
	case "count":
		return fmt.Sprintf("count must be between 1 and %d", MaxTopFilmsCount)
	case "release_year_gte", "release_year_lte":
		return fmt.Sprintf("year must be between %d and %d", minYear, maxYear)
	}

	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
