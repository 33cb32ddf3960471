// Package api exposes the films queries over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/north-cloud/films/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/films/internal/domain"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeBackend    = "BACKEND_ERROR"
)

const (
	msgFilmNotFound = "Film not found"
	msgBackend      = "Search backend request failed"
)

// FilmQueries is the read API of service.FilmService.
type FilmQueries interface {
	List(ctx context.Context, params domain.ListParams) ([]domain.Film, error)
	TopFilms(ctx context.Context, params domain.TopFilmsParams) ([]domain.Film, error)
	GenreAnalysis(ctx context.Context) ([]domain.GenreStats, error)
	DirectorAnalysis(ctx context.Context) ([]domain.DirectorStats, error)
	CrewAnalysis(ctx context.Context, id string) ([]domain.CrewDepartment, error)
	YearlyHistogram(ctx context.Context) ([]domain.YearCount, error)
	Search(ctx context.Context, params domain.SearchParams) ([]domain.Film, error)
}

// Handler holds HTTP request handlers
type Handler struct {
	films  FilmQueries
	limits domain.PageLimits
	now    domain.Clock
	logger infralogger.Logger
}

// NewHandler creates a new handler instance
func NewHandler(films FilmQueries, limits domain.PageLimits, log infralogger.Logger) *Handler {
	if log == nil {
		log = infralogger.NewNop()
	}
	return &Handler{
		films:  films,
		limits: limits,
		now:    time.Now,
		logger: log,
	}
}

// WithClock replaces the clock used to reject future release years.
func (h *Handler) WithClock(now domain.Clock) *Handler {
	h.now = now
	return h
}

// ListFilms handles GET /films/
func (h *Handler) ListFilms(c *gin.Context) {
	params, err := domain.ParseListParams(c.Request.URL.Query(), h.limits, h.now)
	if err != nil {
		h.writeError(c, err)
		return
	}

	films, err := h.films.List(c.Request.Context(), params)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, films)
}

// TopFilms handles GET /top_films/
func (h *Handler) TopFilms(c *gin.Context) {
	params, err := domain.ParseTopFilmsParams(c.Request.URL.Query())
	if err != nil {
		h.writeError(c, err)
		return
	}

	films, err := h.films.TopFilms(c.Request.Context(), params)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, films)
}

// GenreAnalysis handles GET /films/genres/
func (h *Handler) GenreAnalysis(c *gin.Context) {
	stats, err := h.films.GenreAnalysis(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DirectorAnalysis handles GET /films/directors/
func (h *Handler) DirectorAnalysis(c *gin.Context) {
	stats, err := h.films.DirectorAnalysis(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// YearlyHistogram handles GET /films/analysis/
func (h *Handler) YearlyHistogram(c *gin.Context) {
	years, err := h.films.YearlyHistogram(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, years)
}

// CrewAnalysis handles GET /films/:id/crew_analysis/
func (h *Handler) CrewAnalysis(c *gin.Context) {
	departments, err := h.films.CrewAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, departments)
}

// SearchFilms handles GET /search/
func (h *Handler) SearchFilms(c *gin.Context) {
	params, err := domain.ParseSearchParams(c.Request.URL.Query(), h.limits)
	if err != nil {
		h.writeError(c, err)
		return
	}

	films, err := h.films.Search(c.Request.Context(), params)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, films)
}

// writeError maps service errors onto status codes. Backend failures are
// logged in full; the client only sees msgBackend.
func (h *Handler) writeError(c *gin.Context, err error) {
	log := infralogger.FromContextOr(c.Request.Context(), h.logger)

	var invalid *domain.InvalidParameterError
	switch {
	case errors.As(err, &invalid):
		log.Debug("Rejected request parameters",
			infralogger.String("param", invalid.Param),
			infralogger.String("message", invalid.Message),
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     invalid.Message,
			Code:      CodeValidation,
			Param:     invalid.Param,
			Timestamp: time.Now(),
		})
	case errors.Is(err, domain.ErrFilmNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:     msgFilmNotFound,
			Code:      CodeNotFound,
			Timestamp: time.Now(),
		})
	default:
		log.Error("Films request failed",
			infralogger.String("path", c.FullPath()),
			infralogger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     msgBackend,
			Code:      CodeBackend,
			Timestamp: time.Now(),
		})
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	Param     string    `json:"param,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
