package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/films/internal/metrics"
)

// SetupServiceRoutes configures the films routes and /metrics. Health routes
// are added by the infrastructure gin builder. provider may be nil.
func SetupServiceRoutes(router *gin.Engine, handler *Handler, provider *metrics.Provider) {
	if provider != nil {
		router.GET("/metrics", gin.WrapH(provider.Handler()))
		router.Use(MetricsMiddleware(provider))
	}

	films := router.Group("/films")
	{
		films.GET("/", handler.ListFilms)
		films.GET("/genres/", handler.GenreAnalysis)
		films.GET("/directors/", handler.DirectorAnalysis)
		films.GET("/analysis/", handler.YearlyHistogram)
		films.GET("/:id/crew_analysis/", handler.CrewAnalysis)
	}

	router.GET("/top_films/", handler.TopFilms)
	router.GET("/search/", handler.SearchFilms)
}
