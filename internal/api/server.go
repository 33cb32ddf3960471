package api

import (
	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/north-cloud/films/infrastructure/gin"
	"github.com/jonesrussell/north-cloud/films/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/films/internal/config"
	"github.com/jonesrussell/north-cloud/films/internal/metrics"
	"github.com/jonesrussell/north-cloud/films/internal/service"
)

// NewServer creates the films HTTP server using the infrastructure gin package.
func NewServer(
	handler *Handler,
	films *service.FilmService,
	provider *metrics.Provider,
	cfg *config.Config,
	log logger.Logger,
) *infragin.Server {
	corsConfig := infragin.CORSConfig{
		Enabled:        cfg.CORS.Enabled,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}

	return infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithTimeouts(infragin.DefaultReadTimeout, infragin.DefaultWriteTimeout, infragin.DefaultIdleTimeout).
		WithCORS(corsConfig).
		WithElasticsearchHealthCheck(films.HealthCheck).
		WithRoutes(func(router *gin.Engine) {
			SetupServiceRoutes(router, handler, provider)
		}).
		Build()
}
