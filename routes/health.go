package routes

import (
	"net/http"

	"spoolman/spoolman/database"
	"spoolman/spoolman/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping() error
}

func RegisterHealthRoutes(group *gin.RouterGroup, db Pinger) {
	group.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			log.Warn().Err(err).Msg("Health check failed")
			c.JSON(http.StatusServiceUnavailable, models.StatusMessage{Status: "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, models.HealthyMessage)
	})
}

// RegisterMetricsRoute exposes the default prometheus registry.
func RegisterMetricsRoute(router gin.IRoutes) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

var _ Pinger = (*database.Database)(nil)
