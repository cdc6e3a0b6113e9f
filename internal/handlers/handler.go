package handlers

import (
	"thermostat_dashboard/internal/logger"
	"thermostat_dashboard/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// REST + sync channels
	h.registerAPIRoutes(router)

	// WebSocket push channel (HTTP upgrade) — same port
	router.GET("/ws/thermostats/:id", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		thermostats := api.Group("/thermostats")
		{
			thermostats.GET("", h.listThermostats)
			thermostats.GET("/:id", h.getThermostat)
			thermostats.PATCH("/:id", h.updateThermostat)
			thermostats.GET("/:id/poll", h.pollThermostat)
			thermostats.GET("/:id/listen", h.listenThermostat)
		}
	}
}
