package handlers

import (
	"calorie_budget/internal/logger"
	"calorie_budget/internal/service"

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

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// Live state feed over WebSocket, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.ownerMiddleware)
	{
		h.registerTrackerRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerTrackerRoutes(api *gin.RouterGroup) {
	food := api.Group("/food")
	{
		// Body example: {"calories":450,"reason":"lunch"}
		food.POST("", h.logFood)
		food.GET("", h.listFood)
	}

	// Body example: {"target_weight":150,"eating_window_start":"09:00"}
	api.PATCH("/settings", h.updateSettings)
	api.POST("/day/reset", h.resetDay)
	api.GET("/state", h.getState)
	api.GET("/zone", h.getZone)
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getLogs)
	}
}
