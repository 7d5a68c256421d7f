package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"taskgate/internal/app"
	"taskgate/internal/health"
	"taskgate/internal/transport/http/handler"
	"taskgate/internal/transport/http/middleware"
)

type RouterDeps struct {
	Logger         *slog.Logger
	AppName        string
	Env            string
	Development    bool
	GinMode        string
	AllowedOrigins []string
	StartedAt      time.Time

	AuthService    *app.AuthService
	TaskService    *app.TaskService
	TokenValidator middleware.TokenValidator
	Health         *health.Aggregator
}

// NewRouter mounts every route twice: at the root and under /api.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.GinMode != "" {
		gin.SetMode(deps.GinMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.Pipeline(middleware.PipelineOptions{
		Logger:         deps.Logger,
		Development:    deps.Development,
		AllowedOrigins: deps.AllowedOrigins,
	})...)

	authHandler := handler.NewAuthHandler(deps.AuthService)
	profileHandler := handler.NewProfileHandler(deps.AuthService)
	taskHandler := handler.NewTaskHandler(deps.TaskService)
	healthHandler := handler.NewHealthHandler(deps.Health, deps.AppName, deps.Env, deps.StartedAt)
	errorHandler := handler.NewErrorHandler()
	requireToken := middleware.AuthJWT(deps.TokenValidator)

	router.GET("/", handler.Root)

	for _, base := range []*gin.RouterGroup{&router.RouterGroup, router.Group("/api")} {
		authGroup := base.Group("/auth")
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)

		taskGroup := base.Group("/tasks", requireToken)
		taskGroup.GET("", taskHandler.List)
		taskGroup.POST("", taskHandler.Create)
		taskGroup.GET("/:id", taskHandler.Get)
		taskGroup.PUT("/:id", taskHandler.Update)
		taskGroup.DELETE("/:id", taskHandler.Delete)

		userGroup := base.Group("/user", requireToken)
		userGroup.GET("/profile", profileHandler.Get)
		userGroup.PUT("/profile", profileHandler.Update)

		healthGroup := base.Group("/health")
		healthGroup.GET("", healthHandler.All)
		healthGroup.GET("/live", healthHandler.Live)
		healthGroup.GET("/ready", healthHandler.Ready)

		errorGroup := base.Group("/error")
		errorGroup.GET("", errorHandler.Fault)
		errorGroup.GET("/:code", errorHandler.Status)
	}

	return router
}
