package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pomodoro/timer/internal/handler"
	"pomodoro/timer/internal/middleware"
	"pomodoro/timer/internal/service"
)

type Deps struct {
	Tokens      *service.TokenService
	Auth        *handler.AuthHandler
	Timer       *handler.TimerHandler
	Metrics     http.Handler
	CORSOrigins []string
	Logger      *slog.Logger
}

func New(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestLogger(logger.With("component", "http")), middleware.CORS(deps.CORSOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	api := engine.Group("/api")
	api.POST("/auth/token", deps.Auth.Token)

	timer := api.Group("/timer")
	timer.Use(middleware.Auth(deps.Tokens))
	timer.GET("/state", deps.Timer.GetState)
	timer.POST("/start", deps.Timer.Start)
	timer.POST("/pause", deps.Timer.Pause)
	timer.POST("/resume", deps.Timer.Resume)
	timer.POST("/stop", deps.Timer.Stop)
	timer.POST("/skip", deps.Timer.Skip)
	timer.GET("/settings", deps.Timer.GetSettings)
	timer.PUT("/settings", deps.Timer.UpdateSettings)
	timer.GET("/stats", deps.Timer.GetStats)
	timer.GET("/stats/daily", deps.Timer.GetDaily)

	return engine
}
