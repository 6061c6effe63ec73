package routes

import (
	"net/http"

	"RxClinic/config"
	"RxClinic/controllers"
	"RxClinic/handlers"
	"RxClinic/middlewares"
	"RxClinic/services"
	"RxClinic/utils"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(cfg *config.AppConfig, svc *services.Services, tokens *utils.TokenMaker, log zerolog.Logger) http.Handler {
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.LoggingMiddleware(log))
	router.Use(gzip.Gzip(gzip.BestSpeed))
	router.Use(middlewares.SecurityHeaders())
	router.Use(middlewares.CorsMiddleware(cfg.CORSOrigins))
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	h := handlers.New(svc, cfg.PublicBaseURL, !cfg.IsDev(), log)
	auth := middlewares.TokenAuthMiddleware(tokens)

	controllers.SetupRootRoute(router)
	controllers.NewAuthController(h.Auth).RegisterRoutes(router, auth)
	controllers.SetupClinicRoutes(router, h, auth)

	return router
}
