package main

import (
	"time"

	"pacetrack/internal/auth"
	"pacetrack/internal/config"
	"pacetrack/internal/handler"
	"pacetrack/internal/middleware"
	"pacetrack/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title        Pacetrack API
// @version      1.0
// @description  Fitness-tracking backend: activities, metrics, goals, profiles.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	auth.Configure(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)

	if err := storage.InitDB(cfg.DBPath); err != nil {
		logrus.WithError(err).Fatal("failed to initialize database")
	}
	defer storage.CloseDB()

	router := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	authLimiter := middleware.RateLimit()
	router.POST("/signup", authLimiter, handler.Signup)
	router.POST("/login", authLimiter, handler.Login)

	router.GET("/share/:token", handler.GetSharedSummary)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/ws/live", handler.HandleLiveSession)

	protected := router.Group("/api").Use(middleware.AuthMiddleware())
	{
		protected.GET("/profile", handler.Profile)
		protected.PUT("/profile", handler.UpdateProfile)
		protected.PUT("/profile/privacy", handler.UpdatePrivacy)
		protected.GET("/users/:username", handler.ViewUser)

		protected.POST("/activities", handler.CreateActivity)
		protected.POST("/activities/sync", handler.SyncActivities)
		protected.POST("/activities/import", handler.ImportActivity)
		protected.GET("/activities", handler.ListActivities)
		protected.GET("/activities/:id", handler.GetActivity)
		protected.GET("/activities/:id/gpx", handler.ExportGPX)
		protected.DELETE("/activities/:id", handler.DeleteActivity)
		protected.POST("/activities/:id/share", handler.ShareActivity)

		protected.GET("/stats", handler.GetStats)

		protected.POST("/goals", handler.CreateGoal)
		protected.GET("/goals", handler.ListGoals)
		protected.PUT("/goals/:id", handler.UpdateGoal)
		protected.DELETE("/goals/:id", handler.DeleteGoal)
	}

	logrus.WithField("addr", cfg.Addr).Info("starting api server")
	if err := router.Run(cfg.Addr); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}
