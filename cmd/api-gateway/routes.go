package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/rugby-club-api/internal/handler"
	"github.com/noah-isme/rugby-club-api/internal/middleware"
	"github.com/noah-isme/rugby-club-api/internal/models"
	"github.com/noah-isme/rugby-club-api/internal/repository"
	"github.com/noah-isme/rugby-club-api/internal/service"
	"github.com/noah-isme/rugby-club-api/pkg/config"
	"github.com/noah-isme/rugby-club-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/rugby-club-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/rugby-club-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	auth       *handler.AuthHandler
	users      *handler.UserHandler
	activities *handler.ActivityHandler
	matches    *handler.MatchHandler
	team       *handler.TeamHandler
	tournament *handler.TournamentHandler
	gallery    *handler.GalleryHandler
	streams    *handler.StreamHandler
	training   *handler.TrainingHandler
	club       *handler.ClubHandler
	feed       *handler.FeedHandler
	exports    *handler.ExportHandler
	metrics    *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, authSvc *service.AuthService, audit *repository.UserRepository, metrics *service.MetricsService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta(), middleware.Viewer(authSvc))

	auth := api.Group("/auth")
	auth.POST("/login", h.auth.Login)
	auth.POST("/refresh", h.auth.Refresh)
	authed := auth.Group("", middleware.JWT(authSvc))
	authed.POST("/logout", h.auth.Logout)
	authed.POST("/change-password", h.auth.ChangePassword)
	authed.GET("/me", h.auth.Me)

	api.GET("/club", h.club.Profile)
	api.GET("/calendar.ics", h.feed.Calendar)

	api.GET("/activities", h.activities.List)
	api.GET("/activities/calendar", h.activities.Calendar)
	api.GET("/activities/feed.ics", h.feed.Activities)
	api.GET("/activities/:id", h.activities.Get)
	api.GET("/activities/:id/countdown/stream", h.activities.Countdown)
	api.POST("/activities/:id/register", h.activities.Register)

	api.GET("/team", h.team.Roster)
	api.GET("/team/:id", h.team.Get)

	api.GET("/matches", h.matches.List)
	api.GET("/matches/next", h.matches.Next)
	api.GET("/matches/:id", h.matches.Get)
	api.GET("/matches/:id/countdown/stream", h.matches.Countdown)
	api.GET("/matches/:id/score/stream", h.matches.Scores)

	api.GET("/tournaments", h.tournament.List)
	api.GET("/tournaments/:id", h.tournament.Get)
	api.GET("/tournaments/:id/standings", h.tournament.Standings)

	api.GET("/gallery/albums", h.gallery.ListAlbums)
	api.GET("/gallery/albums/:id", h.gallery.Album)
	api.GET("/gallery/media/:token", h.gallery.Media)

	api.GET("/streams", h.streams.List)
	api.GET("/streams/:id", h.streams.Get)
	api.GET("/streams/:id/chat", h.streams.Messages)
	api.POST("/streams/:id/chat", h.streams.PostMessage)
	api.GET("/streams/:id/chat/events", h.streams.Events)

	api.GET("/training", h.training.List)
	api.GET("/training/:id", h.training.Get)
	api.GET("/training/:id/sessions", h.training.Sessions)

	api.GET("/exports/:token", h.exports.Download)

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.ContentManagerRoles...))
	admin.GET("/system/metrics", h.metrics.System)

	activities := admin.Group("/activities", middleware.Audit(audit, "activity", logr))
	activities.GET("/calendar", h.activities.AdminCalendar)
	activities.GET("/export", h.exports.Activities)
	activities.POST("", h.activities.Create)
	activities.PUT("/:id", h.activities.Update)
	activities.DELETE("/:id", h.activities.Delete)
	activities.GET("/:id/participants", h.activities.Participants)

	team := admin.Group("/team", middleware.Audit(audit, "team_member", logr))
	team.GET("", h.team.List)
	team.POST("", h.team.Create)
	team.PUT("/:id", h.team.Update)
	team.DELETE("/:id", h.team.Delete)

	matches := admin.Group("/matches", middleware.Audit(audit, "match", logr))
	matches.GET("/export", h.exports.Fixtures)
	matches.POST("", h.matches.Create)
	matches.PUT("/:id", h.matches.Update)
	matches.PATCH("/:id/score", h.matches.UpdateScore)
	matches.DELETE("/:id", h.matches.Delete)

	tournaments := admin.Group("/tournaments", middleware.Audit(audit, "tournament", logr))
	tournaments.POST("", h.tournament.Create)
	tournaments.PUT("/:id", h.tournament.Update)
	tournaments.DELETE("/:id", h.tournament.Delete)

	gallery := admin.Group("/gallery", middleware.Audit(audit, "gallery", logr))
	gallery.POST("/albums", h.gallery.CreateAlbum)
	gallery.PUT("/albums/:id", h.gallery.UpdateAlbum)
	gallery.DELETE("/albums/:id", h.gallery.DeleteAlbum)
	gallery.POST("/albums/:id/photos", h.gallery.Upload)
	gallery.DELETE("/photos/:id", h.gallery.DeletePhoto)

	streams := admin.Group("/streams", middleware.Audit(audit, "live_stream", logr))
	streams.POST("", h.streams.Create)
	streams.PUT("/:id", h.streams.Update)
	streams.PATCH("/:id/status", h.streams.SetStatus)
	streams.DELETE("/:id", h.streams.Delete)

	training := admin.Group("/training", middleware.Audit(audit, "training_program", logr))
	training.POST("", h.training.Create)
	training.PUT("/:id", h.training.Update)
	training.DELETE("/:id", h.training.Delete)

	superadmin := admin.Group("", middleware.RequireRoles(models.RoleSuperAdmin))
	superadmin.GET("/audit-logs", h.users.AuditLogs)
	users := superadmin.Group("/users", middleware.Audit(audit, "user", logr))
	users.GET("", h.users.List)
	users.GET("/:id", h.users.Get)
	users.POST("", h.users.Create)
	users.PUT("/:id", h.users.Update)
	users.DELETE("/:id", h.users.Delete)

	return r
}
