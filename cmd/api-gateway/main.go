package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/rugby-club-api/api/swagger"
	"github.com/noah-isme/rugby-club-api/internal/handler"
	"github.com/noah-isme/rugby-club-api/internal/repository"
	"github.com/noah-isme/rugby-club-api/internal/service"
	"github.com/noah-isme/rugby-club-api/migrations"
	"github.com/noah-isme/rugby-club-api/pkg/cache"
	"github.com/noah-isme/rugby-club-api/pkg/config"
	"github.com/noah-isme/rugby-club-api/pkg/database"
	"github.com/noah-isme/rugby-club-api/pkg/events"
	"github.com/noah-isme/rugby-club-api/pkg/jobs"
	"github.com/noah-isme/rugby-club-api/pkg/logger"
	"github.com/noah-isme/rugby-club-api/pkg/media"
	"github.com/noah-isme/rugby-club-api/pkg/realtime"
	"github.com/noah-isme/rugby-club-api/pkg/scheduler"
	"github.com/noah-isme/rugby-club-api/pkg/storage"
)

// @title Rugby Club API
// @version 1.0.0
// @description Club website backend: activities, fixtures, gallery, live streams and training.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		applied, err := migrations.Apply(ctx, db)
		if err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
		logr.Info("migrations applied", zap.Strings("scripts", applied))
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching and pub/sub fall back to memory", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	app, err := buildApp(cfg, logr, db, redisClient)
	if err != nil {
		logr.Fatal("failed to build application", zap.Error(err))
	}
	defer app.close()

	app.queue.Start(ctx)
	defer app.queue.Stop()
	if cfg.Scheduler.Enabled {
		app.scheduler.Start(ctx)
		defer app.scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("shutdown error", zap.Error(err))
	}
}

type app struct {
	router    *gin.Engine
	queue     *jobs.Queue
	scheduler *scheduler.Scheduler
	broker    realtime.Broker
	publisher events.Publisher
}

func (a *app) close() {
	_ = a.broker.Close()
	_ = a.publisher.Close()
}

func buildApp(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) (*app, error) {
	loc := cfg.Club.Location()
	validate := service.NewValidator()
	metrics := service.NewMetricsService()

	profile, err := service.LoadClubProfile(cfg.Club.ProfilePath)
	if err != nil {
		return nil, fmt.Errorf("load club profile: %w", err)
	}

	var broker realtime.Broker
	if redisClient != nil {
		broker = realtime.NewRedisBroker(redisClient, cfg.Realtime.ChannelPrefix, logr)
	} else {
		broker = realtime.NewMemoryBroker(64)
	}

	var publisher events.Publisher = events.NewNoopPublisher(logr)
	if cfg.Events.Enabled {
		kafkaPublisher, err := events.NewKafkaPublisher(events.KafkaConfig{
			Brokers:      cfg.Events.Brokers,
			TopicPrefix:  cfg.Events.TopicPrefix,
			WriteTimeout: cfg.Events.WriteTimeout,
		}, logr)
		if err != nil {
			return nil, fmt.Errorf("init kafka publisher: %w", err)
		}
		publisher = kafkaPublisher
	}

	galleryFiles, err := storage.NewLocalStorage(cfg.Gallery.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("init gallery storage: %w", err)
	}
	exportFiles, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("init export storage: %w", err)
	}

	queue := jobs.NewQueue("gallery", jobs.QueueConfig{
		Workers:    cfg.Gallery.WorkerConcurrency,
		MaxRetries: cfg.Gallery.WorkerRetries,
		Logger:     logr,
	})

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.CalendarTTL, logr, cfg.Cache.Enabled && redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	matchRepo := repository.NewMatchRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		SingleSession:      cfg.JWT.SingleSession,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	clubSvc := service.NewClubService(profile, logr)
	activitySvc := service.NewActivityService(activityRepo, cacheSvc, publisher, metrics, validate, logr, service.ActivityServiceConfig{
		Location:    loc,
		CalendarTTL: cfg.Cache.CalendarTTL,
	})
	matchSvc := service.NewMatchService(matchRepo, broker, cacheSvc, publisher, metrics, validate, logr, loc)
	teamSvc := service.NewTeamService(repository.NewTeamRepository(db), validate, logr)
	tournamentSvc := service.NewTournamentService(repository.NewTournamentRepository(db), cacheSvc, cfg.Cache.StandingsTTL, validate, logr)
	gallerySvc := service.NewGalleryService(
		repository.NewGalleryRepository(db),
		galleryFiles,
		storage.NewSignedURLSigner(cfg.Gallery.SignedURLSecret, cfg.Gallery.SignedURLTTL),
		queue,
		media.NewThumbnailer(cfg.Gallery.ThumbnailWidth, cfg.Gallery.ThumbnailHeight),
		publisher,
		metrics,
		validate,
		logr,
		service.GalleryServiceConfig{
			MaxFileSize:  cfg.Gallery.MaxFileSizeBytes,
			AllowedMIMEs: cfg.Gallery.AllowedMIMEs,
			MediaBaseURL: cfg.APIPrefix + "/gallery/media",
		},
	)
	streamSvc := service.NewStreamService(repository.NewStreamRepository(db), broker, metrics, validate, logr, service.StreamServiceConfig{
		HistoryLimit: cfg.Realtime.ChatHistoryLimit,
		MaxDuration:  cfg.Scheduler.StreamMaxDuration,
	})
	trainingSvc := service.NewTrainingService(repository.NewTrainingRepository(db), validate, logr, loc)
	feedSvc := service.NewFeedService(activitySvc, matchSvc, trainingSvc, clubSvc, logr, loc, cfg.Realtime.FeedHorizon)
	exportSvc := service.NewExportService(activitySvc, matchSvc, exportFiles,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		clubSvc, service.ExportConfig{APIPrefix: cfg.APIPrefix, Retention: cfg.Exports.Retention}, logr, loc)

	queue.Handle(service.JobThumbnail, gallerySvc.ProcessThumbnail)

	sched := scheduler.New(logr, loc)
	tasks := []scheduler.Task{
		{Name: "exports.cleanup", Spec: cfg.Scheduler.ExportCleanupSpec, Timeout: time.Minute, Run: func(ctx context.Context) error {
			removed, err := exportSvc.Cleanup(0)
			if err == nil && len(removed) > 0 {
				logr.Info("expired exports removed", zap.Int("count", len(removed)))
			}
			return err
		}},
		{Name: "streams.sweep", Spec: cfg.Scheduler.StreamSweepSpec, Timeout: 30 * time.Second, Run: func(ctx context.Context) error {
			_, err := streamSvc.Sweep(ctx)
			return err
		}},
		{Name: "calendar.warmup", Spec: cfg.Scheduler.CacheWarmupSpec, Timeout: time.Minute, Run: activitySvc.WarmCalendar},
	}
	for _, task := range tasks {
		if err := sched.Register(task); err != nil {
			return nil, fmt.Errorf("register %s: %w", task.Name, err)
		}
	}

	checks := map[string]handler.ReadinessCheck{
		"database": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	handler.ConfigureStreams(cfg.Realtime.CountdownInterval, cfg.Realtime.HeartbeatInterval)
	handlers := routeHandlers{
		auth:       handler.NewAuthHandler(authSvc),
		users:      handler.NewUserHandler(userSvc),
		activities: handler.NewActivityHandler(activitySvc, metrics),
		matches:    handler.NewMatchHandler(matchSvc, metrics),
		team:       handler.NewTeamHandler(teamSvc),
		tournament: handler.NewTournamentHandler(tournamentSvc),
		gallery:    handler.NewGalleryHandler(gallerySvc, cfg.Gallery.MaxFileSizeBytes),
		streams:    handler.NewStreamHandler(streamSvc, metrics),
		training:   handler.NewTrainingHandler(trainingSvc),
		club:       handler.NewClubHandler(clubSvc),
		feed:       handler.NewFeedHandler(feedSvc),
		exports:    handler.NewExportHandler(exportSvc),
		metrics:    handler.NewMetricsHandler(metrics, checks),
	}

	router := newRouter(cfg, logr, authSvc, userRepo, metrics, handlers)

	return &app{
		router:    router,
		queue:     queue,
		scheduler: sched,
		broker:    broker,
		publisher: publisher,
	}, nil
}
