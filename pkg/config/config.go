package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Club      ClubConfig
	Cache     CacheConfig
	Gallery   GalleryConfig
	Exports   ExportsConfig
	Events    EventsConfig
	Scheduler SchedulerConfig
	Realtime  RealtimeConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Issuer            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	SingleSession     bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ClubConfig points at the static club profile and the timezone used for
// calendar day comparisons.
type ClubConfig struct {
	ProfilePath string
	Timezone    string
}

// Location resolves the configured timezone, falling back to UTC.
func (c ClubConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CacheConfig governs the TTLs of cached read models.
type CacheConfig struct {
	Enabled      bool
	CalendarTTL  time.Duration
	StandingsTTL time.Duration
}

// GalleryConfig controls photo storage, validation and thumbnailing.
type GalleryConfig struct {
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	MaxFileSizeBytes  int64
	AllowedMIMEs      []string
	ThumbnailWidth    int
	ThumbnailHeight   int
	WorkerConcurrency int
	WorkerRetries     int
}

// ExportsConfig controls where generated fixture and activity exports live.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	Retention       time.Duration
}

// EventsConfig configures domain event publishing to Kafka.
type EventsConfig struct {
	Enabled      bool
	Brokers      []string
	TopicPrefix  string
	WriteTimeout time.Duration
}

// SchedulerConfig drives the cron based housekeeping jobs.
type SchedulerConfig struct {
	Enabled           bool
	ExportCleanupSpec string
	StreamSweepSpec   string
	CacheWarmupSpec   string
	StreamMaxDuration time.Duration
}

// RealtimeConfig tunes SSE streams and the pub/sub channel namespace.
type RealtimeConfig struct {
	ChannelPrefix     string
	CountdownInterval time.Duration
	HeartbeatInterval time.Duration
	ChatHistoryLimit  int
	FeedHorizon       time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Issuer:            v.GetString("JWT_ISSUER"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 15*time.Minute),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
		SingleSession:     v.GetBool("JWT_SINGLE_SESSION"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Club = ClubConfig{
		ProfilePath: v.GetString("CLUB_PROFILE_PATH"),
		Timezone:    v.GetString("CLUB_TIMEZONE"),
	}

	cfg.Cache = CacheConfig{
		Enabled:      v.GetBool("ENABLE_CACHE"),
		CalendarTTL:  parseDuration(v.GetString("CALENDAR_CACHE_TTL"), 5*time.Minute),
		StandingsTTL: parseDuration(v.GetString("STANDINGS_CACHE_TTL"), 10*time.Minute),
	}

	maxPhotoSize := v.GetInt64("GALLERY_MAX_FILE_SIZE")
	if maxPhotoSize <= 0 {
		maxPhotoSize = 10 * 1024 * 1024
	}
	cfg.Gallery = GalleryConfig{
		StorageDir:        v.GetString("GALLERY_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("GALLERY_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("GALLERY_SIGNED_URL_TTL"), time.Hour),
		MaxFileSizeBytes:  maxPhotoSize,
		AllowedMIMEs:      splitAndTrim(v.GetString("GALLERY_ALLOWED_MIME_TYPES")),
		ThumbnailWidth:    v.GetInt("GALLERY_THUMBNAIL_WIDTH"),
		ThumbnailHeight:   v.GetInt("GALLERY_THUMBNAIL_HEIGHT"),
		WorkerConcurrency: v.GetInt("GALLERY_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("GALLERY_WORKER_RETRIES"),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		Retention:       parseDuration(v.GetString("EXPORTS_RETENTION"), 72*time.Hour),
	}

	cfg.Events = EventsConfig{
		Enabled:      v.GetBool("ENABLE_EVENTS"),
		Brokers:      splitAndTrim(v.GetString("KAFKA_BROKERS")),
		TopicPrefix:  v.GetString("KAFKA_TOPIC_PREFIX"),
		WriteTimeout: parseDuration(v.GetString("KAFKA_WRITE_TIMEOUT"), 5*time.Second),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:           v.GetBool("ENABLE_SCHEDULER"),
		ExportCleanupSpec: v.GetString("SCHEDULER_EXPORT_CLEANUP"),
		StreamSweepSpec:   v.GetString("SCHEDULER_STREAM_SWEEP"),
		CacheWarmupSpec:   v.GetString("SCHEDULER_CACHE_WARMUP"),
		StreamMaxDuration: parseDuration(v.GetString("STREAM_MAX_DURATION"), 4*time.Hour),
	}

	cfg.Realtime = RealtimeConfig{
		ChannelPrefix:     v.GetString("REALTIME_CHANNEL_PREFIX"),
		CountdownInterval: parseDuration(v.GetString("COUNTDOWN_INTERVAL"), time.Second),
		HeartbeatInterval: parseDuration(v.GetString("SSE_HEARTBEAT_INTERVAL"), 15*time.Second),
		ChatHistoryLimit:  v.GetInt("CHAT_HISTORY_LIMIT"),
		FeedHorizon:       parseDuration(v.GetString("CALENDAR_FEED_HORIZON"), 90*24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "rugby_club")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "rugby-club-api")
	v.SetDefault("JWT_EXPIRATION", "15m")
	v.SetDefault("JWT_SINGLE_SESSION", false)
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CLUB_PROFILE_PATH", "./config/club.yaml")
	v.SetDefault("CLUB_TIMEZONE", "UTC")

	v.SetDefault("ENABLE_CACHE", true)
	v.SetDefault("CALENDAR_CACHE_TTL", "5m")
	v.SetDefault("STANDINGS_CACHE_TTL", "10m")

	v.SetDefault("GALLERY_STORAGE_DIR", "./media")
	v.SetDefault("GALLERY_SIGNED_URL_SECRET", "dev_gallery_secret")
	v.SetDefault("GALLERY_SIGNED_URL_TTL", "1h")
	v.SetDefault("GALLERY_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("GALLERY_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/gif")
	v.SetDefault("GALLERY_THUMBNAIL_WIDTH", 320)
	v.SetDefault("GALLERY_THUMBNAIL_HEIGHT", 240)
	v.SetDefault("GALLERY_WORKER_CONCURRENCY", 2)
	v.SetDefault("GALLERY_WORKER_RETRIES", 3)

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_RETENTION", "72h")

	v.SetDefault("ENABLE_EVENTS", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC_PREFIX", "rugby")
	v.SetDefault("KAFKA_WRITE_TIMEOUT", "5s")

	v.SetDefault("ENABLE_SCHEDULER", true)
	v.SetDefault("SCHEDULER_EXPORT_CLEANUP", "@every 1h")
	v.SetDefault("SCHEDULER_STREAM_SWEEP", "@every 1m")
	v.SetDefault("SCHEDULER_CACHE_WARMUP", "@every 15m")
	v.SetDefault("STREAM_MAX_DURATION", "4h")

	v.SetDefault("REALTIME_CHANNEL_PREFIX", "rugby")
	v.SetDefault("COUNTDOWN_INTERVAL", "1s")
	v.SetDefault("SSE_HEARTBEAT_INTERVAL", "15s")
	v.SetDefault("CHAT_HISTORY_LIMIT", 50)
	v.SetDefault("CALENDAR_FEED_HORIZON", "2160h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
