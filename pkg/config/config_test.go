package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, time.Second, cfg.Realtime.CountdownInterval)
	assert.Equal(t, []string{"image/jpeg", "image/png", "image/gif"}, cfg.Gallery.AllowedMIMEs)
	assert.Equal(t, int64(10*1024*1024), cfg.Gallery.MaxFileSizeBytes)
	assert.Equal(t, "@every 1m", cfg.Scheduler.StreamSweepSpec)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("ENABLE_EVENTS", "true")
	t.Setenv("CALENDAR_CACHE_TTL", "not-a-duration")
	t.Setenv("CLUB_TIMEZONE", "Europe/London")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.Brokers)
	assert.Equal(t, 5*time.Minute, cfg.Cache.CalendarTTL)
	assert.Equal(t, "Europe/London", cfg.Club.Location().String())
}

func TestClubLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, ClubConfig{Timezone: "Mars/Olympus"}.Location())
	assert.Equal(t, time.UTC, ClubConfig{}.Location())
}
