package handler

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rugby-club-api/internal/calendar"
	"github.com/noah-isme/rugby-club-api/internal/middleware"
	"github.com/noah-isme/rugby-club-api/internal/models"
	appErrors "github.com/noah-isme/rugby-club-api/pkg/errors"
	"github.com/noah-isme/rugby-club-api/pkg/realtime"
)

var (
	countdownInterval = time.Second
	sseHeartbeat      = 15 * time.Second
)

// ConfigureStreams sets the countdown tick and the SSE keep-alive interval.
// Non-positive values keep the defaults.
func ConfigureStreams(countdown, heartbeat time.Duration) {
	if countdown > 0 {
		countdownInterval = countdown
	}
	if heartbeat > 0 {
		sseHeartbeat = heartbeat
	}
}

// streamGauge tracks open SSE connections.
type streamGauge interface {
	StreamOpened(kind string) func()
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func requestMeta(c *gin.Context) models.LoginRequest {
	return models.LoginRequest{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

func parseDateQuery(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return &parsed, nil
}

// parseDateRange reads from/to query parameters as dates in loc.
func parseDateRange(c *gin.Context, loc *time.Location) (*time.Time, *time.Time, error) {
	from, err := parseDateQuery(c.Query("from"))
	if err != nil {
		return nil, nil, err
	}
	to, err := parseDateQuery(c.Query("to"))
	if err != nil {
		return nil, nil, err
	}
	if loc != nil {
		if from != nil {
			v := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
			from = &v
		}
		if to != nil {
			v := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc)
			to = &v
		}
	}
	return from, to, nil
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

// parseMonth accepts YYYY-MM and defaults to the current month in loc.
func parseMonth(raw string, now time.Time, loc *time.Location) (int, time.Month, error) {
	if strings.TrimSpace(raw) == "" {
		local := now.In(loc)
		return local.Year(), local.Month(), nil
	}
	parsed, err := time.Parse("2006-01", raw)
	if err != nil {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "month must be formatted as YYYY-MM")
	}
	return parsed.Year(), parsed.Month(), nil
}

func setSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// streamCountdown pushes one countdown event per tick until the target passes
// or the client goes away.
func streamCountdown(c *gin.Context, gauge streamGauge, target time.Time, now func() time.Time) {
	if gauge != nil {
		done := gauge.StreamOpened("countdown")
		defer done()
	}
	ticks := calendar.Watch(c.Request.Context(), target, countdownInterval, now)
	setSSEHeaders(c)
	c.Stream(func(w io.Writer) bool {
		state, ok := <-ticks
		if !ok {
			return false
		}
		c.SSEvent("countdown", state)
		return !state.IsExpired
	})
}

// streamSubscription relays broker messages as SSE events and closes the
// subscription when the client disconnects.
func streamSubscription(c *gin.Context, gauge streamGauge, kind, event string, sub *realtime.Subscription) {
	defer sub.Close()
	if gauge != nil {
		done := gauge.StreamOpened(kind)
		defer done()
	}
	ctx := c.Request.Context()
	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	setSSEHeaders(c)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent(event, json.RawMessage(msg.Payload))
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}
