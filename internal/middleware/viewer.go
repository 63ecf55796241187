package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rugby-club-api/internal/calendar"
	"github.com/noah-isme/rugby-club-api/internal/models"
)

// ContextViewerKey is the gin context key storing the resolved models.Viewer.
const ContextViewerKey = "viewer"

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// Viewer resolves the caller identity and locale once per request. Invalid or
// missing credentials leave the viewer anonymous; protected routes still use JWT.
func Viewer(tokens tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := models.Viewer{Locale: resolveLocale(c)}

		if claims, ok := c.Get(ContextUserKey); ok {
			viewer.Claims, _ = claims.(*models.JWTClaims)
		} else if tokens != nil {
			if token := bearerToken(c.GetHeader("Authorization")); token != "" {
				if claims, err := tokens.ValidateToken(token); err == nil {
					viewer.Claims = claims
				}
			}
		}
		if viewer.Claims != nil {
			viewer.IsAdmin = viewer.Claims.Role.IsContentManager()
		}

		c.Set(ContextViewerKey, viewer)
		c.Next()
	}
}

// ViewerFromContext returns the viewer resolved by Viewer, or one built from
// the JWT claims when Viewer did not run.
func ViewerFromContext(c *gin.Context) models.Viewer {
	if value, ok := c.Get(ContextViewerKey); ok {
		if viewer, ok := value.(models.Viewer); ok {
			return viewer
		}
	}
	viewer := models.Viewer{Locale: resolveLocale(c)}
	if claims, ok := c.Get(ContextUserKey); ok {
		viewer.Claims, _ = claims.(*models.JWTClaims)
	}
	viewer.IsAdmin = viewer.Claims != nil && viewer.Claims.Role.IsContentManager()
	return viewer
}

// resolveLocale prefers ?lang and then the first supported Accept-Language tag.
func resolveLocale(c *gin.Context) string {
	if lang := strings.ToLower(strings.TrimSpace(c.Query("lang"))); lang != "" && calendar.SupportedLocale(lang) {
		return lang
	}
	for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if calendar.SupportedLocale(base) {
			return base
		}
	}
	return calendar.DefaultLocale
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
