package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rugby-club-api/internal/models"
)

type stubTokens struct {
	claims *models.JWTClaims
}

func (s stubTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, errors.New("invalid")
	}
	return s.claims, nil
}

type recordingAudit struct {
	logs []*models.AuditLog
}

func (r *recordingAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func TestViewerResolvesLocaleAndClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := stubTokens{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleEditor}}

	var got models.Viewer
	router := gin.New()
	router.Use(Viewer(tokens))
	router.GET("/", func(c *gin.Context) {
		got = ViewerFromContext(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de-DE,fr-FR;q=0.8,en;q=0.5")
	req.Header.Set("Authorization", "Bearer good")
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "fr", got.Locale)
	require.NotNil(t, got.Claims)
	assert.True(t, got.IsAdmin)

	req = httptest.NewRequest(http.MethodGet, "/?lang=es", nil)
	req.Header.Set("Authorization", "Bearer bad")
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "es", got.Locale)
	assert.Nil(t, got.Claims)
	assert.False(t, got.IsAdmin)
}

func TestViewerMemberIsNotAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := stubTokens{claims: &models.JWTClaims{UserID: "u2", Role: models.RoleMember}}

	var got models.Viewer
	router := gin.New()
	router.Use(Viewer(tokens))
	router.GET("/", func(c *gin.Context) {
		got = ViewerFromContext(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/?lang=xx", nil)
	req.Header.Set("Authorization", "Bearer good")
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "en", got.Locale)
	assert.True(t, got.Authenticated())
	assert.False(t, got.IsAdmin)
}

func TestRequireRolesRejectsOtherRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleMember})
	})
	router.GET("/admin", RequireRoles(models.ContentManagerRoles...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestAuditRecordsSuccessfulMutationsOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	writer := &recordingAudit{}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "admin"})
	})
	group := router.Group("/admin/matches", Audit(writer, "matches", nil))
	group.GET("/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	group.PUT("/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	group.DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/matches/m1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/admin/matches/m1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/admin/matches/m1", nil))

	require.Len(t, writer.logs, 1)
	log := writer.logs[0]
	assert.Equal(t, models.AuditActionUpdate, log.Action)
	assert.Equal(t, "matches", log.Resource)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, "m1", *log.ResourceID)
	require.NotNil(t, log.UserID)
	assert.Equal(t, "admin", *log.UserID)
}

func TestAuditNamesRouteSpecificActions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	writer := &recordingAudit{}
	router := gin.New()
	group := router.Group("/admin/matches", Audit(writer, "match", nil))
	group.GET("/export", func(c *gin.Context) { c.Status(http.StatusCreated) })
	group.PATCH("/:id/score", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/matches/export", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/admin/matches/m1/score", nil))

	require.Len(t, writer.logs, 2)
	assert.Equal(t, models.AuditActionExport, writer.logs[0].Action)
	assert.Nil(t, writer.logs[0].UserID)
	assert.Equal(t, models.AuditActionScoreUpdate, writer.logs[1].Action)
}

func TestRBACAllowsSelfOnOwnID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleMember})
	})
	router.GET("/users/:id", RBAC(string(models.RoleSuperAdmin), "SELF"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	own := httptest.NewRecorder()
	router.ServeHTTP(own, httptest.NewRequest(http.MethodGet, "/users/u1", nil))
	assert.Equal(t, http.StatusNoContent, own.Code)

	other := httptest.NewRecorder()
	router.ServeHTTP(other, httptest.NewRequest(http.MethodGet, "/users/u2", nil))
	assert.Equal(t, http.StatusForbidden, other.Code)
}
