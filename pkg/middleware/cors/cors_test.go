package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func request(router *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/club", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(New(origins))
	router.GET("/club", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestCORSListedOriginGetsCredentials(t *testing.T) {
	router := newRouter([]string{"https://riversiderfc.example/"})

	rec := request(router, http.MethodGet, "https://riversiderfc.example")
	assert.Equal(t, "https://riversiderfc.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")

	other := request(router, http.MethodGet, "https://elsewhere.example")
	assert.Empty(t, other.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, other.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSOpenModeNeverSendsCredentials(t *testing.T) {
	router := newRouter(nil)

	rec := request(router, http.MethodGet, "https://fan.example")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))

	preflight := request(router, http.MethodOptions, "https://fan.example")
	assert.Equal(t, http.StatusNoContent, preflight.Code)
	assert.Contains(t, preflight.Header().Get("Access-Control-Allow-Headers"), "Last-Event-ID")
}
