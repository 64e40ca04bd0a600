package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/clearsettle/settle/config"
)

func setupSecureRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	config.MockConfig(&config.Configuration{
		DataSource: config.DataSourceConfig{Dns: "postgres://localhost/settle"},
		Server:     config.ServerConfig{Secure: true, SecretKey: secret},
	})

	r := gin.New()
	r.Use(SecretKeyAuthMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	return r
}

func TestSecretKeyAuth_ValidKey(t *testing.T) {
	router := setupSecureRouter("s3cret")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(KeyHeader, "s3cret")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestSecretKeyAuth_WrongKey(t *testing.T) {
	router := setupSecureRouter("s3cret")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(KeyHeader, "wrong")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSecretKeyAuth_MissingKey(t *testing.T) {
	router := setupSecureRouter("s3cret")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSecretKeyAuth_UnconfiguredSecret(t *testing.T) {
	router := setupSecureRouter("")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
