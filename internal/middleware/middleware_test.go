package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/auth"
	"go-sales-ledger/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGuardedRouter(tokens *auth.Tokens) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(logger.Nop()), ErrorHandler())
	api := r.Group("/api", AuthMiddleware(tokens))
	api.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString(KeyUsername)})
	})
	api.GET("/admin", RequireRole("ADMIN"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	r := newGuardedRouter(tokens)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/me", "garbage").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := tokens.Generate(1, "sales1", "SALESPERSON")
	require.NoError(t, err)
	w = do(r, "/api/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sales1")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequireRole(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	r := newGuardedRouter(tokens)

	sales, err := tokens.Generate(1, "sales1", "SALESPERSON")
	require.NoError(t, err)
	w := do(r, "/api/admin", sales)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeForbidden)

	admin, err := tokens.Generate(2, "admin", "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, do(r, "/api/admin", admin).Code)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(logger.Nop()), ErrorHandler())
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(apperror.NewNotFound("user", "ghost"))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(apperror.NewInternal(errors.New("password=hunter2 in dsn")))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("raw failure"))
	})

	w := do(r, "/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "user not found")

	w = do(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")

	w = do(r, "/plain", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "raw failure")
}
