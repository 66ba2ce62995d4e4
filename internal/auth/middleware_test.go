package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarydesk/internal/config"
)

const testPassword = "correct horse battery"

func setupMiddleware(t *testing.T, mode config.AuthMode, limiter *RateLimiter) *gin.Engine {
	t.Helper()

	hash, err := HashPassword(testPassword, 4) // Low cost for faster tests
	require.NoError(t, err)

	m := NewMiddleware(config.Auth{
		Mode:         mode,
		Username:     "librarian",
		PasswordHash: hash,
		APIToken:     "api-token",
	}, limiter)

	router := gin.New()
	router.Use(m.Handler())
	handler := func(c *gin.Context) {
		c.String(http.StatusOK, string(GetAuthType(c)))
	}
	router.GET("/books", handler)
	router.POST("/books", handler)
	router.POST("/api/books", handler)
	router.GET("/api/audit", m.RequireLibrarian(), handler)
	return router
}

func do(router *gin.Engine, method, path string, setup func(r *http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if setup != nil {
		setup(req)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_NoAuthMode(t *testing.T) {
	router := setupMiddleware(t, config.AuthModeNone, nil)

	rr := do(router, http.MethodPost, "/books", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, string(AuthTypeNone), rr.Body.String())
}

func TestMiddleware_BasicMode(t *testing.T) {
	router := setupMiddleware(t, config.AuthModeBasic, nil)

	tests := []struct {
		name     string
		method   string
		path     string
		setup    func(r *http.Request)
		wantCode int
		wantBody string
	}{
		{
			name:     "reads are public",
			method:   http.MethodGet,
			path:     "/books",
			wantCode: http.StatusOK,
			wantBody: string(AuthTypeNone),
		},
		{
			name:     "mutation without credentials",
			method:   http.MethodPost,
			path:     "/books",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "mutation with correct credentials",
			method: http.MethodPost,
			path:   "/books",
			setup: func(r *http.Request) {
				r.SetBasicAuth("librarian", testPassword)
			},
			wantCode: http.StatusOK,
			wantBody: string(AuthTypeBasic),
		},
		{
			name:   "wrong password",
			method: http.MethodPost,
			path:   "/books",
			setup: func(r *http.Request) {
				r.SetBasicAuth("librarian", "not the password")
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "wrong username",
			method: http.MethodPost,
			path:   "/books",
			setup: func(r *http.Request) {
				r.SetBasicAuth("admin", testPassword)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "api bearer token",
			method: http.MethodPost,
			path:   "/api/books",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer api-token")
			},
			wantCode: http.StatusOK,
			wantBody: string(AuthTypeBearer),
		},
		{
			name:   "bearer token outside the api",
			method: http.MethodPost,
			path:   "/books",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer api-token")
			},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(router, tt.method, tt.path, tt.setup)
			assert.Equal(t, tt.wantCode, rr.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			}
			if rr.Code == http.StatusUnauthorized {
				assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Basic")
			}
		})
	}
}

func TestMiddleware_APIUnauthorizedIsJSON(t *testing.T) {
	router := setupMiddleware(t, config.AuthModeBasic, nil)

	rr := do(router, http.MethodPost, "/api/books", nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, rr.Body.String())
}

func TestMiddleware_LocksOutAfterFailures(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     2,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
		CleanupInterval: time.Hour,
	})
	defer limiter.Stop()
	router := setupMiddleware(t, config.AuthModeBasic, limiter)

	wrong := func(r *http.Request) { r.SetBasicAuth("librarian", "guess") }
	right := func(r *http.Request) { r.SetBasicAuth("librarian", testPassword) }

	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodPost, "/books", wrong).Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodPost, "/books", wrong).Code)

	locked := do(router, http.MethodPost, "/books", right)
	assert.Equal(t, http.StatusTooManyRequests, locked.Code)
	assert.NotEmpty(t, locked.Header().Get("Retry-After"))
}

func TestGetAuthType_Default(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, AuthTypeNone, GetAuthType(c))
}

func TestMiddleware_RequireLibrarian(t *testing.T) {
	t.Run("basic mode rejects anonymous reads", func(t *testing.T) {
		router := setupMiddleware(t, config.AuthModeBasic, nil)

		rr := do(router, http.MethodGet, "/api/audit", nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":"authentication required"}`, rr.Body.String())
		assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
	})

	t.Run("basic mode accepts librarian credentials", func(t *testing.T) {
		router := setupMiddleware(t, config.AuthModeBasic, nil)

		rr := do(router, http.MethodGet, "/api/audit", func(r *http.Request) {
			r.SetBasicAuth("librarian", testPassword)
		})

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, string(AuthTypeBasic), rr.Body.String())
	})

	t.Run("basic mode accepts the api token", func(t *testing.T) {
		router := setupMiddleware(t, config.AuthModeBasic, nil)

		rr := do(router, http.MethodGet, "/api/audit", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer api-token")
		})

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, string(AuthTypeBearer), rr.Body.String())
	})

	t.Run("no auth mode stays open", func(t *testing.T) {
		router := setupMiddleware(t, config.AuthModeNone, nil)

		rr := do(router, http.MethodGet, "/api/audit", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("public reads are unaffected", func(t *testing.T) {
		router := setupMiddleware(t, config.AuthModeBasic, nil)

		rr := do(router, http.MethodGet, "/books", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
