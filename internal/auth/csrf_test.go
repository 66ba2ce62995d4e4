package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testSecret = SecretKey("test-secret-key-32-bytes-long!!")

func csrfRouter(apiToken string) *gin.Engine {
	router := gin.New()
	router.Use(CSRFMiddleware(testSecret, false, apiToken))
	router.GET("/books", func(c *gin.Context) {
		c.String(http.StatusOK, GetCSRFToken(c))
	})
	router.POST("/books", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/api/books", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestCSRFMiddleware_AllowsGETAndSetsToken(t *testing.T) {
	router := csrfRouter("")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/books", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Body.String(), "token should be available to templates")
}

func TestCSRFMiddleware_BlocksPOSTWithoutToken(t *testing.T) {
	router := csrfRouter("")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/books", nil))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "Session Expired")
}

func TestCSRFMiddleware_AcceptsFormToken(t *testing.T) {
	router := csrfRouter("")

	get := httptest.NewRecorder()
	router.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/books", nil))
	token := get.Body.String()
	cookies := get.Result().Cookies()
	require.NotEmpty(t, cookies)

	form := url.Values{CSRFFormField: {token}}
	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCSRFMiddleware_APIBearer(t *testing.T) {
	tests := []struct {
		name     string
		apiToken string
		path     string
		header   string
		want     int
	}{
		{"valid token on api route", "s3cret", "/api/books", "Bearer s3cret", http.StatusOK},
		{"scheme is case insensitive", "s3cret", "/api/books", "bearer s3cret", http.StatusOK},
		{"wrong token", "s3cret", "/api/books", "Bearer nope", http.StatusForbidden},
		{"no token configured", "", "/api/books", "Bearer anything", http.StatusForbidden},
		{"bearer does not cover html forms", "s3cret", "/books", "Bearer s3cret", http.StatusForbidden},
		{"basic auth header", "s3cret", "/api/books", "Basic dXNlcjpwYXNz", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := csrfRouter(tt.apiToken)
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			req.Header.Set("Authorization", tt.header)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestGetCSRFToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetCSRFToken(c))

	c.Set(csrfContextKey, "test-token-123")
	assert.Equal(t, "test-token-123", GetCSRFToken(c))
}

func TestCSRFErrorHandler_JSON(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/books", nil)

	csrfErrorHandler(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"CSRF token invalid or missing"}`, rr.Body.String())
}
