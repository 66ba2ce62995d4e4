package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_AllowsInitialAttempts(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
		CleanupInterval: time.Hour, // Long interval to prevent cleanup during test
	})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("192.168.1.1", "librarian")
		if !allowed {
			t.Errorf("Attempt %d should be allowed", i+1)
		}
		rl.RecordFailure("192.168.1.1", "librarian")
	}

	allowed, retryAfter := rl.Allow("192.168.1.1", "librarian")
	if allowed {
		t.Error("4th attempt should be blocked")
	}
	if retryAfter == 0 {
		t.Error("retryAfter should be non-zero when blocked")
	}
}

func TestRateLimiter_LockoutExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     2,
		WindowDuration:  time.Minute,
		LockoutDuration: 10 * time.Minute,
		CleanupInterval: time.Hour,
	})
	defer rl.Stop()
	rl.now = func() time.Time { return now }

	rl.RecordFailure("10.0.0.1", "librarian")
	if locked := rl.RecordFailure("10.0.0.1", "librarian"); !locked {
		t.Fatal("second failure should lock the pair")
	}

	now = now.Add(9 * time.Minute)
	if allowed, _ := rl.Allow("10.0.0.1", "librarian"); allowed {
		t.Error("should still be locked")
	}

	now = now.Add(2 * time.Minute)
	if allowed, _ := rl.Allow("10.0.0.1", "librarian"); !allowed {
		t.Error("lockout should have expired")
	}

	now = now.Add(time.Hour)
	rl.cleanup()
	if len(rl.attempts) != 0 {
		t.Errorf("cleanup should drop expired records, %d left", len(rl.attempts))
	}
}

func TestRateLimiter_SuccessResetsCounter(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
		CleanupInterval: time.Hour,
	})
	defer rl.Stop()

	rl.RecordFailure("192.168.1.1", "librarian")
	rl.RecordFailure("192.168.1.1", "librarian")
	rl.RecordSuccess("192.168.1.1", "librarian")

	allowed, _ := rl.Allow("192.168.1.1", "librarian")
	if !allowed {
		t.Error("Should be allowed after successful login")
	}
}

func TestRateLimiter_DifferentUsersAreIndependent(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     2,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
		CleanupInterval: time.Hour,
	})
	defer rl.Stop()

	rl.RecordFailure("192.168.1.1", "user1")
	rl.RecordFailure("192.168.1.1", "user1")

	if allowed, _ := rl.Allow("192.168.1.1", "user1"); allowed {
		t.Error("user1 should be blocked")
	}
	if allowed, _ := rl.Allow("192.168.1.1", "user2"); !allowed {
		t.Error("user2 should be allowed")
	}
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimitConfig())
	rl.Stop()
	rl.Stop()
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	headers := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}

	for header, expected := range headers {
		if got := rr.Header().Get(header); got != expected {
			t.Errorf("Header %s = %q, want %q", header, got, expected)
		}
	}

	csp := rr.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "frame-ancestors 'none'") {
		t.Errorf("CSP should forbid framing, got %q", csp)
	}
	if !strings.Contains(csp, "form-action 'self' https://example.com") {
		t.Errorf("CSP form-action should include the request host, got %q", csp)
	}

	if pp := rr.Header().Get("Permissions-Policy"); pp == "" {
		t.Error("Permissions-Policy header should be set")
	}
}

func TestSecurityHeaders_AnalyticsOrigin(t *testing.T) {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(AnalyticsScriptURLContextKey, "https://plausible.io/js/script.hash.js")
		c.Next()
	})
	router.Use(SecurityHeadersMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))

	csp := rr.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "script-src 'self' 'unsafe-inline' https://plausible.io;") {
		t.Errorf("script-src should allow the analytics origin, got %q", csp)
	}
	if !strings.Contains(csp, "connect-src 'self' https://plausible.io;") {
		t.Errorf("connect-src should allow the analytics origin, got %q", csp)
	}
}

func TestExtractOrigin(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://plausible.io/js/script.js", "https://plausible.io"},
		{"http://stats.local:8000/js/script.js", "http://stats.local:8000"},
		{"stats.example.com/js/script.js", "https://stats.example.com"},
		{"", ""},
		{"javascript:alert(1)", ""},
		{"https://", ""},
	}

	for _, tt := range tests {
		if got := extractOrigin(tt.in); got != tt.want {
			t.Errorf("extractOrigin(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHSTSHeader(t *testing.T) {
	router := gin.New()
	router.Use(StrictTransportSecurityMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if hsts := rr.Header().Get("Strict-Transport-Security"); hsts != "" {
		t.Error("HSTS should not be set for HTTP requests")
	}

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if hsts := rr.Header().Get("Strict-Transport-Security"); hsts == "" {
		t.Error("HSTS should be set for HTTPS requests")
	}
}
