package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/logger"
)

// ContextKeyAuthType holds how a mutating request was authorized.
const ContextKeyAuthType = "auth_type"

// AuthType indicates how the request was authenticated
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBasic  AuthType = "basic"
	AuthTypeBearer AuthType = "bearer"
)

const basicRealm = `Basic realm="librarydesk", charset="UTF-8"`

// Middleware guards catalog mutations behind the librarian credentials.
// Reads are public unless a route adds RequireLibrarian.
type Middleware struct {
	config  config.Auth
	limiter *RateLimiter
}

// NewMiddleware creates the librarian middleware. limiter may be nil.
func NewMiddleware(cfg config.Auth, limiter *RateLimiter) *Middleware {
	return &Middleware{config: cfg, limiter: limiter}
}

// Handler returns the gin handler.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.config.Mode != config.AuthModeBasic || isSafeMethod(c.Request.Method) {
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
			return
		}
		m.authenticate(c)
	}
}

// RequireLibrarian guards routes that must stay private even for reads,
// such as the audit trail with client addresses.
func (m *Middleware) RequireLibrarian() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.config.Mode != config.AuthModeBasic {
			c.Next()
			return
		}
		if GetAuthType(c) != AuthTypeNone {
			c.Next()
			return
		}
		m.authenticate(c)
	}
}

func (m *Middleware) authenticate(c *gin.Context) {
	if IsAPIWithValidBearer(c, m.config.APIToken) {
		c.Set(ContextKeyAuthType, AuthTypeBearer)
		c.Next()
		return
	}

	username, password, ok := c.Request.BasicAuth()
	if !ok {
		m.challenge(c)
		return
	}

	ip := c.ClientIP()
	if m.limiter != nil {
		if allowed, retryAfter := m.limiter.Allow(ip, username); !allowed {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many failed attempts"})
			return
		}
	}

	if !m.checkCredentials(username, password) {
		if m.limiter != nil && m.limiter.RecordFailure(ip, username) {
			logger.WithComponent("auth").WithField("ip", ip).WithField("username", username).Warn("Librarian credentials locked out")
		}
		m.challenge(c)
		return
	}

	if m.limiter != nil {
		m.limiter.RecordSuccess(ip, username)
	}
	c.Set(ContextKeyAuthType, AuthTypeBasic)
	c.Next()
}

func (m *Middleware) checkCredentials(username, password string) bool {
	if m.config.PasswordHash == "" || username != m.config.Username {
		return false
	}
	return CheckPassword(password, m.config.PasswordHash) == nil
}

func (m *Middleware) challenge(c *gin.Context) {
	c.Header("WWW-Authenticate", basicRealm)
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.AbortWithStatus(http.StatusUnauthorized)
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// GetAuthType returns how the current request was authorized.
func GetAuthType(c *gin.Context) AuthType {
	if v, ok := c.Get(ContextKeyAuthType); ok {
		if t, ok := v.(AuthType); ok {
			return t
		}
	}
	return AuthTypeNone
}
