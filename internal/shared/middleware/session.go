package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookieName   = "session_id"
	ContextKeySessionID = "session_id"
)

// SessionConfig holds cookie settings for the visitor session.
type SessionConfig struct {
	CookieDomain   string
	CookiePath     string
	CookieSecure   bool
	CookieSameSite http.SameSite
	MaxAge         time.Duration
}

// DefaultSessionConfig returns secure defaults.
func DefaultSessionConfig(maxAge time.Duration, secure bool) SessionConfig {
	return SessionConfig{
		CookiePath:     "/",
		CookieSecure:   secure,
		CookieSameSite: http.SameSiteLaxMode,
		MaxAge:         maxAge,
	}
}

// Session identifies the visitor by the session_id cookie, issuing a fresh
// UUID when the cookie is missing or malformed. The cookie is refreshed on
// every request so an active visitor never expires.
func Session(config SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := sessionIDFromCookie(c)
		if sessionID == "" {
			sessionID = uuid.New().String()
		}
		setSessionCookie(c, sessionID, config)

		c.Set(ContextKeySessionID, sessionID)
		c.Next()
	}
}

// sessionIDFromCookie returns "" unless the cookie holds a valid UUID.
func sessionIDFromCookie(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || sessionID == "" {
		return ""
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return ""
	}
	return sessionID
}

func setSessionCookie(c *gin.Context, sessionID string, config SessionConfig) {
	c.SetSameSite(config.CookieSameSite)
	c.SetCookie(
		SessionCookieName,
		sessionID,
		int(config.MaxAge.Seconds()),
		config.CookiePath,
		config.CookieDomain,
		config.CookieSecure,
		true, // httpOnly
	)
}

// GetSessionID retrieves the session id set by Session.
func GetSessionID(c *gin.Context) string {
	return c.GetString(ContextKeySessionID)
}
