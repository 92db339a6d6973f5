package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const SessionCookieName = "token"

type CookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

// SetSessionCookie stores the token in an http-only, SameSite=Lax cookie.
func SetSessionCookie(c *gin.Context, token string, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)
}

// ClearSessionCookie expires the session cookie whether or not one was sent.
func ClearSessionCookie(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", cfg.Secure, true)
}
