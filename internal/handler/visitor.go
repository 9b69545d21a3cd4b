package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	viewerCookieName   = "viewer_token"
	viewerCookieMaxAge = 365 * 24 * 60 * 60
)

// resolveViewerToken returns the visitor's anonymous token, minting one and
// setting the cookie only when the request carried none.
func resolveViewerToken(c *gin.Context) (token string, isNew bool) {
	if id, err := c.Cookie(viewerCookieName); err == nil && strings.TrimSpace(id) != "" {
		return id, false
	}

	token = uuid.NewString()
	secure := c.Request.TLS != nil

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     viewerCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		MaxAge:   viewerCookieMaxAge,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
	})

	return token, true
}
