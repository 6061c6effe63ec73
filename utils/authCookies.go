package utils

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// SetAuthCookies stores both tokens in http-only cookies. secure is off only
// for local development over plain http.
func SetAuthCookies(c *gin.Context, accessToken, refreshToken string, secure bool) {
	setCookie(c, AccessTokenCookie, accessToken, AccessTokenExpiry, secure)
	if refreshToken != "" {
		setCookie(c, RefreshTokenCookie, refreshToken, RefreshTokenExpiry, secure)
	}
}

func setCookie(c *gin.Context, name, value string, expiry time.Duration, secure bool) {
	c.SetCookie(name, value, int(expiry.Seconds()), "/", "", secure, true)
}

func ClearAuthCookies(c *gin.Context, secure bool) {
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}
