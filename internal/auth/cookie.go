package auth

import (
	"net/http"
	"time"
)

// CookieConfig shapes the session cookie.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

func (c CookieConfig) sessionCookie(token string) *http.Cookie {
	maxAge := c.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultSessionTTL
	}
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c CookieConfig) clearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenFromRequest returns the session token carried by the auth cookie.
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
