package security

import (
	"net/http"
	"time"
)

const AuthCookieName = "jwt"

// CookieManager writes and clears the httpOnly auth cookie.
type CookieManager struct {
	domain   string
	secure   bool
	sameSite http.SameSite
	ttl      time.Duration
}

func NewCookieManager(domain string, secure bool, sameSite string, ttl time.Duration) *CookieManager {
	return &CookieManager{
		domain:   domain,
		secure:   secure,
		sameSite: parseSameSite(sameSite),
		ttl:      ttl,
	}
}

func (c *CookieManager) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}

func (c *CookieManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}

func parseSameSite(v string) http.SameSite {
	switch v {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
