// Package device derives coarse client metadata from request headers.
// It is intentionally keyword-based; session listings only need enough
// detail for a user to recognize their own devices.
package device

import (
	"net"
	"net/http"
	"strings"
)

type Info struct {
	Type    string
	Browser string
	OS      string
}

// Parse classifies a User-Agent string into device type, browser and
// operating system. Unknown values come back as "unknown".
func Parse(userAgent string) Info {
	ua := strings.ToLower(userAgent)
	info := Info{Type: "desktop", Browser: "unknown", OS: "unknown"}
	if ua == "" {
		info.Type = "unknown"
		return info
	}

	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		info.Type = "tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		info.Type = "mobile"
	}

	// Order matters: Edge and Opera embed "chrome", Chrome embeds
	// "safari".
	switch {
	case strings.Contains(ua, "edg"):
		info.Browser = "edge"
	case strings.Contains(ua, "opr") || strings.Contains(ua, "opera"):
		info.Browser = "opera"
	case strings.Contains(ua, "chrome"):
		info.Browser = "chrome"
	case strings.Contains(ua, "firefox"):
		info.Browser = "firefox"
	case strings.Contains(ua, "safari"):
		info.Browser = "safari"
	}

	switch {
	case strings.Contains(ua, "windows"):
		info.OS = "windows"
	case strings.Contains(ua, "android"):
		info.OS = "android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ios"):
		info.OS = "ios"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macintosh"):
		info.OS = "macos"
	case strings.Contains(ua, "linux"):
		info.OS = "linux"
	}

	return info
}

// ClientIP resolves the originating address, preferring proxy headers
// over the socket peer.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
