package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the peer address of the request, without the port.
//
// The watchlist API is served directly (no CDN or reverse proxy in front of
// it), so X-Forwarded-For, X-Real-IP and Forwarded are never trusted: any
// client could set them to dodge the per-IP rate limits or to forge the IP
// recorded in the login audit.
func RealClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	// No port: a bare IPv4, IPv6 or bracketed IPv6 literal.
	return strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
}
