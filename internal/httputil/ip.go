package httputil

import (
	"net"
	"net/http"
)

// ClientIP returns the host part of RemoteAddr. Forwarding headers are not read here;
// behind a trusted proxy the router rewrites RemoteAddr from them first.
func ClientIP(r *http.Request) string {
	// RemoteAddr format is "IP:port"
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
