package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/supplierdb/internal/core"
)

// clientIP returns the address TrustedRealIP settled on, without the port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// withRequestMetadata adds IP and User-Agent to the context so service log
// entries name the caller.
func withRequestMetadata(r *http.Request) context.Context {
	return core.ContextWithClient(r.Context(), clientIP(r), r.UserAgent())
}
