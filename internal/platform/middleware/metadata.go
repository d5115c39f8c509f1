package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"donorlift/pkg/requestcontext"
)

// ClientMetadata extracts the client IP and a coarse device classification
// from the request and stores both in the context for logging and audit.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientIP(r.Context(), clientIP(r))
		ctx = requestcontext.WithDeviceClass(ctx, deviceClass(r.UserAgent()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop is the originating client.
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func deviceClass(uaHeader string) string {
	if uaHeader == "" {
		return "unknown"
	}
	ua := useragent.New(uaHeader)
	switch {
	case ua.Bot():
		return "bot"
	case ua.Mobile():
		return "mobile"
	default:
		return "desktop"
	}
}
