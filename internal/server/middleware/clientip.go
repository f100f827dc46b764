package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

var clientIPKey = contextKey{"client-ip"}

// ClientIP stores the caller's address in the request context. The first
// X-Forwarded-For hop wins when present, otherwise the connection's remote
// address with the port stripped.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := remoteIP(r)
		ctx := context.WithValue(r.Context(), clientIPKey, ip)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFrom returns the address stored by ClientIP, or "" when absent.
func ClientIPFrom(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
