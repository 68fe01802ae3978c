package pjax

import (
	"context"
	"net/http"

	"github.com/partial-coffee/go-pjax/connector"
)

type ctxKey int

const (
	partialCtxKey ctxKey = iota
	containerCtxKey
)

// Middleware marks partial-page navigation requests on the request context,
// adds a Vary entry so shared caches keep partial and full responses for the
// same URL apart, and emits the connector's conventional response headers.
func Middleware(conn connector.Connector) func(http.Handler) http.Handler {
	if conn == nil {
		conn = connector.NewPJAX(nil)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", conn.RequestHeader())

			isPartial := conn.IsPartial(r)
			if isPartial {
				conn.WriteResponseHeaders(w, r)
			}

			ctx := context.WithValue(r.Context(), partialCtxKey, isPartial)
			ctx = context.WithValue(ctx, containerCtxKey, conn.ContainerValue(r))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsPJAX reports whether r is a partial-page navigation request. It prefers
// the verdict stamped by Middleware and falls back to the X-PJAX header.
func IsPJAX(r *http.Request) bool {
	if v, ok := r.Context().Value(partialCtxKey).(bool); ok {
		return v
	}

	return r.Header.Get("X-PJAX") != ""
}

// RequestedContainer returns the container the client asked for, or "".
func RequestedContainer(r *http.Request) string {
	if v, ok := r.Context().Value(containerCtxKey).(string); ok {
		return v
	}

	return r.Header.Get("X-PJAX-Container")
}
