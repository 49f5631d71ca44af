package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/reflow/pkg/observability"
)

// instrument logs every request and reports it to the HTTP hooks. The
// route pattern is only complete once the sub-routers have matched, so
// OnRequest sees the raw path and everything after it sees the pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		dur := time.Since(start)
		route := routePattern(r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, dur)

		logf := s.logger.Info
		if status >= http.StatusInternalServerError {
			logf = s.logger.Error
		} else if r.URL.Path == "/healthz" {
			logf = s.logger.Debug
		}
		logf("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", dur,
			"request_id", middleware.GetReqID(r.Context()),
			"remote", r.RemoteAddr)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
