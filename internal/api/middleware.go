package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/NamanBalaji/mcfetch/internal/logger"
)

const (
	statusWarnThreshold  = 400
	statusErrorThreshold = 500
)

// requestLogger logs every request through zerolog once the handler returns.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		l := logger.L()

		evt := l.Debug()
		switch {
		case status >= statusErrorThreshold:
			evt = l.Error()
		case status >= statusWarnThreshold:
			evt = l.Warn()
		}

		path := r.URL.Path
		if raw := r.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		evt.
			Int("status", status).
			Str("method", r.Method).
			Str("path", path).
			Dur("latency", time.Since(start)).
			Str("client_ip", r.RemoteAddr).
			Int("bytes", ww.BytesWritten()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request completed")
	})
}
