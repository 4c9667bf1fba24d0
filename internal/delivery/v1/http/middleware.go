package http

import (
	"net/http"
	"time"

	"github.com/DRSN-tech/cartify-backend/internal/metrics"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// accessLog пишет строку лога и метрики на каждый запрос.
// Эндпоинт в метриках берётся из шаблона маршрута chi, чтобы не плодить метки.
func accessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			endpoint := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					endpoint = pattern
				}
			}
			metrics.RecordAPIRequest(r.Method, endpoint, status, elapsed)

			log.With("request_id", middleware.GetReqID(r.Context())).
				Infof("%s %s %d %s", r.Method, r.URL.Path, status, elapsed)
		})
	}
}
