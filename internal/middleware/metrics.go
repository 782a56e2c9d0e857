package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// HTTPMetricsRecorder はHTTPメトリクス記録のインターフェース。
// metrics.Collectorの部分集合として定義する。
type HTTPMetricsRecorder interface {
	RecordHTTPRequest(method, path string, status int, duration time.Duration)
}

// NewMetricsMiddleware はリクエストごとのメトリクスを記録するミドルウェアを返す。
// パスラベルにはchiのルートパターンを使用し、IDなどのパスパラメータで
// ラベルが無限に増えないようにする。
func NewMetricsMiddleware(recorder HTTPMetricsRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}

			recorder.RecordHTTPRequest(r.Method, path, rec.statusCode, time.Since(start))
		})
	}
}
