package middleware

import (
	"net/http"
	"strconv"

	"idea-validator-app/internal/metrics"
)

// Metrics リクエスト数をメソッドとステータス別に記録
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		metrics.ObserveHTTPRequest(r.Method, strconv.Itoa(rw.statusCode))
	})
}
