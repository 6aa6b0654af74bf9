package middleware

import (
	"net/http"
	"sync/atomic"
)

// RequestCounter tracks served requests and error responses. It is written
// by the middleware on every request and read by the metrics endpoint.
type RequestCounter struct {
	requests atomic.Int64
	errors   atomic.Int64
}

func NewRequestCounter() *RequestCounter {
	return &RequestCounter{}
}

func (rc *RequestCounter) Requests() int64 { return rc.requests.Load() }
func (rc *RequestCounter) Errors() int64   { return rc.errors.Load() }

// Middleware counts every request, and every 4xx or 5xx response as an error.
func (rc *RequestCounter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc.requests.Add(1)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		if rw.statusCode >= http.StatusBadRequest {
			rc.errors.Add(1)
		}
	})
}
