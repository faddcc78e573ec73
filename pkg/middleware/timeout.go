package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Timeout gives every request a deadline. A handler that has written nothing
// when it passes gets a 504 with the request ID in the body; anything it
// writes afterwards is discarded. A non-positive timeout disables the
// deadline.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &deadlineWriter{ResponseWriter: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
			}
			if !tw.expire() {
				return
			}
			id := GetRequestID(r.Context())
			slog.Warn("request deadline passed",
				"method", r.Method,
				"path", r.URL.Path,
				"timeout", timeout,
				"request_id", id,
			)
			body := map[string]string{"error": "request timeout"}
			if id != "" {
				body["requestId"] = id
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusGatewayTimeout)
			json.NewEncoder(w).Encode(body)
		})
	}
}

// deadlineWriter forwards writes until the deadline expires.
type deadlineWriter struct {
	http.ResponseWriter
	mu      sync.Mutex
	started bool
	expired bool
}

// expire closes the writer and reports whether the caller still owns the
// response, i.e. the handler never started writing.
func (dw *deadlineWriter) expire() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	dw.expired = true
	return !dw.started
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.expired {
		return
	}
	dw.started = true
	dw.ResponseWriter.WriteHeader(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}
	dw.started = true
	return dw.ResponseWriter.Write(b)
}
