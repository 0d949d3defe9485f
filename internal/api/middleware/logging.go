package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"
)

// statusRecorder wraps an http.ResponseWriter to track response status and
// size, and injects tracing headers on first write.
type statusRecorder struct {
	http.ResponseWriter
	status    int
	written   int64
	start     time.Time
	requestID string
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.Header().Set("X-Request-ID", r.requestID)
	r.ResponseWriter.Header().Set("X-Processing-Time", time.Since(r.start).String())
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.written += int64(n)
	return n, err
}

// Logging logs each request's outcome and recovers handler panics.
func Logging(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = fmt.Sprintf("req_%d", start.UnixNano())
			}

			rec := &statusRecorder{
				ResponseWriter: w,
				start:          start,
				requestID:      requestID,
			}

			defer func() {
				if err := recover(); err != nil {
					logger.Printf("PANIC [%s] %s %s: %v", requestID, r.Method, r.URL.Path, err)
					http.Error(rec, "Internal Server Error", http.StatusInternalServerError)
				}

				logger.Printf("[%s] %s %s %d %d bytes %s",
					requestID, r.Method, r.URL.Path, rec.status, rec.written, time.Since(start))
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
