package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDKey contextKey = "request_id"

type RequestLogger struct {
	log     *logrus.Logger
	proxies *ProxyTrust
}

func NewRequestLogger(log *logrus.Logger, proxies *ProxyTrust) *RequestLogger {
	return &RequestLogger{log: log, proxies: proxies}
}

// Handle tags each request with an id (reusing X-Request-ID when sent)
// and logs status and latency once the handler returns.
func (m *RequestLogger) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), RequestIDKey, requestID)))

		path := r.URL.Path
		if raw := r.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		m.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"status":     rec.status,
			"latency":    time.Since(start).String(),
			"client_ip":  m.proxies.ClientIP(r),
			"method":     r.Method,
			"path":       path,
			"user_agent": r.UserAgent(),
		}).Info("request completed")
	})
}

// statusRecorder captures the status code. It forwards Flush so streamed
// responses still reach the client incrementally.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
