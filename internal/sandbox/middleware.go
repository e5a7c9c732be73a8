package sandbox

import (
	"bytes"
	"context"
	"crypto/subtle"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexbotov/gpay/pkg/gpay"
	"github.com/alexbotov/gpay/pkg/gpay/signing"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type contextKey int

const paramsKey contextKey = iota

// paramsFrom returns the verified request parameters
func paramsFrom(ctx context.Context) signing.Params {
	p, _ := ctx.Value(paramsKey).(signing.Params)
	return p
}

// RecoveryMiddleware turns panics into 500 responses
func (s *Server) RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic serving request",
					zap.String("path", r.URL.Path),
					zap.Any("panic", err))
				respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs every request and feeds the request metrics
func (s *Server) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(start)
		s.metrics.observe(route, rec.status, elapsed)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
			zap.String("remote", r.RemoteAddr))
	})
}

// AuthMiddleware checks the bearer API key
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get(gpay.HeaderAuthorization)
		if authHeader == "" {
			s.metrics.rejected("no_token")
			respondError(w, http.StatusUnauthorized, "NO_TOKEN", "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			s.metrics.rejected("invalid_token_format")
			respondError(w, http.StatusUnauthorized, "INVALID_TOKEN_FORMAT", "Invalid authorization header format")
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(s.credentials.APIKey)) != 1 {
			s.metrics.rejected("invalid_token")
			respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SignatureMiddleware verifies X-Signature-Salt and X-Signature-Hash over the
// JSON body and hands the typed parameters to the handler.
func (s *Server) SignatureMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		salt := r.Header.Get(gpay.HeaderSignatureSalt)
		hash := r.Header.Get(gpay.HeaderSignatureHash)
		if salt == "" || hash == "" {
			s.metrics.rejected("missing_signature")
			respondError(w, http.StatusUnauthorized, "MISSING_SIGNATURE", "Signature headers required")
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Unreadable request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		params, err := signing.ParseObject(body)
		if err != nil {
			s.metrics.rejected("malformed_body")
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body must be a flat JSON object")
			return
		}

		if !signing.Verify(hash, salt, s.credentials.Password, params, s.credentials.SecretKey) {
			s.metrics.rejected("signature_mismatch")
			s.logger.Warn("request signature mismatch", zap.String("path", r.URL.Path))
			respondError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "Request signature does not match")
			return
		}

		if ts, ok := params["request_timestamp"]; !ok || ts.String() == "" {
			respondError(w, http.StatusBadRequest, "MISSING_TIMESTAMP", "request_timestamp is required")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), paramsKey, params)))
	})
}
