package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/julianstephens/pjournal/internal/auth"
	"github.com/julianstephens/pjournal/internal/errors"
	"github.com/julianstephens/pjournal/internal/logger"
)

// RequireAuth rejects requests without a valid bearer token and stores the
// token's owner on the request context.
func RequireAuth(signer *auth.Signer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		tok, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || strings.TrimSpace(tok) == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing bearer token", Kind: "unauthorized"})
			return
		}
		claims, err := signer.Parse(strings.TrimSpace(tok))
		if err != nil {
			logger.Debug("Rejected token", "error", err)
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token", Kind: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithOwner(r.Context(), claims.UID)))
	})
}

// SecureHeaders adds standard security headers.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LogRequests logs one debug line per request.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("Request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
	})
}

// recoverPanics turns a handler panic into a 500.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("Handler panic", "path", r.URL.Path, "panic", p)
				writeError(w, errors.New(errors.KindInternal, "panic: %v", p))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
