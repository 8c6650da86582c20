package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"bouquetStore/models"
	"bouquetStore/services"
)

type claimsKey struct{}

func withClaims(ctx context.Context, c *models.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// claimsFrom returns the caller's claims; only routes behind AuthMiddleware may call it.
func claimsFrom(r *http.Request) *models.Claims {
	c, _ := r.Context().Value(claimsKey{}).(*models.Claims)
	if c == nil {
		return &models.Claims{}
	}
	return c
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)
		slog.Info("HTTP Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.statusCode,
			"duration", time.Since(start),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (h *Handler) ErrorHandleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic occurred", "panic", rec, "stack", string(debug.Stack()))
				WriteErrorResponse(w, models.ErrServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware requires a valid bearer token with a live session.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			WriteErrorResponse(w, models.ErrUnauthorized)
			return
		}
		claims, err := h.us.CheckAuth(r.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			WriteErrorResponse(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// StaffMiddleware must run after AuthMiddleware.
func (h *Handler) StaffMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !services.IsStaff(claimsFrom(r).Role, h.staffRoles) {
			WriteErrorResponse(w, models.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
