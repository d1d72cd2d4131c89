// Package http is the JSON API over the finance services. Every endpoint is
// scoped to the owner carried in the X-User-ID header.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/importer"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// requestTimeout bounds each request's store round-trips. A timed-out
// operation rolls back with its transaction, so nothing half-applies.
const requestTimeout = 15 * time.Second

type Server struct {
	http.Server
	catalog   *services.CatalogService
	ledger    *services.LedgerService
	invoices  *services.InvoiceService
	recurring *services.RecurringService
	importer  *importer.Importer

	rateLimiter *rateLimiter

	// read-model caches, invalidated per user on any ledger write
	invoiceCache    *cache.LRUCache[services.Invoice]
	projectionCache *cache.LRUCache[core.Projection]
	cacheManager    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes and caches, returning a ready-to-run http.Server.
func NewServer(addr string, catalog *services.CatalogService, ledger *services.LedgerService, invoices *services.InvoiceService, recurring *services.RecurringService, imp *importer.Importer) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		catalog:         catalog,
		ledger:          ledger,
		invoices:        invoices,
		recurring:       recurring,
		importer:        imp,
		rateLimiter:     newRateLimiter(),
		invoiceCache:    cache.NewLRUCache[services.Invoice](200, 5*time.Minute),
		projectionCache: cache.NewLRUCache[core.Projection](100, 5*time.Minute),
		cacheManager:    cache.NewManager(),
	}

	s.cacheManager.Register(s.invoiceCache)
	s.cacheManager.Register(s.projectionCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /accounts", s.guard(s.handleCreateAccount))
	mux.HandleFunc("GET /accounts", s.guard(s.handleListAccounts))
	mux.HandleFunc("GET /accounts/{id}", s.guard(s.handleGetAccount))
	mux.HandleFunc("PUT /accounts/{id}", s.guard(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /accounts/{id}", s.guard(s.handleDeleteAccount))
	mux.HandleFunc("POST /accounts/{id}/adjust-balance", s.guard(s.handleAdjustBalance))
	mux.HandleFunc("GET /accounts/{id}/invoice", s.guard(s.handleInvoice))
	mux.HandleFunc("POST /accounts/{id}/import", s.guard(s.handleImport))

	mux.HandleFunc("POST /transactions", s.guard(s.handleCreateTransaction))
	mux.HandleFunc("GET /transactions", s.guard(s.handleListTransactions))
	mux.HandleFunc("GET /transactions/{id}", s.guard(s.handleGetTransaction))
	mux.HandleFunc("PUT /transactions/{id}", s.guard(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.guard(s.handleDeleteTransaction))
	mux.HandleFunc("POST /transfers", s.guard(s.handleTransfer))

	mux.HandleFunc("POST /categories", s.guard(s.handleCreateCategory))
	mux.HandleFunc("GET /categories", s.guard(s.handleListCategories))
	mux.HandleFunc("DELETE /categories/{id}", s.guard(s.handleDeleteCategory))

	mux.HandleFunc("PUT /budgets", s.guard(s.handleSetBudget))
	mux.HandleFunc("GET /budgets", s.guard(s.handleListBudgets))
	mux.HandleFunc("DELETE /budgets/{id}", s.guard(s.handleDeleteBudget))

	mux.HandleFunc("POST /recurring-rules", s.guard(s.handleCreateRecurringRule))
	mux.HandleFunc("GET /recurring-rules", s.guard(s.handleListRecurringRules))
	mux.HandleFunc("PATCH /recurring-rules/{id}", s.guard(s.handleSetRecurringRuleActive))
	mux.HandleFunc("DELETE /recurring-rules/{id}", s.guard(s.handleDeleteRecurringRule))
	mux.HandleFunc("POST /recurring-rules/generate", s.guard(s.handleGenerate))
	mux.HandleFunc("GET /projection", s.guard(s.handleProjection))

	mux.HandleFunc("POST /holdings", s.guard(s.handleUpsertHolding))
	mux.HandleFunc("GET /holdings", s.guard(s.handleListHoldings))
	mux.HandleFunc("DELETE /holdings/{id}", s.guard(s.handleDeleteHolding))

	return s
}

// guard adds security headers, request id, rate limiting and request logging,
// and rejects requests without an owner id.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		ctx = context.WithValue(ctx, requestIDKey, requestID)
		r = r.WithContext(ctx)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if userID(r) == 0 {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid " + UserIDHeader + " header"})
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// invalidateUser drops the user's cached read models after a write.
func (s *Server) invalidateUser(uid int64) {
	s.invoiceCache.DeletePrefix(cache.UserPrefix(uid))
	s.projectionCache.DeletePrefix(cache.UserPrefix(uid))
}

// Shutdown stops the HTTP server and background cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
