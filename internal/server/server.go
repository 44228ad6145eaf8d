// Package server provides the HTTP API for the resume builder.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/jonathan/hash-resume/internal/server/ratelimit"
	"github.com/jonathan/hash-resume/internal/session"
)

// maxBodyBytes caps request bodies; a full document is a few KB.
const maxBodyBytes = 1 << 20

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	session     *session.Session
	rateLimiter *ratelimit.Limiter
	keepAlive   time.Duration

	// closing ends long-lived event streams when the server shuts down
	closing   chan struct{}
	closeOnce sync.Once
}

// Config holds server configuration
type Config struct {
	Port      int
	Session   *session.Session
	RateLimit *ratelimit.Config // nil loads RATE_LIMIT_* from the environment
	// KeepAlive is the SSE comment interval; 0 uses 15s.
	KeepAlive time.Duration
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Session == nil {
		return nil, errors.New("server requires a session")
	}
	rl := cfg.RateLimit
	if rl == nil {
		rl = ratelimit.LoadConfig()
	}
	keepAlive := cfg.KeepAlive
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}

	s := &Server{
		session:     cfg.Session,
		rateLimiter: ratelimit.NewLimiter(rl),
		keepAlive:   keepAlive,
		closing:     make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Document
	mux.HandleFunc("GET /document", s.handleGetDocument)
	mux.HandleFunc("PUT /document", s.handleReplaceDocument)
	mux.HandleFunc("POST /document/edits", s.handleEdit)
	mux.HandleFunc("POST /document/{list}/entries", s.handleAddEntry)
	mux.HandleFunc("DELETE /document/{list}/entries/{index}", s.handleRemoveEntry)
	mux.HandleFunc("POST /document/skills", s.handleAddSkill)
	mux.HandleFunc("POST /document/skills/merge", s.handleMergeSkills)
	mux.HandleFunc("DELETE /document/skills/{index}", s.handleRemoveSkill)

	// Reordering
	mux.HandleFunc("GET /drag", s.handleGetDrag)
	mux.HandleFunc("POST /drag/start", s.handleDragStart)
	mux.HandleFunc("POST /drag/drop", s.handleDragDrop)
	mux.HandleFunc("POST /drag/cancel", s.handleDragCancel)

	// AI content
	mux.HandleFunc("POST /ai/draft", s.handleDraft)
	mux.HandleFunc("POST /ai/ats", s.handleATS)
	mux.HandleFunc("POST /ai/job-match", s.handleJobMatch)
	mux.HandleFunc("POST /ai/analyze", s.handleAnalyzeAll)
	mux.HandleFunc("POST /ai/job-skills", s.handleJobSkills)
	mux.HandleFunc("GET /job-description", s.handleGetJobDescription)
	mux.HandleFunc("PUT /job-description", s.handleSetJobDescription)
	mux.HandleFunc("POST /job-description/fetch", s.handleFetchJobDescription)
	mux.HandleFunc("GET /analysis", s.handleAnalyses)

	// Payment and export
	mux.HandleFunc("GET /payment", s.handleGetPayment)
	mux.HandleFunc("POST /payment/open", s.handleOpenPayment)
	mux.HandleFunc("PUT /payment/reference", s.handleSetReference)
	mux.HandleFunc("POST /payment/submit", s.handleSubmitPayment)
	mux.HandleFunc("POST /payment/close", s.handleClosePayment)
	mux.HandleFunc("GET /payment/events", s.handlePaymentEvents)
	mux.HandleFunc("GET /export", s.handleExport)
	mux.HandleFunc("POST /export/request", s.handleRequestExport)

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout: 30 * time.Second,
		// no WriteTimeout: payment events stream for as long as the modal is open
		IdleTimeout: 60 * time.Second,
	}

	return s, nil
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until SIGINT/SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is done, then shuts down gracefully and closes the
// session so pending edits are written.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[SERVER] Listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Println("[SERVER] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown waits for handlers, so event streams must end first
	s.closeOnce.Do(func() { close(s.closing) })
	shutdownErr := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()

	if err := s.session.Close(shutdownCtx); err != nil {
		log.Printf("[SERVER] Failed to save document on shutdown: %v", err)
	}
	if shutdownErr != nil {
		return fmt.Errorf("server shutdown failed: %w", shutdownErr)
	}
	log.Println("[SERVER] Stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE working through the logging middleware.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[SERVER] %s %s %d in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[SERVER] Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure maps err to a status code and writes it.
func (s *Server) failure(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[SERVER] Internal error: %v", err)
	}
	s.errorResponse(w, status, err.Error())
}

// decodeJSON reads a JSON body into v and runs its Validate method if it has one.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if validatable, ok := v.(interface{ Validate() error }); ok {
		if err := validatable.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// pathIndex parses a non-negative integer path value.
func pathIndex(r *http.Request, name string) (int, error) {
	index, err := strconv.Atoi(r.PathValue(name))
	if err != nil || index < 0 {
		return 0, &ErrValidation{Field: name, Message: "must be a non-negative integer"}
	}
	return index, nil
}

// extractClientID extracts the client identifier from the request.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"tier":      info.Tier,
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	log.Printf("[SERVER] Rate limit exceeded: tier=%s limit=%d", info.Tier, info.Limit)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
