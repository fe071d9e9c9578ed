package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jonathan/contactlens/internal/config"
	"github.com/jonathan/contactlens/internal/extraction"
	"github.com/jonathan/contactlens/internal/llm"
	"github.com/jonathan/contactlens/internal/pipeline"
	"github.com/jonathan/contactlens/internal/store"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	pipeline    *pipeline.Pipeline
	llmClient   llm.Client
	rateLimiter *limiter
}

// New creates a new server instance with a live Gemini-backed pipeline.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	modelConfig := llm.DefaultGeminiConfig().
		WithModel(llm.TierPro, cfg.ModelPro).
		WithModel(llm.TierFlash, cfg.ModelFlash)

	client, err := llm.NewClient(ctx, modelConfig, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	extractor := extraction.NewExtractor(client)
	p := pipeline.New(extractor, store.New())

	s := NewWithPipeline(cfg.Port, p)
	s.llmClient = client
	return s, nil
}

// NewWithPipeline creates a server around an existing pipeline. Used directly
// by tests with a stubbed model client.
func NewWithPipeline(port int, p *pipeline.Pipeline) *Server {
	s := &Server{
		pipeline:    p,
		rateLimiter: newLimiter(LoadRateLimitConfig()),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.router()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Model calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// router builds the request mux.
func (s *Server) router() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /extract", s.handleExtract)
	mux.HandleFunc("POST /improve", s.handleImprove)
	mux.HandleFunc("POST /confirm", s.handleConfirm)
	mux.HandleFunc("GET /draft", s.handleDraft)
	mux.HandleFunc("GET /contacts", s.handleListContacts)
	mux.HandleFunc("GET /contacts/stats", s.handleStats)
	mux.HandleFunc("GET /graph", s.handleGraph)
	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.llmClient != nil {
		if err := s.llmClient.Close(); err != nil {
			log.Printf("Error closing LLM client: %v", err)
		}
	}

	log.Println("Server stopped")
	return nil
}

// Handler exposes the full middleware-wrapped handler (for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// modelEndpoints are the routes that trigger an outbound model call.
var modelEndpoints = map[string]bool{
	"/extract": true,
	"/improve": true,
	"/confirm": true,
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := extractClientID(r)
		if !s.rateLimiter.allow(clientID, modelEndpoints[r.URL.Path]) {
			s.errorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
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
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
func extractClientID(r *http.Request) string {
	// Honor the first address in X-Forwarded-For when behind a proxy
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx >= 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
