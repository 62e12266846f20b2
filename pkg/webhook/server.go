// Package webhook implements the HTTP server that receives WhatsApp
// gateway callbacks and routes each message to a registered tool.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/joshdias/zaprouter/pkg/routing"
	"github.com/joshdias/zaprouter/pkg/tool"
	"github.com/rs/zerolog"
)

// Metrics receives routing events for instrumentation. Implementations must
// be safe for concurrent use.
type Metrics interface {
	MessageReceived(contentType string)
	MessageRejected(reason string)
	ToolExecution(toolName string, status string, duration time.Duration)
}

// noopMetrics is used when no metrics sink is configured.
type noopMetrics struct{}

func (noopMetrics) MessageReceived(string)                      {}
func (noopMetrics) MessageRejected(string)                      {}
func (noopMetrics) ToolExecution(string, string, time.Duration) {}

// Server is the inbound webhook HTTP server.
type Server struct {
	options        ServerOptions
	server         *http.Server
	service        *tool.Service
	registry       *tool.Registry
	phones         *routing.PhoneToolMap
	rateLimiter    *RateLimiter
	metrics        Metrics
	metricsHandler http.Handler
	logger         zerolog.Logger
	startTime      time.Time
	isShuttingDown bool
	shutdownMu     sync.RWMutex
	inFlightReqs   sync.WaitGroup
}

// NewServer creates a webhook server. The metrics sink and metricsHandler
// are optional; pass nil to disable them.
func NewServer(options ServerOptions, service *tool.Service, registry *tool.Registry, phones *routing.PhoneToolMap, metrics Metrics, metricsHandler http.Handler, logger zerolog.Logger) (*Server, error) {
	if options.Port == 0 {
		options.Port = 8080
	}
	if options.Host == "" {
		options.Host = "0.0.0.0"
	}
	if options.RateLimitPerMinute == 0 {
		options.RateLimitPerMinute = 100
	}
	if options.SyncWait == 0 {
		options.SyncWait = 30 * time.Second
	}
	if options.ShutdownTimeout == 0 {
		options.ShutdownTimeout = 30 * time.Second
	}

	if service == nil {
		return nil, fmt.Errorf("tool service is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if phones == nil {
		return nil, fmt.Errorf("phone tool map is required")
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &Server{
		options:        options,
		service:        service,
		registry:       registry,
		phones:         phones,
		rateLimiter:    NewRateLimiter(options.RateLimitPerMinute),
		metrics:        metrics,
		metricsHandler: metricsHandler,
		logger:         logger,
		startTime:      time.Now(),
	}, nil
}

// Start starts the webhook server and blocks until it is shut down.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/messages/receive", s.guard(s.handleReceiveMessage))
	mux.HandleFunc("/api/admin/mappings", s.guard(s.handleMappings))
	mux.HandleFunc("/api/admin/tools", s.guard(s.handleTools))

	if s.metricsHandler != nil {
		mux.Handle("/metrics", s.metricsHandler)
	}

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.options.Host, s.options.Port),
		Handler: mux,
	}

	s.logger.Info().
		Str("host", s.options.Host).
		Int("port", s.options.Port).
		Msg("Starting webhook server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start webhook server: %w", err)
	}

	return nil
}

// Stop gracefully stops the webhook server, waiting for in-flight requests.
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	s.isShuttingDown = true
	s.shutdownMu.Unlock()

	s.logger.Info().Msg("Shutting down webhook server")

	done := make(chan struct{})
	go func() {
		s.inFlightReqs.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("All in-flight requests completed")
	case <-time.After(s.options.ShutdownTimeout):
		s.logger.Warn().Msg("Shutdown timeout reached, forcing close")
	}

	s.rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown webhook server: %w", err)
		}
	}

	s.logger.Info().Msg("Webhook server stopped")
	return nil
}

// guard wraps a handler with the cross-cutting request checks: shutdown
// state, in-flight tracking, rate limiting, optional auth token, and panic
// recovery.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.shutdownMu.RLock()
		if s.isShuttingDown {
			s.shutdownMu.RUnlock()
			http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
			return
		}
		s.shutdownMu.RUnlock()

		s.inFlightReqs.Add(1)
		defer s.inFlightReqs.Done()

		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg("Panic in request handler")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		ip := s.clientIP(r)
		if !s.rateLimiter.Allow(ip) {
			retryAfter := s.rateLimiter.RetryAfter(ip)
			s.logger.Warn().
				Str("ip", ip).
				Str("path", r.URL.Path).
				Int("retryAfter", retryAfter).
				Msg("Rate limit exceeded")

			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		if s.options.AuthToken != "" && r.Header.Get("Client-Token") != s.options.AuthToken {
			s.logger.Warn().
				Str("ip", ip).
				Str("path", r.URL.Path).
				Msg("Invalid or missing client token")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status":    "ok",
		"uptime":    time.Since(s.startTime).Seconds(),
		"tools":     s.registry.Names(),
		"timestamp": time.Now().UnixMilli(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// writeJSON serializes body as the response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response body")
	}
}

// writeError sends a JSON error body with the given status code.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// clientIP extracts the client IP from the request.
func (s *Server) clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
