// Package api exposes the trading engine over a small JSON control surface.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-pilot/internal/config"
	"github.com/rxtech-lab/argo-pilot/internal/engine"
	"github.com/rxtech-lab/argo-pilot/internal/logger"
	"go.uber.org/zap"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope of every reply.
type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Server serves the control routes of one engine.
type Server struct {
	engine     engine.TradingEngine
	router     *mux.Router
	httpServer *http.Server
	listener   net.Listener
	logger     *logger.Logger
}

// NewServer creates a server for eng. Routes are registered immediately so
// Handler can be used without Start.
func NewServer(eng engine.TradingEngine, log *logger.Logger) *Server {
	s := &Server{
		engine:     eng,
		router:     mux.NewRouter(),
		httpServer: nil,
		listener:   nil,
		logger:     log.Component("api"),
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	s.router.HandleFunc("/bot/start", s.handleStart).Methods(http.MethodPost)
	s.router.HandleFunc("/bot/stop", s.handleStop).Methods(http.MethodPost)
	s.router.HandleFunc("/bot/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/trades/active", s.handleActiveTrades).Methods(http.MethodGet)
	s.router.HandleFunc("/trades/history", s.handleTradeHistory).Methods(http.MethodGet)
	s.router.HandleFunc("/balance", s.handleBalance).Methods(http.MethodGet)
	s.router.HandleFunc("/trading-pairs", s.handleTradingPairs).Methods(http.MethodGet)
	s.router.HandleFunc("/config/schema", s.handleConfigSchema).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("route %s not found", r.URL.Path))
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path))
	})
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on address and serves in the background.
// If address is ":0", a random available port is used.
func (s *Server) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	s.logger.Info("API server listening", zap.String("address", listener.Addr().String()))

	return nil
}

// Addr returns the address the server listens on, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// Shutdown stops accepting requests and waits for in flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// handleStart handles POST /bot/start
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	// the loop must outlive the request
	if err := s.engine.Start(context.WithoutCancel(r.Context())); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	writeSuccess(w, map[string]any{
		"running": true,
		"message": "Trading bot started",
	})
}

// handleStop handles POST /bot/stop
func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	if err := s.engine.Stop(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	writeSuccess(w, map[string]any{
		"running": false,
		"message": "Trading bot stopped",
	})
}

// handleStatus handles GET /bot/status
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, s.engine.Status())
}

// handleActiveTrades handles GET /trades/active
func (s *Server) handleActiveTrades(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, map[string]any{
		"trades": s.engine.ActivePositions(),
	})
}

// handleTradeHistory handles GET /trades/history
func (s *Server) handleTradeHistory(w http.ResponseWriter, _ *http.Request) {
	entries, err := s.engine.TradeHistory()
	if err != nil {
		s.logger.Error("Failed to read trade history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	writeSuccess(w, map[string]any{
		"trades": entries,
	})
}

// handleBalance handles GET /balance
func (s *Server) handleBalance(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, map[string]any{
		"balance": s.engine.Balance(),
	})
}

// handleTradingPairs handles GET /trading-pairs
func (s *Server) handleTradingPairs(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, map[string]any{
		"pairs": s.engine.TradingPairs(),
	})
}

// handleConfigSchema handles GET /config/schema
func (s *Server) handleConfigSchema(w http.ResponseWriter, _ *http.Request) {
	schema, err := config.Schema()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	writeSuccess(w, json.RawMessage(schema))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)

		s.logger.Debug("Request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(started)),
		)
	})
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Status: StatusSuccess, Data: data, Error: ""})
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, Response{Status: StatusError, Data: nil, Error: message})
}

func writeJSON(w http.ResponseWriter, code int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(response)
}
