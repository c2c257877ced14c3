package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/tournevent/rategate/internal/telemetry"
	"github.com/tournevent/rategate/pkg/carrier"
)

// Server is the HTTP surface of the rate gateway. It only routes and
// renders; all pipeline behavior lives behind the gateway.
type Server struct {
	port     int
	registry *carrier.Registry
	gateway  *carrier.Gateway
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance.
func New(cfg Config, registry *carrier.Registry, logger *otelzap.Logger) *Server {
	return &Server{
		port:     cfg.Port,
		registry: registry,
		gateway:  carrier.NewGateway(registry),
		logger:   logger,
		metrics:  telemetry.NewMetrics(),
	}
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Handler builds the route mux. Exposed separately so tests can drive the
// server through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/carriers", s.handleCarriers)
	mux.HandleFunc("/api/rates", s.handleRates)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"carriers": s.registry.Names()})
}

// ratesRequest is the POST /api/rates body.
type ratesRequest struct {
	Carrier string               `json:"carrier"`
	Request *carrier.RateRequest `json:"request"`
}

// errorResponse renders a structured pipeline error.
type errorResponse struct {
	Code      carrier.ErrorCode `json:"code"`
	Message   string            `json:"message"`
	Retryable bool              `json:"retryable"`
	Details   any               `json:"details,omitempty"`
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(errorResponse{
			Code:    carrier.CodeValidation,
			Message: "method not allowed, use POST",
		})
		return
	}

	var req ratesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{
			Code:    carrier.CodeValidation,
			Message: "invalid JSON: " + err.Error(),
		})
		return
	}
	if req.Carrier == "" || req.Request == nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{
			Code:    carrier.CodeValidation,
			Message: "carrier and request are required",
		})
		return
	}

	start := time.Now()
	resp, err := s.gateway.GetRates(r.Context(), req.Carrier, req.Request)
	duration := time.Since(start).Seconds()

	if err != nil {
		code := carrier.CodeOf(err)
		s.metrics.RecordRequest(req.Carrier, "error", duration)
		s.metrics.RecordError(req.Carrier, string(code))
		s.logger.Error("Rate request failed",
			zap.String("carrier", req.Carrier),
			zap.Error(err),
		)
		writeError(w, err)
		return
	}

	s.metrics.RecordRequest(req.Carrier, "ok", duration)
	json.NewEncoder(w).Encode(resp)
}

// writeError maps a pipeline error onto an HTTP response without
// downgrading it: the code, message, and retryable flag pass through.
func writeError(w http.ResponseWriter, err error) {
	body := errorResponse{
		Code:      carrier.CodeInternal,
		Message:   err.Error(),
		Retryable: carrier.IsRetryable(err),
	}
	if cerr, ok := asPipelineError(err); ok {
		body.Code = cerr.Code
		body.Message = cerr.Message
		body.Details = cerr.Details
	}

	w.WriteHeader(httpStatus(body.Code))
	json.NewEncoder(w).Encode(body)
}

func asPipelineError(err error) (*carrier.Error, bool) {
	var cerr *carrier.Error
	if errors.As(err, &cerr) {
		return cerr, true
	}
	return nil, false
}

func httpStatus(code carrier.ErrorCode) int {
	switch code {
	case carrier.CodeValidation:
		return http.StatusBadRequest
	case carrier.CodeUnsupportedCarrier:
		return http.StatusNotFound
	case carrier.CodeRateLimited:
		return http.StatusTooManyRequests
	case carrier.CodeTimeout:
		return http.StatusGatewayTimeout
	case carrier.CodeAuth, carrier.CodeUpstream, carrier.CodeNetwork, carrier.CodeMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
