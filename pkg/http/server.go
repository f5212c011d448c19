package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"speechwell-server/pkg/errors"
	"speechwell-server/pkg/metrics"
	"speechwell-server/pkg/store"
)

// AMQPStatusProvider reports broker connectivity for health checks.
type AMQPStatusProvider interface {
	IsConnected() bool
}

// Server is the HTTP front of the service: the webhook endpoint,
// results API, health checks, metrics and the WebSocket stream all
// hang off its mux.
type Server struct {
	config             *Config
	logger             *logrus.Logger
	httpServer         *http.Server
	mux                *http.ServeMux
	resultStore        *store.ResultStore
	wsHub              *ResultHub
	amqpClient         AMQPStatusProvider
	startTime          time.Time
	additionalHandlers map[string]http.HandlerFunc
}

// NewServer creates a new HTTP server instance
func NewServer(logger *logrus.Logger, config *Config, resultStore *store.ResultStore) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	server := &Server{
		config:             config,
		logger:             logger,
		resultStore:        resultStore,
		startTime:          time.Now(),
		additionalHandlers: make(map[string]http.HandlerFunc),
	}

	mux := http.NewServeMux()
	server.mux = mux

	// Register standard endpoints
	mux.HandleFunc("/health", server.HealthHandler)
	mux.HandleFunc("/health/live", server.LivenessHandler)
	mux.HandleFunc("/health/ready", server.ReadinessHandler)
	mux.HandleFunc("/status", server.statusHandler)

	if resultStore != nil {
		resultsHandler := NewResultsHandler(logger, resultStore)
		mux.HandleFunc("/api/results", resultsHandler.HandleList)
		mux.HandleFunc("/api/results/latest", resultsHandler.HandleLatest)
	}

	if config.EnableMetrics {
		if registry := metrics.GetRegistry(); registry != nil {
			promHandler := promhttp.HandlerFor(
				registry,
				promhttp.HandlerOpts{
					EnableOpenMetrics: true,
					Registry:          registry,
				},
			)
			mux.Handle("/metrics", promHandler)
			logger.Info("Prometheus metrics endpoint enabled at /metrics")
		} else {
			logger.Warn("Metrics enabled but registry not initialized, /metrics not registered")
		}
	} else {
		logger.Info("Metrics endpoint disabled")
	}

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return server
}

// RegisterHandler adds a custom handler to the server
func (s *Server) RegisterHandler(path string, handler http.HandlerFunc) {
	s.additionalHandlers[path] = handler

	if s.mux != nil {
		s.mux.HandleFunc(path, handler)
	}

	s.logger.WithField("path", path).Info("Registered custom HTTP handler")
}

// SetResultHub wires the WebSocket hub into the server and exposes it
// at /ws/results.
func (s *Server) SetResultHub(hub *ResultHub) {
	s.wsHub = hub

	if s.mux != nil {
		s.mux.HandleFunc("/ws/results", hub.ServeWs)
		s.logger.Info("Results WebSocket endpoint registered at /ws/results")
	}
}

// SetAMQPClient sets the AMQP client reference for health checks
func (s *Server) SetAMQPClient(client AMQPStatusProvider) {
	s.amqpClient = client
}

// Start starts the HTTP server in a goroutine
func (s *Server) Start() {
	s.logger.WithField("port", s.config.Port).Info("Starting HTTP server")

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("HTTP server failed")
		}
	}()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}

// statusHandler handles the /status endpoint
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.WithField("endpoint", "/status").Debug("Status endpoint accessed")

	status := map[string]interface{}{
		"status":     "ok",
		"uptime":     time.Since(s.startTime).String(),
		"started_at": s.startTime.Format(time.RFC3339),
	}

	if s.resultStore != nil {
		status["results_stored"] = s.resultStore.Len()
		status["result_capacity"] = s.resultStore.Capacity()
	}
	if s.wsHub != nil {
		status["ws_clients"] = s.wsHub.ClientCount()
	}
	if s.amqpClient != nil {
		status["amqp_connected"] = s.amqpClient.IsConnected()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// ErrorResponse sends a standardized error response
func (s *Server) ErrorResponse(w http.ResponseWriter, err error) {
	errors.WriteError(w, err)
	s.logger.WithError(err).Warn("HTTP error response sent")
}
