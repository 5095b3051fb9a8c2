package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muurk/multical/internal/domoticz"
	"github.com/muurk/multical/internal/logging"
	"github.com/muurk/multical/internal/meter"
	"github.com/muurk/multical/internal/processing"
	"github.com/muurk/multical/internal/protocol"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultListenAddr is the default exporter listen address
const DefaultListenAddr = ":9497"

// Config holds the exporter configuration
type Config struct {
	ListenAddr  string        // HTTP listen address
	Device      string        // Serial device the optical probe is attached to
	ReadTimeout time.Duration // Per-byte serial read timeout
	TraceFile   string        // Wire trace output path (empty = disabled)
	StoreHost   string        // Domoticz host (empty = store pushes disabled)
	StorePort   int
	Params      []processing.Parameter
	Registers   []uint16 // polled in addition to parameter-bound registers
	Interval    time.Duration
	LogLevel    string
	LogFile     string // Rolling log file path (empty = stderr only)
}

// Server ties the poller, the metrics registry, and the HTTP surface
// together into one daemon
type Server struct {
	config     *Config
	registry   *prometheus.Registry
	metrics    *Metrics
	hub        *Hub
	poller     *Poller
	httpServer *http.Server
	reader     *meter.Reader
	traceFile  *os.File
	cancel     context.CancelFunc
}

// New creates a new exporter Server instance
func New(config *Config) (*Server, error) {
	// Initialize logging
	var err error
	if config.LogFile != "" {
		err = logging.InitializeWithFile(config.LogLevel, config.LogFile)
	} else {
		err = logging.Initialize(config.LogLevel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	var trace *protocol.Trace
	var traceFile *os.File
	if config.TraceFile != "" {
		traceFile, err = os.OpenFile(config.TraceFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace file: %w", err)
		}
		trace = protocol.NewTrace(traceFile)
	}

	reader, err := meter.Open(meter.Config{
		Device:      config.Device,
		ReadTimeout: config.ReadTimeout,
		Trace:       trace,
	})
	if err != nil {
		if traceFile != nil {
			_ = traceFile.Close()
		}
		return nil, fmt.Errorf("failed to open meter: %w", err)
	}

	var store Store
	if config.StoreHost != "" {
		client := domoticz.NewClient(config.StoreHost, config.StorePort)
		// Startup continues on ping failure; pushes carry their own retries
		if version, err := client.Ping(); err != nil {
			logging.Warn("Store unreachable at startup",
				zap.String("host", config.StoreHost),
				zap.Error(err))
		} else {
			logging.Info("Store connected", zap.String("version", version))
		}
		store = client
	}

	registry := NewRegistry()
	metrics := NewMetrics(registry)
	hub := NewHub()
	poller := NewPoller(PollerConfig{
		Reader:    reader,
		Store:     store,
		Params:    config.Params,
		Registers: config.Registers,
		Interval:  config.Interval,
		Metrics:   metrics,
		Hub:       hub,
	})

	addr := config.ListenAddr
	if addr == "" {
		addr = DefaultListenAddr
	}

	httpServer := &http.Server{
		Addr:    addr,
		Handler: newRouter(MetricsHandler(registry), poller, hub),
		// Only the header timeout: the WebSocket endpoint hijacks the
		// connection and a server write timeout would poison it
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		config:     config,
		registry:   registry,
		metrics:    metrics,
		hub:        hub,
		poller:     poller,
		httpServer: httpServer,
		reader:     reader,
		traceFile:  traceFile,
	}, nil
}

// newRouter registers the exporter's HTTP routes
func newRouter(metricsHandler http.Handler, poller *Poller, hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !poller.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not-ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/api/readings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(poller.Latest()); err != nil {
			logging.Error("Failed to encode readings", zap.Error(err))
		}
	})

	mux.HandleFunc("/stream", hub.ServeWS)

	return mux
}

// Start starts the exporter and blocks until shutdown
func (s *Server) Start() error {
	logging.Info("Starting Multical exporter",
		zap.String("addr", s.httpServer.Addr),
		zap.String("device", s.config.Device),
		zap.Duration("interval", s.poller.interval),
		zap.Int("registers", len(s.poller.registers)),
		zap.Int("bindings", len(s.config.Params)),
	)
	if s.config.StoreHost != "" {
		logging.Info("Store pushes enabled",
			zap.String("host", s.config.StoreHost),
			zap.Int("port", s.config.StorePort),
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.hub.Run(ctx)
	go s.poller.Run(ctx)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	logging.Info("Exporter listening", zap.String("addr", s.httpServer.Addr))

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping exporter...")
		shutdownCtx, cancelTimeout := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelTimeout()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		cancel()
		return fmt.Errorf("HTTP server failed: %w", err)
	}
}

// Shutdown gracefully shuts down the exporter
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down exporter...")

	// Stop the poller and hub first so nothing touches the serial
	// device while it is being closed
	if s.cancel != nil {
		s.cancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logging.Error("Error shutting down HTTP server", zap.Error(err))
	}

	if err := s.reader.Close(); err != nil {
		logging.Error("Error closing meter", zap.Error(err))
	}

	if s.traceFile != nil {
		_ = s.traceFile.Close()
	}

	logging.Sync()
	return nil
}
