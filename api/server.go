package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	clog "cosmossdk.io/log"

	"github.com/openalpha/poolparty/api/handlers"
	"github.com/openalpha/poolparty/api/middleware"
	"github.com/openalpha/poolparty/api/websocket"
	"github.com/openalpha/poolparty/metrics"
)

// Server represents the API server
type Server struct {
	httpServer *http.Server
	wsServer   *websocket.Server
	config     *Config

	// Services
	poolService PoolService

	// Handlers
	poolHandler *handlers.PoolHandler

	// Rate limiter
	rateLimiter *middleware.RateLimiter

	// Metrics
	collector *metrics.Collector
}

// Config contains server configuration
type Config struct {
	Host             string
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	DisableRateLimit bool // For testing purposes
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// NewServer creates a new API server backed by the standalone in-memory
// pool store
func NewServer(config *Config) *Server {
	return NewServerWithService(config, NewStoreService(clog.NewNopLogger()))
}

// NewServerWithService creates a new API server with a custom pool service
func NewServerWithService(config *Config, poolService PoolService) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	wsConfig := websocket.DefaultServerConfig()
	wsConfig.Port = config.Port

	s := &Server{
		config:      config,
		wsServer:    websocket.NewServer(wsConfig),
		poolService: poolService,
		rateLimiter: middleware.NewRateLimiter(middleware.DefaultRateLimitConfig()),
		collector:   metrics.GetCollector(),
	}

	s.poolHandler = handlers.NewPoolHandler(poolService)
	s.poolHandler.SetNotifier(s.notifyContribution)

	return s
}

// Start starts the API server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/health", s.handleHealth)

	// Pool endpoints
	mux.HandleFunc("/v1/pools", s.poolHandler.HandlePools)
	mux.HandleFunc("/v1/pools/", s.handlePoolRoutes)

	// Standalone-mode write endpoints
	mux.HandleFunc("/v1/contribute", s.poolHandler.Contribute)
	mux.HandleFunc("/v1/leave", s.poolHandler.Leave)

	// Leaderboard
	mux.HandleFunc("/v1/leaderboard", s.poolHandler.GetLeaderboard)

	// WebSocket
	mux.HandleFunc("/ws", s.wsServer.GetHub().ServeWS)

	// Prometheus metrics
	mux.Handle("/metrics", metrics.Handler())

	// Apply middleware chain: CORS -> RateLimit -> Handler
	var handler http.Handler
	if s.config.DisableRateLimit {
		handler = corsMiddleware(s.instrument(mux))
	} else {
		handler = corsMiddleware(
			middleware.RateLimitMiddleware(s.rateLimiter)(s.instrument(mux)),
		)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	// Start WebSocket hub
	go s.wsServer.GetHub().Run()

	// Start the periodic pool stats broadcaster
	go s.statsBroadcaster()

	log.Printf("API server starting on %s", addr)
	if s.config.DisableRateLimit {
		log.Printf("Rate limiting DISABLED (for testing)")
	}
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"warning":   "This API uses in-memory storage. For production, connect to a running chain node.",
	})
}

// handlePoolRoutes handles /v1/pools/{poolId}/* endpoints
func (s *Server) handlePoolRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// Parse path: /v1/pools/{poolId} or /v1/pools/{poolId}/{endpoint}
	path := r.URL.Path[len("/v1/pools/"):]

	poolID := path
	endpoint := ""
	for i, c := range path {
		if c == '/' {
			poolID = path[:i]
			endpoint = path[i+1:]
			break
		}
	}

	if poolID == "" {
		writeError(w, http.StatusBadRequest, "Pool ID required")
		return
	}

	// Set pool ID in request for handler
	r.Header.Set("X-Pool-ID", poolID)

	switch {
	case endpoint == "":
		s.poolHandler.GetPool(w, r)
	case endpoint == "participants":
		s.poolHandler.GetParticipants(w, r)
	case len(endpoint) > len("contributions-due/") && endpoint[:len("contributions-due/")] == "contributions-due/":
		r.Header.Set("X-Participant-Address", endpoint[len("contributions-due/"):])
		s.poolHandler.GetContributionsDue(w, r)
	default:
		writeError(w, http.StatusNotFound, "Endpoint not found")
	}
}

// notifyContribution fans a successful contribution or withdrawal out to
// WebSocket subscribers and the metrics collector
func (s *Server) notifyContribution(poolID, address, amount, kind, totalContributed string) {
	s.wsServer.BroadcastContribution(&websocket.ContributionMessage{
		PoolID:           poolID,
		Address:          address,
		Amount:           amount,
		Kind:             kind,
		TotalContributed: totalContributed,
		Timestamp:        nowMillis(),
	})

	if kind == "contribute" {
		s.collector.RecordContribution(poolID, weiToFloat(amount))
	}
}

// statsBroadcaster pushes pool snapshots to the WebSocket hub once per
// second
func (s *Server) statsBroadcaster() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		pools, err := s.poolService.GetPools("")
		if err != nil {
			continue
		}
		for _, pool := range pools {
			s.wsServer.BroadcastPoolStats(&websocket.PoolStatsMessage{
				PoolID:           pool.PoolID,
				Phase:            pool.Phase,
				TotalContributed: pool.TotalContributed,
				ParticipantCount: pool.ParticipantCount,
				Watermark:        pool.Watermark,
				Timestamp:        nowMillis(),
			})
		}
	}
}

// instrument records request metrics around an handler
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := metrics.NewTimer()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.collector.RecordAPIRequest(r.Method, r.URL.Path, fmt.Sprintf("%d", recorder.status), timer.ElapsedMs())
		switch {
		case recorder.status >= 500:
			s.collector.RecordAPIError(r.Method, r.URL.Path, "server")
		case recorder.status >= 400:
			s.collector.RecordAPIError(r.Method, r.URL.Path, "client")
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// weiToFloat converts a wei string to a float for metrics. Precision loss
// is fine here.
func weiToFloat(amount string) float64 {
	var v float64
	_, _ = fmt.Sscanf(amount, "%f", &v)
	return v
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
