package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/usecambi/cambi-ccyoe/internal/logger"
	"github.com/usecambi/cambi-ccyoe/internal/state"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer serves the dashboard API over stored backtest runs.
type WebServer struct {
	router *mux.Router
	port   string
}

// NewWebServer creates a new web server instance.
func NewWebServer(port string) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes.
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/runs", ws.handleGetRuns).Methods("GET")
	api.HandleFunc("/runs/latest", ws.handleGetLatestRun).Methods("GET")
	api.HandleFunc("/runs/{id}", ws.handleGetRun).Methods("GET")
	api.HandleFunc("/runs/{id}/events", ws.handleGetRunEvents).Methods("GET")
	api.HandleFunc("/summary", ws.handleGetSummary).Methods("GET")

	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server.
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "ccyoe-yield-optimizer",
			"version": "1.0.0",
		},
		"store_status": map[string]interface{}{
			"database_healthy": dbHealthy,
		},
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetRuns returns recent backtest runs, newest first.
func (ws *WebServer) handleGetRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	runs, err := state.GetRecentRuns(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent runs")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve runs")
		return
	}

	response := map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
		"limit": limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetRun returns a specific run by ID.
func (ws *WebServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := ws.parseRunID(w, r)
	if !ok {
		return
	}

	run, err := state.GetRunByID(runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			ws.writeErrorResponse(w, http.StatusNotFound, "Run not found")
			return
		}
		webLogger.Error().Err(err).Str("runId", runID.String()).Msg("Failed to get run")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve run")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, run)
}

// handleGetLatestRun returns the most recent run.
func (ws *WebServer) handleGetLatestRun(w http.ResponseWriter, r *http.Request) {
	runs, err := state.GetRecentRuns(1)
	if err != nil || len(runs) == 0 {
		webLogger.Error().Err(err).Msg("Failed to get latest run")
		ws.writeErrorResponse(w, http.StatusNotFound, "No runs found")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, runs[0])
}

// handleGetRunEvents returns a run's rebalance events in fire order.
func (ws *WebServer) handleGetRunEvents(w http.ResponseWriter, r *http.Request) {
	runID, ok := ws.parseRunID(w, r)
	if !ok {
		return
	}

	events, err := state.GetRunEvents(runID)
	if err != nil {
		webLogger.Error().Err(err).Str("runId", runID.String()).Msg("Failed to get run events")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	response := map[string]interface{}{
		"run_id": runID.String(),
		"events": events,
		"count":  len(events),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetSummary returns aggregate statistics over all stored runs.
func (ws *WebServer) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := state.GetStoreSummary()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get store summary")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve summary")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, summary)
}

func (ws *WebServer) parseRunID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := mux.Vars(r)["id"]
	runID, err := uuid.Parse(idStr)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid run ID")
		return uuid.UUID{}, false
	}
	return runID, true
}

// writeJSONResponse writes a JSON response.
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response.
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers.
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests.
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture the status code.
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
