// Package httpapi exposes the extraction pipeline over HTTP. It owns request
// validation and response shaping: defaults ("unknown" disaster type, null
// location) are applied here, never inside the pipeline.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/opendisaster/simflow/pkg/pipeline"
)

const shutdownTimeout = 5 * time.Second

// Runner is the slice of the orchestrator the API consumes (allows stubbing
// in tests).
type Runner interface {
	Run(ctx context.Context, prompt string) (pipeline.Context, error)
}

// Server serves the simulation API.
type Server struct {
	runner         Runner
	logger         *slog.Logger
	allowedOrigins []string
	httpServer     *http.Server
}

// Options for creating a Server
type Options struct {
	Addr           string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func New(runner Runner, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		runner:         runner,
		logger:         logger,
		allowedOrigins: opts.AllowedOrigins,
	}
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the route table with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/simulate", s.handleSimulate)
	mux.HandleFunc("OPTIONS /api/simulate", func(http.ResponseWriter, *http.Request) {})
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	return s.withRequestLog(s.withCORS(mux))
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		s.logger.Info("http api listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", slog.String("error", err.Error()))
		}
	}()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

type simulateRequest struct {
	Prompt string `json:"prompt"`
}

type locationPayload struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type simulateResponse struct {
	DisasterType string           `json:"disaster_type"`
	Location     *locationPayload `json:"location"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "prompt is required"})
		return
	}

	result, err := s.runner.Run(r.Context(), req.Prompt)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrExternalDependency) {
			status = http.StatusBadGateway
		}
		s.logger.Error("pipeline run failed", slog.String("error", err.Error()))
		writeJSON(w, status, errorResponse{Error: "extraction failed"})
		return
	}

	writeJSON(w, http.StatusOK, shapeResponse(result))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// shapeResponse maps the merged pipeline context onto the API contract,
// applying the neutral defaults the pipeline deliberately does not invent.
func shapeResponse(c pipeline.Context) simulateResponse {
	resp := simulateResponse{DisasterType: "unknown"}

	if dt, ok := c["disaster_type"].(string); ok && dt != "" {
		resp.DisasterType = dt
	}
	resp.Location = shapeLocation(c["location"])
	return resp
}

func shapeLocation(v any) *locationPayload {
	loc, ok := v.(map[string]any)
	if !ok {
		return nil
	}

	name, _ := loc["name"].(string)
	lat, latOK := loc["lat"].(float64)
	lng, lngOK := loc["lng"].(float64)
	if !latOK || !lngOK {
		return nil
	}

	return &locationPayload{Name: name, Lat: lat, Lng: lng}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already out; an encode failure here is unrecoverable.
	_ = json.NewEncoder(w).Encode(v)
}
