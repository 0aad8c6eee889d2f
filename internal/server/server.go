package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/helpdesk-core-poc-v1/server/internal/agent/model"
	"github.com/helpdesk-core-poc-v1/server/internal/agent/orchestrator"
	errx "github.com/helpdesk-core-poc-v1/server/internal/core/error"
	logx "github.com/helpdesk-core-poc-v1/server/pkg/logger"
)

const serviceName = "customer-support-agent"

// Server is the thin HTTP front door over the orchestrator. Transport
// security and authentication live outside this service.
type Server struct {
	orch *orchestrator.Orchestrator
}

func New(orch *orchestrator.Orchestrator) *Server {
	return &Server{orch: orch}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /support", s.handleSupport)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) handleSupport(w http.ResponseWriter, r *http.Request) {
	var q model.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	answer, err := s.orch.HandleQuery(r.Context(), q)
	if err != nil {
		var appErr *errx.AppError
		if errors.As(err, &appErr) {
			writeJSON(w, appErr.Status, map[string]string{"error": appErr.Message})
			return
		}
		logx.Error().Err(err).Msg("unexpected error handling support query")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": errx.SystemErrorMessage})
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logx.Error().Err(err).Msg("failed to write response body")
	}
}
