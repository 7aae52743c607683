package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ent0n29/amorine/internal/config"
	"github.com/ent0n29/amorine/internal/memory"
	"github.com/ent0n29/amorine/internal/observability"
)

type Server struct {
	cfg       config.Config
	manager   *memory.Manager
	metrics   *observability.Metrics
	storeMode string
	indexMode string
}

func New(cfg config.Config, manager *memory.Manager, metrics *observability.Metrics, storeMode, indexMode string) *Server {
	return &Server{
		cfg:       cfg,
		manager:   manager,
		metrics:   metrics,
		storeMode: storeMode,
		indexMode: indexMode,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Post("/v1/memory/turns", s.handleRecordTurn)
	r.Get("/v1/memory/turns", s.handleListTurns)
	r.Get("/v1/memory/context", s.handleBuildContext)
	r.Post("/v1/memory/context/refresh", s.handleRefreshContext)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"store_mode": s.storeMode,
		"index_mode": s.indexMode,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"store_mode": s.storeMode,
		"index_mode": s.indexMode,
	})
}

func (s *Server) handlePerfLatency(w http.ResponseWriter, _ *http.Request) {
	if s.metrics == nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"generated_at": "",
			"window_size":  0,
			"stages":       []any{},
		})
		return
	}
	respondJSON(w, http.StatusOK, s.metrics.SnapshotStages())
}

type recordTurnRequest struct {
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	Role      string `json:"role"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

type recordTurnResponse struct {
	OK               bool     `json:"ok"`
	Degraded         []string `json:"degraded,omitempty"`
	SummaryTriggered bool     `json:"summary_triggered,omitempty"`
}

func (s *Server) handleRecordTurn(w http.ResponseWriter, r *http.Request) {
	var req recordTurnRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "user_id is required")
		return
	}

	role := memory.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if role == "" {
		role = memory.RoleUser
	}
	turn := memory.Turn{
		Content:   req.Content,
		Role:      role,
		Timestamp: req.Timestamp,
	}

	result, err := s.manager.RecordTurn(r.Context(), req.UserID, turn)
	if err != nil {
		if errors.Is(err, memory.ErrInvalidArgument) {
			respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		respondError(w, http.StatusServiceUnavailable, "upstream_unavailable", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, recordTurnResponse{
		OK:               true,
		Degraded:         result.Degraded,
		SummaryTriggered: result.SummaryTriggered,
	})
}

func (s *Server) handleListTurns(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "query parameter user_id is required")
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = n
	}

	turns, err := s.manager.RecentTurns(r.Context(), userID, limit)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "upstream_unavailable", err.Error())
		return
	}
	if turns == nil {
		turns = []memory.Turn{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"turns": turns,
	})
}

func (s *Server) handleBuildContext(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "query parameter user_id is required")
		return
	}

	bundle, err := s.manager.BuildContext(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, bundle)
}

type refreshContextRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleRefreshContext(w http.ResponseWriter, r *http.Request) {
	var req refreshContextRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "user_id is required")
		return
	}

	items, err := s.manager.RefreshContext(r.Context(), req.UserID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "upstream_unavailable", err.Error())
		return
	}
	if items == nil {
		items = []memory.ContextItem{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"ok":               true,
		"semantic_context": items,
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
