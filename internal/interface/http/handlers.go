package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/study-buddy/study-buddy-backend/internal/application/query"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/teacher"
)

// ══════════════════════════════════════════════════════════════════════════════
// HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// chatRequest is the body of POST /api/chat.
type chatRequest struct {
	// SessionID continues an existing conversation. Empty starts a new
	// one; the assigned ID comes back in the response.
	SessionID string `json:"session_id"`

	// Message is the chat text.
	Message string `json:"message"`
}

// chatResponse is the reply to POST /api/chat.
type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// handleChat runs one chat turn through the role router.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	reply, err := s.chat.Handle(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.logger.Error("chat turn failed",
			"request_id", RequestIDFromContext(r.Context()),
			"session_id", req.SessionID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "chat unavailable")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{SessionID: req.SessionID, Reply: reply})
}

// handleRecommendations serves GET /api/students/{roll}/recommendations.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	rollNo, err := strconv.Atoi(mux.Vars(r)["roll"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "roll number must be an integer")
		return
	}

	listing, err := s.queries.ListRecommendations.Handle(r.Context(), query.ListRecommendationsQuery{RollNo: rollNo})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// handleClassAverage serves GET /api/classes/{grade}/averages/{subject}.
// The requesting teacher is identified by the staff_id query parameter.
func (s *Server) handleClassAverage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	grade, err := strconv.Atoi(vars["grade"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "grade must be an integer")
		return
	}

	staffID, err := strconv.Atoi(r.URL.Query().Get("staff_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "staff_id query parameter is required")
		return
	}

	avg, err := s.queries.GetClassAverage.Handle(r.Context(), query.GetClassAverageQuery{
		StaffID: staffID,
		Grade:   grade,
		Subject: vars["subject"],
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, avg)
}

// Pinger reports whether a backing service is reachable. Implemented
// by the postgres pool and the Redis cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleHealth pings the data stores. Redis is optional: an absent
// client reports "disabled", not a failure.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Checks: make(map[string]string)}
	status := http.StatusOK

	if s.postgres != nil {
		if err := s.postgres.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			resp.Checks["postgres"] = "ok"
		}
	}

	if s.redis != nil {
		if err := s.redis.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			resp.Checks["redis"] = "ok"
		}
	} else {
		resp.Checks["redis"] = "disabled"
	}

	writeJSON(w, status, resp)
}

// ─────────────────────────────────────────────────────────────────────────────
// Response helpers
// ─────────────────────────────────────────────────────────────────────────────

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps application errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, teacher.ErrGradeNotTaught):
		writeError(w, http.StatusForbidden, "grade not taught")
	case shared.IsValidation(err):
		writeError(w, http.StatusBadRequest, "invalid request")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
