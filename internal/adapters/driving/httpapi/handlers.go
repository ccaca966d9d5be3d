package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/custodia-labs/komenta/internal/connectors/scrapecreators"
	"github.com/custodia-labs/komenta/internal/core/domain"
	"github.com/custodia-labs/komenta/internal/core/ports/driving"
	"github.com/custodia-labs/komenta/internal/logger"
)

// envelope is the single response shape for every endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Debug   any    `json:"debug,omitempty"`
}

// ingestDebug carries request echo and upstream detail for clients
// diagnosing partial or failed runs.
type ingestDebug struct {
	Query          string `json:"query,omitempty"`
	QueryType      string `json:"queryType,omitempty"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
	UpstreamBody   string `json:"upstreamBody,omitempty"`
}

// writeJSON serialises an envelope with the given status code.
func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Warn("writing response: %v", err)
	}
}

// writeError maps a pipeline error onto the envelope contract.
func writeError(w http.ResponseWriter, err error, debug ingestDebug) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})

	case domain.IsNoData(err):
		// The request was valid and upstream answered; there was just
		// nothing to analyse. Not an HTTP failure.
		writeJSON(w, http.StatusOK, envelope{Error: err.Error(), Debug: debug})

	default:
		status := http.StatusBadGateway
		var ue *scrapecreators.UpstreamError
		if errors.As(err, &ue) {
			if ue.Status >= 400 {
				status = ue.Status
			}
			debug.UpstreamStatus = ue.Status
			debug.UpstreamBody = ue.Body
		}
		writeJSON(w, status, envelope{Error: err.Error(), Debug: debug})
	}
}

// handleIngest runs one analysis end to end.
//
// Query parameters:
//
//	query      username, video URL, or keyword (required)
//	type       "username" | "video" | "keyword" (required)
//	latestOnly "true" to analyse only the most recent video
//	targetData per-video comment budget override
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	q := domain.Query{
		Text:       params.Get("query"),
		LatestOnly: params.Get("latestOnly") == "true",
	}

	queryType, err := domain.ParseQueryType(params.Get("type"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
		return
	}
	q.Type = queryType

	if raw := params.Get("targetData"); raw != "" {
		target, err := strconv.Atoi(raw)
		if err != nil || target <= 0 {
			writeJSON(w, http.StatusBadRequest, envelope{
				Error: "invalid input: targetData must be a positive integer",
			})
			return
		}
		q.TargetCount = target
	}

	debug := ingestDebug{Query: q.Text, QueryType: string(q.Type)}

	result, err := s.analysis.Analyze(r.Context(), q)
	if err != nil {
		writeError(w, err, debug)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: result, Debug: debug})
}

// handleHistory lists recent analysis runs.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Error: "history is not configured"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, envelope{
				Error: "invalid input: limit must be a positive integer",
			})
			return
		}
		limit = n
	}

	records, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, envelope{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: records})
}

// handleHealth is a liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]string{"status": "ok"}})
}

// summaryRequest is the body shape of both summary endpoints.
type summaryRequest struct {
	Comments []domain.AnnotatedComment `json:"comments"`
	Side     string                    `json:"side,omitempty"`
}

func (s *Server) handleNarratives(w http.ResponseWriter, r *http.Request) {
	if s.summary == nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Error: "summaries are not configured"})
		return
	}

	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid input: malformed JSON body"})
		return
	}

	report, err := s.summary.Narratives(r.Context(), req.Comments)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, envelope{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: report})
}

func (s *Server) handleProContra(w http.ResponseWriter, r *http.Request) {
	if s.summary == nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Error: "summaries are not configured"})
		return
	}

	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid input: malformed JSON body"})
		return
	}

	report, err := s.summary.ProContra(r.Context(), req.Comments, driving.StanceSide(req.Side))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, envelope{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: report})
}
