package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/raterudder/retrofit/pkg/batch"
	"github.com/raterudder/retrofit/pkg/log"
	"github.com/raterudder/retrofit/pkg/types"
)

// BatchReq is the body of /api/evaluate/batch.
type BatchReq struct {
	Scenarios []types.Scenario `json:"scenarios"`
}

// BatchRes holds one outcome per requested scenario, in request order.
type BatchRes struct {
	Outcomes []batch.Outcome `json:"outcomes"`
}

// evaluate runs sc and writes an error response when it fails.
func (s *Server) evaluate(ctx context.Context, w http.ResponseWriter, sc types.Scenario) (types.Result, bool) {
	res, cached, err := s.runner.Run(ctx, sc)
	if err != nil {
		if errors.Is(err, types.ErrConfiguration) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return types.Result{}, false
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to evaluate scenario", slog.Any("error", err))
		writeJSONError(w, "failed to evaluate scenario", http.StatusInternalServerError)
		return types.Result{}, false
	}
	if cached {
		w.Header().Set("X-Cache", "hit")
	}
	return res, true
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var sc types.Scenario
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to decode scenario", slog.Any("error", err))
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	res, ok := s.evaluate(ctx, w, sc)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleEvaluateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BatchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to decode batch", slog.Any("error", err))
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Scenarios) == 0 {
		writeJSONError(w, "no scenarios to evaluate", http.StatusBadRequest)
		return
	}
	if len(req.Scenarios) > s.maxBatchSize {
		writeJSONError(w, fmt.Sprintf("too many scenarios: %d > %d", len(req.Scenarios), s.maxBatchSize), http.StatusBadRequest)
		return
	}

	outcomes, err := s.runner.RunAll(ctx, req.Scenarios)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "batch interrupted", slog.Int("scenarios", len(req.Scenarios)), slog.Any("error", err))
		writeJSONError(w, "batch interrupted", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, BatchRes{Outcomes: outcomes})
}
