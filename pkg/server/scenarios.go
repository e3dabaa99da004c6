package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/raterudder/retrofit/pkg/log"
	"github.com/raterudder/retrofit/pkg/storage"
	"github.com/raterudder/retrofit/pkg/types"
)

func newID() string {
	return uuid.NewString()
}

// ScenarioRes is the response for a single stored scenario.
type ScenarioRes struct {
	Scenario types.Scenario `json:"scenario"`
	Version  int            `json:"version"`
}

// getScenarioWithMigration loads a scenario and upgrades it to the current
// version, saving it back when anything changed. A failed migration is
// logged and the stored scenario is returned as is.
func (s *Server) getScenarioWithMigration(ctx context.Context, id string) (types.Scenario, int, error) {
	sc, version, err := s.storage.GetScenario(ctx, id)
	if err != nil {
		return types.Scenario{}, 0, err
	}
	if version >= types.CurrentScenarioVersion {
		return sc, version, nil
	}

	log.Ctx(ctx).InfoContext(ctx, "migrating scenario", slog.Int("oldVersion", version), slog.Int("newVersion", types.CurrentScenarioVersion))
	migrated, changed, err := types.MigrateScenario(sc, version)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to migrate scenario", slog.Int("currentVersion", version), slog.Any("error", err))
		return sc, version, nil
	}
	if !changed {
		return sc, version, nil
	}
	if err := s.storage.PutScenario(ctx, migrated, types.CurrentScenarioVersion); err != nil {
		// the migrated scenario is still usable for this request
		log.Ctx(ctx).ErrorContext(ctx, "failed to save migrated scenario", slog.Any("error", err))
	} else {
		log.Ctx(ctx).InfoContext(ctx, "saved migrated scenario", slog.Int("oldVersion", version), slog.Int("newVersion", types.CurrentScenarioVersion))
	}
	return migrated, types.CurrentScenarioVersion, nil
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := s.storage.ListScenarios(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list scenarios", slog.Any("error", err))
		writeJSONError(w, "failed to list scenarios", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []storage.ScenarioRecord{}
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, struct {
		Scenarios []storage.ScenarioRecord `json:"scenarios"`
	}{Scenarios: records})
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("scenarioID", id)))

	sc, version, err := s.getScenarioWithMigration(ctx, id)
	if err != nil {
		s.writeStorageError(ctx, w, err, "failed to get scenario")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, ScenarioRes{Scenario: sc, Version: version})
}

func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	s.saveScenario(w, r, s.newScenarioID(), http.StatusCreated)
}

func (s *Server) handlePutScenario(w http.ResponseWriter, r *http.Request) {
	s.saveScenario(w, r, r.PathValue("id"), http.StatusOK)
}

func (s *Server) saveScenario(w http.ResponseWriter, r *http.Request, id string, code int) {
	ctx := r.Context()
	ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("scenarioID", id)))

	var sc types.Scenario
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to decode scenario", slog.Any("error", err))
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if sc.ID != "" && sc.ID != id {
		writeJSONError(w, "scenario id does not match path", http.StatusBadRequest)
		return
	}
	sc.ID = id
	if err := sc.Validate(); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.storage.PutScenario(ctx, sc, types.CurrentScenarioVersion); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to save scenario", slog.Any("error", err))
		writeJSONError(w, "failed to save scenario", http.StatusInternalServerError)
		return
	}
	log.Ctx(ctx).InfoContext(ctx, "saved scenario", slog.String("asset", string(sc.Asset)))
	writeJSON(w, code, ScenarioRes{Scenario: sc, Version: types.CurrentScenarioVersion})
}

func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("scenarioID", id)))

	if err := s.storage.DeleteScenario(ctx, id); err != nil {
		s.writeStorageError(ctx, w, err, "failed to delete scenario")
		return
	}
	log.Ctx(ctx).InfoContext(ctx, "deleted scenario")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvaluateScenario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("scenarioID", id)))

	sc, _, err := s.getScenarioWithMigration(ctx, id)
	if err != nil {
		s.writeStorageError(ctx, w, err, "failed to get scenario")
		return
	}

	res, ok := s.evaluate(ctx, w, sc)
	if !ok {
		return
	}
	res.ScenarioID = sc.ID
	if err := s.storage.InsertResult(ctx, sc.ID, res); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to save result", slog.String("runID", res.RunID), slog.Any("error", err))
		writeJSONError(w, "failed to save result", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("scenarioID", id)))

	res, err := s.storage.GetLatestResult(ctx, id)
	if err != nil {
		s.writeStorageError(ctx, w, err, "failed to get result")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, res)
}

// writeStorageError maps not-found errors to 404 and everything else to 500.
func (s *Server) writeStorageError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, storage.ErrScenarioNotFound):
		writeJSONError(w, "scenario not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrResultNotFound):
		writeJSONError(w, "result not found", http.StatusNotFound)
	default:
		log.Ctx(ctx).ErrorContext(ctx, msg, slog.Any("error", err))
		writeJSONError(w, msg, http.StatusInternalServerError)
	}
}
