package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/raterudder/retrofit/pkg/batch"
	"github.com/raterudder/retrofit/pkg/common"
	"github.com/raterudder/retrofit/pkg/retrofit"
	"github.com/raterudder/retrofit/pkg/storage"
	"github.com/raterudder/retrofit/pkg/storage/storagemock"
	"github.com/raterudder/retrofit/pkg/types"
)

func newTestServer(db storage.Database) *Server {
	srv := newServer(db, batch.New(retrofit.Engine{}, 2, 16))
	srv.newScenarioID = func() string { return "new-scenario" }
	return srv
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func storageScenario(t *testing.T) types.Scenario {
	s, ok := types.DefaultScenario(types.AssetStorage)
	require.True(t, ok)
	return s
}

func TestHealthz(t *testing.T) {
	h := newTestServer(storage.NewMemory()).setupHandler()

	w := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.Equal(t, common.ServerName(), w.Header().Get("Server"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestCORS(t *testing.T) {
	srv := newTestServer(storage.NewMemory())
	srv.corsOrigins = []string{"https://planner.example.com"}
	h := srv.setupHandler()

	req := httptest.NewRequest(http.MethodOptions, "/api/evaluate", nil)
	req.Header.Set("Origin", "https://planner.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "https://planner.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/evaluate", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestEvaluate(t *testing.T) {
	h := newTestServer(storage.NewMemory()).setupHandler()

	t.Run("Storage", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/evaluate", storageScenario(t))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res types.Result
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, types.AssetStorage, res.Asset)
		assert.NotEmpty(t, res.RunID)
		assert.False(t, res.CreatedAt.IsZero())
		assert.InDelta(t, 25.8, res.Summary.Investment, 1e-9)
		assert.Len(t, res.Hourly, 24)
	})

	t.Run("Cached", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/evaluate", storageScenario(t))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "hit", w.Header().Get("X-Cache"))
	})

	t.Run("Invalid Body", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/evaluate", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid Scenario", func(t *testing.T) {
		s := storageScenario(t)
		s.Storage = nil
		w := do(t, h, http.MethodPost, "/api/evaluate", s)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid storage")
	})

	t.Run("Wrong Method", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/evaluate", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestEvaluateBatch(t *testing.T) {
	srv := newTestServer(storage.NewMemory())
	h := srv.setupHandler()

	t.Run("Mixed", func(t *testing.T) {
		var scenarios []types.Scenario
		for _, kind := range types.AssetKinds() {
			s, ok := types.DefaultScenario(kind)
			require.True(t, ok)
			scenarios = append(scenarios, s)
		}
		scenarios = append(scenarios, types.Scenario{Asset: "wind"})

		w := do(t, h, http.MethodPost, "/api/evaluate/batch", BatchReq{Scenarios: scenarios})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res BatchRes
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		require.Len(t, res.Outcomes, 5)
		for i, o := range res.Outcomes[:4] {
			assert.Equal(t, i, o.Index)
			require.NotNil(t, o.Result, o.Error)
			assert.Equal(t, scenarios[i].Asset, o.Result.Asset)
		}
		assert.Nil(t, res.Outcomes[4].Result)
		assert.NotEmpty(t, res.Outcomes[4].Error)
	})

	t.Run("Empty", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/evaluate/batch", BatchReq{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Too Many", func(t *testing.T) {
		srv.maxBatchSize = 1
		defer func() { srv.maxBatchSize = 500 }()
		s := storageScenario(t)
		w := do(t, srv.setupHandler(), http.MethodPost, "/api/evaluate/batch", BatchReq{Scenarios: []types.Scenario{s, s}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "too many scenarios")
	})
}

func TestImportPrices(t *testing.T) {
	h := newTestServer(storage.NewMemory()).setupHandler()

	t.Run("CSV", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/prices/import?format=csv", "hour,price\n1,0.5\n0,0.3\n1,0.6\n")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res PricesRes
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, []types.HourlyPricePoint{{Hour: 0, Price: 0.3}, {Hour: 1, Price: 0.6}}, res.Prices)
	})

	t.Run("JSON Content Type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/prices/import", strings.NewReader(`[{"小时": 8, "电价": 1.1}]`))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res PricesRes
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, []types.HourlyPricePoint{{Hour: 8, Price: 1.1}}, res.Prices)
	})

	t.Run("Unknown Format", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/prices/import?format=xlsx", "x")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = do(t, h, http.MethodPost, "/api/prices/import", "x")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("No Rows", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/prices/import?format=csv", "hour,price\n30,1\n")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/prices/import?format=json", "{")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestScenarios(t *testing.T) {
	db := storage.NewMemory()
	h := newTestServer(db).setupHandler()
	s := storageScenario(t)

	t.Run("Create", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/scenarios", s)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var res ScenarioRes
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, "new-scenario", res.Scenario.ID)
		assert.Equal(t, types.CurrentScenarioVersion, res.Version)
	})

	t.Run("Put", func(t *testing.T) {
		w := do(t, h, http.MethodPut, "/api/scenarios/site-a", s)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		stored, version, err := db.GetScenario(t.Context(), "site-a")
		require.NoError(t, err)
		assert.Equal(t, "site-a", stored.ID)
		assert.Equal(t, types.CurrentScenarioVersion, version)
	})

	t.Run("Put Mismatched ID", func(t *testing.T) {
		other := s
		other.ID = "site-b"
		w := do(t, h, http.MethodPut, "/api/scenarios/site-a", other)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Put Invalid", func(t *testing.T) {
		bad := s.Clone()
		bad.Storage.CapacityKWh = -1
		w := do(t, h, http.MethodPut, "/api/scenarios/site-c", bad)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		_, _, err := db.GetScenario(t.Context(), "site-c")
		assert.ErrorIs(t, err, storage.ErrScenarioNotFound)
	})

	t.Run("List", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/scenarios", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var res struct {
			Scenarios []storage.ScenarioRecord `json:"scenarios"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		require.Len(t, res.Scenarios, 2)
		assert.Equal(t, "new-scenario", res.Scenarios[0].Scenario.ID)
		assert.Equal(t, "site-a", res.Scenarios[1].Scenario.ID)
	})

	t.Run("Result Before Evaluate", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/scenarios/site-a/result", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Evaluate Stored", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/scenarios/site-a/evaluate", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res types.Result
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, "site-a", res.ScenarioID)

		w = do(t, h, http.MethodGet, "/api/scenarios/site-a/result", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var latest types.Result
		require.NoError(t, json.NewDecoder(w.Body).Decode(&latest))
		assert.Equal(t, res.RunID, latest.RunID)
		assert.InDelta(t, res.Summary.Investment, latest.Summary.Investment, 1e-9)
	})

	t.Run("Delete", func(t *testing.T) {
		w := do(t, h, http.MethodDelete, "/api/scenarios/site-a", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = do(t, h, http.MethodGet, "/api/scenarios/site-a", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = do(t, h, http.MethodDelete, "/api/scenarios/site-a", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = do(t, h, http.MethodPost, "/api/scenarios/site-a/evaluate", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestScenarioMigration(t *testing.T) {
	old := types.Scenario{
		ID:      "legacy",
		Asset:   types.AssetStorage,
		Price:   types.PriceConfig{Mode: types.PriceModeTOU, Segments: types.DefaultTOUSegments()},
		Storage: &types.StorageConfig{},
	}
	*old.Storage = types.DefaultStorageConfig()
	old.Storage.Strategy = ""

	t.Run("Saves Migrated", func(t *testing.T) {
		db := &storagemock.MockDatabase{}
		db.On("GetScenario", mock.Anything, "legacy").Return(old, 0, nil)
		db.On("PutScenario", mock.Anything, mock.MatchedBy(func(s types.Scenario) bool {
			return s.Ownership.Mode == types.OwnershipSelf && s.Storage.Strategy == types.StorageTwoChargeTwoDischarge
		}), types.CurrentScenarioVersion).Return(nil)

		w := do(t, newTestServer(db).setupHandler(), http.MethodGet, "/api/scenarios/legacy", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res ScenarioRes
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, types.CurrentScenarioVersion, res.Version)
		assert.Equal(t, types.OwnershipSelf, res.Scenario.Ownership.Mode)
		db.AssertExpectations(t)
	})

	t.Run("Save Failure Still Serves", func(t *testing.T) {
		db := &storagemock.MockDatabase{}
		db.On("GetScenario", mock.Anything, "legacy").Return(old, 0, nil)
		db.On("PutScenario", mock.Anything, mock.Anything, types.CurrentScenarioVersion).Return(errors.New("unavailable"))

		w := do(t, newTestServer(db).setupHandler(), http.MethodGet, "/api/scenarios/legacy", nil)
		require.Equal(t, http.StatusOK, w.Code)
		db.AssertExpectations(t)
	})

	t.Run("Current Version Untouched", func(t *testing.T) {
		current := storageScenario(t)
		current.ID = "current"
		db := &storagemock.MockDatabase{}
		db.On("GetScenario", mock.Anything, "current").Return(current, types.CurrentScenarioVersion, nil)

		w := do(t, newTestServer(db).setupHandler(), http.MethodGet, "/api/scenarios/current", nil)
		require.Equal(t, http.StatusOK, w.Code)
		db.AssertNotCalled(t, "PutScenario", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Storage Error", func(t *testing.T) {
		db := &storagemock.MockDatabase{}
		db.On("GetScenario", mock.Anything, "broken").Return(types.Scenario{}, 0, errors.New("unavailable"))

		w := do(t, newTestServer(db).setupHandler(), http.MethodGet, "/api/scenarios/broken", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
