package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/raterudder/retrofit/pkg/types"
)

type memoryScenario struct {
	scenario types.Scenario
	version  int
	results  []types.Result
}

// Memory is an in-process Database for local runs and tests. Nothing
// survives a restart.
type Memory struct {
	mu        sync.Mutex
	scenarios map[string]*memoryScenario
}

var _ Database = (*Memory)(nil)

// NewMemory returns an empty Memory database.
func NewMemory() *Memory {
	return &Memory{scenarios: map[string]*memoryScenario{}}
}

func (m *Memory) PutScenario(ctx context.Context, s types.Scenario, version int) error {
	if s.ID == "" {
		return errEmptyID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.scenarios[s.ID]; ok {
		existing.scenario = s.Clone()
		existing.version = version
		return nil
	}
	m.scenarios[s.ID] = &memoryScenario{scenario: s.Clone(), version: version}
	return nil
}

func (m *Memory) GetScenario(ctx context.Context, id string) (types.Scenario, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.scenarios[id]
	if !ok {
		return types.Scenario{}, 0, ErrScenarioNotFound
	}
	return ms.scenario.Clone(), ms.version, nil
}

func (m *Memory) ListScenarios(ctx context.Context) ([]ScenarioRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]ScenarioRecord, 0, len(m.scenarios))
	for _, ms := range m.scenarios {
		records = append(records, ScenarioRecord{Scenario: ms.scenario.Clone(), Version: ms.version})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Scenario.ID < records[j].Scenario.ID })
	return records, nil
}

func (m *Memory) DeleteScenario(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scenarios[id]; !ok {
		return ErrScenarioNotFound
	}
	delete(m.scenarios, id)
	return nil
}

func (m *Memory) InsertResult(ctx context.Context, scenarioID string, r types.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.scenarios[scenarioID]
	if !ok {
		return ErrScenarioNotFound
	}
	ms.results = append(ms.results, r)
	return nil
}

// GetLatestResult returns the result with the newest CreatedAt, preferring
// the later insert on ties.
func (m *Memory) GetLatestResult(ctx context.Context, scenarioID string) (types.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.scenarios[scenarioID]
	if !ok || len(ms.results) == 0 {
		return types.Result{}, ErrResultNotFound
	}
	latest := ms.results[0]
	for _, r := range ms.results[1:] {
		if !r.CreatedAt.Before(latest.CreatedAt) {
			latest = r
		}
	}
	return latest, nil
}

func (m *Memory) Close() error { return nil }
