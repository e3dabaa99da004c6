package storagemock

import (
	"context"

	"github.com/raterudder/retrofit/pkg/storage"
	"github.com/raterudder/retrofit/pkg/types"
	"github.com/stretchr/testify/mock"
)

type MockDatabase struct {
	mock.Mock
}

var _ storage.Database = (*MockDatabase)(nil)

func (m *MockDatabase) PutScenario(ctx context.Context, s types.Scenario, version int) error {
	args := m.Called(ctx, s, version)
	return args.Error(0)
}

func (m *MockDatabase) GetScenario(ctx context.Context, id string) (types.Scenario, int, error) {
	args := m.Called(ctx, id)
	// return empty if not specified, or checks args
	if len(args) > 0 {
		return args.Get(0).(types.Scenario), args.Int(1), args.Error(2)
	}
	return types.Scenario{}, 0, nil
}

func (m *MockDatabase) ListScenarios(ctx context.Context) ([]storage.ScenarioRecord, error) {
	args := m.Called(ctx)
	if records, ok := args.Get(0).([]storage.ScenarioRecord); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDatabase) DeleteScenario(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDatabase) InsertResult(ctx context.Context, scenarioID string, r types.Result) error {
	args := m.Called(ctx, scenarioID, r)
	return args.Error(0)
}

func (m *MockDatabase) GetLatestResult(ctx context.Context, scenarioID string) (types.Result, error) {
	args := m.Called(ctx, scenarioID)
	if len(args) > 0 {
		return args.Get(0).(types.Result), args.Error(1)
	}
	return types.Result{}, nil
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}
