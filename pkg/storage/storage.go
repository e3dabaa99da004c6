package storage

import (
	"context"
	"errors"

	"github.com/raterudder/retrofit/pkg/types"
)

var (
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrResultNotFound   = errors.New("result not found")

	errEmptyID = errors.New("scenario id cannot be empty")
)

// ScenarioRecord is a stored scenario with the version it was written at.
type ScenarioRecord struct {
	Scenario types.Scenario `json:"scenario"`
	Version  int            `json:"version"`
}

// Database defines the interface for persisting scenarios and their
// evaluation results.
type Database interface {
	// Scenarios
	PutScenario(ctx context.Context, s types.Scenario, version int) error
	GetScenario(ctx context.Context, id string) (types.Scenario, int, error)
	ListScenarios(ctx context.Context) ([]ScenarioRecord, error)
	// DeleteScenario removes the scenario and every result stored under it.
	DeleteScenario(ctx context.Context, id string) error

	// Results
	InsertResult(ctx context.Context, scenarioID string, r types.Result) error
	GetLatestResult(ctx context.Context, scenarioID string) (types.Result, error)

	// Lifecycle
	Close() error
}
