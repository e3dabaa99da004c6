package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/levenlabs/go-lflag"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/raterudder/retrofit/pkg/log"
	"github.com/raterudder/retrofit/pkg/types"
)

const (
	scenariosCollection = "scenarios"
	resultsCollection   = "results"
)

// FirestoreProvider implements Database using Google Cloud Firestore.
// Scenarios live at scenarios/{id} and results at
// scenarios/{id}/results/{runID}, each stored as a JSON blob.
type FirestoreProvider struct {
	client    *firestore.Client
	projectID string
	database  string
}

var _ Database = (*FirestoreProvider)(nil)

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// set this because that's how firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured.
func (f *FirestoreProvider) Validate() error {
	if f.projectID == "" && os.Getenv("FIRESTORE_EMULATOR_HOST") != "" {
		return fmt.Errorf("firestore-project-id is required with the emulator")
	}
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *FirestoreProvider) scenarioDoc(id string) (*firestore.DocumentRef, error) {
	if id == "" {
		return nil, errEmptyID
	}
	return f.client.Collection(scenariosCollection).Doc(id), nil
}

// jsonField decodes the "json" field of doc into v.
func jsonField(doc *firestore.DocumentSnapshot, v any) error {
	val, err := doc.DataAt("json")
	if err != nil {
		return fmt.Errorf("document %s missing 'json' field: %w", doc.Ref.ID, err)
	}
	jsonStr, ok := val.(string)
	if !ok {
		return fmt.Errorf("document %s 'json' field is not a string", doc.Ref.ID)
	}
	if err := json.Unmarshal([]byte(jsonStr), v); err != nil {
		return fmt.Errorf("failed to unmarshal document %s: %w", doc.Ref.ID, err)
	}
	return nil
}

func docVersion(doc *firestore.DocumentSnapshot) int {
	// default 0 for documents written before versioning
	if v, err := doc.DataAt("version"); err == nil {
		if vInt, ok := v.(int64); ok {
			return int(vInt)
		}
	}
	return 0
}

// PutScenario creates or replaces the scenario document.
func (f *FirestoreProvider) PutScenario(ctx context.Context, s types.Scenario, version int) error {
	ref, err := f.scenarioDoc(s.ID)
	if err != nil {
		return err
	}
	jsonBytes, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	_, err = ref.Set(ctx, map[string]interface{}{
		"json":    string(jsonBytes),
		"asset":   string(s.Asset),
		"name":    s.Name,
		"version": version,
	})
	if err != nil {
		return fmt.Errorf("failed to save scenario: %w", err)
	}
	return nil
}

// GetScenario returns the scenario and the version it was stored at.
func (f *FirestoreProvider) GetScenario(ctx context.Context, id string) (types.Scenario, int, error) {
	ref, err := f.scenarioDoc(id)
	if err != nil {
		return types.Scenario{}, 0, err
	}
	doc, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Scenario{}, 0, ErrScenarioNotFound
		}
		return types.Scenario{}, 0, fmt.Errorf("failed to fetch scenario doc: %w", err)
	}

	var s types.Scenario
	if err := jsonField(doc, &s); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "invalid scenario doc", slog.String("scenarioID", id), slog.Any("err", err))
		return types.Scenario{}, 0, err
	}
	s.ID = id
	return s, docVersion(doc), nil
}

// ListScenarios returns every stored scenario ordered by ID.
func (f *FirestoreProvider) ListScenarios(ctx context.Context) ([]ScenarioRecord, error) {
	iter := f.client.Collection(scenariosCollection).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var records []ScenarioRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating scenarios: %w", err)
		}
		var s types.Scenario
		if err := jsonField(doc, &s); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "invalid scenario doc", slog.String("scenarioID", doc.Ref.ID), slog.Any("err", err))
			return nil, err
		}
		s.ID = doc.Ref.ID
		records = append(records, ScenarioRecord{Scenario: s, Version: docVersion(doc)})
	}
	return records, nil
}

// DeleteScenario removes the scenario and its results. Firestore does not
// delete subcollections with their parent so results are removed first.
func (f *FirestoreProvider) DeleteScenario(ctx context.Context, id string) error {
	ref, err := f.scenarioDoc(id)
	if err != nil {
		return err
	}
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrScenarioNotFound
		}
		return fmt.Errorf("failed to fetch scenario doc: %w", err)
	}

	iter := ref.Collection(resultsCollection).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("error iterating results: %w", err)
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete result %s: %w", doc.Ref.ID, err)
		}
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	return nil
}

// InsertResult stores r under its run ID.
func (f *FirestoreProvider) InsertResult(ctx context.Context, scenarioID string, r types.Result) error {
	if r.RunID == "" {
		return fmt.Errorf("result missing runID")
	}
	ref, err := f.scenarioDoc(scenarioID)
	if err != nil {
		return err
	}
	jsonBytes, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	_, err = ref.Collection(resultsCollection).Doc(r.RunID).Set(ctx, map[string]interface{}{
		"json":      string(jsonBytes),
		"createdAt": r.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// GetLatestResult returns the most recently created result of a scenario.
func (f *FirestoreProvider) GetLatestResult(ctx context.Context, scenarioID string) (types.Result, error) {
	ref, err := f.scenarioDoc(scenarioID)
	if err != nil {
		return types.Result{}, err
	}
	iter := ref.Collection(resultsCollection).
		OrderBy("createdAt", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return types.Result{}, ErrResultNotFound
	}
	if err != nil {
		return types.Result{}, fmt.Errorf("failed to get latest result doc: %w", err)
	}
	var r types.Result
	if err := jsonField(doc, &r); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "invalid result doc", slog.String("scenarioID", scenarioID), slog.Any("err", err))
		return types.Result{}, err
	}
	return r, nil
}
