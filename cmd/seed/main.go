package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/levenlabs/go-lflag"

	"github.com/raterudder/retrofit/pkg/log"
	"github.com/raterudder/retrofit/pkg/retrofit"
	"github.com/raterudder/retrofit/pkg/storage"
	"github.com/raterudder/retrofit/pkg/types"
)

func main() {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		os.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:8087")
	}
	s := storage.Configured()
	evaluate := lflag.Bool("evaluate", true, "Also evaluate each seeded scenario and store the result")
	lflag.Configure()

	ctx := context.Background()
	defer s.Close()

	if err := seed(ctx, s, *evaluate); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed", slog.Any("error", err))
		os.Exit(1)
	}
	log.Ctx(ctx).InfoContext(ctx, "seeding complete")
}

// seed writes the example scenario of every asset kind under the id
// "example-<kind>".
func seed(ctx context.Context, db storage.Database, evaluate bool) error {
	log.Ctx(ctx).InfoContext(ctx, "seeding example scenarios")
	for _, kind := range types.AssetKinds() {
		s, _ := types.DefaultScenario(kind)
		s.ID = "example-" + string(kind)
		if err := db.PutScenario(ctx, s, types.CurrentScenarioVersion); err != nil {
			return err
		}
		if !evaluate {
			continue
		}
		res, err := retrofit.Evaluate(ctx, s)
		if err != nil {
			return err
		}
		res.RunID = "seed-" + string(kind)
		res.CreatedAt = time.Now().UTC()
		if err := db.InsertResult(ctx, s.ID, res); err != nil {
			return err
		}
		log.Ctx(ctx).InfoContext(ctx, "seeded scenario", slog.String("id", s.ID), slog.Float64("investment", res.Summary.Investment))
	}
	return nil
}
