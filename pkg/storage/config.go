package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/levenlabs/go-lflag"

	"github.com/raterudder/retrofit/pkg/log"
)

// Configured sets up the Storage provider based on flags. Firestore is the
// deployed provider; memory keeps scenarios only for the life of the process
// and serves local runs and tests.
func Configured() Database {
	provider := lflag.String("storage-provider", "firestore", "Storage provider to use (available: firestore, memory)")

	var p struct{ Database }

	fs := configuredFirestore()

	lflag.Do(func() {
		ctx := context.Background()
		db, err := openProvider(ctx, *provider, fs)
		if err != nil {
			panic(err.Error())
		}
		log.Ctx(ctx).InfoContext(ctx, "storage configured", slog.String("provider", *provider))
		p.Database = db
	})

	return &p
}

// openProvider returns the named provider, validating and initializing
// firestore first.
func openProvider(ctx context.Context, provider string, fs *FirestoreProvider) (Database, error) {
	switch provider {
	case "firestore":
		if err := fs.Validate(); err != nil {
			return nil, fmt.Errorf("firestore validation failed: %w", err)
		}
		if err := fs.Init(ctx); err != nil {
			return nil, fmt.Errorf("firestore init failed: %w", err)
		}
		return fs, nil
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", provider)
	}
}
