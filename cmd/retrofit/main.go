package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/levenlabs/go-lflag"

	"github.com/raterudder/retrofit/pkg/batch"
	"github.com/raterudder/retrofit/pkg/common"
	"github.com/raterudder/retrofit/pkg/log"
	"github.com/raterudder/retrofit/pkg/retrofit"
	"github.com/raterudder/retrofit/pkg/server"
	"github.com/raterudder/retrofit/pkg/storage"
)

func main() {
	// init packages
	s := storage.Configured()
	r := batch.Configured(retrofit.Engine{})

	// init server
	srv := server.Configured(s, r)

	// parse flags
	lflag.Configure()

	// lflag sets llog's level, the slog level follows it
	if err := log.SyncLevel(); err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Ctx(ctx).InfoContext(ctx, "starting retrofit", slog.String("version", common.Version()))

	defer func() {
		if err := s.Close(); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to close storage", slog.Any("error", err))
		}
	}()

	// Run will block until context is canceled or error happens
	if err := srv.Run(ctx); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "server failed", slog.Any("error", err))
		os.Exit(1)
	}
	log.Ctx(ctx).InfoContext(ctx, "server exited cleanly")
}
