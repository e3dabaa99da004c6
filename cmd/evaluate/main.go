// Command evaluate runs scenario files through the engine and prints the
// results as JSON or as a CSV yearly ledger.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/levenlabs/go-lflag"

	"github.com/raterudder/retrofit/pkg/batch"
	"github.com/raterudder/retrofit/pkg/log"
	"github.com/raterudder/retrofit/pkg/priceimport"
	"github.com/raterudder/retrofit/pkg/retrofit"
	"github.com/raterudder/retrofit/pkg/scenario"
	"github.com/raterudder/retrofit/pkg/types"
)

func main() {
	scenarios := lflag.RequiredString("scenarios", "comma-delimited list of YAML scenario files")
	prices := lflag.String("prices", "", "CSV or JSON hourly price file applied to every scenario")
	format := lflag.String("format", "json", "Output format (json or csv)")
	out := lflag.String("out", "", "Output file, stdout when empty")
	workers := lflag.Int("workers", 4, "Number of scenarios evaluated in parallel")

	lflag.Configure()

	// results go to stdout
	log.SetOutput(os.Stderr)
	if err := log.SyncLevel(); err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, options{
		scenarios: splitList(*scenarios),
		prices:    *prices,
		format:    *format,
		out:       *out,
		workers:   *workers,
	}); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "evaluation failed", slog.Any("error", err))
		os.Exit(1)
	}
}

type options struct {
	scenarios []string
	prices    string
	format    string
	out       string
	workers   int
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func run(ctx context.Context, opts options) error {
	if len(opts.scenarios) == 0 {
		return fmt.Errorf("no scenario files given")
	}
	if opts.format != "json" && opts.format != "csv" {
		return fmt.Errorf("unsupported output format: %q", opts.format)
	}

	var imported []types.HourlyPricePoint
	if opts.prices != "" {
		var err error
		imported, err = loadPrices(ctx, opts.prices)
		if err != nil {
			return err
		}
	}

	loaded := make([]types.Scenario, 0, len(opts.scenarios))
	for _, path := range opts.scenarios {
		s, err := scenario.Load(path)
		if err != nil {
			return err
		}
		if s.ID == "" {
			s.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		if imported != nil {
			s.Price.Mode = types.PriceModeImported
			s.Price.Imported = imported
		}
		loaded = append(loaded, s)
	}

	outcomes, err := batch.New(retrofit.Engine{}, opts.workers, 0).RunAll(ctx, loaded)
	if err != nil {
		return err
	}

	results := make([]types.Result, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Error != "" {
			return fmt.Errorf("failed to evaluate %s: %s", opts.scenarios[o.Index], o.Error)
		}
		results = append(results, *o.Result)
	}

	var w io.Writer = os.Stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch opts.format {
	case "csv":
		return writeLedger(w, results)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	}
}

func loadPrices(ctx context.Context, path string) ([]types.HourlyPricePoint, error) {
	format, err := priceimport.FormatFromFilename(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price file: %w", err)
	}
	defer f.Close()

	points, err := priceimport.Parse(ctx, f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", path, err)
	}
	log.Ctx(ctx).InfoContext(ctx, "imported prices", slog.String("path", path), slog.Int("hours", len(points)))
	return points, nil
}
