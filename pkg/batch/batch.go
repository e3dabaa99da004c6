// Package batch evaluates scenarios on a bounded worker pool with an
// optional result cache.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/levenlabs/go-lflag"
	"golang.org/x/sync/errgroup"

	"github.com/raterudder/retrofit/pkg/log"
	"github.com/raterudder/retrofit/pkg/retrofit"
	"github.com/raterudder/retrofit/pkg/types"
)

// Outcome is the result of one scenario in a batch. Exactly one of Result
// and Error is set.
type Outcome struct {
	Index  int           `json:"index"`
	Result *types.Result `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
	Cached bool          `json:"cached,omitempty"`
}

// Runner evaluates scenarios and stamps each result with a run ID.
type Runner struct {
	eval    retrofit.Evaluator
	workers int
	cache   *Cache

	now   func() time.Time
	newID func() string
}

// Configured returns a Runner configured by flags.
func Configured(eval retrofit.Evaluator) *Runner {
	workers := lflag.Int("batch-workers", runtime.GOMAXPROCS(0), "Number of scenarios evaluated in parallel")
	cacheSize := lflag.Int("batch-cache-size", 256, "Number of evaluation results to keep in memory (0 disables)")

	r := New(eval, 1, 0)
	lflag.Do(func() {
		r.workers = max(*workers, 1)
		r.cache = NewCache(*cacheSize)
	})
	return r
}

// New returns a Runner with the given parallelism and cache size.
func New(eval retrofit.Evaluator, workers, cacheSize int) *Runner {
	return &Runner{
		eval:    eval,
		workers: max(workers, 1),
		cache:   NewCache(cacheSize),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// Run evaluates s. A cached result is reused but still gets a fresh run ID.
func (r *Runner) Run(ctx context.Context, s types.Scenario) (types.Result, bool, error) {
	key, keyErr := Key(s)
	if keyErr == nil {
		if res, ok := r.cache.Get(key); ok {
			return r.stamp(res), true, nil
		}
	} else {
		log.Ctx(ctx).WarnContext(ctx, "failed to hash scenario", slog.Any("error", keyErr))
	}

	res, err := r.eval.Evaluate(ctx, s)
	if err != nil {
		return types.Result{}, false, err
	}
	if keyErr == nil {
		r.cache.Add(key, res)
	}
	return r.stamp(res), false, nil
}

func (r *Runner) stamp(res types.Result) types.Result {
	res.RunID = r.newID()
	res.CreatedAt = r.now().UTC()
	return res
}

// RunAll evaluates every scenario. A failing scenario is reported in its
// Outcome and does not stop the others. The returned error is only set when
// ctx ends before the batch finishes.
func (r *Runner) RunAll(ctx context.Context, scenarios []types.Scenario) ([]Outcome, error) {
	outcomes := make([]Outcome, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, s := range scenarios {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, cached, err := r.Run(gctx, s)
			o := Outcome{Index: i, Cached: cached}
			if err != nil {
				o.Error = err.Error()
			} else {
				o.Result = &res
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Ctx(ctx).DebugContext(
		ctx,
		"evaluated batch",
		slog.Int("scenarios", len(scenarios)),
		slog.Int("workers", r.workers),
		slog.Int("cached", r.cache.Len()),
	)
	return outcomes, nil
}
