// Package permutation builds null distributions of per-location p-values by
// sign-flipping (one group) or relabeling (several groups) observations.
package permutation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"goari/domain/ari"
	"goari/domain/core"
	"goari/internal"
	"goari/ports"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

const defaultChunkSize = 64

// Options configures one resampling run
type Options struct {
	Permutations int
	Tail         ari.Tail
	Seed         int64
	// StatFunc replaces the built-in t-test in Distribution; Test ignores it
	StatFunc ari.StatFunc
}

func (o Options) validate() error {
	if err := o.Tail.Validate(); err != nil {
		return err
	}
	if o.Permutations < 1 {
		return core.NewError(core.ErrInvalidParameter, "need at least one permutation, got %d", o.Permutations)
	}
	return nil
}

// Engine runs permutation realizations over a pool of workers. Each chunk of
// realizations draws from its own RNG stream, so output depends only on the
// seed and never on the worker count.
type Engine struct {
	rngPort   ports.RNGPort
	workers   int
	chunkSize int
	logger    *internal.Logger
}

// NewEngine creates an engine; workers < 1 means GOMAXPROCS
func NewEngine(rngPort ports.RNGPort, workers int) *Engine {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		rngPort:   rngPort,
		workers:   workers,
		chunkSize: defaultChunkSize,
		logger:    internal.DefaultLogger.With("permutation"),
	}
}

// SetChunkSize configures how many realizations share one RNG stream.
// Changing it changes the realizations drawn for a given seed.
func (e *Engine) SetChunkSize(n int) {
	if n < 1 {
		n = 1
	}
	e.chunkSize = n
}

// Test is the mass-univariate permutation test. The observed statistic is the
// column mean (one group) or the difference of group means (two groups); the
// p-value of every location is the +1/+1 corrected fraction of realizations at
// least as extreme in the requested tail.
func (e *Engine) Test(ctx context.Context, samples ari.Samples, opts Options) ([]float64, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(samples.Groups) > 2 {
		return nil, core.NewError(core.ErrInvalidGroups,
			"a two-sample test needs exactly two groups, got %d", len(samples.Groups))
	}

	start := time.Now()
	d := newDesign(samples)
	locations := samples.Locations()
	observed := make([]float64, locations)
	d.effect(d.identity(), observed)

	workers := e.poolSize(opts.Permutations)
	greater := make([][]int, workers)
	lesser := make([][]int, workers)
	labels := make([][]int, workers)
	effects := make([][]float64, workers)
	for w := 0; w < workers; w++ {
		greater[w] = make([]int, locations)
		lesser[w] = make([]int, locations)
		labels[w] = d.identity()
		effects[w] = make([]float64, locations)
	}

	err := e.forEachRealization(ctx, d.stage(), opts.Seed, opts.Permutations, workers,
		func(w, _ int, r *rand.Rand) error {
			d.draw(r, labels[w])
			d.effect(labels[w], effects[w])
			for j, v := range effects[w] {
				if v >= observed[j] {
					greater[w][j]++
				}
				if v <= observed[j] {
					lesser[w][j]++
				}
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	denom := float64(opts.Permutations + 1)
	p := make([]float64, locations)
	for j := range p {
		g, l := 1, 1
		for w := 0; w < workers; w++ {
			g += greater[w][j]
			l += lesser[w][j]
		}
		pGreater := float64(g) / denom
		pLess := float64(l) / denom
		switch opts.Tail {
		case ari.TailGreater:
			p[j] = pGreater
		case ari.TailLess:
			p[j] = pLess
		default:
			p[j] = math.Min(1, 2*math.Min(pGreater, pLess))
		}
	}

	e.logger.Debug("%s test: %d locations, %d permutations in %v",
		d.stage(), locations, opts.Permutations, time.Since(start))
	return p, nil
}

// Distribution returns the PermutationMatrix: one row per location, column 0
// holding the observed p-values and columns 1..n one null realization each.
func (e *Engine) Distribution(ctx context.Context, samples ari.Samples, opts Options) (*mat.Dense, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	statfun := opts.StatFunc
	if statfun == nil {
		if len(samples.Groups) > 2 {
			return nil, core.NewError(core.ErrInvalidGroups,
				"a two-sample test needs exactly two groups, got %d", len(samples.Groups))
		}
		statfun = TTest(opts.Tail)
	}

	start := time.Now()
	d := newDesign(samples)
	locations := samples.Locations()

	observed, err := applyStatFunc(statfun, samples.Groups, locations)
	if err != nil {
		return nil, err
	}
	dist := mat.NewDense(locations, opts.Permutations+1, nil)
	dist.SetCol(0, observed)

	workers := e.poolSize(opts.Permutations)
	labels := make([][]int, workers)
	for w := range labels {
		labels[w] = d.identity()
	}

	// Every realization owns its column, so workers write without locking.
	err = e.forEachRealization(ctx, d.stage(), opts.Seed, opts.Permutations, workers,
		func(w, i int, r *rand.Rand) error {
			d.draw(r, labels[w])
			p, err := applyStatFunc(statfun, d.materialize(labels[w]), locations)
			if err != nil {
				return err
			}
			dist.SetCol(i+1, p)
			return nil
		})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("%s distribution: %d locations, %d permutations in %v",
		d.stage(), locations, opts.Permutations, time.Since(start))
	return dist, nil
}

func applyStatFunc(statfun ari.StatFunc, groups []*mat.Dense, locations int) ([]float64, error) {
	p, err := statfun(groups)
	if err != nil {
		return nil, fmt.Errorf("statistic function failed: %w", err)
	}
	if len(p) != locations {
		return nil, core.NewError(core.ErrInvalidParameter,
			"statistic function returned %d p-values for %d locations", len(p), locations)
	}
	return p, nil
}

func (e *Engine) poolSize(permutations int) int {
	chunks := (permutations + e.chunkSize - 1) / e.chunkSize
	return max(1, min(e.workers, chunks))
}

// forEachRealization calls fn for realizations 0..n-1. Chunks of realizations
// are fed to a fixed pool of workers; fn gets the worker slot so callers can
// keep per-worker scratch space and accumulators.
func (e *Engine) forEachRealization(ctx context.Context, stage string, seed int64, n, workers int,
	fn func(worker, index int, r *rand.Rand) error) error {
	chunks := (n + e.chunkSize - 1) / e.chunkSize
	work := make(chan int)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(work)
		for c := 0; c < chunks; c++ {
			select {
			case work <- c:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var once sync.Once
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for c := range work {
				r, err := e.rngPort.Stream(gctx, stage, c, seed)
				if err != nil {
					return err
				}
				end := min((c+1)*e.chunkSize, n)
				for i := c * e.chunkSize; i < end; i++ {
					if err := gctx.Err(); err != nil {
						once.Do(func() { e.logger.Warn("%s stopped at realization %d: %v", stage, i, err) })
						return err
					}
					if err := fn(w, i, r); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	return g.Wait()
}
