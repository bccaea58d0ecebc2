package app

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"goari/adapters/cluster"
	"goari/adapters/stats/permutation"
	"goari/adapters/tdp"
	"goari/domain/ari"
	"goari/domain/core"
	"goari/internal"
	"goari/ports"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

const defaultGridPoints = 1000

// ParametricStatFuncAdvisory is attached to results whose parametric oracle
// was built from a caller-supplied statistic function.
const ParametricStatFuncAdvisory = "parametric ARI assumes the p-values of individual tests are valid; " +
	"if the custom statistic is not exact (e.g. a parametric test on M/EEG data), consider the permutation method"

// InferenceService searches cluster thresholds and reports simultaneous
// true discovery proportion bounds for every location.
type InferenceService struct {
	engine     *permutation.Engine
	logger     *internal.Logger
	workers    int
	gridPoints int
}

// InferenceRequest defines the inputs of one all-resolutions inference call
type InferenceRequest struct {
	Samples      ari.Samples
	Alpha        float64
	Tail         ari.Tail
	Method       ari.Method
	Permutations int
	Grid         ari.Grid
	Seed         *int64 // optional, time-based when nil
	StatFunc     ari.StatFunc
	Shift        int // permutation method only

	// Adjacency describes spatial neighbours; nil means a regular lattice
	Adjacency *cluster.Adjacency
	// Finder overrides the cluster finder derived from Adjacency
	Finder ports.ClusterFinder
}

// PValueRequest runs parametric inference on p-values computed elsewhere
type PValueRequest struct {
	PValues   ari.Map
	Alpha     float64
	Grid      ari.Grid
	Adjacency *cluster.Adjacency
	Finder    ports.ClusterFinder
}

// NewInferenceService creates the service; workers < 1 means GOMAXPROCS
func NewInferenceService(engine *permutation.Engine, workers int) *InferenceService {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &InferenceService{
		engine:     engine,
		logger:     internal.DefaultLogger.With("inference"),
		workers:    workers,
		gridPoints: defaultGridPoints,
	}
}

// SetGridPoints sets the size of the automatic threshold grid
func (s *InferenceService) SetGridPoints(n int) {
	if n < 1 {
		n = defaultGridPoints
	}
	s.gridPoints = n
}

// Infer builds the requested oracle from the samples and runs the cluster search
func (s *InferenceService) Infer(ctx context.Context, req InferenceRequest) (*ari.Result, error) {
	startTime := time.Now()

	if req.Method == "" {
		req.Method = ari.MethodParametric
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	result := &ari.Result{
		RunID:  core.NewRunID(),
		Method: req.Method,
		Alpha:  req.Alpha,
		Seed:   seed,
	}
	opts := permutation.Options{
		Permutations: req.Permutations,
		Tail:         req.Tail,
		Seed:         seed,
		StatFunc:     req.StatFunc,
	}

	var oracle ports.TDPOracle
	switch req.Method {
	case ari.MethodParametric:
		p, err := s.observedPValues(ctx, req.Samples, opts)
		if err != nil {
			return nil, err
		}
		if req.StatFunc != nil {
			result.Advisories = append(result.Advisories, ParametricStatFuncAdvisory)
			s.logger.Warn("run %s: %s", result.RunID, ParametricStatFuncAdvisory)
		}
		parametric, err := tdp.NewParametric(p, req.Alpha)
		if err != nil {
			return nil, fmt.Errorf("parametric oracle: %w", err)
		}
		s.logger.Debug("run %s: hommel value %d", result.RunID, parametric.HommelValue())
		oracle = parametric

	case ari.MethodPermutation:
		dist, err := s.engine.Distribution(ctx, req.Samples, opts)
		if err != nil {
			return nil, fmt.Errorf("permutation distribution: %w", err)
		}
		perm, err := tdp.NewPermutation(dist, req.Samples.Shape, req.Alpha, req.Shift)
		if err != nil {
			return nil, fmt.Errorf("permutation oracle: %w", err)
		}
		s.logger.Debug("run %s: lambda %.6g", result.RunID, perm.Lambda())
		oracle = perm
	}

	if err := s.search(ctx, result, oracle, req.Grid, req.Adjacency, req.Finder); err != nil {
		return nil, err
	}

	s.logger.Info("run %s: method=%s locations=%d permutations=%d thresholds=%d clusters=%d in %v",
		result.RunID, req.Method, req.Samples.Locations(), req.Permutations,
		result.Thresholds, len(result.Clusters), time.Since(startTime))
	return result, nil
}

// InferFromPValues runs parametric inference on an existing p-value map
func (s *InferenceService) InferFromPValues(ctx context.Context, req PValueRequest) (*ari.Result, error) {
	if err := ari.ValidateAlpha(req.Alpha); err != nil {
		return nil, err
	}
	if err := req.Grid.Validate(); err != nil {
		return nil, err
	}
	oracle, err := tdp.NewParametric(req.PValues, req.Alpha)
	if err != nil {
		return nil, fmt.Errorf("parametric oracle: %w", err)
	}
	result := &ari.Result{
		RunID:  core.NewRunID(),
		Method: ari.MethodParametric,
		Alpha:  req.Alpha,
	}
	if err := s.search(ctx, result, oracle, req.Grid, req.Adjacency, req.Finder); err != nil {
		return nil, err
	}
	s.logger.Info("run %s: p-value input locations=%d thresholds=%d clusters=%d",
		result.RunID, req.PValues.Len(), result.Thresholds, len(result.Clusters))
	return result, nil
}

func (s *InferenceService) validate(req InferenceRequest) error {
	if err := ari.ValidateAlpha(req.Alpha); err != nil {
		return err
	}
	if err := req.Tail.Validate(); err != nil {
		return err
	}
	if req.Method != ari.MethodParametric && req.Method != ari.MethodPermutation {
		return core.NewError(core.ErrInvalidParameter, "unknown method %q", string(req.Method))
	}
	if req.Shift < 0 {
		return core.NewError(core.ErrInvalidShift, "shift must be non-negative, got %d", req.Shift)
	}
	if err := req.Grid.Validate(); err != nil {
		return err
	}
	if req.Samples.Locations() == 0 {
		return core.NewError(core.ErrInvalidShape, "samples have no locations")
	}
	return nil
}

// observedPValues computes the p-values the parametric oracle trusts: the
// caller's statistic when given, else the empirical permutation test.
func (s *InferenceService) observedPValues(ctx context.Context, samples ari.Samples, opts permutation.Options) (ari.Map, error) {
	if opts.StatFunc == nil {
		p, err := s.engine.Test(ctx, samples, opts)
		if err != nil {
			return ari.Map{}, fmt.Errorf("permutation test: %w", err)
		}
		return ari.MapFrom(samples.Shape, p)
	}
	p, err := opts.StatFunc(samples.Groups)
	if err != nil {
		return ari.Map{}, fmt.Errorf("statistic function: %w", err)
	}
	if len(p) != samples.Locations() {
		return ari.Map{}, core.NewError(core.ErrInvalidParameter,
			"statistic function returned %d p-values for %d locations", len(p), samples.Locations())
	}
	return ari.MapFrom(samples.Shape, p)
}

// search scores every threshold of the grid and fills the TDP map, final
// clusters and summary of result.
func (s *InferenceService) search(ctx context.Context, result *ari.Result, oracle ports.TDPOracle,
	grid ari.Grid, adjacency *cluster.Adjacency, finder ports.ClusterFinder) error {

	p := oracle.PValues()
	result.PValues = p

	if finder == nil {
		var err error
		finder, err = defaultFinder(p.Shape, adjacency)
		if err != nil {
			return err
		}
	}

	thresholds := buildThresholds(grid, p.Values, result.Alpha, s.gridPoints)
	result.Thresholds = len(thresholds)

	tdpValues, err := s.scoreThresholds(ctx, p, thresholds, oracle, finder)
	if err != nil {
		return err
	}
	result.TDP = ari.Map{Shape: p.Shape.Clone(), Values: tdpValues}

	final, err := finder.FindClusters(ctx, tdpValues, 1-result.Alpha, ports.AtOrAbove)
	if err != nil {
		return fmt.Errorf("final clusters: %w", err)
	}
	result.Clusters = make([]ari.Mask, 0, len(final))
	for _, idx := range final {
		mask, err := ari.NewMask(p.Shape, idx)
		if err != nil {
			return err
		}
		result.Clusters = append(result.Clusters, mask)
	}

	result.Summary, err = summarize(tdpValues, 1-result.Alpha)
	return err
}

// scoreThresholds fans thresholds out to workers. Each worker keeps its own
// TDP map; maps are merged by element-wise maximum once all are done.
func (s *InferenceService) scoreThresholds(ctx context.Context, p ari.Map, thresholds []float64,
	oracle ports.TDPOracle, finder ports.ClusterFinder) ([]float64, error) {

	workers := s.workers
	if workers > len(thresholds) {
		workers = len(thresholds)
	}
	if workers < 1 {
		workers = 1
	}

	locals := make([][]float64, workers)
	jobs := make(chan float64)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for _, tau := range thresholds {
			select {
			case jobs <- tau:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		local := make([]float64, len(p.Values))
		locals[w] = local
		g.Go(func() error {
			for tau := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := scoreThreshold(gctx, p, tau, oracle, finder, local); err != nil {
					return fmt.Errorf("threshold %g: %w", tau, err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := locals[0]
	for _, local := range locals[1:] {
		for i, v := range local {
			merged[i] = math.Max(merged[i], v)
		}
	}
	return merged, nil
}

func scoreThreshold(ctx context.Context, p ari.Map, tau float64, oracle ports.TDPOracle,
	finder ports.ClusterFinder, tdpValues []float64) error {

	clusters, err := finder.FindClusters(ctx, p.Values, tau, ports.AtOrBelow)
	if err != nil {
		return err
	}
	for _, idx := range clusters {
		mask, err := ari.NewMask(p.Shape, idx)
		if err != nil {
			return err
		}
		proportion, err := oracle.TrueDiscoveryProportion(mask)
		if err != nil {
			return err
		}
		for _, i := range idx {
			if proportion > tdpValues[i] {
				tdpValues[i] = proportion
			}
		}
	}
	return nil
}

func defaultFinder(shape ari.Shape, adjacency *cluster.Adjacency) (ports.ClusterFinder, error) {
	if adjacency == nil {
		return cluster.NewLattice(shape)
	}
	adj, err := cluster.SetupAdjacency(adjacency, shape.Size(), shape[0])
	if err != nil {
		return nil, err
	}
	return cluster.NewGraph(adj), nil
}

// buildThresholds expands a grid into a sorted list of distinct thresholds
func buildThresholds(grid ari.Grid, p []float64, alpha float64, points int) []float64 {
	var thresholds []float64
	switch grid.Kind {
	case ari.GridExplicit:
		thresholds = append(thresholds, grid.Thresholds...)
	case ari.GridAll:
		thresholds = append(thresholds, p...)
	default:
		lo := math.Inf(1)
		for _, v := range p {
			if v > 0 && v < lo {
				lo = v
			}
		}
		if alpha <= 0 || math.IsInf(lo, 1) || points < 2 || lo == alpha {
			return []float64{alpha}
		}
		thresholds = make([]float64, points)
		floats.LogSpan(thresholds, math.Min(alpha, lo), math.Max(alpha, lo))
	}

	sort.Float64s(thresholds)
	unique := thresholds[:0]
	for i, t := range thresholds {
		if i == 0 || t != thresholds[i-1] {
			unique = append(unique, t)
		}
	}
	return unique
}

func summarize(tdpValues []float64, level float64) (ari.Summary, error) {
	data := stats.Float64Data(tdpValues)
	maxTDP, err := stats.Max(data)
	if err != nil {
		return ari.Summary{}, fmt.Errorf("summary: %w", err)
	}
	meanTDP, err := stats.Mean(data)
	if err != nil {
		return ari.Summary{}, fmt.Errorf("summary: %w", err)
	}
	confident := 0
	for _, v := range tdpValues {
		if v >= level {
			confident++
		}
	}
	return ari.Summary{MaxTDP: maxTDP, MeanTDP: meanTDP, Confident: confident}, nil
}
