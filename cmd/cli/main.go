package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"goari/adapters/cluster"
	"goari/adapters/excel"
	"goari/adapters/rng"
	"goari/adapters/stats/permutation"
	"goari/app"
	"goari/domain/ari"
	"goari/internal"
	"goari/internal/api"
	"goari/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

func main() {
	// .env is optional for the CLI
	_ = godotenv.Load()
	defaults := loadDefaults()

	rootCmd := &cobra.Command{
		Use:   "goari-cli",
		Short: "All-resolutions inference on observation files",
	}

	rootCmd.AddCommand(
		newInferCmd(defaults),
		newPValuesCmd(defaults),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type commonFlags struct {
	alpha      float64
	shape      string
	thresholds string
	workers    int
	edges      string
	vertices   int
}

func (f *commonFlags) register(cmd *cobra.Command, defaults config.InferenceConfig) {
	cmd.Flags().Float64Var(&f.alpha, "alpha", defaults.Alpha, "False discovery control level")
	cmd.Flags().StringVar(&f.shape, "shape", "", "Sample shape, e.g. 10,32 (default: one axis)")
	cmd.Flags().StringVar(&f.thresholds, "thresholds", "auto", `Threshold grid: "auto", "all" or a comma-separated list`)
	cmd.Flags().IntVar(&f.workers, "workers", defaults.Workers, "Worker goroutines")
	cmd.Flags().StringVar(&f.edges, "edges", "", "Spatial adjacency edges, e.g. 0-1,1-2 (default: regular lattice)")
	cmd.Flags().IntVar(&f.vertices, "vertices", 0, "Vertices of the adjacency (default: locations per time point)")
}

// adjacency returns nil when --edges is not set
func (f *commonFlags) adjacency(shape ari.Shape) (*cluster.Adjacency, error) {
	edges, err := cluster.ParseEdges(f.edges)
	if err != nil {
		return nil, fmt.Errorf("invalid --edges: %w", err)
	}
	return cluster.AdjacencyForShape(shape, edges, f.vertices)
}

func newInferCmd(defaults config.InferenceConfig) *cobra.Command {
	var flags commonFlags
	var dataFiles []string
	var method, tail, statistic string
	var permutations, shift int
	var seed int64

	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Run ARI on one (one-sample) or two (two-sample) observation files",
		Long: `Run all-resolutions inference on observation files.

Each file holds one group: a header row naming the locations, then one row
per observation. Pass --data once for a one-sample test and twice for an
independent two-sample test. Files may be .xlsx or .csv.

Example: goari-cli infer --data a.xlsx --data b.csv --shape 10,32 --method permutation --permutations 1000 --seed 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := make([]*mat.Dense, 0, len(dataFiles))
			for _, path := range dataFiles {
				m, err := excel.NewDataReader(path).ReadObservations()
				if err != nil {
					return err
				}
				groups = append(groups, m)
			}
			if len(groups) == 0 {
				return fmt.Errorf("at least one --data file is required")
			}
			_, locations := groups[0].Dims()
			shape, err := parseShape(flags.shape, locations)
			if err != nil {
				return err
			}
			samples, err := ari.NewSamples(shape, groups...)
			if err != nil {
				return err
			}
			parsedTail, err := ari.ParseTail(tail)
			if err != nil {
				return err
			}
			parsedMethod, err := ari.ParseMethod(method)
			if err != nil {
				return err
			}
			grid, err := ari.ParseGrid(flags.thresholds)
			if err != nil {
				return err
			}
			statfun, err := permutation.NamedStatFunc(statistic, parsedTail)
			if err != nil {
				return err
			}
			adjacency, err := flags.adjacency(shape)
			if err != nil {
				return err
			}

			req := app.InferenceRequest{
				Samples:      samples,
				Alpha:        flags.alpha,
				Tail:         parsedTail,
				Method:       parsedMethod,
				Permutations: permutations,
				Grid:         grid,
				Shift:        shift,
				StatFunc:     statfun,
				Seed:         defaults.Seed,
				Adjacency:    adjacency,
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}
			result, err := newService(flags.workers, defaults).Infer(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}

	flags.register(cmd, defaults)
	cmd.Flags().StringArrayVar(&dataFiles, "data", nil, "Observation file (.xlsx or .csv); repeat for two groups")
	cmd.Flags().StringVar(&method, "method", string(ari.MethodParametric), "parametric or permutation")
	cmd.Flags().StringVar(&tail, "tail", "two-sided", "two-sided, greater or less")
	cmd.Flags().IntVar(&permutations, "permutations", defaults.Permutations, "Number of permutations")
	cmd.Flags().IntVar(&shift, "shift", 0, "Critical vector shift (permutation method)")
	cmd.Flags().StringVar(&statistic, "statistic", "", `Per-location statistic: "ttest" or "welch" (default: built-in)`)
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (default: ARI_SEED or time-based)")

	return cmd
}

func newPValuesCmd(defaults config.InferenceConfig) *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "pvalues [file]",
		Short: "Run parametric ARI on a precomputed p-value row",
		Long: `Run parametric all-resolutions inference on p-values computed elsewhere.

The file holds a header row and a single row of p-values.

Example: goari-cli pvalues pvals.csv --shape 8,8 --thresholds all
         goari-cli pvalues pvals.csv --edges 0-1,1-2,2-3 --thresholds 0.05`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := excel.NewDataReader(args[0]).ReadObservations()
			if err != nil {
				return err
			}
			if rows, _ := m.Dims(); rows != 1 {
				return fmt.Errorf("expected one row of p-values, got %d", rows)
			}
			values := mat.Row(nil, 0, m)
			shape, err := parseShape(flags.shape, len(values))
			if err != nil {
				return err
			}
			p, err := ari.MapFrom(shape, values)
			if err != nil {
				return err
			}
			grid, err := ari.ParseGrid(flags.thresholds)
			if err != nil {
				return err
			}
			adjacency, err := flags.adjacency(shape)
			if err != nil {
				return err
			}
			result, err := newService(flags.workers, defaults).InferFromPValues(cmd.Context(), app.PValueRequest{
				PValues:   p,
				Alpha:     flags.alpha,
				Grid:      grid,
				Adjacency: adjacency,
			})
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}

	flags.register(cmd, defaults)
	return cmd
}

// loadDefaults reads the environment once; every subcommand shares the result
func loadDefaults() config.InferenceConfig {
	cfg, err := config.Load()
	if err != nil {
		internal.DefaultLogger.Warn("configuration: %v; using defaults", err)
		return config.Default().Inference
	}
	internal.DefaultLogger = internal.NewLogger(cfg.LogLevel)
	return cfg.Inference
}

func newService(workers int, defaults config.InferenceConfig) *app.InferenceService {
	engine := permutation.NewEngine(rng.NewSeededAdapter(), workers)
	engine.SetChunkSize(defaults.ChunkSize)
	service := app.NewInferenceService(engine, workers)
	service.SetGridPoints(defaults.GridPoints)
	return service
}

func parseShape(s string, locations int) (ari.Shape, error) {
	if strings.TrimSpace(s) == "" {
		return ari.Shape{locations}, nil
	}
	var shape ari.Shape
	for _, field := range strings.Split(s, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("invalid --shape %q: %w", s, err)
		}
		shape = append(shape, d)
	}
	if shape.Size() != locations {
		return nil, fmt.Errorf("--shape %s describes %d locations, data has %d", s, shape.Size(), locations)
	}
	return shape, nil
}

func printResult(result *ari.Result) error {
	out, err := json.MarshalIndent(api.NewInferResponse(result), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
