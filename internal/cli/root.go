package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/floorplan/internal/anneal"
	"github.com/piwi3910/floorplan/internal/config"
	"github.com/piwi3910/floorplan/internal/ioformat"
	"github.com/piwi3910/floorplan/internal/report"
	"github.com/piwi3910/floorplan/internal/solver"
)

// opts holds the flags of the single `floorplan <input> <output>
// [area_ratio]` command (spec.md §6, SPEC_FULL.md §6.1).
type opts struct {
	verbose bool

	seed          int64
	timeout       time.Duration
	grace         time.Duration
	tInit         float64
	tFinal        float64
	coolingRate   float64
	movesPerTemp  int
	noImproveLim  int
	configPath    string
	reportPrefix  string
}

// Execute builds and runs the root command, returning an error on an
// unrecoverable failure (spec.md §6: exit code 1). A successful run,
// including one that stopped on timeout but still wrote an output file,
// returns nil.
func Execute() error {
	o := &opts{}

	root := &cobra.Command{
		Use:          "floorplan <input_file> <output_file> [area_ratio]",
		Short:        "Pack symmetry-constrained analog modules with simulated annealing",
		Args:         cobra.RangeArgs(2, 3),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if o.verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				o.seed = time.Now().UnixNano()
			}
			return run(cmd, args, o)
		},
	}

	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "enable debug-level logging")
	root.Flags().Int64Var(&o.seed, "seed", 0, "RNG seed (default: derived from current time)")
	root.Flags().DurationVar(&o.timeout, "timeout", 0, "cooperative timeout (0 = unbounded)")
	root.Flags().DurationVar(&o.grace, "grace", 2*time.Second, "emergency-shutdown grace window")
	root.Flags().Float64Var(&o.tInit, "t-init", 0, "initial annealing temperature (0 = auto-initialize)")
	root.Flags().Float64Var(&o.tFinal, "t-final", 0, "final annealing temperature (0 = use default)")
	root.Flags().Float64Var(&o.coolingRate, "cooling-rate", 0, "geometric cooling rate (0 = use default)")
	root.Flags().IntVar(&o.movesPerTemp, "moves-per-temp", 0, "moves attempted per temperature level (0 = use default)")
	root.Flags().IntVar(&o.noImproveLim, "no-improve-limit", 0, "consecutive non-improving levels before extra cooling (0 = use default)")
	root.Flags().StringVar(&o.configPath, "config", "", "optional TOML tunables file")
	root.Flags().StringVar(&o.reportPrefix, "report", "", "optional report bundle prefix (<prefix>.pdf/.xlsx/.dxf)")

	return root.ExecuteContext(context.Background())
}

func run(cmd *cobra.Command, args []string, o *opts) error {
	logger := loggerFromContext(cmd.Context())

	inputPath, outputPath := args[0], args[1]
	areaRatio := 1.0
	if len(args) == 3 {
		v, err := fmt.Sscanf(args[2], "%f", &areaRatio)
		if err != nil || v != 1 {
			return fmt.Errorf("area_ratio must be a number, got %q", args[2])
		}
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer in.Close()

	problem, err := ioformat.ParseProblem(in)
	if err != nil {
		return fmt.Errorf("parsing input file: %w", err)
	}
	logger.Info("problem loaded", "modules", len(problem.Order), "groups", len(problem.Groups))

	params := anneal.DefaultParams()
	params.AreaWeight = areaRatio
	params.WirelengthWeight = 1 - areaRatio

	if o.configPath != "" {
		tun, err := config.Load(o.configPath)
		if err != nil {
			return fmt.Errorf("loading config file: %w", err)
		}
		params = config.Apply(params, tun)
	}

	if o.tInit != 0 {
		params.TInitial = o.tInit
	}
	if o.tFinal != 0 {
		params.TFinal = o.tFinal
	}
	if o.coolingRate != 0 {
		params.CoolingRate = o.coolingRate
	}
	if o.movesPerTemp != 0 {
		params.MovesPerTemperature = o.movesPerTemp
	}
	if o.noImproveLim != 0 {
		params.NoImprovementLimit = o.noImproveLim
	}

	cfg := solver.Config{
		Anneal:  params,
		Timeout: o.timeout,
		Grace:   o.grace,
		Seed:    o.seed,
	}

	res := solver.Run(problem, cfg, logger)

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	writeErr := ioformat.WriteProblem(out, problem, res.BBoxArea)
	closeErr := out.Close()
	if writeErr != nil {
		return fmt.Errorf("writing output file: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing output file: %w", closeErr)
	}

	if o.reportPrefix != "" {
		if err := report.WriteAll(o.reportPrefix, problem, res); err != nil {
			logger.Warn("report enrichment failed", "err", err)
		}
	}

	if res.TimedOut {
		logger.Warn("run stopped on timeout; best placement found was written", "bbox_area", res.BBoxArea)
	} else {
		logger.Info("run finished", "bbox_area", res.BBoxArea, "cost", res.Cost, "iterations", res.Iterations)
	}
	return nil
}
