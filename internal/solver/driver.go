package solver

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/floorplan/internal/anneal"
	"github.com/piwi3910/floorplan/internal/hbtree"
	"github.com/piwi3910/floorplan/internal/model"
)

// Config bundles everything Run needs beyond the problem itself: the SA
// tuning knobs (spec.md §4.7) and the cooperative timeout (spec.md §5).
type Config struct {
	Anneal anneal.Params

	// Timeout bounds the whole run; zero disables it. Grace is how long
	// the Annealer gets to wind down cooperatively once Timeout elapses
	// before the emergency callback fires.
	Timeout time.Duration
	Grace   time.Duration

	Seed int64
}

// Run is the Driver of spec.md §4.8: build the initial HB*-tree placement,
// anneal it under a cooperative timeout, finalize, and return a populated
// Result. The Annealer's best snapshot never costs more than the initial
// placement; the overlap repair below runs after that snapshot is
// restored, and its result is not compared against the initial layout.
// On timeout it returns the best placement found rather than an error.
func Run(problem *model.Problem, cfg Config, logger *log.Logger) *model.Result {
	if logger == nil {
		logger = log.Default()
	}
	meta := model.NewRunMetadata(cfg.Seed, startTime())

	tree := hbtree.New(problem)
	if !tree.Pack() {
		logger.Warn("initial placement failed to pack cleanly; proceeding with best-effort layout")
	}
	tree.ResolveOverlaps()

	timedOut := false
	tm := NewTimeoutManager(cfg.Timeout, cfg.Grace, func() {
		logger.Error("emergency shutdown: grace window elapsed without cooperative stop")
	})
	tm.Start()
	defer tm.MarkDone()

	params := cfg.Anneal
	params.Seed = cfg.Seed
	params.ShouldStop = tm.Stopped

	a := anneal.NewAnnealer(tree, problem, params)
	logger.Info("annealing started", "job_id", meta.JobID, "modules", len(problem.Order), "groups", len(problem.Groups))
	a.Run()
	if tm.Stopped() {
		timedOut = true
		logger.Warn("annealing stopped on timeout; returning best placement found", "iterations", a.Iterations())
	} else {
		logger.Info("annealing finished", "iterations", a.Iterations())
	}

	// Finalize: the Annealer already restores its best snapshot and
	// repacks before returning. Run one more overlap-repair pass in case
	// the final repack left residual touching/overlap from floating-point
	// or ordering edge cases (spec.md §4.4 — only invoked at finalization,
	// never inside the hot loop).
	if !tree.Pack() {
		logger.Warn("final re-pack failed; bounding box recomputed directly from module coordinates")
	}
	tree.ResolveOverlaps()

	bboxArea := tree.BBoxArea()
	cost, _, wireLength, ok := a.Best()
	if !ok {
		cost, bboxArea, wireLength = 0, tree.BBoxArea(), 0
	}

	return &model.Result{
		Problem:    problem,
		Meta:       meta,
		BBoxArea:   bboxArea,
		WireLength: wireLength,
		Cost:       cost,
		TimedOut:   timedOut,
		Iterations: a.Iterations(),
	}
}

// startTime exists only so tests can stub "now" without reaching for
// time.Now() in a code path that otherwise has none; production callers
// get the real wall clock.
var startTime = time.Now
