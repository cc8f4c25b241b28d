package anneal

import (
	"math"
	"math/rand"

	"github.com/piwi3910/floorplan/internal/hbtree"
	"github.com/piwi3910/floorplan/internal/model"
	"github.com/piwi3910/floorplan/internal/move"
)

// WireLengthFunc computes the wirelength term of the cost function.
// Returning 0 unconditionally is the documented baseline (spec.md §4.7):
// netlists are not ingested by this system.
type WireLengthFunc func(*model.Problem) float64

func zeroWireLength(*model.Problem) float64 { return 0 }

// Params configures one SimulatedAnnealer run (spec.md §4.7).
type Params struct {
	TInitial            float64 // 0 means auto-initialize via sampling
	TFinal              float64
	CoolingRate         float64 // geometric, 0.85-0.95
	MovesPerTemperature int     // 1000-2000
	NoImprovementLimit  int     // consecutive non-improving temperature levels
	ExtraCoolMultiplier float64 // 0.5
	RebalanceEvery      int     // > 0 overrides AdaptivePerturbation's rebalance interval

	AreaWeight       float64
	WirelengthWeight float64
	WireLength       WireLengthFunc

	// InitialMoveProbs optionally overrides AdaptivePerturbation's
	// uniform starting mix (SPEC_FULL.md §6.2's `move_probabilities`
	// config table). Nil keeps the uniform 1/5 default.
	InitialMoveProbs map[move.Op]float64

	Seed int64

	// ShouldStop is polled cooperatively at the start of each temperature
	// level and periodically inside the per-temperature loop (spec.md §5).
	// A nil func never stops early.
	ShouldStop func() bool
}

func (p *Params) shouldStop() bool {
	if p.ShouldStop == nil {
		return false
	}
	return p.ShouldStop()
}

// DefaultParams returns the mid-range defaults spec.md §4.7 documents.
func DefaultParams() Params {
	return Params{
		TFinal:              1.0,
		CoolingRate:         0.9,
		MovesPerTemperature: 1500,
		NoImprovementLimit:  5,
		ExtraCoolMultiplier: 0.5,
		AreaWeight:          1.0,
		WirelengthWeight:    0,
		WireLength:          zeroWireLength,
	}
}

// snapshot is a lightweight best-solution record: coordinates and
// rotation for every module. Because every quiescent point in the SA loop
// (post-accept-and-repack, or post-reject-undo-and-repack) is already a
// legal placement, "clone into best" only needs to capture per-module
// state, not the tree's internal structure — restoring a snapshot onto
// the live Problem is enough to reproduce that placement exactly.
type snapshot struct {
	x, y    map[string]int
	rotated map[string]bool
	cost    float64
	bboxArea int
	wireLength float64
}

func takeSnapshot(p *model.Problem, cost float64, bboxArea int, wireLength float64) snapshot {
	s := snapshot{
		x:       make(map[string]int, len(p.Order)),
		rotated: make(map[string]bool, len(p.Order)),
		cost:    cost,
		bboxArea: bboxArea,
		wireLength: wireLength,
	}
	for _, name := range p.Order {
		m := p.Modules[name]
		s.x[name] = m.X
		s.rotated[name] = m.Rotated()
	}
	// y stored separately to keep the struct simple.
	s.y = make(map[string]int, len(p.Order))
	for _, name := range p.Order {
		s.y[name] = p.Modules[name].Y
	}
	return s
}

func (s snapshot) restore(p *model.Problem) {
	for _, name := range p.Order {
		m := p.Modules[name]
		m.SetRotated(s.rotated[name])
		m.SetPosition(s.x[name], s.y[name])
	}
}

// Annealer runs the simulated-annealing search described in spec.md §4.7.
type Annealer struct {
	tree    *hbtree.Tree
	problem *model.Problem
	pool    *move.Pool
	ap      *AdaptivePerturbation
	rng     *rand.Rand
	params  Params

	best       snapshot
	haveBest   bool
	iterations int
}

// NewAnnealer builds an Annealer over an already-packed tree.
func NewAnnealer(tree *hbtree.Tree, problem *model.Problem, params Params) *Annealer {
	if params.WireLength == nil {
		params.WireLength = zeroWireLength
	}
	ap := NewAdaptivePerturbationWithProbs(params.InitialMoveProbs)
	if params.RebalanceEvery > 0 {
		ap.rebalanceEvery = params.RebalanceEvery
	}
	return &Annealer{
		tree:    tree,
		problem: problem,
		pool:    move.NewPool(),
		ap:      ap,
		rng:     rand.New(rand.NewSource(params.Seed)),
		params:  params,
	}
}

func (a *Annealer) cost() (total float64, bboxArea int, wireLength float64) {
	bboxArea = a.tree.BBoxArea()
	wireLength = a.params.WireLength(a.problem)
	total = a.params.AreaWeight*float64(bboxArea) + a.params.WirelengthWeight*wireLength
	return
}

// autoInitTemperature implements spec.md §4.7's temperature
// auto-initialization: sample ~500 random moves, measure |Δcost| for
// each, average, and solve for T such that a typical uphill move is
// accepted with probability ~0.8.
func (a *Annealer) autoInitTemperature() float64 {
	const samples = 500
	costBefore, _, _ := a.cost()
	var sumAbsDelta float64
	var n int

	for i := 0; i < samples; i++ {
		idx, ok := a.generateMove()
		if !ok {
			continue
		}
		rec := a.pool.Get(idx)
		if a.applyMove(rec) {
			a.tree.Pack()
			costAfter, _, _ := a.cost()
			sumAbsDelta += math.Abs(costAfter - costBefore)
			n++
			a.undoMove(rec)
			a.tree.Pack()
		}
		a.pool.Release(idx)
	}

	if n == 0 {
		return 1000 // no measurable moves; fall back to a mid-range default
	}
	avgDelta := sumAbsDelta / float64(n)
	if avgDelta == 0 {
		return 1000
	}
	t := -avgDelta / math.Log(0.8)
	if t < 100 {
		t = 100
	}
	if t > 1e4 {
		t = 1e4
	}
	return t
}

// Run executes the full annealing schedule and leaves the best placement
// found applied to the live Problem (see Best for its cost).
func (a *Annealer) Run() {
	a.tree.Pack()
	cost, bboxArea, wireLength := a.cost()
	a.best = takeSnapshot(a.problem, cost, bboxArea, wireLength)
	a.haveBest = true

	T := a.params.TInitial
	if T <= 0 {
		T = a.autoInitTemperature()
	}

	stagnation := 0
	for T > a.params.TFinal {
		if a.params.shouldStop() {
			break
		}
		improvedThisTemp := a.runTemperatureLevel(T)
		if !improvedThisTemp {
			stagnation++
			if stagnation >= a.params.NoImprovementLimit {
				T *= a.params.ExtraCoolMultiplier
				stagnation = 0
			}
		} else {
			stagnation = 0
		}
		T *= a.params.CoolingRate
	}

	a.best.restore(a.problem)
	a.tree.Pack()
}

// runTemperatureLevel runs spec.md §4.7's per-temperature loop and reports
// whether the best solution improved during this level.
func (a *Annealer) runTemperatureLevel(T float64) bool {
	improved := false
	for i := 0; i < a.params.MovesPerTemperature; i++ {
		if i%8 == 0 && a.params.shouldStop() {
			return improved
		}

		idx, ok := a.generateMove()
		if !ok {
			continue
		}
		rec := a.pool.Get(idx)
		a.ap.RecordAttempt(rec.Op)

		costBefore, _, _ := a.cost()
		if !a.applyMove(rec) {
			a.pool.Release(idx)
			continue
		}
		a.tree.Pack()
		costAfter, bboxArea, wireLength := a.cost()
		delta := costAfter - costBefore

		accept := delta <= 0
		if !accept && T > 0 {
			accept = a.rng.Float64() < math.Exp(-delta/T)
		}

		if accept {
			if delta < 0 {
				a.ap.RecordSuccess(rec.Op, -delta)
			}
			if costAfter < a.best.cost {
				a.best = takeSnapshot(a.problem, costAfter, bboxArea, wireLength)
				improved = true
			}
		} else {
			a.undoMove(rec)
			a.tree.Pack()
		}
		a.pool.Release(idx)
		a.iterations++
	}
	return improved
}

// Best returns the best solution found so far, whether or not Run has
// returned (safe to call from the driver's emergency-shutdown path).
func (a *Annealer) Best() (cost float64, bboxArea int, wireLength float64, ok bool) {
	if !a.haveBest {
		return 0, 0, 0, false
	}
	return a.best.cost, a.best.bboxArea, a.best.wireLength, true
}

// ApplyBest writes the best snapshot back onto the live Problem.
func (a *Annealer) ApplyBest() {
	if a.haveBest {
		a.best.restore(a.problem)
	}
}

// Iterations returns the number of applied-and-decided moves so far.
func (a *Annealer) Iterations() int { return a.iterations }
