// Package anneal implements AdaptivePerturbation (spec.md §4.6) and the
// SimulatedAnnealer (spec.md §4.7): the move-based search loop that drives
// the HB*-tree toward a lower-cost placement.
package anneal

import "github.com/piwi3910/floorplan/internal/move"

var allOps = []move.Op{move.Rotate, move.Move, move.Swap, move.ChangeRep, move.ConvertSym}

// opFloors are the per-op minimum probabilities of spec.md §4.6 step 3.
var opFloors = map[move.Op]float64{
	move.Rotate:     0.10,
	move.Move:       0.30,
	move.Swap:       0.10,
	move.ChangeRep:  0.02,
	move.ConvertSym: 0.02,
}

type opStats struct {
	attempts          int
	successes         int
	totalImprovement  float64
}

func (s *opStats) successRate() float64 {
	if s.attempts == 0 {
		return 0
	}
	return float64(s.successes) / float64(s.attempts)
}

func (s *opStats) averageImprovement() float64 {
	if s.successes == 0 {
		return 0
	}
	return s.totalImprovement / float64(s.successes)
}

// AdaptivePerturbation tracks per-operation attempt/success/improvement
// statistics and periodically rebalances the SA's move-generation
// probabilities (spec.md §4.6).
type AdaptivePerturbation struct {
	probs map[move.Op]float64
	stats map[move.Op]*opStats

	rebalanceEvery int // iterations between rebalances; spec.md §4.6 says 50-100
	sinceRebalance  int
}

// NewAdaptivePerturbation returns an AdaptivePerturbation with uniform
// starting probabilities.
func NewAdaptivePerturbation() *AdaptivePerturbation {
	return NewAdaptivePerturbationWithProbs(nil)
}

// NewAdaptivePerturbationWithProbs returns an AdaptivePerturbation whose
// starting mix is the given per-op probabilities (normalized to sum to
// 1), or the uniform 1/5 split if initial is nil or sums to zero. This is
// the entry point SPEC_FULL.md §6.2's config-file `move_probabilities`
// table overrides through (internal/config.Apply).
func NewAdaptivePerturbationWithProbs(initial map[move.Op]float64) *AdaptivePerturbation {
	ap := &AdaptivePerturbation{
		probs:          make(map[move.Op]float64, len(allOps)),
		stats:          make(map[move.Op]*opStats, len(allOps)),
		rebalanceEvery: 75,
	}

	var sum float64
	for _, op := range allOps {
		sum += initial[op]
	}
	for _, op := range allOps {
		if sum > 0 {
			ap.probs[op] = initial[op] / sum
		} else {
			ap.probs[op] = 1.0 / float64(len(allOps))
		}
		ap.stats[op] = &opStats{}
	}
	return ap
}

// Probabilities returns the current move-generation probabilities,
// keyed by op, summing to 1.
func (ap *AdaptivePerturbation) Probabilities() map[move.Op]float64 {
	out := make(map[move.Op]float64, len(ap.probs))
	for op, p := range ap.probs {
		out[op] = p
	}
	return out
}

// RecordAttempt logs one move attempt for op, then rebalances if the
// periodic interval has elapsed.
func (ap *AdaptivePerturbation) RecordAttempt(op move.Op) {
	ap.stats[op].attempts++
	ap.sinceRebalance++
	if ap.sinceRebalance >= ap.rebalanceEvery {
		ap.sinceRebalance = 0
		ap.rebalance()
	}
}

// RecordSuccess logs an accepted improving move for op; delta is the cost
// decrease (a positive magnitude).
func (ap *AdaptivePerturbation) RecordSuccess(op move.Op, delta float64) {
	s := ap.stats[op]
	s.successes++
	s.totalImprovement += delta
}

// rebalance implements spec.md §4.6 steps 1-6.
func (ap *AdaptivePerturbation) rebalance() {
	successRates := make(map[move.Op]float64, len(allOps))
	weightedScores := make(map[move.Op]float64, len(allOps))
	var sumSuccessRate, sumWeighted float64

	for _, op := range allOps {
		s := ap.stats[op]
		sr := s.successRate()
		successRates[op] = sr
		sumSuccessRate += sr

		score := sr * s.averageImprovement()
		weightedScores[op] = score
		sumWeighted += score
	}

	candidates := make(map[move.Op]float64, len(allOps))
	for _, op := range allOps {
		var normSR, normW float64
		if sumSuccessRate > 0 {
			normSR = successRates[op] / sumSuccessRate
		} else {
			normSR = 1.0 / float64(len(allOps))
		}
		if sumWeighted > 0 {
			normW = weightedScores[op] / sumWeighted
		} else {
			normW = 1.0 / float64(len(allOps))
		}
		candidates[op] = 0.3*normSR + 0.7*normW
	}

	// Floor, then renormalize to sum 1.
	var sum float64
	for _, op := range allOps {
		if candidates[op] < opFloors[op] {
			candidates[op] = opFloors[op]
		}
		sum += candidates[op]
	}
	for _, op := range allOps {
		candidates[op] /= sum
	}

	// Blend with current, learning rate 0.1, then renormalize.
	const learningRate = 0.1
	var blendSum float64
	blended := make(map[move.Op]float64, len(allOps))
	for _, op := range allOps {
		v := (1-learningRate)*ap.probs[op] + learningRate*candidates[op]
		blended[op] = v
		blendSum += v
	}
	// Renormalizing can leave an op under its floor, so every op keeps its
	// floor and the remaining 1-sum(floors) is shared by each op's excess
	// over its floor; with no op under its floor this is the plain
	// renormalized blend.
	excess := make(map[move.Op]float64, len(allOps))
	var floorSum, excessSum float64
	for _, op := range allOps {
		floorSum += opFloors[op]
		if e := blended[op]/blendSum - opFloors[op]; e > 0 {
			excess[op] = e
			excessSum += e
		}
	}
	for _, op := range allOps {
		ap.probs[op] = opFloors[op] + (1-floorSum)*excess[op]/excessSum
	}

	// Decay counters by ~0.7 to favor recent behavior while preserving
	// ratios (spec.md §4.6 step 6).
	const decay = 0.7
	for _, op := range allOps {
		s := ap.stats[op]
		s.attempts = int(float64(s.attempts) * decay)
		s.successes = int(float64(s.successes) * decay)
		s.totalImprovement *= decay
	}
}
