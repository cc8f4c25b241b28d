package anneal

import (
	"github.com/piwi3910/floorplan/internal/model"
	"github.com/piwi3910/floorplan/internal/move"
)

const maxOperandRetries = 10

// sampleOp picks an operation per the current adaptive probabilities.
func (a *Annealer) sampleOp() move.Op {
	probs := a.ap.Probabilities()
	r := a.rng.Float64()
	var cum float64
	for _, op := range allOps {
		cum += probs[op]
		if r < cum {
			return op
		}
	}
	return allOps[len(allOps)-1]
}

// rotateOperands returns every name valid as a Rotate operand: free
// modules plus every group's current representatives (spec.md §4.7: "for
// Rotate: a representative"). A group's hierarchy name itself is never a
// valid operand — rotating "the group" is meaningless, only one of its
// representatives can be rotated.
func (a *Annealer) rotateOperands() []string {
	operands := append([]string(nil), a.problem.FreeModules()...)
	for _, g := range a.problem.Groups {
		operands = append(operands, a.tree.RepresentativesOf(g.Name)...)
	}
	return operands
}

// randomGroupWithReps picks a random symmetry group that currently has at
// least minReps representatives, scanning from a random start so every
// eligible group gets an equal chance regardless of map/slice order.
func (a *Annealer) randomGroupWithReps(minReps int) (name string, reps []string, ok bool) {
	groupNames := a.tree.GroupNames()
	if len(groupNames) == 0 {
		return "", nil, false
	}
	start := a.rng.Intn(len(groupNames))
	for i := 0; i < len(groupNames); i++ {
		candidate := groupNames[(start+i)%len(groupNames)]
		candidateReps := a.tree.RepresentativesOf(candidate)
		if len(candidateReps) >= minReps {
			return candidate, candidateReps, true
		}
	}
	return "", nil, false
}

// generateMove samples an op and valid operands, retrying a bounded
// number of times if the initial choice is structurally invalid
// (spec.md §4.7: "same-node swap, non-pair module, etc."). Returns the
// pool index of the populated Record, or ok=false if no valid move could
// be generated within the retry budget.
//
// Move and Swap each have a 50% chance, when at least one symmetry group
// has two or more representatives, of targeting that island's ASF-B*-tree
// instead of the top-level HB*-tree (spec.md §4.2's intra-island Move and
// Swap) — otherwise representatives could only ever be relocated relative
// to other islands/free modules, never rearranged against each other
// inside their own island.
func (a *Annealer) generateMove() (int, bool) {
	names := a.tree.Names()
	if len(names) == 0 {
		return 0, false
	}

	for attempt := 0; attempt < maxOperandRetries; attempt++ {
		op := a.sampleOp()
		idx := a.pool.Acquire()
		rec := a.pool.Get(idx)
		rec.Op = op

		switch op {
		case move.Rotate:
			operands := a.rotateOperands()
			if len(operands) == 0 {
				a.pool.Release(idx)
				continue
			}
			rec.Name1 = operands[a.rng.Intn(len(operands))]
			return idx, true

		case move.Move:
			if groupName, reps, ok := a.randomGroupWithReps(2); ok && a.rng.Intn(2) == 0 {
				name1 := reps[a.rng.Intn(len(reps))]
				parentName, asLeft, hadParent, pok := a.tree.GroupParentOf(groupName, name1)
				if !pok || !hadParent {
					a.pool.Release(idx)
					continue
				}
				name2 := reps[a.rng.Intn(len(reps))]
				if name2 == name1 {
					a.pool.Release(idx)
					continue
				}
				rec.Group = groupName
				rec.Name1 = name1
				rec.Name2 = name2
				rec.AsLeft = a.rng.Intn(2) == 0
				rec.OldParent = parentName
				rec.OldAsLeft = asLeft
				rec.HadParent = true
				return idx, true
			}

			name1 := names[a.rng.Intn(len(names))]
			parentName, asLeft, hadParent, ok := a.tree.ParentOf(name1)
			if !ok || !hadParent {
				// No safe undo state: the node has no addressable parent
				// (it's the tree root) or its parent is an unnamed
				// contour node. Retry with a different pick.
				a.pool.Release(idx)
				continue
			}
			name2 := names[a.rng.Intn(len(names))]
			if name2 == name1 {
				a.pool.Release(idx)
				continue
			}
			rec.Name1 = name1
			rec.Name2 = name2
			rec.AsLeft = a.rng.Intn(2) == 0
			rec.OldParent = parentName
			rec.OldAsLeft = asLeft
			rec.HadParent = true
			return idx, true

		case move.Swap:
			if groupName, reps, ok := a.randomGroupWithReps(2); ok && a.rng.Intn(2) == 0 {
				name1 := reps[a.rng.Intn(len(reps))]
				name2 := reps[a.rng.Intn(len(reps))]
				if name1 == name2 {
					a.pool.Release(idx)
					continue
				}
				rec.Group = groupName
				rec.Name1 = name1
				rec.Name2 = name2
				return idx, true
			}

			name1 := names[a.rng.Intn(len(names))]
			name2 := names[a.rng.Intn(len(names))]
			if name1 == name2 {
				a.pool.Release(idx)
				continue
			}
			rec.Name1 = name1
			rec.Name2 = name2
			return idx, true

		case move.ChangeRep:
			g, p, ok := a.randomPair()
			if !ok {
				a.pool.Release(idx)
				continue
			}
			rec.Name1 = g.Name
			rec.Name2 = p.A
			return idx, true

		case move.ConvertSym:
			g, ok := a.randomGroup()
			if !ok {
				a.pool.Release(idx)
				continue
			}
			rec.Name1 = g.Name
			return idx, true
		}

		a.pool.Release(idx)
	}
	return 0, false
}

func (a *Annealer) randomGroup() (*model.Group, bool) {
	groups := a.problem.Groups
	if len(groups) == 0 {
		return nil, false
	}
	return groups[a.rng.Intn(len(groups))], true
}

func (a *Annealer) randomPair() (*model.Group, model.Pair, bool) {
	candidates := make([]*model.Group, 0, len(a.problem.Groups))
	for _, g := range a.problem.Groups {
		if len(g.Pairs) > 0 {
			candidates = append(candidates, g)
		}
	}
	if len(candidates) == 0 {
		return nil, model.Pair{}, false
	}
	g := candidates[a.rng.Intn(len(candidates))]
	p := g.Pairs[a.rng.Intn(len(g.Pairs))]
	return g, p, true
}

// applyMove dispatches a Record to the corresponding HB*-tree mutation. A
// non-empty Group routes Move/Swap to the named group's ASF-B*-tree
// instead of the top-level tree.
func (a *Annealer) applyMove(rec *move.Record) bool {
	switch rec.Op {
	case move.Rotate:
		return a.tree.Rotate(rec.Name1)
	case move.Move:
		if rec.Group != "" {
			return a.tree.MoveInGroup(rec.Group, rec.Name1, rec.Name2, rec.AsLeft)
		}
		return a.tree.Move(rec.Name1, rec.Name2, rec.AsLeft)
	case move.Swap:
		if rec.Group != "" {
			return a.tree.SwapInGroup(rec.Group, rec.Name1, rec.Name2)
		}
		return a.tree.Swap(rec.Name1, rec.Name2)
	case move.ChangeRep:
		return a.tree.ChangeRepresentative(rec.Name1, rec.Name2)
	case move.ConvertSym:
		return a.tree.ConvertSymmetryType(rec.Name1)
	}
	return false
}

// undoMove inverts a previously-applied Record. Rotate and Swap are
// self-inverse at the tree level; ChangeRep and ConvertSym are undone by
// toggling again, which restores the representative choice or axis but
// rebuilds the island's tree from its seed layout (see move.Record's doc
// comment); Move needs its captured pre-move parent/side.
func (a *Annealer) undoMove(rec *move.Record) {
	switch rec.Op {
	case move.Rotate:
		a.tree.Rotate(rec.Name1)
	case move.Move:
		if rec.HadParent {
			if rec.Group != "" {
				a.tree.MoveInGroup(rec.Group, rec.Name1, rec.OldParent, rec.OldAsLeft)
			} else {
				a.tree.Move(rec.Name1, rec.OldParent, rec.OldAsLeft)
			}
		}
	case move.Swap:
		if rec.Group != "" {
			a.tree.SwapInGroup(rec.Group, rec.Name1, rec.Name2)
		} else {
			a.tree.Swap(rec.Name1, rec.Name2)
		}
	case move.ChangeRep:
		a.tree.ChangeRepresentative(rec.Name1, rec.Name2)
	case move.ConvertSym:
		a.tree.ConvertSymmetryType(rec.Name1)
	}
}
