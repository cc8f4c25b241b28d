// Package move implements the Move record and MovePool (spec.md §4.5): the
// SA's perturbation descriptors, pooled in a growable arena with a free
// list rather than allocated and garbage-collected per iteration.
//
// The pool hands out a slot index, lets the caller mutate the Move in
// place, and reclaims the index on release onto the free list, which
// Acquire reuses before growing the arena.
package move

// Op identifies which perturbation a Move describes.
type Op int

const (
	Rotate Op = iota
	Move
	Swap
	ChangeRep
	ConvertSym
)

func (o Op) String() string {
	switch o {
	case Rotate:
		return "rotate"
	case Move:
		return "move"
	case Swap:
		return "swap"
	case ChangeRep:
		return "change_rep"
	case ConvertSym:
		return "convert_sym"
	default:
		return "unknown"
	}
}

// Record is one perturbation descriptor plus whatever undo state its kind
// needs (spec.md §4.5). Rotate and Swap are self-inverse at the tree level
// (applying the same operation again restores the prior shape). ChangeRep
// and ConvertSym are undone by applying them again: that restores the
// representative choice or the axis, but both rebuild the island's
// ASF-B*-tree from its seed layout, so an earlier arrangement inside the
// island is not restored. Move is the one op whose pre-move state Record
// carries.
type Record struct {
	Op Op

	// Group is non-empty when Move or Swap targets representatives inside
	// one symmetry group's ASF-B*-tree rather than the top-level HB*-tree
	// (spec.md §4.2's intra-island Move/Swap).
	Group string

	// Operands, meaning depends on Op:
	//  Rotate:     Name1 = module/representative name
	//  Move:       Name1 = node being moved, Name2 = new parent, AsLeft = side
	//  Swap:       Name1, Name2 = the two node names
	//  ChangeRep:  Name1 = group name, Name2 = a module of the target pair
	//  ConvertSym: Name1 = group name
	Name1, Name2 string
	AsLeft       bool

	// Undo state for Move: the node's parent and side before this move.
	// HadParent is false if the node had no parent (was the tree root).
	OldParent string
	OldAsLeft bool
	HadParent bool
}

// Pool is an arena of Records with a free list. Acquire hands out a zeroed
// Record; Release returns it. Indices are not stable across Acquire calls
// once released — callers must not retain a Record after release.
type Pool struct {
	records []Record
	free    []int
}

// NewPool returns an empty pool.
func NewPool() *Pool { return &Pool{} }

// Acquire returns the index of a zeroed Record.
func (p *Pool) Acquire() int {
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		p.records[idx] = Record{}
		return idx
	}
	p.records = append(p.records, Record{})
	return len(p.records) - 1
}

// Get returns a pointer to the Record at idx for in-place mutation.
func (p *Pool) Get(idx int) *Record { return &p.records[idx] }

// Release returns idx to the free list. The caller must not use the
// Record at idx after this call.
func (p *Pool) Release(idx int) {
	p.free = append(p.free, idx)
}

// Len returns the number of records ever allocated (including released
// ones still sitting in the free list), mainly for diagnostics/tests.
func (p *Pool) Len() int { return len(p.records) }
