// Package asftree implements the ASF-B*-tree (spec.md §4.2): a B*-tree over
// only the representatives of one symmetry group, with a packer that locks
// a mirror axis and places non-representatives by reflection.
//
// Node storage follows the arena + integer-index recommendation of
// spec.md §9 ("Shared-ownership graphs → arena + indices"): nodes live in
// a flat slice, parent/left/right are indices (-1 = none), and deleted
// slots go on a free list. This avoids cyclic parent-back-reference
// graphs without needing reference counting.
package asftree

import (
	"fmt"
	"sort"

	"github.com/piwi3910/floorplan/internal/contour"
	"github.com/piwi3910/floorplan/internal/model"
)

const nilIdx = -1

type node struct {
	name                string
	parent, left, right int
	deleted             bool
}

// Tree is the ASF-B*-tree for one symmetry group.
type Tree struct {
	group   *model.Group
	modules map[string]*model.Module // shared with the owning Problem

	nodes     []node
	index     map[string]int // module name -> node index
	root      int
	freeList  []int
	repOv     map[string]string // pairKey -> forced representative name

	hcontour *contour.Contour
	vcontour *contour.Contour

	packed bool
}

func pairKey(p model.Pair) string {
	a, b := p.A, p.B
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

// New builds an ASF-B*-tree for group, backed by the shared module map
// (typically a Problem's Modules map, so placements are visible to callers
// holding the same pointers).
func New(group *model.Group, modules map[string]*model.Module) *Tree {
	t := &Tree{
		group:    group,
		modules:  modules,
		index:    make(map[string]int),
		root:     nilIdx,
		repOv:    make(map[string]string),
		hcontour: contour.New(),
		vcontour: contour.New(),
	}
	t.buildInitial()
	return t
}

// representative returns the representative name for pair p, honoring any
// change_representative override.
func (t *Tree) representative(p model.Pair) string {
	if ov, ok := t.repOv[pairKey(p)]; ok {
		return ov
	}
	return p.Representative()
}

func (t *Tree) partner(p model.Pair) string {
	rep := t.representative(p)
	if rep == p.A {
		return p.B
	}
	return p.A
}

// representatives returns the current representative names (honoring
// overrides): pairs' representatives and selves together, in sorted
// name order.
func (t *Tree) representatives() []string {
	reps := make([]string, 0, len(t.group.Pairs)+len(t.group.Selves))
	for _, p := range t.group.Pairs {
		reps = append(reps, t.representative(p))
	}
	reps = append(reps, append([]string(nil), t.group.Selves...)...)
	sort.Strings(reps)
	return reps
}

func (t *Tree) isSelf(name string) bool { return t.group.IsSelf(name) }

func (t *Tree) alloc(name string) int {
	var idx int
	if n := len(t.freeList); n > 0 {
		idx = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.nodes[idx] = node{name: name, parent: nilIdx, left: nilIdx, right: nilIdx}
	} else {
		idx = len(t.nodes)
		t.nodes = append(t.nodes, node{name: name, parent: nilIdx, left: nilIdx, right: nilIdx})
	}
	t.index[name] = idx
	return idx
}

// buildInitial constructs the deterministic seed tree per spec.md §4.2:
// sort representatives by area descending, root = largest; self-symmetric
// modules attach to the boundary spine that will abut the axis, everything
// else attaches as a right child of the current right-spine end.
func (t *Tree) buildInitial() {
	t.nodes = t.nodes[:0]
	t.index = make(map[string]int)
	t.freeList = nil
	t.root = nilIdx
	t.packed = false

	reps := t.representatives()
	if len(reps) == 0 {
		return
	}
	sort.Slice(reps, func(i, j int) bool {
		return t.modules[reps[i]].Area() > t.modules[reps[j]].Area()
	})

	rootIdx := t.alloc(reps[0])
	t.root = rootIdx

	for _, name := range reps[1:] {
		if t.isSelf(name) {
			if t.group.Axis == model.Vertical {
				t.attachRight(t.rightSpineEnd(), name)
			} else {
				t.attachLeft(t.leftSpineEnd(), name)
			}
		} else {
			t.attachRight(t.rightSpineEnd(), name)
		}
	}
}

func (t *Tree) rightSpineEnd() int {
	cur := t.root
	for cur != nilIdx && t.nodes[cur].right != nilIdx {
		cur = t.nodes[cur].right
	}
	return cur
}

func (t *Tree) leftSpineEnd() int {
	cur := t.root
	for cur != nilIdx && t.nodes[cur].left != nilIdx {
		cur = t.nodes[cur].left
	}
	return cur
}

func (t *Tree) attachRight(parent int, name string) int {
	idx := t.alloc(name)
	t.nodes[idx].parent = parent
	if parent != nilIdx {
		t.nodes[parent].right = idx
	}
	return idx
}

func (t *Tree) attachLeft(parent int, name string) int {
	idx := t.alloc(name)
	t.nodes[idx].parent = parent
	if parent != nilIdx {
		t.nodes[parent].left = idx
	}
	return idx
}

func (t *Tree) isOnRightSpine(idx int) bool {
	cur := t.root
	for cur != nilIdx {
		if cur == idx {
			return true
		}
		cur = t.nodes[cur].right
	}
	return false
}

func (t *Tree) isOnLeftSpine(idx int) bool {
	cur := t.root
	for cur != nilIdx {
		if cur == idx {
			return true
		}
		cur = t.nodes[cur].left
	}
	return false
}

// IsSymmetricFeasible reports whether every self-symmetric module's node
// lies on the boundary spine matching the group's axis (spec.md §4.2).
func (t *Tree) IsSymmetricFeasible() bool {
	for _, s := range t.group.Selves {
		idx, ok := t.index[s]
		if !ok {
			return false
		}
		if t.group.Axis == model.Vertical {
			if !t.isOnRightSpine(idx) {
				return false
			}
		} else if !t.isOnLeftSpine(idx) {
			return false
		}
	}
	return true
}

// floorDiv2 performs floor division by 2, correct for negative numerators
// (needed since Go's / truncates toward zero).
func floorDiv2(a int) int {
	if a >= 0 {
		return a / 2
	}
	return -((-a + 1) / 2)
}

// lockAxis computes and locks the doubled axis position from the current
// representative dimensions, per spec.md §4.2 ("locks the symmetry axis
// ... from average representative dimensions"). This implementation uses
// the sum of representative extents along the constrained dimension: a
// deterministic, generously-sized axis position that leaves headroom for
// self-symmetric centering, forced even so the axis position itself is
// always an integer.
func (t *Tree) lockAxis() {
	sum := 0
	for _, name := range t.representatives() {
		m := t.modules[name]
		if t.group.Axis == model.Vertical {
			sum += m.Width()
		} else {
			sum += m.Height()
		}
	}
	axis2 := 2 * sum // 2*sum guarantees an even axis2 (axis itself = sum)
	t.group.Lock(axis2)
}

// bfsOrder returns node indices in breadth-first order from the root.
func (t *Tree) bfsOrder() []int {
	if t.root == nilIdx {
		return nil
	}
	order := make([]int, 0, len(t.nodes))
	queue := []int{t.root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		if l := t.nodes[cur].left; l != nilIdx {
			queue = append(queue, l)
		}
		if r := t.nodes[cur].right; r != nilIdx {
			queue = append(queue, r)
		}
	}
	return order
}

// Pack runs the ASF-B*-tree packing algorithm (spec.md §4.2): places every
// representative via BFS using the shared contours, centers self-symmetric
// modules on the locked axis, then mirrors every non-representative.
// Returns false (PackFailure) if the tree is empty while the group has
// members, or a module lookup fails; a group with no members packs
// trivially and returns true.
func (t *Tree) Pack() bool {
	if t.root == nilIdx && len(t.group.Pairs)+len(t.group.Selves) > 0 {
		return false
	}
	if t.root == nilIdx {
		t.packed = true
		return true
	}

	if !t.group.Locked() {
		t.lockAxis()
	}

	t.hcontour.Clear()
	t.vcontour.Clear()

	order := t.bfsOrder()
	for _, idx := range order {
		n := &t.nodes[idx]
		m, ok := t.modules[n.name]
		if !ok {
			return false
		}

		var x, y int
		if n.parent == nilIdx {
			x = 0
		} else {
			parent := t.modules[t.nodes[n.parent].name]
			if t.nodes[n.parent].left == idx {
				x = parent.X + parent.Width()
			} else {
				x = parent.X
			}
		}
		y = t.hcontour.HeightIn(x, x+m.Width())

		if t.isSelf(n.name) {
			axis2 := t.group.Axis2()
			if t.group.Axis == model.Vertical {
				x = floorDiv2(axis2 - m.Width())
			} else {
				y = floorDiv2(axis2 - m.Height())
			}
		}

		m.SetPosition(x, y)
		t.hcontour.Raise(x, x+m.Width(), y+m.Height())
		t.vcontour.Raise(y, y+m.Height(), x+m.Width())
	}

	// Resolve the negative-x-from-clamp open question (spec.md §9): shift
	// the whole island right/up instead of clamping a single module, which
	// would silently break the mirror invariant.
	t.shiftIntoBounds()

	// Mirror every non-representative onto its representative.
	for _, p := range t.group.Pairs {
		repName := t.representative(p)
		partnerName := t.partner(p)
		rep, ok1 := t.modules[repName]
		nonRep, ok2 := t.modules[partnerName]
		if !ok1 || !ok2 {
			return false
		}
		nonRep.SetRotated(rep.Rotated())

		axis2 := t.group.Axis2()
		if t.group.Axis == model.Vertical {
			nonRepCenter2 := 2*axis2 - rep.CenterX2()
			nx := floorDiv2(nonRepCenter2 - nonRep.Width())
			nonRep.SetPosition(nx, rep.Y)
		} else {
			nonRepCenter2 := 2*axis2 - rep.CenterY2()
			ny := floorDiv2(nonRepCenter2 - nonRep.Height())
			nonRep.SetPosition(rep.X, ny)
		}
	}

	t.packed = true
	return true
}

// shiftIntoBounds finds the minimum x/y among every representative placed
// this pack and, if negative, shifts every representative (and the locked
// axis, which moves with the island) by the same amount so nothing sits
// at a negative coordinate.
func (t *Tree) shiftIntoBounds() {
	minX, minY := 0, 0
	for _, idx := range t.bfsOrder() {
		m := t.modules[t.nodes[idx].name]
		if m.X < minX {
			minX = m.X
		}
		if m.Y < minY {
			minY = m.Y
		}
	}
	if minX >= 0 && minY >= 0 {
		return
	}
	dx, dy := 0, 0
	if minX < 0 {
		dx = -minX
	}
	if minY < 0 {
		dy = -minY
	}
	t.hcontour.Clear()
	t.vcontour.Clear()
	for _, idx := range t.bfsOrder() {
		m := t.modules[t.nodes[idx].name]
		m.SetPosition(m.X+dx, m.Y+dy)
		t.hcontour.Raise(m.X, m.X+m.Width(), m.Y+m.Height())
		t.vcontour.Raise(m.Y, m.Y+m.Height(), m.X+m.Width())
	}
	if t.group.Axis == model.Vertical {
		t.group.Lock(t.group.Axis2() + 2*dx)
	} else {
		t.group.Lock(t.group.Axis2() + 2*dy)
	}
}

// BoundingBox returns the min/max corners spanning every module in the
// group (representatives and mirrored partners), used by the HB*-tree to
// translate a packed island into its slot.
func (t *Tree) BoundingBox() (minX, minY, maxX, maxY int) {
	first := true
	for _, name := range t.group.AllModuleNames() {
		m, ok := t.modules[name]
		if !ok {
			continue
		}
		if first {
			minX, minY, maxX, maxY = m.X, m.Y, m.X+m.Width(), m.Y+m.Height()
			first = false
			continue
		}
		if m.X < minX {
			minX = m.X
		}
		if m.Y < minY {
			minY = m.Y
		}
		if m.X+m.Width() > maxX {
			maxX = m.X + m.Width()
		}
		if m.Y+m.Height() > maxY {
			maxY = m.Y + m.Height()
		}
	}
	return
}

// HorizontalContour returns the packed horizontal skyline, used by the
// HB*-tree to synthesize contour nodes after packing this island.
func (t *Tree) HorizontalContour() *contour.Contour { return t.hcontour }

// Group returns the owning symmetry group.
func (t *Tree) Group() *model.Group { return t.group }

// Representatives returns the island's current representative names
// (honoring any change_representative override), used by the HB*-tree to
// expose intra-island Move/Swap/Rotate operands to the SA.
func (t *Tree) Representatives() []string { return t.representatives() }

// ParentOf returns the name of name's current parent within this island's
// tree, which side it occupies, and whether it has a parent at all (false
// for the tree root). ok is false if name is not a node in this tree.
func (t *Tree) ParentOf(name string) (parentName string, asLeft bool, hadParent bool, ok bool) {
	idx, found := t.index[name]
	if !found {
		return "", false, false, false
	}
	p := t.nodes[idx].parent
	if p == nilIdx {
		return "", false, false, true
	}
	return t.nodes[p].name, t.nodes[p].left == idx, true, true
}

// ---- Perturbation operations (spec.md §4.2) ----

// Rotate swaps a representative's original dimensions. Must target the
// current representative of its pair (honoring any change_representative
// override) or a self-symmetric module; returns false otherwise.
// Coordinates are recomputed at the next Pack.
func (t *Tree) Rotate(name string) bool {
	if t.isSelf(name) {
		// self-symmetric modules always represent themselves.
	} else if p, ok := t.group.PairOf(name); ok {
		if t.representative(p) != name {
			return false
		}
	} else {
		return false
	}
	m, ok := t.modules[name]
	if !ok {
		return false
	}
	m.Rotate()
	t.packed = false
	return true
}

// Move rewires node `name` as the left/right child of `parentName`,
// rejecting the move if it would violate the self-symmetric-on-boundary
// invariant.
func (t *Tree) Move(name, parentName string, asLeft bool) bool {
	idx, ok := t.index[name]
	if !ok {
		return false
	}
	parentIdx, ok := t.index[parentName]
	if !ok || parentIdx == idx {
		return false
	}
	if t.isDescendant(idx, parentIdx) {
		return false // would create a cycle
	}

	oldParent, oldLeft := t.nodes[idx].parent, false
	if oldParent != nilIdx {
		oldLeft = t.nodes[oldParent].left == idx
	}

	t.detach(idx)
	var displaced int = nilIdx
	if asLeft {
		displaced = t.nodes[parentIdx].left
		t.nodes[parentIdx].left = idx
	} else {
		displaced = t.nodes[parentIdx].right
		t.nodes[parentIdx].right = idx
	}
	t.nodes[idx].parent = parentIdx
	if displaced != nilIdx {
		// Push the existing child down into the deepest same-side
		// descendant of the reattached node.
		t.nodes[displaced].parent = nilIdx // temporarily detach
		spot := idx
		for {
			var next int
			if asLeft {
				next = t.nodes[spot].left
			} else {
				next = t.nodes[spot].right
			}
			if next == nilIdx {
				break
			}
			spot = next
		}
		if asLeft {
			t.nodes[spot].left = displaced
		} else {
			t.nodes[spot].right = displaced
		}
		t.nodes[displaced].parent = spot
	}

	if !t.IsSymmetricFeasible() {
		// Revert.
		t.detach(idx)
		if displaced != nilIdx {
			t.detach(displaced)
			if asLeft {
				t.nodes[parentIdx].left = displaced
			} else {
				t.nodes[parentIdx].right = displaced
			}
			t.nodes[displaced].parent = parentIdx
		}
		if oldParent != nilIdx {
			if oldLeft {
				t.nodes[oldParent].left = idx
			} else {
				t.nodes[oldParent].right = idx
			}
		}
		t.nodes[idx].parent = oldParent
		return false
	}

	t.packed = false
	return true
}

func (t *Tree) detach(idx int) {
	p := t.nodes[idx].parent
	if p == nilIdx {
		return
	}
	if t.nodes[p].left == idx {
		t.nodes[p].left = nilIdx
	} else if t.nodes[p].right == idx {
		t.nodes[p].right = nilIdx
	}
	t.nodes[idx].parent = nilIdx
}

func (t *Tree) isDescendant(ancestor, node int) bool {
	cur := node
	for cur != nilIdx {
		if cur == ancestor {
			return true
		}
		cur = t.nodes[cur].parent
	}
	return false
}

// Swap exchanges the tree positions of two nodes. Rejected if exactly one
// of the two modules is self-symmetric (spec.md §4.2).
func (t *Tree) Swap(name1, name2 string) bool {
	if name1 == name2 {
		return false
	}
	idx1, ok1 := t.index[name1]
	idx2, ok2 := t.index[name2]
	if !ok1 || !ok2 {
		return false
	}
	if t.isSelf(name1) != t.isSelf(name2) {
		return false
	}

	n1, n2 := t.nodes[idx1], t.nodes[idx2]
	swapChild := func(parent, oldChild, newChild int) {
		if parent == nilIdx {
			return
		}
		if t.nodes[parent].left == oldChild {
			t.nodes[parent].left = newChild
		} else if t.nodes[parent].right == oldChild {
			t.nodes[parent].right = newChild
		}
	}

	if n1.parent == idx2 || n2.parent == idx1 {
		// Adjacent swap: the same exchange as the non-adjacent case below,
		// plus the p1/p2 guards and the child fix-up after the exchange,
		// which keep the link between the two nodes pointing the right way.
	}

	p1, p2 := n1.parent, n2.parent
	l1, r1 := n1.left, n1.right
	l2, r2 := n2.left, n2.right

	if p1 != idx2 {
		swapChild(p1, idx1, idx2)
	}
	if p2 != idx1 {
		swapChild(p2, idx2, idx1)
	}
	t.nodes[idx1].parent = p2
	if p2 == idx1 {
		t.nodes[idx1].parent = idx2
	}
	t.nodes[idx2].parent = p1
	if p1 == idx2 {
		t.nodes[idx2].parent = idx1
	}

	reparent := func(child, newParent int) {
		if child != nilIdx {
			t.nodes[child].parent = newParent
		}
	}
	t.nodes[idx1].left, t.nodes[idx1].right = l2, r2
	t.nodes[idx2].left, t.nodes[idx2].right = l1, r1
	// Adjacent nodes: the one that moved up inherited a child slot that
	// points at itself; point it at its former parent instead.
	if l2 == idx1 {
		t.nodes[idx1].left = idx2
	} else if r2 == idx1 {
		t.nodes[idx1].right = idx2
	}
	if l1 == idx2 {
		t.nodes[idx2].left = idx1
	} else if r1 == idx2 {
		t.nodes[idx2].right = idx1
	}
	if l2 != idx1 {
		reparent(l2, idx1)
	}
	if r2 != idx1 {
		reparent(r2, idx1)
	}
	if l1 != idx2 {
		reparent(l1, idx2)
	}
	if r1 != idx2 {
		reparent(r1, idx2)
	}

	if t.root == idx1 {
		t.root = idx2
	} else if t.root == idx2 {
		t.root = idx1
	}

	if !t.IsSymmetricFeasible() {
		// Swap back and bail.
		t.Swap(name1, name2)
		return false
	}

	t.packed = false
	return true
}

// ChangeRepresentative flips which module of m's pair is the
// representative, then rebuilds the tree.
func (t *Tree) ChangeRepresentative(m string) bool {
	p, ok := t.group.PairOf(m)
	if !ok {
		return false // not a pair member (e.g. self-symmetric)
	}
	key := pairKey(p)
	newRep := p.A
	if t.representative(p) == p.A {
		newRep = p.B
	}
	t.repOv[key] = newRep
	t.buildInitial()
	return true
}

// ConvertSymmetryType flips the group's axis (unlocking it, so the next
// Pack re-locks it), rotates every module in the group once, and rebuilds
// the tree.
func (t *Tree) ConvertSymmetryType() bool {
	t.group.FlipAxis()
	for _, name := range t.group.AllModuleNames() {
		if m, ok := t.modules[name]; ok {
			m.Rotate()
		}
	}
	t.buildInitial()
	return true
}

func (t *Tree) String() string {
	return fmt.Sprintf("ASFTree(group=%s axis=%s nodes=%d)", t.group.Name, t.group.Axis, len(t.index))
}
