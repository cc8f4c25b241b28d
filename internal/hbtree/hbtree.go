// Package hbtree implements the HB*-tree (spec.md §4.3): the top-level
// placement tree that composes one ASF-B*-tree "island" per symmetry group
// with the remaining free modules, and packs the whole floorplan in one
// depth-first walk.
//
// As with internal/asftree, nodes live in a flat arena (spec.md §9) instead
// of a pointer graph: a slice of nodes addressed by integer index, with
// -1 as the "no child/no parent" sentinel.
package hbtree

import (
	"sort"

	"github.com/piwi3910/floorplan/internal/asftree"
	"github.com/piwi3910/floorplan/internal/contour"
	"github.com/piwi3910/floorplan/internal/model"
)

const nilIdx = -1

type kind int

const (
	kindModule kind = iota
	kindHierarchy
	kindContour
)

type node struct {
	kind                 kind
	parent, left, right  int
	name                 string // module name (kindModule) or group name (kindHierarchy)
	modified             bool

	// kindContour only: the skyline segment this node represents.
	segStart, segEnd, segHeight int
}

// Tree is the HB*-tree for one Problem.
type Tree struct {
	problem *model.Problem

	nodes    []node
	index    map[string]int // "m:"+moduleName or "h:"+groupName -> node index
	root     int
	freeList []int

	asf map[string]*asftree.Tree // group name -> ASF-B*-tree

	hcontour *contour.Contour
	vcontour *contour.Contour

	hasPackedOnce bool
}

func moduleKey(name string) string    { return "m:" + name }
func hierarchyKey(group string) string { return "h:" + group }

// New builds an HB*-tree over problem: one hierarchy node per symmetry
// group (each owning a freshly built ASF-B*-tree) plus one module node per
// free module, laid out via the "improved" balanced construction of
// spec.md §4.3.
func New(problem *model.Problem) *Tree {
	t := &Tree{
		problem:  problem,
		index:    make(map[string]int),
		root:     nilIdx,
		asf:      make(map[string]*asftree.Tree),
		hcontour: contour.New(),
		vcontour: contour.New(),
	}
	for _, g := range problem.Groups {
		t.asf[g.Name] = asftree.New(g, problem.Modules)
	}
	t.buildInitial()
	return t
}

func (t *Tree) alloc(n node) int {
	var idx int
	if k := len(t.freeList); k > 0 {
		idx = t.freeList[k-1]
		t.freeList = t.freeList[:k-1]
	} else {
		idx = len(t.nodes)
		t.nodes = append(t.nodes, node{})
	}
	n.parent, n.left, n.right = nilIdx, nilIdx, nilIdx
	t.nodes[idx] = n
	return idx
}

func groupArea(g *model.Group, modules map[string]*model.Module) int {
	total := 0
	for _, name := range g.AllModuleNames() {
		if m, ok := modules[name]; ok {
			total += m.Area()
		}
	}
	return total
}

func aspectDistance(m *model.Module) float64 {
	w, h := float64(m.Width()), float64(m.Height())
	if w == 0 || h == 0 {
		return 1e9
	}
	ratio := w / h
	if ratio < 1 {
		ratio = 1 / ratio
	}
	return ratio - 1
}

// buildInitial constructs the "improved" initial layout of spec.md §4.3:
// hierarchy nodes sorted by total group area descending, free modules
// sorted by area descending (tie-break aspect ratio closer to 1), all
// inserted into one breadth-first-filled balanced binary layout.
func (t *Tree) buildInitial() {
	t.nodes = t.nodes[:0]
	t.index = make(map[string]int)
	t.freeList = nil
	t.root = nilIdx

	groups := append([]*model.Group(nil), t.problem.Groups...)
	sort.Slice(groups, func(i, j int) bool {
		return groupArea(groups[i], t.problem.Modules) > groupArea(groups[j], t.problem.Modules)
	})

	free := t.problem.FreeModules()
	sort.Slice(free, func(i, j int) bool {
		mi, mj := t.problem.Modules[free[i]], t.problem.Modules[free[j]]
		if mi.Area() != mj.Area() {
			return mi.Area() > mj.Area()
		}
		return aspectDistance(mi) < aspectDistance(mj)
	})

	type item struct {
		isHierarchy bool
		name        string
	}
	items := make([]item, 0, len(groups)+len(free))
	for _, g := range groups {
		items = append(items, item{isHierarchy: true, name: g.Name})
	}
	for _, f := range free {
		items = append(items, item{name: f})
	}
	if len(items) == 0 {
		return
	}

	newNodeIdx := func(it item) int {
		if it.isHierarchy {
			idx := t.alloc(node{kind: kindHierarchy, name: it.name})
			t.index[hierarchyKey(it.name)] = idx
			return idx
		}
		idx := t.alloc(node{kind: kindModule, name: it.name})
		t.index[moduleKey(it.name)] = idx
		return idx
	}

	rootIdx := newNodeIdx(items[0])
	t.root = rootIdx
	queue := []int{rootIdx}

	for _, it := range items[1:] {
		parent := queue[0]
		idx := newNodeIdx(it)
		t.nodes[idx].parent = parent
		if t.nodes[parent].left == nilIdx {
			t.nodes[parent].left = idx
		} else {
			t.nodes[parent].right = idx
			queue = queue[1:]
		}
		queue = append(queue, idx)
	}
}

// markModified flags idx and every ancestor up to the root as modified.
// Because the root is always among them, the next Pack takes the
// full-repack path.
func (t *Tree) markModified(idx int) {
	for cur := idx; cur != nilIdx; cur = t.nodes[cur].parent {
		t.nodes[cur].modified = true
	}
}

func (t *Tree) clearModified() {
	for i := range t.nodes {
		t.nodes[i].modified = false
	}
}

// Pack runs the HB*-tree packing algorithm (spec.md §4.3): a full repack
// if the root was modified (or this is the first pack), otherwise a
// partial repack over the minimal set of modified subtree roots.
func (t *Tree) Pack() bool {
	if t.root == nilIdx {
		return true
	}
	if t.nodes[t.root].modified || !t.hasPackedOnce {
		ok := t.fullRepack()
		t.hasPackedOnce = true
		return ok
	}
	return t.partialRepack()
}

func (t *Tree) fullRepack() bool {
	t.hcontour.Clear()
	t.vcontour.Clear()
	ok := t.packSubtree(t.root)
	t.synthesizeContourChains()
	t.clearModified()
	return ok
}

// partialRepack finds the minimal covering set of modified subtree roots,
// rebuilds the shared contours from every node NOT under those subtrees
// (deepest-first, matching the DFS pre-order the full pack uses), then
// packs each covering root in turn.
func (t *Tree) partialRepack() bool {
	var modifiedRoots []int
	var collect func(idx int) bool // returns true if idx or a descendant is a covering root
	collect = func(idx int) bool {
		if idx == nilIdx {
			return false
		}
		n := &t.nodes[idx]
		leftCovered := collect(n.left)
		rightCovered := collect(n.right)
		if n.modified && !leftCovered && !rightCovered {
			modifiedRoots = append(modifiedRoots, idx)
			return true
		}
		return leftCovered || rightCovered || n.modified
	}
	collect(t.root)

	sort.Slice(modifiedRoots, func(i, j int) bool {
		return t.depth(modifiedRoots[i]) > t.depth(modifiedRoots[j])
	})

	covered := make(map[int]bool, len(modifiedRoots))
	for _, r := range modifiedRoots {
		covered[r] = true
	}

	t.hcontour.Clear()
	t.vcontour.Clear()
	ok := t.packExcluding(t.root, covered)
	for _, r := range modifiedRoots {
		if !t.packSubtree(r) {
			ok = false
		}
	}
	t.synthesizeContourChains()
	t.clearModified()
	return ok
}

func (t *Tree) depth(idx int) int {
	d := 0
	for cur := t.nodes[idx].parent; cur != nilIdx; cur = t.nodes[cur].parent {
		d++
	}
	return d
}

// packExcluding replays the existing placement of every node not under a
// covered subtree, raising the shared contours from its already-known
// coordinates without recomputing them.
func (t *Tree) packExcluding(idx int, covered map[int]bool) bool {
	if idx == nilIdx || covered[idx] {
		return true
	}
	n := &t.nodes[idx]
	ok := true
	switch n.kind {
	case kindModule:
		m, exists := t.problem.Modules[n.name]
		if !exists {
			ok = false
		} else {
			t.hcontour.Raise(m.X, m.X+m.Width(), m.Y+m.Height())
			t.vcontour.Raise(m.Y, m.Y+m.Height(), m.X+m.Width())
		}
	case kindHierarchy:
		tr := t.asf[n.name]
		if tr != nil {
			for _, name := range tr.Group().AllModuleNames() {
				if m, exists := t.problem.Modules[name]; exists {
					t.hcontour.Raise(m.X, m.X+m.Width(), m.Y+m.Height())
					t.vcontour.Raise(m.Y, m.Y+m.Height(), m.X+m.Width())
				}
			}
		}
	}
	if !t.packExcluding(n.left, covered) {
		ok = false
	}
	if !t.packExcluding(n.right, covered) {
		ok = false
	}
	return ok
}

// packSubtree packs idx and its descendants in depth-first pre-order. The
// origin-x rule (originX) always consults idx's real parent, so a
// partial-repack subtree root derives its placement from its parent's
// already-known coordinates exactly as a full repack would.
func (t *Tree) packSubtree(idx int) bool {
	if idx == nilIdx {
		return true
	}
	n := &t.nodes[idx]

	x := t.originX(idx)
	ok := true

	switch n.kind {
	case kindModule:
		m, exists := t.problem.Modules[n.name]
		if !exists {
			return false
		}
		y := t.hcontour.HeightIn(x, x+m.Width())
		m.SetPosition(x, y)
		t.hcontour.Raise(x, x+m.Width(), y+m.Height())
		t.vcontour.Raise(y, y+m.Height(), x+m.Width())

	case kindHierarchy:
		tr := t.asf[n.name]
		if tr == nil || !tr.Pack() {
			return false
		}
		minX, minY, maxX, _ := tr.BoundingBox()
		w := maxX - minX
		y := t.hcontour.HeightIn(x, x+w)
		dx, dy := x-minX, y-minY
		if dx < 0 {
			dx = 0
		}
		if dy < 0 {
			dy = 0
		}
		for _, name := range tr.Group().AllModuleNames() {
			m, exists := t.problem.Modules[name]
			if !exists {
				continue
			}
			m.SetPosition(m.X+dx, m.Y+dy)
			t.hcontour.Raise(m.X, m.X+m.Width(), m.Y+m.Height())
			t.vcontour.Raise(m.Y, m.Y+m.Height(), m.X+m.Width())
		}

	case kindContour:
		// Contour nodes are not packed; they only propagate x to children.
	}

	if !t.packSubtree(n.left) {
		ok = false
	}
	if !t.packSubtree(n.right) {
		ok = false
	}
	return ok
}

// originX computes idx's origin-x from its parent, generalizing standard
// B*-tree rules across all three node kinds (spec.md §4.3).
func (t *Tree) originX(idx int) int {
	n := &t.nodes[idx]
	p := n.parent
	if p == nilIdx {
		return 0
	}
	parent := &t.nodes[p]
	isLeft := parent.left == idx

	switch parent.kind {
	case kindModule:
		m := t.problem.Modules[parent.name]
		if m == nil {
			return 0
		}
		if isLeft {
			return m.X + m.Width()
		}
		return m.X

	case kindHierarchy:
		tr := t.asf[parent.name]
		if tr == nil {
			return 0
		}
		minX, _, maxX, _ := tr.BoundingBox()
		if isLeft {
			return maxX
		}
		return minX

	case kindContour:
		if isLeft {
			return parent.segEnd
		}
		return parent.segStart
	}
	return 0
}

// synthesizeContourChains rebuilds each hierarchy node's right-child
// contour chain from its freshly packed ASF tree's horizontal skyline,
// migrating any dangling non-contour descendants of the old chain onto
// the new one (spec.md §4.3).
func (t *Tree) synthesizeContourChains() {
	for idx := range t.nodes {
		if t.nodes[idx].kind != kindHierarchy {
			continue
		}
		t.resynthesizeOne(idx)
	}
}

func (t *Tree) resynthesizeOne(hIdx int) {
	tr := t.asf[t.nodes[hIdx].name]
	if tr == nil {
		return
	}
	segs := tr.HorizontalContour().Segments()

	oldChainHead := t.nodes[hIdx].right
	danglers, oldChainNodes := t.collectDanglers(oldChainHead)

	_, minY, _, _ := tr.BoundingBox()
	baseY := minY

	var head, prev int = nilIdx, nilIdx
	for _, s := range segs {
		cIdx := t.alloc(node{kind: kindContour, segStart: s.Start, segEnd: s.End, segHeight: s.Height + baseY})
		if head == nilIdx {
			head = cIdx
		} else {
			t.nodes[prev].right = cIdx
			t.nodes[cIdx].parent = prev
		}
		prev = cIdx
	}
	t.nodes[hIdx].right = head
	if head != nilIdx {
		t.nodes[head].parent = hIdx
	}

	for _, d := range danglers {
		t.reattachDangler(head, d)
	}

	// The old chain's own nodes (not the danglers, which were reattached
	// above) are no longer referenced by anything; return their indices to
	// the free list instead of letting the arena grow every Pack (spec.md
	// §9's arena+free-list design exists precisely for this).
	t.freeNodes(oldChainNodes)
}

// collectDanglers walks an old contour chain (linked via .right) and
// gathers every non-contour child hanging off each segment's .left slot,
// plus the contour chain's own node indices (for freeNodes).
func (t *Tree) collectDanglers(chainHead int) (danglers, chainNodes []int) {
	for cur := chainHead; cur != nilIdx; {
		if t.nodes[cur].kind != kindContour {
			// The old right-slot held a non-contour node directly (no
			// chain existed yet); treat it as a single dangler, not a
			// freeable chain node.
			danglers = append(danglers, cur)
			break
		}
		chainNodes = append(chainNodes, cur)
		if l := t.nodes[cur].left; l != nilIdx {
			danglers = append(danglers, l)
			t.nodes[cur].left = nilIdx
			t.nodes[l].parent = nilIdx
		}
		cur = t.nodes[cur].right
	}
	return danglers, chainNodes
}

// freeNodes returns a batch of no-longer-referenced node indices to the
// free list, clearing their links so a stray pointer can't be followed.
func (t *Tree) freeNodes(indices []int) {
	for _, idx := range indices {
		t.nodes[idx] = node{parent: nilIdx, left: nilIdx, right: nilIdx}
		t.freeList = append(t.freeList, idx)
	}
}

// reattachDangler attaches d as the right child of newChainHead if empty,
// otherwise walks to the leftmost-left descendant and attaches it there
// (spec.md §4.3).
func (t *Tree) reattachDangler(newChainHead, d int) {
	if newChainHead == nilIdx {
		return
	}
	if t.nodes[newChainHead].right == nilIdx {
		t.nodes[newChainHead].right = d
		t.nodes[d].parent = newChainHead
		return
	}
	cur := newChainHead
	for t.nodes[cur].left != nilIdx {
		cur = t.nodes[cur].left
	}
	t.nodes[cur].left = d
	t.nodes[d].parent = cur
}

// BoundingBox returns the bounding rectangle over every placed module.
func (t *Tree) BoundingBox() (minX, minY, maxX, maxY int) {
	first := true
	for _, name := range t.problem.Order {
		m := t.problem.Modules[name]
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

// BBoxArea returns the area of BoundingBox.
func (t *Tree) BBoxArea() int {
	minX, minY, maxX, maxY := t.BoundingBox()
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// ---- Perturbation operations (spec.md §4.3) ----

// Rotate flips the named module. If it belongs to a symmetry group, the
// rotation is delegated to that group's ASF-B*-tree (which itself rejects
// rotating a non-representative); otherwise the module is flipped
// directly. Marks the containing subtree modified on success.
func (t *Tree) Rotate(name string) bool {
	if g, ok := t.problem.GroupOf(name); ok {
		tr := t.asf[g.Name]
		if tr == nil || !tr.Rotate(name) {
			return false
		}
		t.markModified(t.index[hierarchyKey(g.Name)])
		return true
	}
	idx, ok := t.index[moduleKey(name)]
	if !ok {
		return false
	}
	m := t.problem.Modules[name]
	if m == nil {
		return false
	}
	m.Rotate()
	t.markModified(idx)
	return true
}

// Move detaches the node named `name` and reattaches it as the left/right
// child of `parentName`, pushing any existing occupant of that slot down
// into the reattached node's spare slot (or its deepest-left descendant if
// both slots are taken), per spec.md §4.3.
func (t *Tree) Move(name, parentName string, asLeft bool) bool {
	idx, ok := t.nodeIndexOf(name)
	if !ok {
		return false
	}
	parentIdx, ok := t.nodeIndexOf(parentName)
	if !ok || parentIdx == idx || t.isDescendant(idx, parentIdx) {
		return false
	}

	oldParent := t.nodes[idx].parent
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
		t.nodes[displaced].parent = nilIdx
		// Prefer the reattached node's other slot; otherwise walk to its
		// deepest-left descendant.
		var otherSlot *int
		if asLeft {
			otherSlot = &t.nodes[idx].right
		} else {
			otherSlot = &t.nodes[idx].left
		}
		if *otherSlot == nilIdx {
			*otherSlot = displaced
			t.nodes[displaced].parent = idx
		} else {
			spot := idx
			for t.nodes[spot].left != nilIdx {
				spot = t.nodes[spot].left
			}
			t.nodes[spot].left = displaced
			t.nodes[displaced].parent = spot
		}
	}

	if oldParent != nilIdx {
		t.markModified(oldParent)
	}
	t.markModified(parentIdx)
	return true
}

func (t *Tree) nodeIndexOf(name string) (int, bool) {
	if idx, ok := t.index[moduleKey(name)]; ok {
		return idx, true
	}
	if idx, ok := t.index[hierarchyKey(name)]; ok {
		return idx, true
	}
	return 0, false
}

// ParentOf returns the addressable name of a module/hierarchy node's
// current parent, its side, and whether it had one at all (false for the
// tree root). ok is false if name isn't found, or if its parent is an
// unnamed contour node — callers (the SA's move generator) should treat
// that as "not a safe Move candidate right now" and retry with a
// different pick, per spec.md §4.7's bounded-retry move generation.
func (t *Tree) ParentOf(name string) (parentName string, asLeft bool, hadParent bool, ok bool) {
	idx, found := t.nodeIndexOf(name)
	if !found {
		return "", false, false, false
	}
	p := t.nodes[idx].parent
	if p == nilIdx {
		return "", false, false, true
	}
	if t.nodes[p].kind == kindContour {
		return "", false, false, false
	}
	return t.nodes[p].name, t.nodes[p].left == idx, true, true
}

// Names returns every addressable (module or hierarchy) node name
// currently in the tree, used by the SA's operand sampling.
func (t *Tree) Names() []string {
	names := make([]string, 0, len(t.index))
	for key := range t.index {
		names = append(names, key[2:])
	}
	return names
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

func (t *Tree) isDescendant(ancestor, n int) bool {
	for cur := n; cur != nilIdx; cur = t.nodes[cur].parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Swap exchanges the tree positions of two nodes (spec.md §4.3): the
// general case swaps parents, child-sides, and both children lists; a
// direct parent/child pair (including either one being the root) is
// handled as a single rotation, and an ancestor with a deeper descendant
// as a position exchange; both keep the tree connected.
func (t *Tree) Swap(name1, name2 string) bool {
	idx1, ok1 := t.nodeIndexOf(name1)
	idx2, ok2 := t.nodeIndexOf(name2)
	if !ok1 || !ok2 || idx1 == idx2 {
		return false
	}

	if t.isDescendant(idx1, idx2) {
		t.swapAncestorDescendant(idx1, idx2)
	} else if t.isDescendant(idx2, idx1) {
		t.swapAncestorDescendant(idx2, idx1)
	} else {
		t.swapUnrelated(idx1, idx2)
	}

	t.markModified(idx1)
	t.markModified(idx2)
	return true
}

// swapUnrelated handles neither-is-ancestor-of-the-other: exchange
// parents, child-side-of-parent, and both nodes' own children lists.
func (t *Tree) swapUnrelated(idx1, idx2 int) {
	p1, p2 := t.nodes[idx1].parent, t.nodes[idx2].parent
	l1, r1 := t.nodes[idx1].left, t.nodes[idx1].right
	l2, r2 := t.nodes[idx2].left, t.nodes[idx2].right

	replaceChild := func(parent, oldChild, newChild int) {
		if parent == nilIdx {
			return
		}
		if t.nodes[parent].left == oldChild {
			t.nodes[parent].left = newChild
		} else if t.nodes[parent].right == oldChild {
			t.nodes[parent].right = newChild
		}
	}
	replaceChild(p1, idx1, idx2)
	replaceChild(p2, idx2, idx1)
	t.nodes[idx1].parent, t.nodes[idx2].parent = p2, p1

	t.nodes[idx1].left, t.nodes[idx1].right = l2, r2
	t.nodes[idx2].left, t.nodes[idx2].right = l1, r1
	for _, c := range []int{l2, r2} {
		if c != nilIdx {
			t.nodes[c].parent = idx1
		}
	}
	for _, c := range []int{l1, r1} {
		if c != nilIdx {
			t.nodes[c].parent = idx2
		}
	}

	if t.root == idx1 {
		t.root = idx2
	} else if t.root == idx2 {
		t.root = idx1
	}
}

// attachChild sets parent's left/right (asLeft) slot to child and fixes up
// child's parent pointer, or sets the tree root if parent is nilIdx.
func (t *Tree) attachChild(parent, child int, asLeft bool) {
	if child != nilIdx {
		t.nodes[child].parent = parent
	}
	if parent == nilIdx {
		t.root = child
		return
	}
	if asLeft {
		t.nodes[parent].left = child
	} else {
		t.nodes[parent].right = child
	}
}

// attachWithPushDown attaches child onto parent's preferred side if empty,
// else walks to parent's deepest-left descendant and attaches there (the
// same push-down rule Move uses for a displaced occupant).
func (t *Tree) attachWithPushDown(parent, child int, preferRight bool) {
	if child == nilIdx {
		return
	}
	if preferRight && t.nodes[parent].right == nilIdx {
		t.attachChild(parent, child, false)
		return
	}
	if !preferRight && t.nodes[parent].left == nilIdx {
		t.attachChild(parent, child, true)
		return
	}
	cur := parent
	for t.nodes[cur].left != nilIdx {
		cur = t.nodes[cur].left
	}
	t.attachChild(cur, child, true)
}

// swapAncestorDescendant handles the case where ancestor is a strict
// ancestor of descendant (spec.md §4.3: "a careful rotation that preserves
// tree connectivity; includes root-swap handling").
//
// Direct parent/child: a single rotation — descendant takes ancestor's old
// slot, ancestor becomes descendant's child on the side it used to occupy,
// and descendant's old child on that same side becomes ancestor's child.
//
// Non-adjacent: descendant rises into ancestor's old slot and takes over
// both of ancestor's children (the one on the path down to it and the
// other one); ancestor drops into descendant's old slot, carrying
// descendant's old children.
func (t *Tree) swapAncestorDescendant(ancestor, descendant int) {
	ancestorParent := t.nodes[ancestor].parent
	ancestorWasLeft := ancestorParent != nilIdx && t.nodes[ancestorParent].left == ancestor
	descParent := t.nodes[descendant].parent

	if descParent == ancestor {
		descWasLeft := t.nodes[ancestor].left == descendant
		var otherChild int
		if descWasLeft {
			otherChild = t.nodes[ancestor].right
		} else {
			otherChild = t.nodes[ancestor].left
		}
		descLeft, descRight := t.nodes[descendant].left, t.nodes[descendant].right

		t.attachChild(ancestorParent, descendant, ancestorWasLeft)
		if descWasLeft {
			t.attachChild(descendant, ancestor, false)
			t.attachChild(descendant, descLeft, true)
			t.attachChild(ancestor, descRight, true)
			t.attachChild(ancestor, otherChild, false)
		} else {
			t.attachChild(descendant, ancestor, true)
			t.attachChild(descendant, descRight, false)
			t.attachChild(ancestor, descLeft, false)
			t.attachChild(ancestor, otherChild, true)
		}
		return
	}

	descWasLeft := t.nodes[descParent].left == descendant
	var otherChild, pathChild int
	pathIsLeft := t.nodes[ancestor].left == descendant || t.isDescendant(t.nodes[ancestor].left, descendant)
	if pathIsLeft {
		pathChild, otherChild = t.nodes[ancestor].left, t.nodes[ancestor].right
	} else {
		pathChild, otherChild = t.nodes[ancestor].right, t.nodes[ancestor].left
	}
	descLeft, descRight := t.nodes[descendant].left, t.nodes[descendant].right

	t.attachChild(ancestorParent, descendant, ancestorWasLeft)
	t.attachChild(descendant, pathChild, pathIsLeft)
	t.attachChild(descendant, otherChild, !pathIsLeft)

	t.attachChild(descParent, ancestor, descWasLeft)
	t.attachChild(ancestor, descLeft, true)
	t.attachChild(ancestor, descRight, false)
}

// GroupNames returns the name of every symmetry group in the problem, used
// by the SA's operand sampler to pick a group for an intra-island Move or
// Swap (spec.md §4.2).
func (t *Tree) GroupNames() []string {
	names := make([]string, 0, len(t.problem.Groups))
	for _, g := range t.problem.Groups {
		names = append(names, g.Name)
	}
	return names
}

// RepresentativesOf returns the current representative names inside
// groupName's ASF-B*-tree (honoring any change_representative override),
// used by the SA's operand sampler for intra-island Rotate/Move/Swap.
func (t *Tree) RepresentativesOf(groupName string) []string {
	tr := t.asf[groupName]
	if tr == nil {
		return nil
	}
	return tr.Representatives()
}

// GroupParentOf returns the parent info of a representative name within
// groupName's ASF-B*-tree, mirroring ParentOf but scoped to the island.
func (t *Tree) GroupParentOf(groupName, name string) (parentName string, asLeft bool, hadParent bool, ok bool) {
	tr := t.asf[groupName]
	if tr == nil {
		return "", false, false, false
	}
	return tr.ParentOf(name)
}

// MoveInGroup rearranges representatives within one symmetry group's
// ASF-B*-tree, delegating to its Move (spec.md §4.2), so the SA can
// rearrange an island's internal structure rather than only the positions
// of whole islands. Marks the owning hierarchy node's subtree modified on
// success.
func (t *Tree) MoveInGroup(groupName, name, parentName string, asLeft bool) bool {
	tr := t.asf[groupName]
	if tr == nil || !tr.Move(name, parentName, asLeft) {
		return false
	}
	t.markModified(t.index[hierarchyKey(groupName)])
	return true
}

// SwapInGroup exchanges two representatives' tree positions within one
// symmetry group's ASF-B*-tree, delegating to its Swap (spec.md §4.2).
func (t *Tree) SwapInGroup(groupName, name1, name2 string) bool {
	tr := t.asf[groupName]
	if tr == nil || !tr.Swap(name1, name2) {
		return false
	}
	t.markModified(t.index[hierarchyKey(groupName)])
	return true
}

// ChangeRepresentative delegates to the named group's ASF-B*-tree, then
// marks that hierarchy node's subtree modified.
func (t *Tree) ChangeRepresentative(groupName, moduleName string) bool {
	tr := t.asf[groupName]
	if tr == nil || !tr.ChangeRepresentative(moduleName) {
		return false
	}
	t.markModified(t.index[hierarchyKey(groupName)])
	return true
}

// ConvertSymmetryType delegates to the named group's ASF-B*-tree, then
// marks that hierarchy node's subtree modified.
func (t *Tree) ConvertSymmetryType(groupName string) bool {
	tr := t.asf[groupName]
	if tr == nil || !tr.ConvertSymmetryType() {
		return false
	}
	t.markModified(t.index[hierarchyKey(groupName)])
	return true
}

// ResolveOverlaps is the overlap safety net (spec.md §4.4): for each
// offending pair, the module with the smaller per-axis overlap is pushed
// just past the other along that axis. Run only at solution finalization,
// bounded at 8 passes (DESIGN.md open-question decision) to guard against
// pathological cycles.
func (t *Tree) ResolveOverlaps() {
	const maxPasses = 8
	for pass := 0; pass < maxPasses; pass++ {
		clean := true
		names := t.problem.Order
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				a, b := t.problem.Modules[names[i]], t.problem.Modules[names[j]]
				if !a.Overlaps(b) {
					continue
				}
				clean = false
				t.pushApart(a, b)
			}
		}
		if clean {
			return
		}
	}
}

// pushApart moves the module with the smaller per-axis overlap just past
// the other along that axis.
func (t *Tree) pushApart(a, b *model.Module) {
	overlapX := min(a.X+a.Width(), b.X+b.Width()) - max(a.X, b.X)
	overlapY := min(a.Y+a.Height(), b.Y+b.Height()) - max(a.Y, b.Y)

	if overlapX <= overlapY {
		if a.X < b.X {
			b.SetPosition(a.X+a.Width(), b.Y)
		} else {
			a.SetPosition(b.X+b.Width(), a.Y)
		}
		return
	}
	if a.Y < b.Y {
		b.SetPosition(b.X, a.Y+a.Height())
	} else {
		a.SetPosition(a.X, b.Y+b.Height())
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
