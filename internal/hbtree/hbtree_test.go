package hbtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/floorplan/internal/model"
)

func onePairOneFree() *model.Problem {
	p := model.NewProblem()
	p.AddModule(model.NewModule("a1", 4, 2))
	p.AddModule(model.NewModule("a2", 4, 2))
	p.AddModule(model.NewModule("f1", 3, 3))
	p.Groups = []*model.Group{
		{Name: "G", Axis: model.Vertical, Pairs: []model.Pair{{A: "a1", B: "a2"}}},
	}
	return p
}

// twoPairGroup builds a single symmetry group with two pairs, so its
// ASF-B*-tree holds two representatives (enough for an intra-island Move
// or Swap).
func twoPairGroup() *model.Problem {
	p := model.NewProblem()
	p.AddModule(model.NewModule("a1", 4, 2))
	p.AddModule(model.NewModule("a2", 4, 2))
	p.AddModule(model.NewModule("b1", 3, 5))
	p.AddModule(model.NewModule("b2", 3, 5))
	p.Groups = []*model.Group{
		{Name: "G", Axis: model.Vertical, Pairs: []model.Pair{
			{A: "a1", B: "a2"},
			{A: "b1", B: "b2"},
		}},
	}
	return p
}

func twoFreeModules() *model.Problem {
	p := model.NewProblem()
	p.AddModule(model.NewModule("f1", 5, 2))
	p.AddModule(model.NewModule("f2", 3, 4))
	return p
}

func TestPack_NoOverlapsAfterFullRepack(t *testing.T) {
	p := onePairOneFree()
	tree := New(p)
	require.True(t, tree.Pack())

	names := p.Order
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := p.Modules[names[i]], p.Modules[names[j]]
			assert.False(t, a.Overlaps(b), "%s and %s overlap", names[i], names[j])
		}
	}
}

func TestPack_AllCoordinatesNonNegative(t *testing.T) {
	p := onePairOneFree()
	tree := New(p)
	require.True(t, tree.Pack())
	for _, m := range p.Modules {
		assert.GreaterOrEqual(t, m.X, 0)
		assert.GreaterOrEqual(t, m.Y, 0)
	}
}

func TestRotate_FreeModuleFlipsDirectly(t *testing.T) {
	p := twoFreeModules()
	tree := New(p)
	require.True(t, tree.Pack())

	before := p.Modules["f1"].Rotated()
	assert.True(t, tree.Rotate("f1"))
	assert.NotEqual(t, before, p.Modules["f1"].Rotated())
}

func TestRotate_GroupModuleDelegatesToASFTree(t *testing.T) {
	p := onePairOneFree()
	tree := New(p)
	require.True(t, tree.Pack())

	// a1/a2: representative is the lexicographically larger name "a2".
	assert.False(t, tree.Rotate("a1"))
	assert.True(t, tree.Rotate("a2"))
}

func TestMove_RejectsSelfAndCycle(t *testing.T) {
	p := twoFreeModules()
	tree := New(p)
	require.True(t, tree.Pack())

	root := tree.nodes[tree.root].name
	assert.False(t, tree.Move(root, root, true))
}

func TestSwap_RootWithDescendantThenRepacks(t *testing.T) {
	p := model.NewProblem()
	for _, n := range []string{"f1", "f2", "f3", "f4"} {
		p.AddModule(model.NewModule(n, 2, 2))
	}
	tree := New(p)
	require.True(t, tree.Pack())

	ok := tree.Swap("f1", "f4")
	require.True(t, ok)
	assert.True(t, tree.Pack())
}

func TestRepresentativesOf_ReturnsBothPairReps(t *testing.T) {
	p := twoPairGroup()
	tree := New(p)
	require.True(t, tree.Pack())

	reps := tree.RepresentativesOf("G")
	assert.ElementsMatch(t, []string{"a2", "b2"}, reps)
}

func TestSwapInGroup_ExchangesRepresentativesAndRepacks(t *testing.T) {
	p := twoPairGroup()
	tree := New(p)
	require.True(t, tree.Pack())

	require.True(t, tree.SwapInGroup("G", "a2", "b2"))
	assert.True(t, tree.Pack())
}

func TestSwapInGroup_UnknownGroupFails(t *testing.T) {
	p := twoPairGroup()
	tree := New(p)
	require.True(t, tree.Pack())

	assert.False(t, tree.SwapInGroup("nope", "a2", "b2"))
}

func TestMoveInGroup_RewiresRepresentativeAndRepacks(t *testing.T) {
	p := twoPairGroup()
	tree := New(p)
	require.True(t, tree.Pack())

	parentName, asLeft, hadParent, ok := tree.GroupParentOf("G", "b2")
	require.True(t, ok)
	if hadParent {
		// Re-attach it right where it already is: a no-op move that still
		// exercises the delegation path end to end.
		require.True(t, tree.MoveInGroup("G", "b2", parentName, asLeft))
	}
	assert.True(t, tree.Pack())
}

func TestPack_RepeatedPacksDoNotLeakContourNodes(t *testing.T) {
	p := onePairOneFree()
	tree := New(p)
	require.True(t, tree.Pack())

	// Force a full repack every time by touching the root's modified flag
	// through a real mutation (Rotate on the free module marks it, and
	// Pack() always does a full repack on module 0 too since nothing else
	// changed the tree shape); run several cycles and confirm the node
	// arena stabilizes instead of growing once the free list is reused.
	tree.Rotate("f1")
	require.True(t, tree.Pack())
	sizeAfterFirst := len(tree.nodes)

	for i := 0; i < 20; i++ {
		tree.Rotate("f1")
		require.True(t, tree.Pack())
	}
	assert.Equal(t, sizeAfterFirst, len(tree.nodes), "node arena grew across repeated full repacks")
}

func TestResolveOverlaps_FixesForcedOverlap(t *testing.T) {
	p := twoFreeModules()
	tree := New(p)
	require.True(t, tree.Pack())

	// Force an overlap directly, bypassing the packer.
	p.Modules["f1"].SetPosition(0, 0)
	p.Modules["f2"].SetPosition(0, 0)
	require.True(t, p.Modules["f1"].Overlaps(p.Modules["f2"]))

	tree.ResolveOverlaps()
	assert.False(t, p.Modules["f1"].Overlaps(p.Modules["f2"]))
}

func TestBBoxArea_MatchesBoundingBox(t *testing.T) {
	p := twoFreeModules()
	tree := New(p)
	require.True(t, tree.Pack())

	minX, minY, maxX, maxY := tree.BoundingBox()
	assert.Equal(t, (maxX-minX)*(maxY-minY), tree.BBoxArea())
}
