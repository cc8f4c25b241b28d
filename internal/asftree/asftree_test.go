package asftree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/floorplan/internal/model"
)

func twoPairGroup() (*model.Group, map[string]*model.Module) {
	mods := map[string]*model.Module{
		"a1": model.NewModule("a1", 4, 2),
		"a2": model.NewModule("a2", 4, 2),
		"b1": model.NewModule("b1", 3, 5),
		"b2": model.NewModule("b2", 3, 5),
	}
	g := &model.Group{
		Name: "G",
		Axis: model.Vertical,
		Pairs: []model.Pair{
			{A: "a1", B: "a2"},
			{A: "b1", B: "b2"},
		},
	}
	return g, mods
}

func selfSymmetricGroup() (*model.Group, map[string]*model.Module) {
	mods := map[string]*model.Module{
		"s1": model.NewModule("s1", 6, 2),
		"a1": model.NewModule("a1", 2, 2),
		"a2": model.NewModule("a2", 2, 2),
	}
	g := &model.Group{
		Name:   "G",
		Axis:   model.Vertical,
		Pairs:  []model.Pair{{A: "a1", B: "a2"}},
		Selves: []string{"s1"},
	}
	return g, mods
}

func TestPack_TwoPairMirrorsAboutAxis(t *testing.T) {
	g, mods := twoPairGroup()
	tree := New(g, mods)
	require.True(t, tree.Pack())

	for _, p := range g.Pairs {
		rep := mods[p.Representative()]
		partner := mods[p.Partner()]
		assert.Equal(t, rep.Y, partner.Y, "vertical-axis mirror shares y")
		assert.Equal(t, rep.CenterX2()+partner.CenterX2(), 2*g.Axis2())
	}
}

func TestPack_SelfSymmetricCenteredOnAxis(t *testing.T) {
	g, mods := selfSymmetricGroup()
	tree := New(g, mods)
	require.True(t, tree.Pack())

	s1 := mods["s1"]
	assert.Equal(t, g.Axis2(), s1.CenterX2(), "self-symmetric module centers exactly on the locked axis")
}

func TestPack_NoNegativeCoordinates(t *testing.T) {
	g, mods := selfSymmetricGroup()
	tree := New(g, mods)
	require.True(t, tree.Pack())
	for _, m := range mods {
		assert.GreaterOrEqual(t, m.X, 0)
		assert.GreaterOrEqual(t, m.Y, 0)
	}
}

func TestIsSymmetricFeasible_InitiallyTrue(t *testing.T) {
	g, mods := selfSymmetricGroup()
	tree := New(g, mods)
	assert.True(t, tree.IsSymmetricFeasible())
}

func TestRotate_RejectsNonRepresentative(t *testing.T) {
	g, mods := twoPairGroup()
	tree := New(g, mods)
	partner := g.Pairs[0].Partner()
	assert.False(t, tree.Rotate(partner))
}

func TestRotate_AcceptsRepresentative(t *testing.T) {
	g, mods := twoPairGroup()
	tree := New(g, mods)
	rep := g.Pairs[0].Representative()
	assert.True(t, tree.Rotate(rep))
}

func TestRotate_HonorsChangeRepresentativeOverride(t *testing.T) {
	g, mods := twoPairGroup()
	tree := New(g, mods)
	p := g.Pairs[0]
	oldRep := p.Representative()
	oldPartner := tree.partner(p)

	require.True(t, tree.ChangeRepresentative(oldRep))

	// oldRep is now the non-representative partner: Rotate must reject it
	// and accept the module that is actually the representative in-tree,
	// even though oldRep is still lexicographically larger.
	assert.False(t, tree.Rotate(oldRep))
	assert.True(t, tree.Rotate(oldPartner))
}

func TestSwap_RejectsMixedSelfness(t *testing.T) {
	g, mods := selfSymmetricGroup()
	tree := New(g, mods)
	assert.False(t, tree.Swap("s1", "a1"))
}

func TestSwap_AcceptsSameSelfness(t *testing.T) {
	g, mods := twoPairGroup()
	tree := New(g, mods)
	rep1 := g.Pairs[0].Representative()
	rep2 := g.Pairs[1].Representative()
	ok := tree.Swap(rep1, rep2)
	assert.True(t, ok)
	require.True(t, tree.Pack())
}

func TestChangeRepresentative_FlipsAndRebuilds(t *testing.T) {
	g, mods := twoPairGroup()
	tree := New(g, mods)
	p := g.Pairs[0]
	before := tree.representative(p)

	ok := tree.ChangeRepresentative(p.A)
	require.True(t, ok)
	after := tree.representative(p)
	assert.NotEqual(t, before, after)

	require.True(t, tree.Pack())
}

func TestConvertSymmetryType_FlipsAxisAndRotatesModules(t *testing.T) {
	g, mods := twoPairGroup()
	tree := New(g, mods)
	require.True(t, tree.Pack())

	rotatedBefore := mods["a1"].Rotated()
	ok := tree.ConvertSymmetryType()
	require.True(t, ok)
	assert.Equal(t, model.Horizontal, g.Axis)
	assert.NotEqual(t, rotatedBefore, mods["a1"].Rotated())

	require.True(t, tree.Pack())
	for _, p := range g.Pairs {
		rep := mods[p.Representative()]
		partner := mods[p.Partner()]
		assert.Equal(t, rep.X, partner.X, "horizontal-axis mirror shares x")
	}
}

func TestMove_RejectsCycle(t *testing.T) {
	g, mods := twoPairGroup()
	tree := New(g, mods)
	root := g.Pairs[1].Representative() // larger-area rep becomes root in buildInitial; exact root not asserted here
	_ = root
	// Moving the root under its own descendant must be rejected.
	rootName := tree.nodes[tree.root].name
	childIdx := tree.nodes[tree.root].right
	if childIdx == nilIdx {
		childIdx = tree.nodes[tree.root].left
	}
	if childIdx != nilIdx {
		childName := tree.nodes[childIdx].name
		assert.False(t, tree.Move(rootName, childName, true))
	}
}
