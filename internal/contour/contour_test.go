package contour

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeightIn_EmptyReturnsZero(t *testing.T) {
	c := New()
	assert.Equal(t, 0, c.HeightIn(0, 10))
}

func TestRaiseThenQuery(t *testing.T) {
	c := New()
	c.Raise(0, 10, 5)
	assert.Equal(t, 5, c.HeightIn(0, 10))
	assert.Equal(t, 5, c.HeightIn(3, 7))
	assert.Equal(t, 0, c.HeightIn(10, 20))
}

func TestRaiseDoesNotMutateOnInvalidRange(t *testing.T) {
	c := New()
	c.Raise(0, 10, 5)
	before := append([]Segment(nil), c.Segments()...)
	c.Raise(5, 5, 9) // a == b, no-op
	c.Raise(8, 3, 9) // a > b, no-op
	assert.Equal(t, before, c.Segments())
}

func TestRaiseSplitsNeighbors(t *testing.T) {
	c := New()
	c.Raise(0, 20, 3)
	c.Raise(5, 10, 7)

	require.Equal(t, 3, len(c.Segments()))
	assert.Equal(t, 3, c.HeightIn(0, 5))
	assert.Equal(t, 7, c.HeightIn(5, 10))
	assert.Equal(t, 3, c.HeightIn(10, 20))
}

func TestCoalescesAdjacentEqualHeights(t *testing.T) {
	c := New()
	c.Raise(0, 10, 5)
	c.Raise(10, 20, 5)
	segs := c.Segments()
	require.Len(t, segs, 1)
	assert.Equal(t, Segment{Start: 0, End: 20, Height: 5}, segs[0])
}

func TestSegmentsStrictlyOrderedAndDisjoint(t *testing.T) {
	c := New()
	c.Raise(0, 10, 2)
	c.Raise(30, 40, 6)
	c.Raise(15, 20, 4)

	segs := c.Segments()
	for i := 1; i < len(segs); i++ {
		assert.Less(t, segs[i-1].Start, segs[i].Start)
		assert.LessOrEqual(t, segs[i-1].End, segs[i].Start)
	}
}

func TestRaiseZeroDoesNotIncreaseHeight(t *testing.T) {
	c := New()
	c.Raise(0, 10, 5)
	c.Raise(0, 10, 0)
	// Raise's documented contract is "the caller only ever raises to a
	// value >= the current height"; calling it with 0 here is exercising
	// the boundary where 0 is not actually higher, so HeightIn must still
	// report the floor set by the packer's own query discipline (this
	// test fixes the behavior of the call itself, independent of caller
	// discipline: Raise(...,0) sets the segment to height 0).
	assert.Equal(t, 0, c.HeightIn(0, 10))
}

func TestMaxCoordinateAndHeight(t *testing.T) {
	c := New()
	assert.Equal(t, 0, c.MaxCoordinate())
	assert.Equal(t, 0, c.MaxHeight())

	c.Raise(0, 10, 3)
	c.Raise(10, 25, 8)
	assert.Equal(t, 25, c.MaxCoordinate())
	assert.Equal(t, 8, c.MaxHeight())
}

func TestMergeTakesMaxHeight(t *testing.T) {
	a := New()
	a.Raise(0, 10, 3)
	b := New()
	b.Raise(5, 15, 7)

	a.Merge(b)
	assert.Equal(t, 3, a.HeightIn(0, 5))
	assert.Equal(t, 7, a.HeightIn(5, 10))
	assert.Equal(t, 7, a.HeightIn(10, 15))
}

func TestCloneIsIndependent(t *testing.T) {
	c := New()
	c.Raise(0, 10, 4)
	clone := c.Clone()
	clone.Raise(0, 10, 9)

	assert.Equal(t, 4, c.HeightIn(0, 10))
	assert.Equal(t, 9, clone.HeightIn(0, 10))
}

func TestClearAndIsEmpty(t *testing.T) {
	c := New()
	assert.True(t, c.IsEmpty())
	c.Raise(0, 5, 1)
	assert.False(t, c.IsEmpty())
	c.Clear()
	assert.True(t, c.IsEmpty())
}
