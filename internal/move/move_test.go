package move

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_ReturnsZeroedRecord(t *testing.T) {
	p := NewPool()
	idx := p.Acquire()
	r := p.Get(idx)
	assert.Equal(t, Rotate, r.Op)
	assert.Equal(t, "", r.Name1)
}

func TestAcquireAfterRelease_ReusesSlot(t *testing.T) {
	p := NewPool()
	idx1 := p.Acquire()
	p.Get(idx1).Name1 = "m1"
	p.Release(idx1)

	idx2 := p.Acquire()
	require.Equal(t, idx1, idx2, "released slot should be reused")
	assert.Equal(t, "", p.Get(idx2).Name1, "reacquired record must be zeroed")
}

func TestAcquire_GrowsPoolWhenFreeListEmpty(t *testing.T) {
	p := NewPool()
	idx1 := p.Acquire()
	idx2 := p.Acquire()
	assert.NotEqual(t, idx1, idx2)
	assert.Equal(t, 2, p.Len())
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "rotate", Rotate.String())
	assert.Equal(t, "move", Move.String())
	assert.Equal(t, "swap", Swap.String())
	assert.Equal(t, "change_rep", ChangeRep.String())
	assert.Equal(t, "convert_sym", ConvertSym.String())
}
