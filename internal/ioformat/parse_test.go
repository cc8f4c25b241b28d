package ioformat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePrograph = `
NumHardRectilinearBlocks : 3
a1 hardrectilinear 4 (0,0) (0,2) (4,2) (4,0)
a2 hardrectilinear 4 (0,0) (0,2) (4,2) (4,0)
f1 hardrectilinear 4 (0,0) (0,3) (3,3) (3,0)
NumSymGroups : 1
SymGroup : G 1
  SymPair a1 a2
`

func TestParseProblem_ValidGrammar(t *testing.T) {
	p, err := ParseProblem(strings.NewReader(samplePrograph))
	require.NoError(t, err)
	assert.Len(t, p.Order, 3)
	assert.Equal(t, 4, p.Modules["a1"].Width())
	assert.Equal(t, 2, p.Modules["a1"].Height())
	require.Len(t, p.Groups, 1)
	assert.Equal(t, "G", p.Groups[0].Name)
	require.Len(t, p.Groups[0].Pairs, 1)
	assert.Equal(t, "a1", p.Groups[0].Pairs[0].A)
}

func TestParseProblem_SelfSymmetricMember(t *testing.T) {
	input := `
NumHardRectilinearBlocks : 1
s1 hardrectilinear 4 (0,0) (0,5) (5,5) (5,0)
NumSymGroups : 1
SymGroup : G 1
  SymSelf s1
`
	p, err := ParseProblem(strings.NewReader(input))
	require.NoError(t, err)
	assert.True(t, p.Groups[0].IsSelf("s1"))
}

func TestParseProblem_RejectsNonPositiveDimension(t *testing.T) {
	input := `
NumHardRectilinearBlocks : 1
bad hardrectilinear 4 (0,0) (0,0) (4,0) (4,0)
NumSymGroups : 0
`
	_, err := ParseProblem(strings.NewReader(input))
	require.Error(t, err)
	var target *ErrInputInvalid
	assert.ErrorAs(t, err, &target)
}

func TestParseProblem_RejectsUndeclaredModuleInSymPair(t *testing.T) {
	input := `
NumHardRectilinearBlocks : 1
a1 hardrectilinear 4 (0,0) (0,2) (4,2) (4,0)
NumSymGroups : 1
SymGroup : G 1
  SymPair a1 ghost
`
	_, err := ParseProblem(strings.NewReader(input))
	assert.Error(t, err)
}

func TestParseProblem_RejectsMalformedHeader(t *testing.T) {
	_, err := ParseProblem(strings.NewReader("garbage\n"))
	assert.Error(t, err)
}

func TestParseProblem_RejectsInconsistentRectangle(t *testing.T) {
	input := `
NumHardRectilinearBlocks : 1
a1 hardrectilinear 4 (0,0) (0,2) (5,3) (5,0)
NumSymGroups : 0
`
	_, err := ParseProblem(strings.NewReader(input))
	assert.Error(t, err)
}
