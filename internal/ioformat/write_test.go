package ioformat

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/floorplan/internal/model"
)

func TestWriteProblem_StableInsertionOrder(t *testing.T) {
	p := model.NewProblem()
	m1 := model.NewModule("z1", 4, 2)
	m1.SetPosition(1, 2)
	m2 := model.NewModule("a1", 3, 3)
	m2.SetPosition(5, 0)
	p.AddModule(m1)
	p.AddModule(m2)

	var buf bytes.Buffer
	require.NoError(t, WriteProblem(&buf, p, 42))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "A=42", lines[0])
	assert.Equal(t, "z1 1 2", lines[1])
	assert.Equal(t, "a1 5 0", lines[2])
}

func TestParseThenWriteEmitsEveryModule(t *testing.T) {
	src := `
NumHardRectilinearBlocks : 2
a1 hardrectilinear 4 (0,0) (0,2) (4,2) (4,0)
a2 hardrectilinear 4 (0,0) (0,2) (4,2) (4,0)
NumSymGroups : 1
SymGroup : G 1
  SymPair a1 a2
`
	p, err := ParseProblem(strings.NewReader(src))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteProblem(&buf, p, 16))
	assert.Contains(t, buf.String(), "A=16")
	assert.Contains(t, buf.String(), "a1 0 0")
	assert.Contains(t, buf.String(), "a2 0 0")
}
