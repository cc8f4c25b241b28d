package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/floorplan/internal/model"
)

func sampleProblem() *model.Problem {
	p := model.NewProblem()
	a1 := model.NewModule("a1", 4, 2)
	a1.SetPosition(0, 0)
	a2 := model.NewModule("a2", 4, 2)
	a2.SetPosition(8, 0)
	p.AddModule(a1)
	p.AddModule(a2)
	g := &model.Group{Name: "G", Axis: model.Vertical, Pairs: []model.Pair{{A: "a1", B: "a2"}}}
	g.Lock(24)
	p.Groups = []*model.Group{g}
	return p
}

func sampleResult(p *model.Problem) *model.Result {
	return &model.Result{
		Problem:  p,
		Meta:     model.NewRunMetadata(1, time.Unix(0, 0)),
		BBoxArea: 24,
		Cost:     24,
	}
}

func TestWriteAll_ProducesAllThreeFiles(t *testing.T) {
	p := sampleProblem()
	res := sampleResult(p)
	prefix := filepath.Join(t.TempDir(), "run")

	require.NoError(t, WriteAll(prefix, p, res))

	for _, ext := range []string{".pdf", ".xlsx", ".dxf"} {
		info, err := os.Stat(prefix + ext)
		require.NoError(t, err, "missing %s", ext)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestWritePDF_RejectsEmptyProblem(t *testing.T) {
	p := model.NewProblem()
	res := sampleResult(p)
	err := WritePDF(filepath.Join(t.TempDir(), "empty.pdf"), p, res)
	assert.Error(t, err)
}

func TestWriteXLSX_OneRowPerModule(t *testing.T) {
	p := sampleProblem()
	path := filepath.Join(t.TempDir(), "bom.xlsx")
	require.NoError(t, WriteXLSX(path, p))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
