package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/floorplan/internal/anneal"
	"github.com/piwi3910/floorplan/internal/move"
)

const sampleTOML = `
t_initial = 2000
cooling_rate = 0.88
moves_per_temperature = 1800

[move_probabilities]
rotate = 0.1
move = 0.5
swap = 0.2
change_rep = 0.1
convert_sym = 0.1
`

func TestLoad_ParsesTunables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tunables.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTOML), 0644))

	tun, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, tun.TInitial)
	assert.Equal(t, 0.88, tun.CoolingRate)
	assert.Equal(t, 1800, tun.MovesPerTemperature)
	assert.Equal(t, 0.5, tun.MoveProbabilities.Move)
}

func TestApply_OverlaysOnlyNonZeroFields(t *testing.T) {
	base := anneal.DefaultParams()
	base.TFinal = 1.0

	tun := Tunables{CoolingRate: 0.8}
	merged := Apply(base, tun)

	assert.Equal(t, 0.8, merged.CoolingRate)
	assert.Equal(t, base.TFinal, merged.TFinal)
	assert.Equal(t, base.MovesPerTemperature, merged.MovesPerTemperature)
}

func TestApply_WiresMoveProbabilities(t *testing.T) {
	base := anneal.DefaultParams()
	tun := Tunables{MoveProbabilities: MoveProbabilities{
		Rotate: 0.1, Move: 0.5, Swap: 0.2, ChangeRep: 0.1, ConvertSym: 0.1,
	}}
	merged := Apply(base, tun)

	require.NotNil(t, merged.InitialMoveProbs)
	assert.Equal(t, 0.5, merged.InitialMoveProbs[move.Move])
}

func TestLoad_RejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
