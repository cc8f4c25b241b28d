// Package config loads the optional TOML tunables file of SPEC_FULL.md
// §6.2, overriding the compile-time SA defaults of spec.md §6.
// Precedence is CLI flag > config file > compile-time default; this
// package only implements the middle tier, leaving flag-merging to the
// caller (internal/cli).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/piwi3910/floorplan/internal/anneal"
	"github.com/piwi3910/floorplan/internal/move"
)

// MoveProbabilities mirrors anneal's five operations as a TOML-friendly
// flat struct (move.Op values aren't valid TOML keys).
type MoveProbabilities struct {
	Rotate     float64 `toml:"rotate"`
	Move       float64 `toml:"move"`
	Swap       float64 `toml:"swap"`
	ChangeRep  float64 `toml:"change_rep"`
	ConvertSym float64 `toml:"convert_sym"`
}

// Tunables is the decoded shape of the TOML config file.
type Tunables struct {
	TInitial            float64 `toml:"t_initial"`
	TFinal              float64 `toml:"t_final"`
	CoolingRate         float64 `toml:"cooling_rate"`
	MovesPerTemperature int     `toml:"moves_per_temperature"`
	NoImprovementLimit  int     `toml:"no_improvement_limit"`
	ExtraCoolMultiplier float64 `toml:"extra_cool_multiplier"`

	AreaWeight       float64 `toml:"area_weight"`
	WirelengthWeight float64 `toml:"wirelength_weight"`

	MoveProbabilities MoveProbabilities `toml:"move_probabilities"`
}

// Load reads and decodes a TOML tunables file. A missing/zero field keeps
// whatever the caller's existing default is — Apply below only overwrites
// fields present (non-zero) in the decoded file.
func Load(path string) (Tunables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tunables{}, fmt.Errorf("reading config file: %w", err)
	}
	var t Tunables
	if err := toml.Unmarshal(data, &t); err != nil {
		return Tunables{}, fmt.Errorf("parsing config file: %w", err)
	}
	return t, nil
}

// Apply overlays non-zero fields of t onto params, implementing the
// "file takes precedence over compile-time defaults" tier of
// SPEC_FULL.md §6.2's precedence rule. The caller applies CLI flag
// overrides afterward so flags win last.
func Apply(params anneal.Params, t Tunables) anneal.Params {
	if t.TInitial != 0 {
		params.TInitial = t.TInitial
	}
	if t.TFinal != 0 {
		params.TFinal = t.TFinal
	}
	if t.CoolingRate != 0 {
		params.CoolingRate = t.CoolingRate
	}
	if t.MovesPerTemperature != 0 {
		params.MovesPerTemperature = t.MovesPerTemperature
	}
	if t.NoImprovementLimit != 0 {
		params.NoImprovementLimit = t.NoImprovementLimit
	}
	if t.ExtraCoolMultiplier != 0 {
		params.ExtraCoolMultiplier = t.ExtraCoolMultiplier
	}
	if t.AreaWeight != 0 {
		params.AreaWeight = t.AreaWeight
	}
	if t.WirelengthWeight != 0 {
		params.WirelengthWeight = t.WirelengthWeight
	}
	if mp := t.MoveProbabilities; mp != (MoveProbabilities{}) {
		params.InitialMoveProbs = map[move.Op]float64{
			move.Rotate:     mp.Rotate,
			move.Move:       mp.Move,
			move.Swap:       mp.Swap,
			move.ChangeRep:  mp.ChangeRep,
			move.ConvertSym: mp.ConvertSym,
		}
	}
	return params
}
