package solver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/floorplan/internal/anneal"
	"github.com/piwi3910/floorplan/internal/model"
)

func twoPairProblem() *model.Problem {
	p := model.NewProblem()
	p.AddModule(model.NewModule("a1", 4, 2))
	p.AddModule(model.NewModule("a2", 4, 2))
	p.AddModule(model.NewModule("b1", 3, 5))
	p.AddModule(model.NewModule("b2", 3, 5))
	p.Groups = []*model.Group{
		{Name: "G", Axis: model.Vertical, Pairs: []model.Pair{
			{A: "a1", B: "a2"}, {A: "b1", B: "b2"},
		}},
	}
	return p
}

func TestRun_ProducesNonNegativeResult(t *testing.T) {
	p := twoPairProblem()
	cfg := Config{Anneal: anneal.DefaultParams(), Seed: 1}
	cfg.Anneal.TInitial = 300
	cfg.Anneal.MovesPerTemperature = 40
	cfg.Anneal.NoImprovementLimit = 2

	res := Run(p, cfg, nil)
	require.NotNil(t, res)
	assert.False(t, res.TimedOut)
	assert.Greater(t, res.BBoxArea, 0)
	assert.GreaterOrEqual(t, res.Cost, 0.0)
	assert.NotEmpty(t, res.Meta.JobID)
}

func TestRun_TimeoutStillReturnsAPlacement(t *testing.T) {
	p := twoPairProblem()
	cfg := Config{
		Anneal:  anneal.DefaultParams(),
		Seed:    2,
		Timeout: time.Nanosecond,
		Grace:   time.Millisecond,
	}
	cfg.Anneal.TInitial = 300
	cfg.Anneal.MovesPerTemperature = 2000
	cfg.Anneal.NoImprovementLimit = 50

	res := Run(p, cfg, nil)
	require.NotNil(t, res)
	assert.Greater(t, res.BBoxArea, 0)
}

func TestTimeoutManager_StoppedAfterTimeout(t *testing.T) {
	tm := NewTimeoutManager(10*time.Millisecond, 10*time.Millisecond, nil)
	tm.Start()
	defer tm.MarkDone()

	assert.False(t, tm.Stopped())
	time.Sleep(30 * time.Millisecond)
	assert.True(t, tm.Stopped())
}

func TestTimeoutManager_EmergencyFiresAfterGraceUnlessMarkedDone(t *testing.T) {
	fired := make(chan struct{}, 1)
	tm := NewTimeoutManager(5*time.Millisecond, 5*time.Millisecond, func() {
		fired <- struct{}{}
	})
	tm.Start()

	select {
	case <-fired:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("emergency callback never fired")
	}
}

func TestTimeoutManager_MarkDoneSuppressesEmergency(t *testing.T) {
	fired := make(chan struct{}, 1)
	tm := NewTimeoutManager(5*time.Millisecond, 20*time.Millisecond, func() {
		fired <- struct{}{}
	})
	tm.Start()
	time.Sleep(10 * time.Millisecond)
	tm.MarkDone()

	select {
	case <-fired:
		t.Fatal("emergency callback fired despite MarkDone")
	case <-time.After(40 * time.Millisecond):
	}
}

func TestTimeoutManager_DisabledWhenTimeoutIsZero(t *testing.T) {
	tm := NewTimeoutManager(0, 0, nil)
	tm.Start()
	defer tm.MarkDone()
	time.Sleep(5 * time.Millisecond)
	assert.False(t, tm.Stopped())
}
