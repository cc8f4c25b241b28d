package model

import (
	"time"

	"github.com/google/uuid"
)

// Problem is the fully-loaded input: every module by name, and the
// symmetry groups that constrain a subset of them. Modules not mentioned
// by any group are free (asymmetric).
type Problem struct {
	Modules map[string]*Module
	Order   []string // insertion order, for stable output (spec.md §6)
	Groups  []*Group
}

// NewProblem returns an empty Problem ready to be populated by a parser.
func NewProblem() *Problem {
	return &Problem{Modules: make(map[string]*Module)}
}

// AddModule registers a module, preserving insertion order.
func (p *Problem) AddModule(m *Module) {
	if _, exists := p.Modules[m.Name]; !exists {
		p.Order = append(p.Order, m.Name)
	}
	p.Modules[m.Name] = m
}

// GroupOf returns the group containing name and true, or nil/false if the
// module is free.
func (p *Problem) GroupOf(name string) (*Group, bool) {
	for _, g := range p.Groups {
		if g.IsSelf(name) {
			return g, true
		}
		if _, ok := g.PairOf(name); ok {
			return g, true
		}
	}
	return nil, false
}

// FreeModules returns the names of modules that belong to no symmetry
// group, in insertion order.
func (p *Problem) FreeModules() []string {
	var free []string
	for _, name := range p.Order {
		if _, ok := p.GroupOf(name); !ok {
			free = append(free, name)
		}
	}
	return free
}

// RunMetadata tags one solver invocation for diagnostics and report
// enrichment, using the same short-uuid job-ID convention as
// uuid.New().String()[:8].
type RunMetadata struct {
	JobID     string
	StartedAt time.Time
	Seed      int64
}

// NewRunMetadata creates run metadata with a fresh short job ID.
func NewRunMetadata(seed int64, startedAt time.Time) RunMetadata {
	return RunMetadata{
		JobID:     uuid.New().String()[:8],
		StartedAt: startedAt,
		Seed:      seed,
	}
}

// Result is the outcome of one solver run: the final placement plus the
// cost breakdown and metadata needed for reporting.
type Result struct {
	Problem    *Problem
	Meta       RunMetadata
	BBoxArea   int
	WireLength float64
	Cost       float64
	TimedOut   bool
	Iterations int
}

// Project is the JSON save/restore aggregate (SPEC_FULL.md §9): a named
// bundle of modules, groups, and the last result, round-trippable to disk
// independent of the original problem-file grammar.
type Project struct {
	Name    string         `json:"name"`
	Modules []ProjectModule `json:"modules"`
	Groups  []ProjectGroup  `json:"groups"`
	Result  *ProjectResult  `json:"result,omitempty"`
}

// ProjectModule is the JSON-serializable form of a Module.
type ProjectModule struct {
	Name    string `json:"name"`
	W0      int    `json:"w0"`
	H0      int    `json:"h0"`
	Rotated bool   `json:"rotated"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

// ProjectGroup is the JSON-serializable form of a Group.
type ProjectGroup struct {
	Name   string `json:"name"`
	Axis   string `json:"axis"`
	Pairs  []Pair `json:"pairs"`
	Selves []string `json:"selves"`
}

// ProjectResult is the JSON-serializable form of the last solve's summary.
type ProjectResult struct {
	JobID      string  `json:"job_id"`
	BBoxArea   int     `json:"bbox_area"`
	WireLength float64 `json:"wire_length"`
	Cost       float64 `json:"cost"`
	TimedOut   bool    `json:"timed_out"`
}

// ToProject converts an in-memory Problem (+ optional Result) into the
// JSON-serializable Project form.
func ToProject(name string, p *Problem, res *Result) Project {
	proj := Project{Name: name}
	for _, n := range p.Order {
		m := p.Modules[n]
		proj.Modules = append(proj.Modules, ProjectModule{
			Name: m.Name, W0: m.w0, H0: m.h0, Rotated: m.rot, X: m.X, Y: m.Y,
		})
	}
	for _, g := range p.Groups {
		proj.Groups = append(proj.Groups, ProjectGroup{
			Name: g.Name, Axis: g.Axis.String(), Pairs: g.Pairs, Selves: g.Selves,
		})
	}
	if res != nil {
		proj.Result = &ProjectResult{
			JobID: res.Meta.JobID, BBoxArea: res.BBoxArea,
			WireLength: res.WireLength, Cost: res.Cost, TimedOut: res.TimedOut,
		}
	}
	return proj
}

// FromProject reconstructs a Problem from its JSON-serializable form.
func FromProject(proj Project) *Problem {
	p := NewProblem()
	for _, pm := range proj.Modules {
		m := NewModule(pm.Name, pm.W0, pm.H0)
		m.SetRotated(pm.Rotated)
		m.SetPosition(pm.X, pm.Y)
		p.AddModule(m)
	}
	for _, pg := range proj.Groups {
		axis := Vertical
		if pg.Axis == "Horizontal" {
			axis = Horizontal
		}
		p.Groups = append(p.Groups, &Group{
			Name: pg.Name, Axis: axis, Pairs: pg.Pairs, Selves: pg.Selves,
		})
	}
	return p
}
