// Package ioformat implements the hard-rectilinear-block + symmetry-group
// input grammar and the output coordinate format of spec.md §6, plus JSON
// project save/restore (SPEC_FULL.md §9) built on model.Project. It
// depends only on internal/model and never reaches into the packing core.
package ioformat

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/piwi3910/floorplan/internal/model"
)

// ErrInputInvalid wraps every malformed-input failure: bad grammar,
// non-positive dimensions, or a symmetry constraint referencing a module
// that was never declared. Fatal at load time (spec.md §7, kind 1).
type ErrInputInvalid struct{ msg string }

func (e *ErrInputInvalid) Error() string { return "input invalid: " + e.msg }

func invalid(format string, args ...any) error {
	return &ErrInputInvalid{msg: fmt.Sprintf(format, args...)}
}

// ParseProblem reads the hard-rectilinear-block + symmetry-group grammar
// of spec.md §6:
//
//	NumHardRectilinearBlocks : <N>
//	<blockName> hardrectilinear 4 (0,0) (0,<h>) (<w>,<h>) (<w>,0)
//	…
//	NumSymGroups : <G>
//	SymGroup : <groupName> <count>
//	  SymPair <moduleA> <moduleB>
//	  SymSelf <moduleC>
//	  …
func ParseProblem(r io.Reader) (*model.Problem, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, invalid("reading input: %v", err)
	}

	p := model.NewProblem()
	i := 0

	nBlocks, rest, ok := parseCountLine(lines, i, "NumHardRectilinearBlocks")
	if !ok {
		return nil, invalid("expected 'NumHardRectilinearBlocks : <N>' header")
	}
	i = rest

	for b := 0; b < nBlocks; b++ {
		if i >= len(lines) {
			return nil, invalid("expected %d hardrectilinear blocks, found %d", nBlocks, b)
		}
		name, w, h, err := parseBlockLine(lines[i])
		if err != nil {
			return nil, err
		}
		if _, exists := p.Modules[name]; exists {
			return nil, invalid("duplicate module name %q", name)
		}
		p.AddModule(model.NewModule(name, w, h))
		i++
	}

	nGroups, rest, ok := parseCountLine(lines, i, "NumSymGroups")
	if !ok {
		return nil, invalid("expected 'NumSymGroups : <G>' header")
	}
	i = rest

	for g := 0; g < nGroups; g++ {
		if i >= len(lines) {
			return nil, invalid("expected %d symmetry groups, found %d", nGroups, g)
		}
		name, count, err := parseSymGroupHeader(lines[i])
		if err != nil {
			return nil, err
		}
		i++

		group := &model.Group{Name: name, Axis: model.Vertical}
		for m := 0; m < count; m++ {
			if i >= len(lines) {
				return nil, invalid("group %q: expected %d members, found %d", name, count, m)
			}
			fields := strings.Fields(lines[i])
			switch {
			case len(fields) == 3 && strings.EqualFold(fields[0], "SymPair"):
				a, b := fields[1], fields[2]
				if err := requireModule(p, a); err != nil {
					return nil, err
				}
				if err := requireModule(p, b); err != nil {
					return nil, err
				}
				group.Pairs = append(group.Pairs, model.Pair{A: a, B: b})
			case len(fields) == 2 && strings.EqualFold(fields[0], "SymSelf"):
				name := fields[1]
				if err := requireModule(p, name); err != nil {
					return nil, err
				}
				group.Selves = append(group.Selves, name)
			default:
				return nil, invalid("group %q: malformed member line %q", group.Name, lines[i])
			}
			i++
		}
		p.Groups = append(p.Groups, group)
	}

	return p, nil
}

func requireModule(p *model.Problem, name string) error {
	if _, ok := p.Modules[name]; !ok {
		return invalid("symmetry constraint references undeclared module %q", name)
	}
	return nil
}

// parseCountLine parses a "Label : <N>" header line at lines[i].
func parseCountLine(lines []string, i int, label string) (n int, next int, ok bool) {
	if i >= len(lines) {
		return 0, i, false
	}
	parts := strings.SplitN(lines[i], ":", 2)
	if len(parts) != 2 || !strings.EqualFold(strings.TrimSpace(parts[0]), label) {
		return 0, i, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || v < 0 {
		return 0, i, false
	}
	return v, i + 1, true
}

// parseBlockLine parses "<name> hardrectilinear 4 (0,0) (0,<h>) (<w>,<h>) (<w>,0)".
func parseBlockLine(line string) (name string, w, h int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 7 || !strings.EqualFold(fields[1], "hardrectilinear") || fields[2] != "4" {
		return "", 0, 0, invalid("malformed hardrectilinear block line %q", line)
	}
	name = fields[0]
	_, _, err0 := parsePoint(fields[3]) // (0,0)
	_, h1, err1 := parsePoint(fields[4])
	w1, h2, err2 := parsePoint(fields[5])
	w2, _, err3 := parsePoint(fields[6])
	if err0 != nil || err1 != nil || err2 != nil || err3 != nil {
		return "", 0, 0, invalid("malformed point in block line %q", line)
	}
	if h1 != h2 || w1 != w2 {
		return "", 0, 0, invalid("block %q: inconsistent rectangle corners", name)
	}
	w, h = w1, h1
	if w <= 0 || h <= 0 {
		return "", 0, 0, invalid("block %q: dimensions must be positive, got %dx%d", name, w, h)
	}
	return name, w, h, nil
}

func parsePoint(s string) (x, y int, err error) {
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed point %q", s)
	}
	x, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	y, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// parseSymGroupHeader parses "SymGroup : <groupName> <count>".
func parseSymGroupHeader(line string) (name string, count int, err error) {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 || !strings.EqualFold(strings.TrimSpace(parts[0]), "SymGroup") {
		return "", 0, invalid("malformed SymGroup header %q", line)
	}
	fields := strings.Fields(strings.TrimSpace(parts[1]))
	if len(fields) != 2 {
		return "", 0, invalid("malformed SymGroup header %q", line)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 {
		return "", 0, invalid("malformed SymGroup member count %q", line)
	}
	return fields[0], n, nil
}
