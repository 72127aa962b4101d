// Package route picks the order in which waypoints are visited between two stops.
package route

import (
	"github.com/pkg/errors"
)

// Pair is an ordered (start, end) pair of waypoint indices.
type Pair [2]int

// Resolver chooses the shortest run through a set of reference tour loops.
type Resolver struct {
	// Templates are the reference orders, scanned in the given direction.
	Templates [][]int
	// Shortcuts bypass the template search for specific pairs.
	Shortcuts map[Pair][]int
}

// Shortcut is a fixed route for one (start, end) pair.
type Shortcut struct {
	Start int   `json:"start"`
	End   int   `json:"end"`
	Route []int `json:"route"`
}

// Config is the file form of a Resolver.
type Config struct {
	Templates [][]int    `json:"templates"`
	Shortcuts []Shortcut `json:"shortcuts"`
}

// DefaultConfig returns the reference loops of the standard seven-stop exhibit hall.
func DefaultConfig() Config {
	return Config{
		Templates: [][]int{
			{1, 0, 2, 3, 4, 5, 6},
			{1, 0, 2, 6, 5, 4, 3},
			{6, 5, 4, 3, 2, 0, 1},
			{3, 4, 5, 6, 2, 0, 1},
		},
		Shortcuts: []Shortcut{
			{Start: 3, End: 6, Route: []int{3, 2, 6}},
			{Start: 6, End: 3, Route: []int{6, 2, 3}},
		},
	}
}

// Resolver builds a resolver from the config. A later shortcut for the same pair wins.
func (c Config) Resolver() *Resolver {
	r := &Resolver{Templates: c.Templates}
	if len(c.Shortcuts) > 0 {
		r.Shortcuts = make(map[Pair][]int, len(c.Shortcuts))
		for _, sc := range c.Shortcuts {
			r.Shortcuts[Pair{sc.Start, sc.End}] = sc.Route
		}
	}
	return r
}

// DefaultResolver returns the resolver for the standard seven-stop exhibit hall.
func DefaultResolver() *Resolver {
	return DefaultConfig().Resolver()
}

// Resolve returns the waypoints to visit from start to end, both inclusive.
// An empty result means no template connects the pair.
func (r *Resolver) Resolve(start, end int) []int {
	if start == end {
		return []int{start}
	}
	if sc, ok := r.Shortcuts[Pair{start, end}]; ok {
		return append([]int(nil), sc...)
	}

	var best []int
	for _, tmpl := range r.Templates {
		run := extract(tmpl, start, end)
		if len(run) == 0 {
			continue
		}
		if best == nil || len(run) < len(best) {
			best = run
		}
	}
	return best
}

// extract collects the contiguous run of order from start to end.
func extract(order []int, start, end int) []int {
	var run []int
	for _, idx := range order {
		switch {
		case idx == start:
			run = append(run, idx)
		case idx == end:
			if run == nil {
				return nil
			}
			return append(run, idx)
		case run != nil:
			run = append(run, idx)
		}
	}
	return nil
}

// Validate checks that every index the resolver can emit addresses a table of n waypoints.
func (r *Resolver) Validate(n int) error {
	for i, tmpl := range r.Templates {
		for _, idx := range tmpl {
			if idx < 0 || idx >= n {
				return errors.Errorf("template %d: waypoint %d out of range [0, %d)", i, idx, n)
			}
		}
	}
	for pair, sc := range r.Shortcuts {
		if len(sc) == 0 || sc[0] != pair[0] || sc[len(sc)-1] != pair[1] {
			return errors.Errorf("shortcut %v: must run from %d to %d", pair, pair[0], pair[1])
		}
		for _, idx := range sc {
			if idx < 0 || idx >= n {
				return errors.Errorf("shortcut %v: waypoint %d out of range [0, %d)", pair, idx, n)
			}
		}
	}
	return nil
}
