// Package rfgateway finds split/join constructs in a layered flow graph and
// tags the nodes between them with a branch index.
package rfgateway

import (
	"golang.org/x/exp/slices"

	"oss.terrastruct.com/reflow/rfgraph"
	"oss.terrastruct.com/reflow/rflayouts/rfextract"
	"oss.terrastruct.com/reflow/rflayouts/rforder"
)

type Pattern struct {
	Split string
	// Join is empty when the branches never reconverge.
	Join string
	// Targets are the first node of each branch in edge declaration order.
	Targets []string
	// Branches lists the nodes strictly between split and join per branch.
	Branches [][]string
}

// Tag places a node on branch Index of Count branches leaving Split.
type Tag struct {
	Split string
	Index int
	Count int
}

type Patterns struct {
	Splits []*Pattern
	// BySplit and ByJoin index patterns by their gateway ids.
	BySplit map[string]*Pattern
	ByJoin  map[string]*Pattern
	// Branch holds the innermost branch tag of every node inside a pattern.
	Branch map[string]Tag
}

func (ps *Patterns) TagOf(id string) (Tag, bool) {
	t, ok := ps.Branch[id]
	return t, ok
}

// Detect visits splits in topological order so that a nested split overwrites
// the tags its enclosing split gave to the same nodes.
func Detect(fg *rfextract.FlowGraph, o *rforder.Order) *Patterns {
	ps := &Patterns{
		BySplit: make(map[string]*Pattern),
		ByJoin:  make(map[string]*Pattern),
		Branch:  make(map[string]Tag),
	}
	for _, id := range o.Topo {
		targets := successors(fg, id)
		if len(targets) < 2 {
			continue
		}
		p := detect(fg, o, id, targets)
		ps.Splits = append(ps.Splits, p)
		ps.BySplit[id] = p
		if p.Join != "" {
			if _, ok := ps.ByJoin[p.Join]; !ok {
				ps.ByJoin[p.Join] = p
			}
		}
		for i, branch := range p.Branches {
			for _, n := range branch {
				ps.Branch[n] = Tag{Split: id, Index: i, Count: len(p.Targets)}
			}
		}
	}
	return ps
}

// successors are the distinct forward targets of id in edge declaration order.
func successors(fg *rfextract.FlowGraph, id string) []string {
	var out []string
	for _, e := range rforder.Forward(fg, id) {
		if !slices.Contains(out, e.Dst) {
			out = append(out, e.Dst)
		}
	}
	return out
}

func predecessors(fg *rfextract.FlowGraph, id string) []string {
	var out []string
	for _, e := range rforder.ForwardIn(fg, id) {
		if !slices.Contains(out, e.Src) {
			out = append(out, e.Src)
		}
	}
	return out
}

// IsSplit and IsJoin count distinct forward neighbours.
func IsSplit(fg *rfextract.FlowGraph, id string) bool {
	return len(successors(fg, id)) >= 2
}

func IsJoin(fg *rfextract.FlowGraph, id string) bool {
	return len(predecessors(fg, id)) >= 2
}

// Successors and Predecessors expose the distinct forward neighbours of id.
func Successors(fg *rfextract.FlowGraph, id string) []string {
	return successors(fg, id)
}

func Predecessors(fg *rfextract.FlowGraph, id string) []string {
	return predecessors(fg, id)
}

func detect(fg *rfextract.FlowGraph, o *rforder.Order, split string, targets []string) *Pattern {
	p := &Pattern{
		Split:    split,
		Targets:  targets,
		Branches: make([][]string, len(targets)),
	}
	reach := make([]map[string]struct{}, len(targets))
	for i, t := range targets {
		reach[i] = reachable(fg, t)
	}

	bestLayer := -1
	for _, id := range fg.Nodes {
		if !IsJoin(fg, id) {
			continue
		}
		common := true
		for _, r := range reach {
			if _, ok := r[id]; !ok {
				common = false
				break
			}
		}
		if common && (bestLayer < 0 || o.Layer[id] < bestLayer) {
			p.Join, bestLayer = id, o.Layer[id]
		}
	}

	var beyond map[string]struct{}
	if p.Join != "" {
		beyond = reachable(fg, p.Join)
	}
	claimed := make(map[string]struct{})
	for i := range targets {
		for _, id := range fg.Nodes {
			if _, ok := reach[i][id]; !ok {
				continue
			}
			if _, ok := claimed[id]; ok {
				continue
			}
			if _, ok := beyond[id]; ok {
				continue
			}
			if p.Join == "" && sharedWithOtherBranch(reach, i, id) {
				continue
			}
			if id == split {
				continue
			}
			claimed[id] = struct{}{}
			p.Branches[i] = append(p.Branches[i], id)
		}
	}
	return p
}

func sharedWithOtherBranch(reach []map[string]struct{}, i int, id string) bool {
	for j, r := range reach {
		if j == i {
			continue
		}
		if _, ok := r[id]; ok {
			return true
		}
	}
	return false
}

// reachable is the forward closure of from, from included.
func reachable(fg *rfextract.FlowGraph, from string) map[string]struct{} {
	seen := map[string]struct{}{from: {}}
	queue := []string{from}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, e := range fg.Outgoing(curr) {
			if e.Class != rfgraph.Forward {
				continue
			}
			if _, ok := seen[e.Dst]; !ok {
				seen[e.Dst] = struct{}{}
				queue = append(queue, e.Dst)
			}
		}
	}
	return seen
}
