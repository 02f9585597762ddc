package rfgraph

import (
	"context"

	"cdr.dev/slog"
	"golang.org/x/exp/slices"

	"oss.terrastruct.com/reflow/lib/geo"
	"oss.terrastruct.com/reflow/lib/log"
)

// Accessor is the narrow view of an external diagram model that layout reads from
// and writes back to. Getters return snapshots; setters return false when the
// element no longer exists.
type Accessor interface {
	ListNodes() []Node
	ListEdges() []Edge
	// ListChildren lists the direct children of a container in declaration order, "" for the top level.
	ListChildren(containerID string) []string
	ListLanes(containerID string) []Lane

	SetBounds(id string, b geo.Box) bool
	SetWaypoints(edgeID string, route geo.Route) bool
	SetLabelBounds(ownerID string, b geo.Box) bool
}

// Load copies the accessor's contents into a new Graph. Edges with a missing
// endpoint are skipped.
func Load(ctx context.Context, acc Accessor) *Graph {
	g := NewGraph()
	for _, n := range acc.ListNodes() {
		n := n
		n.Box = n.Box.Copy()
		n.Label = n.Label.Copy()
		if g.AddNode(&n) == nil {
			log.Debug(ctx, "skipping duplicate node", slog.F("id", n.ID))
		}
	}

	containers := []string{""}
	for _, n := range g.Nodes {
		if n.Kind.IsContainer() {
			containers = append(containers, n.ID)
		}
	}
	order := make(map[string][]string, len(containers))
	for _, id := range containers {
		order[id] = acc.ListChildren(id)
	}
	g.reindex(order)

	for _, id := range containers {
		for _, l := range acc.ListLanes(id) {
			l := l
			l.Box = l.Box.Copy()
			l.Members = append([]string(nil), l.Members...)
			if l.Container == "" {
				l.Container = id
			}
			g.AddLane(&l)
		}
	}

	for _, e := range acc.ListEdges() {
		e := e
		e.Route = e.Route.Copy()
		e.Label = e.Label.Copy()
		e.Class = Unclassified
		if g.AddEdge(&e) == nil {
			log.Debug(ctx, "skipping dangling edge", slog.F("id", e.ID), slog.F("src", e.Src), slog.F("dst", e.Dst))
		}
	}
	return g
}

// reindex rebuilds child lists. Children named by order come first in that order,
// the rest follow in declaration order. Nodes whose parent is unknown are listed
// under the top level; their Parent field is left untouched.
func (g *Graph) reindex(order map[string][]string) {
	g.children = make(map[string][]string)
	g.attached = make(map[string][]string)
	byParent := make(map[string][]string)
	for _, n := range g.Nodes {
		parent := n.Parent
		if parent != "" && (g.nodes[parent] == nil || parent == n.ID) {
			parent = ""
		}
		byParent[parent] = append(byParent[parent], n.ID)
		if n.Host != "" && g.nodes[n.Host] != nil {
			g.attached[n.Host] = append(g.attached[n.Host], n.ID)
		}
	}
	for parent, ids := range byParent {
		var sorted []string
		for _, id := range order[parent] {
			if slices.Contains(ids, id) && !slices.Contains(sorted, id) {
				sorted = append(sorted, id)
			}
		}
		for _, id := range ids {
			if !slices.Contains(sorted, id) {
				sorted = append(sorted, id)
			}
		}
		g.children[parent] = sorted
	}
}

// WriteBack writes every geometry that differs from before into acc and returns
// how many nodes or lanes moved and how many edges were rerouted. Elements the
// accessor no longer knows are skipped.
func (g *Graph) WriteBack(ctx context.Context, acc Accessor, before *Graph) (moved, rerouted int) {
	for _, n := range g.Nodes {
		var prev *Node
		if before != nil {
			prev = before.Node(n.ID)
		}
		if prev == nil || !prev.Box.Equals(n.Box) {
			if acc.SetBounds(n.ID, *n.Box.Copy()) {
				moved++
			} else {
				log.Debug(ctx, "node vanished before write back", slog.F("id", n.ID))
			}
		}
		if n.Label != nil && (prev == nil || !prev.Label.Equals(n.Label)) {
			acc.SetLabelBounds(n.ID, *n.Label.Copy())
		}
	}
	for _, l := range g.Lanes {
		var prev *Lane
		if before != nil {
			prev = before.Lane(l.ID)
		}
		if prev == nil || !prev.Box.Equals(l.Box) {
			if acc.SetBounds(l.ID, *l.Box.Copy()) {
				moved++
			}
		}
	}
	for _, e := range g.Edges {
		if len(e.Route) == 0 {
			continue
		}
		var prev *Edge
		if before != nil {
			prev = before.Edge(e.ID)
		}
		if prev == nil || !prev.Route.Equals(e.Route) {
			if acc.SetWaypoints(e.ID, e.Route.Copy()) {
				rerouted++
			} else {
				log.Debug(ctx, "edge vanished before write back", slog.F("id", e.ID))
			}
		}
		if e.Label != nil && (prev == nil || !prev.Label.Equals(e.Label)) {
			acc.SetLabelBounds(e.ID, *e.Label.Copy())
		}
	}
	return moved, rerouted
}
