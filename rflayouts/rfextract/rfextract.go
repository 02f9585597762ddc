// Package rfextract builds the main-flow graph of one container: its direct
// children minus boundary, artifact and pool nodes, and the edges between them.
package rfextract

import (
	"oss.terrastruct.com/reflow/rfgraph"
)

// FlowGraph is a read-only view over part of an rfgraph.Graph. Edges are
// shared with the graph so later stages can classify them in place.
type FlowGraph struct {
	Scope string
	Nodes []string
	Edges []*rfgraph.Edge

	set map[string]struct{}
	out map[string][]*rfgraph.Edge
	in  map[string][]*rfgraph.Edge
}

func (fg *FlowGraph) Has(id string) bool {
	_, ok := fg.set[id]
	return ok
}

func (fg *FlowGraph) Empty() bool {
	return len(fg.Nodes) == 0
}

func (fg *FlowGraph) Outgoing(id string) []*rfgraph.Edge {
	return fg.out[id]
}

func (fg *FlowGraph) Incoming(id string) []*rfgraph.Edge {
	return fg.in[id]
}

// Index is the declaration position of id, -1 when absent.
func (fg *FlowGraph) Index(id string) int {
	for i, n := range fg.Nodes {
		if n == id {
			return i
		}
	}
	return -1
}

// Remove drops nodes and every edge touching them.
func (fg *FlowGraph) Remove(ids ...string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
		delete(fg.set, id)
	}
	nodes := fg.Nodes[:0]
	for _, id := range fg.Nodes {
		if _, ok := drop[id]; !ok {
			nodes = append(nodes, id)
		}
	}
	fg.Nodes = nodes

	edges := fg.Edges
	fg.Edges = nil
	fg.out = make(map[string][]*rfgraph.Edge)
	fg.in = make(map[string][]*rfgraph.Edge)
	for _, e := range edges {
		_, srcDropped := drop[e.Src]
		_, dstDropped := drop[e.Dst]
		if srcDropped || dstDropped {
			continue
		}
		fg.addEdge(e)
	}
}

func (fg *FlowGraph) addEdge(e *rfgraph.Edge) {
	fg.Edges = append(fg.Edges, e)
	fg.out[e.Src] = append(fg.out[e.Src], e)
	fg.in[e.Dst] = append(fg.in[e.Dst], e)
}

// IsFlowNode reports whether n takes part in main-flow layering of its container.
func IsFlowNode(n *rfgraph.Node) bool {
	return !n.IsBoundary() && !n.Kind.IsArtifact() && n.Kind != rfgraph.KindPool
}

// Extract restricts g to the flow nodes directly inside scope. The empty
// scope is the top level. Association and cross-container edges never enter
// the flow graph.
func Extract(g *rfgraph.Graph, scope string) *FlowGraph {
	fg := &FlowGraph{
		Scope: scope,
		set:   make(map[string]struct{}),
		out:   make(map[string][]*rfgraph.Edge),
		in:    make(map[string][]*rfgraph.Edge),
	}
	for _, id := range g.Children(scope) {
		n := g.Node(id)
		if n == nil || !IsFlowNode(n) {
			continue
		}
		fg.Nodes = append(fg.Nodes, id)
		fg.set[id] = struct{}{}
	}
	for _, e := range g.Edges {
		if e.Class == rfgraph.Association || e.Class == rfgraph.CrossContainer {
			continue
		}
		if fg.Has(e.Src) && fg.Has(e.Dst) {
			fg.addEdge(e)
		}
	}
	return fg
}

// Parent is the container id that n is laid out in. Boundary nodes belong to
// their host's container whatever their declared parent.
func Parent(g *rfgraph.Graph, n *rfgraph.Node) string {
	if n.IsBoundary() {
		if host := g.Node(n.Host); host != nil {
			return host.Parent
		}
	}
	return n.Parent
}

// ClassifyStructural marks association and cross-container edges and resets
// every other edge to unclassified. It runs once over the whole graph before
// any container is processed.
func ClassifyStructural(g *rfgraph.Graph) {
	for _, e := range g.Edges {
		src, dst := g.Endpoints(e)
		switch {
		case src.Kind.IsArtifact() || dst.Kind.IsArtifact():
			e.Class = rfgraph.Association
		case src.Kind == rfgraph.KindPool || dst.Kind == rfgraph.KindPool:
			e.Class = rfgraph.CrossContainer
		case Parent(g, src) != Parent(g, dst):
			e.Class = rfgraph.CrossContainer
		default:
			e.Class = rfgraph.Unclassified
		}
	}
}
