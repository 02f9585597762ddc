// Package rfartifact is the cosmetic last pass: annotations and data objects
// move next to the flow node they document, labels follow their owners.
package rfartifact

import (
	"oss.terrastruct.com/reflow/lib/geo"
	"oss.terrastruct.com/reflow/lib/label"
	"oss.terrastruct.com/reflow/rfgraph"
)

const (
	ARTIFACT_OFFSET = 20
	// STACK_GAP separates artifacts that share a host.
	STACK_GAP = 10
)

// Host returns the single non-artifact node that artifact id is associated
// with, or nil when it has none or several.
func Host(g *rfgraph.Graph, id string) *rfgraph.Node {
	var host *rfgraph.Node
	visit := func(other string) bool {
		n := g.Node(other)
		if n == nil || n.Kind.IsArtifact() {
			return true
		}
		if host != nil && host.ID != n.ID {
			return false
		}
		host = n
		return true
	}
	for _, e := range g.Outgoing(id) {
		if !visit(e.Dst) {
			return nil
		}
	}
	for _, e := range g.Incoming(id) {
		if !visit(e.Src) {
			return nil
		}
	}
	return host
}

// Place puts every annotation above right of its host and every data object
// below right, stacking further ones away from the host. Only artifacts
// inside within are touched; the empty id is the whole diagram.
func Place(g *rfgraph.Graph, within string, pinned map[string]struct{}) int {
	type key struct {
		host string
		kind rfgraph.Kind
	}
	stack := make(map[key]int)
	moved := 0
	for _, n := range g.Nodes {
		if !n.Kind.IsArtifact() || rfgraph.Pinned(pinned, n.ID) {
			continue
		}
		if within != "" && !g.IsDescendantOf(n.ID, within) {
			continue
		}
		host := Host(g, n.ID)
		if host == nil {
			continue
		}
		k := key{host.ID, n.Kind}
		i := float64(stack[k])
		stack[k]++

		var tl *geo.Point
		if n.Kind == rfgraph.KindAnnotation {
			tl = label.CornerTopRight.GetPointOnBox(host.Box, ARTIFACT_OFFSET, n.Width, n.Height)
			tl.Y -= i * (n.Height + STACK_GAP)
		} else {
			tl = label.CornerBottomRight.GetPointOnBox(host.Box, ARTIFACT_OFFSET, n.Width, n.Height)
			tl.Y += i * (n.Height + STACK_GAP)
		}
		n.TopLeft = tl
		moved++
	}
	return moved
}

// Labels places node labels centered below their node and edge labels
// centered on the halfway point of their route.
func Labels(g *rfgraph.Graph, within string) {
	inside := func(id string) bool {
		return within == "" || g.IsDescendantOf(id, within)
	}
	for _, n := range g.Nodes {
		if n.Label == nil || !inside(n.ID) {
			continue
		}
		n.Label.TopLeft = label.OutsideBottomCenter.GetPointOnBox(n.Box, label.PADDING, n.Label.Width, n.Label.Height)
	}
	for _, e := range g.Edges {
		if e.Label == nil || len(e.Route) == 0 || !inside(e.Src) || !inside(e.Dst) {
			continue
		}
		tl, _ := label.GetPointOnRoute(e.Route, label.CENTER_LABEL_POSITION, e.Label.Width, e.Label.Height)
		e.Label.TopLeft = tl
	}
}
