// Package rfboundary separates boundary events and the exception chains behind
// them from the main flow, and places both relative to their host.
package rfboundary

import (
	"math"

	"oss.terrastruct.com/reflow/lib/geo"
	"oss.terrastruct.com/reflow/lib/label"
	"oss.terrastruct.com/reflow/rfgraph"
	"oss.terrastruct.com/reflow/rflayouts/rfextract"
)

// Slots are the host border positions given to successive boundary nodes.
var Slots = []label.Position{
	label.BorderBottomCenter,
	label.BorderLeftMiddle,
	label.BorderBottomRight,
	label.BorderBottomLeft,
	label.BorderTopCenter,
	label.BorderRightMiddle,
}

const SLOT_PADDING = 10

// Identify returns the attachments of the boundary nodes hosted by flow nodes
// of fg. Chain nodes, reachable from a boundary but not from the main flow,
// are removed from fg. Every edge leaving a boundary or chain node is
// classified exception-chain.
func Identify(g *rfgraph.Graph, fg *rfextract.FlowGraph) []*rfgraph.Attachment {
	var atts []*rfgraph.Attachment
	for _, host := range fg.Nodes {
		for _, b := range g.Attached(host) {
			atts = append(atts, &rfgraph.Attachment{Boundary: b, Host: host})
		}
	}
	if len(atts) == 0 {
		return nil
	}

	fromBoundaries := make(map[string]struct{})
	for _, att := range atts {
		for id := range reach(g, fg, att.Boundary) {
			fromBoundaries[id] = struct{}{}
		}
	}

	var roots []string
	for _, id := range fg.Nodes {
		_, viaBoundary := fromBoundaries[id]
		if len(fg.Incoming(id)) == 0 && !viaBoundary {
			roots = append(roots, id)
		}
	}
	for _, att := range atts {
		roots = append(roots, att.Host)
	}
	main := make(map[string]struct{})
	for _, r := range roots {
		for id := range reach(g, fg, r) {
			main[id] = struct{}{}
		}
	}

	claimed := make(map[string]struct{})
	var chainNodes []string
	for _, att := range atts {
		for _, id := range bfs(g, fg, att.Boundary) {
			if _, ok := main[id]; ok {
				continue
			}
			if _, ok := claimed[id]; ok {
				continue
			}
			claimed[id] = struct{}{}
			att.Chain = append(att.Chain, id)
			chainNodes = append(chainNodes, id)
		}
	}
	fg.Remove(chainNodes...)

	for _, e := range g.Edges {
		if e.Class == rfgraph.Association || e.Class == rfgraph.CrossContainer {
			continue
		}
		src := g.Node(e.Src)
		_, inChain := claimed[e.Src]
		if inChain || (src.IsBoundary() && fg.Has(src.Host)) {
			e.Class = rfgraph.ExceptionChain
		}
	}
	return atts
}

// reach is the set of flow or chain nodes reachable from id over same-container edges.
func reach(g *rfgraph.Graph, fg *rfextract.FlowGraph, id string) map[string]struct{} {
	seen := make(map[string]struct{})
	for _, n := range bfs(g, fg, id) {
		seen[n] = struct{}{}
	}
	return seen
}

// bfs walks candidate nodes, flow nodes of the scope that are not boundaries,
// starting from the successors of id. id itself is included when it is one.
func bfs(g *rfgraph.Graph, fg *rfextract.FlowGraph, id string) []string {
	var order []string
	seen := map[string]struct{}{id: {}}
	if fg.Has(id) {
		order = append(order, id)
	}
	queue := []string{id}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, e := range g.Outgoing(curr) {
			if e.Class == rfgraph.Association || e.Class == rfgraph.CrossContainer {
				continue
			}
			if _, ok := seen[e.Dst]; ok || !fg.Has(e.Dst) {
				continue
			}
			seen[e.Dst] = struct{}{}
			order = append(order, e.Dst)
			queue = append(queue, e.Dst)
		}
	}
	return order
}

// Place centers every boundary node on a border slot of its host, in
// attachment order, and lays each chain out as a single row below and right
// of its boundary. A row starts below every flow node of fg, boundary and
// earlier chain node it would otherwise overlap horizontally. Chains of the
// same host stack downward. Pinned nodes keep their geometry.
func Place(g *rfgraph.Graph, fg *rfextract.FlowGraph, atts []*rfgraph.Attachment, gap float64, pinned map[string]struct{}) {
	slot := make(map[string]int)
	for _, att := range atts {
		host, b := g.Node(att.Host), g.Node(att.Boundary)
		if host == nil || b == nil {
			continue
		}
		if !rfgraph.Pinned(pinned, b.ID) {
			pos := Slots[slot[host.ID]%len(Slots)]
			tl := pos.GetPointOnBox(host.Box, SLOT_PADDING, b.Width, b.Height)
			g.MoveWithDescendantsTo(b.ID, tl.X, tl.Y)
		}
		slot[host.ID]++
	}

	var obstacles []*geo.Box
	for _, id := range fg.Nodes {
		obstacles = append(obstacles, g.Node(id).Box)
	}
	for _, att := range atts {
		if b := g.Node(att.Boundary); b != nil {
			obstacles = append(obstacles, b.Box)
		}
	}

	rowTop := make(map[string]float64)
	for _, att := range atts {
		host, b := g.Node(att.Host), g.Node(att.Boundary)
		if host == nil || b == nil || len(att.Chain) == 0 {
			continue
		}
		left := b.Center().X + gap/2
		right := left - gap
		rowHeight := 0.
		for _, id := range att.Chain {
			n := g.Node(id)
			right += n.Width + gap
			rowHeight = math.Max(rowHeight, n.Height)
		}

		top := b.Bottom() + gap
		if prev, ok := rowTop[host.ID]; ok && prev > top {
			top = prev
		}
		for _, o := range obstacles {
			if o.TopLeft.X < right && left < o.Right() && o.Bottom()+gap > top {
				top = o.Bottom() + gap
			}
		}

		centerY := top + rowHeight/2
		for _, id := range att.Chain {
			n := g.Node(id)
			if !rfgraph.Pinned(pinned, id) {
				g.MoveWithDescendantsTo(id, left, centerY-n.Height/2)
			}
			left = n.Right() + gap
			obstacles = append(obstacles, n.Box)
		}
		rowTop[host.ID] = top + rowHeight + gap
	}
}

// Containment reports whether the center of boundary lies inside host grown by tolerance.
func Containment(host, boundary *geo.Box, tolerance float64) bool {
	return host.Expand(tolerance).Contains(boundary.Center())
}
