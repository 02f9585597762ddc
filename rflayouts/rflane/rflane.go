// Package rflane stacks the declared lanes of a container into horizontal
// bands and moves every node into the band of its lane. Membership is input:
// it is read, never written.
package rflane

import (
	"math"

	"oss.terrastruct.com/reflow/lib/geo"
	"oss.terrastruct.com/reflow/rfgraph"
)

// LANE_HEADER is the width of the pool title strip left of its lanes.
const LANE_HEADER = 30

func header(n *rfgraph.Node) float64 {
	if n.Kind == rfgraph.KindPool {
		return LANE_HEADER
	}
	return 0
}

// Assign maps every node laid out in containerID to the index of its band.
// Lane member lists win over a node's own lane id. Boundary nodes and
// undeclared exception chains follow their host; anything else undeclared
// falls into the first band.
func Assign(g *rfgraph.Graph, containerID string, atts []*rfgraph.Attachment) map[string]int {
	lanes := g.LanesOf(containerID)
	if len(lanes) == 0 {
		return nil
	}
	declared := make(map[string]int)
	for i := len(lanes) - 1; i >= 0; i-- {
		for _, id := range lanes[i].Members {
			declared[id] = i
		}
	}
	for i, l := range lanes {
		for _, n := range g.Nodes {
			if n.Lane == l.ID {
				if _, ok := declared[n.ID]; !ok {
					declared[n.ID] = i
				}
			}
		}
	}

	band := make(map[string]int)
	for _, id := range g.Children(containerID) {
		n := g.Node(id)
		if n.Kind.IsArtifact() {
			continue
		}
		if i, ok := declared[id]; ok {
			band[id] = i
		}
	}
	for _, att := range atts {
		hostBand, ok := band[att.Host]
		if !ok {
			hostBand = 0
			if i, ok := declared[att.Host]; ok {
				hostBand = i
			}
			band[att.Host] = hostBand
		}
		if i, ok := declared[att.Boundary]; ok {
			band[att.Boundary] = i
		} else {
			band[att.Boundary] = hostBand
		}
		for _, id := range att.Chain {
			if _, ok := declared[id]; !ok {
				band[id] = hostBand
			}
		}
	}
	for _, id := range g.Children(containerID) {
		if _, ok := band[id]; !ok && !g.Node(id).Kind.IsArtifact() {
			band[id] = 0
		}
	}
	return band
}

// Layout stacks the lanes of containerID in index order from the container's
// top, shifts each band's nodes vertically so they are centered in it, and
// sets the container height to the sum of the bands. A lane only grows: its
// height is at least its members' extent plus padding on both sides. Pinned
// nodes neither move nor count toward an extent. It reports whether the
// container has lanes.
func Layout(g *rfgraph.Graph, containerID string, atts []*rfgraph.Attachment, padding float64, pinned map[string]struct{}) bool {
	container := g.Node(containerID)
	lanes := g.LanesOf(containerID)
	if container == nil || len(lanes) == 0 {
		return false
	}
	band := Assign(g, containerID, atts)
	members := make([][]string, len(lanes))
	for _, n := range g.Nodes {
		if i, ok := band[n.ID]; ok && !rfgraph.Pinned(pinned, n.ID) {
			members[i] = append(members[i], n.ID)
		}
	}

	top := container.TopLeft.Y
	for i, l := range lanes {
		var extent *geo.Box
		for _, id := range members[i] {
			extent = extent.Union(g.Node(id).Box)
		}
		height := math.Max(l.Height, 2*padding)
		if extent != nil {
			height = math.Max(height, extent.Height+2*padding)
			dy := top + height/2 - extent.Center().Y
			for _, id := range members[i] {
				g.MoveWithDescendants(id, 0, dy)
			}
		}
		l.Box = geo.NewBox(geo.NewPoint(container.TopLeft.X+header(container), top), container.Width-header(container), height)
		top += height
	}
	container.Height = top - container.TopLeft.Y
	return true
}

// Stretch matches the lanes of containerID to the container's current width.
func Stretch(g *rfgraph.Graph, containerID string) {
	container := g.Node(containerID)
	if container == nil {
		return
	}
	for _, l := range g.LanesOf(containerID) {
		l.TopLeft = geo.NewPoint(container.TopLeft.X+header(container), l.TopLeft.Y)
		l.Width = container.Width - header(container)
	}
}
