package rfgraph

import "oss.terrastruct.com/reflow/lib/geo"

// MoveWithDescendants translates id, everything nested below it, the boundary
// nodes attached to anything nested below it, the lanes of every moved
// container and the routes of edges fully inside id.
func (g *Graph) MoveWithDescendants(id string, dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	n := g.nodes[id]
	if n == nil {
		return
	}
	moved := map[string]struct{}{id: {}}
	n.TopLeft.X += dx
	n.TopLeft.Y += dy
	descendants := g.Descendants(id)
	for _, desc := range descendants {
		moved[desc.ID] = struct{}{}
		desc.TopLeft.X += dx
		desc.TopLeft.Y += dy
	}
	// Boundary nodes declared outside their host's container.
	for _, desc := range descendants {
		for _, bid := range g.Attached(desc.ID) {
			b := g.nodes[bid]
			if _, ok := moved[bid]; ok || b == nil {
				continue
			}
			moved[bid] = struct{}{}
			b.TopLeft.X += dx
			b.TopLeft.Y += dy
		}
	}
	for _, l := range g.Lanes {
		if _, ok := moved[l.Container]; ok {
			l.TopLeft.X += dx
			l.TopLeft.Y += dy
		}
	}
	for _, e := range g.Edges {
		_, srcMoved := moved[e.Src]
		_, dstMoved := moved[e.Dst]
		if !srcMoved || !dstMoved || e.Src == id || e.Dst == id {
			continue
		}
		for _, p := range e.Route {
			p.X += dx
			p.Y += dy
		}
		if e.Label != nil {
			e.Label.TopLeft.X += dx
			e.Label.TopLeft.Y += dy
		}
	}
}

func (g *Graph) MoveWithDescendantsTo(id string, x, y float64) {
	n := g.nodes[id]
	if n == nil {
		return
	}
	g.MoveWithDescendants(id, x-n.TopLeft.X, y-n.TopLeft.Y)
}

// CenterWithDescendantsAt moves id so its center lands on (x, y).
func (g *Graph) CenterWithDescendantsAt(id string, x, y float64) {
	n := g.nodes[id]
	if n == nil {
		return
	}
	b := n.Box.Copy()
	b.CenterAt(geo.NewPoint(x, y))
	g.MoveWithDescendantsTo(id, b.TopLeft.X, b.TopLeft.Y)
}
