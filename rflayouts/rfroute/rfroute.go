// Package rfroute computes orthogonal waypoints for edges whose endpoints
// have reached their final geometry. Routes depend on geometry alone, so
// routing unchanged endpoints twice yields the same waypoints.
package rfroute

import (
	"math"

	"oss.terrastruct.com/reflow/lib/geo"
	"oss.terrastruct.com/reflow/rfgraph"
)

// Order is the class order edges are routed in.
var Order = []rfgraph.EdgeClass{
	rfgraph.Forward,
	rfgraph.Back,
	rfgraph.ExceptionChain,
	rfgraph.CrossContainer,
	rfgraph.Association,
}

// Route sets the route of every given edge, grouped by class in Order, and
// returns how many were routed. Unclassified edges are left alone.
func Route(g *rfgraph.Graph, edges []*rfgraph.Edge, gap float64) int {
	r := &router{g: g, gap: gap, backs: make(map[string]int)}
	routed := 0
	for _, class := range Order {
		for _, e := range edges {
			if e.Class != class {
				continue
			}
			src, dst := g.Endpoints(e)
			if src == nil || dst == nil {
				continue
			}
			var route geo.Route
			switch class {
			case rfgraph.Forward:
				route = r.forward(src, dst)
			case rfgraph.Back:
				route = r.back(src, dst)
			case rfgraph.ExceptionChain:
				route = r.exception(src, dst)
			case rfgraph.CrossContainer:
				route = r.crossContainer(src, dst)
			case rfgraph.Association:
				route = association(src.Box, dst.Box)
			}
			e.Route = route.Simplify()
			routed++
		}
	}
	return routed
}

type router struct {
	g   *rfgraph.Graph
	gap float64
	// backs counts back edges already routed per container.
	backs map[string]int
}

func (r *router) isSplitGateway(n *rfgraph.Node) bool {
	return n.Kind == rfgraph.KindGateway && countClass(r.g.Outgoing(n.ID), rfgraph.Forward) >= 2
}

func (r *router) isJoinGateway(n *rfgraph.Node) bool {
	return n.Kind == rfgraph.KindGateway && countClass(r.g.Incoming(n.ID), rfgraph.Forward) >= 2
}

func countClass(edges []*rfgraph.Edge, class rfgraph.EdgeClass) int {
	n := 0
	for _, e := range edges {
		if e.Class == class {
			n++
		}
	}
	return n
}

// forward leaves the right side of src and enters the left side of dst. Split
// gateways fan out from their top or bottom, join gateways collect on theirs.
// Nodes that share a column are connected vertically.
func (r *router) forward(src, dst *rfgraph.Node) geo.Route {
	a, b := src.Box, dst.Box
	ca, cb := a.Center(), b.Center()
	if b.TopLeft.X < a.Right() {
		return vertical(a, b)
	}
	if ca.Y == cb.Y {
		return geo.Route{geo.NewPoint(a.Right(), ca.Y), geo.NewPoint(b.TopLeft.X, cb.Y)}
	}
	if r.isSplitGateway(src) {
		return geo.Route{
			geo.NewPoint(ca.X, verticalExit(a, cb.Y)),
			geo.NewPoint(ca.X, cb.Y),
			geo.NewPoint(b.TopLeft.X, cb.Y),
		}
	}
	if r.isJoinGateway(dst) {
		return geo.Route{
			geo.NewPoint(a.Right(), ca.Y),
			geo.NewPoint(cb.X, ca.Y),
			geo.NewPoint(cb.X, verticalExit(b, ca.Y)),
		}
	}
	return horizontal(a, b)
}

// back detours below every node of the container spanned between the two
// endpoints. Each further back edge of the same container runs a quarter gap lower.
func (r *router) back(src, dst *rfgraph.Node) geo.Route {
	a, b := src.Box, dst.Box
	ca, cb := a.Center(), b.Center()
	parent := src.Parent
	k := r.backs[parent]
	r.backs[parent]++

	left := math.Min(a.TopLeft.X, b.TopLeft.X)
	right := math.Max(a.Right(), b.Right())
	bottom := math.Max(a.Bottom(), b.Bottom())
	for _, id := range r.g.Children(parent) {
		n := r.g.Node(id)
		if n.Kind.IsArtifact() || n.Kind == rfgraph.KindPool {
			continue
		}
		if n.TopLeft.X < right && n.Right() > left {
			bottom = math.Max(bottom, n.Bottom())
		}
	}
	y := bottom + r.gap/2 + float64(k)*r.gap/4

	if src.ID == dst.ID {
		return geo.Route{
			geo.NewPoint(ca.X+a.Width/4, a.Bottom()),
			geo.NewPoint(ca.X+a.Width/4, y),
			geo.NewPoint(ca.X-a.Width/4, y),
			geo.NewPoint(ca.X-a.Width/4, a.Bottom()),
		}
	}
	return geo.Route{
		geo.NewPoint(ca.X, a.Bottom()),
		geo.NewPoint(ca.X, y),
		geo.NewPoint(cb.X, y),
		geo.NewPoint(cb.X, b.Bottom()),
	}
}

// exception drops out of the bottom of a boundary node and turns right into
// the target. Edges between chain nodes route like forward edges.
func (r *router) exception(src, dst *rfgraph.Node) geo.Route {
	a, b := src.Box, dst.Box
	ca, cb := a.Center(), b.Center()
	if src.IsBoundary() && b.TopLeft.X > ca.X && cb.Y > a.Bottom() {
		return geo.Route{
			geo.NewPoint(ca.X, a.Bottom()),
			geo.NewPoint(ca.X, cb.Y),
			geo.NewPoint(b.TopLeft.X, cb.Y),
		}
	}
	if b.TopLeft.X < a.Right() {
		return vertical(a, b)
	}
	if ca.Y == cb.Y {
		return geo.Route{geo.NewPoint(a.Right(), ca.Y), geo.NewPoint(b.TopLeft.X, cb.Y)}
	}
	return horizontal(a, b)
}

// crossContainer connects stacked containers vertically when they do not
// overlap in height.
func (r *router) crossContainer(src, dst *rfgraph.Node) geo.Route {
	a, b := src.Box, dst.Box
	if b.TopLeft.Y >= a.Bottom() || a.TopLeft.Y >= b.Bottom() {
		return vertical(a, b)
	}
	if b.TopLeft.X >= a.Right() {
		return horizontal(a, b)
	}
	if a.TopLeft.X >= b.Right() {
		return reverse(horizontal(b, a))
	}
	return vertical(a, b)
}

// association is a straight segment between the centers, clipped to the borders.
func association(a, b *geo.Box) geo.Route {
	seg := geo.NewSegment(a.Center(), b.Center()).Clip(a, b)
	return geo.Route{seg.Start.Copy(), seg.End.Copy()}
}

// horizontal is a Z from the right side of a to the left side of b through
// the middle of the space between them.
func horizontal(a, b *geo.Box) geo.Route {
	ca, cb := a.Center(), b.Center()
	midX := (a.Right() + b.TopLeft.X) / 2
	return geo.Route{
		geo.NewPoint(a.Right(), ca.Y),
		geo.NewPoint(midX, ca.Y),
		geo.NewPoint(midX, cb.Y),
		geo.NewPoint(b.TopLeft.X, cb.Y),
	}
}

// vertical is a Z from the bottom of a to the top of b, or top to bottom when b is above.
func vertical(a, b *geo.Box) geo.Route {
	ca, cb := a.Center(), b.Center()
	startY, endY := a.Bottom(), b.TopLeft.Y
	if cb.Y < ca.Y {
		startY, endY = a.TopLeft.Y, b.Bottom()
	}
	midY := (startY + endY) / 2
	return geo.Route{
		geo.NewPoint(ca.X, startY),
		geo.NewPoint(ca.X, midY),
		geo.NewPoint(cb.X, midY),
		geo.NewPoint(cb.X, endY),
	}
}

// verticalExit is the top or bottom border of b facing y.
func verticalExit(b *geo.Box, y float64) float64 {
	if y < b.Center().Y {
		return b.TopLeft.Y
	}
	return b.Bottom()
}

func reverse(route geo.Route) geo.Route {
	out := make(geo.Route, len(route))
	for i, p := range route {
		out[len(route)-1-i] = p
	}
	return out
}
