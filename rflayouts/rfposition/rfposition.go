// Package rfposition assigns centers to main-flow nodes from their layer and
// branch, centers gateways on their branches and pushes colliding nodes of a
// layer apart.
package rfposition

import (
	"math"
	"sort"

	"oss.terrastruct.com/util-go/go2"

	"oss.terrastruct.com/reflow/lib/geo"
	"oss.terrastruct.com/reflow/rfgraph"
	"oss.terrastruct.com/reflow/rflayouts/rfextract"
	"oss.terrastruct.com/reflow/rflayouts/rfgateway"
	"oss.terrastruct.com/reflow/rflayouts/rforder"
)

const (
	MAX_RESOLVE_PASSES = 50
	EPSILON            = 0.001
)

type Params struct {
	Origin *geo.Point
	// Gap is the horizontal space between columns.
	Gap float64
	// Spacing is the vertical center distance between branches.
	Spacing float64
	// Snap is the grid quantum, 0 disables snapping.
	Snap   float64
	Policy HappyPathPolicy
}

// Positions maps node ids to target centers.
type Positions map[string]*geo.Point

// Place runs the full positioning pass: Compute, Center, grid snapping,
// Resolve and Normalize. The grid is anchored at the origin, so content keeps
// the same positions relative to its container wherever that container sits.
// Pinned nodes are held at their current center.
func Place(g *rfgraph.Graph, fg *rfextract.FlowGraph, o *rforder.Order, ps *rfgateway.Patterns, p Params, pinned map[string]struct{}) Positions {
	origin := p.Origin
	if origin == nil {
		origin = geo.NewPoint(0, 0)
	}
	local := p
	local.Origin = geo.NewPoint(0, 0)

	happy := happyPath(fg, o, p.Policy)
	pos := Compute(g, fg, o, ps, local)
	Center(g, fg, pos, happy)
	Snap(pos, p.Snap)
	for id := range pos {
		if rfgraph.Pinned(pinned, id) {
			c := g.Node(id).Center()
			pos[id] = geo.NewPoint(c.X-origin.X, c.Y-origin.Y)
		}
	}
	Resolve(g, o, pos, local, pinned)
	Normalize(g, pos, local.Origin, p.Snap, pinned)
	for _, c := range pos {
		c.X += origin.X
		c.Y += origin.Y
	}
	return pos
}

// Compute places column i at the origin plus the widths of columns 0..i-1 and
// i gaps, each node centered in its column. Untagged nodes sit on the origin
// line, tagged nodes are offset from their split.
func Compute(g *rfgraph.Graph, fg *rfextract.FlowGraph, o *rforder.Order, ps *rfgateway.Patterns, p Params) Positions {
	pos := make(Positions, len(fg.Nodes))
	if fg.Empty() {
		return pos
	}
	origin := p.Origin
	if origin == nil {
		origin = geo.NewPoint(0, 0)
	}

	centers := make([]float64, len(o.Layers))
	left := origin.X
	for i, layer := range o.Layers {
		width := 0.
		for _, id := range layer {
			width = math.Max(width, g.Node(id).Width)
		}
		centers[i] = left + width/2
		left += width + p.Gap
	}

	happyBranch := make(map[string]int)
	if path := happyPathList(fg, o, p.Policy); len(path) > 0 {
		for i := 0; i+1 < len(path); i++ {
			if pat, ok := ps.BySplit[path[i]]; ok {
				for j, target := range pat.Targets {
					if target == path[i+1] {
						happyBranch[path[i]] = j
					}
				}
			}
		}
	}

	for _, id := range o.Topo {
		y := origin.Y
		if tag, ok := ps.TagOf(id); ok {
			if split, ok := pos[tag.Split]; ok {
				y = split.Y
			}
			h, ok := happyBranch[tag.Split]
			off := BranchOffset(tag.Index, tag.Count, h, ok) * p.Spacing
			// Offsets are snapped by magnitude so branches stay symmetric on the grid.
			y += float64(geo.Sign(off)) * geo.Snap(math.Abs(off), p.Snap)
		}
		pos[id] = geo.NewPoint(centers[o.Layer[id]], y)
	}
	return pos
}

// BranchOffset is the offset of branch i of k in units of branch spacing.
// Without a happy branch the offsets are symmetric around 0. With one, the
// happy branch gets 0 and the rest alternate below and above.
func BranchOffset(i, k, happy int, hasHappy bool) float64 {
	if !hasHappy {
		return float64(i) - float64(k-1)/2
	}
	if i == happy {
		return 0
	}
	rank := i
	if i > happy {
		rank--
	}
	step := float64(rank/2 + 1)
	if rank%2 == 1 {
		return -step
	}
	return step
}

// Center moves every gateway that splits onto the average y of its
// successors, and every gateway that only joins onto the average y of its
// predecessors. Gateways on the happy path stay put.
func Center(g *rfgraph.Graph, fg *rfextract.FlowGraph, pos Positions, happy map[string]struct{}) {
	for _, id := range fg.Nodes {
		if g.Node(id).Kind != rfgraph.KindGateway {
			continue
		}
		if _, ok := happy[id]; ok {
			continue
		}
		var neighbors []string
		if rfgateway.IsSplit(fg, id) {
			neighbors = rfgateway.Successors(fg, id)
		} else if rfgateway.IsJoin(fg, id) {
			neighbors = rfgateway.Predecessors(fg, id)
		}
		if len(neighbors) == 0 {
			continue
		}
		sum := 0.
		for _, n := range neighbors {
			sum += pos[n].Y
		}
		pos[id].Y = sum / float64(len(neighbors))
	}
}

func Snap(pos Positions, q float64) {
	if q <= 0 {
		return
	}
	for id, p := range pos {
		pos[id] = p.Snap(q)
	}
}

// Resolve walks every layer top to bottom and pushes apart neighbors whose
// centers are closer than the required separation, symmetrically around
// their midpoint. Pinned nodes never move. Layers stay untouched. A final
// one-sided sweep guarantees the separation when the symmetric passes do not
// settle.
func Resolve(g *rfgraph.Graph, o *rforder.Order, pos Positions, p Params, pinned map[string]struct{}) {
	for _, layer := range o.Layers {
		ids := make([]string, 0, len(layer))
		for _, id := range layer {
			if _, ok := pos[id]; ok {
				ids = append(ids, id)
			}
		}
		if len(ids) < 2 {
			continue
		}
		sortByY := func() {
			sort.SliceStable(ids, func(i, j int) bool {
				return pos[ids[i]].Y < pos[ids[j]].Y
			})
		}
		for pass := 0; pass < MAX_RESOLVE_PASSES; pass++ {
			sortByY()
			changed := false
			for i := 1; i < len(ids); i++ {
				a, b := ids[i-1], ids[i]
				sep := Separation(g.Node(a), g.Node(b), p)
				if pos[b].Y-pos[a].Y >= sep-EPSILON {
					continue
				}
				aPinned, bPinned := rfgraph.Pinned(pinned, a), rfgraph.Pinned(pinned, b)
				switch {
				case aPinned && bPinned:
					continue
				case aPinned:
					pos[b].Y = geo.SnapUp(pos[a].Y+sep, p.Snap)
				case bPinned:
					pos[a].Y = geo.SnapDown(pos[b].Y-sep, p.Snap)
				default:
					mid := (pos[a].Y + pos[b].Y) / 2
					pos[a].Y = geo.SnapDown(mid-sep/2, p.Snap)
					pos[b].Y = geo.SnapUp(mid+sep/2, p.Snap)
				}
				changed = true
			}
			if !changed {
				break
			}
		}

		sortByY()
		for i := 1; i < len(ids); i++ {
			a, b := ids[i-1], ids[i]
			if rfgraph.Pinned(pinned, b) {
				continue
			}
			sep := Separation(g.Node(a), g.Node(b), p)
			if pos[b].Y-pos[a].Y < sep-EPSILON {
				pos[b].Y = geo.SnapUp(pos[a].Y+sep, p.Snap)
			}
		}
	}
}

// Separation is the minimum center distance of two nodes in one column: the
// branch spacing, or enough to keep tall nodes half a gap apart.
func Separation(a, b *rfgraph.Node, p Params) float64 {
	return go2.Max(p.Spacing, (a.Height+b.Height)/2+p.Gap/2)
}

// Normalize translates every unpinned position vertically so the topmost box
// starts at the origin line. The shift is a grid multiple.
func Normalize(g *rfgraph.Graph, pos Positions, origin *geo.Point, q float64, pinned map[string]struct{}) {
	if origin == nil || len(pos) == 0 {
		return
	}
	top := math.Inf(1)
	for id, p := range pos {
		if rfgraph.Pinned(pinned, id) {
			continue
		}
		top = math.Min(top, p.Y-g.Node(id).Height/2)
	}
	if math.IsInf(top, 1) {
		return
	}
	dy := geo.SnapUp(origin.Y-top, q)
	for id, p := range pos {
		if !rfgraph.Pinned(pinned, id) {
			p.Y += dy
		}
	}
}

func happyPathList(fg *rfextract.FlowGraph, o *rforder.Order, policy HappyPathPolicy) []string {
	if policy == nil {
		return nil
	}
	return policy.Path(fg, o)
}

func happyPath(fg *rfextract.FlowGraph, o *rforder.Order, policy HappyPathPolicy) map[string]struct{} {
	set := make(map[string]struct{})
	for _, id := range happyPathList(fg, o, policy) {
		set[id] = struct{}{}
	}
	return set
}
