// Package rflayouts drives the layout stages over every container of a
// diagram, deepest first, then stacks the top-level pools and routes edges.
package rflayouts

import (
	"context"

	"cdr.dev/slog"

	"oss.terrastruct.com/util-go/xdefer"

	"oss.terrastruct.com/reflow/lib/geo"
	"oss.terrastruct.com/reflow/lib/log"
	"oss.terrastruct.com/reflow/rfgraph"
	"oss.terrastruct.com/reflow/rflayouts/rfartifact"
	"oss.terrastruct.com/reflow/rflayouts/rfboundary"
	"oss.terrastruct.com/reflow/rflayouts/rfextract"
	"oss.terrastruct.com/reflow/rflayouts/rfgateway"
	"oss.terrastruct.com/reflow/rflayouts/rfhierarchy"
	"oss.terrastruct.com/reflow/rflayouts/rflane"
	"oss.terrastruct.com/reflow/rflayouts/rforder"
	"oss.terrastruct.com/reflow/rflayouts/rfposition"
	"oss.terrastruct.com/reflow/rflayouts/rfroute"
)

// Layout repositions g in place. Options are validated before anything is
// touched, so a rejected call leaves g as it was.
func Layout(ctx context.Context, g *rfgraph.Graph, opts *Opts) (err error) {
	if opts == nil {
		opts = DefaultOpts()
	}
	defer xdefer.Errorf(&err, "failed to reflow layout")

	policy, err := opts.Validate(g)
	if err != nil {
		return err
	}
	pinned := rfgraph.PinnedSet(opts.Pinned)

	rfextract.ClassifyStructural(g)
	for _, c := range rfhierarchy.Build(g, opts.Scope) {
		layoutContainer(ctx, g, c, opts, policy, pinned)
	}
	if opts.Scope == "" {
		stackPools(ctx, g, opts, pinned)
	}

	edges, unrouted := scopedEdges(g, opts.Scope)
	if opts.Scope != "" {
		log.Warn(ctx, "scope mode leaves edges crossing the scope boundary unrouted",
			slog.F("scope", opts.Scope), slog.F("unrouted", len(unrouted)))
	}

	placed := rfartifact.Place(g, opts.Scope, pinned)
	routed := rfroute.Route(g, edges, opts.Gap)
	rfartifact.Labels(g, opts.Scope)

	log.Debug(ctx, "layout done", slog.F("artifacts", placed), slog.F("routed", routed))
	return nil
}

// layoutContainer runs extraction through lane layout for the direct content
// of one container. Nested containers have been laid out already and move
// with their content.
func layoutContainer(ctx context.Context, g *rfgraph.Graph, c *rfgraph.Container, opts *Opts, policy rfposition.HappyPathPolicy, pinned map[string]struct{}) {
	fg := rfextract.Extract(g, c.ID)
	if fg.Empty() {
		log.Debug(ctx, "container has no flow nodes", slog.F("container", c.ID))
		return
	}
	atts := rfboundary.Identify(g, fg)
	o := rforder.Sort(fg)
	ps := rfgateway.Detect(fg, o)
	log.Debug(ctx, "laying out container",
		slog.F("container", c.ID),
		slog.F("depth", c.Depth),
		slog.F("nodes", len(fg.Nodes)),
		slog.F("layers", len(o.Layers)),
		slog.F("back_edges", len(o.Back)),
		slog.F("splits", len(ps.Splits)),
		slog.F("attachments", len(atts)),
	)

	pos := rfposition.Place(g, fg, o, ps, opts.params(contentOrigin(g, c.ID, opts), policy), pinned)
	for _, id := range fg.Nodes {
		if p, ok := pos[id]; ok && !rfgraph.Pinned(pinned, id) {
			g.CenterWithDescendantsAt(id, p.X, p.Y)
		}
	}
	rfboundary.Place(g, fg, atts, opts.Gap, pinned)

	hasLanes := rflane.Layout(g, c.ID, atts, opts.Padding, pinned)
	if c.ID != "" && opts.ResizeContainers && !rfgraph.Pinned(pinned, c.ID) {
		fitToContent(g, c.ID, atts, opts.Padding, !hasLanes)
	}
	if hasLanes {
		rflane.Stretch(g, c.ID)
	}
}

// contentOrigin is where the first column of a container starts. Pools keep
// their title strip free.
func contentOrigin(g *rfgraph.Graph, id string, opts *Opts) *geo.Point {
	n := g.Node(id)
	if n == nil {
		return opts.origin()
	}
	x := n.TopLeft.X + opts.Padding
	if n.Kind == rfgraph.KindPool {
		x += rflane.LANE_HEADER
	}
	return geo.NewPoint(x, n.TopLeft.Y+opts.Padding)
}

// fitToContent sizes a container to its content plus padding on the right and
// bottom. The content origin already carries the left and top padding.
func fitToContent(g *rfgraph.Graph, id string, atts []*rfgraph.Attachment, padding float64, height bool) {
	n := g.Node(id)
	var content *geo.Box
	for _, child := range g.Children(id) {
		if c := g.Node(child); !c.Kind.IsArtifact() {
			content = content.Union(c.Box)
		}
	}
	for _, att := range atts {
		content = content.Union(g.Node(att.Boundary).Box)
	}
	if content == nil {
		return
	}
	n.Width = content.Right() + padding - n.TopLeft.X
	if height {
		n.Height = content.Bottom() + padding - n.TopLeft.Y
	}
}

// stackPools stacks the top-level pools below any top-level flow content,
// one pool gap apart, and gives them a common width.
func stackPools(ctx context.Context, g *rfgraph.Graph, opts *Opts, pinned map[string]struct{}) {
	var pools []*rfgraph.Node
	var flow *geo.Box
	for _, id := range g.Children("") {
		n := g.Node(id)
		switch {
		case n.Kind == rfgraph.KindPool:
			pools = append(pools, n)
		case rfextract.IsFlowNode(n):
			flow = flow.Union(n.Box)
		}
	}
	if len(pools) == 0 {
		return
	}

	origin := opts.origin()
	y := origin.Y
	if flow != nil {
		y = flow.Bottom() + opts.PoolGap
	}
	width := 0.
	for _, p := range pools {
		if !rfgraph.Pinned(pinned, p.ID) {
			g.MoveWithDescendantsTo(p.ID, origin.X, y)
			y = p.Bottom() + opts.PoolGap
		}
		if p.Width > width {
			width = p.Width
		}
	}
	if !opts.ResizeContainers {
		return
	}
	for _, p := range pools {
		if rfgraph.Pinned(pinned, p.ID) {
			continue
		}
		p.Width = width
		rflane.Stretch(g, p.ID)
	}
	log.Debug(ctx, "stacked pools", slog.F("pools", len(pools)), slog.F("width", width))
}

// scopedEdges splits the edges into those with both ends inside scope and
// those crossing its border.
func scopedEdges(g *rfgraph.Graph, scope string) (inside, crossing []*rfgraph.Edge) {
	if scope == "" {
		return g.Edges, nil
	}
	for _, e := range g.Edges {
		srcIn, dstIn := within(g, e.Src, scope), within(g, e.Dst, scope)
		switch {
		case srcIn && dstIn:
			inside = append(inside, e)
		case srcIn || dstIn:
			crossing = append(crossing, e)
		}
	}
	return inside, crossing
}

// within reports whether id is laid out inside scope. Boundary nodes count
// where their host does.
func within(g *rfgraph.Graph, id, scope string) bool {
	if g.IsDescendantOf(id, scope) {
		return true
	}
	n := g.Node(id)
	return n != nil && n.IsBoundary() && g.IsDescendantOf(n.Host, scope)
}
