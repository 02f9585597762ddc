package rflayouts_test

import (
	"context"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/reflow/lib/geo"
	"oss.terrastruct.com/reflow/lib/log"
	"oss.terrastruct.com/reflow/rfgraph"
	"oss.terrastruct.com/reflow/rflayouts"
	"oss.terrastruct.com/reflow/rflayouts/rfboundary"
)

func layout(t *testing.T, d *rfgraph.Diagram, opts *rflayouts.Opts) *rfgraph.Graph {
	ctx := log.WithTB(context.Background(), t, nil)
	g := rfgraph.Load(ctx, d)
	if err := rflayouts.Layout(ctx, g, opts); err != nil {
		t.Fatal(err)
	}
	return g
}

// order process: two pools, lanes, a gateway pair, a loop, a boundary event
// with an exception chain, a nested sub-process and an annotation.
func orderProcess() *rfgraph.Diagram {
	d := &rfgraph.Diagram{}
	d.Add(
		rfgraph.Pool("shop"),
		rfgraph.Event("start").In("shop").InLane("sales"),
		rfgraph.Task("check").In("shop").InLane("sales"),
		rfgraph.Gateway("split").In("shop").InLane("sales"),
		rfgraph.Task("pack").In("shop").InLane("warehouse"),
		rfgraph.Task("bill").In("shop").InLane("sales"),
		rfgraph.Gateway("join").In("shop").InLane("sales"),
		rfgraph.SubProcess("ship").In("shop").InLane("warehouse"),
		rfgraph.Task("label").In("ship"),
		rfgraph.Task("handover").In("ship"),
		rfgraph.Event("end").In("shop").InLane("sales"),
		rfgraph.Boundary("timeout", "pack").In("shop"),
		rfgraph.Task("escalate").In("shop"),
		rfgraph.Annotation("note").In("shop"),
		rfgraph.Pool("carrier"),
		rfgraph.Task("pickup").In("carrier"),
		rfgraph.Task("deliver").In("carrier"),
	)
	d.Lanes = []rfgraph.Lane{
		{ID: "sales", Container: "shop", Index: 0},
		{ID: "warehouse", Container: "shop", Index: 1},
	}
	d.Connect("start", "check", "split", "pack", "join", "ship", "end")
	d.Connect("split", "bill", "join")
	d.Connect("join", "check")
	d.Connect("label", "handover")
	d.Connect("timeout", "escalate")
	d.Connect("note", "bill")
	d.Connect("pickup", "deliver")
	d.Connect("handover", "pickup")
	return d
}

func center(g *rfgraph.Graph, id string) *geo.Point {
	return g.Node(id).Center()
}

func TestLinearChain(t *testing.T) {
	t.Parallel()

	d := &rfgraph.Diagram{}
	d.Add(rfgraph.Task("a").At(400, 0), rfgraph.Task("b").At(0, 300), rfgraph.Task("c").At(90, 90), rfgraph.Task("d"))
	d.Connect("a", "b", "c", "d")
	g := layout(t, d, nil)

	ids := []string{"a", "b", "c", "d"}
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, center(g, ids[i]).X, center(g, ids[i-1]).X)
		assert.Equal(t, center(g, "a").Y, center(g, ids[i]).Y)
	}
	assert.Equal(t, 100., g.Node("a").TopLeft.Y)
	for _, e := range g.Edges {
		assert.Equal(t, 2, len(e.Route), e.ID)
	}
}

func TestSplitJoin(t *testing.T) {
	t.Parallel()

	d := &rfgraph.Diagram{}
	d.Add(rfgraph.Gateway("g"), rfgraph.Task("t1"), rfgraph.Task("t2"), rfgraph.Gateway("j"))
	d.Connect("g", "t1", "j")
	d.Connect("g", "t2", "j")
	opts := rflayouts.DefaultOpts()
	g := layout(t, d, opts)

	gc, t1, t2, j := center(g, "g"), center(g, "t1"), center(g, "t2"), center(g, "j")
	assert.Equal(t, t1.X, t2.X)
	assert.Equal(t, gc.Y-t1.Y, t2.Y-gc.Y)
	assert.GreaterOrEqual(t, t2.Y-t1.Y, opts.BranchSpacing)
	assert.Equal(t, (t1.Y+t2.Y)/2, gc.Y)
	assert.Equal(t, (t1.Y+t2.Y)/2, j.Y)
}

func TestLoop(t *testing.T) {
	t.Parallel()

	d := &rfgraph.Diagram{}
	d.Add(rfgraph.Event("s"), rfgraph.Task("b"), rfgraph.Gateway("j"), rfgraph.Event("e"))
	d.Connect("s", "b", "j", "e")
	withLoop := &rfgraph.Diagram{Nodes: append([]rfgraph.Node(nil), d.Nodes...), Edges: append([]rfgraph.Edge(nil), d.Edges...)}
	withLoop.Connect("j", "b")

	g := layout(t, withLoop, nil)
	plain := layout(t, d, nil)

	assert.Equal(t, rfgraph.Back, g.Edge("j->b").Class)
	for _, n := range plain.Nodes {
		assert.True(t, n.Box.Equals(g.Node(n.ID).Box), n.ID)
	}
	loop := g.Edge("j->b").Route
	assert.True(t, loop.IsOrthogonal())
	_, br := loop.GetBoundingBox()
	assert.Greater(t, br.Y, g.Node("b").Bottom())
}

func TestBoundaryEvent(t *testing.T) {
	t.Parallel()

	d := &rfgraph.Diagram{}
	d.Add(rfgraph.Task("t"), rfgraph.Task("next"), rfgraph.Boundary("timer", "t").At(900, 900), rfgraph.Task("e"))
	d.Connect("t", "next")
	d.Connect("timer", "e")
	g := layout(t, d, nil)

	host, timer, e := g.Node("t"), g.Node("timer"), g.Node("e")
	assert.True(t, rfboundary.Containment(host.Box, timer.Box, 50))
	assert.Greater(t, e.TopLeft.Y, timer.Center().Y)
	assert.Greater(t, e.Center().X, timer.Center().X)
	assert.NotEqual(t, center(g, "next").Y, e.Center().Y)
	assert.Equal(t, rfgraph.ExceptionChain, g.Edge("timer->e").Class)
}

func TestExceptionChainClearsBranches(t *testing.T) {
	t.Parallel()

	d := &rfgraph.Diagram{}
	d.Add(
		rfgraph.Event("s"),
		rfgraph.Gateway("g"),
		rfgraph.Task("t1"),
		rfgraph.Task("t2"),
		rfgraph.Gateway("j"),
		rfgraph.Event("e"),
		rfgraph.Boundary("b", "t1"),
		rfgraph.Task("x"),
	)
	d.Connect("s", "g", "t1", "j", "e")
	d.Connect("g", "t2", "j")
	d.Connect("b", "x")
	g := layout(t, d, nil)

	x := g.Node("x")
	for _, id := range []string{"s", "g", "t1", "t2", "j", "e", "b"} {
		assert.False(t, x.Overlaps(g.Node(id).Box), id)
	}
	assert.Greater(t, x.TopLeft.Y, g.Node("b").Bottom())
	assert.GreaterOrEqual(t, x.TopLeft.Y, g.Node("t2").Bottom()+50)
	assert.True(t, rfboundary.Containment(g.Node("t1").Box, g.Node("b").Box, 50))
}

func TestBoundaryDeclaredOutsideHostContainer(t *testing.T) {
	t.Parallel()

	d := &rfgraph.Diagram{}
	d.Add(
		rfgraph.Pool("p"),
		rfgraph.Task("a").In("p"),
		rfgraph.Task("h").In("p"),
		rfgraph.Boundary("b", "h"),
	)
	d.Connect("a", "h")
	opts := rflayouts.DefaultOpts()
	opts.Origin = geo.NewPoint(100, 500)
	g := layout(t, d, opts)

	h, b := g.Node("h"), g.Node("b")
	assert.GreaterOrEqual(t, g.Node("p").TopLeft.Y, 500.)
	assert.True(t, rfboundary.Containment(h.Box, b.Box, 50))
	assert.Equal(t, h.Center().X, b.Center().X)
}

func TestLanes(t *testing.T) {
	t.Parallel()

	d := &rfgraph.Diagram{}
	d.Add(
		rfgraph.Pool("p"),
		rfgraph.Task("a").In("p"),
		rfgraph.Task("b").In("p"),
		rfgraph.Task("c").In("p"),
		rfgraph.Task("x").In("p"),
		rfgraph.Task("y").In("p"),
	)
	d.Lanes = []rfgraph.Lane{
		{ID: "lane1", Container: "p", Index: 0, Members: []string{"a", "b", "c"}},
		{ID: "lane2", Container: "p", Index: 1, Members: []string{"x", "y"}},
	}
	d.Connect("a", "x", "b", "y", "c")
	before := laneMembers(d)
	g := layout(t, d, nil)

	assert.Equal(t, before, laneMembers(d))
	for _, l := range g.Lanes {
		for _, id := range l.Members {
			n := g.Node(id)
			assert.GreaterOrEqual(t, n.TopLeft.Y, l.TopLeft.Y, id)
			assert.LessOrEqual(t, n.Bottom(), l.Bottom(), id)
		}
	}
	p := g.Node("p")
	assert.Equal(t, p.Height, g.Lane("lane1").Height+g.Lane("lane2").Height)
	assert.Equal(t, p.Right(), g.Lane("lane1").Right())
}

func laneMembers(d *rfgraph.Diagram) map[string][]string {
	m := make(map[string][]string)
	for _, l := range d.Lanes {
		m[l.ID] = append(m[l.ID], l.Members...)
	}
	for _, n := range d.Nodes {
		if n.Lane != "" {
			m[n.Lane] = append(m[n.Lane], n.ID)
		}
	}
	for _, ids := range m {
		sort.Strings(ids)
	}
	return m
}

func TestFullDiagram(t *testing.T) {
	t.Parallel()

	d := orderProcess()
	parents := map[string]string{}
	for _, n := range d.Nodes {
		parents[n.ID] = n.Parent
	}
	g := layout(t, d, nil)

	for _, n := range g.Nodes {
		assert.Equal(t, parents[n.ID], n.Parent, n.ID)
	}

	shop, carrier := g.Node("shop"), g.Node("carrier")
	assert.Equal(t, 100., shop.TopLeft.Y)
	assert.Equal(t, shop.Bottom()+50, carrier.TopLeft.Y)
	assert.Equal(t, shop.Width, carrier.Width)
	assert.Equal(t, shop.TopLeft.X, carrier.TopLeft.X)

	ship := g.Node("ship")
	for _, id := range []string{"label", "handover"} {
		n := g.Node(id)
		assert.True(t, ship.Contains(n.TopLeft) && ship.Contains(geo.NewPoint(n.Right(), n.Bottom())), id)
	}
	for _, n := range g.Nodes {
		if n.Parent == "shop" && !n.Kind.IsArtifact() {
			assert.True(t, shop.Expand(0.001).Contains(n.Center()), n.ID)
		}
	}

	assert.True(t, rfboundary.Containment(g.Node("pack").Box, g.Node("timeout").Box, 50))
	assert.Equal(t, rfgraph.Back, g.Edge("join->check").Class)
	assert.Equal(t, rfgraph.CrossContainer, g.Edge("handover->pickup").Class)
	assert.Equal(t, rfgraph.Association, g.Edge("note->bill").Class)
	for _, e := range g.Edges {
		assert.NotEmpty(t, e.Route, e.ID)
		if e.Class != rfgraph.Association {
			assert.True(t, e.Route.IsOrthogonal(), e.ID)
		}
	}
	note, bill := g.Node("note"), g.Node("bill")
	assert.Greater(t, note.TopLeft.X, bill.Right())
	assert.Less(t, note.Bottom(), bill.TopLeft.Y)
}

func TestIdempotent(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	g := rfgraph.Load(ctx, orderProcess())
	assert.NoError(t, rflayouts.Layout(ctx, g, nil))
	first := g.Copy()
	assert.NoError(t, rflayouts.Layout(ctx, g, nil))

	for _, n := range g.Nodes {
		assert.True(t, n.Box.Near(first.Node(n.ID).Box, 0.01), "%s moved from %s to %s", n.ID, first.Node(n.ID).Box.ToString(), n.Box.ToString())
	}
	for _, l := range g.Lanes {
		assert.True(t, l.Box.Near(first.Lane(l.ID).Box, 0.01), l.ID)
	}
	for _, e := range g.Edges {
		assert.True(t, e.Route.Equals(first.Edge(e.ID).Route), e.ID)
	}
}

func TestScope(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	g := rfgraph.Load(ctx, orderProcess())
	before := g.Copy()

	opts := rflayouts.DefaultOpts()
	opts.Scope = "ship"
	assert.NoError(t, rflayouts.Layout(ctx, g, opts))

	for _, n := range g.Nodes {
		if n.ID == "ship" || g.IsDescendantOf(n.ID, "ship") {
			continue
		}
		assert.True(t, n.Box.Equals(before.Node(n.ID).Box), n.ID)
	}
	assert.Empty(t, g.Edge("handover->pickup").Route)
	assert.NotEmpty(t, g.Edge("label->handover").Route)
	assert.Equal(t, before.Node("ship").TopLeft, g.Node("ship").TopLeft)
	assert.Greater(t, center(g, "handover").X, center(g, "label").X)
}

func TestValidateThenExecute(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		opts   func(*rflayouts.Opts)
		expErr string
	}{
		{
			name:   "unknown_scope",
			opts:   func(o *rflayouts.Opts) { o.Scope = "nowhere" },
			expErr: `unknown scope "nowhere"`,
		},
		{
			name:   "scope_not_container",
			opts:   func(o *rflayouts.Opts) { o.Scope = "check" },
			expErr: `scope "check" is a task`,
		},
		{
			name:   "negative_gap",
			opts:   func(o *rflayouts.Opts) { o.Gap = -1 },
			expErr: `gap must not be negative`,
		},
		{
			name:   "negative_snap",
			opts:   func(o *rflayouts.Opts) { o.GridSnap = -10 },
			expErr: `grid snap must not be negative`,
		},
		{
			name:   "unknown_policy",
			opts:   func(o *rflayouts.Opts) { o.HappyPath = "scenic" },
			expErr: `unknown happy path policy "scenic"`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := log.WithTB(context.Background(), t, nil)
			g := rfgraph.Load(ctx, orderProcess())
			before := g.Copy()
			opts := rflayouts.DefaultOpts()
			tc.opts(opts)

			err := rflayouts.Layout(ctx, g, opts)
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.expErr)
			}
			for _, n := range g.Nodes {
				assert.True(t, n.Box.Equals(before.Node(n.ID).Box), n.ID)
			}
		})
	}
}

func TestPinned(t *testing.T) {
	t.Parallel()

	d := &rfgraph.Diagram{}
	d.Add(rfgraph.Task("a"), rfgraph.Task("b").At(777, 333), rfgraph.Task("c"))
	d.Connect("a", "b", "c")
	opts := rflayouts.DefaultOpts()
	opts.Pinned = []string{"b", "ghost"}
	g := layout(t, d, opts)

	assert.Equal(t, geo.NewPoint(777, 333), g.Node("b").TopLeft)
	assert.Greater(t, center(g, "c").X, center(g, "a").X)
	assert.NotEmpty(t, g.Edge("a->b").Route)
}

func TestGridSnap(t *testing.T) {
	t.Parallel()

	d := &rfgraph.Diagram{}
	d.Add(rfgraph.Gateway("g"), rfgraph.Task("t1"), rfgraph.Task("t2"), rfgraph.Task("t3"))
	d.Connect("g", "t1")
	d.Connect("g", "t2")
	d.Connect("g", "t3")
	opts := rflayouts.DefaultOpts()
	opts.GridSnap = 25
	g := layout(t, d, opts)

	for _, n := range g.Nodes {
		c := n.Center()
		assert.Equal(t, 0., math.Mod(c.Y, 25), n.ID)
	}
}
