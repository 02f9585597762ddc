package rflib

import (
	"context"

	"cdr.dev/slog"
	"github.com/google/uuid"

	"oss.terrastruct.com/reflow/lib/geo"
	"oss.terrastruct.com/reflow/lib/log"
	"oss.terrastruct.com/reflow/rfgraph"
	"oss.terrastruct.com/reflow/rflayouts"
)

// Result counts what a layout wrote back to the accessor.
type Result struct {
	Moved    int `json:"moved"`
	Rerouted int `json:"rerouted"`
}

// Layout repositions the diagram behind acc and writes every changed bound and
// route back. On error nothing is written.
func Layout(ctx context.Context, acc rfgraph.Accessor, opts *rflayouts.Opts) (*Result, error) {
	p, err := Preview(ctx, acc, opts)
	if err != nil {
		return nil, err
	}
	return p.Apply(ctx, acc), nil
}

// Move is a node or lane whose bounds change.
type Move struct {
	ID     string   `json:"id"`
	Before *geo.Box `json:"before"`
	After  *geo.Box `json:"after"`
}

// Reroute is an edge whose waypoints change.
type Reroute struct {
	ID     string    `json:"id"`
	Before geo.Route `json:"before"`
	After  geo.Route `json:"after"`
}

// Plan is the outcome of a layout that has not been written back yet.
type Plan struct {
	Moves    []Move    `json:"moves"`
	Reroutes []Reroute `json:"reroutes"`

	g      *rfgraph.Graph
	before *rfgraph.Graph
}

// Preview lays out a private copy of the diagram behind acc and reports what
// would change without touching acc.
func Preview(ctx context.Context, acc rfgraph.Accessor, opts *rflayouts.Opts) (*Plan, error) {
	ctx = log.WithFields(ctx, slog.F("run", uuid.NewString()))

	g := rfgraph.Load(ctx, acc)
	before := g.Copy()
	err := rflayouts.Layout(ctx, g, opts)
	if err != nil {
		return nil, err
	}

	p := &Plan{
		g:      g,
		before: before,
	}
	for _, n := range g.Nodes {
		prev := before.Node(n.ID)
		if !prev.Box.Equals(n.Box) {
			p.Moves = append(p.Moves, Move{ID: n.ID, Before: prev.Box.Copy(), After: n.Box.Copy()})
		}
	}
	for _, l := range g.Lanes {
		prev := before.Lane(l.ID)
		if !prev.Box.Equals(l.Box) {
			p.Moves = append(p.Moves, Move{ID: l.ID, Before: prev.Box.Copy(), After: l.Box.Copy()})
		}
	}
	for _, e := range g.Edges {
		prev := before.Edge(e.ID)
		if len(e.Route) > 0 && !prev.Route.Equals(e.Route) {
			p.Reroutes = append(p.Reroutes, Reroute{ID: e.ID, Before: prev.Route.Copy(), After: e.Route.Copy()})
		}
	}
	log.Debug(ctx, "previewed layout", slog.F("moves", len(p.Moves)), slog.F("reroutes", len(p.Reroutes)))
	return p, nil
}

// Empty reports whether applying the plan would change nothing.
func (p *Plan) Empty() bool {
	return len(p.Moves) == 0 && len(p.Reroutes) == 0
}

// Apply writes the planned geometry into acc. Elements acc no longer knows are
// skipped.
func (p *Plan) Apply(ctx context.Context, acc rfgraph.Accessor) *Result {
	moved, rerouted := p.g.WriteBack(ctx, acc, p.before)
	log.Info(ctx, "applied layout", slog.F("moved", moved), slog.F("rerouted", rerouted))
	return &Result{
		Moved:    moved,
		Rerouted: rerouted,
	}
}
