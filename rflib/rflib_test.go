package rflib_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/reflow/lib/geo"
	"oss.terrastruct.com/reflow/lib/log"
	"oss.terrastruct.com/reflow/rfgraph"
	"oss.terrastruct.com/reflow/rflayouts"
	"oss.terrastruct.com/reflow/rflib"
)

func scattered() *rfgraph.Diagram {
	d := &rfgraph.Diagram{}
	d.Add(rfgraph.Task("a").At(400, 0), rfgraph.Task("b").At(0, 300), rfgraph.Task("c").At(90, 90))
	d.Connect("a", "b", "c")
	return d
}

// counting records every write that reaches the wrapped accessor.
type counting struct {
	*rfgraph.Diagram
	writes int
}

func (c *counting) SetBounds(id string, b geo.Box) bool {
	c.writes++
	return c.Diagram.SetBounds(id, b)
}

func (c *counting) SetWaypoints(id string, r geo.Route) bool {
	c.writes++
	return c.Diagram.SetWaypoints(id, r)
}

func (c *counting) SetLabelBounds(id string, b geo.Box) bool {
	c.writes++
	return c.Diagram.SetLabelBounds(id, b)
}

func TestLayout(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	d := scattered()
	res, err := rflib.Layout(ctx, d, nil)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 3, res.Moved)
	assert.Equal(t, 2, res.Rerouted)

	assert.Equal(t, *geo.NewPoint(100, 100), *d.Node("a").TopLeft)
	assert.Equal(t, d.Node("a").TopLeft.Y, d.Node("c").TopLeft.Y)
	assert.Greater(t, d.Node("c").TopLeft.X, d.Node("b").TopLeft.X)
	assert.Len(t, d.Edge("a->b").Route, 2)

	res, err = rflib.Layout(ctx, d, nil)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, &rflib.Result{}, res, "a second run changes nothing")
}

func TestPreview(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	d := scattered()
	p, err := rflib.Preview(ctx, d, nil)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, *geo.NewPoint(400, 0), *d.Node("a").TopLeft, "preview leaves the diagram alone")
	assert.Empty(t, d.Edge("a->b").Route)
	assert.False(t, p.Empty())
	assert.Len(t, p.Moves, 3)
	assert.Len(t, p.Reroutes, 2)

	for _, m := range p.Moves {
		if m.ID == "a" {
			assert.Equal(t, *geo.NewPoint(400, 0), *m.Before.TopLeft)
			assert.Equal(t, *geo.NewPoint(100, 100), *m.After.TopLeft)
		}
	}

	res := p.Apply(ctx, d)
	assert.Equal(t, 3, res.Moved)
	for _, m := range p.Moves {
		assert.True(t, m.After.Equals(d.Node(m.ID).Box))
	}
}

func TestPreviewSettled(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	d := scattered()
	_, err := rflib.Layout(ctx, d, nil)
	if err != nil {
		t.Fatal(err)
	}
	p, err := rflib.Preview(ctx, d, nil)
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, p.Empty())
}

func TestInvalidOptionsWriteNothing(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	acc := &counting{Diagram: scattered()}
	opts := rflayouts.DefaultOpts()
	opts.Scope = "nowhere"
	_, err := rflib.Layout(ctx, acc, opts)
	assert.Error(t, err)
	assert.Equal(t, 0, acc.writes)
	assert.Equal(t, *geo.NewPoint(400, 0), *acc.Node("a").TopLeft)
}

func TestApplySkipsVanishedNodes(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	d := scattered()
	p, err := rflib.Preview(ctx, d, nil)
	if err != nil {
		t.Fatal(err)
	}

	d.Nodes = d.Nodes[:2]
	res := p.Apply(ctx, d)
	assert.Equal(t, 2, res.Moved)
	assert.Equal(t, 2, res.Rerouted)
}
