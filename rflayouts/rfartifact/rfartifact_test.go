package rfartifact_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/reflow/lib/geo"
	"oss.terrastruct.com/reflow/lib/log"
	"oss.terrastruct.com/reflow/rfgraph"
	"oss.terrastruct.com/reflow/rflayouts/rfartifact"
)

func TestPlace(t *testing.T) {
	t.Parallel()

	d := &rfgraph.Diagram{}
	d.Add(
		rfgraph.Task("t").At(100, 100),
		rfgraph.Task("u").At(400, 100),
		rfgraph.Annotation("n1").At(0, 0),
		rfgraph.Annotation("n2").At(0, 0),
		rfgraph.Data("d1").At(0, 0),
		rfgraph.Annotation("shared").At(5, 5),
		rfgraph.Annotation("loose").At(6, 6),
	)
	d.Connect("n1", "t")
	d.Connect("t", "n2")
	d.Connect("t", "d1")
	d.Connect("shared", "t")
	d.Connect("shared", "u")

	g := rfgraph.Load(log.WithTB(context.Background(), t, nil), d)
	assert.Equal(t, "t", rfartifact.Host(g, "n1").ID)
	assert.Nil(t, rfartifact.Host(g, "shared"))
	assert.Nil(t, rfartifact.Host(g, "loose"))

	assert.Equal(t, 3, rfartifact.Place(g, "", nil))
	assert.Equal(t, geo.NewPoint(220, 50), g.Node("n1").TopLeft)
	assert.Equal(t, geo.NewPoint(220, 10), g.Node("n2").TopLeft)
	assert.Equal(t, geo.NewPoint(220, 200), g.Node("d1").TopLeft)
	assert.Equal(t, geo.NewPoint(5, 5), g.Node("shared").TopLeft)
	assert.Equal(t, geo.NewPoint(6, 6), g.Node("loose").TopLeft)
}

func TestLabels(t *testing.T) {
	t.Parallel()

	d := &rfgraph.Diagram{}
	d.Add(rfgraph.Task("a").At(0, 0).Labeled(40, 10), rfgraph.Task("b").At(300, 0))
	d.Connect("a", "b")
	d.Edges[0].Label = geo.NewBox(nil, 20, 10)

	g := rfgraph.Load(log.WithTB(context.Background(), t, nil), d)
	g.Edge("a->b").Route = geo.Route{geo.NewPoint(100, 40), geo.NewPoint(200, 40), geo.NewPoint(200, 140), geo.NewPoint(300, 140)}
	rfartifact.Labels(g, "")

	assert.Equal(t, geo.NewPoint(30, 85), g.Node("a").Label.TopLeft)
	assert.Equal(t, geo.NewPoint(190, 85), g.Edge("a->b").Label.TopLeft)
}
