package rfgraph

import (
	"oss.terrastruct.com/reflow/lib/geo"
)

// Diagram is a plain in-memory Accessor. It is what the command reads from JSON
// and what callers without their own diagram model hand to the layout.
type Diagram struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Lanes []Lane `json:"lanes,omitempty"`
}

var _ Accessor = (*Diagram)(nil)

// Node returns a pointer to the stored node, nil if absent.
func (d *Diagram) Node(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

func (d *Diagram) Edge(id string) *Edge {
	for i := range d.Edges {
		if d.Edges[i].ID == id {
			return &d.Edges[i]
		}
	}
	return nil
}

func (d *Diagram) Lane(id string) *Lane {
	for i := range d.Lanes {
		if d.Lanes[i].ID == id {
			return &d.Lanes[i]
		}
	}
	return nil
}

func (d *Diagram) ListNodes() []Node {
	return d.Nodes
}

func (d *Diagram) ListEdges() []Edge {
	return d.Edges
}

func (d *Diagram) ListChildren(containerID string) []string {
	var ids []string
	for _, n := range d.Nodes {
		if n.Parent == containerID {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

func (d *Diagram) ListLanes(containerID string) []Lane {
	var lanes []Lane
	for _, l := range d.Lanes {
		if l.Container == containerID {
			lanes = append(lanes, l)
		}
	}
	return lanes
}

func (d *Diagram) SetBounds(id string, b geo.Box) bool {
	if n := d.Node(id); n != nil {
		n.Box = &b
		return true
	}
	if l := d.Lane(id); l != nil {
		l.Box = &b
		return true
	}
	return false
}

func (d *Diagram) SetWaypoints(edgeID string, route geo.Route) bool {
	e := d.Edge(edgeID)
	if e == nil {
		return false
	}
	e.Route = route
	return true
}

func (d *Diagram) SetLabelBounds(ownerID string, b geo.Box) bool {
	if n := d.Node(ownerID); n != nil {
		n.Label = &b
		return true
	}
	if e := d.Edge(ownerID); e != nil {
		e.Label = &b
		return true
	}
	return false
}

// Add appends nodes with default sizes filled in, and returns d for chaining.
func (d *Diagram) Add(nodes ...Node) *Diagram {
	for _, n := range nodes {
		if n.Box == nil {
			size := DefaultSizes[n.Kind]
			n.Box = geo.NewBox(nil, size[0], size[1])
		}
		d.Nodes = append(d.Nodes, n)
	}
	return d
}

// Connect appends a flow edge per consecutive pair of ids, named "src->dst".
func (d *Diagram) Connect(ids ...string) *Diagram {
	for i := 0; i+1 < len(ids); i++ {
		d.Edges = append(d.Edges, Flow(ids[i], ids[i+1]))
	}
	return d
}

func Task(id string) Node {
	return Node{ID: id, Kind: KindTask}
}

func Event(id string) Node {
	return Node{ID: id, Kind: KindEvent}
}

func Gateway(id string) Node {
	return Node{ID: id, Kind: KindGateway}
}

func SubProcess(id string) Node {
	return Node{ID: id, Kind: KindSubProcess, Expanded: true}
}

func Pool(id string) Node {
	return Node{ID: id, Kind: KindPool}
}

func Annotation(id string) Node {
	return Node{ID: id, Kind: KindAnnotation}
}

func Data(id string) Node {
	return Node{ID: id, Kind: KindData}
}

// Boundary is an event attached to host.
func Boundary(id, host string) Node {
	return Node{ID: id, Kind: KindEvent, Host: host}
}

func (n Node) In(parent string) Node {
	n.Parent = parent
	return n
}

func (n Node) InLane(lane string) Node {
	n.Lane = lane
	return n
}

func (n Node) At(x, y float64) Node {
	size := DefaultSizes[n.Kind]
	if n.Box != nil {
		size = [2]float64{n.Width, n.Height}
	}
	n.Box = geo.NewBox(geo.NewPoint(x, y), size[0], size[1])
	return n
}

func (n Node) Sized(w, h float64) Node {
	tl := geo.NewPoint(0, 0)
	if n.Box != nil {
		tl = n.TopLeft.Copy()
	}
	n.Box = geo.NewBox(tl, w, h)
	return n
}

func (n Node) Collapsed() Node {
	n.Expanded = false
	return n
}

func (n Node) Labeled(w, h float64) Node {
	n.Label = geo.NewBox(nil, w, h)
	return n
}

func Flow(src, dst string) Edge {
	return Edge{ID: src + "->" + dst, Src: src, Dst: dst}
}
