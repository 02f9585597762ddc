// Package rfgraph holds the id-keyed snapshot of a process-flow diagram that the
// layout stages read and move. Nodes, edges and lanes live in declaration-ordered
// slices with id indexes; relations (parent, host, lane, endpoints) are ids.
package rfgraph

import (
	"sort"

	"oss.terrastruct.com/reflow/lib/geo"
)

type Kind string

const (
	KindTask       Kind = "task"
	KindEvent      Kind = "event"
	KindGateway    Kind = "gateway"
	KindSubProcess Kind = "subprocess"
	KindPool       Kind = "pool"
	KindAnnotation Kind = "annotation"
	KindData       Kind = "data"
)

// DefaultSizes are the width and height given to nodes built without explicit geometry.
var DefaultSizes = map[Kind][2]float64{
	KindTask:       {100, 80},
	KindEvent:      {36, 36},
	KindGateway:    {50, 50},
	KindSubProcess: {350, 200},
	KindPool:       {600, 250},
	KindAnnotation: {100, 30},
	KindData:       {36, 50},
}

func (k Kind) IsContainer() bool {
	return k == KindPool || k == KindSubProcess
}

func (k Kind) IsArtifact() bool {
	return k == KindAnnotation || k == KindData
}

type Node struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	*geo.Box `json:"box"`

	// Parent is the id of the containing pool or sub-process, empty at the top level.
	Parent string `json:"parent,omitempty"`
	Lane   string `json:"lane,omitempty"`
	// Host is set on boundary nodes to the node they are attached to.
	Host     string `json:"host,omitempty"`
	Expanded bool   `json:"expanded,omitempty"`

	Label *geo.Box `json:"label,omitempty"`
}

func (n *Node) IsBoundary() bool {
	return n.Host != ""
}

// IsExpandedContainer reports whether n lays out its own children.
func (n *Node) IsExpandedContainer() bool {
	return n.Kind == KindPool || (n.Kind == KindSubProcess && n.Expanded)
}

type EdgeClass int8

const (
	Unclassified EdgeClass = iota
	Forward
	Back
	ExceptionChain
	Association
	CrossContainer
)

func (c EdgeClass) String() string {
	switch c {
	case Forward:
		return "forward"
	case Back:
		return "back"
	case ExceptionChain:
		return "exception-chain"
	case Association:
		return "association"
	case CrossContainer:
		return "cross-container"
	default:
		return "unclassified"
	}
}

type Edge struct {
	ID  string `json:"id"`
	Src string `json:"src"`
	Dst string `json:"dst"`

	Class EdgeClass `json:"-"`
	Route geo.Route `json:"route,omitempty"`

	Label *geo.Box `json:"label,omitempty"`
}

type Lane struct {
	ID        string `json:"id"`
	Container string `json:"container"`
	Index     int    `json:"index"`
	// Members is declared input; layout never changes it.
	Members []string `json:"members"`

	*geo.Box `json:"box"`
}

type Container struct {
	ID       string
	Kind     Kind
	Children []string
	Expanded bool
	Depth    int
}

// Attachment ties a boundary node to its host and the nodes reachable only through it.
type Attachment struct {
	Boundary string
	Host     string
	Chain    []string
}

type Graph struct {
	Nodes []*Node
	Edges []*Edge
	Lanes []*Lane

	nodes    map[string]*Node
	edges    map[string]*Edge
	lanes    map[string]*Lane
	children map[string][]string
	out      map[string][]*Edge
	in       map[string][]*Edge
	attached map[string][]string
}

func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		edges:    make(map[string]*Edge),
		lanes:    make(map[string]*Lane),
		children: make(map[string][]string),
		out:      make(map[string][]*Edge),
		in:       make(map[string][]*Edge),
		attached: make(map[string][]string),
	}
}

// AddNode appends n. A node whose id is already present is ignored.
func (g *Graph) AddNode(n *Node) *Node {
	if _, ok := g.nodes[n.ID]; ok {
		return nil
	}
	if n.Box == nil {
		size := DefaultSizes[n.Kind]
		n.Box = geo.NewBox(nil, size[0], size[1])
	}
	g.Nodes = append(g.Nodes, n)
	g.nodes[n.ID] = n
	g.children[n.Parent] = append(g.children[n.Parent], n.ID)
	if n.Host != "" {
		g.attached[n.Host] = append(g.attached[n.Host], n.ID)
	}
	return n
}

// AddEdge appends e. Edges with a missing endpoint or a duplicate id are dropped and nil is returned.
func (g *Graph) AddEdge(e *Edge) *Edge {
	if _, ok := g.edges[e.ID]; ok {
		return nil
	}
	if g.nodes[e.Src] == nil || g.nodes[e.Dst] == nil {
		return nil
	}
	g.Edges = append(g.Edges, e)
	g.edges[e.ID] = e
	g.out[e.Src] = append(g.out[e.Src], e)
	g.in[e.Dst] = append(g.in[e.Dst], e)
	return e
}

func (g *Graph) AddLane(l *Lane) *Lane {
	if _, ok := g.lanes[l.ID]; ok {
		return nil
	}
	if l.Box == nil {
		l.Box = geo.NewBox(nil, 0, 0)
	}
	g.Lanes = append(g.Lanes, l)
	g.lanes[l.ID] = l
	return l
}

func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

func (g *Graph) Edge(id string) *Edge {
	return g.edges[id]
}

func (g *Graph) Lane(id string) *Lane {
	return g.lanes[id]
}

// Children returns the ids of the direct children of containerID in declaration order.
// The empty id is the top level.
func (g *Graph) Children(containerID string) []string {
	return g.children[containerID]
}

func (g *Graph) Outgoing(id string) []*Edge {
	return g.out[id]
}

func (g *Graph) Incoming(id string) []*Edge {
	return g.in[id]
}

// Attached returns the boundary nodes whose host is hostID, in declaration order.
func (g *Graph) Attached(hostID string) []string {
	return g.attached[hostID]
}

// LanesOf returns the lanes of a container ordered by band index, then declaration.
func (g *Graph) LanesOf(containerID string) []*Lane {
	var out []*Lane
	for _, l := range g.Lanes {
		if l.Container == containerID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Index < out[j].Index
	})
	return out
}

// Depth is the number of containers above id. Top level nodes have depth 0.
func (g *Graph) Depth(id string) int {
	depth := 0
	seen := map[string]struct{}{id: {}}
	for n := g.nodes[id]; n != nil && n.Parent != ""; n = g.nodes[n.Parent] {
		if _, ok := seen[n.Parent]; ok {
			break
		}
		seen[n.Parent] = struct{}{}
		depth++
	}
	return depth
}

// IsDescendantOf reports whether ancestor contains id at any depth.
func (g *Graph) IsDescendantOf(id, ancestor string) bool {
	if ancestor == "" {
		return g.nodes[id] != nil
	}
	seen := map[string]struct{}{}
	for n := g.nodes[id]; n != nil && n.Parent != ""; n = g.nodes[n.Parent] {
		if n.Parent == ancestor {
			return true
		}
		if _, ok := seen[n.Parent]; ok {
			return false
		}
		seen[n.Parent] = struct{}{}
	}
	return false
}

// Descendants returns every node below id, breadth first.
func (g *Graph) Descendants(id string) []*Node {
	var out []*Node
	queue := append([]string(nil), g.children[id]...)
	seen := map[string]struct{}{id: {}}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		if _, ok := seen[curr]; ok {
			continue
		}
		seen[curr] = struct{}{}
		out = append(out, g.nodes[curr])
		queue = append(queue, g.children[curr]...)
	}
	return out
}

// Container returns the container view of an expanded pool or sub-process.
func (g *Graph) Container(id string) *Container {
	n := g.nodes[id]
	if n == nil || !n.Kind.IsContainer() {
		return nil
	}
	return &Container{
		ID:       n.ID,
		Kind:     n.Kind,
		Children: append([]string(nil), g.children[id]...),
		Expanded: n.IsExpandedContainer(),
		Depth:    g.Depth(id),
	}
}

// Endpoints returns the source and target of e. Either may be nil.
func (g *Graph) Endpoints(e *Edge) (*Node, *Node) {
	return g.nodes[e.Src], g.nodes[e.Dst]
}

// ContentBox is the bounding box of the direct children of containerID, nil when it has none.
func (g *Graph) ContentBox(containerID string) *geo.Box {
	var bbox *geo.Box
	for _, id := range g.children[containerID] {
		bbox = bbox.Union(g.nodes[id].Box)
	}
	return bbox
}

// Pinned reports whether id is in the pinned set.
func Pinned(pinned map[string]struct{}, id string) bool {
	_, ok := pinned[id]
	return ok
}

// PinnedSet builds a lookup set from ids.
func PinnedSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
