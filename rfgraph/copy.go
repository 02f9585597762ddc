package rfgraph

func (n *Node) Copy() *Node {
	return &Node{
		ID:   n.ID,
		Kind: n.Kind,

		Box: n.Box.Copy(),

		Parent:   n.Parent,
		Lane:     n.Lane,
		Host:     n.Host,
		Expanded: n.Expanded,

		Label: n.Label.Copy(),
	}
}

func (e *Edge) Copy() *Edge {
	return &Edge{
		ID:  e.ID,
		Src: e.Src,
		Dst: e.Dst,

		Class: e.Class,
		Route: e.Route.Copy(),

		Label: e.Label.Copy(),
	}
}

func (l *Lane) Copy() *Lane {
	return &Lane{
		ID:        l.ID,
		Container: l.Container,
		Index:     l.Index,
		Members:   append([]string(nil), l.Members...),

		Box: l.Box.Copy(),
	}
}

// Copy deep-copies the graph. Mutating the copy's geometry never affects g.
func (g *Graph) Copy() *Graph {
	g2 := NewGraph()
	for _, n := range g.Nodes {
		g2.AddNode(n.Copy())
	}
	g2.children = make(map[string][]string, len(g.children))
	g2.attached = make(map[string][]string, len(g.attached))
	for parent, ids := range g.children {
		g2.children[parent] = append([]string(nil), ids...)
	}
	for host, ids := range g.attached {
		g2.attached[host] = append([]string(nil), ids...)
	}
	for _, l := range g.Lanes {
		g2.AddLane(l.Copy())
	}
	for _, e := range g.Edges {
		g2.AddEdge(e.Copy())
	}
	return g2
}
