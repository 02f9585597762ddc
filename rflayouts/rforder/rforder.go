// Package rforder classifies flow edges as forward or back and assigns every
// flow node a layer: its longest forward-path distance from a source.
package rforder

import (
	"oss.terrastruct.com/reflow/rfgraph"
	"oss.terrastruct.com/reflow/rflayouts/rfextract"
)

type Order struct {
	// Layer is the column index of every flow node.
	Layer map[string]int
	// Layers lists node ids per layer in declaration order.
	Layers [][]string
	// Topo is a topological order of the forward graph.
	Topo []string
	// Back holds the ids of back edges.
	Back map[string]struct{}
}

func (o *Order) IsBack(e *rfgraph.Edge) bool {
	_, ok := o.Back[e.ID]
	return ok
}

// Forward returns the forward edges leaving id.
func Forward(fg *rfextract.FlowGraph, id string) []*rfgraph.Edge {
	var out []*rfgraph.Edge
	for _, e := range fg.Outgoing(id) {
		if e.Class == rfgraph.Forward {
			out = append(out, e)
		}
	}
	return out
}

// ForwardIn returns the forward edges entering id.
func ForwardIn(fg *rfextract.FlowGraph, id string) []*rfgraph.Edge {
	var in []*rfgraph.Edge
	for _, e := range fg.Incoming(id) {
		if e.Class == rfgraph.Forward {
			in = append(in, e)
		}
	}
	return in
}

// Sort runs a depth-first search from the sources, then from any node left
// unvisited, in declaration order. An edge into a node still on the stack is a
// back edge. Edges are classified in place.
func Sort(fg *rfextract.FlowGraph) *Order {
	o := &Order{
		Layer: make(map[string]int, len(fg.Nodes)),
		Back:  make(map[string]struct{}),
	}
	if fg.Empty() {
		return o
	}

	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(fg.Nodes))

	type frame struct {
		id   string
		next int
	}
	dfs := func(root string) {
		color[root] = gray
		stack := []frame{{id: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			out := fg.Outgoing(top.id)
			if top.next == len(out) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			e := out[top.next]
			top.next++
			switch color[e.Dst] {
			case white:
				e.Class = rfgraph.Forward
				color[e.Dst] = gray
				stack = append(stack, frame{id: e.Dst})
			case gray:
				e.Class = rfgraph.Back
				o.Back[e.ID] = struct{}{}
			default:
				e.Class = rfgraph.Forward
			}
		}
	}

	for _, id := range sources(fg) {
		if color[id] == white {
			dfs(id)
		}
	}
	for _, id := range fg.Nodes {
		if color[id] == white {
			dfs(id)
		}
	}

	o.assignLayers(fg)
	return o
}

// sources are the nodes without incoming edges other than self loops.
func sources(fg *rfextract.FlowGraph) []string {
	var out []string
	for _, id := range fg.Nodes {
		isSource := true
		for _, e := range fg.Incoming(id) {
			if e.Src != id {
				isSource = false
				break
			}
		}
		if isSource {
			out = append(out, id)
		}
	}
	return out
}

// assignLayers is Kahn's algorithm over forward edges. Each node sits one
// layer right of its rightmost forward predecessor.
func (o *Order) assignLayers(fg *rfextract.FlowGraph) {
	inDegree := make(map[string]int, len(fg.Nodes))
	queue := make([]string, 0, len(fg.Nodes))
	for _, id := range fg.Nodes {
		inDegree[id] = len(ForwardIn(fg, id))
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
		o.Layer[id] = 0
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		o.Topo = append(o.Topo, curr)

		for _, e := range Forward(fg, curr) {
			if layer := o.Layer[curr] + 1; layer > o.Layer[e.Dst] {
				o.Layer[e.Dst] = layer
			}
			inDegree[e.Dst]--
			if inDegree[e.Dst] == 0 {
				queue = append(queue, e.Dst)
			}
		}
	}

	depth := 0
	for _, l := range o.Layer {
		if l+1 > depth {
			depth = l + 1
		}
	}
	o.Layers = make([][]string, depth)
	for _, id := range fg.Nodes {
		l := o.Layer[id]
		o.Layers[l] = append(o.Layers[l], id)
	}
}
