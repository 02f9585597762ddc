package rfposition

import (
	"fmt"

	"oss.terrastruct.com/reflow/rflayouts/rfextract"
	"oss.terrastruct.com/reflow/rflayouts/rforder"
)

// HappyPathPolicy picks one forward path to keep on a single horizontal line.
// Branches leaving that path are spread to one side and then the other.
type HappyPathPolicy interface {
	Name() string
	// Path returns node ids in flow order.
	Path(fg *rfextract.FlowGraph, o *rforder.Order) []string
}

// FirstFlowPolicy starts at the first declared source and always follows the
// first declared forward edge.
type FirstFlowPolicy struct{}

func (FirstFlowPolicy) Name() string {
	return "first"
}

func (FirstFlowPolicy) Path(fg *rfextract.FlowGraph, o *rforder.Order) []string {
	var curr string
	for _, id := range fg.Nodes {
		if len(rforder.ForwardIn(fg, id)) == 0 {
			curr = id
			break
		}
	}
	var path []string
	for curr != "" {
		path = append(path, curr)
		next := ""
		if out := rforder.Forward(fg, curr); len(out) > 0 {
			next = out[0].Dst
		}
		curr = next
	}
	return path
}

// LongestPathPolicy keeps the longest forward path straight. It ends at the
// first declared node of the last layer and walks back through the first
// declared predecessor one layer to the left.
type LongestPathPolicy struct{}

func (LongestPathPolicy) Name() string {
	return "longest"
}

func (LongestPathPolicy) Path(fg *rfextract.FlowGraph, o *rforder.Order) []string {
	if len(o.Layers) == 0 {
		return nil
	}
	last := o.Layers[len(o.Layers)-1]
	if len(last) == 0 {
		return nil
	}
	path := []string{last[0]}
	for curr := last[0]; o.Layer[curr] > 0; {
		prev := ""
		for _, e := range rforder.ForwardIn(fg, curr) {
			if o.Layer[e.Src] == o.Layer[curr]-1 {
				prev = e.Src
				break
			}
		}
		if prev == "" {
			break
		}
		path = append(path, prev)
		curr = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PolicyByName resolves a configured policy. The empty name means no policy:
// branches are spread symmetrically around their split.
func PolicyByName(name string) (HappyPathPolicy, error) {
	switch name {
	case "":
		return nil, nil
	case FirstFlowPolicy{}.Name():
		return FirstFlowPolicy{}, nil
	case LongestPathPolicy{}.Name():
		return LongestPathPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown happy path policy %q", name)
	}
}
