// Package rfhierarchy orders containers for inside-out processing.
package rfhierarchy

import (
	"sort"

	"oss.terrastruct.com/reflow/rfgraph"
)

// Build returns the expanded containers below root, deepest first, followed
// by root itself. Ties keep declaration order. Containers nested in a
// collapsed sub-process are never visited. The walk uses an explicit queue so
// arbitrarily deep nesting is safe.
func Build(g *rfgraph.Graph, root string) []*rfgraph.Container {
	var found []*rfgraph.Container
	queue := append([]string(nil), g.Children(root)...)
	seen := map[string]struct{}{root: {}}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		n := g.Node(id)
		if n == nil || !n.IsExpandedContainer() {
			continue
		}
		found = append(found, g.Container(id))
		queue = append(queue, g.Children(id)...)
	}

	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n.ID] = i
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Depth != found[j].Depth {
			return found[i].Depth > found[j].Depth
		}
		return index[found[i].ID] < index[found[j].ID]
	})

	if root == "" {
		return append(found, &rfgraph.Container{Expanded: true, Depth: -1, Children: g.Children("")})
	}
	if c := g.Container(root); c != nil {
		return append(found, c)
	}
	return found
}
