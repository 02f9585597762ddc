package rfgraph

import (
	"encoding/json"
	"fmt"

	"oss.terrastruct.com/reflow/lib/geo"
)

// ParseDiagram decodes the JSON interchange form of a diagram.
func ParseDiagram(b []byte) (*Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("failed to parse diagram: %w", err)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Diagram) Serialize() ([]byte, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func (d *Diagram) validate() error {
	seen := make(map[string]struct{}, len(d.Nodes)+len(d.Lanes))
	for i := range d.Nodes {
		n := &d.Nodes[i]
		if n.ID == "" {
			return fmt.Errorf("node %d has no id", i)
		}
		if _, ok := seen[n.ID]; ok {
			return fmt.Errorf("duplicate id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
		if _, ok := DefaultSizes[n.Kind]; !ok {
			return fmt.Errorf("node %q has unknown kind %q", n.ID, n.Kind)
		}
		if n.Box == nil {
			size := DefaultSizes[n.Kind]
			n.Box = geo.NewBox(nil, size[0], size[1])
		} else if n.TopLeft == nil {
			n.Box = geo.NewBox(nil, n.Width, n.Height)
		}
	}
	for i := range d.Lanes {
		l := &d.Lanes[i]
		if l.ID == "" {
			return fmt.Errorf("lane %d has no id", i)
		}
		if _, ok := seen[l.ID]; ok {
			return fmt.Errorf("duplicate id %q", l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	edges := make(map[string]struct{}, len(d.Edges))
	for i, e := range d.Edges {
		if e.ID == "" {
			return fmt.Errorf("edge %d has no id", i)
		}
		if _, ok := edges[e.ID]; ok {
			return fmt.Errorf("duplicate edge id %q", e.ID)
		}
		edges[e.ID] = struct{}{}
	}
	return nil
}
