package rflayouts

import (
	"fmt"

	"oss.terrastruct.com/reflow/lib/geo"
	"oss.terrastruct.com/reflow/rfgraph"
	"oss.terrastruct.com/reflow/rflayouts/rfposition"
)

type Opts struct {
	// Origin is the top left of the top-level content.
	Origin *geo.Point `json:"origin,omitempty" yaml:"origin,omitempty" toml:"origin,omitempty"`
	// Gap is the horizontal space between layers and the spacing unit of
	// exception chains and back-edge detours.
	Gap float64 `json:"gap" yaml:"gap" toml:"gap"`
	// BranchSpacing is the minimum center distance of nodes sharing a layer.
	BranchSpacing float64 `json:"branchSpacing" yaml:"branchSpacing" toml:"branch_spacing"`
	// Scope confines the pass to one pool or expanded sub-process.
	Scope  string   `json:"scope,omitempty" yaml:"scope,omitempty" toml:"scope,omitempty"`
	Pinned []string `json:"pinned,omitempty" yaml:"pinned,omitempty" toml:"pinned,omitempty"`
	// GridSnap is the grid quantum for node centers, 0 disables snapping.
	GridSnap         float64 `json:"gridSnap" yaml:"gridSnap" toml:"grid_snap"`
	ResizeContainers bool    `json:"resizeContainers" yaml:"resizeContainers" toml:"resize_containers"`
	PoolGap          float64 `json:"poolGap" yaml:"poolGap" toml:"pool_gap"`
	Padding          float64 `json:"padding" yaml:"padding" toml:"padding"`
	// HappyPath names the policy that keeps one path straight: "", "first" or "longest".
	HappyPath string `json:"happyPath,omitempty" yaml:"happyPath,omitempty" toml:"happy_path,omitempty"`
}

func DefaultOpts() *Opts {
	return &Opts{
		Origin:           geo.NewPoint(100, 100),
		Gap:              50,
		BranchSpacing:    130,
		GridSnap:         10,
		ResizeContainers: true,
		PoolGap:          50,
		Padding:          30,
	}
}

// Validate checks opts against g and resolves the happy path policy. It never
// mutates g.
func (opts *Opts) Validate(g *rfgraph.Graph) (rfposition.HappyPathPolicy, error) {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"gap", opts.Gap},
		{"branch spacing", opts.BranchSpacing},
		{"grid snap", opts.GridSnap},
		{"pool gap", opts.PoolGap},
		{"padding", opts.Padding},
	} {
		if f.v < 0 {
			return nil, fmt.Errorf("%s must not be negative, got %v", f.name, f.v)
		}
	}
	if opts.Scope != "" {
		n := g.Node(opts.Scope)
		if n == nil {
			return nil, fmt.Errorf("unknown scope %q", opts.Scope)
		}
		if !n.IsExpandedContainer() {
			return nil, fmt.Errorf("scope %q is a %s, not an expanded pool or sub-process", opts.Scope, n.Kind)
		}
	}
	return rfposition.PolicyByName(opts.HappyPath)
}

func (opts *Opts) origin() *geo.Point {
	if opts.Origin == nil {
		return geo.NewPoint(0, 0)
	}
	return opts.Origin.Copy()
}

func (opts *Opts) params(origin *geo.Point, policy rfposition.HappyPathPolicy) rfposition.Params {
	return rfposition.Params{
		Origin:  origin,
		Gap:     opts.Gap,
		Spacing: opts.BranchSpacing,
		Snap:    opts.GridSnap,
		Policy:  policy,
	}
}
