package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"cdr.dev/slog"
	"github.com/spf13/pflag"

	"oss.terrastruct.com/util-go/diff"
	"oss.terrastruct.com/util-go/xjson"

	"oss.terrastruct.com/reflow/lib/log"
	"oss.terrastruct.com/reflow/lib/xmain"
	"oss.terrastruct.com/reflow/rfgraph"
	"oss.terrastruct.com/reflow/rflayouts"
	"oss.terrastruct.com/reflow/rflib"
)

func main() {
	xmain.Main(run)
}

type flags struct {
	config    *string
	scope     *string
	gap       *float64
	spacing   *float64
	grid      *float64
	poolGap   *float64
	padding   *float64
	resize    *bool
	pinned    *[]string
	happyPath *string

	preview *bool
	watch   *bool
	debug   *bool
	help    *bool
}

func registerFlags(o *xmain.Opts) (*flags, error) {
	def := rflayouts.DefaultOpts()
	f := &flags{}
	var err error

	f.config = o.String("REFLOW_CONFIG", "config", "c", "", "options file (.toml, .yaml, .yml or .json) applied over the defaults.")
	f.scope = o.String("REFLOW_SCOPE", "scope", "s", "", "only lay out the contents of this pool or expanded sub-process.")
	f.gap, err = o.Float64("REFLOW_GAP", "gap", "", def.Gap, "horizontal space between layers.")
	if err != nil {
		return nil, err
	}
	f.spacing, err = o.Float64("REFLOW_SPACING", "spacing", "", def.BranchSpacing, "minimum distance between branches of a gateway.")
	if err != nil {
		return nil, err
	}
	f.grid, err = o.Float64("REFLOW_GRID", "grid", "", def.GridSnap, "grid quantum for node centers, 0 disables snapping.")
	if err != nil {
		return nil, err
	}
	f.poolGap, err = o.Float64("REFLOW_POOL_GAP", "pool-gap", "", def.PoolGap, "vertical space between stacked pools.")
	if err != nil {
		return nil, err
	}
	f.padding, err = o.Float64("REFLOW_PADDING", "padding", "", def.Padding, "space between a container border and its content.")
	if err != nil {
		return nil, err
	}
	f.resize, err = o.Bool("REFLOW_RESIZE", "resize", "", def.ResizeContainers, "grow or shrink containers to fit their content.")
	if err != nil {
		return nil, err
	}
	f.pinned = o.StringSlice("REFLOW_PINNED", "pin", "", nil, "ids of elements that must not move.")
	f.happyPath = o.String("REFLOW_HAPPY_PATH", "happy-path", "", "", `policy that keeps one path straight: "first" or "longest".`)

	f.preview, err = o.Bool("REFLOW_PREVIEW", "preview", "p", false, "print the changes instead of writing them.")
	if err != nil {
		return nil, err
	}
	f.watch, err = o.Bool("REFLOW_WATCH", "watch", "w", false, "lay out again whenever the input changes.")
	if err != nil {
		return nil, err
	}
	f.debug, err = o.Bool("REFLOW_DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		return nil, err
	}
	f.help = o.Flags.BoolP("help", "h", false, "show this help.")
	return f, nil
}

// layoutOpts stacks the defaults, the options file, and explicit environment
// variables and flags, in increasing precedence.
func (f *flags) layoutOpts(ms *xmain.State) (*rflayouts.Opts, error) {
	opts := rflayouts.DefaultOpts()
	if *f.config != "" {
		b, err := os.ReadFile(*f.config)
		if err != nil {
			return nil, err
		}
		err = decodeOpts(*f.config, b, opts)
		if err != nil {
			return nil, err
		}
	}

	o := ms.Opts
	if o.Explicit("REFLOW_SCOPE", "scope") {
		opts.Scope = *f.scope
	}
	if o.Explicit("REFLOW_GAP", "gap") {
		opts.Gap = *f.gap
	}
	if o.Explicit("REFLOW_SPACING", "spacing") {
		opts.BranchSpacing = *f.spacing
	}
	if o.Explicit("REFLOW_GRID", "grid") {
		opts.GridSnap = *f.grid
	}
	if o.Explicit("REFLOW_POOL_GAP", "pool-gap") {
		opts.PoolGap = *f.poolGap
	}
	if o.Explicit("REFLOW_PADDING", "padding") {
		opts.Padding = *f.padding
	}
	if o.Explicit("REFLOW_RESIZE", "resize") {
		opts.ResizeContainers = *f.resize
	}
	if o.Explicit("REFLOW_PINNED", "pin") {
		opts.Pinned = append(opts.Pinned, *f.pinned...)
	}
	if o.Explicit("REFLOW_HAPPY_PATH", "happy-path") {
		opts.HappyPath = *f.happyPath
	}
	return opts, nil
}

func run(ctx context.Context, ms *xmain.State) error {
	f, err := registerFlags(ms.Opts)
	if err != nil {
		return xmain.UsageErrorf("%v", err)
	}
	err = ms.Opts.Flags.Parse(ms.Opts.Args)
	if errors.Is(err, pflag.ErrHelp) || (err == nil && *f.help) {
		help(ms)
		return nil
	}
	if err != nil {
		return xmain.UsageErrorf("failed to parse flags: %v", err)
	}
	if *f.debug {
		ctx = log.Leveled(ctx, slog.LevelDebug)
	}

	args := ms.Opts.Flags.Args()
	if len(args) == 0 {
		help(ms)
		return nil
	}
	if len(args) > 2 {
		return xmain.UsageErrorf("too many arguments passed")
	}
	inputPath := args[0]
	outputPath := inputPath
	if len(args) == 2 {
		outputPath = args[1]
	}

	opts, err := f.layoutOpts(ms)
	if err != nil {
		return xmain.UsageErrorf("failed to load options: %v", err)
	}

	if *f.watch {
		if inputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with reading input from stdin")
		}
		w, err := newWatcher(ctx, ms, opts, inputPath, outputPath, *f.preview)
		if err != nil {
			return err
		}
		return w.run()
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute*2)
	defer cancel()

	return reflow(ctx, ms, opts, inputPath, outputPath, *f.preview)
}

// reflow lays out the diagram at inputPath. In preview mode the changes are
// printed as a diff of the diagram document and nothing is written.
func reflow(ctx context.Context, ms *xmain.State, opts *rflayouts.Opts, inputPath, outputPath string, preview bool) error {
	input, err := ms.ReadPath(inputPath)
	if err != nil {
		return err
	}
	d, err := rfgraph.ParseDiagram(input)
	if err != nil {
		return err
	}
	before, err := d.Serialize()
	if err != nil {
		return err
	}

	plan, err := rflib.Preview(ctx, d, opts)
	if err != nil {
		return err
	}
	log.Debug(ctx, "layout plan", slog.F("plan", string(xjson.Marshal(plan))))
	res := plan.Apply(ctx, d)

	after, err := d.Serialize()
	if err != nil {
		return err
	}

	if preview {
		if plan.Empty() {
			log.Info(ctx, "diagram is already laid out", slog.F("input", inputPath))
			return nil
		}
		ds, err := diff.Strings(string(before), string(after))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(ms.Stdout, ds)
		return err
	}

	if outputPath != "-" && outputPath == inputPath && bytes.Equal(input, after) {
		log.Info(ctx, "diagram is already laid out", slog.F("input", inputPath))
		return nil
	}
	err = ms.WritePath(outputPath, after)
	if err != nil {
		return err
	}
	log.Info(ctx, fmt.Sprintf("reflowed %v to %v", inputPath, outputPath), slog.F("moved", res.Moved), slog.F("rerouted", res.Rerouted))
	return nil
}
