package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	tassert "github.com/stretchr/testify/assert"

	"oss.terrastruct.com/util-go/assert"

	"oss.terrastruct.com/reflow/lib/geo"
	"oss.terrastruct.com/reflow/lib/log"
	"oss.terrastruct.com/reflow/lib/xmain"
	"oss.terrastruct.com/reflow/rfgraph"
	"oss.terrastruct.com/reflow/rflayouts"
)

type buffer struct {
	bytes.Buffer
}

func (b *buffer) Close() error {
	return nil
}

func newState(env map[string]string, args ...string) (*xmain.State, *buffer) {
	stdout := &buffer{}
	getenv := func(k string) string { return env[k] }
	return &xmain.State{
		Name:   "reflow",
		Stdin:  &bytes.Buffer{},
		Stdout: stdout,
		Stderr: &buffer{},
		Getenv: getenv,
		Opts:   xmain.NewOpts(getenv, args),
	}, stdout
}

func writeDiagram(t *testing.T, dir string) string {
	d := &rfgraph.Diagram{}
	d.Add(rfgraph.Task("a").At(400, 0), rfgraph.Task("b").At(0, 300), rfgraph.Task("c").At(90, 90))
	d.Connect("a", "b", "c")
	b, err := d.Serialize()
	assert.Success(t, err)
	fp := filepath.Join(dir, "order.json")
	assert.Success(t, os.WriteFile(fp, b, 0644))
	return fp
}

func TestDecodeOpts(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		path   string
		text   string
		expErr string
		assert func(t *testing.T, opts *rflayouts.Opts)
	}{
		{
			name: "toml",
			path: "opts.toml",
			text: `gap = 80
happy_path = "first"

[origin]
x = 0
y = 20
`,
			assert: func(t *testing.T, opts *rflayouts.Opts) {
				tassert.Equal(t, 80., opts.Gap)
				tassert.Equal(t, "first", opts.HappyPath)
				tassert.Equal(t, *geo.NewPoint(0, 20), *opts.Origin)
				tassert.Equal(t, 130., opts.BranchSpacing)
			},
		},
		{
			name: "yaml",
			path: "opts.yml",
			text: `resizeContainers: false
pinned: [a, b]
`,
			assert: func(t *testing.T, opts *rflayouts.Opts) {
				tassert.False(t, opts.ResizeContainers)
				tassert.Equal(t, []string{"a", "b"}, opts.Pinned)
				tassert.Equal(t, 50., opts.Gap)
			},
		},
		{
			name: "empty_yaml",
			path: "opts.yaml",
			assert: func(t *testing.T, opts *rflayouts.Opts) {
				tassert.Equal(t, rflayouts.DefaultOpts(), opts)
			},
		},
		{
			name: "json",
			path: "opts.json",
			text: `{"gridSnap": 0, "scope": "shop"}`,
			assert: func(t *testing.T, opts *rflayouts.Opts) {
				tassert.Equal(t, 0., opts.GridSnap)
				tassert.Equal(t, "shop", opts.Scope)
			},
		},
		{
			name:   "unknown_toml_key",
			path:   "opts.toml",
			text:   `gaps = 1`,
			expErr: `unknown key "gaps"`,
		},
		{
			name:   "unknown_yaml_key",
			path:   "opts.yaml",
			text:   `gaps: 1`,
			expErr: `field gaps not found`,
		},
		{
			name:   "unknown_extension",
			path:   "opts.ini",
			expErr: `unsupported options file extension ".ini"`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			opts := rflayouts.DefaultOpts()
			err := decodeOpts(tc.path, []byte(tc.text), opts)
			if tc.expErr != "" {
				tassert.Error(t, err)
				tassert.Contains(t, err.Error(), tc.expErr)
				return
			}
			assert.Success(t, err)
			tc.assert(t, opts)
		})
	}
}

func TestLayoutOptsPrecedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	config := filepath.Join(dir, "opts.toml")
	assert.Success(t, os.WriteFile(config, []byte("gap = 80\nbranch_spacing = 200\npadding = 40\n"), 0644))

	ms, _ := newState(map[string]string{"REFLOW_GAP": "70"}, "--config", config, "--spacing=150", "in.json")
	f, err := registerFlags(ms.Opts)
	assert.Success(t, err)
	assert.Success(t, ms.Opts.Flags.Parse(ms.Opts.Args))

	opts, err := f.layoutOpts(ms)
	assert.Success(t, err)
	tassert.Equal(t, 70., opts.Gap, "environment over file")
	tassert.Equal(t, 150., opts.BranchSpacing, "flag over file")
	tassert.Equal(t, 40., opts.Padding, "file over default")
	tassert.Equal(t, 10., opts.GridSnap)
}

func TestReflow(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	dir := t.TempDir()
	in := writeDiagram(t, dir)
	out := filepath.Join(dir, "out.json")

	ms, _ := newState(nil)
	assert.Success(t, reflow(ctx, ms, rflayouts.DefaultOpts(), in, out, false))

	b, err := os.ReadFile(out)
	assert.Success(t, err)
	d, err := rfgraph.ParseDiagram(b)
	assert.Success(t, err)
	tassert.Equal(t, *geo.NewPoint(100, 100), *d.Node("a").TopLeft)
	tassert.Len(t, d.Edge("b->c").Route, 2)

	assert.Success(t, reflow(ctx, ms, rflayouts.DefaultOpts(), out, out, false))
	b2, err := os.ReadFile(out)
	assert.Success(t, err)
	assert.String(t, string(b), string(b2))
}

func TestReflowPreview(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	in := writeDiagram(t, t.TempDir())
	before, err := os.ReadFile(in)
	assert.Success(t, err)

	ms, stdout := newState(nil)
	assert.Success(t, reflow(ctx, ms, rflayouts.DefaultOpts(), in, in, true))

	after, err := os.ReadFile(in)
	assert.Success(t, err)
	assert.String(t, string(before), string(after))
	tassert.NotEmpty(t, stdout.String())
}

func TestReflowInvalidScope(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	dir := t.TempDir()
	in := writeDiagram(t, dir)
	out := filepath.Join(dir, "out.json")

	opts := rflayouts.DefaultOpts()
	opts.Scope = "nowhere"
	ms, _ := newState(nil)
	err := reflow(ctx, ms, opts, in, out, false)
	tassert.Error(t, err)
	_, err = os.Stat(out)
	tassert.True(t, os.IsNotExist(err))
}

func TestRunHelp(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	ms, stdout := newState(nil, "--help")
	assert.Success(t, run(ctx, ms))
	tassert.Contains(t, stdout.String(), "--happy-path")
	tassert.Contains(t, stdout.String(), "$REFLOW_GRID")
}

func TestRunTooManyArgs(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	ms, _ := newState(nil, "a.json", "b.json", "c.json")
	err := run(ctx, ms)
	var uerr xmain.UsageError
	tassert.ErrorAs(t, err, &uerr)
}
