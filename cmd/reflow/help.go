package main

import (
	"fmt"

	"oss.terrastruct.com/reflow/lib/xmain"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `Usage:
  %s [--watch=false] [--preview=false] [--config=opts.toml] diagram.json [out.json]

%[1]s repositions the nodes of a process diagram and reroutes its edges.
The result is written to out.json, or back to diagram.json when no output is given.
Use - to have %[1]s read from stdin or write to stdout.

Flags:
%s
`, ms.Name, ms.Opts.Help())
}
