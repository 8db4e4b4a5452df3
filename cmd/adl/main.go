// Command adl is the toolchain's CLI: parse, codegen, run, and
// interpret subcommands on github.com/google/subcommands, the same
// flat dispatch shape as informatter-nilan's cmd_run.go/
// cmd_emit_bytecode.go/cmd_run_compiled.go, generalized from Nilan's
// run/emit/runC verbs to adl's parse/codegen/run/interpret surface
// (spec.md §6). No logging framework: every subcommand writes straight
// to os.Stdout/os.Stderr, matching the teacher.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&parseCmd{}, "")
	subcommands.Register(&codegenCmd{}, "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&interpretCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
