package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"adl/interpreter"
	"adl/parser"
)

// interpretCmd implements `interpret <input>`.
type interpretCmd struct{}

func (*interpretCmd) Name() string     { return "interpret" }
func (*interpretCmd) Synopsis() string { return "Run adl source directly via the tree-walking backend" }
func (*interpretCmd) Usage() string {
	return `interpret <input>:
  Execute adl code by walking the AST directly, without compiling to
  bytecode.
`
}

func (*interpretCmd) SetFlags(*flag.FlagSet) {}

func (*interpretCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	algo, err := parser.Parse(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	in := interpreter.New()
	registerInterpreterBuiltins(in)
	if err := in.Run(algo); err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
