package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"adl/bytecode"
	"adl/codegen"
	"adl/parser"
)

// codegenCmd implements `codegen <input> [-o <out>]`.
type codegenCmd struct {
	out string
}

func (*codegenCmd) Name() string { return "codegen" }
func (*codegenCmd) Synopsis() string {
	return "Compile an adl source file to its textual bytecode form"
}
func (*codegenCmd) Usage() string {
	return `codegen <input> [-o <out>]:
  Compile adl source and print (or write) its bytecode.
`
}

func (c *codegenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "", "write the bytecode to this file instead of stdout")
}

func (c *codegenCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	instrs, err := codegen.Compile(algo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 codegen error: %v\n", err)
		return subcommands.ExitFailure
	}

	text := bytecode.Serialize(instrs)
	if c.out != "" {
		if err := os.WriteFile(c.out, []byte(text), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to write bytecode: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	fmt.Print(text)
	return subcommands.ExitSuccess
}
