package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"adl/parser"
)

// parseCmd implements `parse <input> [-o <out>]`.
type parseCmd struct {
	out string
}

func (*parseCmd) Name() string     { return "parse" }
func (*parseCmd) Synopsis() string { return "Parse an adl source file and print its AST as JSON" }
func (*parseCmd) Usage() string {
	return `parse <input> [-o <out>]:
  Parse adl source and print (or write) its AST as JSON.
`
}

func (p *parseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.out, "o", "", "write the AST JSON to this file instead of stdout")
}

func (p *parseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if p.out != "" {
		if err := parser.WriteASTJSONToFile(algo, p.out); err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to write AST: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	if _, err := parser.PrintASTJSON(algo); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to render AST: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
