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
	"adl/vm"
)

// runCmd implements `run -file <input>` | `run -bytecode <file>`.
type runCmd struct {
	file     string
	bytecode string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Compile and run adl source, or run a bytecode file" }
func (*runCmd) Usage() string {
	return `run -file <input> | run -bytecode <file>:
  Execute adl code under the VM, compiling from source or loading
  already-compiled textual bytecode.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.file, "file", "", "adl source file to compile and run")
	f.StringVar(&r.bytecode, "bytecode", "", "textual bytecode file to load and run")
}

func (r *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if (r.file == "") == (r.bytecode == "") {
		fmt.Fprintf(os.Stderr, "💥 exactly one of -file or -bytecode must be given\n")
		return subcommands.ExitUsageError
	}

	var instrs []bytecode.Instruction
	if r.file != "" {
		data, err := os.ReadFile(r.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
			return subcommands.ExitFailure
		}
		algo, err := parser.Parse(string(data))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		instrs, err = codegen.Compile(algo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 codegen error: %v\n", err)
			return subcommands.ExitFailure
		}
	} else {
		data, err := os.ReadFile(r.bytecode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
			return subcommands.ExitFailure
		}
		instrs, err = bytecode.Parse(string(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 bytecode parse error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	m := vm.New(instrs)
	registerVMBuiltins(m)
	if err := m.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
