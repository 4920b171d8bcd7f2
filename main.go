// Command zr is the toolchain entry point: lexer, parser, module
// resolver, semantic analyser, bytecode compiler and VM live under
// internal/, dispatched here by verb (spec §6). Grounded on the
// teacher's main.go + cmd_*.go files, which register the same shape
// of subcommands.Command implementations directly off the root
// package; here they live in the exported cmd package so internal/
// and cmd/ can both depend on the pipeline helpers without an import
// cycle back into main.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/zephyrlang/zr/cmd"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&cmd.RunCmd{}, "")
	subcommands.Register(&cmd.CheckCmd{}, "")
	subcommands.Register(&cmd.CompileCmd{}, "")
	subcommands.Register(&cmd.BuildCmd{}, "")
	subcommands.Register(&cmd.InitCmd{}, "")
	subcommands.Register(&cmd.ReplCmd{}, "")
	subcommands.Register(&cmd.VersionCmd{}, "")

	flag.Parse()

	// spec §6: "A bare file path is equivalent to run <file>." Any
	// first argument that isn't a recognised verb is treated as the
	// file to run, rather than an unknown-command error.
	if args := flag.Args(); len(args) > 0 && !knownVerbs[args[0]] {
		os.Exit(int(cmd.RunFile(args[0])))
	}

	os.Exit(int(subcommands.Execute(context.Background())))
}

var knownVerbs = map[string]bool{
	"run": true, "check": true, "compile": true, "build": true,
	"init": true, "repl": true, "version": true,
	"help": true, "flags": true, "commands": true,
}
