package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"

	"github.com/zephyrlang/zr/internal/project"
)

// InitCmd implements `zr init [name]`: scaffolds a `main.zr` and a
// `zephyr.toml` inside a named directory (creating it if needed) or
// the current directory when no name is given (spec §6). The teacher
// has no equivalent scaffolder; internal/project/scaffold.go does the
// actual file writing in its plain, glue-only CLI style, wired to
// internal/project/config.go for the config file.
type InitCmd struct{}

func (*InitCmd) Name() string     { return "init" }
func (*InitCmd) Synopsis() string { return "scaffold a new zr project" }
func (*InitCmd) Usage() string {
	return "init [name]:\n  Create main.zr and zephyr.toml in a named or the current directory.\n"
}
func (*InitCmd) SetFlags(*flag.FlagSet) {}

func (*InitCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	args := f.Args()
	dir := "."
	name := filepath.Base(mustAbs("."))
	if len(args) > 0 {
		dir = args[0]
		name = args[0]
	}

	if err := project.Scaffold(dir, name); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("initialized %s in %s\n", name, dir)
	return subcommands.ExitSuccess
}

func mustAbs(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
