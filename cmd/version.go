package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

// Version is the toolchain version string `zr version` reports.
const Version = "0.1.0"

// VersionCmd implements `zr version` (spec §6).
type VersionCmd struct{}

func (*VersionCmd) Name() string     { return "version" }
func (*VersionCmd) Synopsis() string { return "print the zr toolchain version" }
func (*VersionCmd) Usage() string    { return "version:\n  Print the toolchain version.\n" }
func (*VersionCmd) SetFlags(*flag.FlagSet) {}

func (*VersionCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	fmt.Println("zr", Version)
	return subcommands.ExitSuccess
}
