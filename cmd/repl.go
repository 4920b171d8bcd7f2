package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"github.com/zephyrlang/zr/internal/parser"
	"github.com/zephyrlang/zr/internal/value"
	"github.com/zephyrlang/zr/internal/vm"
)

// ReplCmd implements an interactive REPL: each line is run through the
// full pipeline (lex, parse, resolve, analyze, compile, execute) and
// its value, if any, is echoed. Grounded on the teacher's cmd_repl.go
// for the read-eval-print loop shape and its `parser.Print`
// developer-inspection habit (generalized here into the `:ast` /
// `:bytecode` commands original_source's REPL exposes); upgraded from
// bufio.Scanner to github.com/chzyer/readline for history and
// line-editing, a dependency the teacher's go.mod already carries
// indirectly.
type ReplCmd struct{}

func (*ReplCmd) Name() string     { return "repl" }
func (*ReplCmd) Synopsis() string { return "start an interactive session" }
func (*ReplCmd) Usage() string {
	return "repl:\n  Start an interactive read-eval-print loop.\n"
}
func (*ReplCmd) SetFlags(*flag.FlagSet) {}

func (*ReplCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	fmt.Println("zr REPL — type :help for commands, :exit to quit")

	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Println(err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	machine := vm.New()
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Println(err)
			return subcommands.ExitFailure
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if handled := replMeta(line, machine); handled {
			if line == ":exit" || line == ":quit" {
				return subcommands.ExitSuccess
			}
			continue
		}
		runLine(line, machine)
	}
}

func replMeta(line string, machine *vm.VM) bool {
	switch {
	case line == ":exit" || line == ":quit":
		fmt.Println("bye")
		return true
	case line == ":help":
		fmt.Println(":ast <expr>       print the parsed AST as JSON")
		fmt.Println(":bytecode <expr>  print the compiled bytecode")
		fmt.Println(":exit             quit the session")
		return true
	case strings.HasPrefix(line, ":ast "):
		src := strings.TrimPrefix(line, ":ast ")
		_, stmts, err := lexParse("<repl>", src)
		if err != nil {
			fmt.Println(err)
			return true
		}
		out, err := parser.PrintASTJSON(stmts)
		if err != nil {
			fmt.Println(err)
			return true
		}
		fmt.Println(out)
		return true
	case strings.HasPrefix(line, ":bytecode "):
		src := strings.TrimPrefix(line, ":bytecode ")
		_, stmts, err := lexParse("<repl>", src)
		if err != nil {
			fmt.Println(err)
			return true
		}
		bc, err := compileProgram("<repl>", stmts)
		if err != nil {
			fmt.Println(err)
			return true
		}
		fmt.Print(bc.Disassemble())
		return true
	}
	return false
}

func runLine(src string, machine *vm.VM) {
	_, stmts, err := lexParse("<repl>", src)
	if err != nil {
		fmt.Println(err)
		return
	}
	bc, err := compileProgram("<repl>", stmts)
	if err != nil {
		fmt.Println(err)
		return
	}
	result, err := machine.Run(bc)
	if err != nil {
		fmt.Println(err)
		return
	}
	if _, isVoid := result.(value.Void); isVoid || result == nil {
		return
	}
	fmt.Println(machine.Display(result))
}
