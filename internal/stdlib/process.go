package stdlib

import (
	"os"

	"github.com/zephyrlang/zr/internal/value"
)

func dispatchProcess(name string, args []value.Value) (value.Value, error) {
	switch name {
	case "exit":
		code, _ := asInt(arg(args, 0))
		os.Exit(int(code))
		return value.Void{}, nil
	}
	return nil, runtimeErr("unknown process function '%s'", name)
}
