package stdlib

import (
	"os"
	"runtime"

	"github.com/zephyrlang/zr/internal/value"
)

func dispatchEnv(name string, args []value.Value, h *value.Heap) (value.Value, error) {
	switch name {
	case "args":
		elems := make([]value.Value, len(os.Args))
		for i, a := range os.Args {
			elems[i] = newStr(h, a)
		}
		return value.Vec{ID: h.Alloc(elems), Elem: "string"}, nil
	case "args_count":
		return value.Int{Width: 32, Signed: true, V: int64(len(os.Args))}, nil
	case "env_var":
		key, _ := asStr(arg(args, 0), h)
		return newStr(h, os.Getenv(key)), nil
	case "os_name":
		return newStr(h, platformOSName()), nil
	case "os_arch":
		return newStr(h, platformArch()), nil
	case "is_windows":
		return value.Bool{V: runtime.GOOS == "windows"}, nil
	case "is_linux":
		return value.Bool{V: runtime.GOOS == "linux"}, nil
	case "temp_dir":
		return newStr(h, os.TempDir()), nil
	case "pid":
		return value.Int{Width: 32, Signed: true, V: int64(os.Getpid())}, nil
	}
	return nil, runtimeErr("unknown env function '%s'", name)
}
