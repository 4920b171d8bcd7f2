package stdlib

import (
	"github.com/zephyrlang/zr/internal/value"
)

// sizeOf is a static, made-up-but-consistent width table since this
// VM's heap doesn't track Go-level byte sizes per value the way a
// native compiler's `sizeof` would.
var sizeOf = map[string]int64{
	"i8": 1, "u8": 1, "i32": 4, "u32": 4, "i64": 8, "u64": 8,
	"f32": 4, "f64": 8, "bool": 1, "char": 4, "void": 0,
}

func dispatchMem(name string, args []value.Value, h *value.Heap) (value.Value, error) {
	switch name {
	case "size_of":
		typeName, _ := asStr(arg(args, 0), h)
		if n, ok := sizeOf[typeName]; ok {
			return value.Int{Width: 32, Signed: true, V: n}, nil
		}
		return value.Int{Width: 32, Signed: true, V: 8}, nil
	}
	return nil, runtimeErr("unknown mem function '%s'", name)
}
