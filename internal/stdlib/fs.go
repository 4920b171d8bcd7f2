package stdlib

import (
	"os"

	"github.com/zephyrlang/zr/internal/value"
)

func dispatchFS(name string, args []value.Value, h *value.Heap) (value.Value, error) {
	path, _ := asStr(arg(args, 0), h)
	switch name {
	case "read_file":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, runtimeErr("cannot read '%s': %v", path, err)
		}
		return newStr(h, string(data)), nil
	case "write_file":
		content, _ := asStr(arg(args, 1), h)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, runtimeErr("cannot write '%s': %v", path, err)
		}
		return value.Void{}, nil
	case "file_exists":
		_, err := os.Stat(path)
		return value.Bool{V: err == nil}, nil
	case "is_file":
		info, err := os.Stat(path)
		return value.Bool{V: err == nil && !info.IsDir()}, nil
	case "is_dir":
		info, err := os.Stat(path)
		return value.Bool{V: err == nil && info.IsDir()}, nil
	case "list_dir":
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, runtimeErr("cannot list '%s': %v", path, err)
		}
		elems := make([]value.Value, len(entries))
		for i, e := range entries {
			elems[i] = newStr(h, e.Name())
		}
		return value.Vec{ID: h.Alloc(elems), Elem: "string"}, nil
	case "current_dir":
		dir, err := os.Getwd()
		if err != nil {
			return nil, runtimeErr("cannot determine the current directory: %v", err)
		}
		return newStr(h, dir), nil
	}
	return nil, runtimeErr("unknown fs function '%s'", name)
}
