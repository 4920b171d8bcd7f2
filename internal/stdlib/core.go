package stdlib

import (
	"github.com/zephyrlang/zr/internal/diagnostics"
	"github.com/zephyrlang/zr/internal/value"
)

// Dispatch invokes a stdlib function by name against already-evaluated
// args, the same convention internal/vm uses for a user-defined Call:
// arguments arrive in source order, the heap is the VM's own (so
// string/vec results allocate into the running program's heap rather
// than a private one). Grounded on the teacher having no stdlib of its
// own to imitate; this package instead routes spec §6-A's name table
// onto Go's standard library, one small function group per file.
func Dispatch(name string, args []value.Value, h *value.Heap) (value.Value, error) {
	switch ModuleOf[name] {
	case "core":
		return dispatchCore(name, args, h)
	case "math":
		return dispatchMath(name, args)
	case "io":
		return dispatchIO(name, args, h)
	case "time":
		return dispatchTime(name, args)
	case "string":
		return dispatchString(name, args, h)
	case "fs":
		return dispatchFS(name, args, h)
	case "env":
		return dispatchEnv(name, args, h)
	case "process":
		return dispatchProcess(name, args)
	case "thread":
		return dispatchThread(name, args)
	case "mem":
		return dispatchMem(name, args, h)
	case "game":
		return dispatchGame(name, args, h)
	}
	return nil, runtimeErr("unknown stdlib function '%s'", name)
}

func runtimeErr(format string, args ...any) error {
	return diagnostics.New(diagnostics.KindRuntime, format, args...)
}

func asStr(v value.Value, h *value.Heap) (string, bool) {
	s, ok := v.(value.Str)
	if !ok {
		return "", false
	}
	payload, ok := h.Get(s.ID).(string)
	return payload, ok
}

func newStr(h *value.Heap, s string) value.Str {
	return value.Str{ID: h.Alloc(s)}
}

func asInt(v value.Value) (int64, bool) {
	i, ok := v.(value.Int)
	return i.V, ok
}

func asFloat(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case value.Float:
		return n.V, true
	case value.Int:
		return float64(n.V), true
	}
	return 0, false
}

func asBool(v value.Value) (bool, bool) {
	b, ok := v.(value.Bool)
	return b.V, ok
}

func arg(args []value.Value, i int) value.Value {
	if i < 0 || i >= len(args) {
		return value.Void{}
	}
	return args[i]
}

func dispatchCore(name string, args []value.Value, h *value.Heap) (value.Value, error) {
	switch name {
	case "assert":
		cond, _ := asBool(arg(args, 0))
		if !cond {
			msg := "assertion failed"
			if len(args) > 1 {
				if s, ok := asStr(args[1], h); ok {
					msg = s
				}
			}
			return nil, runtimeErr("%s", msg)
		}
		return value.Void{}, nil
	case "panic":
		msg := "explicit panic"
		if len(args) > 0 {
			if s, ok := asStr(args[0], h); ok {
				msg = s
			}
		}
		return nil, runtimeErr("%s", msg)
	case "type_of":
		return newStr(h, arg(args, 0).TypeName()), nil
	case "is_none", "is_some":
		obj, ok := arg(args, 0).(value.Obj)
		isSome := false
		if ok {
			if data, ok2 := h.Get(obj.ID).(*value.ObjectData); ok2 {
				if t, ok3 := data.Get("_type"); ok3 {
					if ts, ok4 := t.(value.Str); ok4 {
						if payload, ok5 := h.Get(ts.ID).(string); ok5 {
							isSome = payload == "Option::Some"
						}
					}
				}
			}
		}
		if name == "is_none" {
			return value.Bool{V: !isSome}, nil
		}
		return value.Bool{V: isSome}, nil
	case "unwrap":
		obj, ok := arg(args, 0).(value.Obj)
		if !ok {
			return nil, runtimeErr("unwrap called on a non-optional value")
		}
		data, ok := h.Get(obj.ID).(*value.ObjectData)
		if !ok {
			return nil, runtimeErr("unwrap called on a non-optional value")
		}
		if d, ok := data.Get("_data"); ok {
			return d, nil
		}
		return nil, runtimeErr("called unwrap on a None/empty value")
	}
	return nil, runtimeErr("unknown core function '%s'", name)
}
