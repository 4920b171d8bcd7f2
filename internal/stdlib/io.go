package stdlib

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zephyrlang/zr/internal/value"
)

var stdin = bufio.NewReader(os.Stdin)

func dispatchIO(name string, args []value.Value, h *value.Heap) (value.Value, error) {
	switch name {
	case "print":
		fmt.Fprint(os.Stdout, Display(arg(args, 0), h))
		return value.Void{}, nil
	case "println":
		fmt.Fprintln(os.Stdout, Display(arg(args, 0), h))
		return value.Void{}, nil
	case "input":
		if len(args) > 0 {
			fmt.Fprint(os.Stdout, Display(args[0], h))
		}
		line, _ := stdin.ReadString('\n')
		return newStr(h, strings.TrimRight(line, "\r\n")), nil
	}
	return nil, runtimeErr("unknown io function '%s'", name)
}

// Display renders a runtime value for print/println and string
// interpolation's Cast("string") path: scalars format plainly,
// heap-backed collections recurse through the heap the way a debugger
// would, since the language has no user-defined Display trait (spec
// doesn't specify one).
func Display(v value.Value, h *value.Heap) string {
	switch x := v.(type) {
	case value.Int:
		return strconv.FormatInt(x.V, 10)
	case value.Float:
		return strconv.FormatFloat(x.V, 'g', -1, 64)
	case value.Bool:
		return strconv.FormatBool(x.V)
	case value.Char:
		return string(x.V)
	case value.Void:
		return "void"
	case value.Str:
		s, _ := h.Get(x.ID).(string)
		return s
	case value.StrConst:
		return x.S
	case value.Vec:
		return displayList(h.Get(x.ID), h)
	case value.Arr:
		return displayList(h.Get(x.ID), h)
	case value.Obj:
		return displayObj(h.Get(x.ID), h)
	case value.Closure:
		return "<closure " + x.FuncName + ">"
	case value.Ref:
		return Display(x.Target, h)
	}
	return "<unknown>"
}

func displayList(payload any, h *value.Heap) string {
	elems, _ := payload.([]value.Value)
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = Display(e, h)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func displayObj(payload any, h *value.Heap) string {
	data, ok := payload.(*value.ObjectData)
	if !ok {
		return "{}"
	}
	if t, ok := data.Get("_type"); ok {
		if ts, ok2 := t.(value.Str); ok2 {
			if typeName, ok3 := h.Get(ts.ID).(string); ok3 {
				if d, hasData := data.Get("_data"); hasData {
					return typeName + "(" + Display(d, h) + ")"
				}
				if len(data.Order) <= 1 {
					return typeName
				}
			}
		}
	}
	parts := make([]string, 0, len(data.Order))
	for _, name := range data.Order {
		if name == "_type" {
			continue
		}
		v, _ := data.Get(name)
		parts = append(parts, name+": "+Display(v, h))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
