package stdlib

import (
	"strconv"
	"strings"

	"github.com/zephyrlang/zr/internal/value"
)

func dispatchString(name string, args []value.Value, h *value.Heap) (value.Value, error) {
	s, _ := asStr(arg(args, 0), h)
	switch name {
	case "string_len":
		return value.Int{Width: 32, Signed: true, V: int64(len([]rune(s)))}, nil
	case "to_upper":
		return newStr(h, strings.ToUpper(s)), nil
	case "to_lower":
		return newStr(h, strings.ToLower(s)), nil
	case "trim":
		return newStr(h, strings.TrimSpace(s)), nil
	case "contains":
		needle, _ := asStr(arg(args, 1), h)
		return value.Bool{V: strings.Contains(s, needle)}, nil
	case "replace":
		from, _ := asStr(arg(args, 1), h)
		to, _ := asStr(arg(args, 2), h)
		return newStr(h, strings.ReplaceAll(s, from, to)), nil
	case "split":
		sep, _ := asStr(arg(args, 1), h)
		parts := strings.Split(s, sep)
		elems := make([]value.Value, len(parts))
		for i, p := range parts {
			elems[i] = newStr(h, p)
		}
		return value.Vec{ID: h.Alloc(elems), Elem: "string"}, nil
	case "parse_int":
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, runtimeErr("cannot parse '%s' as an integer", s)
		}
		return value.Int{Width: 32, Signed: true, V: n}, nil
	case "parse_float":
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, runtimeErr("cannot parse '%s' as a float", s)
		}
		return value.Float{Width: 32, V: n}, nil
	}
	return nil, runtimeErr("unknown string function '%s'", name)
}
