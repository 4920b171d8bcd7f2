package stdlib

import "github.com/zephyrlang/zr/internal/value"

// windowState is the payload behind a std::game Window handle: an
// in-memory framebuffer and open flag, with no real window ever
// created (spec §1 excludes windowing from scope; SPEC_FULL.md keeps
// the call surface so std::game programs still type-check and run).
type windowState struct {
	width, height int
	open          bool
	pixels        []byte
	keys          map[string]bool
}

func dispatchGame(name string, args []value.Value, h *value.Heap) (value.Value, error) {
	switch name {
	case "Window":
		w, _ := asInt(arg(args, 0))
		ht, _ := asInt(arg(args, 1))
		win := &windowState{width: int(w), height: int(ht), open: true, keys: map[string]bool{}}
		win.pixels = make([]byte, win.width*win.height*4)
		return value.Obj{ID: h.Alloc(win)}, nil
	case "is_open":
		win, err := winOf(arg(args, 0), h)
		if err != nil {
			return nil, err
		}
		return value.Bool{V: win.open}, nil
	case "clear":
		win, err := winOf(arg(args, 0), h)
		if err != nil {
			return nil, err
		}
		for i := range win.pixels {
			win.pixels[i] = 0
		}
		return value.Void{}, nil
	case "display":
		if _, err := winOf(arg(args, 0), h); err != nil {
			return nil, err
		}
		return value.Void{}, nil
	case "key_pressed":
		win, err := winOf(arg(args, 0), h)
		if err != nil {
			return nil, err
		}
		key, _ := asStr(arg(args, 1), h)
		return value.Bool{V: win.keys[key]}, nil
	case "draw_rect":
		win, err := winOf(arg(args, 0), h)
		if err != nil {
			return nil, err
		}
		x, _ := asInt(arg(args, 1))
		y, _ := asInt(arg(args, 2))
		w, _ := asInt(arg(args, 3))
		ht, _ := asInt(arg(args, 4))
		fillRect(win, int(x), int(y), int(w), int(ht))
		return value.Void{}, nil
	}
	return nil, runtimeErr("unknown game function '%s'", name)
}

func winOf(v value.Value, h *value.Heap) (*windowState, error) {
	obj, ok := v.(value.Obj)
	if !ok {
		return nil, runtimeErr("expected a Window value")
	}
	win, ok := h.Get(obj.ID).(*windowState)
	if !ok {
		return nil, runtimeErr("expected a Window value")
	}
	return win, nil
}

func fillRect(win *windowState, x, y, w, ht int) {
	for row := y; row < y+ht && row < win.height; row++ {
		if row < 0 {
			continue
		}
		for col := x; col < x+w && col < win.width; col++ {
			if col < 0 {
				continue
			}
			off := (row*win.width + col) * 4
			if off+4 <= len(win.pixels) {
				win.pixels[off] = 0xff
			}
		}
	}
}
