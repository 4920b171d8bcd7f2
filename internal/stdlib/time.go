package stdlib

import (
	"time"

	"github.com/zephyrlang/zr/internal/value"
)

var processStart = time.Now()

func dispatchTime(name string, args []value.Value) (value.Value, error) {
	switch name {
	case "now", "now_secs":
		return value.Float{Width: 64, V: float64(time.Now().UnixNano()) / 1e9}, nil
	case "sleep":
		secs, _ := asFloat(arg(args, 0))
		time.Sleep(time.Duration(secs * float64(time.Second)))
		return value.Void{}, nil
	case "monotonic_ms", "instant_now":
		return value.Float{Width: 64, V: float64(time.Since(processStart).Milliseconds())}, nil
	case "instant_elapsed":
		start, _ := asFloat(arg(args, 0))
		now := float64(time.Since(processStart).Milliseconds())
		return value.Float{Width: 64, V: now - start}, nil
	case "delta_time":
		return value.Float{Width: 32, V: 1.0 / 60.0}, nil
	case "fps":
		return value.Float{Width: 32, V: 60.0}, nil
	}
	return nil, runtimeErr("unknown time function '%s'", name)
}
