package stdlib

import (
	"runtime"
	"time"

	"github.com/zephyrlang/zr/internal/value"
)

// dispatchThread covers std::thread. Spec §1 puts concurrent bytecode
// execution out of scope, so these are host-introspection and
// cooperative-yield primitives only, not a real scheduler.
func dispatchThread(name string, args []value.Value) (value.Value, error) {
	switch name {
	case "thread_sleep":
		secs, _ := asFloat(arg(args, 0))
		time.Sleep(time.Duration(secs * float64(time.Second)))
		return value.Void{}, nil
	case "thread_yield":
		runtime.Gosched()
		return value.Void{}, nil
	case "thread_id":
		return value.Int{Width: 32, Signed: true, V: 0}, nil
	case "cpu_cores":
		return value.Int{Width: 32, Signed: true, V: int64(runtime.NumCPU())}, nil
	}
	return nil, runtimeErr("unknown thread function '%s'", name)
}
