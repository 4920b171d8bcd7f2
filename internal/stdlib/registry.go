// Package stdlib hosts the name/arity tables of spec §6-A and
// dispatches them onto Go's own standard library — the natural host
// mapping for a toy language's stdlib (math, strings, time, os,
// strconv, runtime), not a gap left by the corpus.
package stdlib

// ModuleOf maps every stdlib function name to the `std::<module>` it
// belongs to, so the semantic analyser can gate a call on the matching
// `import` being present (spec §4.8 call-checking rule 2).
var ModuleOf = map[string]string{
	// std::core
	"assert": "core", "panic": "core", "type_of": "core",
	"is_none": "core", "is_some": "core", "unwrap": "core",

	// std::math
	"abs": "math", "sqrt": "math", "pow": "math", "sin": "math", "cos": "math",
	"tan": "math", "floor": "math", "ceil": "math", "round": "math",
	"min": "math", "max": "math", "clamp": "math", "lerp": "math",
	"random": "math", "pi": "math", "e": "math", "log": "math", "log10": "math", "exp": "math",

	// std::io
	"print": "io", "println": "io", "input": "io",

	// std::time
	"now": "time", "now_secs": "time", "sleep": "time", "monotonic_ms": "time",
	"instant_now": "time", "instant_elapsed": "time", "delta_time": "time", "fps": "time",

	// std::string
	"string_len": "string", "to_upper": "string", "to_lower": "string",
	"trim": "string", "contains": "string", "replace": "string", "split": "string",
	"parse_int": "string", "parse_float": "string",

	// std::fs
	"read_file": "fs", "write_file": "fs", "file_exists": "fs",
	"is_file": "fs", "is_dir": "fs", "list_dir": "fs", "current_dir": "fs",

	// std::env
	"args": "env", "args_count": "env", "env_var": "env", "os_name": "env",
	"os_arch": "env", "is_windows": "env", "is_linux": "env", "temp_dir": "env", "pid": "env",

	// std::process
	"exit": "process",

	// std::thread
	"thread_sleep": "thread", "thread_yield": "thread", "thread_id": "thread", "cpu_cores": "thread",

	// std::mem
	"size_of": "mem",

	// std::game
	"Window": "game", "is_open": "game", "clear": "game", "display": "game",
	"key_pressed": "game", "draw_rect": "game",
}

// AlwaysAvailable names builtins spec §4.8 exempts from import gating
// even though they live in std::io.
var AlwaysAvailable = map[string]bool{
	"print": true, "println": true, "input": true,
}

// IsStdlibFunction reports whether name is a recognised stdlib entry
// point at all (regardless of whether it has been imported).
func IsStdlibFunction(name string) bool {
	_, ok := ModuleOf[name]
	return ok
}
