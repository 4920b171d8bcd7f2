//go:build linux

package stdlib

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// platformOSName and platformArch probe the running kernel directly
// via x/sys/unix.Uname rather than trusting runtime.GOOS/GOARCH (the
// compile-time target triple, not necessarily the host the binary is
// running on under emulation) — the same reach-for-x/sys-over-runtime
// the pack's other examples make for this exact question.
func platformOSName() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return runtime.GOOS
	}
	return charsToString(uts.Sysname[:])
}

func platformArch() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return runtime.GOARCH
	}
	return charsToString(uts.Machine[:])
}

// charsToString converts a NUL-terminated Utsname field to a Go
// string. Generic over int8/byte since Utsname's char-array fields are
// byte on some architectures x/sys/unix targets and int8 on others.
func charsToString[T int8 | byte](field []T) string {
	b := make([]byte, 0, len(field))
	for _, c := range field {
		if c == 0 {
			break
		}
		b = append(b, byte(c))
	}
	return string(b)
}
