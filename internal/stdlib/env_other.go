//go:build !linux

package stdlib

import "runtime"

// platformOSName/platformArch fall back to the compile-time target
// triple on platforms where x/sys's uname-style probing isn't wired
// (env_linux.go covers the case the pack's examples ground this in).
func platformOSName() string { return runtime.GOOS }
func platformArch() string   { return runtime.GOARCH }
