package compiler

import (
	"encoding/binary"
	"io"

	"github.com/zephyrlang/zr/internal/diagnostics"
)

// magic, versionMajor, versionMinor are the only parts of the bytecode
// file format spec §6 actually pins down: a four-byte ASCII magic, two
// version bytes, then a little-endian instruction count. Per-instruction
// encoding is explicitly out of scope (spec §1/§9), so WriteHeader stops
// there rather than inventing one.
var magic = [4]byte{'Z', 'R', 'B', 'C'}

const versionMajor, versionMinor = 0, 1

// WriteHeader writes the fixed four-byte-magic/two-version-byte/
// instruction-count header spec §6 specifies for a `.zyc` file. It is
// the entire on-disk contract; the instructions themselves have no
// specified encoding, so `compile`/`build` keep them in memory only
// and this header is what actually lands on disk.
func (b *Bytecode) WriteHeader(w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return diagnostics.New(diagnostics.KindFile, "failed to write bytecode magic: %v", err)
	}
	if _, err := w.Write([]byte{versionMajor, versionMinor}); err != nil {
		return diagnostics.New(diagnostics.KindFile, "failed to write bytecode version: %v", err)
	}
	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(len(b.Instructions)))
	if _, err := w.Write(count[:]); err != nil {
		return diagnostics.New(diagnostics.KindFile, "failed to write bytecode instruction count: %v", err)
	}
	return nil
}
