package cpu

import (
	"iter"
	"strings"
)

// Line is one line of assembled source with the bytes it generated.
type Line struct {
	LineNo    int      // Source line number.
	Address   int      // Address of the first generated byte.
	Words     []string // Source words, after expansion.
	Bytes     []byte   // Generated bytes.
	LinkLabel string   // Label whose address is patched into Bytes[LinkIndex].
	LinkIndex int
}

// Text returns the source words as a single line.
func (ln *Line) Text() string {
	return strings.Join(ln.Words, " ")
}

// Program is an assembled LS8 program.
type Program struct {
	Lines []Line
}

// Debug locates the source line that generated the byte at an address.
type Debug struct {
	*Line
	Index int
}

// Debug returns the source line for addr; Line is nil if addr was not generated
// by the program.
func (prog *Program) Debug(addr uint8) (dbg Debug) {
	for n, ln := range prog.Lines {
		if int(addr) >= ln.Address && int(addr) < ln.Address+len(ln.Bytes) {
			dbg = Debug{
				Line:  &prog.Lines[n],
				Index: int(addr) - ln.Address,
			}
			break
		}
	}

	return
}

// Size returns the number of bytes in the program image.
func (prog *Program) Size() (size int) {
	for _, ln := range prog.Lines {
		size += len(ln.Bytes)
	}
	return
}

// Binary returns the program image, to be loaded at address 0.
func (prog *Program) Binary() (bins []byte) {
	bins = make([]byte, 0, prog.Size())
	for _, code := range prog.Bytes() {
		bins = append(bins, code)
	}

	return
}

// Bytes iterates over every generated byte with its address.
func (prog *Program) Bytes() iter.Seq2[int, byte] {
	return func(yield func(addr int, code byte) bool) {
		for _, ln := range prog.Lines {
			for n, code := range ln.Bytes {
				if !yield(ln.Address+n, code) {
					return
				}
			}
		}
	}
}
