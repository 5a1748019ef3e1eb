// Package image reads and writes LS8 program images.
//
// An image is plain text holding one byte per line, written as eight
// binary digits. Anything else on a line, and any line without such a
// run of digits, is ignored:
//
//	# print8.ls8
//	10000010 # LDI R0,8
//	00000000
//	00001000
//	01000111 # PRN R0
//	00000000
//	00000001 # HLT
package image

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/lambdaschool/ls8/cpu"
	"github.com/lambdaschool/ls8/translate"
)

// ErrImageTooLarge is returned for images that do not fit in memory.
var ErrImageTooLarge = errors.New(translate.From("image exceeds %d bytes", cpu.MEMORY_SIZE))

// Parse reads an image, returning its bytes in file order.
func Parse(r io.Reader) (code []byte, err error) {
	scanner := bufio.NewScanner(r)

	var lineno int
	for scanner.Scan() {
		lineno++

		value, ok := scanByte(scanner.Text())
		if !ok {
			continue
		}

		if len(code) == cpu.MEMORY_SIZE {
			err = errors.Wrapf(ErrImageTooLarge, "line %d", lineno)
			return
		}
		code = append(code, value)
	}

	err = scanner.Err()
	if err != nil {
		err = errors.Wrapf(err, "line %d", lineno+1)
		return
	}

	return
}

// scanByte finds the first run of exactly eight binary digits in line.
func scanByte(line string) (value uint8, ok bool) {
	run := 0
	for n := 0; n <= len(line); n++ {
		if n < len(line) && (line[n] == '0' || line[n] == '1') {
			run++
			continue
		}
		if run == 8 {
			v64, err := strconv.ParseUint(line[n-8:n], 2, 8)
			if err == nil {
				return uint8(v64), true
			}
		}
		run = 0
	}

	return
}

// Load reads the image file at path.
func Load(path string) (code []byte, err error) {
	inf, err := os.Open(path)
	if err != nil {
		err = errors.WithStack(err)
		return
	}
	defer inf.Close()

	code, err = Parse(inf)
	if err != nil {
		err = errors.Wrap(err, path)
		return
	}

	return
}

// Write writes an assembled program as an image, annotating the first
// byte of each source line with its text.
func Write(w io.Writer, prog *cpu.Program) (err error) {
	bw := bufio.NewWriter(w)

	for _, ln := range prog.Lines {
		for n, code := range ln.Bytes {
			if n == 0 {
				_, err = fmt.Fprintf(bw, "%08b # %v\n", code, ln.Text())
			} else {
				_, err = fmt.Fprintf(bw, "%08b\n", code)
			}
			if err != nil {
				return errors.Wrapf(err, "address 0x%02x", ln.Address+n)
			}
		}
	}

	return errors.WithStack(bw.Flush())
}

// WriteImage writes raw bytes as an image, annotating each instruction
// with its disassembly.
func WriteImage(w io.Writer, code []byte) (err error) {
	bw := bufio.NewWriter(w)

	for addr := 0; addr < len(code); {
		text, size := cpu.Disassemble(code[addr:])
		for n := 0; n < size && addr+n < len(code); n++ {
			if n == 0 {
				_, err = fmt.Fprintf(bw, "%08b # %v\n", code[addr], text)
			} else {
				_, err = fmt.Fprintf(bw, "%08b\n", code[addr+n])
			}
			if err != nil {
				return errors.Wrapf(err, "address 0x%02x", addr+n)
			}
		}
		addr += size
	}

	return errors.WithStack(bw.Flush())
}
