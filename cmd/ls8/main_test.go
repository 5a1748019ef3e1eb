package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/lambdaschool/ls8/cpu"
	"github.com/lambdaschool/ls8/emulator"
)

var print8 = []string{
	"# print8.ls8",
	"10000010 # LDI R0,8",
	"00000000",
	"00001000",
	"01000111 # PRN R0",
	"00000000",
	"00000001 # HLT",
}

var mult = []string{
	"; mult.asm",
	"LDI R0,8",
	"LDI R1,9",
	"MUL R0,R1",
	"PRN R0",
	"HLT",
}

func writeFile(t *testing.T, name string, lines []string) (path string) {
	path = filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
	assert.NoError(t, err)
	return
}

func TestLs8Image(t *testing.T) {
	assert := assert.New(t)

	path := writeFile(t, "print8.ls8", print8)

	out := &bytes.Buffer{}
	err := ls8(&options{}, path, out)
	assert.NoError(err)
	assert.Equal("8\n", out.String())
}

func TestLs8Assemble(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}

	path := writeFile(t, "mult.asm", mult)
	err := ls8(&options{}, path, out)
	assert.NoError(err)
	assert.Equal("72\n", out.String())

	out.Reset()
	path = writeFile(t, "mult.txt", mult)
	err = ls8(&options{assemble: true}, path, out)
	assert.NoError(err)
	assert.Equal("72\n", out.String())
}

func TestLs8Output(t *testing.T) {
	assert := assert.New(t)

	path := writeFile(t, "mult.asm", mult)
	image := filepath.Join(t.TempDir(), "mult.ls8")

	out := &bytes.Buffer{}
	err := ls8(&options{output: image}, path, out)
	assert.NoError(err)
	assert.Equal("", out.String())

	// The written image runs the same.
	err = ls8(&options{}, image, out)
	assert.NoError(err)
	assert.Equal("72\n", out.String())

	text, err := os.ReadFile(image)
	assert.NoError(err)
	assert.True(strings.HasPrefix(string(text), "10000010 # LDI R0 8\n"))
}

func TestLs8Errors(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}

	err := ls8(&options{}, filepath.Join(t.TempDir(), "missing.ls8"), out)
	assert.True(os.IsNotExist(errors.Cause(err)))

	path := writeFile(t, "bad.asm", []string{"LDI R9,1"})
	err = ls8(&options{}, path, out)
	assert.ErrorIs(err, cpu.ErrRegisterInvalid)
	assert.Contains(err.Error(), path)

	path = writeFile(t, "loop.asm", []string{"Loop: LDI R0,Loop", "JMP R0"})
	err = ls8(&options{maxTicks: 100}, path, out)
	assert.ErrorIs(err, emulator.ErrTickLimit)

	path = writeFile(t, "unknown.ls8", []string{"00001111"})
	err = ls8(&options{}, path, out)
	assert.ErrorIs(err, cpu.ErrUnknownInstruction)
}
