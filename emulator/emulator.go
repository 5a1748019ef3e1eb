// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator runs LS8 programs: it wires a machine to its output
// tape, loads either an assembled program or a raw image, and reports
// faults with the source line that caused them.
package emulator

import (
	"fmt"
	"iter"
	"maps"

	"github.com/lambdaschool/ls8/cpu"
	"github.com/lambdaschool/ls8/internal"
	"github.com/lambdaschool/ls8/io"
)

var _emulator_defines = map[string]string{
	"REGISTER_COUNT": fmt.Sprintf("%v", cpu.REGISTER_COUNT),
	"STACK_REGISTER": fmt.Sprintf("R%v", cpu.SP),
}

// Emulator state. Machine + program + output tape.
type Emulator struct {
	Verbose      bool         // If set, enables the per-instruction trace.
	*cpu.Machine              // Reference to the machine simulation.
	Program      *cpu.Program // Reference to the currently running program listing.
	Image        []byte       // Raw image, used when Program is empty.

	Tape io.Tape // PRN output.

	MaxTicks int // If non-zero, Tick fails after this many instructions.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Machine: cpu.NewMachine(),
		Program: &cpu.Program{},
	}

	emu.Machine.Output = &emu.Tape

	return
}

// Defines returns an iterator over all of the defines.
// Emulator defines take precedence over those of the machine.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Unique(internal.IterSeq2Concat(
		maps.All(_emulator_defines),
		emu.Machine.Defines(),
	))
}

// Assembler returns an assembler predefined with the emulator's defines.
func (emu *Emulator) Assembler() (asm *cpu.Assembler) {
	asm = &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	return
}

// Binary returns the image Reset will load.
func (emu *Emulator) Binary() []byte {
	if emu.Program != nil && len(emu.Program.Lines) > 0 {
		return emu.Program.Binary()
	}

	return emu.Image
}

// Reset loads the program into a zeroed machine.
func (emu *Emulator) Reset() (err error) {
	emu.Machine.Verbose = emu.Verbose

	err = emu.Machine.Load(emu.Binary())

	return
}

// LineNo returns the source line number for the instruction at the PC,
// or 0 if there is no listing for it.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Machine.Pc)
	if dbg.Line == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction of the emulator.
// done is set once the machine has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Machine.Verbose = emu.Verbose

	if !emu.Machine.Running {
		done = true
		return
	}

	pc := emu.Machine.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	if emu.MaxTicks > 0 && emu.Machine.Ticks >= emu.MaxTicks {
		err = ErrTickLimit
		return
	}

	err = emu.Machine.Step()
	if err != nil {
		return
	}

	done = !emu.Machine.Running

	return
}

// Run ticks the emulator until the machine halts or faults.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}
