package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/lambdaschool/ls8/io"
)

// Channel is the output collaborator used by PRN.
type Channel io.Channel

// Memory and register file geometry.
const (
	MEMORY_SIZE    = 256  // Addressable memory cells.
	REGISTER_COUNT = 8    // General purpose registers.
	SP             = 7    // Register used as the stack pointer.
	STACK_TOP      = 0xf4 // Initial stack pointer; the stack grows down.
)

// Flag register bits, set by CMP.
const (
	FL_EQUAL   = uint8(0b001)
	FL_GREATER = uint8(0b010)
	FL_LESS    = uint8(0b100)
	FL_MASK    = uint8(0b111)
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%d", MEMORY_SIZE),
	"STACK_TOP":   fmt.Sprintf("0x%x", STACK_TOP),
	"FL_EQUAL":    fmt.Sprintf("0b%03b", FL_EQUAL),
	"FL_GREATER":  fmt.Sprintf("0b%03b", FL_GREATER),
	"FL_LESS":     fmt.Sprintf("0b%03b", FL_LESS),
}

// Machine is the simulation context for the LS8.
type Machine struct {
	Verbose bool // Set to log a trace line before every instruction.

	Memory   [MEMORY_SIZE]uint8    // RAM, addressed 0x00-0xff.
	Register [REGISTER_COUNT]uint8 // Register bank; R7 is the stack pointer.
	Pc       uint8                 // Program counter.
	Ir       Opcode                // Most recently fetched instruction.
	Fl       uint8                 // Flags from the most recent CMP.
	Running  bool                  // Cleared by HLT, or by a fatal fault.

	Ticks int // Instructions executed since reset.

	Output Channel // Receives PRN values.

	handler [256]instruction // Dispatch table for non-ALU opcodes.
}

// NewMachine creates a machine with its dispatch table installed, and
// its state reset.
func NewMachine() (m *Machine) {
	m = &Machine{}

	for op, exec := range instructions {
		m.handler[op] = exec
	}

	m.Reset()

	return
}

// Defines for the machine.
func (m *Machine) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the machine state, keeping the contents of memory.
// - Clears the registers and flags.
// - Sets the stack pointer to STACK_TOP.
// - Sets the program counter to 0.
// - Zeros the tick counter.
func (m *Machine) Reset() {
	if m.Verbose {
		log.Printf("cpu: reset")
	}

	clear(m.Register[:])
	m.Register[SP] = STACK_TOP
	m.Pc = 0
	m.Ir = OP_NOP
	m.Fl = 0
	m.Ticks = 0
	m.Running = true

	if m.Output != nil {
		m.Output.Rewind()
	}
}

// Load zeroes memory, copies image into it from address 0, and resets the machine.
func (m *Machine) Load(image []byte) (err error) {
	if len(image) > MEMORY_SIZE {
		err = ErrImageTooLarge
		return
	}

	clear(m.Memory[:])
	copy(m.Memory[:], image)

	if m.Verbose {
		log.Printf("cpu: loaded %d bytes", len(image))
	}

	m.Reset()

	return
}

// MemoryRead returns the value at addr.
func (m *Machine) MemoryRead(addr uint8) uint8 {
	return m.Memory[addr]
}

// MemoryWrite sets the value at addr.
func (m *Machine) MemoryWrite(addr uint8, value uint8) {
	m.Memory[addr] = value
}

// reg returns the register selected by an operand byte.
// Only the low three bits select the register.
func (m *Machine) reg(operand uint8) *uint8 {
	return &m.Register[operand&(REGISTER_COUNT-1)]
}

// Step executes a single fetch, decode and execute cycle.
// Any error is fatal, and leaves the machine halted.
func (m *Machine) Step() (err error) {
	if !m.Running {
		err = ErrHalted
		return
	}

	pc := m.Pc
	ir := Opcode(m.MemoryRead(pc))
	a := m.MemoryRead(pc + 1)
	b := m.MemoryRead(pc + 2)

	defer func() {
		if err != nil {
			m.Running = false
			err = errors.Join(ErrOpcode{Pc: pc, Opcode: ir}, err)
		}
	}()

	if m.Verbose {
		log.Print(m.Trace())
	}

	m.Ir = ir

	if ir.IsAlu() {
		err = m.alu(ir, a, b)
	} else {
		exec := m.handler[ir]
		if exec == nil {
			err = ErrUnknownInstruction
			return
		}
		err = exec(m, a, b)
	}
	if err != nil {
		return
	}

	if !ir.SetsPc() {
		m.Pc += uint8(ir.Size())
	}

	m.Ticks++

	return
}

// Run steps the machine until it halts, or until a fault occurs.
func (m *Machine) Run() (err error) {
	for m.Running {
		err = m.Step()
		if err != nil {
			return
		}
	}

	return
}

// alu performs the requested ALU operation on the registers selected by a and b.
func (m *Machine) alu(op Opcode, a, b uint8) (err error) {
	ra := m.reg(a)
	rb := *m.reg(b)

	switch op {
	case OP_ADD:
		*ra += rb
	case OP_SUB:
		*ra -= rb
	case OP_MUL:
		*ra *= rb
	case OP_DIV:
		if rb == 0 {
			err = ErrDivideByZero
			return
		}
		*ra /= rb
	case OP_MOD:
		if rb == 0 {
			err = ErrDivideByZero
			return
		}
		*ra %= rb
	case OP_INC:
		*ra++
	case OP_DEC:
		*ra--
	case OP_AND:
		*ra &= rb
	case OP_OR:
		*ra |= rb
	case OP_XOR:
		*ra ^= rb
	case OP_SHL:
		*ra <<= rb
	case OP_SHR:
		*ra >>= rb
	case OP_CMP:
		switch {
		case *ra < rb:
			m.Fl = FL_LESS
		case *ra > rb:
			m.Fl = FL_GREATER
		default:
			m.Fl = FL_EQUAL
		}
	default:
		err = ErrUnsupportedOperation
	}

	return
}

// Trace returns the PC, the three bytes at the PC, and the register bank
// as two-digit hex.
func (m *Machine) Trace() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "TRACE: %02X | %02X %02X %02X |",
		m.Pc,
		m.MemoryRead(m.Pc),
		m.MemoryRead(m.Pc+1),
		m.MemoryRead(m.Pc+2))

	for _, val := range m.Register {
		fmt.Fprintf(&sb, " %02X", val)
	}

	return sb.String()
}

// String returns the current machine state as a string.
func (m *Machine) String() (text string) {
	regs := []string{
		"pc", "ir", "fl",
		"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
		"stack",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%02X", m.Pc)
		case "ir":
			strval = m.Ir.String()
		case "fl":
			strval = fmt.Sprintf("%03b", m.Fl&FL_MASK)
		case "r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7":
			strval = fmt.Sprintf("%02X", m.Register[reg[1]-'0'])
		case "stack":
			val, ok := m.Peek()
			if ok {
				strval = fmt.Sprintf("%02X (depth %d)", val, m.StackDepth())
			} else {
				strval = "--"
			}
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}
