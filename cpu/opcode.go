package cpu

import (
	"fmt"
	"strings"
)

// Opcode is the instruction-identifying byte, laid out as AABCDDDD.
//
//	AA   - operand count (0, 1 or 2)
//	B    - ALU operation
//	C    - instruction sets the PC itself
//	DDDD - instruction identifier
type Opcode uint8

const (
	OP_NOP  = Opcode(0b00000000) // NOP
	OP_HLT  = Opcode(0b00000001) // HLT
	OP_RET  = Opcode(0b00010001) // RET
	OP_PUSH = Opcode(0b01000101) // PUSH
	OP_POP  = Opcode(0b01000110) // POP
	OP_PRN  = Opcode(0b01000111) // PRN
	OP_CALL = Opcode(0b01010000) // CALL
	OP_JMP  = Opcode(0b01010100) // JMP
	OP_JEQ  = Opcode(0b01010101) // JEQ
	OP_JNE  = Opcode(0b01010110) // JNE
	OP_INC  = Opcode(0b01100101) // INC
	OP_DEC  = Opcode(0b01100110) // DEC
	OP_LDI  = Opcode(0b10000010) // LDI
	OP_ADD  = Opcode(0b10100000) // ADD
	OP_SUB  = Opcode(0b10100001) // SUB
	OP_MUL  = Opcode(0b10100010) // MUL
	OP_DIV  = Opcode(0b10100011) // DIV
	OP_MOD  = Opcode(0b10100100) // MOD
	OP_CMP  = Opcode(0b10100111) // CMP
	OP_AND  = Opcode(0b10101000) // AND
	OP_OR   = Opcode(0b10101010) // OR
	OP_XOR  = Opcode(0b10101011) // XOR
	OP_SHL  = Opcode(0b10101100) // SHL
	OP_SHR  = Opcode(0b10101101) // SHR
)

// opcodeName maps every opcode of the instruction set to its mnemonic.
var opcodeName = map[Opcode]string{
	OP_NOP:  "NOP",
	OP_HLT:  "HLT",
	OP_RET:  "RET",
	OP_PUSH: "PUSH",
	OP_POP:  "POP",
	OP_PRN:  "PRN",
	OP_CALL: "CALL",
	OP_JMP:  "JMP",
	OP_JEQ:  "JEQ",
	OP_JNE:  "JNE",
	OP_INC:  "INC",
	OP_DEC:  "DEC",
	OP_LDI:  "LDI",
	OP_ADD:  "ADD",
	OP_SUB:  "SUB",
	OP_MUL:  "MUL",
	OP_DIV:  "DIV",
	OP_MOD:  "MOD",
	OP_CMP:  "CMP",
	OP_AND:  "AND",
	OP_OR:   "OR",
	OP_XOR:  "XOR",
	OP_SHL:  "SHL",
	OP_SHR:  "SHR",
}

// opcodeByName is the reverse of opcodeName.
var opcodeByName = func() map[string]Opcode {
	names := make(map[string]Opcode, len(opcodeName))
	for op, name := range opcodeName {
		names[name] = op
	}
	return names
}()

// Lookup returns the opcode for a mnemonic, ignoring case.
func Lookup(name string) (op Opcode, ok bool) {
	op, ok = opcodeByName[strings.ToUpper(name)]
	return
}

// OperandCount returns the number of operand bytes following the opcode.
func (op Opcode) OperandCount() int {
	return int(op >> 6)
}

// Size returns the instruction length in bytes.
func (op Opcode) Size() int {
	return 1 + op.OperandCount()
}

// IsAlu returns true if the instruction is dispatched to the ALU.
func (op Opcode) IsAlu() bool {
	return (op>>5)&1 == 1
}

// SetsPc returns true if the instruction sets the PC itself.
func (op Opcode) SetsPc() bool {
	return (op>>4)&1 == 1
}

// Id returns the instruction identifier bits.
func (op Opcode) Id() uint8 {
	return uint8(op & 0xf)
}

// Known returns true if the opcode is part of the instruction set.
func (op Opcode) Known() bool {
	_, ok := opcodeName[op]
	return ok
}

// String returns the mnemonic, or the binary encoding for unknown opcodes.
func (op Opcode) String() string {
	name, ok := opcodeName[op]
	if !ok {
		return fmt.Sprintf("%08b", uint8(op))
	}
	return name
}

// Disassemble renders the instruction at the start of code in assembly syntax.
func Disassemble(code []byte) (text string, size int) {
	if len(code) == 0 {
		return
	}

	op := Opcode(code[0])
	size = op.Size()
	if !op.Known() {
		text = fmt.Sprintf("DB 0b%08b", code[0])
		size = 1
		return
	}

	args := make([]string, 0, 2)
	for n := 1; n < size; n++ {
		var arg uint8
		if n < len(code) {
			arg = code[n]
		}
		if op == OP_LDI && n == 2 {
			args = append(args, fmt.Sprintf("%d", arg))
		} else {
			args = append(args, fmt.Sprintf("R%d", arg))
		}
	}

	text = op.String()
	if len(args) > 0 {
		text += " " + strings.Join(args, ",")
	}

	return
}
