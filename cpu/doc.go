// Package cpu implements the processor and assembler for the LS8 system.
//
// The LS8 is an 8-bit machine with 256 bytes of memory, eight general-purpose
// registers (R0-R7, with R7 doubling as the stack pointer), a program counter
// and a three-bit flags register set by CMP. Instructions are one to three
// bytes long, and the opcode byte itself encodes the operand count, whether
// the ALU handles it, and whether it sets the program counter.
//
// The assembler accepts LS8 mnemonics with labels, equates, data
// directives and compile-time $(...) expressions.
package cpu
