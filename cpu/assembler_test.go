package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assemble(t *testing.T, program ...string) (prog *Program, err error) {
	asm := &Assembler{}
	return asm.Parse(strings.NewReader(strings.Join(program, "\n")))
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Lines))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("0xf4", asm.Equate["STACK_TOP"])
	assert.Equal("256", asm.Equate["MEMORY_SIZE"])
	assert.Equal("0b001", asm.Equate["FL_EQUAL"])
}

func TestAssemblerMult(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		"; mult.asm",
		"",
		"LDI R0,8",
		"ldi r1, 9   ; lower case",
		"MUL R0,R1",
		"PRN R0",
		"HLT",
	)
	assert.NoError(err)

	assert.Equal([]byte{
		0b10000010, 0b00000000, 0b00001000,
		0b10000010, 0b00000001, 0b00001001,
		0b10100010, 0b00000000, 0b00000001,
		0b01000111, 0b00000000,
		0b00000001,
	}, prog.Binary())

	assert.Equal(5, len(prog.Lines))
	assert.Equal(Line{LineNo: 3, Address: 0, Words: []string{"LDI", "R0", "8"}, Bytes: []byte{0x82, 0, 8}}, prog.Lines[0])
	assert.Equal(4, prog.Lines[1].LineNo)
	assert.Equal(7, prog.Lines[4].LineNo)
	assert.Equal(11, prog.Lines[4].Address)
}

func TestAssemblerLabel(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		"        LDI R1,Mult2Print",
		"        LDI R0,10",
		"        CALL R1",
		"        LDI R0,15",
		"        CALL R1",
		"        HLT",
		"Mult2Print:",
		"        ADD R0,R0",
		"        PRN R0",
		"        RET",
	)
	assert.NoError(err)

	code := prog.Binary()
	assert.Equal(uint8(14), code[2])

	m, out := newTestMachine(t, code...)
	assert.NoError(m.Run())
	assert.Equal([]uint8{20, 30}, printed(out))
}

func TestAssemblerLoop(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		".equ COUNT 3",
		"        LDI R0,0",
		"        LDI R1,COUNT",
		"        LDI R2,Loop",
		"        LDI R3,Done",
		"Loop:   CMP R0,R1",
		"        JEQ R3",
		"        PRN R0",
		"        INC R0",
		"        JMP R2",
		"Done:   HLT",
	)
	assert.NoError(err)

	m, out := newTestMachine(t, prog.Binary()...)
	assert.NoError(m.Run())
	assert.Equal([]uint8{0, 1, 2}, printed(out))
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		".equ CONST_10 0x10",
		".equ COUNTER R3",
		"LDI R0,CONST_10",
		"LDI R1,$(CONST_10 + CONST_10)",
		".equ CONST_30 $(2 * CONST_10 + CONST_10)",
		"LDI R2,CONST_30",
		"LDI COUNTER,$(LINENO * 8 + 0x10)",
		"LDI R4,$(STACK_TOP - 1)",
		"LDI R5,-1",
		"LDI R6,0b101",
		"HLT",
	)
	assert.NoError(err)

	m, _ := newTestMachine(t, prog.Binary()...)
	assert.NoError(m.Run())

	assert.Equal(uint8(0x10), m.Register[0])
	assert.Equal(uint8(0x20), m.Register[1])
	assert.Equal(uint8(0x30), m.Register[2])
	assert.Equal(uint8(0x48), m.Register[3])
	assert.Equal(uint8(0xf3), m.Register[4])
	assert.Equal(uint8(0xff), m.Register[5])
	assert.Equal(uint8(5), m.Register[6])
}

func TestAssemblerData(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		"LDI R0,'A'",
		"LDI R1,'\\n'",
		"Text: DS Hello, world",
		"DB 1, 0x02, 0b11",
		"DB '*'",
	)
	assert.NoError(err)

	code := prog.Binary()
	assert.Equal([]byte{0x82, 0, 'A', 0x82, 1, '\n'}, code[:6])
	assert.Equal([]byte("Hello, world"), code[6:18])
	assert.Equal([]byte{1, 2, 3, '*'}, code[18:])

	dbg := prog.Debug(6)
	assert.Equal(3, dbg.LineNo)
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("TARGET", "R5")
	asm.Predefine("VALUE", "0x21")

	prog, err := asm.Parse(strings.NewReader("LDI TARGET,$(VALUE * 2)\nPRN TARGET\nHLT"))
	assert.NoError(err)
	assert.Equal([]byte{0x82, 5, 0x42, 0x47, 5, 0x01}, prog.Binary())

	// Predefines survive a second parse.
	prog, err = asm.Parse(strings.NewReader("LDI TARGET,VALUE"))
	assert.NoError(err)
	assert.Equal([]byte{0x82, 5, 0x21}, prog.Binary())
}

func TestAssemblerSP(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t, "PUSH SP", "POP r7")
	assert.NoError(err)
	assert.Equal([]byte{0x45, 7, 0x46, 7}, prog.Binary())
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
		lineno  int
		err     error
	}){
		{"opcode", []string{"HLT", "FOO R0"}, 2, ErrOpcodeInvalid},
		{"extra", []string{"HLT R0"}, 1, ErrOpcodeExtraArgs},
		{"missing", []string{"ADD R0"}, 1, ErrOpcodeValueMissing},
		{"register", []string{"PRN R8"}, 1, ErrRegisterInvalid},
		{"register value", []string{"PRN 3"}, 1, ErrRegisterInvalid},
		{"range", []string{"LDI R0,256"}, 1, ErrValueRange},
		{"negative", []string{"LDI R0,-129"}, 1, ErrValueRange},
		{"label dup", []string{"A: HLT", "A: HLT"}, 2, ErrLabelDuplicate},
		{"label missing", []string{"NOP", "LDI R0,Nowhere", "HLT"}, 2, ErrLabelMissing("Nowhere")},
		{"equ syntax", []string{".equ A"}, 1, ErrEquateSyntax},
		{"equ dup", []string{".equ A 1", ".equ A 2"}, 2, ErrEquateDuplicate},
		{"db empty", []string{"DB"}, 1, ErrOpcodeValueMissing},
		{"db number", []string{"DB zz"}, 1, ErrParseNumber("zz")},
		{"too large", []string{"DS " + strings.Repeat("x", 200), "DS " + strings.Repeat("y", 57)}, 2, ErrProgramTooLarge},
	}

	for _, entry := range table {
		_, err := assemble(t, entry.program...)
		assert.ErrorIs(err, entry.err, entry.name)

		var syntax ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.name) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.name)
		}
	}
}

func TestAssemblerExpressionError(t *testing.T) {
	assert := assert.New(t)

	_, err := assemble(t, "LDI R0,$(1 +)")
	assert.Error(err)

	_, err = assemble(t, "LDI R0,$(\"text\")")
	assert.ErrorIs(err, ErrParseExpression("\"text\""))
}
