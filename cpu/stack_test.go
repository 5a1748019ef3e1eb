package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack_Push(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	_, ok := m.Peek()
	assert.False(ok)
	assert.Equal(0, m.StackDepth())

	m.push(0x12)
	assert.Equal(1, m.StackDepth())
	assert.Equal(uint8(STACK_TOP-1), m.Register[SP])
	assert.Equal(uint8(0x12), m.Memory[STACK_TOP-1])
}

func TestStack_Pop(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	m.push(0x12)
	m.push(0xab)

	val, ok := m.Peek()
	assert.True(ok)
	assert.Equal(uint8(0xab), val)
	assert.Equal(2, m.StackDepth())

	assert.Equal(uint8(0xab), m.pop())
	assert.Equal(uint8(0x12), m.pop())
	assert.Equal(0, m.StackDepth())
	assert.Equal(uint8(STACK_TOP), m.Register[SP])
}

func TestStack_Pop_Empty(t *testing.T) {
	assert := assert.New(t)

	// Popping an empty stack reads the byte at STACK_TOP.
	m := NewMachine()
	m.Memory[STACK_TOP] = 0x77
	assert.Equal(uint8(0x77), m.pop())
	assert.Equal(uint8(STACK_TOP+1), m.Register[SP])

	_, ok := m.Peek()
	assert.False(ok)
}

func TestStack_Program(t *testing.T) {
	assert := assert.New(t)

	// stack.ls8: LDI R0,1; LDI R1,2; PUSH R0; PUSH R1; LDI R0,3; POP R0; PRN R0;
	// PUSH R0; LDI R0,4; PUSH R0; POP R2; POP R1; PRN R2; PRN R1; HLT
	m, out := newTestMachine(t,
		0b10000010, 0b00000000, 0b00000001,
		0b10000010, 0b00000001, 0b00000010,
		0b01000101, 0b00000000,
		0b01000101, 0b00000001,
		0b10000010, 0b00000000, 0b00000011,
		0b01000110, 0b00000000,
		0b01000111, 0b00000000,
		0b01000101, 0b00000000,
		0b10000010, 0b00000000, 0b00000100,
		0b01000101, 0b00000000,
		0b01000110, 0b00000010,
		0b01000110, 0b00000001,
		0b01000111, 0b00000010,
		0b01000111, 0b00000001,
		0b00000001,
	)

	assert.NoError(m.Run())
	assert.Equal([]uint8{2, 4, 2}, printed(out))
	assert.Equal(1, m.StackDepth())
}
