package cpu

// The stack lives in memory below STACK_TOP, addressed by R7.
// Neither push nor pop checks for overflow; the stack pointer wraps
// around the 256 byte address space.

func (m *Machine) push(value uint8) {
	m.Register[SP]--
	m.MemoryWrite(m.Register[SP], value)
}

func (m *Machine) pop() (value uint8) {
	value = m.MemoryRead(m.Register[SP])
	m.Register[SP]++
	return
}

// Peek returns the value on top of the stack, if the stack pointer is
// below its initial position.
func (m *Machine) Peek() (value uint8, ok bool) {
	if m.Register[SP] >= STACK_TOP {
		return
	}

	return m.MemoryRead(m.Register[SP]), true
}

// StackDepth returns the number of bytes pushed below STACK_TOP.
func (m *Machine) StackDepth() int {
	return int(uint8(STACK_TOP - m.Register[SP]))
}
