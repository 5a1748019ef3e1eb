package cpu

// instruction executes a non-ALU opcode given its two operand bytes.
// Handlers of opcodes with the C bit set leave the PC at its next value.
type instruction func(m *Machine, a, b uint8) error

// instructions is the dispatch table installed by NewMachine.
var instructions = map[Opcode]instruction{
	OP_NOP:  (*Machine).opNop,
	OP_HLT:  (*Machine).opHlt,
	OP_LDI:  (*Machine).opLdi,
	OP_PRN:  (*Machine).opPrn,
	OP_PUSH: (*Machine).opPush,
	OP_POP:  (*Machine).opPop,
	OP_CALL: (*Machine).opCall,
	OP_RET:  (*Machine).opRet,
	OP_JMP:  (*Machine).opJmp,
	OP_JEQ:  (*Machine).opJeq,
	OP_JNE:  (*Machine).opJne,
}

func (m *Machine) opNop(a, b uint8) (err error) {
	return
}

func (m *Machine) opHlt(a, b uint8) (err error) {
	m.Running = false
	return
}

func (m *Machine) opLdi(a, b uint8) (err error) {
	*m.reg(a) = b
	return
}

func (m *Machine) opPrn(a, b uint8) (err error) {
	if m.Output == nil {
		err = ErrOutputMissing
		return
	}
	err = m.Output.Send(*m.reg(a))
	return
}

func (m *Machine) opPush(a, b uint8) (err error) {
	m.push(*m.reg(a))
	return
}

func (m *Machine) opPop(a, b uint8) (err error) {
	*m.reg(a) = m.pop()
	return
}

// opCall pushes the address after its operand, then jumps.
// The target is read after the push, so CALL R7 sees the new stack pointer.
func (m *Machine) opCall(a, b uint8) (err error) {
	m.push(m.Pc + 2)
	m.Pc = *m.reg(a)
	return
}

func (m *Machine) opRet(a, b uint8) (err error) {
	m.Pc = m.pop()
	return
}

func (m *Machine) opJmp(a, b uint8) (err error) {
	m.Pc = *m.reg(a)
	return
}

func (m *Machine) opJeq(a, b uint8) (err error) {
	if m.Fl&FL_EQUAL != 0 {
		m.Pc = *m.reg(a)
	} else {
		m.Pc += 2
	}
	return
}

func (m *Machine) opJne(a, b uint8) (err error) {
	if m.Fl&FL_EQUAL == 0 {
		m.Pc = *m.reg(a)
	} else {
		m.Pc += 2
	}
	return
}
