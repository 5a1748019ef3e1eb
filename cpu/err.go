package cpu

import (
	"errors"

	"github.com/lambdaschool/ls8/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrUnknownInstruction   = errors.New(f("unknown instruction"))
	ErrUnsupportedOperation = errors.New(f("unsupported alu operation"))
	ErrDivideByZero         = errors.New(f("divide by zero"))
	ErrImageTooLarge        = errors.New(f("image exceeds memory"))
	ErrOutputMissing        = errors.New(f("no output channel"))
	ErrHalted               = errors.New(f("halted"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrValueRange         = errors.New(f("value out of range"))
	ErrProgramTooLarge    = errors.New(f("program exceeds memory"))
)

// ErrOpcode decorates a machine fault with the instruction that caused it.
type ErrOpcode struct {
	Pc     uint8
	Opcode Opcode
}

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0b%08b (%v) at 0x%02x", uint8(eo.Opcode), eo.Opcode, eo.Pc)
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
