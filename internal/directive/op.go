package directive

import (
	"fmt"
	"go/token"
)

// Op is an arithmetic operation kind subject to checking.
type Op int

const (
	opInvalid Op = iota

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
)

var opValueMap = map[Op]string{
	OpAdd: "add",
	OpSub: "sub",
	OpMul: "mul",
	OpDiv: "div",
	OpRem: "rem",
}

// Ops lists every operation kind in canonical order.
func Ops() []Op {
	return []Op{OpAdd, OpSub, OpMul, OpDiv, OpRem}
}

func (o Op) String() string {
	v, ok := opValueMap[o]
	if !ok {
		return fmt.Sprintf("invalid(%d)", o)
	}

	return v
}

// UnmarshalText for setting values with configs, directives, etc.
func (o *Op) UnmarshalText(rawtext []byte) error {
	text := string(rawtext)
	for k, v := range opValueMap {
		if v == text {
			*o = k
			return nil
		}
	}

	return fmt.Errorf("unknown operation %q", text)
}

// Func is the name of the checked runtime function for built-in numeric types.
func (o Op) Func() string {
	switch o {
	case OpAdd:
		return "Add"
	case OpSub:
		return "Sub"
	case OpMul:
		return "Mul"
	case OpDiv:
		return "Div"
	case OpRem:
		return "Rem"
	default:
		return ""
	}
}

// OpsFunc is the name of the runtime dispatcher for types implementing the capability set.
func (o Op) OpsFunc() string {
	if f := o.Func(); f != "" {
		return f + "Ops"
	}
	return ""
}

// Method is the name of the capability method.
func (o Op) Method() string {
	if f := o.Func(); f != "" {
		return "Checked" + f
	}
	return ""
}

// Primitive is the name of the user method a derived capability delegates to.
func (o Op) Primitive() string {
	if f := o.Func(); f != "" {
		return "Try" + f
	}
	return ""
}

// Divides reports whether the operation has a divisor that can be zero.
func (o Op) Divides() bool {
	return o == OpDiv || o == OpRem
}

// Token returns the binary operator token of the operation.
func (o Op) Token() token.Token {
	switch o {
	case OpAdd:
		return token.ADD
	case OpSub:
		return token.SUB
	case OpMul:
		return token.MUL
	case OpDiv:
		return token.QUO
	case OpRem:
		return token.REM
	default:
		return token.ILLEGAL
	}
}

// FromToken maps binary, compound assignment and inc/dec tokens to operations.
func FromToken(tok token.Token) (Op, bool) {
	switch tok {
	case token.ADD, token.ADD_ASSIGN, token.INC:
		return OpAdd, true
	case token.SUB, token.SUB_ASSIGN, token.DEC:
		return OpSub, true
	case token.MUL, token.MUL_ASSIGN:
		return OpMul, true
	case token.QUO, token.QUO_ASSIGN:
		return OpDiv, true
	case token.REM, token.REM_ASSIGN:
		return OpRem, true
	default:
		return opInvalid, false
	}
}
