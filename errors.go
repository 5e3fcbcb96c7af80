package safemath

import "fmt"

// ErrorKind is the complete failure taxonomy of checked operations.
// It implements error itself, so callers match failures with errors.Is:
//
//	if errors.Is(err, safemath.Overflow) { … }
type ErrorKind int

const (
	errorKindInvalid ErrorKind = iota

	// Overflow means the exact result does not fit the operand type.
	Overflow

	// DivisionByZero means an integer or derived division or remainder got a zero divisor.
	DivisionByZero

	// NonFinite means a floating point operation produced an infinity or NaN.
	NonFinite

	// NotImplemented means the operation was not requested when the type derived its capabilities.
	NotImplemented
)

var errorKindValueMap = map[ErrorKind]string{
	Overflow:       "overflow",
	DivisionByZero: "division by zero",
	NonFinite:      "non-finite result",
	NotImplemented: "operation not implemented",
}

func (k ErrorKind) String() string {
	v, ok := errorKindValueMap[k]
	if !ok {
		return fmt.Sprintf("invalid(%d)", k)
	}

	return v
}

// Error implements error.
func (k ErrorKind) Error() string {
	return "checked arithmetic: " + k.String()
}
