// Package safemath is the runtime side of checked arithmetic.
//
// It provides overflow, division-by-zero and non-finite aware counterparts of
// the five arithmetic operators for every built-in integer and floating-point
// type, the capability interfaces user-defined numeric types implement to take
// part in checked arithmetic, and the small propagation pair used by code the
// safemath generator produces.
//
// # Free functions
//
// Add, Sub, Mul, Div and Rem work on any type whose underlying type is a
// built-in integer or float:
//
//	v, err := safemath.Add[uint8](255, 1) // err == safemath.Overflow
//
// Integer operations fail with Overflow when the exact result does not fit
// the type, with DivisionByZero for a zero divisor and with Overflow for the
// signed minimum divided by -1. Float operations compute the plain IEEE result
// and fail with NonFinite when it is infinite or NaN.
//
// # Capabilities
//
// A user-defined type takes part in checked arithmetic by implementing Ops,
// usually through the generated methods of a
//
//	//safemath:derive(add, sub)
//
// directive. AddOps .. RemOps dispatch to these methods.
//
// # Rewritten functions
//
// A function marked with
//
//	//safemath:checked
//
// is rewritten by the safemath generator so that every arithmetic expression
// becomes a checked call. The first failure stops the function and is
// returned through its trailing error result:
//
//	func Total(a, b uint8) (_ uint8, smerr error) {
//		defer safemath.Catch(&smerr)
//		return safemath.Unwrap(safemath.Add(a, b)), nil
//	}
//
// Unwrap and Catch are only meant for generated code. The failure never
// escapes the rewritten function as a panic.
package safemath
