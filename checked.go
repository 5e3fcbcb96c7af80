package safemath

import (
	"math"
	"reflect"

	"golang.org/x/exp/constraints"
)

// number is the closed set of types with built-in checked arithmetic.
type number interface {
	constraints.Integer | constraints.Float
}

// Number is the constraint of the checked free functions. It cannot be
// implemented outside of the built-in integer and float kinds.
type Number interface {
	number
}

// Add returns a + b.
func Add[T Number](a, b T) (T, error) {
	r := a + b
	if isFloat[T]() {
		return finite(r)
	}

	if isSigned[T]() {
		if (b > 0 && r < a) || (b < 0 && r > a) {
			return 0, Overflow
		}
		return r, nil
	}

	if r < a {
		return 0, Overflow
	}
	return r, nil
}

// Sub returns a - b.
func Sub[T Number](a, b T) (T, error) {
	r := a - b
	if isFloat[T]() {
		return finite(r)
	}

	if isSigned[T]() {
		if (b > 0 && r > a) || (b < 0 && r < a) {
			return 0, Overflow
		}
		return r, nil
	}

	if a < b {
		return 0, Overflow
	}
	return r, nil
}

// Mul returns a * b.
func Mul[T Number](a, b T) (T, error) {
	if isFloat[T]() {
		return finite(a * b)
	}

	if a == 0 || b == 0 {
		return 0, nil
	}

	if isSigned[T]() && ((a == minusOne[T]() && isMinSigned(b)) || (b == minusOne[T]() && isMinSigned(a))) {
		return 0, Overflow
	}

	r := a * b
	if r/b != a {
		return 0, Overflow
	}
	return r, nil
}

// Div returns a / b. Integer division truncates toward zero.
func Div[T Number](a, b T) (T, error) {
	if isFloat[T]() {
		return finite(a / b)
	}

	if err := checkDivisor(a, b); err != nil {
		return 0, err
	}
	return a / b, nil
}

// Rem returns the remainder of a / b with the sign of a. Float remainder
// is computed the way math.Mod does it.
func Rem[T Number](a, b T) (T, error) {
	if isFloat[T]() {
		return finite(T(math.Mod(float64(a), float64(b))))
	}

	if err := checkDivisor(a, b); err != nil {
		return 0, err
	}
	return a - (a/b)*b, nil
}

func checkDivisor[T Number](a, b T) error {
	if b == 0 {
		return DivisionByZero
	}
	if isSigned[T]() && b == minusOne[T]() && isMinSigned(a) {
		return Overflow
	}

	return nil
}

func finite[T Number](r T) (T, error) {
	f := float64(r)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, NonFinite
	}

	return r, nil
}

func isFloat[T Number]() bool {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func isSigned[T Number]() bool {
	var zero T
	return zero-1 < zero
}

// minusOne is -1 of T. It wraps to the maximum for unsigned types, so only
// signed paths use it.
func minusOne[T Number]() T {
	var one T = 1
	return -one
}

// isMinSigned reports whether x is the minimum of a signed integer type:
// the only non-zero value equal to its own negation.
func isMinSigned[T Number](x T) bool {
	return x != 0 && x == -x
}
