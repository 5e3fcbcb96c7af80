package safemath

// Adder is a type with checked addition.
type Adder[T any] interface {
	CheckedAdd(rhs T) (T, error)
}

// Subtractor is a type with checked subtraction.
type Subtractor[T any] interface {
	CheckedSub(rhs T) (T, error)
}

// Multiplier is a type with checked multiplication.
type Multiplier[T any] interface {
	CheckedMul(rhs T) (T, error)
}

// Divider is a type with checked division.
type Divider[T any] interface {
	CheckedDiv(rhs T) (T, error)
}

// Remainderer is a type with checked remainder.
type Remainderer[T any] interface {
	CheckedRem(rhs T) (T, error)
}

// Ops bundles all five capabilities. Generated derivations always implement
// the whole set, failing with NotImplemented for operations that were not
// requested.
type Ops[T any] interface {
	Adder[T]
	Subtractor[T]
	Multiplier[T]
	Divider[T]
	Remainderer[T]
}

// AddOps is Add for types implementing Ops.
func AddOps[T Ops[T]](a, b T) (T, error) { return a.CheckedAdd(b) }

// SubOps is Sub for types implementing Ops.
func SubOps[T Ops[T]](a, b T) (T, error) { return a.CheckedSub(b) }

// MulOps is Mul for types implementing Ops.
func MulOps[T Ops[T]](a, b T) (T, error) { return a.CheckedMul(b) }

// DivOps is Div for types implementing Ops.
func DivOps[T Ops[T]](a, b T) (T, error) { return a.CheckedDiv(b) }

// RemOps is Rem for types implementing Ops.
func RemOps[T Ops[T]](a, b T) (T, error) { return a.CheckedRem(b) }
