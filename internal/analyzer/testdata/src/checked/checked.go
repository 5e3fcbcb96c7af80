package checked // want "SM030"

//safemath:checked
func Add(a, b int) (int, error) {
	return a + b, nil
}

//safemath:checked
func NoError(a, b int) int { // want "SM001"
	return a + b
}

//safemath:checked
func External(a, b int) (int, error) // want "SM002"

//safemath:checked
func Closure(xs []int) (int, error) {
	double := func(v int) int { return v * 2 } // want "SM020: ArithmeticInClosure: in function literal of Closure"
	return double(xs[0]), nil
}

//safemath:checked
func Loop(xs []int) (int, error) {
	for i := 0; i < len(xs); xs[0]++ { // want "SM021"
		return i + 1, nil
	}
	return 0, nil
}

//safemath:checked
func Concat[T interface{ ~int | ~string }](a, b T) (T, error) {
	return a + b, nil // want "SM031: UnsupportedOperand: in Concat"
}

//safemath:checked
func Recovered(a, b int) (v int, err error) {
	defer func() { // want "SM022: DeferObservesError: in Recovered: deferred call recovers from panics"
		if recover() != nil {
			v = 0
		}
	}()
	return a * b, nil
}

func Unchecked(a, b int) int {
	//safemath:checked // want "SM003"
	v := a * b
	return v
}

//safemath:frobnicate // want "SM004"
var limit = 10
