package safemath

// bailout carries a checked operation failure from Unwrap to the Catch
// deferred by the same rewritten function.
type bailout struct {
	err error
}

// Unwrap returns v when err is nil and otherwise abandons the current
// rewritten function with err. It must only be used in functions that
// deferred Catch as their first statement.
func Unwrap[T any](v T, err error) T {
	if err != nil {
		panic(bailout{err: err})
	}

	return v
}

// Catch turns a failure raised by Unwrap into the function's error result.
// resets are called after the error is stored, rewritten functions with named
// results use them to drop partially computed values. Panics not raised by
// Unwrap are passed through untouched.
//
// Catch must be deferred directly:
//
//	defer safemath.Catch(&err)
//
// Being deferred first it runs last: other deferred calls of the function
// see no failure yet and a recover in them swallows it.
func Catch(errp *error, resets ...func()) {
	r := recover()
	if r == nil {
		return
	}

	b, ok := r.(bailout)
	if !ok {
		panic(r)
	}

	*errp = b.err
	for _, reset := range resets {
		reset()
	}
}
