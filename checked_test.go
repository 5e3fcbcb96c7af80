package safemath

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

type checkedOp[T Number] struct {
	name  string
	fn    func(a, b T) (T, error)
	exact func(a, b *big.Int) *big.Int
}

func checkedOps[T Number]() []checkedOp[T] {
	return []checkedOp[T]{
		{name: "add", fn: Add[T], exact: func(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) }},
		{name: "sub", fn: Sub[T], exact: func(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) }},
		{name: "mul", fn: Mul[T], exact: func(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) }},
		{name: "div", fn: Div[T], exact: func(a, b *big.Int) *big.Int { return new(big.Int).Quo(a, b) }},
		{name: "rem", fn: Rem[T], exact: func(a, b *big.Int) *big.Int { return new(big.Int).Rem(a, b) }},
	}
}

// checkAgainstExact compares a checked integer operation with the exact big
// integer result for the given operands.
func checkAgainstExact[T Number](t *testing.T, op checkedOp[T], a, b T, lo, hi *big.Int) {
	t.Helper()

	got, err := op.fn(a, b)
	x, y := toBig(a), toBig(b)
	if (op.name == "div" || op.name == "rem") && y.Sign() == 0 {
		if !errors.Is(err, DivisionByZero) {
			t.Fatalf("%s(%v, %v): DivisionByZero was expected, got %v, %v", op.name, a, b, got, err)
		}
		return
	}

	// MinInt / -1 and MinInt % -1 overflow together, even though the exact
	// remainder fits.
	if (op.name == "div" || op.name == "rem") && x.Cmp(lo) == 0 && y.Cmp(big.NewInt(-1)) == 0 {
		if !errors.Is(err, Overflow) {
			t.Fatalf("%s(%v, %v): Overflow was expected, got %v, %v", op.name, a, b, got, err)
		}
		return
	}

	exact := op.exact(x, y)
	if exact.Cmp(lo) < 0 || exact.Cmp(hi) > 0 {
		if !errors.Is(err, Overflow) {
			t.Fatalf("%s(%v, %v): Overflow was expected, got %v, %v", op.name, a, b, got, err)
		}
		return
	}

	if err != nil {
		t.Fatalf("%s(%v, %v): unexpected error %v", op.name, a, b, err)
	}
	if toBig(got).Cmp(exact) != 0 {
		t.Fatalf("%s(%v, %v): %s was expected, got %v", op.name, a, b, exact, got)
	}
}

func toBig[T Number](v T) *big.Int {
	if isSigned[T]() {
		return big.NewInt(int64(v))
	}
	return new(big.Int).SetUint64(uint64(v))
}

func TestUint8Exhaustive(t *testing.T) {
	lo, hi := big.NewInt(0), big.NewInt(math.MaxUint8)
	for _, op := range checkedOps[uint8]() {
		t.Run(op.name, func(t *testing.T) {
			for a := 0; a <= math.MaxUint8; a++ {
				for b := 0; b <= math.MaxUint8; b++ {
					checkAgainstExact(t, op, uint8(a), uint8(b), lo, hi)
				}
			}
		})
	}
}

func TestInt8Exhaustive(t *testing.T) {
	lo, hi := big.NewInt(math.MinInt8), big.NewInt(math.MaxInt8)
	for _, op := range checkedOps[int8]() {
		t.Run(op.name, func(t *testing.T) {
			for a := math.MinInt8; a <= math.MaxInt8; a++ {
				for b := math.MinInt8; b <= math.MaxInt8; b++ {
					checkAgainstExact(t, op, int8(a), int8(b), lo, hi)
				}
			}
		})
	}
}

func FuzzInt64(f *testing.F) {
	f.Add(int64(10), int64(20))
	f.Add(int64(math.MinInt64), int64(-1))
	f.Add(int64(math.MaxInt64), int64(1))
	f.Add(int64(-7), int64(0))

	lo, hi := big.NewInt(math.MinInt64), big.NewInt(math.MaxInt64)
	f.Fuzz(func(t *testing.T, a, b int64) {
		for _, op := range checkedOps[int64]() {
			checkAgainstExact(t, op, a, b, lo, hi)
		}
	})
}

func FuzzUint32(f *testing.F) {
	f.Add(uint32(30), uint32(6))
	f.Add(uint32(math.MaxUint32), uint32(2))
	f.Add(uint32(0), uint32(1))

	lo, hi := big.NewInt(0), big.NewInt(math.MaxUint32)
	f.Fuzz(func(t *testing.T, a, b uint32) {
		for _, op := range checkedOps[uint32]() {
			checkAgainstExact(t, op, a, b, lo, hi)
		}
	})
}

type celsius int16

func TestNamedUnderlyingTypes(t *testing.T) {
	v, err := Add[celsius](30000, 2767)
	require.NoError(t, err)
	require.Equal(t, celsius(32767), v)

	_, err = Add[celsius](30000, 2768)
	require.ErrorIs(t, err, Overflow)
}

func TestScenarios(t *testing.T) {
	v, err := Add[uint8](10, 20)
	require.NoError(t, err)
	require.Equal(t, uint8(30), v)

	_, err = Add[uint8](255, 1)
	require.ErrorIs(t, err, Overflow)

	v, err = Div[uint8](30, 6)
	require.NoError(t, err)
	require.Equal(t, uint8(5), v)

	_, err = Div[uint8](10, 0)
	require.ErrorIs(t, err, DivisionByZero)

	_, err = Div[int32](math.MinInt32, -1)
	require.ErrorIs(t, err, Overflow)

	_, err = Rem[int32](math.MinInt32, -1)
	require.ErrorIs(t, err, Overflow)
}

func TestFloats(t *testing.T) {
	type test struct {
		name    string
		fn      func(a, b float64) (float64, error)
		a, b    float64
		want    float64
		wantErr bool
	}

	tests := []test{
		{name: "add", fn: Add[float64], a: 1.5, b: 2.25, want: 3.75},
		{name: "add-overflow", fn: Add[float64], a: math.MaxFloat64, b: math.MaxFloat64, wantErr: true},
		{name: "sub", fn: Sub[float64], a: 1, b: 3, want: -2},
		{name: "mul", fn: Mul[float64], a: -2, b: 0.5, want: -1},
		{name: "mul-overflow", fn: Mul[float64], a: 1e300, b: 1e300, wantErr: true},
		{name: "div", fn: Div[float64], a: 1, b: 4, want: 0.25},
		{name: "div-zero", fn: Div[float64], a: 1, b: 0, wantErr: true},
		{name: "div-zero-zero", fn: Div[float64], a: 0, b: 0, wantErr: true},
		{name: "rem", fn: Rem[float64], a: 7.5, b: 2, want: 1.5},
		{name: "rem-negative", fn: Rem[float64], a: -7.5, b: 2, want: -1.5},
		{name: "rem-zero", fn: Rem[float64], a: 1, b: 0, wantErr: true},
		{name: "inf-operand", fn: Add[float64], a: math.Inf(1), b: 1, wantErr: true},
		{name: "nan-operand", fn: Mul[float64], a: math.NaN(), b: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(tt.a, tt.b)
			if tt.wantErr {
				require.ErrorIs(t, err, NonFinite)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFloat32Overflow(t *testing.T) {
	_, err := Mul[float32](math.MaxFloat32, 2)
	require.ErrorIs(t, err, NonFinite)

	v, err := Rem[float32](5.5, 2)
	require.NoError(t, err)
	require.Equal(t, float32(1.5), v)
}

func TestErrorKind(t *testing.T) {
	require.Equal(t, "checked arithmetic: overflow", Overflow.Error())
	require.Equal(t, "division by zero", DivisionByZero.String())
	require.Equal(t, "invalid(42)", ErrorKind(42).String())
	require.NotErrorIs(t, NonFinite, Overflow)
}
