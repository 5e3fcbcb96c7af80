package safemath

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// cents derives only sub, written the way the derive generator emits it.
type cents int64

func (c cents) TrySub(rhs cents) (cents, bool) {
	if rhs > c {
		return 0, false
	}
	return c - rhs, true
}

func (c cents) CheckedAdd(rhs cents) (cents, error) { return 0, NotImplemented }

func (c cents) CheckedSub(rhs cents) (cents, error) {
	v, ok := c.TrySub(rhs)
	if !ok {
		return 0, Overflow
	}
	return v, nil
}

func (c cents) CheckedMul(rhs cents) (cents, error) { return 0, NotImplemented }
func (c cents) CheckedDiv(rhs cents) (cents, error) { return 0, NotImplemented }
func (c cents) CheckedRem(rhs cents) (cents, error) { return 0, NotImplemented }

var _ Ops[cents] = cents(0)

func TestOpsDispatch(t *testing.T) {
	v, err := SubOps(cents(10), cents(3))
	require.NoError(t, err)
	require.Equal(t, cents(7), v)

	_, err = SubOps(cents(3), cents(10))
	require.ErrorIs(t, err, Overflow)

	for name, fn := range map[string]func(a, b cents) (cents, error){
		"add": AddOps[cents],
		"mul": MulOps[cents],
		"div": DivOps[cents],
		"rem": RemOps[cents],
	} {
		t.Run(name, func(t *testing.T) {
			_, err := fn(1, 1)
			require.ErrorIs(t, err, NotImplemented)
		})
	}
}
