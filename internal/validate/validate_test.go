package validate

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sirkon/safemath/internal/config"
	"github.com/sirkon/safemath/internal/diag"
	"github.com/sirkon/safemath/internal/directive"
	"github.com/sirkon/safemath/internal/rules"
)

func validateSource(t *testing.T, src string, opts Options) (*Result, []diag.Report) {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "money.go", src, parser.ParseComments)
	require.NoError(t, err)

	conf := types.Config{
		Importer: importer.Default(),
		Error:    func(error) {},
	}
	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	pkg, _ := conf.Check(file.Name.Name, fset, []*ast.File{file}, info)

	var engine diag.ReportEngine
	res := Package(fset, []*ast.File{file}, info, pkg, opts, engine.Phase(diag.ReportValidate))
	return res, engine.Reports()
}

func codes(reps []diag.Report) []rules.Rule {
	var res []rules.Rule
	for _, rep := range reps {
		res = append(res, rep.RuleCode)
	}
	return res
}

func TestCheckedFunctions(t *testing.T) {
	const src = `//go:build safemath

package money

//safemath:checked
func good(a, b int) (int, error) { return a + b, nil }

//safemath:checked
func noError(a, b int) int { return a + b }

//safemath:checked
func external(a, b int) (int, error)

func plain() {}
`
	res, reps := validateSource(t, src, OptionsFromConfig(config.Default()))
	require.Equal(t, []rules.Rule{rules.CheckedNeedsErrorResult(), rules.CheckedWithoutBody()}, codes(reps))
	require.Contains(t, reps[0].Message, "noError")
	require.Len(t, res.Checked, 1)
}

func TestMisplacedDirectives(t *testing.T) {
	const src = `//go:build safemath

package money

//safemath:checked
type Amount int

//safemath:derive(add)
func helper() {}

//safemath:checked
func outer(a int) (int, error) {
	//safemath:checked
	v := a
	return v, nil
}

//safemath:frobnicate
var x int
`
	_, reps := validateSource(t, src, Options{Tag: "safemath"})
	require.Equal(
		t,
		[]rules.Rule{
			rules.CheckedMisplaced(),
			rules.DeriveMisplaced(),
			rules.CheckedMisplaced(),
			rules.UnknownDirective(),
		},
		codes(reps),
	)
	require.Contains(t, reps[2].Message, "inside function outer")
	require.Contains(t, reps[3].Message, "//safemath:frobnicate")
}

func TestBuildConstraint(t *testing.T) {
	type test struct {
		name       string
		constraint string
		opts       Options
		want       []rules.Rule
	}

	tests := []test{
		{
			name:       "required",
			constraint: "//go:build safemath\n\n",
			opts:       Options{Tag: "safemath"},
		},
		{
			name: "missing",
			opts: Options{Tag: "safemath"},
			want: []rules.Rule{rules.MissingBuildConstraint()},
		},
		{
			name:       "not-required",
			constraint: "//go:build safemath || linux\n\n",
			opts:       Options{Tag: "safemath"},
			want:       []rules.Rule{rules.MissingBuildConstraint()},
		},
		{
			name: "inplace",
			opts: OptionsFromConfig(config.Config{Output: config.OutputInplace, Tag: "safemath"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.constraint + `package money

//safemath:checked
func add(a, b int) (int, error) { return a + b, nil }
`
			_, reps := validateSource(t, src, tt.opts)
			require.Equal(t, tt.want, codes(reps))
		})
	}
}

func TestDerive(t *testing.T) {
	const src = `package money

//safemath:derive(add, div)
type Amount int64

func (a Amount) TryAdd(rhs Amount) (Amount, bool) { return a + rhs, true }
func (a Amount) TryDiv(rhs Amount) (Amount, bool) { return a, rhs != 0 }

type (
	//safemath:derive(sub)
	Cents int64

	//safemath:derive(add, add)
	Dup int
)

//safemath:derive(mul)
type Wrong int

func (w Wrong) TryMul(rhs int) (Wrong, bool) { return w, true }

//safemath:derive(rem)
type Bag struct{ items []int }

func (b Bag) TryRem(rhs Bag) (Bag, bool) { return b, true }

//safemath:derive(add)
type Vec[T any] struct{ x, y T }

func (v Vec[T]) TryAdd(rhs Vec[T]) (Vec[T], bool) { return v, true }
`
	res, reps := validateSource(t, src, Options{})
	require.Equal(
		t,
		[]rules.Rule{
			rules.DeriveMissingPrimitive(), // Cents
			rules.DeriveDuplicate(),        // Dup
			rules.DeriveMissingPrimitive(), // Wrong
			rules.DeriveNotComparable(),    // Bag
		},
		codes(reps),
	)
	require.Contains(t, reps[0].Message, "TrySub(rhs Cents) (Cents, bool)")

	var names []string
	for _, tgt := range res.Targets {
		names = append(names, tgt.Name())
	}
	require.Equal(t, []string{"Amount", "Vec"}, names)
	require.Equal(t, []directive.Op{directive.OpAdd, directive.OpDiv}, res.Targets[0].Request.Ops)
	require.NotNil(t, res.Targets[0].Object)

	require.Equal(
		t,
		map[string]bool{"Amount": true, "Cents": true, "Dup": true, "Wrong": true, "Bag": true, "Vec": true},
		res.Derived,
	)
	require.Empty(t, res.Checked)
}
