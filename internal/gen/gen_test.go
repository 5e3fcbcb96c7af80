package gen

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sirkon/safemath/internal/config"
	"github.com/sirkon/safemath/internal/rewrite"
	"github.com/sirkon/safemath/internal/rules"
)

const moneySource = `//go:build safemath

// Package money keeps amounts.
package money

//safemath:derive(add)
type Amount int64

// TryAdd adds amounts unless the sum overflows.
func (a Amount) TryAdd(rhs Amount) (Amount, bool) {
	s := a + rhs
	return s, (s > a) == (rhs > 0)
}

//safemath:checked
func Total(xs []Amount) (Amount, error) {
	var s Amount
	for _, x := range xs {
		s += x
	}
	return s, nil
}

//safemath:checked
func Scale(a, k int64) (int64, error) {
	return a * k, nil
}
`

// module creates a module with a single package made of files.
func module(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	files["go.mod"] = "module example.com/money\n\ngo 1.22\n"
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func generator(dir string, cfg config.Config, opts ...Option) *Generator {
	opts = append([]Option{
		WithDir(dir),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithNamer(rewrite.NewSequentialNamer),
	}, opts...)
	return New(cfg, opts...)
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestGenerateSuffix(t *testing.T) {
	dir := module(t, map[string]string{"money.go": moneySource})

	res, err := generator(dir, config.Default()).Run(context.Background(), ".")
	require.NoError(t, err)
	require.Len(t, res.Outputs, 2)

	rewritten := readFile(t, filepath.Join(dir, "money_safemath.go"))
	require.True(
		t,
		strings.HasPrefix(rewritten, "// Code generated by safemath. DO NOT EDIT.\n\n//go:build !safemath\n\n// Package money keeps amounts.\npackage money\n"),
		rewritten,
	)
	require.Contains(t, rewritten, `import "github.com/sirkon/safemath"`)
	require.Contains(t, rewritten, "func Total(xs []Amount) (_ Amount, smerr2 error) {")
	require.Contains(t, rewritten, "*smtmp1 = safemath.Unwrap(safemath.AddOps(*smtmp1, x))")
	require.Contains(t, rewritten, "func Scale(a, k int64) (_ int64, smerr3 error) {")
	require.Contains(t, rewritten, "return safemath.Unwrap(safemath.Mul(a, k)), nil")
	require.NotContains(t, rewritten, "//safemath:checked")

	derived := readFile(t, filepath.Join(dir, "safemath_derive.go"))
	require.Contains(t, derived, "func (lhs Amount) CheckedAdd(rhs Amount) (Amount, error) {")
	require.Contains(t, derived, "var _ safemath.Ops[Amount] = *new(Amount)")

	// The source is kept intact.
	require.Equal(t, moneySource, readFile(t, filepath.Join(dir, "money.go")))
}

func TestGenerateDryRun(t *testing.T) {
	dir := module(t, map[string]string{"money.go": moneySource})

	res, err := generator(dir, config.Default(), WithDryRun(true)).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Outputs, 2)

	for _, out := range res.Outputs {
		require.NotEmpty(t, out.Content)
		_, err := os.Stat(out.Path)
		require.ErrorIs(t, err, os.ErrNotExist)
	}
}

func TestGenerateInplace(t *testing.T) {
	const src = `//go:build safemath

package money

//safemath:checked
func Scale(a, k int64) (int64, error) {
	return a * k, nil
}
`
	dir := module(t, map[string]string{"money.go": src})
	cfg := config.Default()
	cfg.Output = config.OutputInplace

	res, err := generator(dir, cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Outputs, 1)

	rewritten := readFile(t, filepath.Join(dir, "money.go"))
	require.True(t, strings.HasPrefix(rewritten, "package money\n"), rewritten)
	require.Contains(t, rewritten, "return safemath.Unwrap(safemath.Mul(a, k)), nil")
}

func TestGenerateHaltsOnDiagnostics(t *testing.T) {
	const src = `//go:build safemath

package money

//safemath:checked
func Scale(a, k int64) int64 {
	return a * k
}

//safemath:derive(add, add)
type Amount int64
`
	dir := module(t, map[string]string{"money.go": src})

	res, err := generator(dir, config.Default()).Run(context.Background())
	require.ErrorIs(t, err, ErrDiagnostics)
	require.Empty(t, res.Outputs)

	var got []rules.Rule
	for _, rep := range res.Diagnostics.Reports() {
		got = append(got, rep.RuleCode)
	}
	require.Equal(t, []rules.Rule{rules.CheckedNeedsErrorResult(), rules.DeriveDuplicate()}, got)

	_, err = os.Stat(filepath.Join(dir, "money_safemath.go"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenerateRewriteDiagnostics(t *testing.T) {
	const src = `//go:build safemath

package money

//safemath:checked
func Apply(xs []int) (int, error) {
	f := func(v int) int { return v * 2 }
	return f(xs[0]), nil
}
`
	dir := module(t, map[string]string{"money.go": src})

	res, err := generator(dir, config.Default()).Run(context.Background())
	require.ErrorIs(t, err, ErrDiagnostics)
	require.Empty(t, res.Outputs)
	require.Equal(t, 1, res.Diagnostics.Len())
	require.Equal(t, rules.ArithmeticInClosure(), res.Diagnostics.Reports()[0].RuleCode)
}

func TestGenerateRemovesStaleDeriveFile(t *testing.T) {
	dir := module(t, map[string]string{
		"money.go":           "package money\n\ntype Amount int64\n",
		"safemath_derive.go": "// Code generated by safemath. DO NOT EDIT.\n\npackage money\n",
	})

	res, err := generator(dir, config.Default()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Outputs, 1)
	require.True(t, res.Outputs[0].Remove)

	_, err = os.Stat(filepath.Join(dir, "safemath_derive.go"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenerateInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Tag = ""

	_, err := New(cfg).Run(context.Background())
	require.Error(t, err)
}

var inventedName = regexp.MustCompile(`\b(sm(?:tmp|err))_[0-9a-f]{8}_[0-9]+\b`)

// normalizeNames replaces invented names with ones numbered in order of
// appearance, so that outputs of different processes can be compared.
func normalizeNames(src string) string {
	seen := map[string]string{}
	return inventedName.ReplaceAllStringFunc(src, func(name string) string {
		if v, ok := seen[name]; ok {
			return v
		}
		v := inventedName.FindStringSubmatch(name)[1] + "_" + strconv.Itoa(len(seen)+1)
		seen[name] = v
		return v
	})
}

// TestGenerateExamples regenerates packages under examples and compares
// the result with what is committed there.
func TestGenerateExamples(t *testing.T) {
	type test struct {
		name  string
		files []string
	}

	tests := []test{
		{name: "ledger", files: []string{"ledger_safemath.go", "safemath_derive.go"}},
		{name: "vector", files: []string{"safemath_derive.go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, err := filepath.Abs(filepath.Join("..", "..", "examples", tt.name))
			require.NoError(t, err)

			res, err := New(
				config.Default(),
				WithDir(dir),
				WithDryRun(true),
				WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			).Run(context.Background(), ".")
			require.NoError(t, err)

			got := map[string]string{}
			for _, out := range res.Outputs {
				require.False(t, out.Remove, out.Path)
				got[filepath.Base(out.Path)] = string(out.Content)
			}
			require.Len(t, got, len(tt.files))

			for _, name := range tt.files {
				require.Contains(t, got, name)
				require.Equal(
					t,
					normalizeNames(readFile(t, filepath.Join(dir, name))),
					normalizeNames(got[name]),
					"examples/%s/%s is out of date, run safemath gen there", tt.name, name,
				)
			}
		})
	}
}
