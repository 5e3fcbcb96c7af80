// Package analyzer reports safemath rule violations as a go/analysis pass,
// so that they show up in editors and vet runs before generation.
//
// Annotated sources are usually guarded by a build tag, run the vet tool
// with the same tag to see them:
//
//	go vet -vettool=$(which safemath-vet) -tags safemath ./...
package analyzer

import (
	"fmt"
	"go/ast"
	"go/token"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/sirkon/safemath/internal/config"
	"github.com/sirkon/safemath/internal/rewrite"
	"github.com/sirkon/safemath/internal/rules"
	"github.com/sirkon/safemath/internal/scope"
	"github.com/sirkon/safemath/internal/validate"
)

const doc = `safemath checks checked arithmetic directives

It reports misplaced and malformed //safemath:checked and //safemath:derive
directives, derive requests the type cannot satisfy and arithmetic that
cannot be rewritten into checked calls.`

// Analyzer is the safemath analysis pass.
var Analyzer = &analysis.Analyzer{
	Name:     "safemath",
	Doc:      doc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var tag string

func init() {
	Analyzer.Flags.StringVar(&tag, "tag", config.Default().Tag, "build tag files with checked functions must require, empty to skip the check")
}

func run(pass *analysis.Pass) (any, error) {
	pector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	var files []*ast.File
	pector.Preorder([]ast.Node{(*ast.File)(nil)}, func(node ast.Node) {
		f := node.(*ast.File)
		if ast.IsGenerated(f) {
			return
		}
		files = append(files, f)
	})

	rep := &reporter{
		pass: pass,
		seen: map[reportKey]bool{},
	}
	res := validate.Package(pass.Fset, files, pass.TypesInfo, pass.Pkg, validate.Options{Tag: tag}, rep)

	opts := rewrite.Options{
		Package: pass.Pkg,
		Derived: res.Derived,
	}
	for _, file := range res.Checked {
		rep.funcs = scope.Build(file)
		rep.file = file
		rewrite.File(pass.Fset, file, pass.TypesInfo, opts, rep)
	}

	return nil, nil
}

type reportKey struct {
	rule rules.Rule
	pos  token.Pos
}

// reporter turns rule violations into diagnostics. Signature issues are
// found by both validation and rewriting, they are reported once.
type reporter struct {
	pass *analysis.Pass
	seen map[reportKey]bool

	// Set while rewriting a file.
	file  *ast.File
	funcs *scope.Index
}

func (r *reporter) Report(rule rules.Rule, message string, pos token.Pos) {
	key := reportKey{rule: rule, pos: pos}
	if r.seen[key] {
		return
	}
	r.seen[key] = true

	if message == "" {
		message = rule.Description()
	}
	if where := r.where(pos); where != "" {
		message = where + ": " + message
	}

	r.pass.Report(analysis.Diagnostic{
		Pos:      pos,
		Category: rule.String(),
		Message:  fmt.Sprintf("%s: %s", rule, message),
	})
}

// where names the function scope of a rewrite diagnostic.
func (r *reporter) where(pos token.Pos) string {
	if r.funcs == nil {
		return ""
	}

	inner := r.funcs.Innermost(pos)
	if inner == nil {
		return ""
	}
	if fd, ok := inner.(*ast.FuncDecl); ok {
		return "in " + fd.Name.Name
	}

	for _, decl := range r.file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if ok && fd.Pos() <= pos && pos < fd.End() {
			return "in function literal of " + fd.Name.Name
		}
	}
	return "in function literal"
}
