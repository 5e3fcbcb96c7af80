// Package validate checks directives of a loaded package before anything
// is generated out of it.
package validate

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"github.com/sirkon/safemath/internal/buildtag"
	"github.com/sirkon/safemath/internal/config"
	"github.com/sirkon/safemath/internal/diag"
	"github.com/sirkon/safemath/internal/directive"
	"github.com/sirkon/safemath/internal/rewrite"
	"github.com/sirkon/safemath/internal/rules"
	"github.com/sirkon/safemath/internal/scope"
)

// Target is a type with a valid derive request.
type Target struct {
	File    *ast.File
	Spec    *ast.TypeSpec
	Request directive.Derive

	// Object is nil when the package was loaded without type information.
	Object *types.TypeName
}

// Name returns the name of the type.
func (t Target) Name() string {
	return t.Spec.Name.Name
}

// Result of a package validation.
type Result struct {
	Targets []Target

	// Derived holds names of every type with a derive directive, valid or not.
	Derived map[string]bool

	// Checked holds files with checked functions.
	Checked []*ast.File
}

// Options of a validation.
type Options struct {
	// Tag is the build tag files with checked functions must require.
	// The constraint is not checked when it is empty.
	Tag string
}

// OptionsFromConfig returns validation options for the generator settings.
func OptionsFromConfig(cfg config.Config) Options {
	opts := Options{}
	if cfg.Output == config.OutputSuffix {
		opts.Tag = cfg.Tag
	}
	return opts
}

// Package validates directives of package files. info and pkg may be nil.
func Package(
	fset *token.FileSet,
	files []*ast.File,
	info *types.Info,
	pkg *types.Package,
	opts Options,
	rep diag.Reporter,
) *Result {
	v := &validator{
		fset: fset,
		info: info,
		pkg:  pkg,
		opts: opts,
		rep:  rep,
		res: &Result{
			Derived: map[string]bool{},
		},
	}

	for _, file := range files {
		v.file(file)
	}
	return v.res
}

type validator struct {
	fset *token.FileSet
	info *types.Info
	pkg  *types.Package
	opts Options
	rep  diag.Reporter
	res  *Result
}

func (v *validator) file(file *ast.File) {
	placed := map[token.Pos]bool{}
	checked := false

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			dir, ok := directive.Lookup(d.Doc, directive.KindChecked)
			if !ok {
				continue
			}

			placed[dir.Pos] = true
			checked = true
			v.checkedFunc(d)
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts := spec.(*ast.TypeSpec)
				dir, ok := directive.Lookup(directive.TypeDoc(d, ts), directive.KindDerive)
				if !ok {
					continue
				}

				placed[dir.Pos] = true
				v.derive(file, ts, dir)
			}
		}
	}

	v.misplaced(file, placed)

	if checked {
		v.res.Checked = append(v.res.Checked, file)
		v.constraint(file)
	}
}

func (v *validator) checkedFunc(fd *ast.FuncDecl) {
	if fd.Body == nil {
		v.rep.Report(
			rules.CheckedWithoutBody(),
			fmt.Sprintf("checked function %s has no body", fd.Name.Name),
			fd.Name.Pos(),
		)
		return
	}

	if !rewrite.ResultsEndWithError(v.info, fd.Type) {
		v.rep.Report(
			rules.CheckedNeedsErrorResult(),
			fmt.Sprintf("checked function %s must return error as its last result", fd.Name.Name),
			fd.Name.Pos(),
		)
	}
}

// misplaced reports directives found anywhere but where they apply.
func (v *validator) misplaced(file *ast.File, placed map[token.Pos]bool) {
	var funcs *scope.Index
	for _, g := range file.Comments {
		for _, c := range g.List {
			d, ok := directive.Parse(c)
			if !ok || placed[d.Pos] {
				continue
			}

			where := ""
			if funcs == nil {
				funcs = scope.Build(file)
			}
			if n := funcs.Innermost(d.Pos); n != nil {
				where = " inside " + funcName(n)
			}

			switch d.Kind {
			case directive.KindChecked:
				v.rep.Report(
					rules.CheckedMisplaced(),
					fmt.Sprintf("checked directive%s is not attached to a function declaration", where),
					d.Pos,
				)
			case directive.KindDerive:
				v.rep.Report(
					rules.DeriveMisplaced(),
					fmt.Sprintf("derive directive%s is not attached to a type declaration", where),
					d.Pos,
				)
			default:
				v.rep.Report(
					rules.UnknownDirective(),
					fmt.Sprintf("unknown directive %s%s", directive.Prefix, d.Name),
					d.Pos,
				)
			}
		}
	}
}

func (v *validator) constraint(file *ast.File) {
	if v.opts.Tag == "" {
		return
	}

	expr, ok := buildtag.Find(file)
	if ok && buildtag.Requires(expr, v.opts.Tag) {
		return
	}

	msg := fmt.Sprintf("file with checked functions must start with //go:build %s", v.opts.Tag)
	if ok {
		msg = fmt.Sprintf("build constraint %q must require the %s tag", expr.String(), v.opts.Tag)
	}
	v.rep.Report(rules.MissingBuildConstraint(), msg, file.Package)
}

func funcName(n ast.Node) string {
	if fd, ok := n.(*ast.FuncDecl); ok {
		return "function " + fd.Name.Name
	}
	return "function literal"
}
