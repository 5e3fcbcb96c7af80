// Package rewrite turns functions marked with //safemath:checked into
// functions where every arithmetic operation is checked.
//
// Every binary +, -, *, / and % on built-in numeric operands becomes
//
//	safemath.Unwrap(safemath.Add(x, y))
//
// innermost first, and operands of types implementing the capability set
// are dispatched through AddOps .. RemOps instead. Compound assignments and
// inc/dec statements evaluate their target once, see compound. The rewritten
// function defers safemath.Catch first, so the first failure stops it and
// comes out as its error result.
//
// Constant expressions, strings and complex numbers are left alone.
package rewrite

import (
	"go/ast"
	"go/token"
	"go/types"
	"path"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/sirkon/safemath/internal/config"
	"github.com/sirkon/safemath/internal/diag"
	"github.com/sirkon/safemath/internal/directive"
)

// Options of a file rewrite.
type Options struct {
	Runtime    config.Runtime
	TempPrefix string
	ErrPrefix  string

	// Namer invents names for temporaries and error results, NewNamer is used when nil.
	Namer Namer

	// Package is the package of the file. Derived names are looked up in it when set.
	Package *types.Package

	// Derived holds names of package types with a derive directive. Their
	// capability methods may not exist yet.
	Derived map[string]bool
}

// OptionsFromConfig returns rewrite options built from generator settings.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Runtime:    cfg.Runtime,
		TempPrefix: cfg.TempPrefix,
		ErrPrefix:  cfg.ErrPrefix,
	}
}

// File rewrites checked functions of the file and reports whether anything
// changed. The input file is not modified, info may be nil.
func File(fset *token.FileSet, file *ast.File, info *types.Info, opts Options, rep diag.Reporter) (*ast.File, bool) {
	if !hasChecked(file) {
		return file, false
	}

	defaults := OptionsFromConfig(config.Default())
	if opts.Runtime.Path == "" {
		opts.Runtime = defaults.Runtime
	}
	if opts.TempPrefix == "" {
		opts.TempPrefix = defaults.TempPrefix
	}
	if opts.ErrPrefix == "" {
		opts.ErrPrefix = defaults.ErrPrefix
	}

	names := opts.Namer
	if names == nil {
		names = NewNamer(file)
	}

	rt, imported := runtimeName(file, opts.Runtime, names)
	r := &rewriter{
		rt:    rt,
		names: names,
		cls: &classifier{
			info:    info,
			pkg:     opts.Package,
			derived: opts.Derived,
		},
		rep:  rep,
		opts: opts,
	}

	res := *file
	res.Decls = make([]ast.Decl, len(file.Decls))
	res.Imports = slices.Clone(file.Imports)
	changed := false
	for i, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if !directive.IsChecked(d) {
				res.Decls[i] = d
				continue
			}

			nd := r.funcDecl(d)
			changed = changed || nd != d
			res.Decls[i] = nd
		case *ast.GenDecl:
			if d.Tok != token.IMPORT {
				res.Decls[i] = d
				continue
			}

			// Imports may be changed in place by astutil.
			c := *d
			c.Specs = slices.Clone(d.Specs)
			res.Decls[i] = &c
		default:
			res.Decls[i] = decl
		}
	}
	var docs map[*ast.CommentGroup]*ast.CommentGroup
	res.Comments, docs = dropDirectives(file.Comments, directive.KindChecked)
	for i, decl := range res.Decls {
		res.Decls[i] = withDoc(decl, docs)
	}

	if changed && !imported {
		if rt == path.Base(opts.Runtime.Path) {
			astutil.AddImport(fset, &res, opts.Runtime.Path)
		} else {
			astutil.AddNamedImport(fset, &res, rt, opts.Runtime.Path)
		}
	}

	return &res, changed
}

// HasChecked reports whether the file has functions marked for rewriting.
func HasChecked(file *ast.File) bool {
	return hasChecked(file)
}

func hasChecked(file *ast.File) bool {
	for _, decl := range file.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && directive.IsChecked(fd) {
			return true
		}
	}
	return false
}

// runtimeName returns the name the file refers to the runtime package with
// and whether the package is already imported under it.
func runtimeName(file *ast.File, rt config.Runtime, names Namer) (string, bool) {
	for _, imp := range file.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil || p != rt.Path {
			continue
		}

		if imp.Name == nil {
			return rt.Name, true
		}
		if imp.Name.Name != "_" && imp.Name.Name != "." {
			return imp.Name.Name, true
		}
	}

	if identifiers(file)[rt.Name] {
		return names.Name(rt.Name), false
	}
	return rt.Name, false
}

// dropDirectives returns comment groups without directives of the given kind
// and the replacements of groups it changed, nil for dropped ones. Groups
// left with nothing but empty comment lines are dropped.
//
// Kept comments of a changed group take the positions of its last comments,
// so that a doc comment stays attached to its declaration.
func dropDirectives(groups []*ast.CommentGroup, kind directive.Kind) ([]*ast.CommentGroup, map[*ast.CommentGroup]*ast.CommentGroup) {
	res := make([]*ast.CommentGroup, 0, len(groups))
	replaced := map[*ast.CommentGroup]*ast.CommentGroup{}
	for _, g := range groups {
		var list []*ast.Comment
		for _, c := range g.List {
			if d, ok := directive.Parse(c); ok && d.Kind == kind {
				continue
			}
			list = append(list, c)
		}
		for len(list) < len(g.List) && len(list) > 0 && strings.TrimSpace(list[len(list)-1].Text) == "//" {
			list = list[:len(list)-1]
		}

		switch {
		case len(list) == len(g.List):
			res = append(res, g)
		case len(list) > 0:
			ng := &ast.CommentGroup{List: make([]*ast.Comment, len(list))}
			shift := len(g.List) - len(list)
			for i, c := range list {
				ng.List[i] = &ast.Comment{Slash: g.List[shift+i].Slash, Text: c.Text}
			}
			res = append(res, ng)
			replaced[g] = ng
		default:
			replaced[g] = nil
		}
	}
	return res, replaced
}

// withDoc returns the declaration with its doc comment replaced.
func withDoc(decl ast.Decl, docs map[*ast.CommentGroup]*ast.CommentGroup) ast.Decl {
	fd, ok := decl.(*ast.FuncDecl)
	if !ok || fd.Doc == nil {
		return decl
	}
	doc, ok := docs[fd.Doc]
	if !ok {
		return decl
	}

	c := *fd
	c.Doc = doc
	return &c
}
