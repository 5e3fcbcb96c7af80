package rewrite

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"github.com/sirkon/safemath/internal/rules"
)

// ResultsEndWithError reports whether the last result of the function type
// is an error. info may be nil.
func ResultsEndWithError(info *types.Info, ft *ast.FuncType) bool {
	return resultsEndWithError(&classifier{info: info}, ft)
}

func resultsEndWithError(c *classifier, ft *ast.FuncType) bool {
	if ft.Results == nil || len(ft.Results.List) == 0 {
		return false
	}

	return c.isError(ft.Results.List[len(ft.Results.List)-1].Type)
}

func (r *rewriter) funcDecl(fd *ast.FuncDecl) *ast.FuncDecl {
	if fd.Body == nil {
		r.rep.Report(rules.CheckedWithoutBody(), "", fd.Name.Pos())
		return fd
	}
	if !resultsEndWithError(r.cls, fd.Type) {
		r.rep.Report(rules.CheckedNeedsErrorResult(), "", fd.Name.Pos())
		return fd
	}

	ft, body := r.function(fd.Type, fd.Body)
	if ft == fd.Type && body == fd.Body {
		return fd
	}

	c := *fd
	c.Type, c.Body = ft, body
	return &c
}

// function rewrites a function body that must return an error last. When
// the body got checked calls of its own, results are named, so that the
// error can be set by the deferred Catch, and Catch is deferred first.
func (r *rewriter) function(ft *ast.FuncType, body *ast.BlockStmt) (*ast.FuncType, *ast.BlockStmt) {
	savedChecked, savedUsed := r.checked, r.used
	r.checked, r.used = true, 0
	newBody := r.block(body)
	own := r.used > 0
	r.checked, r.used = savedChecked, savedUsed
	if !own {
		return ft, newBody
	}
	r.checkDefers(ft, body)

	results, errName, resets := r.results(ft.Results)
	args := []ast.Expr{&ast.UnaryExpr{Op: token.AND, X: ast.NewIdent(errName)}}
	if len(resets) > 0 {
		args = append(args, &ast.FuncLit{
			Type: &ast.FuncType{Params: &ast.FieldList{}},
			Body: &ast.BlockStmt{List: resets},
		})
	}
	catch := &ast.DeferStmt{
		Defer: newBody.Lbrace,
		Call: &ast.CallExpr{
			Fun:  r.runtimeSel("Catch", newBody.Lbrace),
			Args: args,
		},
	}

	b := *newBody
	b.List = append([]ast.Stmt{catch}, newBody.List...)
	t := *ft
	t.Results = results
	return &t, &b
}

// results names function results. Unnamed ones become _ except the error,
// which gets an invented name, and so does a blank error. Named non-blank
// results get a reset statement zeroing them on failure.
func (r *rewriter) results(fl *ast.FieldList) (*ast.FieldList, string, []ast.Stmt) {
	res := *fl
	res.List = make([]*ast.Field, len(fl.List))

	var errName string
	var resets []ast.Stmt
	for i, f := range fl.List {
		nf := *f
		last := i == len(fl.List)-1
		if len(f.Names) == 0 {
			name := "_"
			if last {
				errName = r.names.Name(r.opts.ErrPrefix)
				name = errName
			}
			nf.Names = []*ast.Ident{ast.NewIdent(name)}
			res.List[i] = &nf
			continue
		}

		nf.Names = make([]*ast.Ident, len(f.Names))
		copy(nf.Names, f.Names)
		for j, id := range f.Names {
			if last && j == len(f.Names)-1 {
				errName = id.Name
				if errName == "_" {
					errName = r.names.Name(r.opts.ErrPrefix)
					nf.Names[j] = ast.NewIdent(errName)
				}
				continue
			}

			if id.Name != "_" {
				resets = append(resets, &ast.AssignStmt{
					Lhs: []ast.Expr{ast.NewIdent(id.Name)},
					Tok: token.ASSIGN,
					Rhs: []ast.Expr{&ast.StarExpr{X: &ast.CallExpr{
						Fun:  ast.NewIdent("new"),
						Args: []ast.Expr{f.Type},
					}}},
				})
			}
		}
		res.List[i] = &nf
	}

	return &res, errName, resets
}

// checkDefers reports deferred calls that would misbehave with Catch: they
// run before it, so they see no failure in the error result, and a recover
// in them stops the failure from reaching it.
func (r *rewriter) checkDefers(ft *ast.FuncType, body *ast.BlockStmt) {
	errIdent := namedError(ft)
	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.DeferStmt:
			if what := r.observes(n.Call, errIdent); what != "" {
				r.rep.Report(rules.DeferObservesError(), fmt.Sprintf("deferred call %s", what), n.Defer)
			}
			return false
		}
		return true
	})
}

// observes tells what a deferred call does with the failure, if anything.
func (r *rewriter) observes(call *ast.CallExpr, errIdent *ast.Ident) string {
	var what string
	ast.Inspect(call, func(n ast.Node) bool {
		if what != "" {
			return false
		}

		switch n := n.(type) {
		case *ast.CallExpr:
			if r.isRecover(n.Fun) {
				what = "recovers from panics"
			}
		case *ast.Ident:
			if errIdent != nil && r.sameObject(n, errIdent) {
				what = "uses error result " + errIdent.Name
			}
		}
		return true
	})
	return what
}

// namedError returns the name of a named error result, if there is one.
func namedError(ft *ast.FuncType) *ast.Ident {
	if ft.Results == nil || len(ft.Results.List) == 0 {
		return nil
	}

	last := ft.Results.List[len(ft.Results.List)-1]
	if len(last.Names) == 0 {
		return nil
	}
	id := last.Names[len(last.Names)-1]
	if id.Name == "_" {
		return nil
	}
	return id
}

func (r *rewriter) isRecover(fun ast.Expr) bool {
	id, ok := ast.Unparen(fun).(*ast.Ident)
	if !ok || id.Name != "recover" {
		return false
	}
	if info := r.cls.info; info != nil {
		if obj, ok := info.Uses[id]; ok {
			_, builtin := obj.(*types.Builtin)
			return builtin
		}
	}
	return true
}

// sameObject reports whether use refers to the object declared by def. Names
// are compared when there is no type information.
func (r *rewriter) sameObject(use, def *ast.Ident) bool {
	if use == def || use.Name != def.Name {
		return false
	}
	if info := r.cls.info; info != nil {
		if obj := info.Defs[def]; obj != nil {
			return info.Uses[use] == obj
		}
	}
	return true
}
