package rewrite

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/sirkon/safemath/internal/directive"
	"github.com/sirkon/safemath/internal/rules"
)

// compound rewrites target op= value and target++/-- so that the target
// location is evaluated exactly once:
//
//	{
//		tmp := &target
//		*tmp = rt.Unwrap(rt.Add(*tmp, value))
//	}
//
// Map elements are not addressable, the map and the key are bound instead:
//
//	{
//		m, k := x, key
//		m[k] = rt.Unwrap(rt.Add(m[k], value))
//	}
//
// Where a simple statement is required only identifier targets are
// supported, they are assigned directly.
func (r *rewriter) compound(s ast.Stmt, target, value ast.Expr, tok token.Token, simple bool) ast.Stmt {
	op, _ := directive.FromToken(tok)
	k, typ := r.cls.compound(target, value)
	switch k {
	case kindUnsupported:
		r.rep.Report(
			rules.UnsupportedOperand(),
			fmt.Sprintf("operand type %s has no checked %s", typ, op),
			s.Pos(),
		)
		return r.compoundChildren(s)
	case kindSkip:
		return r.compoundChildren(s)
	}

	if !r.checked {
		r.rep.Report(rules.ArithmeticInClosure(), "", s.Pos())
		return r.compoundChildren(s)
	}

	if simple {
		id, ok := ast.Unparen(target).(*ast.Ident)
		if !ok {
			r.rep.Report(rules.ComplexTargetInSimpleStatement(), "", s.Pos())
			return r.compoundChildren(s)
		}

		return &ast.AssignStmt{
			Lhs:    []ast.Expr{id},
			TokPos: s.Pos(),
			Tok:    token.ASSIGN,
			Rhs:    []ast.Expr{r.checkedCall(op, k, id, r.expr(value), s)},
		}
	}

	if r.cls.isMapIndex(target) {
		return r.compoundMap(ast.Unparen(target).(*ast.IndexExpr), value, op, k, s)
	}

	pos := s.Pos()
	tmp := r.names.Name(r.opts.TempPrefix)
	deref := func() ast.Expr {
		return &ast.StarExpr{Star: pos, X: &ast.Ident{NamePos: pos, Name: tmp}}
	}

	bind := &ast.AssignStmt{
		Lhs:    []ast.Expr{&ast.Ident{NamePos: pos, Name: tmp}},
		TokPos: pos,
		Tok:    token.DEFINE,
		Rhs:    []ast.Expr{&ast.UnaryExpr{OpPos: pos, Op: token.AND, X: r.expr(target)}},
	}
	store := &ast.AssignStmt{
		Lhs:    []ast.Expr{deref()},
		TokPos: pos,
		Tok:    token.ASSIGN,
		Rhs:    []ast.Expr{r.checkedCall(op, k, deref(), r.expr(value), s)},
	}
	return &ast.BlockStmt{
		Lbrace: pos,
		List:   []ast.Stmt{bind, store},
	}
}

func (r *rewriter) compoundMap(ix *ast.IndexExpr, value ast.Expr, op directive.Op, k kind, s ast.Stmt) ast.Stmt {
	pos := s.Pos()
	m := r.names.Name(r.opts.TempPrefix)
	key := r.names.Name(r.opts.TempPrefix)
	elem := func() ast.Expr {
		return &ast.IndexExpr{
			X:      &ast.Ident{NamePos: pos, Name: m},
			Lbrack: pos,
			Index:  &ast.Ident{NamePos: pos, Name: key},
			Rbrack: pos,
		}
	}

	bind := &ast.AssignStmt{
		Lhs:    []ast.Expr{&ast.Ident{NamePos: pos, Name: m}, &ast.Ident{NamePos: pos, Name: key}},
		TokPos: pos,
		Tok:    token.DEFINE,
		Rhs:    []ast.Expr{r.expr(ix.X), r.expr(ix.Index)},
	}
	store := &ast.AssignStmt{
		Lhs:    []ast.Expr{elem()},
		TokPos: pos,
		Tok:    token.ASSIGN,
		Rhs:    []ast.Expr{r.checkedCall(op, k, elem(), r.expr(value), s)},
	}
	return &ast.BlockStmt{
		Lbrace: pos,
		List:   []ast.Stmt{bind, store},
	}
}

// compoundChildren keeps the statement as is, rewriting its operands only.
func (r *rewriter) compoundChildren(s ast.Stmt) ast.Stmt {
	switch s := s.(type) {
	case *ast.IncDecStmt:
		x := r.expr(s.X)
		if x == s.X {
			return s
		}
		c := *s
		c.X = x
		return &c
	case *ast.AssignStmt:
		lhs, rhs := r.exprs(s.Lhs), r.exprs(s.Rhs)
		if sameSlice(lhs, s.Lhs) && sameSlice(rhs, s.Rhs) {
			return s
		}
		c := *s
		c.Lhs, c.Rhs = lhs, rhs
		return &c
	default:
		return s
	}
}
