package rewrite

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"slices"

	"github.com/sirkon/safemath/internal/diag"
	"github.com/sirkon/safemath/internal/directive"
	"github.com/sirkon/safemath/internal/rules"
)

// rewriter is a functional fold over statements and expressions: it never
// modifies its input, nodes on the path to a rewritten one are shallow
// copies and untouched subtrees are shared.
type rewriter struct {
	rt    string // runtime package reference name
	names Namer
	cls   *classifier
	rep   diag.Reporter
	opts  Options

	checked bool // arithmetic is rewritten in the current scope, otherwise reported
	used    int  // checked calls produced in the current scope
}

// ---------- Expressions ----------

func (r *rewriter) expr(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.BinaryExpr:
		return r.binary(e)
	case *ast.ParenExpr:
		x := r.expr(e.X)
		if x == e.X {
			return e
		}
		if _, ok := e.X.(*ast.BinaryExpr); ok {
			if _, ok := x.(*ast.CallExpr); ok {
				return x
			}
		}
		c := *e
		c.X = x
		return &c
	case *ast.UnaryExpr:
		x := r.expr(e.X)
		if x == e.X {
			return e
		}
		c := *e
		c.X = x
		return &c
	case *ast.StarExpr:
		x := r.expr(e.X)
		if x == e.X {
			return e
		}
		c := *e
		c.X = x
		return &c
	case *ast.SelectorExpr:
		x := r.expr(e.X)
		if x == e.X {
			return e
		}
		c := *e
		c.X = x
		return &c
	case *ast.TypeAssertExpr:
		x := r.expr(e.X)
		if x == e.X {
			return e
		}
		c := *e
		c.X = x
		return &c
	case *ast.CallExpr:
		return r.call(e)
	case *ast.IndexExpr:
		x, idx := r.expr(e.X), r.expr(e.Index)
		if x == e.X && idx == e.Index {
			return e
		}
		c := *e
		c.X, c.Index = x, idx
		return &c
	case *ast.IndexListExpr:
		x := r.expr(e.X)
		if x == e.X {
			return e
		}
		c := *e
		c.X = x
		return &c
	case *ast.SliceExpr:
		x, lo, hi, mx := r.expr(e.X), r.expr(e.Low), r.expr(e.High), r.expr(e.Max)
		if x == e.X && lo == e.Low && hi == e.High && mx == e.Max {
			return e
		}
		c := *e
		c.X, c.Low, c.High, c.Max = x, lo, hi, mx
		return &c
	case *ast.KeyValueExpr:
		k, v := r.expr(e.Key), r.expr(e.Value)
		if k == e.Key && v == e.Value {
			return e
		}
		c := *e
		c.Key, c.Value = k, v
		return &c
	case *ast.CompositeLit:
		elts := r.exprs(e.Elts)
		if sameSlice(elts, e.Elts) {
			return e
		}
		c := *e
		c.Elts = elts
		return &c
	case *ast.FuncLit:
		return r.funcLit(e)
	default:
		// Identifiers, literals and type expressions.
		return e
	}
}

func (r *rewriter) exprs(list []ast.Expr) []ast.Expr {
	var res []ast.Expr
	for i, e := range list {
		ne := r.expr(e)
		if ne != e && res == nil {
			res = slices.Clone(list)
		}
		if res != nil {
			res[i] = ne
		}
	}
	if res == nil {
		return list
	}
	return res
}

func (r *rewriter) call(e *ast.CallExpr) ast.Expr {
	fun, args := r.expr(e.Fun), r.exprs(e.Args)
	if fun == e.Fun && sameSlice(args, e.Args) {
		return e
	}

	c := *e
	c.Fun, c.Args = fun, args
	return &c
}

func (r *rewriter) binary(e *ast.BinaryExpr) ast.Expr {
	if r.cls.constant(e) {
		return e
	}

	k := kindSkip
	op, arith := directive.FromToken(e.Op)
	if arith {
		var typ types.Type
		k, typ = r.cls.binary(e)
		if k == kindUnsupported {
			r.rep.Report(
				rules.UnsupportedOperand(),
				fmt.Sprintf("operand type %s has no checked %s", typ, op),
				e.OpPos,
			)
		}
	}

	x, y := r.expr(e.X), r.expr(e.Y)
	if k == kindBuiltin || k == kindOps {
		if r.checked {
			return r.checkedCall(op, k, x, y, e)
		}
		r.rep.Report(rules.ArithmeticInClosure(), "", e.OpPos)
	}

	if x == e.X && y == e.Y {
		return e
	}
	c := *e
	c.X, c.Y = x, y
	return &c
}

// checkedCall builds <rt>.Unwrap(<rt>.<Op>(x, y)) spanning the source of
// the replaced node.
func (r *rewriter) checkedCall(op directive.Op, k kind, x, y ast.Expr, src ast.Node) ast.Expr {
	r.used++

	fn := op.Func()
	if k == kindOps {
		fn = op.OpsFunc()
	}
	pos, end := src.Pos(), src.End()-1
	return &ast.CallExpr{
		Fun:    r.runtimeSel("Unwrap", pos),
		Lparen: pos,
		Args: []ast.Expr{
			&ast.CallExpr{
				Fun:    r.runtimeSel(fn, pos),
				Lparen: pos,
				Args:   []ast.Expr{x, y},
				Rparen: end,
			},
		},
		Rparen: end,
	}
}

func (r *rewriter) runtimeSel(name string, pos token.Pos) *ast.SelectorExpr {
	return &ast.SelectorExpr{
		X:   &ast.Ident{NamePos: pos, Name: r.rt},
		Sel: ast.NewIdent(name),
	}
}

func (r *rewriter) funcLit(e *ast.FuncLit) ast.Expr {
	if resultsEndWithError(r.cls, e.Type) {
		ft, body := r.function(e.Type, e.Body)
		if ft == e.Type && body == e.Body {
			return e
		}
		return &ast.FuncLit{Type: ft, Body: body}
	}

	// A literal without an error result cannot stop on failure: its
	// arithmetic is reported, nested literals returning error still
	// get rewritten.
	saved := r.checked
	r.checked = false
	body := r.block(e.Body)
	r.checked = saved
	if body == e.Body {
		return e
	}
	c := *e
	c.Body = body
	return &c
}

// ---------- Statements ----------

func (r *rewriter) block(b *ast.BlockStmt) *ast.BlockStmt {
	if b == nil {
		return nil
	}

	list := r.stmts(b.List)
	if sameSlice(list, b.List) {
		return b
	}
	c := *b
	c.List = list
	return &c
}

func (r *rewriter) stmts(list []ast.Stmt) []ast.Stmt {
	var res []ast.Stmt
	for i, s := range list {
		ns := r.stmt(s)
		if ns != s && res == nil {
			res = slices.Clone(list)
		}
		if res != nil {
			res[i] = ns
		}
	}
	if res == nil {
		return list
	}
	return res
}

// simpleStmt rewrites statements in positions where only a simple statement
// is allowed: init and post statements of if, switch and for.
func (r *rewriter) simpleStmt(s ast.Stmt) ast.Stmt {
	switch s := s.(type) {
	case *ast.AssignStmt:
		if _, ok := directive.FromToken(s.Tok); ok && len(s.Lhs) == 1 {
			return r.compound(s, s.Lhs[0], s.Rhs[0], s.Tok, true)
		}
	case *ast.IncDecStmt:
		return r.compound(s, s.X, one(s.TokPos), s.Tok, true)
	}
	return r.stmt(s)
}

func (r *rewriter) stmt(s ast.Stmt) ast.Stmt {
	switch s := s.(type) {
	case nil:
		return nil
	case *ast.ExprStmt:
		x := r.expr(s.X)
		if x == s.X {
			return s
		}
		return &ast.ExprStmt{X: x}
	case *ast.SendStmt:
		ch, v := r.expr(s.Chan), r.expr(s.Value)
		if ch == s.Chan && v == s.Value {
			return s
		}
		c := *s
		c.Chan, c.Value = ch, v
		return &c
	case *ast.IncDecStmt:
		return r.compound(s, s.X, one(s.TokPos), s.Tok, false)
	case *ast.AssignStmt:
		if _, ok := directive.FromToken(s.Tok); ok && len(s.Lhs) == 1 {
			return r.compound(s, s.Lhs[0], s.Rhs[0], s.Tok, false)
		}
		lhs, rhs := r.exprs(s.Lhs), r.exprs(s.Rhs)
		if sameSlice(lhs, s.Lhs) && sameSlice(rhs, s.Rhs) {
			return s
		}
		c := *s
		c.Lhs, c.Rhs = lhs, rhs
		return &c
	case *ast.GoStmt:
		call := r.call(s.Call).(*ast.CallExpr)
		if call == s.Call {
			return s
		}
		c := *s
		c.Call = call
		return &c
	case *ast.DeferStmt:
		call := r.call(s.Call).(*ast.CallExpr)
		if call == s.Call {
			return s
		}
		c := *s
		c.Call = call
		return &c
	case *ast.ReturnStmt:
		res := r.exprs(s.Results)
		if sameSlice(res, s.Results) {
			return s
		}
		c := *s
		c.Results = res
		return &c
	case *ast.BlockStmt:
		return r.block(s)
	case *ast.IfStmt:
		init, cond, body, els := r.simpleStmt(s.Init), r.expr(s.Cond), r.block(s.Body), r.stmt(s.Else)
		if init == s.Init && cond == s.Cond && body == s.Body && els == s.Else {
			return s
		}
		c := *s
		c.Init, c.Cond, c.Body, c.Else = init, cond, body, els
		return &c
	case *ast.CaseClause:
		list, body := r.exprs(s.List), r.stmts(s.Body)
		if sameSlice(list, s.List) && sameSlice(body, s.Body) {
			return s
		}
		c := *s
		c.List, c.Body = list, body
		return &c
	case *ast.SwitchStmt:
		init, tag, body := r.simpleStmt(s.Init), r.expr(s.Tag), r.block(s.Body)
		if init == s.Init && tag == s.Tag && body == s.Body {
			return s
		}
		c := *s
		c.Init, c.Tag, c.Body = init, tag, body
		return &c
	case *ast.TypeSwitchStmt:
		init, assign, body := r.simpleStmt(s.Init), r.stmt(s.Assign), r.block(s.Body)
		if init == s.Init && assign == s.Assign && body == s.Body {
			return s
		}
		c := *s
		c.Init, c.Assign, c.Body = init, assign, body
		return &c
	case *ast.CommClause:
		comm, body := r.simpleStmt(s.Comm), r.stmts(s.Body)
		if comm == s.Comm && sameSlice(body, s.Body) {
			return s
		}
		c := *s
		c.Comm, c.Body = comm, body
		return &c
	case *ast.SelectStmt:
		body := r.block(s.Body)
		if body == s.Body {
			return s
		}
		c := *s
		c.Body = body
		return &c
	case *ast.ForStmt:
		init, cond, post, body := r.simpleStmt(s.Init), r.expr(s.Cond), r.simpleStmt(s.Post), r.block(s.Body)
		if init == s.Init && cond == s.Cond && post == s.Post && body == s.Body {
			return s
		}
		c := *s
		c.Init, c.Cond, c.Post, c.Body = init, cond, post, body
		return &c
	case *ast.RangeStmt:
		key, value, x, body := r.expr(s.Key), r.expr(s.Value), r.expr(s.X), r.block(s.Body)
		if key == s.Key && value == s.Value && x == s.X && body == s.Body {
			return s
		}
		c := *s
		c.Key, c.Value, c.X, c.Body = key, value, x, body
		return &c
	case *ast.LabeledStmt:
		st := r.stmt(s.Stmt)
		if st == s.Stmt {
			return s
		}
		c := *s
		c.Stmt = st
		return &c
	case *ast.DeclStmt:
		return r.declStmt(s)
	default:
		// Branch, empty and bad statements.
		return s
	}
}

// declStmt rewrites initializers of variable declarations. Constants and
// types are evaluated at compile time and stay as they are.
func (r *rewriter) declStmt(s *ast.DeclStmt) ast.Stmt {
	gd, ok := s.Decl.(*ast.GenDecl)
	if !ok || gd.Tok != token.VAR {
		return s
	}

	var specs []ast.Spec
	for i, spec := range gd.Specs {
		vs := spec.(*ast.ValueSpec)
		values := r.exprs(vs.Values)
		if sameSlice(values, vs.Values) {
			continue
		}
		if specs == nil {
			specs = slices.Clone(gd.Specs)
		}
		c := *vs
		c.Values = values
		specs[i] = &c
	}
	if specs == nil {
		return s
	}

	d := *gd
	d.Specs = specs
	return &ast.DeclStmt{Decl: &d}
}

func one(pos token.Pos) ast.Expr {
	return &ast.BasicLit{ValuePos: pos, Kind: token.INT, Value: "1"}
}

func sameSlice[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
