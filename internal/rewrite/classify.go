package rewrite

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/sirkon/safemath/internal/directive"
)

// kind tells how an arithmetic operation is checked.
type kind int

const (
	kindSkip        kind = iota // not subject to checking
	kindBuiltin                 // built-in integer or float, runtime free function
	kindOps                     // capability implementation, runtime Ops dispatcher
	kindUnsupported             // arithmetic on a type with no checked implementation
)

var errorType = types.Universe.Lookup("error").Type()

// classifier decides how arithmetic is checked. It relies on type
// information when available and falls back to syntax otherwise.
type classifier struct {
	info    *types.Info
	pkg     *types.Package
	derived map[string]bool
}

// constant reports whether the expression is evaluated at compile time.
func (c *classifier) constant(e ast.Expr) bool {
	if c.info != nil {
		if tv, ok := c.info.Types[e]; ok {
			return tv.Value != nil
		}
	}
	return syntacticConstant(e)
}

// binary classifies a binary arithmetic expression.
func (c *classifier) binary(e *ast.BinaryExpr) (kind, types.Type) {
	if t := c.operandType(e, e.X, e.Y); t != nil {
		return c.kindOf(t), t
	}

	if isStringLit(e.X) || isStringLit(e.Y) {
		return kindSkip, nil
	}
	return kindBuiltin, nil
}

// compound classifies an op= or inc/dec statement by its target.
func (c *classifier) compound(target, value ast.Expr) (kind, types.Type) {
	if t := c.operandType(target, value); t != nil {
		return c.kindOf(t), t
	}

	if isStringLit(value) {
		return kindSkip, nil
	}
	return kindBuiltin, nil
}

// operandType returns the first typed (not untyped, not invalid) type among exprs.
func (c *classifier) operandType(exprs ...ast.Expr) types.Type {
	if c.info == nil {
		return nil
	}

	for _, e := range exprs {
		t := c.info.TypeOf(e)
		if t == nil {
			continue
		}
		if b, ok := t.(*types.Basic); ok && (b.Kind() == types.Invalid || b.Info()&types.IsUntyped != 0) {
			continue
		}
		return t
	}
	return nil
}

// kindOf picks the Ops dispatchers only for types with the whole capability
// set, since they are constrained by it. Numeric types with a partial set
// are checked as built-ins.
func (c *classifier) kindOf(t types.Type) kind {
	if c.isDerived(t) || hasCapabilities(t) {
		return kindOps
	}

	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch {
		case u.Info()&(types.IsInteger|types.IsFloat) != 0:
			return kindBuiltin
		case u.Info()&(types.IsString|types.IsComplex|types.IsBoolean) != 0:
			return kindSkip
		}
	case *types.Interface:
		if _, ok := t.(*types.TypeParam); ok && numericTypeSet(u) {
			return kindBuiltin
		}
	}

	return kindUnsupported
}

func (c *classifier) isDerived(t types.Type) bool {
	n, ok := types.Unalias(t).(*types.Named)
	if !ok || !c.derived[n.Obj().Name()] {
		return false
	}
	return c.pkg == nil || n.Obj().Pkg() == c.pkg
}

// isMapIndex reports whether the expression indexes a map.
func (c *classifier) isMapIndex(e ast.Expr) bool {
	ix, ok := ast.Unparen(e).(*ast.IndexExpr)
	if !ok || c.info == nil {
		return false
	}

	t := c.info.TypeOf(ix.X)
	if t == nil {
		return false
	}
	_, ok = coreType(t).(*types.Map)
	return ok
}

// coreType returns the underlying type shared by every type in the type set
// of a type parameter, or the underlying type of any other type. It returns
// nil when there is no such type.
func coreType(t types.Type) types.Type {
	tp, ok := t.(*types.TypeParam)
	if !ok {
		return t.Underlying()
	}

	var core types.Type
	ok = eachTerm(tp.Constraint().Underlying(), func(term types.Type) bool {
		u := term.Underlying()
		if core == nil {
			core = u
			return true
		}
		return types.Identical(core, u)
	})
	if !ok {
		return nil
	}
	return core
}

// eachTerm calls fn for every type term of a constraint. It returns false
// when fn does or when the constraint has no type terms.
func eachTerm(t types.Type, fn func(types.Type) bool) bool {
	switch t := t.(type) {
	case *types.Union:
		for i := range t.Len() {
			if !eachTerm(t.Term(i).Type(), fn) {
				return false
			}
		}
		return t.Len() > 0
	case *types.Interface:
		found := false
		for i := range t.NumEmbeddeds() {
			if !eachTerm(t.EmbeddedType(i), fn) {
				return false
			}
			found = true
		}
		return found
	case *types.TypeParam:
		return eachTerm(t.Constraint().Underlying(), fn)
	}

	if iface, ok := t.Underlying().(*types.Interface); ok {
		return eachTerm(iface, fn)
	}
	return fn(t)
}

// isError reports whether a type expression denotes the error interface.
func (c *classifier) isError(e ast.Expr) bool {
	if c.info != nil {
		if t := c.info.TypeOf(e); t != nil && t != types.Typ[types.Invalid] {
			return types.Identical(t, errorType)
		}
	}

	id, ok := e.(*ast.Ident)
	return ok && id.Name == "error"
}

func hasMethod(t types.Type, name string) bool {
	obj, _, _ := types.LookupFieldOrMethod(t, false, nil, name)
	_, ok := obj.(*types.Func)
	return ok
}

func hasCapabilities(t types.Type) bool {
	for _, op := range directive.Ops() {
		if !hasMethod(t, op.Method()) {
			return false
		}
	}
	return true
}

// numericTypeSet reports whether the constraint admits built-in integer and
// float types only.
func numericTypeSet(iface *types.Interface) bool {
	for i := range iface.NumEmbeddeds() {
		if numericTerm(iface.EmbeddedType(i)) {
			return true
		}
	}
	return false
}

func numericTerm(t types.Type) bool {
	switch t := t.(type) {
	case *types.Union:
		for i := range t.Len() {
			if !numericTerm(t.Term(i).Type()) {
				return false
			}
		}
		return t.Len() > 0
	}

	switch u := t.Underlying().(type) {
	case *types.Basic:
		return u.Info()&(types.IsInteger|types.IsFloat) != 0
	case *types.Interface:
		return numericTypeSet(u)
	default:
		return false
	}
}

func syntacticConstant(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.BasicLit:
		return true
	case *ast.ParenExpr:
		return syntacticConstant(e.X)
	case *ast.UnaryExpr:
		return syntacticConstant(e.X)
	case *ast.BinaryExpr:
		return syntacticConstant(e.X) && syntacticConstant(e.Y)
	default:
		return false
	}
}

func isStringLit(e ast.Expr) bool {
	lit, ok := ast.Unparen(e).(*ast.BasicLit)
	return ok && lit.Kind == token.STRING
}
