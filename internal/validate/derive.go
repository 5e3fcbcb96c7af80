package validate

import (
	"fmt"
	"go/ast"
	"go/types"

	"github.com/sirkon/safemath/internal/directive"
	"github.com/sirkon/safemath/internal/rules"
)

func (v *validator) derive(file *ast.File, ts *ast.TypeSpec, dir directive.Directive) {
	v.res.Derived[ts.Name.Name] = true

	req, ok := directive.ParseDerive(dir, v.rep)
	if !ok {
		return
	}

	t := Target{
		File:    file,
		Spec:    ts,
		Request: req,
	}
	if v.info != nil {
		t.Object, _ = v.info.Defs[ts.Name].(*types.TypeName)
	}
	if t.Object != nil && !v.primitives(t) {
		return
	}

	v.res.Targets = append(v.res.Targets, t)
}

// primitives checks the type has what derived methods are built of.
func (v *validator) primitives(t Target) bool {
	typ := t.Object.Type()
	ok := true

	for _, op := range t.Request.Ops {
		if !hasPrimitive(typ, v.pkg, op) {
			v.rep.Report(
				rules.DeriveMissingPrimitive(),
				fmt.Sprintf(
					"type %s derives %s but has no method %s(rhs %s) (%s, bool)",
					t.Name(), op, op.Primitive(), t.Name(), t.Name(),
				),
				t.Request.Pos,
			)
			ok = false
		}
	}

	if (t.Request.Has(directive.OpDiv) || t.Request.Has(directive.OpRem)) && !types.Comparable(typ) {
		v.rep.Report(
			rules.DeriveNotComparable(),
			fmt.Sprintf("type %s derives division but its values cannot be compared with zero", t.Name()),
			t.Request.Pos,
		)
		ok = false
	}

	return ok
}

// hasPrimitive looks for TryOp(rhs T) (T, bool). Generic types are only
// checked for the method shape since the receiver instantiates the type
// with type parameters of its own.
func hasPrimitive(typ types.Type, pkg *types.Package, op directive.Op) bool {
	obj, _, _ := types.LookupFieldOrMethod(typ, true, pkg, op.Primitive())
	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}

	sig := fn.Signature()
	if sig.Params().Len() != 1 || sig.Results().Len() != 2 {
		return false
	}
	if !types.Identical(sig.Results().At(1).Type(), types.Typ[types.Bool]) {
		return false
	}

	if named, ok := types.Unalias(typ).(*types.Named); ok && named.TypeParams().Len() > 0 {
		return true
	}
	return types.Identical(sig.Params().At(0).Type(), typ) &&
		types.Identical(sig.Results().At(0).Type(), typ)
}
