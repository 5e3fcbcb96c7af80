// Package buildtag deals with the build constraint separating annotated
// sources from the files generated out of them.
package buildtag

import (
	"go/ast"
	"go/build/constraint"
	"slices"
)

// maxTags bounds the number of distinct tags Requires enumerates.
const maxTags = 12

// Find returns the //go:build constraint of the file.
func Find(file *ast.File) (constraint.Expr, bool) {
	for _, g := range file.Comments {
		if g.Pos() >= file.Package {
			break
		}
		for _, c := range g.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}
			expr, err := constraint.Parse(c.Text)
			if err != nil {
				return nil, false
			}
			return expr, true
		}
	}
	return nil, false
}

// Requires reports whether expr can only be satisfied with tag set.
func Requires(expr constraint.Expr, tag string) bool {
	tags := collect(expr, nil)
	tags = slices.DeleteFunc(tags, func(t string) bool { return t == tag })
	if len(tags) > maxTags {
		return false
	}

	for mask := 0; mask < 1<<len(tags); mask++ {
		ok := expr.Eval(func(t string) bool {
			if t == tag {
				return false
			}
			i := slices.Index(tags, t)
			return mask&(1<<i) != 0
		})
		if ok {
			return false
		}
	}
	return true
}

// Complement replaces tag with !tag in expr. For constraints requiring tag
// the result holds exactly where expr does not while the rest of expr holds.
func Complement(expr constraint.Expr, tag string) constraint.Expr {
	switch e := expr.(type) {
	case *constraint.TagExpr:
		if e.Tag == tag {
			return &constraint.NotExpr{X: &constraint.TagExpr{Tag: tag}}
		}
		return e
	case *constraint.NotExpr:
		return &constraint.NotExpr{X: Complement(e.X, tag)}
	case *constraint.AndExpr:
		return &constraint.AndExpr{X: Complement(e.X, tag), Y: Complement(e.Y, tag)}
	case *constraint.OrExpr:
		return &constraint.OrExpr{X: Complement(e.X, tag), Y: Complement(e.Y, tag)}
	default:
		return expr
	}
}

// Strip returns comment groups without build constraint lines.
func Strip(groups []*ast.CommentGroup) []*ast.CommentGroup {
	res := make([]*ast.CommentGroup, 0, len(groups))
	for _, g := range groups {
		list := slices.DeleteFunc(slices.Clone(g.List), func(c *ast.Comment) bool {
			return constraint.IsGoBuild(c.Text) || constraint.IsPlusBuild(c.Text)
		})

		switch {
		case len(list) == len(g.List):
			res = append(res, g)
		case len(list) > 0:
			res = append(res, &ast.CommentGroup{List: list})
		}
	}
	return res
}

func collect(expr constraint.Expr, tags []string) []string {
	switch e := expr.(type) {
	case *constraint.TagExpr:
		if !slices.Contains(tags, e.Tag) {
			tags = append(tags, e.Tag)
		}
	case *constraint.NotExpr:
		tags = collect(e.X, tags)
	case *constraint.AndExpr:
		tags = collect(e.Y, collect(e.X, tags))
	case *constraint.OrExpr:
		tags = collect(e.Y, collect(e.X, tags))
	}
	return tags
}
