// Package directive recognizes the safemath source directives:
//
//	//safemath:checked           on a function declaration
//	//safemath:derive(add, sub)  on a type declaration
//
// and the operation kinds they talk about.
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"slices"
	"strings"

	"github.com/sirkon/safemath/internal/diag"
	"github.com/sirkon/safemath/internal/rules"
)

// Prefix starts every safemath directive comment.
const Prefix = "//safemath:"

// Kind describes varieties of directives.
type Kind int

const (
	KindUnknown Kind = iota
	KindChecked
	KindDerive
)

var kindValueMap = map[Kind]string{
	KindChecked: "checked",
	KindDerive:  "derive",
}

func (k Kind) String() string {
	v, ok := kindValueMap[k]
	if !ok {
		return fmt.Sprintf("unknown(%d)", k)
	}

	return v
}

// Directive is a single directive comment.
type Directive struct {
	Kind Kind
	Name string // as written, the text between the prefix and the arguments
	Args string // everything after the name, parentheses included
	Pos  token.Pos
}

// Parse recognizes a directive comment. ok is false for comments that do
// not start with Prefix.
func Parse(c *ast.Comment) (d Directive, ok bool) {
	rest, found := strings.CutPrefix(c.Text, Prefix)
	if !found {
		return Directive{}, false
	}

	// Text after a nested comment marker is a note, not a part of the directive.
	if i := strings.Index(rest, "//"); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.TrimRight(rest, " \t")
	name := rest
	if i := strings.IndexAny(rest, "( \t"); i >= 0 {
		name = rest[:i]
	}

	d = Directive{
		Name: name,
		Args: strings.TrimSpace(rest[len(name):]),
		Pos:  c.Slash,
	}
	for k, v := range kindValueMap {
		if v == name {
			d.Kind = k
		}
	}

	return d, true
}

// All returns every directive found in the comment group.
func All(doc *ast.CommentGroup) []Directive {
	if doc == nil {
		return nil
	}

	var res []Directive
	for _, c := range doc.List {
		if d, ok := Parse(c); ok {
			res = append(res, d)
		}
	}
	return res
}

// Lookup returns the first directive of the given kind in the comment group.
func Lookup(doc *ast.CommentGroup, kind Kind) (Directive, bool) {
	for _, d := range All(doc) {
		if d.Kind == kind {
			return d, true
		}
	}
	return Directive{}, false
}

// IsChecked reports whether the function is marked for rewriting.
func IsChecked(fn *ast.FuncDecl) bool {
	_, ok := Lookup(fn.Doc, KindChecked)
	return ok
}

// TypeDoc returns the comment group holding directives of a type spec: the
// spec's own doc or, for an ungrouped declaration, the declaration's doc.
func TypeDoc(decl *ast.GenDecl, spec *ast.TypeSpec) *ast.CommentGroup {
	if spec.Doc != nil {
		return spec.Doc
	}
	if !decl.Lparen.IsValid() {
		return decl.Doc
	}
	return nil
}

// Derive is a validated derivation request.
type Derive struct {
	Pos token.Pos
	Ops []Op // canonical order
}

// Has reports whether the operation was requested.
func (d Derive) Has(op Op) bool {
	return slices.Contains(d.Ops, op)
}

// ParseDerive validates a derive directive and reports every problem found.
// ok is false when anything was reported.
func ParseDerive(d Directive, r diag.Reporter) (res Derive, ok bool) {
	args := d.Args
	if !strings.HasPrefix(args, "(") || !strings.HasSuffix(args, ")") {
		r.Report(
			rules.DeriveMalformed(),
			"derive must be used with a list of operations, e.g. //safemath:derive(add, sub)",
			d.Pos,
		)
		return Derive{}, false
	}

	body := strings.TrimSpace(args[1 : len(args)-1])
	if body == "" {
		r.Report(rules.DeriveEmpty(), "derive requires at least one operation", d.Pos)
		return Derive{}, false
	}

	ok = true
	seen := map[Op]bool{}
	for _, item := range strings.Split(body, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			r.Report(rules.DeriveMalformed(), "empty operation in the derive list", d.Pos)
			ok = false
			continue
		}

		var op Op
		if err := op.UnmarshalText([]byte(item)); err != nil {
			r.Report(
				rules.DeriveUnknown(),
				fmt.Sprintf("unknown operation %q: supported operations are: add, sub, mul, div, rem", item),
				d.Pos,
			)
			ok = false
			continue
		}

		if seen[op] {
			r.Report(
				rules.DeriveDuplicate(),
				fmt.Sprintf("duplicate operation %q: each operation should be listed only once", item),
				d.Pos,
			)
			ok = false
			continue
		}
		seen[op] = true
	}
	if !ok {
		return Derive{}, false
	}

	res.Pos = d.Pos
	for _, op := range Ops() {
		if seen[op] {
			res.Ops = append(res.Ops, op)
		}
	}
	return res, true
}
