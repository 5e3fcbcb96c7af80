// Package derive generates capability methods for types with a
// //safemath:derive directive.
//
// Every requested operation delegates to the type's own primitive:
//
//	func (lhs Amount) CheckedAdd(rhs Amount) (Amount, error) {
//		var zero Amount
//		if v, ok := lhs.TryAdd(rhs); ok {
//			return v, nil
//		}
//		return zero, safemath.Overflow
//	}
//
// Division and remainder report DivisionByZero instead when rhs is zero.
// Operations not requested are generated too, they return NotImplemented,
// so every derived type implements the whole capability set.
package derive

import (
	"bytes"
	"fmt"
	"go/format"
	"path"
	"strings"
	"text/template"

	"github.com/sirkon/safemath/internal/config"
	"github.com/sirkon/safemath/internal/directive"
	"github.com/sirkon/safemath/internal/validate"
)

var capabilities = map[directive.Op]string{
	directive.OpAdd: "Adder",
	directive.OpSub: "Subtractor",
	directive.OpMul: "Multiplier",
	directive.OpDiv: "Divider",
	directive.OpRem: "Remainderer",
}

var tmpl = template.Must(template.New("derive").Parse(fileTemplate))

// Generate returns the source of the derive file for the package.
func Generate(pkgName string, rt config.Runtime, targets []validate.Target) ([]byte, error) {
	data := fileData{
		Package: pkgName,
		Path:    rt.Path,
		Runtime: rt.Name,
	}
	if data.Runtime == "" {
		data.Runtime = path.Base(rt.Path)
	}
	if data.Runtime != path.Base(rt.Path) {
		data.Alias = data.Runtime
	}

	for _, t := range targets {
		data.Types = append(data.Types, typeData(t))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	res, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w\n%s", err, buf.String())
	}
	return res, nil
}

type fileData struct {
	Package string
	Path    string
	Alias   string
	Runtime string
	Types   []typeInfo
}

type typeInfo struct {
	Name    string
	Type    string // receiver form, with type parameters
	Generic bool
	Methods []methodInfo
}

type methodInfo struct {
	Method     string
	Primitive  string
	Capability string
	Derived    bool
	Divides    bool
}

func typeData(t validate.Target) typeInfo {
	res := typeInfo{
		Name: t.Name(),
		Type: t.Name(),
	}

	if tp := t.Spec.TypeParams; tp != nil && len(tp.List) > 0 {
		var names []string
		for _, field := range tp.List {
			for _, name := range field.Names {
				names = append(names, name.Name)
			}
		}
		res.Generic = true
		res.Type += "[" + strings.Join(names, ", ") + "]"
	}

	for _, op := range directive.Ops() {
		res.Methods = append(res.Methods, methodInfo{
			Method:     op.Method(),
			Primitive:  op.Primitive(),
			Capability: capabilities[op],
			Derived:    t.Request.Has(op),
			Divides:    op.Divides(),
		})
	}
	return res
}
