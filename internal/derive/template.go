package derive

const fileTemplate = `// Code generated by safemath. DO NOT EDIT.

package {{.Package}}

import {{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{range .Types}}{{$t := .}}
{{- range .Methods}}
{{- if .Derived}}
// {{.Method}} implements {{$.Runtime}}.{{.Capability}} on top of {{.Primitive}}.
func (lhs {{$t.Type}}) {{.Method}}(rhs {{$t.Type}}) ({{$t.Type}}, error) {
	var zero {{$t.Type}}
	if v, ok := lhs.{{.Primitive}}(rhs); ok {
		return v, nil
	}
{{- if .Divides}}
	if rhs == zero {
		return zero, {{$.Runtime}}.DivisionByZero
	}
{{- end}}
	return zero, {{$.Runtime}}.Overflow
}
{{else}}
// {{.Method}} is not derived for {{$t.Name}}.
func (lhs {{$t.Type}}) {{.Method}}(rhs {{$t.Type}}) ({{$t.Type}}, error) {
	var zero {{$t.Type}}
	return zero, {{$.Runtime}}.NotImplemented
}
{{end}}
{{- end}}
{{- if not .Generic}}
var _ {{$.Runtime}}.Ops[{{.Type}}] = *new({{.Type}})
{{end}}
{{- end}}`
