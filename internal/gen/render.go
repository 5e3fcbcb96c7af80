package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/printer"
	"go/token"

	"golang.org/x/tools/imports"

	"github.com/sirkon/safemath/internal/buildtag"
	"github.com/sirkon/safemath/internal/config"
)

// Header starts every file produced out of an annotated source.
const Header = "// Code generated by safemath. DO NOT EDIT.\n\n"

// render prints a rewritten file. In suffix mode the file is marked as
// generated and gets the complement of the source's build constraint, so
// that exactly one of them is compiled. In place rewrites lose the
// constraint that required the tag. Imports are grouped the way goimports
// does it, so the runtime import does not join the standard library ones.
func render(fset *token.FileSet, name string, file *ast.File, cfg config.Config) ([]byte, error) {
	var buf bytes.Buffer
	res := *file

	expr, found := buildtag.Find(file)
	switch cfg.Output {
	case config.OutputInplace:
		if found && buildtag.Requires(expr, cfg.Tag) {
			res.Comments = buildtag.Strip(file.Comments)
		}
	default:
		if !found {
			expr = &constraint.TagExpr{Tag: cfg.Tag}
		}
		res.Comments = buildtag.Strip(file.Comments)
		buf.WriteString(Header)
		buf.WriteString("//go:build " + buildtag.Complement(expr, cfg.Tag).String() + "\n\n")
	}

	pcfg := printer.Config{Mode: printer.UseSpaces | printer.TabIndent, Tabwidth: 8}
	if err := pcfg.Fprint(&buf, fset, &res); err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}

	out, err := imports.Process(name, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("format: %w", err)
	}
	return out, nil
}
