package buildtag

import (
	"go/parser"
	"go/token"
	"testing"
)

func TestFindRequiresComplement(t *testing.T) {
	type test struct {
		name       string
		line       string
		requires   bool
		complement string
	}

	tests := []test{
		{name: "plain", line: "//go:build safemath", requires: true, complement: "!safemath"},
		{name: "and", line: "//go:build safemath && linux", requires: true, complement: "!safemath && linux"},
		{name: "or", line: "//go:build safemath || linux", requires: false},
		{name: "negated", line: "//go:build !safemath", requires: false},
		{name: "other", line: "//go:build linux", requires: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "// Package money.\n" + tt.line + "\n\npackage money\n"
			file, err := parser.ParseFile(token.NewFileSet(), "money.go", src, parser.ParseComments)
			if err != nil {
				t.Fatal(err)
			}

			expr, ok := Find(file)
			if !ok {
				t.Fatal("build constraint was expected to be found")
			}
			if got := Requires(expr, "safemath"); got != tt.requires {
				t.Fatalf("requires %v was expected, got %v", tt.requires, got)
			}
			if tt.complement != "" {
				if got := Complement(expr, "safemath").String(); got != tt.complement {
					t.Fatalf("complement %q was expected, got %q", tt.complement, got)
				}
			}

			stripped := Strip(file.Comments)
			if len(stripped) != 1 || stripped[0].Text() != "Package money.\n" {
				t.Fatalf("only the package doc was expected to be left, got %d groups", len(stripped))
			}
		})
	}
}

func TestFindMissing(t *testing.T) {
	file, err := parser.ParseFile(token.NewFileSet(), "money.go", "package money\n\n//go:build safemath\n", parser.ParseComments)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := Find(file); ok {
		t.Fatal("a constraint after the package clause does not count")
	}
}
