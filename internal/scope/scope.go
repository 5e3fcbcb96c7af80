// Package scope indexes function scopes of a file by source span, so that
// the innermost function (declaration or literal) enclosing a position can
// be found without walking the tree again.
package scope

import (
	"go/ast"
	"go/token"

	"github.com/sirkon/rbtree"
)

// Index holds function scopes of a single file.
type Index struct {
	tree *rbtree.Tree[*span]
}

// New creates an empty index.
func New() *Index {
	return &Index{tree: rbtree.New[*span]()}
}

// Build indexes every function declaration and function literal of the file.
func Build(file *ast.File) *Index {
	ix := New()
	ast.Inspect(file, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.FuncDecl, *ast.FuncLit:
			ix.Add(n)
		}
		return true
	})
	return ix
}

// Add registers a scope node. Nodes of a single index must either nest or be
// disjoint, the order they are added in does not matter.
func (ix *Index) Add(node ast.Node) {
	place(ix.tree, &span{
		start: node.Pos(),
		end:   node.End() - 1,
		node:  node,
	})
}

// Innermost returns the most specific scope node covering pos or nil.
func (ix *Index) Innermost(pos token.Pos) ast.Node {
	top := ix.tree.Search(point(pos))
	if top == nil {
		return nil
	}
	return top.innermost(pos)
}
