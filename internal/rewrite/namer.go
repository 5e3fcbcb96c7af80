package rewrite

import (
	"fmt"
	"go/ast"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Namer invents identifiers for synthetic bindings.
type Namer interface {
	Name(prefix string) string
}

var (
	processID      = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	processCounter atomic.Uint64
)

// NewNamer returns a namer producing <prefix>_<process id>_<n> names, n
// coming from a process wide counter. Names present in the file are never
// produced.
func NewNamer(file *ast.File) Namer {
	return newNamer(file, "_"+processID+"_", &processCounter)
}

// NewSequentialNamer returns a namer producing <prefix><n> names with its own
// counter. Names present in the file are never produced.
func NewSequentialNamer(file *ast.File) Namer {
	return newNamer(file, "", new(atomic.Uint64))
}

type namer struct {
	infix   string
	counter *atomic.Uint64
	taken   map[string]bool
}

func newNamer(file *ast.File, infix string, counter *atomic.Uint64) *namer {
	return &namer{
		infix:   infix,
		counter: counter,
		taken:   identifiers(file),
	}
}

func (n *namer) Name(prefix string) string {
	for {
		name := fmt.Sprintf("%s%s%d", prefix, n.infix, n.counter.Add(1))
		if n.taken[name] {
			continue
		}

		n.taken[name] = true
		return name
	}
}

// identifiers collects every identifier name used in the file.
func identifiers(file *ast.File) map[string]bool {
	res := map[string]bool{}
	if file == nil {
		return res
	}

	ast.Inspect(file, func(node ast.Node) bool {
		if id, ok := node.(*ast.Ident); ok {
			res[id.Name] = true
		}
		return true
	})
	return res
}
