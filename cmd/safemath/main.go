// Command safemath generates checked arithmetic out of annotated sources.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirkon/safemath/internal/gen"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, gen.ErrDiagnostics) {
			fmt.Fprintln(os.Stderr, "safemath:", err)
		}
		os.Exit(1)
	}
}
