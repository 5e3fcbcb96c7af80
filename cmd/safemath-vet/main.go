// Command safemath-vet runs the safemath analyzer as a standalone vet tool.
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/sirkon/safemath/internal/analyzer"
)

func main() {
	singlechecker.Main(analyzer.Analyzer)
}
