// Command zeroread reports reads of local variables that may happen
// before any assignment.
//
// Usage:
//
//	zeroread ./...
//
// Or as a vet tool:
//
//	go vet -vettool=$(which zeroread) ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/mpyw/usedef/zeroread"
)

func main() {
	singlechecker.Main(zeroread.Analyzer)
}
