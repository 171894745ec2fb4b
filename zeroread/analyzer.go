// Package zeroread defines an Analyzer that reports reads of local
// variables that may still hold their zero value.
//
// A variable declared without an initializer and assigned on only some of
// the paths leading to a read is usually a missed branch or a misplaced
// declaration:
//
//	var x int
//	if cond {
//		x = compute()
//	}
//	return x // zero when !cond: was that intended?
//
// The checker builds the use-def graph of every function and flags a read
// whose reaching definitions include both the zero value and at least one
// real assignment. Reads of variables that are never assigned are not
// reported; leaving a variable at its zero value on every path is a
// deliberate and common idiom.
package zeroread

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/ctrlflow"
	"golang.org/x/tools/go/cfg"

	"github.com/mpyw/usedef"
	"github.com/mpyw/usedef/locals"
)

// Analyzer is the zeroread analyzer.
var Analyzer = &analysis.Analyzer{
	Name:     "zeroread",
	Doc:      "detects reads of locals that may happen before any assignment",
	Requires: []*analysis.Analyzer{ctrlflow.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	cfgs := pass.ResultOf[ctrlflow.Analyzer].(*ctrlflow.CFGs)

	for _, file := range pass.Files {
		// Always skip generated files
		if ast.IsGenerated(file) {
			continue
		}
		ast.Inspect(file, func(n ast.Node) bool {
			switch fn := n.(type) {
			case *ast.FuncDecl:
				if fn.Body != nil {
					check(pass, cfgs.FuncDecl(fn), fn)
				}
			case *ast.FuncLit:
				check(pass, cfgs.FuncLit(fn), fn)
			}
			return true
		})
	}

	return nil, nil
}

// check analyzes one function or function literal.
func check(pass *analysis.Pass, g *cfg.CFG, fn ast.Node) {
	if g == nil {
		return
	}
	vars := locals.New(pass.TypesInfo, fn)
	if vars.NumLanes() == 0 {
		return
	}
	graph := usedef.New(g, vars.Config())

	vars.EachUse(func(id *ast.Ident, lane int) {
		if vars.IsParam(lane) || vars.HasInitializer(lane) {
			return
		}
		if graph.Kind(id) != usedef.KindUse {
			// The read sits in unreachable code.
			return
		}
		defs := graph.UseDefs(id)
		if !defs.HasInitial() {
			return
		}
		assigned := false
		for def := range defs {
			if def != nil {
				assigned = true
				break
			}
		}
		if !assigned {
			return
		}
		pass.Reportf(id.Pos(), "%s may be read before it is assigned", id.Name)
	})
}
