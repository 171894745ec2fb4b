package usedef

import (
	"fmt"
	"go/ast"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/cfg"
)

// action is one classified instruction in a block, in program order. The
// classification tag is computed once here so the flow pass never re-tests
// nodes against the predicates.
type action struct {
	node ast.Node
	kind Kind
	lane int
}

// laneDef associates a lane with the last def for it in a block. Blocks
// hold these in a small slice scanned linearly: lane counts per block are
// typically tiny, so the scan beats a map both on lookup and on allocation.
type laneDef struct {
	lane int
	def  ast.Node
}

// flowBlock is the compact per-block state the flow pass operates on.
type flowBlock struct {
	// lastPass holds the id of the most recent backward search pass that
	// visited this block. Comparing it against the current pass id stands
	// in for a visited set: no per-pass allocation, no resets.
	lastPass int

	actions  []action
	preds    []*flowBlock
	lastDefs []laneDef
}

func (b *flowBlock) setLastDef(lane int, def ast.Node) {
	for i := range b.lastDefs {
		if b.lastDefs[i].lane == lane {
			b.lastDefs[i].def = def
			return
		}
	}
	b.lastDefs = append(b.lastDefs, laneDef{lane, def})
}

func (b *flowBlock) lastDef(lane int) (ast.Node, bool) {
	for i := range b.lastDefs {
		if b.lastDefs[i].lane == lane {
			return b.lastDefs[i].def, true
		}
	}
	return nil, false
}

// extract converts the live blocks of g into flow blocks: it classifies
// every node in program order, records the per-block action lists and
// last-def tables, and links predecessor edges. Blocks unreachable from
// entry are skipped entirely, so their instructions receive no
// classification and participate in no reaching set.
func (a *Graph) extract(g *cfg.CFG) ([]*flowBlock, *flowBlock) {
	arena := make([]*flowBlock, 0, len(g.Blocks))
	index := make(map[*cfg.Block]*flowBlock, len(g.Blocks))
	for _, b := range g.Blocks {
		if !b.Live {
			continue
		}
		fb := &flowBlock{}
		index[b] = fb
		arena = append(arena, fb)
	}

	var entry *flowBlock
	if len(g.Blocks) > 0 {
		// Blocks[0] is the entry block of a go/cfg graph.
		entry = index[g.Blocks[0]]
	}

	for _, b := range g.Blocks {
		fb := index[b]
		if fb == nil {
			continue
		}
		for _, succ := range b.Succs {
			if sf := index[succ]; sf != nil {
				sf.preds = append(sf.preds, fb)
			}
		}
		for _, n := range b.Nodes {
			walkExec(n, func(n ast.Node) {
				a.classify(fb, n)
			})
		}
		if a.conf.Logf != nil {
			a.logf("block %d: %d actions, %d last defs, %d succs", b.Index, len(fb.actions), len(fb.lastDefs), len(b.Succs))
		}
	}
	return arena, entry
}

// classify records n in fb if the configured predicates accept it.
func (a *Graph) classify(fb *flowBlock, n ast.Node) {
	isUse := a.conf.IsUse(n)
	isDef := a.conf.IsDef(n)
	switch {
	case isUse && isDef:
		panic(fmt.Sprintf("usedef: node %T classified as both use and def", n))
	case isUse:
		lane := a.laneOf(n)
		fb.actions = append(fb.actions, action{n, KindUse, lane})
		a.kinds[n] = KindUse
	case isDef:
		lane := a.laneOf(n)
		fb.actions = append(fb.actions, action{n, KindDef, lane})
		a.kinds[n] = KindDef
		fb.setLastDef(lane, n)
	}
}

// walkExec visits every node of the subtree rooted at root in evaluation
// order and calls visit on each, children before parents. Evaluation order
// differs from syntactic order for assignments and value specs: their
// right-hand sides are evaluated before the targets are written, so a def
// is always emitted after the reads feeding its own value. Function
// literals are opaque; their bodies belong to a different function.
func walkExec(root ast.Node, visit func(ast.Node)) {
	astutil.Apply(root, func(c *astutil.Cursor) bool {
		switch n := c.Node().(type) {
		case *ast.FuncLit:
			return false
		case *ast.AssignStmt:
			for _, rhs := range n.Rhs {
				walkExec(rhs, visit)
			}
			for _, lhs := range n.Lhs {
				walkExec(lhs, visit)
			}
			visit(n)
			return false
		case *ast.ValueSpec:
			for _, value := range n.Values {
				walkExec(value, visit)
			}
			for _, name := range n.Names {
				visit(name)
			}
			visit(n)
			return false
		}
		return true
	}, func(c *astutil.Cursor) bool {
		visit(c.Node())
		return true
	})
}
