package usedef

import "go/ast"

// flow resolves every use to its reaching defs. It works backwards, one
// block at a time: a backward scan inside the block resolves uses that
// have a def earlier in the same block, and anything left over is flowed
// through predecessor edges, lane by lane, until a last def or the
// function entry is found.
//
// Each cross-block search is one "pass" identified by a monotonically
// increasing counter; a block whose lastPass equals the current pass id
// has already been visited and is never re-descended. That both bounds
// the search to O(visited blocks) without allocating a visited set per
// pass and guarantees termination on cyclic predecessor chains.
func (a *Graph) flow(blocks []*flowBlock, entry *flowBlock) {
	numLanes := a.conf.NumLanes

	// pending[lane] holds the uses of that lane seen so far in the
	// current block's backward scan that no def has resolved yet.
	pending := make([][]ast.Node, numLanes)
	var work []*flowBlock
	pass := 0

	for _, block := range blocks {
		actions := block.actions
		for i := len(actions) - 1; i >= 0; i-- {
			act := &actions[i]
			if act.kind == KindUse {
				pending[act.lane] = append(pending[act.lane], act.node)
				continue
			}
			// This def is the only def for every use queued after it.
			for _, use := range pending[act.lane] {
				a.addReaching(use, act.node)
			}
			pending[act.lane] = pending[act.lane][:0]
		}

		// Whatever is still pending flows through other blocks. All
		// pending uses of one lane share the same result, so each lane
		// needs one search from this block.
		for lane := 0; lane < numLanes; lane++ {
			uses := pending[lane]
			if len(uses) == 0 {
				continue
			}
			pass++
			// The starting block itself is deliberately not marked as
			// visited: a loop back-edge into it must still consult its
			// own last-def table.
			work = append(work, block)
			for len(work) > 0 {
				curr := work[len(work)-1]
				work = work[:len(work)-1]
				if len(curr.preds) == 0 {
					if curr == entry {
						// The lane's initial value reaches here: a
						// parameter's incoming value or the zero value.
						for _, use := range uses {
							a.addReaching(use, nil)
						}
					}
					continue
				}
				for _, pred := range curr.preds {
					if pred.lastPass == pass {
						continue
					}
					pred.lastPass = pass
					if def, ok := pred.lastDef(lane); ok {
						// A def here; apply it and stop descending
						// through this predecessor.
						for _, use := range uses {
							a.addReaching(use, def)
						}
					} else {
						work = append(work, pred)
					}
				}
			}
			pending[lane] = uses[:0]
		}
	}
}

func (a *Graph) addReaching(use, def ast.Node) {
	set := a.useDefs[use]
	if set == nil {
		set = make(DefSet)
		a.useDefs[use] = set
	}
	set[def] = true
	if a.conf.Logf != nil {
		if def == nil {
			a.logf("use %T resolves to initial value", use)
		} else {
			a.logf("use %T resolves to def %T", use, def)
		}
	}
}
