package usedef

import "go/ast"

// ComputeInfluences populates the influence relations. It is a separate
// opt-in pass because most callers only need the use→defs map. Until it
// has run, UseInfluences and DefInfluences return nil for every node.
//
// Two relations are recorded:
//
//   - a use influences every def whose value expression contains it
//     (the def's new value is computed from that read);
//   - a def influences every use whose resolved def set it appears in,
//     so its influence propagates transitively through nested reads.
func (a *Graph) ComputeInfluences() {
	a.useInfluences = make(map[ast.Node]map[ast.Node]bool)
	a.defInfluences = make(map[ast.Node]map[ast.Node]bool)
	for n, kind := range a.kinds {
		if kind == KindDef {
			if a.conf.DefValue == nil {
				continue
			}
			value := a.conf.DefValue(n)
			if value == nil {
				continue
			}
			def := n
			walkExec(value, func(m ast.Node) {
				if a.kinds[m] == KindUse {
					addInfluence(a.useInfluences, m, def)
				}
			})
		} else {
			use := n
			for def := range a.useDefs[use] {
				addInfluence(a.defInfluences, def, use)
			}
		}
	}
}

// UseInfluences returns the defs whose value expressions contain use.
// Nil until ComputeInfluences has run. Callers must not mutate the result.
func (a *Graph) UseInfluences(use ast.Node) map[ast.Node]bool {
	return a.useInfluences[use]
}

// DefInfluences returns the uses whose values are, possibly indirectly,
// computed from def. Nil until ComputeInfluences has run. Callers must
// not mutate the result.
func (a *Graph) DefInfluences(def ast.Node) map[ast.Node]bool {
	return a.defInfluences[def]
}

func addInfluence(m map[ast.Node]map[ast.Node]bool, key, member ast.Node) {
	set := m[key]
	if set == nil {
		set = make(map[ast.Node]bool)
		m[key] = set
	}
	set[member] = true
}
