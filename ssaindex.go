package usedef

// ComputeSSALanes classifies every lane as effectively single-assignment
// or not. It is a separate opt-in pass; until it has run, IsSSA returns
// false for every lane.
//
// A lane is single-assignment when exactly one def (or the initial value)
// is ever the reaching definition for all of its uses, and no other def
// for that lane exists anywhere in the function. The second condition is
// checked by scanning every def site: a lane whose single observed def is
// a different instruction than the site under inspection has a second,
// unread assignment and is disqualified even though only one def is ever
// read.
func (a *Graph) ComputeSSALanes() {
	liveDefs := make([]DefSet, a.conf.NumLanes)
	for use, defs := range a.useDefs {
		lane := a.laneOf(use)
		set := liveDefs[lane]
		if set == nil {
			set = make(DefSet)
			liveDefs[lane] = set
		}
		for def := range defs {
			set[def] = true
		}
	}
	for n, kind := range a.kinds {
		if kind != KindDef {
			continue
		}
		set := liveDefs[a.laneOf(n)]
		if len(set) == 1 && !set[n] {
			// One def is observed by reads, but it is not this one, so
			// the lane has more than one assignment site.
			clear(set)
		}
	}
	a.ssaLanes = make([]bool, a.conf.NumLanes)
	for lane, set := range liveDefs {
		a.ssaLanes[lane] = len(set) == 1
	}
}

// IsSSA reports whether lane is effectively single-assignment. It is an
// O(1) query against the set precomputed by ComputeSSALanes.
func (a *Graph) IsSSA(lane int) bool {
	if lane < 0 || lane >= len(a.ssaLanes) {
		return false
	}
	return a.ssaLanes[lane]
}
