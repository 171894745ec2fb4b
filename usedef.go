// Package usedef computes reaching-definition information for indexed
// local-variable slots ("lanes") inside a single function body.
//
// The function body is supplied as a control-flow graph built by
// golang.org/x/tools/go/cfg; the meaning of "instruction reads lane" and
// "instruction writes lane" is supplied by the caller through a Config, so
// the engine itself is agnostic of what a lane actually is. The locals
// subpackage provides the one current specialization: ordinary Go local
// variables.
//
// For every read the analysis resolves the exact set of writes whose value
// may be observed at that read. A nil member in the resolved set means the
// lane's initial value (function parameter or zero value) reaches the read
// on some path. Derived relations (influence sets, single-assignment
// classification) are computed lazily by explicit method calls since most
// callers need only the use→defs map.
package usedef

import (
	"fmt"
	"go/ast"

	"golang.org/x/tools/go/cfg"
)

// Kind classifies a node recorded by the analysis.
type Kind uint8

const (
	// KindNone means the node was never classified: it is neither a use
	// nor a def, or it sits in code unreachable from the function entry.
	KindNone Kind = iota

	// KindUse marks an instruction that reads a lane's current value.
	KindUse

	// KindDef marks an instruction that overwrites a lane's value.
	KindDef
)

// Config supplies the lane semantics for one analysis instantiation.
//
// IsUse and IsDef must be mutually exclusive: a node for which both return
// true is a contract violation and makes New panic. LaneOf must return a
// lane in [0, NumLanes) for every node accepted by IsUse or IsDef.
type Config struct {
	IsUse  func(ast.Node) bool
	IsDef  func(ast.Node) bool
	LaneOf func(ast.Node) int

	// NumLanes is the total number of lanes in the function. Lanes are
	// dense small integers; per-lane state is held in fixed-size slices.
	NumLanes int

	// DefValue returns the subtree holding the value expression of a def,
	// used only by ComputeInfluences to find the reads feeding the def's
	// new value. It may return the def node itself when the value is not
	// syntactically separable. Optional; when nil, ComputeInfluences
	// records no use-influences.
	DefValue func(def ast.Node) ast.Node

	// Logf, when set, receives a trace of the extraction and flow passes.
	// Nil disables tracing entirely.
	Logf func(format string, args ...any)
}

// DefSet is a set of defs reaching one use. The nil key, when present,
// means the lane's initial value reaches the use on some path.
type DefSet map[ast.Node]bool

// HasInitial reports whether the lane's initial/default value is a member,
// i.e. whether some path reaches the use without any write to the lane.
func (s DefSet) HasInitial() bool {
	return s[nil]
}

// Graph holds the results of one analysis run over an immutable function
// body. It must be rebuilt after any edit to the function's instructions
// or control flow. A Graph is not safe for concurrent mutation; concurrent
// analyses of different functions must each own their own Graph.
type Graph struct {
	conf Config

	// useDefs is the primary result: every classified use maps to the
	// non-empty set of defs (or nil sentinel) reaching it.
	useDefs map[ast.Node]DefSet

	// kinds records the classification tag of every node the extractor
	// visited in reachable code, computed once so later passes never
	// re-test nodes.
	kinds map[ast.Node]Kind

	// Populated by ComputeInfluences.
	useInfluences map[ast.Node]map[ast.Node]bool
	defInfluences map[ast.Node]map[ast.Node]bool

	// Populated by ComputeSSALanes.
	ssaLanes []bool
}

// New runs the analysis over g and returns the resulting use→defs graph.
// Blocks with Live unset (unreachable from entry) contribute nothing.
func New(g *cfg.CFG, conf Config) *Graph {
	if conf.NumLanes < 0 {
		panic("usedef: negative NumLanes")
	}
	a := &Graph{
		conf:    conf,
		useDefs: make(map[ast.Node]DefSet),
		kinds:   make(map[ast.Node]Kind),
	}
	blocks, entry := a.extract(g)
	a.flow(blocks, entry)
	return a
}

// Kind returns the classification recorded for n, or KindNone if n was
// never classified (not a use or def, or unreachable).
func (a *Graph) Kind(n ast.Node) Kind {
	return a.kinds[n]
}

// UseDefs returns the set of defs reaching use. The result always has at
// least one member; a nil member means the lane's initial value reaches.
// Querying a node that was not classified as a use is a programming error
// and panics. Callers must not mutate the returned set.
func (a *Graph) UseDefs(use ast.Node) DefSet {
	defs, ok := a.useDefs[use]
	if !ok {
		panic(fmt.Sprintf("usedef: UseDefs called on non-use node %T", use))
	}
	return defs
}

// laneOf applies the lane projector and enforces the lane range contract.
func (a *Graph) laneOf(n ast.Node) int {
	lane := a.conf.LaneOf(n)
	if lane < 0 || lane >= a.conf.NumLanes {
		panic(fmt.Sprintf("usedef: lane %d out of range [0, %d)", lane, a.conf.NumLanes))
	}
	return lane
}

func (a *Graph) logf(format string, args ...any) {
	if a.conf.Logf != nil {
		a.conf.Logf(format, args...)
	}
}
