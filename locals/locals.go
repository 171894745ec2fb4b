// Package locals specializes the usedef engine to ordinary Go local
// variables: each trackable local of one function becomes a lane, reads
// of it become uses and whole-variable assignments become defs.
//
// Trackable means the variable behaves like a scalar slot that only
// whole-variable assignments can change. Variables are excluded when any
// write to them is partial or invisible in the syntax:
//
//   - address-taken variables (writes may happen through the pointer)
//   - variables referenced inside a function literal (the closure may
//     read or write them at any point)
//   - range and type-switch bound variables (their per-iteration and
//     per-clause defs are implicit)
//   - named results (return statements write them implicitly)
//   - variables of struct or array type (field and element writes mutate
//     them without redefining the whole value)
//
// Classification is computed once per node up front, so the Config
// predicates handed to the engine are plain map lookups.
package locals

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/mpyw/usedef"
)

// Vars maps the trackable locals of one function onto dense lanes and
// holds the per-node use/def classification for the engine.
type Vars struct {
	info *types.Info

	vars   []*types.Var        // lane -> variable
	lanes  map[*types.Var]int  // variable -> lane
	params map[*types.Var]bool // parameter or receiver
	noInit map[*types.Var]bool // declared by a value-less var spec

	uses     map[ast.Node]int      // classified read -> lane
	defs     map[ast.Node]int      // classified write -> lane
	defValue map[ast.Node]ast.Node // def -> value subexpression
}

// New analyzes fn, which must be an *ast.FuncDecl or *ast.FuncLit, and
// assigns lanes to its trackable local variables. Variables belonging to
// enclosing functions are free variables of fn and are never tracked.
func New(info *types.Info, fn ast.Node) *Vars {
	v := &Vars{
		info:     info,
		lanes:    make(map[*types.Var]int),
		params:   make(map[*types.Var]bool),
		noInit:   make(map[*types.Var]bool),
		uses:     make(map[ast.Node]int),
		defs:     make(map[ast.Node]int),
		defValue: make(map[ast.Node]ast.Node),
	}

	recv, ftype, body := split(fn)
	if body == nil {
		return v
	}

	c := &collector{
		info:  info,
		seen:  make(map[*types.Var]bool),
		drop:  make(map[*types.Var]bool),
		param: make(map[*types.Var]bool),
	}
	c.collectParams(recv)
	if ftype != nil {
		c.collectParams(ftype.Params)
		c.dropFields(ftype.Results) // named results are written implicitly
	}
	c.collectBody(body)

	for _, obj := range c.order {
		if c.drop[obj] || !scalarLike(obj.Type()) {
			continue
		}
		v.lanes[obj] = len(v.vars)
		v.vars = append(v.vars, obj)
		if c.param[obj] {
			v.params[obj] = true
		}
	}

	v.classify(body)
	return v
}

// Config returns the engine configuration for this function. The
// predicates are lookups into the precomputed classification, so a node
// can never be both a use and a def.
func (v *Vars) Config() usedef.Config {
	return usedef.Config{
		IsUse: func(n ast.Node) bool {
			_, ok := v.uses[n]
			return ok
		},
		IsDef: func(n ast.Node) bool {
			_, ok := v.defs[n]
			return ok
		},
		LaneOf: func(n ast.Node) int {
			if lane, ok := v.uses[n]; ok {
				return lane
			}
			if lane, ok := v.defs[n]; ok {
				return lane
			}
			return -1 // trips the engine's lane range check
		},
		DefValue: func(def ast.Node) ast.Node {
			return v.defValue[def]
		},
		NumLanes: len(v.vars),
	}
}

// NumLanes returns the number of tracked variables.
func (v *Vars) NumLanes() int { return len(v.vars) }

// Var returns the variable occupying lane.
func (v *Vars) Var(lane int) *types.Var { return v.vars[lane] }

// Lane returns the lane of obj and whether obj is tracked at all.
func (v *Vars) Lane(obj *types.Var) (int, bool) {
	lane, ok := v.lanes[obj]
	return lane, ok
}

// IsParam reports whether lane holds a parameter or the receiver.
func (v *Vars) IsParam(lane int) bool { return v.params[v.vars[lane]] }

// HasInitializer reports whether lane starts life with an explicit value:
// parameters and receivers do (the incoming argument), and so does any
// variable declared with an initializer expression. Only a plain
// `var x T` declaration leaves the lane at its zero value.
func (v *Vars) HasInitializer(lane int) bool { return !v.noInit[v.vars[lane]] }

// EachUse calls fn for every classified read, in no particular order.
func (v *Vars) EachUse(fn func(id *ast.Ident, lane int)) {
	for n, lane := range v.uses {
		fn(n.(*ast.Ident), lane)
	}
}

func split(fn ast.Node) (recv *ast.FieldList, ftype *ast.FuncType, body *ast.BlockStmt) {
	switch fn := fn.(type) {
	case *ast.FuncDecl:
		return fn.Recv, fn.Type, fn.Body
	case *ast.FuncLit:
		return nil, fn.Type, fn.Body
	}
	return nil, nil, nil
}

// scalarLike reports whether a variable of type t can only change through
// whole-variable assignment. Struct and array variables can be mutated
// per field or element, which the lane model cannot see.
func scalarLike(t types.Type) bool {
	switch t.Underlying().(type) {
	case *types.Struct, *types.Array:
		return false
	}
	return true
}

// collector gathers candidate variables and the reasons to drop them.
type collector struct {
	info  *types.Info
	order []*types.Var
	seen  map[*types.Var]bool
	drop  map[*types.Var]bool
	param map[*types.Var]bool
}

func (c *collector) add(obj *types.Var, isParam bool) {
	if !c.seen[obj] {
		c.seen[obj] = true
		c.order = append(c.order, obj)
	}
	if isParam {
		c.param[obj] = true
	}
}

func (c *collector) collectParams(fields *ast.FieldList) {
	if fields == nil {
		return
	}
	for _, field := range fields.List {
		for _, name := range field.Names {
			if obj, ok := c.info.Defs[name].(*types.Var); ok {
				c.add(obj, true)
			}
		}
	}
}

func (c *collector) dropFields(fields *ast.FieldList) {
	if fields == nil {
		return
	}
	for _, field := range fields.List {
		for _, name := range field.Names {
			if obj, ok := c.info.Defs[name].(*types.Var); ok {
				c.add(obj, false)
				c.drop[obj] = true
			}
		}
	}
}

// collectBody walks the function body, collecting variables declared at
// the top function level and disqualifying the untrackable ones. Function
// literal bodies are entered only to find captures of outer variables.
func (c *collector) collectBody(body *ast.BlockStmt) {
	depth := 0 // function literal nesting
	var stack []ast.Node
	ast.Inspect(body, func(n ast.Node) bool {
		if n == nil {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, ok := top.(*ast.FuncLit); ok {
				depth--
			}
			return true
		}
		stack = append(stack, n)
		switch n := n.(type) {
		case *ast.FuncLit:
			depth++
		case *ast.Ident:
			if obj, ok := c.info.Defs[n].(*types.Var); ok && depth == 0 {
				c.add(obj, false)
			}
			if obj, ok := c.info.Uses[n].(*types.Var); ok && depth > 0 {
				// Captured by a closure; writes and reads inside it are
				// invisible to the lane model.
				c.dropVar(obj)
			}
		case *ast.UnaryExpr:
			if n.Op == token.AND {
				c.dropTarget(n.X)
			}
		case *ast.RangeStmt:
			// Key and value are assigned implicitly on every iteration.
			c.dropTarget(n.Key)
			c.dropTarget(n.Value)
		case *ast.TypeSwitchStmt:
			// The symbolic `v := x.(type)` variable has one implicit
			// per-clause def.
			if assign, ok := n.Assign.(*ast.AssignStmt); ok {
				for _, lhs := range assign.Lhs {
					c.dropTarget(lhs)
				}
			}
		}
		return true
	})
}

func (c *collector) dropTarget(e ast.Expr) {
	id, ok := ast.Unparen(e).(*ast.Ident)
	if !ok {
		return
	}
	if obj, ok := c.info.Defs[id].(*types.Var); ok {
		c.dropVar(obj)
	}
	if obj, ok := c.info.Uses[id].(*types.Var); ok {
		c.dropVar(obj)
	}
}

func (c *collector) dropVar(obj *types.Var) {
	c.drop[obj] = true
}

// classify records the use/def tag for every relevant node in body.
//
// Plain and short-form assignments make each tracked left-hand identifier
// a def. Compound assignments and inc/dec statements read the old value,
// so there the statement is the def and the target identifier stays a
// use; that keeps the two classifications disjoint per node. Every other
// identifier resolving to a tracked variable is a use.
func (v *Vars) classify(body *ast.BlockStmt) {
	ast.Inspect(body, func(n ast.Node) bool {
		if n == nil {
			return true
		}
		switch n := n.(type) {
		case *ast.FuncLit:
			// A literal's body is a different function; anything it
			// touches was already untracked by the collector.
			return false
		case *ast.AssignStmt:
			v.classifyAssign(n)
		case *ast.IncDecStmt:
			if lane, ok := v.laneOfTarget(n.X); ok {
				v.defs[n] = lane
				v.defValue[n] = n // old value is read through X
			}
		case *ast.ValueSpec:
			v.classifySpec(n)
		case *ast.Ident:
			if _, isDef := v.defs[n]; isDef {
				break
			}
			if obj, ok := v.info.Uses[n].(*types.Var); ok {
				if lane, ok := v.lanes[obj]; ok {
					v.uses[n] = lane
				}
			}
		}
		return true
	})
}

func (v *Vars) classifyAssign(n *ast.AssignStmt) {
	if n.Tok != token.ASSIGN && n.Tok != token.DEFINE {
		// Compound assignment (x += e): the single target is read and
		// then written. The statement is the def; the target identifier
		// is left to be classified as a use.
		if lane, ok := v.laneOfTarget(n.Lhs[0]); ok {
			v.defs[n] = lane
			v.defValue[n] = n
		}
		return
	}
	for i, lhs := range n.Lhs {
		id, ok := lhs.(*ast.Ident)
		if !ok {
			continue
		}
		lane, ok := v.laneOfIdent(id)
		if !ok {
			continue
		}
		v.defs[id] = lane
		if len(n.Rhs) == len(n.Lhs) {
			v.defValue[id] = n.Rhs[i]
		} else {
			// x, y = f(): no per-target subexpression exists; the whole
			// statement stands in for influence scanning.
			v.defValue[id] = n
		}
	}
}

func (v *Vars) classifySpec(n *ast.ValueSpec) {
	for i, name := range n.Names {
		obj, ok := v.info.Defs[name].(*types.Var)
		if !ok {
			continue
		}
		lane, ok := v.lanes[obj]
		if !ok {
			continue
		}
		if len(n.Values) == 0 {
			v.noInit[obj] = true
			continue
		}
		v.defs[name] = lane
		if len(n.Values) == len(n.Names) {
			v.defValue[name] = n.Values[i]
		} else {
			v.defValue[name] = n
		}
	}
}

// laneOfIdent resolves id through either its defining or its using object.
func (v *Vars) laneOfIdent(id *ast.Ident) (int, bool) {
	if obj, ok := v.info.Defs[id].(*types.Var); ok {
		lane, ok := v.lanes[obj]
		return lane, ok
	}
	if obj, ok := v.info.Uses[id].(*types.Var); ok {
		lane, ok := v.lanes[obj]
		return lane, ok
	}
	return 0, false
}

func (v *Vars) laneOfTarget(e ast.Expr) (int, bool) {
	id, ok := ast.Unparen(e).(*ast.Ident)
	if !ok {
		return 0, false
	}
	return v.laneOfIdent(id)
}
