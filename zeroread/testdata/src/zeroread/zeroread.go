package zeroread

func conditionalAssign(c bool) int {
	var x int
	if c {
		x = 1
	}
	return x // want `x may be read before it is assigned`
}

func bothBranchesAssign(c bool) int {
	var x int
	if c {
		x = 1
	} else {
		x = 2
	}
	return x
}

func initialized(c bool) int {
	x := 0
	if c {
		x = 1
	}
	return x
}

func neverAssigned() int {
	var x int
	return x
}

func assignedBeforeBranch(c bool) int {
	var x int
	x = 3
	if c {
		x = 4
	}
	return x
}

func loopMayNotRun(n int) int {
	var last int
	for i := 0; i < n; i++ {
		last = i
	}
	return last // want `last may be read before it is assigned`
}

func loopAlwaysAssigns(n int) int {
	var last int
	for {
		last = n
		break
	}
	return last
}

func param(a int) int {
	return a
}

func insideLiteral(c bool) func() int {
	return func() int {
		var y int
		if c {
			y = 2
		}
		return y // want `y may be read before it is assigned`
	}
}

func addressTaken(c bool) int {
	var x int
	if c {
		x = 1
	}
	p := &x
	_ = p
	return x
}

func capturedByClosure(c bool) int {
	var x int
	set := func() { x = 1 }
	if c {
		set()
	}
	return x
}

func readInsideBranch(c bool) int {
	var x int
	if c {
		x = 1
		return x
	}
	return 0
}

func switchAssign(n int) string {
	var s string
	switch n {
	case 0:
		s = "zero"
	case 1:
		s = "one"
	}
	return s // want `s may be read before it is assigned`
}

func switchWithDefault(n int) string {
	var s string
	switch n {
	case 0:
		s = "zero"
	default:
		s = "other"
	}
	return s
}
