package usedef_test

import (
	"fmt"
	"testing"

	"golang.org/x/tools/go/cfg"

	"github.com/mpyw/usedef"
)

// BenchmarkFlow measures the engine on a long chain of diamonds: every
// diamond defines half of the lanes in one arm and reads all of them at
// the merge, so most resolutions have to flow across blocks.
func BenchmarkFlow(b *testing.B) {
	for _, size := range []struct{ diamonds, lanes int }{
		{100, 8},
		{1000, 32},
	} {
		name := fmt.Sprintf("diamonds=%d/lanes=%d", size.diamonds, size.lanes)
		b.Run(name, func(b *testing.B) {
			h := newHarness(size.lanes)
			prev := h.block()
			for lane := 0; lane < size.lanes; lane++ {
				prev.Nodes = append(prev.Nodes, h.def(lane, "init"))
			}
			for i := 0; i < size.diamonds; i++ {
				left := h.block()
				right := h.block()
				for lane := 0; lane < size.lanes/2; lane++ {
					left.Nodes = append(left.Nodes, h.def(lane, "d"))
				}
				merge := h.block()
				for lane := 0; lane < size.lanes; lane++ {
					merge.Nodes = append(merge.Nodes, h.use(lane, "u"))
				}
				edge(prev, left)
				edge(prev, right)
				edge(left, merge)
				edge(right, merge)
				prev = merge
			}
			conf := h.config()
			g := &cfg.CFG{Blocks: h.blocks}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				usedef.New(g, conf)
			}
		})
	}
}
