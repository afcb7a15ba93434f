package swarm

import (
	"math"

	"github.com/petar/GoLLRB/llrb"

	"github.com/fractalmc/fmc"
)

type entry struct {
	fmc.Point
}

func (e entry) Less(than llrb.Item) bool {
	return e.Reward < than.(entry).Reward
}

// archive retains the k best states seen across a run in an ordered tree,
// dropping the worst entry whenever the tree overflows.
type archive struct {
	k    int
	tree *llrb.LLRB
}

func newArchive(k int) *archive {
	if k < 1 {
		k = 1
	}
	return &archive{k: k, tree: llrb.New()}
}

func (a *archive) reset() {
	a.tree = llrb.New()
}

func (a *archive) add(p fmc.Point) {
	a.tree.InsertNoReplace(entry{p})
	for a.tree.Len() > a.k {
		a.tree.DeleteMin()
	}
}

// points returns the archived states in descending reward order.
func (a *archive) points() []fmc.Point {
	pts := make([]fmc.Point, 0, a.tree.Len())
	a.tree.DescendLessOrEqual(entry{fmc.NewPoint(nil, math.Inf(1))}, func(i llrb.Item) bool {
		pts = append(pts, i.(entry).Point)
		return true
	})
	return pts
}
