// Package pop generates starting states for swarm runs, either uniformly
// inside box bounds or inside a linearly constrained region.
package pop

import (
	"math"
	"math/rand"

	"github.com/petar/GoLLRB/llrb"
	"gonum.org/v1/gonum/mat"

	"github.com/fractalmc/fmc"
)

// New generates n starting states uniformly distributed in the box bounds
// described by low and up.
func New(rng *rand.Rand, n int, low, up []float64) []fmc.Point {
	if len(low) != len(up) {
		panic("low and up vectors are not same length")
	}

	ndims := len(low)

	points := make([]fmc.Point, n)
	for i := 0; i < n; i++ {
		pos := make([]float64, ndims)
		for j := range pos {
			pos[j] = low[j] + rng.Float64()*(up[j]-low[j])
		}
		points[i] = fmc.NewPoint(pos, math.Inf(-1))
	}
	return points
}

type item struct {
	fmc.Point
	howbad float64
}

func (p1 item) Less(than llrb.Item) bool {
	p2 := than.(item)
	return p1.howbad < p2.howbad
}

// NewConstr tries to generate a random population of n feasible points
// satisfying the linear constraints "low <= Ax <= up".  lb and ub define
// lower and upper box bounds for the variables.  NewConstr generates random
// points within the box bounds and keeps all feasible points.  It queues up
// the least unfavorable infeasible points in case n feasible ones cannot be
// found within maxiter.
func NewConstr(rng *rand.Rand, n, maxiter int, lb, ub []float64, low, A, up *mat.Dense) (points []fmc.Point, nbad, iter int) {
	stackA, b, ranges := StackConstr(low, A, up)

	_, ndims := A.Dims()

	violaters := llrb.New()
	points = make([]fmc.Point, 0, n)
	for i := 0; i < maxiter; i++ {
		// create point
		pos := make([]float64, ndims)
		for j := range pos {
			l, u := lb[j], ub[j]
			pos[j] = l + rng.Float64()*(u-l)
		}
		p := fmc.NewPoint(pos, math.Inf(-1))

		// check for constraint violations
		var ax mat.Dense
		ax.Mul(stackA, mat.NewDense(ndims, 1, p.Pos()))
		m, _ := ax.Dims()
		howbad := 0.0
		for r := 0; r < m; r++ {
			if diff := ax.At(r, 0) - b.At(r, 0); diff > 0 {
				howbad += diff / ranges[r]
				break
			}
		}

		if howbad == 0 {
			points = append(points, p)
			if len(points) == n {
				return points, 0, i
			}
		} else {
			// add to tree
			violaters.InsertNoReplace(item{p, howbad})
			for violaters.Len() > n-len(points) {
				violaters.DeleteMax()
			}
		}
	}

	nbad = n - len(points)
	for len(points) < n {
		p := violaters.DeleteMin().(item).Point
		points = append(points, p)
	}

	return points, nbad, maxiter
}

// StackConstr converts the two-sided system "low <= Ax <= up" into the
// single-sided "stackA * x <= b" by stacking -A over A.  ranges holds the
// up-low spread for each stacked row, for scaling violation magnitudes.
func StackConstr(low, A, up *mat.Dense) (stackA, b *mat.Dense, ranges []float64) {
	neglow := &mat.Dense{}
	neglow.Scale(-1, low)
	b = &mat.Dense{}
	b.Stack(neglow, up)

	negA := &mat.Dense{}
	negA.Scale(-1, A)
	stackA = &mat.Dense{}
	stackA.Stack(negA, A)

	m, _ := A.Dims()
	ranges = make([]float64, 2*m)
	for i := 0; i < m; i++ {
		r := up.At(i, 0) - low.At(i, 0)
		if r == 0 {
			r = 1
		}
		ranges[i] = r
		ranges[m+i] = r
	}
	return stackA, b, ranges
}
