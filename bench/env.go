package bench

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/fractalmc/fmc"
	"github.com/fractalmc/fmc/mesh"
)

// FuncEnv adapts a benchmark function to the swarm environment contract:
// the walker state is a candidate position, actions are additive
// perturbations, and the per-step reward is the negated function value.
// Proposed positions are projected through M before evaluation, which both
// clamps walkers inside the function domain and, with a nonzero mesh step,
// coarsens the search space.  Walkers never terminate.
type FuncEnv struct {
	Fn Func
	M  mesh.Mesh
	// Start is the shared initial position; the domain center if nil.
	Start []float64
}

func NewFuncEnv(fn Func) *FuncEnv {
	low, up := fn.Bounds()
	start := make([]float64, len(low))
	for i := range start {
		start[i] = low[i] + (up[i]-low[i])/2
	}
	return &FuncEnv{
		Fn:    fn,
		M:     mesh.NewBounded(&mesh.Infinite{}, low, up),
		Start: start,
	}
}

func (e *FuncEnv) Reset() (state, obs []float64, err error) {
	start := e.Start
	if start == nil {
		low, up := e.Fn.Bounds()
		start = make([]float64, len(low))
		for i := range start {
			start[i] = low[i] + (up[i]-low[i])/2
		}
	}
	return start, start, nil
}

func (e *FuncEnv) Step(states, actions *mat.Dense) (*fmc.StepResult, error) {
	n, dim := states.Dims()
	next := mat.NewDense(n, dim, nil)
	rewards := make([]float64, n)
	terminal := make([]bool, n)

	pos := make([]float64, dim)
	for i := 0; i < n; i++ {
		for j := 0; j < dim; j++ {
			pos[j] = states.At(i, j) + actions.At(i, j)
		}
		proj := pos
		if e.M != nil {
			proj = e.M.Nearest(pos)
		}
		next.SetRow(i, proj)
		rewards[i] = -e.Fn.Eval(proj)
	}

	return &fmc.StepResult{States: next, Obs: next, Rewards: rewards, Terminal: terminal}, nil
}

// LineEnv is a 1-D toy environment: walkers live on the number line, start
// at Start, and collect reward -|x| each step, so the swarm is pulled toward
// the origin.
type LineEnv struct {
	Start float64
}

func (e LineEnv) Reset() (state, obs []float64, err error) {
	return []float64{e.Start}, []float64{e.Start}, nil
}

func (e LineEnv) Step(states, actions *mat.Dense) (*fmc.StepResult, error) {
	n, _ := states.Dims()
	next := mat.NewDense(n, 1, nil)
	rewards := make([]float64, n)
	terminal := make([]bool, n)
	for i := 0; i < n; i++ {
		x := states.At(i, 0) + actions.At(i, 0)
		next.Set(i, 0, x)
		rewards[i] = -math.Abs(x)
	}
	return &fmc.StepResult{States: next, Obs: next, Rewards: rewards, Terminal: terminal}, nil
}

// GaussianModel perturbs every state coordinate with zero-mean gaussian
// noise of deviation Sigma.
type GaussianModel struct {
	Sigma float64
	Rng   *rand.Rand
}

func (m *GaussianModel) Propose(states *mat.Dense) (*mat.Dense, error) {
	n, dim := states.Dims()
	acts := mat.NewDense(n, dim, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < dim; j++ {
			acts.Set(i, j, m.Rng.NormFloat64()*m.Sigma)
		}
	}
	return acts, nil
}

// StepModel proposes +Size or -Size for every coordinate with equal
// probability.
type StepModel struct {
	Size float64
	Rng  *rand.Rand
}

func (m *StepModel) Propose(states *mat.Dense) (*mat.Dense, error) {
	n, dim := states.Dims()
	acts := mat.NewDense(n, dim, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < dim; j++ {
			if m.Rng.Intn(2) == 0 {
				acts.Set(i, j, m.Size)
			} else {
				acts.Set(i, j, -m.Size)
			}
		}
	}
	return acts, nil
}
