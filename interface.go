package fmc

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// StepResult is one batch of environment output: row i of each field belongs
// to walker i.  Obs may alias States when the environment has no separate
// observation space.
type StepResult struct {
	States  *mat.Dense
	Obs     *mat.Dense
	Rewards []float64
	// Terminal marks walkers whose trajectory ended this step.
	Terminal []bool
}

// Validate checks that the batch addresses exactly n walkers with sdim
// state columns and odim observation columns.  Returns a *ContractError
// describing the first violation found.
func (r *StepResult) Validate(n, sdim, odim int) error {
	if r == nil || r.States == nil || r.Obs == nil {
		return &ContractError{Field: "state rows", Want: n, Got: 0}
	}
	if rows, cols := r.States.Dims(); rows != n {
		return &ContractError{Field: "state rows", Want: n, Got: rows}
	} else if cols != sdim {
		return &ContractError{Field: "state columns", Want: sdim, Got: cols}
	}
	if rows, cols := r.Obs.Dims(); rows != n {
		return &ContractError{Field: "observation rows", Want: n, Got: rows}
	} else if cols != odim {
		return &ContractError{Field: "observation columns", Want: odim, Got: cols}
	}
	if len(r.Rewards) != n {
		return &ContractError{Field: "rewards", Want: n, Got: len(r.Rewards)}
	}
	if len(r.Terminal) != n {
		return &ContractError{Field: "terminal", Want: n, Got: len(r.Terminal)}
	}
	return nil
}

// Environment advances walker states.  Implementations operate on the whole
// batch in one call and must not retain the matrices passed to Step.
type Environment interface {
	// Reset returns the single starting state and observation that every
	// walker begins the run from.
	Reset() (state, obs []float64, err error)

	// Step applies actions row-wise to states and reports the resulting
	// batch.  Rewards are per-step increments, not totals.
	Step(states, actions *mat.Dense) (*StepResult, error)
}

// Model proposes one action per walker.  Row i of the returned matrix is the
// action for the walker in row i of states.
type Model interface {
	Propose(states *mat.Dense) (*mat.Dense, error)
}

// Distancer measures dissimilarity between two observation vectors.  It must
// be symmetric and non-negative.
type Distancer interface {
	Distance(a, b []float64) float64
}

type EuclideanDist struct{}

func (EuclideanDist) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// HammingDist counts coordinates that differ by more than Tol, for state
// spaces that are really discrete codes embedded in floats.
type HammingDist struct {
	Tol float64
}

func (d HammingDist) Distance(a, b []float64) float64 {
	n := 0.0
	for i := range a {
		if math.Abs(a[i]-b[i]) > d.Tol {
			n++
		}
	}
	return n
}

// DistanceBatch fills dst[i] with the distance between observation row i and
// its companion's row.
func DistanceBatch(d Distancer, obs *mat.Dense, companions []int, dst []float64) {
	for i := range dst {
		dst[i] = d.Distance(obs.RawRowView(i), obs.RawRowView(companions[i]))
	}
}

// Converger is an optional stopping predicate checked once per step after
// cloning.  Returning true ends the run with a converged status.
type Converger interface {
	Converged(s *Snapshot) bool
}

// SpreadTol reports convergence when every walker is alive and no walker's
// observation is farther than Tol from the first walker's.
type SpreadTol struct {
	Tol  float64
	Dist Distancer
}

func (c SpreadTol) Converged(s *Snapshot) bool {
	d := c.Dist
	if d == nil {
		d = EuclideanDist{}
	}
	ref := s.Obs.RawRowView(0)
	for i, alive := range s.Alive {
		if !alive {
			return false
		}
		if d.Distance(ref, s.Obs.RawRowView(i)) > c.Tol {
			return false
		}
	}
	return true
}
