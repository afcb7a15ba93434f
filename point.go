// Package fmc implements the core of a Fractal Monte Carlo search: a fixed
// population of walkers explores a state space, and at each step walkers with
// low virtual reward are replaced by clones of better positioned ones.  The
// virtual reward balances accumulated reward against distance to a randomly
// paired companion, so the swarm exploits good regions without collapsing
// onto a single state.
package fmc

type Point struct {
	pos []float64
	// Reward is the cumulative reward accumulated along the walker's
	// lineage.  Higher is better.
	Reward float64
}

func NewPoint(pos []float64, reward float64) Point {
	cpos := make([]float64, len(pos))
	copy(cpos, pos)
	return Point{pos: cpos, Reward: reward}
}

func (p Point) At(i int) float64 { return p.pos[i] }

func (p Point) Len() int { return len(p.pos) }

func (p Point) Pos() []float64 {
	pos := make([]float64, len(p.pos))
	copy(pos, p.pos)
	return pos
}
