// Package mesh projects arbitrary dimensional points onto (potentially
// discrete) meshes.  Environments use it to keep walker states inside their
// domain and, with a nonzero step, to coarsen the space the swarm searches.
package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Mesh is an interface for projecting arbitrary dimensional points onto some
// kind of (potentially discrete) mesh.
type Mesh interface {
	// Nearest returns the nearest mesh point to p.
	Nearest(p []float64) []float64
	// Step returns the discretization or grid size of the mesh.
	Step() float64
	// SetStep changes the grid size.  A step of zero makes the mesh
	// continuous.
	SetStep(step float64)
	// SetOrigin recenters the mesh grid on the given point.
	SetOrigin(origin []float64)
}

// Infinite is a grid-based, linear-axis mesh that extends in all dimensions
// without bounds.  The length of Origin defines the dimensionality of the
// mesh.  If Origin == nil, the dimensionality is set by the first call to
// Nearest.  If Basis == nil, a unit basis (the identity matrix) is used.  If
// StepSize == 0, the mesh represents continuous space and Nearest just
// returns the point passed to it.
type Infinite struct {
	Origin []float64
	// Basis contains a set of row vectors defining the directions of each
	// mesh axis.
	Basis    *mat.Dense
	StepSize float64
	inverter *mat.Dense
}

func (sm *Infinite) Step() float64 { return sm.StepSize }

func (sm *Infinite) SetStep(step float64) { sm.StepSize = step }

func (sm *Infinite) SetOrigin(origin []float64) {
	sm.Origin = append([]float64{}, origin...)
}

// Nearest returns the nearest grid point to p by rounding each dimensional
// position to the nearest grid point.  If the mesh basis is not the identity
// matrix, then p is transformed to the mesh basis before rounding and then
// retransformed back.
func (sm *Infinite) Nearest(p []float64) []float64 {
	if sm.StepSize == 0 {
		return append([]float64{}, p...)
	} else if l := len(sm.Origin); l != 0 && l != len(p) {
		panic(fmt.Sprintf("origin len %v incompatible with point len %v", l, len(p)))
	}

	// set up origin and inverter matrix if necessary
	if len(sm.Origin) == 0 {
		sm.Origin = make([]float64, len(p))
	}
	if sm.Basis != nil && sm.inverter == nil {
		sm.inverter = &mat.Dense{}
		if err := sm.inverter.Inverse(sm.Basis); err != nil {
			panic(err.Error())
		}
	}

	// translate p based on origin and transform to the mesh vector space
	newp := make([]float64, len(p))
	for i := range newp {
		newp[i] = p[i] - sm.Origin[i]
	}
	rotv := mat.NewDense(len(p), 1, newp)
	if sm.inverter != nil {
		var tmp mat.Dense
		tmp.Mul(sm.inverter, rotv)
		rotv = &tmp
	}

	// calculate nearest point
	nearest := mat.NewDense(len(p), 1, nil)
	for i := range sm.Origin {
		// rem is already in units of steps
		n, rem := math.Modf(rotv.At(i, 0) / sm.StepSize)
		if rem > 0.5 {
			n++
		} else if rem < -0.5 {
			n--
		}
		nearest.Set(i, 0, float64(n)*sm.StepSize)
	}

	// transform back to standard space and restore the origin shift
	if sm.Basis != nil {
		var tmp mat.Dense
		tmp.Mul(sm.Basis, nearest)
		nearest = &tmp
	}
	out := mat.Col(nil, 0, nearest)
	for i := range out {
		out[i] += sm.Origin[i]
	}
	return out
}

// Bounded wraps another mesh with box bounds: points are slid inside the
// bounds before being projected onto the underlying mesh.
type Bounded struct {
	Lower []float64
	Upper []float64
	core  Mesh
}

func NewBounded(m Mesh, lower, upper []float64) *Bounded {
	if len(lower) != len(upper) {
		panic("mesh lower and upper bound vectors have different lengths")
	} else { // force panic if bounds lengths don't match mesh m's # dims
		m.Nearest(lower)
	}
	return &Bounded{
		Lower: lower,
		Upper: upper,
		core:  m,
	}
}

func (m *Bounded) Step() float64 { return m.core.Step() }

func (m *Bounded) SetStep(step float64) { m.core.SetStep(step) }

func (m *Bounded) SetOrigin(origin []float64) { m.core.SetOrigin(origin) }

// Nearest returns the nearest bounded grid point to p by sliding each
// dimensional position to the nearest value inside bounds and then rounding
// to the nearest grid point.
func (m *Bounded) Nearest(p []float64) []float64 {
	pdup := make([]float64, len(p))
	copy(pdup, p)
	for i := range pdup {
		pdup[i] = math.Max(m.Lower[i], pdup[i])
		pdup[i] = math.Min(m.Upper[i], pdup[i])
	}
	return m.core.Nearest(pdup)
}
