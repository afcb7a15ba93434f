package pop

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNew(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	low := []float64{-2, 0, 10}
	up := []float64{2, 1, 20}

	points := New(rng, 50, low, up)
	if len(points) != 50 {
		t.Fatalf("got %v points, want 50", len(points))
	}
	for i, p := range points {
		for j := range low {
			if x := p.At(j); x < low[j] || x > up[j] {
				t.Errorf("point %v dim %v: %v outside [%v,%v]", i, j, x, low[j], up[j])
			}
		}
	}
}

func TestNewConstr(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	n := 100
	maxiter := 100000
	lb := []float64{0, 0, 0, 0, 0}
	ub := []float64{100, 100, 100, 100, 100}

	// single linear constraint is: x1+x2 <= 10
	// this results in a
	// (10 / 100) * (10 / 100) * 1/2 chance == 0.005
	// that a random point will be feasible
	low := mat.NewDense(1, 1, []float64{0})
	up := mat.NewDense(1, 1, []float64{10})
	A := mat.NewDense(1, 5, []float64{1, 1, 0, 0, 0})
	prob := .005

	points, nbad, iter := NewConstr(rng, n, maxiter, lb, ub, low, A, up)

	if nbad > 0 {
		t.Errorf("got %v bad points", nbad)
	}
	if len(points) != n {
		t.Fatalf("got %v points, want %v", len(points), n)
	}
	for i, p := range points {
		for j := range lb {
			if x := p.At(j); x < lb[j] || x > ub[j] {
				t.Errorf("point %v dim %v: %v outside [%v,%v]", i, j, x, lb[j], ub[j])
			}
		}
		if sum := p.At(0) + p.At(1); sum > 10 {
			t.Errorf("point %v violates x1+x2 <= 10: sum is %v", i, sum)
		}
	}
	if iter == n {
		t.Errorf("all initial random points were feasible - what?")
	}

	actual := float64(n) / float64(iter)
	diff := (actual - prob) / prob
	if diff < -.5 || diff > 0.5 {
		t.Errorf("expected %v%% of points to be feasible, got %v%%", prob*100, actual*100)
	}

	t.Logf("took %v iterations, %v%% of points were feasible", iter, 100*actual)
}
